// Package bottleneckanalysis finds where work piles up by watching how full
// the queues of a simulation are over time.
package bottleneckanalysis

import (
	"github.com/rs/zerolog"

	"github.com/sarchlab/vtolsim/sim"
	"github.com/sarchlab/vtolsim/sim/hooking"
	"github.com/sarchlab/vtolsim/sim/queueing"
)

// BufferLevel summarizes the occupancy of a buffer.
type BufferLevel struct {
	Buffer  string
	Current int
	Max     int

	// Average is weighted by virtual time since the buffer is watched.
	Average float64

	// PeriodAverage only covers the current period. It is 0 if the analyzer
	// has no period.
	PeriodAverage float64
}

type bufferInfo struct {
	buf                   queueing.Buffer
	lastLevel             int
	lastTime              sim.VTimeInMs
	maxLevel              int
	levelToDuration       map[int]sim.VTimeInMs
	periodLevelToDuration map[int]sim.VTimeInMs
}

func averageLevel(levelToDuration map[int]sim.VTimeInMs) float64 {
	sum := 0.0
	durationSum := 0.0

	for level, duration := range levelToDuration {
		sum += float64(level) * float64(duration)
		durationSum += float64(duration)
	}

	if durationSum == 0.0 {
		return 0.0
	}

	return sum / durationSum
}

// BufferAnalyzer can use buffer levels to analyze the bottleneck of the system.
type BufferAnalyzer struct {
	timeTeller hooking.TimeTeller
	period     sim.VTimeInMs

	names   []string
	buffers map[string]*bufferInfo
}

// BufferAnalyzerBuilder can build BufferAnalyzers.
type BufferAnalyzerBuilder struct {
	timeTeller hooking.TimeTeller
	period     sim.VTimeInMs
}

// MakeBufferAnalyzerBuilder creates a builder without a period.
func MakeBufferAnalyzerBuilder() BufferAnalyzerBuilder {
	return BufferAnalyzerBuilder{}
}

// WithTimeTeller sets where the analyzer reads the virtual time.
func (b BufferAnalyzerBuilder) WithTimeTeller(
	t hooking.TimeTeller,
) BufferAnalyzerBuilder {
	b.timeTeller = t
	return b
}

// WithPeriod makes the analyzer also average the levels over fixed periods
// of virtual time.
func (b BufferAnalyzerBuilder) WithPeriod(
	period sim.VTimeInMs,
) BufferAnalyzerBuilder {
	b.period = period
	return b
}

// Build creates the BufferAnalyzer.
func (b BufferAnalyzerBuilder) Build() *BufferAnalyzer {
	if b.timeTeller == nil {
		panic("time teller is not set")
	}

	return &BufferAnalyzer{
		timeTeller: b.timeTeller,
		period:     b.period,
		buffers:    make(map[string]*bufferInfo),
	}
}

// Watch starts tracking the level of a buffer.
func (b *BufferAnalyzer) Watch(buf queueing.Buffer) {
	if _, ok := b.buffers[buf.Name()]; ok {
		panic("buffer " + buf.Name() + " is already watched")
	}

	level := buf.Size()

	b.names = append(b.names, buf.Name())
	b.buffers[buf.Name()] = &bufferInfo{
		buf:                   buf,
		lastLevel:             level,
		lastTime:              b.timeTeller.Now(),
		maxLevel:              level,
		levelToDuration:       make(map[int]sim.VTimeInMs),
		periodLevelToDuration: make(map[int]sim.VTimeInMs),
	}

	buf.AcceptHook(b)
}

// Func records buffer level change.
func (b *BufferAnalyzer) Func(ctx hooking.HookCtx) {
	if ctx.Pos != queueing.HookPosBufPush && ctx.Pos != queueing.HookPosBufPop {
		return
	}

	buf := ctx.Domain.(queueing.Buffer)

	info, ok := b.buffers[buf.Name()]
	if !ok {
		panic("buffer " + buf.Name() + " is not watched")
	}

	b.advance(info, b.timeTeller.Now())

	info.lastLevel = buf.Size()
	if info.lastLevel > info.maxLevel {
		info.maxLevel = info.lastLevel
	}
}

func (b *BufferAnalyzer) advance(info *bufferInfo, now sim.VTimeInMs) {
	duration := now - info.lastTime
	info.levelToDuration[info.lastLevel] += duration

	if b.period > 0 {
		periodStart := now / b.period * b.period
		if info.lastTime < periodStart {
			info.periodLevelToDuration = make(map[int]sim.VTimeInMs)
			duration = now - periodStart
		}

		info.periodLevelToDuration[info.lastLevel] += duration
	}

	info.lastTime = now
}

// Levels returns the summaries of all the watched buffers up to the current
// time, in the order the buffers are watched.
func (b *BufferAnalyzer) Levels() []BufferLevel {
	now := b.timeTeller.Now()
	levels := make([]BufferLevel, 0, len(b.names))

	for _, name := range b.names {
		info := b.buffers[name]
		b.advance(info, now)

		level := BufferLevel{
			Buffer:  name,
			Current: info.lastLevel,
			Max:     info.maxLevel,
			Average: averageLevel(info.levelToDuration),
		}

		if b.period > 0 {
			level.PeriodAverage = averageLevel(info.periodLevelToDuration)
		}

		levels = append(levels, level)
	}

	return levels
}

// Report logs the level summary of every watched buffer.
func (b *BufferAnalyzer) Report(logger zerolog.Logger) {
	for _, level := range b.Levels() {
		logger.Info().
			Str("buffer", level.Buffer).
			Int("current", level.Current).
			Int("max", level.Max).
			Float64("average", level.Average).
			Float64("period_average", level.PeriodAverage).
			Msg("buffer level")
	}
}
