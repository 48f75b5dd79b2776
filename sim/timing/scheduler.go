// Package timing drives a simulation in fixed virtual-time ticks, paced
// against the wall clock.
package timing

import (
	"context"
	"sync"
	"time"

	"github.com/sarchlab/vtolsim/sim"
	"github.com/sarchlab/vtolsim/sim/hooking"
)

// Handler processes one tick that advances virtual time from prev to cur.
type Handler func(prev, cur sim.VTimeInMs) error

// HookPosBeforeTick marks the moment before a tick is handled.
var HookPosBeforeTick = &hooking.HookPos{Name: "Before Tick"}

// HookPosAfterTick marks the moment after a tick is handled.
var HookPosAfterTick = &hooking.HookPos{Name: "After Tick"}

// TickInfo is the hook item of the tick hooks.
type TickInfo struct {
	Prev, Cur sim.VTimeInMs
}

// A Scheduler calls a handler once per tick until the virtual duration is
// covered. Tick k covers [k*tickSize, (k+1)*tickSize) and is not handled
// before k*tickSize/compression of real time has passed since the start of
// the run. A tick that is late is handled right away. Ticks are never
// skipped or merged.
type Scheduler struct {
	hooking.HookableBase

	tickSize    sim.VTimeInMs
	duration    sim.VTimeInMs
	compression float64
	handler     Handler
	clock       Clock

	timeLock sync.RWMutex
	now      sim.VTimeInMs
}

// Run ticks until the duration is covered, then waits until the real time
// that the duration maps to has passed. It stops early if ctx is done or the
// handler returns an error.
func (s *Scheduler) Run(ctx context.Context) error {
	start := s.clock.Now()

	for k := sim.VTimeInMs(0); k*s.tickSize < s.duration; k++ {
		prev := k * s.tickSize
		cur := prev + s.tickSize

		if err := s.waitUntil(ctx, start, prev); err != nil {
			return err
		}

		if err := s.tick(prev, cur); err != nil {
			return err
		}
	}

	return s.waitUntil(ctx, start, s.duration)
}

func (s *Scheduler) waitUntil(
	ctx context.Context,
	start time.Time,
	virtualTime sim.VTimeInMs,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	deadline := start.Add(s.realDuration(virtualTime))

	remaining := deadline.Sub(s.clock.Now())
	if remaining <= 0 {
		return nil
	}

	return s.clock.Sleep(ctx, remaining)
}

func (s *Scheduler) tick(prev, cur sim.VTimeInMs) error {
	s.writeNow(cur)

	hookCtx := hooking.HookCtx{
		Domain: s,
		Pos:    HookPosBeforeTick,
		Item:   TickInfo{Prev: prev, Cur: cur},
	}
	s.InvokeHook(hookCtx)

	if err := s.handler(prev, cur); err != nil {
		return err
	}

	hookCtx.Pos = HookPosAfterTick
	s.InvokeHook(hookCtx)

	return nil
}

func (s *Scheduler) realDuration(t sim.VTimeInMs) time.Duration {
	return time.Duration(float64(t) * float64(time.Millisecond) / s.compression)
}

func (s *Scheduler) readNow() sim.VTimeInMs {
	s.timeLock.RLock()
	t := s.now
	s.timeLock.RUnlock()

	return t
}

func (s *Scheduler) writeNow(t sim.VTimeInMs) {
	s.timeLock.Lock()
	s.now = t
	s.timeLock.Unlock()
}

// Now returns the end of the tick that is being handled, or of the last
// handled tick.
func (s *Scheduler) Now() sim.VTimeInMs {
	return s.readNow()
}

// Duration returns the virtual length of the run.
func (s *Scheduler) Duration() sim.VTimeInMs {
	return s.duration
}

// TickSize returns the virtual time covered by each tick.
func (s *Scheduler) TickSize() sim.VTimeInMs {
	return s.tickSize
}

// TotalRealDuration returns how long a run takes on the wall clock when the
// handler keeps up.
func (s *Scheduler) TotalRealDuration() time.Duration {
	return s.realDuration(s.duration)
}
