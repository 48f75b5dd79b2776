package timing

import (
	"errors"
	"fmt"
	"math"

	"github.com/sarchlab/vtolsim/sim"
)

// ErrInvalidSchedulerConfig is returned when a scheduler cannot be built from
// the given parameters.
var ErrInvalidSchedulerConfig = errors.New("invalid scheduler configuration")

// SchedulerBuilder can build schedulers.
type SchedulerBuilder struct {
	tickSize        sim.VTimeInMs
	durationMinutes float64
	compression     float64
	handler         Handler
	clock           Clock
}

// MakeSchedulerBuilder creates a SchedulerBuilder with default parameters.
func MakeSchedulerBuilder() SchedulerBuilder {
	return SchedulerBuilder{
		tickSize:    1000,
		compression: 1,
		clock:       WallClock{},
	}
}

// WithTickSize sets the amount of virtual time that each tick covers.
func (b SchedulerBuilder) WithTickSize(ms sim.VTimeInMs) SchedulerBuilder {
	b.tickSize = ms
	return b
}

// WithDuration sets the virtual length of the run, in minutes.
func (b SchedulerBuilder) WithDuration(minutes float64) SchedulerBuilder {
	b.durationMinutes = minutes
	return b
}

// WithCompression sets how many times faster than real time the virtual time
// runs.
func (b SchedulerBuilder) WithCompression(ratio float64) SchedulerBuilder {
	b.compression = ratio
	return b
}

// WithHandler sets the function that is called on every tick.
func (b SchedulerBuilder) WithHandler(h Handler) SchedulerBuilder {
	b.handler = h
	return b
}

// WithClock sets the real time source.
func (b SchedulerBuilder) WithClock(c Clock) SchedulerBuilder {
	b.clock = c
	return b
}

// Build creates a scheduler.
func (b SchedulerBuilder) Build() (*Scheduler, error) {
	switch {
	case b.tickSize == 0:
		return nil, fmt.Errorf("%w: tick size must be positive",
			ErrInvalidSchedulerConfig)
	case b.handler == nil:
		return nil, fmt.Errorf("%w: handler is not set",
			ErrInvalidSchedulerConfig)
	case !(b.compression > 0) || math.IsInf(b.compression, 0):
		return nil, fmt.Errorf("%w: compression must be a positive number, "+
			"got %g", ErrInvalidSchedulerConfig, b.compression)
	case !(b.durationMinutes >= 0) || math.IsInf(b.durationMinutes, 0):
		return nil, fmt.Errorf("%w: duration must not be negative, got %g",
			ErrInvalidSchedulerConfig, b.durationMinutes)
	case b.clock == nil:
		return nil, fmt.Errorf("%w: clock is not set",
			ErrInvalidSchedulerConfig)
	}

	s := &Scheduler{
		tickSize:    b.tickSize,
		duration:    sim.VTimeInMs(math.Round(b.durationMinutes * 60 * 1000)),
		compression: b.compression,
		handler:     b.handler,
		clock:       b.clock,
	}

	return s, nil
}
