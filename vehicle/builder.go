package vehicle

import (
	"fmt"
	"math/rand/v2"

	"github.com/sarchlab/vtolsim/sim/naming"
)

// Builder can build vehicles.
type Builder struct {
	config             Configuration
	station            Station
	randSource         rand.Source
	lowChargeThreshold float64
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		lowChargeThreshold: DefaultLowChargeThreshold,
	}
}

// WithConfiguration sets the vehicle model.
func (b Builder) WithConfiguration(c Configuration) Builder {
	b.config = c
	return b
}

// WithStation sets the station that the vehicle goes to when its battery is
// low. A vehicle without a station waits forever once it needs charging.
func (b Builder) WithStation(s Station) Builder {
	b.station = s
	return b
}

// WithRandSource sets the source that fault sampling draws from. A randomly
// seeded source is used if not set.
func (b Builder) WithRandSource(src rand.Source) Builder {
	b.randSource = src
	return b
}

// WithLowChargeThreshold sets the percent of battery capacity below which the
// vehicle stops flying and seeks a charge.
func (b Builder) WithLowChargeThreshold(percent float64) Builder {
	b.lowChargeThreshold = percent
	return b
}

// Build creates a vehicle with a fully charged battery. The vehicle needs to
// Begin before it can be ticked.
func (b Builder) Build(name string) (*Vehicle, error) {
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	if b.lowChargeThreshold < 0 || b.lowChargeThreshold > 100 {
		return nil, fmt.Errorf("%w: low charge threshold must be in "+
			"[0, 100] percent, got %g",
			ErrInvalidConfiguration, b.lowChargeThreshold)
	}

	src := b.randSource
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}

	v := &Vehicle{
		NamedBase:          naming.MakeNamedBase(name),
		config:             b.config,
		station:            b.station,
		rng:                rand.New(src),
		lowChargeThreshold: b.lowChargeThreshold,
		currentCharge:      b.config.BatteryCapacity,
	}

	return v, nil
}
