package station

import (
	"errors"
	"fmt"

	"github.com/sarchlab/vtolsim/sim"
	"github.com/sarchlab/vtolsim/sim/naming"
	"github.com/sarchlab/vtolsim/sim/queueing"
)

// ErrInvalidStationConfig is returned when a station cannot be built from the
// given parameters.
var ErrInvalidStationConfig = errors.New("invalid charging station configuration")

// A Builder can build charging stations.
type Builder struct {
	numBays int
}

// MakeBuilder creates a Builder with a single charging bay.
func MakeBuilder() Builder {
	return Builder{
		numBays: 1,
	}
}

// WithNumBays sets the number of devices that can charge at the same time.
func (b Builder) WithNumBays(n int) Builder {
	b.numBays = n
	return b
}

// Build creates a new charging station.
func (b Builder) Build(name string) (*Station, error) {
	if b.numBays <= 0 {
		return nil, fmt.Errorf("%w: number of bays must be positive, got %d",
			ErrInvalidStationConfig, b.numBays)
	}

	s := &Station{
		NamedBase: naming.MakeNamedBase(name),
		numBays:   b.numBays,
		charging:  make([]sim.Chargeable, 0, b.numBays),
		waiting: queueing.MakeBufferBuilder().
			Build(name + ".WaitingQueue"),
		taskIDs: make(map[sim.Chargeable]string),
	}

	return s, nil
}
