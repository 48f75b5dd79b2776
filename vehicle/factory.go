package vehicle

import (
	"errors"
	"math/rand/v2"
)

// ErrNoPrototype is returned when a factory is asked to create a vehicle
// before any prototype is added.
var ErrNoPrototype = errors.New("no vehicle prototype")

// A Factory creates vehicles by cloning a randomly selected prototype.
type Factory struct {
	prototypes []*Vehicle
	rng        *rand.Rand
}

// NewFactory creates a factory that selects prototypes with the given source.
// A randomly seeded source is used if src is nil.
func NewFactory(src rand.Source) *Factory {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}

	return &Factory{
		rng: rand.New(src),
	}
}

// AddPrototype registers a vehicle that the factory can clone.
func (f *Factory) AddPrototype(v *Vehicle) {
	f.prototypes = append(f.prototypes, v)
}

// NumPrototypes returns the number of registered prototypes.
func (f *Factory) NumPrototypes() int {
	return len(f.prototypes)
}

// Create clones a prototype picked uniformly at random. The fault generator
// of the clone is seeded from the factory source, so a seeded factory
// produces a reproducible fleet.
func (f *Factory) Create(name string) (*Vehicle, error) {
	if len(f.prototypes) == 0 {
		return nil, ErrNoPrototype
	}

	proto := f.prototypes[f.rng.IntN(len(f.prototypes))]
	rng := rand.New(rand.NewPCG(f.rng.Uint64(), f.rng.Uint64()))

	return proto.cloneWithRand(name, rng), nil
}
