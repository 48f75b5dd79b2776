// Package id generates unique identifiers for simulation objects.
package id

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

var (
	generatorLock sync.Mutex
	generator     IDGenerator
)

// IDGenerator can generate IDs.
type IDGenerator interface {
	// Generate an ID
	Generate() string
}

// NewIDGenerator returns a generator that produces sequential IDs.
func NewIDGenerator() IDGenerator {
	return &sequentialIDGenerator{}
}

// NewXIDGenerator returns a generator that produces globally unique IDs. The
// IDs generated are not deterministic.
func NewXIDGenerator() IDGenerator {
	return xidGenerator{}
}

// UseGenerator replaces the generator used by Generate.
func UseGenerator(g IDGenerator) {
	generatorLock.Lock()
	defer generatorLock.Unlock()

	generator = g
}

// Generate returns a new ID from the package-wide generator. A sequential
// generator is used unless another one is configured with UseGenerator.
func Generate() string {
	generatorLock.Lock()
	if generator == nil {
		generator = NewIDGenerator()
	}
	g := generator
	generatorLock.Unlock()

	return g.Generate()
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)
	id := strconv.FormatUint(idNumber, 10)

	return id
}

type xidGenerator struct{}

func (xidGenerator) Generate() string {
	return xid.New().String()
}
