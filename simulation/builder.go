package simulation

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/sarchlab/vtolsim/config"
	"github.com/sarchlab/vtolsim/datarecording"
	"github.com/sarchlab/vtolsim/monitoring"
	"github.com/sarchlab/vtolsim/report"
	"github.com/sarchlab/vtolsim/sim"
	"github.com/sarchlab/vtolsim/sim/hooking"
	"github.com/sarchlab/vtolsim/sim/timing"
	"github.com/sarchlab/vtolsim/station"
	"github.com/sarchlab/vtolsim/vehicle"
)

// ErrInvalidSimulationConfig is returned when a simulation cannot be built
// from the given parameters.
var ErrInvalidSimulationConfig = errors.New("invalid simulation configuration")

// Builder can be used to build a simulation.
type Builder struct {
	numVehicles        int
	numBays            int
	tickSize           sim.VTimeInMs
	durationMinutes    float64
	compression        float64
	companies          []vehicle.Configuration
	seed               uint64
	randSource         rand.Source
	clock              timing.Clock
	logger             zerolog.Logger
	lowChargeThreshold float64

	recordingOn    bool
	recorderConfig datarecording.RecorderConfig
	monitorOn      bool
	monitorPort    int
	openBrowser    bool
}

// MakeBuilder creates a new builder with the parameters of the default
// scenario: 20 vehicles, 3 bays and 3 hours compressed to 3 minutes.
func MakeBuilder() Builder {
	return Builder{
		numVehicles:        20,
		numBays:            3,
		tickSize:           1000,
		durationMinutes:    180,
		compression:        60,
		companies:          config.DefaultCompanies(),
		clock:              timing.WallClock{},
		logger:             zerolog.Nop(),
		lowChargeThreshold: vehicle.DefaultLowChargeThreshold,
		recordingOn:        true,
		monitorOn:          true,
	}
}

// WithConfig applies a loaded configuration.
func (b Builder) WithConfig(c *config.Config) Builder {
	b = b.WithNumVehicles(c.NumVehicles).
		WithNumBays(c.NumBays).
		WithTickSize(sim.VTimeInMs(c.TickSize)).
		WithDuration(c.DurationMinutes).
		WithCompression(c.Compression).
		WithCompanies(c.Companies).
		WithSeed(c.Seed).
		WithLowChargeThreshold(c.LowChargeThreshold)

	if c.Recorder.Enabled {
		b = b.WithRecorderConfig(c.Recorder.RecorderConfig)
	} else {
		b = b.WithoutDataRecording()
	}

	if c.Monitor.Enabled {
		b = b.WithMonitorPort(c.Monitor.Port)
		if c.Monitor.OpenBrowser {
			b = b.WithBrowser()
		}
	} else {
		b = b.WithoutMonitoring()
	}

	return b
}

// WithNumVehicles sets the size of the fleet.
func (b Builder) WithNumVehicles(n int) Builder {
	b.numVehicles = n
	return b
}

// WithNumBays sets the number of charging bays of the station.
func (b Builder) WithNumBays(n int) Builder {
	b.numBays = n
	return b
}

// WithTickSize sets the virtual length of a tick.
func (b Builder) WithTickSize(ms sim.VTimeInMs) Builder {
	b.tickSize = ms
	return b
}

// WithDuration sets the virtual length of the simulation, in minutes.
func (b Builder) WithDuration(minutes float64) Builder {
	b.durationMinutes = minutes
	return b
}

// WithCompression sets how many times faster than the wall clock the virtual
// time runs.
func (b Builder) WithCompression(ratio float64) Builder {
	b.compression = ratio
	return b
}

// WithCompanies sets the vehicle models that the fleet is drawn from.
func (b Builder) WithCompanies(companies []vehicle.Configuration) Builder {
	b.companies = companies
	return b
}

// WithSeed makes the fleet and the faults reproducible. Seed 0 means a
// random seed.
func (b Builder) WithSeed(seed uint64) Builder {
	b.seed = seed
	if seed != 0 {
		b.randSource = rand.NewPCG(seed, seed)
	}

	return b
}

// WithRandSource sets the source that the fleet composition and the faults
// are drawn from.
func (b Builder) WithRandSource(src rand.Source) Builder {
	b.randSource = src
	return b
}

// WithClock sets the wall clock that paces the ticks.
func (b Builder) WithClock(c timing.Clock) Builder {
	b.clock = c
	return b
}

// WithLogger sets the logger.
func (b Builder) WithLogger(logger zerolog.Logger) Builder {
	b.logger = logger
	return b
}

// WithLowChargeThreshold sets the percent of battery capacity below which a
// vehicle seeks a charge.
func (b Builder) WithLowChargeThreshold(percent float64) Builder {
	b.lowChargeThreshold = percent
	return b
}

// WithOutputFileName sets the SQLite file name, without extension, for the
// data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.recordingOn = true
	b.recorderConfig.Path = filename

	return b
}

// WithRecorderConfig selects the data recorder backend.
func (b Builder) WithRecorderConfig(c datarecording.RecorderConfig) Builder {
	b.recordingOn = true
	b.recorderConfig = c

	return b
}

// WithoutDataRecording disables the data recorder.
func (b Builder) WithoutDataRecording() Builder {
	b.recordingOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorOn = true
	b.monitorPort = port

	return b
}

// WithBrowser opens the monitoring page when the simulation starts.
func (b Builder) WithBrowser() Builder {
	b.openBrowser = true
	return b
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

func (b Builder) parametersMustBeValid() error {
	switch {
	case b.numVehicles <= 0:
		return fmt.Errorf("%w: number of vehicles must be positive, got %d",
			ErrInvalidSimulationConfig, b.numVehicles)
	case len(b.companies) == 0:
		return fmt.Errorf("%w: at least one company is required",
			ErrInvalidSimulationConfig)
	case !b.monitorOn && b.monitorPort != 0:
		return fmt.Errorf("%w: monitor port cannot be set when monitoring "+
			"is disabled", ErrInvalidSimulationConfig)
	}

	return nil
}

// Build builds the simulation. The vehicles are in the air and the station
// is empty when Build returns.
func (b Builder) Build() (*Simulation, error) {
	if err := b.parametersMustBeValid(); err != nil {
		return nil, err
	}

	s := &Simulation{
		id:     xid.New().String(),
		logger: b.logger,
		params: b.parameters(),
	}

	var err error

	s.station, err = station.MakeBuilder().
		WithNumBays(b.numBays).
		Build("Station")
	if err != nil {
		return nil, err
	}

	s.scheduler, err = timing.MakeSchedulerBuilder().
		WithTickSize(b.tickSize).
		WithDuration(b.durationMinutes).
		WithCompression(b.compression).
		WithClock(b.clock).
		WithHandler(s.tick).
		Build()
	if err != nil {
		return nil, err
	}

	if err := b.buildFleet(s); err != nil {
		return nil, err
	}

	s.buildTracers()

	if b.recordingOn {
		if err := s.startRecording(b.recorderConfig); err != nil {
			return nil, err
		}
	}

	for _, v := range s.vehicles {
		v.Begin()
	}
	s.station.Begin()

	if b.monitorOn {
		s.monitor = b.buildMonitor(s)
	}

	return s, nil
}

func (b Builder) parameters() report.Parameters {
	return report.Parameters{
		NumVehicles:     b.numVehicles,
		NumBays:         b.numBays,
		DurationMinutes: b.durationMinutes,
		Compression:     b.compression,
		TickSizeMs:      uint64(b.tickSize),
		Seed:            b.seed,
	}
}

func (b Builder) buildFleet(s *Simulation) error {
	src := b.randSource
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}

	factory := vehicle.NewFactory(src)

	for i, company := range b.companies {
		proto, err := vehicle.MakeBuilder().
			WithConfiguration(company).
			WithStation(s.station).
			WithLowChargeThreshold(b.lowChargeThreshold).
			WithRandSource(src).
			Build(fmt.Sprintf("Prototype[%d]", i))
		if err != nil {
			return fmt.Errorf("company %q: %w", company.CompanyName, err)
		}

		factory.AddPrototype(proto)
	}

	s.vehicles = make([]*vehicle.Vehicle, 0, b.numVehicles)
	for i := 0; i < b.numVehicles; i++ {
		v, err := factory.Create(fmt.Sprintf("Vehicle[%d]", i))
		if err != nil {
			return err
		}

		s.vehicles = append(s.vehicles, v)
	}

	return nil
}

func (b Builder) buildMonitor(s *Simulation) *monitoring.Monitor {
	m := monitoring.NewMonitor().
		WithLogger(b.logger).
		WithPortNumber(b.monitorPort)

	if b.openBrowser {
		m.WithBrowser()
	}

	m.RegisterLock(&s.lock)
	m.RegisterTimeTeller(s.scheduler)
	m.RegisterStation(s.station)

	for _, v := range s.vehicles {
		m.RegisterComponent(v)
	}

	return m
}

var _ hooking.TimeTeller = (*timing.Scheduler)(nil)
