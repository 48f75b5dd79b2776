// Package simulation puts a fleet of vehicles and a charging station together
// and runs them under a virtual-time scheduler.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sarchlab/vtolsim/datarecording"
	"github.com/sarchlab/vtolsim/monitoring"
	"github.com/sarchlab/vtolsim/report"
	"github.com/sarchlab/vtolsim/sim"
	"github.com/sarchlab/vtolsim/sim/bottleneckanalysis"
	"github.com/sarchlab/vtolsim/sim/hooking"
	"github.com/sarchlab/vtolsim/sim/timing"
	"github.com/sarchlab/vtolsim/station"
	"github.com/sarchlab/vtolsim/vehicle"
)

// ErrAlreadyRun is returned when a simulation is run a second time.
var ErrAlreadyRun = errors.New("simulation has already run")

// A Simulation runs a fleet of vehicles that share a charging station.
type Simulation struct {
	id     string
	logger zerolog.Logger
	params report.Parameters

	// lock is held for a whole tick pass.
	lock       sync.Mutex
	hasRun     bool
	terminated bool
	scheduler  *timing.Scheduler
	station    *station.Station
	vehicles   []*vehicle.Vehicle

	waitTracer   *hooking.TotalAvgTimeTracer
	chargeTracer *hooking.TotalAvgTimeTracer
	busyTracer   *hooking.BusyTimeTracer
	faultCounter *hooking.TagCountTracer

	queueAnalyzer *bottleneckanalysis.BufferAnalyzer

	dataRecorder datarecording.DataRecorder
	visTracer    *hooking.DBTracer
	monitor      *monitoring.Monitor
	progressBar  *monitoring.ProgressBar
}

// ID returns the unique identifier of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Run starts the monitor, if any, and ticks until the duration is covered
// or ctx is done. A simulation can only run once.
func (s *Simulation) Run(ctx context.Context) error {
	s.lock.Lock()
	if s.hasRun {
		s.lock.Unlock()
		return ErrAlreadyRun
	}
	s.hasRun = true
	s.lock.Unlock()

	if s.monitor != nil {
		if err := s.monitor.StartServer(); err != nil {
			return err
		}

		s.progressBar = s.monitor.CreateProgressBar(
			"Simulation", s.numTicks())
		defer s.monitor.CompleteProgressBar(s.progressBar)
	}

	s.logger.Info().
		Str("id", s.id).
		Int("vehicles", len(s.vehicles)).
		Int("bays", s.station.NumBays()).
		Float64("duration_min", s.params.DurationMinutes).
		Float64("compression", s.params.Compression).
		Dur("expected_real_duration", s.scheduler.TotalRealDuration()).
		Msg("simulation started")

	start := time.Now()
	err := s.scheduler.Run(ctx)

	s.lock.Lock()
	s.busyTracer.TerminateAllTasks()
	s.queueAnalyzer.Report(s.logger)
	s.lock.Unlock()

	if err != nil {
		s.logger.Error().Err(err).
			Float64("virtual_min", s.scheduler.Now().Minutes()).
			Msg("simulation stopped")

		return fmt.Errorf("simulation %s: %w", s.id, err)
	}

	s.logger.Info().
		Dur("real_duration", time.Since(start)).
		Float64("virtual_min", s.scheduler.Now().Minutes()).
		Msg("simulation completed")

	return nil
}

func (s *Simulation) numTicks() uint64 {
	tick := s.scheduler.TickSize()
	return uint64((s.scheduler.Duration() + tick - 1) / tick)
}

// tick runs every vehicle in population order, then the station. A vehicle
// that asks for a bay during this pass is seen by the station in the same
// pass.
func (s *Simulation) tick(prev, cur sim.VTimeInMs) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	for _, v := range s.vehicles {
		if err := v.Tick(prev, cur); err != nil {
			return err
		}
	}

	if err := s.station.Tick(prev, cur); err != nil {
		return err
	}

	if s.progressBar != nil {
		s.progressBar.IncrementFinished(1)
	}

	return nil
}

// Vehicles returns the fleet in population order.
func (s *Simulation) Vehicles() []*vehicle.Vehicle {
	return s.vehicles
}

// Station returns the charging station.
func (s *Simulation) Station() *station.Station {
	return s.station
}

// Scheduler returns the scheduler that drives the simulation.
func (s *Simulation) Scheduler() *timing.Scheduler {
	return s.scheduler
}

// Parameters returns how the simulation is set up.
func (s *Simulation) Parameters() report.Parameters {
	return s.params
}

// GetDataRecorder returns the data recorder used in the simulation. It is nil
// if data recording is disabled.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation. It is nil if
// monitoring is disabled.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// VehicleSummaries summarizes every vehicle.
func (s *Simulation) VehicleSummaries() []report.VehicleSummary {
	s.lock.Lock()
	defer s.lock.Unlock()

	return report.SummarizeVehicles(s.vehicles)
}

// CompanySummaries summarizes the fleet per company.
func (s *Simulation) CompanySummaries() []report.CompanySummary {
	s.lock.Lock()
	defer s.lock.Unlock()

	return report.SummarizeCompanies(s.vehicles)
}

// Terminate records the summaries, stops the monitor and closes the data
// recorder. Calls after the first one do nothing.
func (s *Simulation) Terminate() error {
	if s.terminated {
		return nil
	}
	s.terminated = true

	var errs []error

	if s.monitor != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		errs = append(errs, s.monitor.StopServer(ctx))
	}

	if s.dataRecorder != nil {
		s.visTracer.Terminate()
		report.Record(s.dataRecorder, s.params,
			s.VehicleSummaries(), s.CompanySummaries())

		errs = append(errs, s.dataRecorder.Close())
	}

	return errors.Join(errs...)
}
