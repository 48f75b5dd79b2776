package simulation

import (
	"github.com/sarchlab/vtolsim/sim/bottleneckanalysis"
	"github.com/sarchlab/vtolsim/sim/hooking"
	"github.com/sarchlab/vtolsim/station"
	"github.com/sarchlab/vtolsim/vehicle"
)

// Statistics describe how busy the charging station has been.
type Statistics struct {
	WaitSessions       uint64
	MeanWaitMinutes    float64
	ChargeSessions     uint64
	MeanChargeMinutes  float64
	StationBusyMinutes float64
	ChargingBayMinutes float64
	PeakChargingBays   int
	Faults             uint64
	MeanQueueLength    float64
	MaxQueueLength     int
}

const (
	msPerMinute = 60 * 1000

	// queueReportPeriod is the virtual time between two queue length
	// reports.
	queueReportPeriod = 30 * msPerMinute
)

func (s *Simulation) buildTracers() {
	s.waitTracer = hooking.NewAverageTimeTracer(
		s.scheduler, hooking.KindFilter(station.TaskKindWait))
	s.chargeTracer = hooking.NewAverageTimeTracer(
		s.scheduler, hooking.KindFilter(station.TaskKindCharge))
	s.busyTracer = hooking.NewBusyTimeTracer(
		s.scheduler, hooking.KindFilter(station.TaskKindCharge))
	s.faultCounter = hooking.NewTagCountTracer()
	s.queueAnalyzer = bottleneckanalysis.MakeBufferAnalyzerBuilder().
		WithTimeTeller(s.scheduler).
		WithPeriod(queueReportPeriod).
		Build()

	s.queueAnalyzer.Watch(s.station.WaitingQueue())

	s.station.AcceptHook(s.waitTracer)
	s.station.AcceptHook(s.chargeTracer)
	s.station.AcceptHook(s.busyTracer)

	for _, v := range s.vehicles {
		v.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			if ctx.Pos != vehicle.HookPosFault {
				return
			}

			s.faultCounter.TagTask(hooking.TaskTag{
				TaskID: v.Name(),
				What:   v.Configuration().CompanyName,
				Detail: "fault",
			})
		}))
	}
}

// Statistics returns the station usage observed so far. Only completed wait
// and charge sessions count towards the means.
func (s *Simulation) Statistics() Statistics {
	s.lock.Lock()
	defer s.lock.Unlock()

	queue := s.queueAnalyzer.Levels()[0]

	return Statistics{
		WaitSessions:       s.waitTracer.TotalCount(),
		MeanWaitMinutes:    s.waitTracer.AverageTime() / msPerMinute,
		ChargeSessions:     s.chargeTracer.TotalCount(),
		MeanChargeMinutes:  s.chargeTracer.AverageTime() / msPerMinute,
		StationBusyMinutes: float64(s.busyTracer.BusyTime()) / msPerMinute,
		ChargingBayMinutes: float64(s.busyTracer.TotalTaskTime()) / msPerMinute,
		PeakChargingBays:   s.busyTracer.MaxConcurrency(),
		Faults:             s.faultCounter.TotalCount(),
		MeanQueueLength:    queue.Average,
		MaxQueueLength:     queue.Max,
	}
}

// FaultsByCompany returns the number of faults of each company that had at
// least one.
func (s *Simulation) FaultsByCompany() map[string]uint64 {
	faults := make(map[string]uint64)
	for _, company := range s.faultCounter.GetTagNames() {
		faults[company] = s.faultCounter.GetTagCount(company)
	}

	return faults
}
