package simulation

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vtolsim/config"
	"github.com/sarchlab/vtolsim/datarecording"
	"github.com/sarchlab/vtolsim/report"
	"github.com/sarchlab/vtolsim/sim"
	"github.com/sarchlab/vtolsim/sim/hooking"
	"github.com/sarchlab/vtolsim/sim/timing"
	"github.com/sarchlab/vtolsim/vehicle"
)

func quietBuilder() Builder {
	return MakeBuilder().
		WithClock(newInstantClock()).
		WithSeed(42).
		WithoutMonitoring().
		WithoutDataRecording()
}

func mustBuild(b Builder) *Simulation {
	s, err := b.Build()
	Expect(err).ToNot(HaveOccurred())

	DeferCleanup(func() {
		Expect(s.Terminate()).To(Succeed())
	})

	return s
}

var _ = Describe("Builder", func() {
	It("should reject an empty fleet", func() {
		_, err := quietBuilder().WithNumVehicles(0).Build()

		Expect(err).To(MatchError(ErrInvalidSimulationConfig))
	})

	It("should reject a simulation without companies", func() {
		_, err := quietBuilder().WithCompanies(nil).Build()

		Expect(err).To(MatchError(ErrInvalidSimulationConfig))
	})

	It("should reject a monitor port when monitoring is disabled", func() {
		b := quietBuilder()
		b.monitorPort = 8080

		_, err := b.Build()

		Expect(err).To(MatchError(ErrInvalidSimulationConfig))
	})

	It("should reject a zero tick size", func() {
		_, err := quietBuilder().WithTickSize(0).Build()

		Expect(err).To(MatchError(timing.ErrInvalidSchedulerConfig))
	})

	It("should reject an invalid company", func() {
		companies := config.DefaultCompanies()
		companies[2].CompanyName = ""

		_, err := quietBuilder().WithCompanies(companies).Build()

		Expect(err).To(MatchError(vehicle.ErrInvalidConfiguration))
	})

	It("should put the whole fleet in the air", func() {
		s := mustBuild(quietBuilder())

		Expect(s.Vehicles()).To(HaveLen(20))
		for _, v := range s.Vehicles() {
			Expect(v.State()).To(Equal(vehicle.StateFlying))
		}

		Expect(s.Station().NumBays()).To(Equal(3))
		Expect(s.Station().NumCharging()).To(Equal(0))
		Expect(s.Station().NumWaiting()).To(Equal(0))
	})

	It("should apply a configuration", func() {
		c := config.Default()
		c.NumVehicles = 5
		c.NumBays = 1
		c.DurationMinutes = 30
		c.Seed = 7
		c.Recorder.Enabled = false
		c.Monitor.Enabled = false

		s := mustBuild(MakeBuilder().WithConfig(c).WithClock(newInstantClock()))

		Expect(s.Parameters()).To(Equal(report.Parameters{
			NumVehicles:     5,
			NumBays:         1,
			DurationMinutes: 30,
			Compression:     60,
			TickSizeMs:      1000,
			Seed:            7,
		}))
		Expect(s.GetDataRecorder()).To(BeNil())
		Expect(s.GetMonitor()).To(BeNil())
	})
})

var _ = Describe("Simulation", func() {
	It("should account for every tick of every vehicle", func() {
		s := mustBuild(quietBuilder())

		Expect(s.Run(context.Background())).To(Succeed())

		duration := sim.VTimeInMs(180 * 60 * 1000)
		Expect(s.Scheduler().Now()).To(Equal(duration))

		for _, v := range s.Vehicles() {
			total := v.TotalFlightTime() + v.TotalChargeTime() +
				v.TotalWaitTime()
			Expect(total).To(Equal(duration), v.Name())
		}
	})

	It("should only run once", func() {
		s := mustBuild(quietBuilder().WithDuration(1))

		Expect(s.Run(context.Background())).To(Succeed())
		Expect(s.Run(context.Background())).To(MatchError(ErrAlreadyRun))
	})

	It("should never exceed the station capacity", func() {
		s := mustBuild(quietBuilder().WithNumBays(1).WithNumVehicles(10))

		maxCharging := 0
		maxWaiting := 0
		s.Scheduler().AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			if ctx.Pos != timing.HookPosAfterTick {
				return
			}

			if n := s.Station().NumCharging(); n > maxCharging {
				maxCharging = n
			}

			if n := s.Station().NumWaiting(); n > maxWaiting {
				maxWaiting = n
			}
		}))

		Expect(s.Run(context.Background())).To(Succeed())
		Expect(maxCharging).To(BeNumerically("<=", 1))

		stats := s.Statistics()
		Expect(stats.MaxQueueLength).To(BeNumerically(">=", maxWaiting))
		Expect(stats.PeakChargingBays).To(BeNumerically("<=", 1))
		Expect(stats.ChargingBayMinutes).
			To(BeNumerically("~", stats.StationBusyMinutes, 1e-9))
	})

	It("should be reproducible with a seed", func() {
		a := mustBuild(quietBuilder())
		b := mustBuild(quietBuilder())

		Expect(a.Run(context.Background())).To(Succeed())
		Expect(b.Run(context.Background())).To(Succeed())

		Expect(a.VehicleSummaries()).To(Equal(b.VehicleSummaries()))
		Expect(a.CompanySummaries()).To(Equal(b.CompanySummaries()))
	})

	It("should count faults", func() {
		companies := config.DefaultCompanies()
		for i := range companies {
			companies[i].FaultProbPerHour = 1
		}

		s := mustBuild(quietBuilder().WithCompanies(companies))

		Expect(s.Run(context.Background())).To(Succeed())

		var faults uint64
		for _, v := range s.Vehicles() {
			faults += v.NumFaults()
		}

		Expect(faults).To(BeNumerically(">", 0))
		Expect(s.Statistics().Faults).To(Equal(faults))

		var byCompany uint64
		for _, n := range s.FaultsByCompany() {
			byCompany += n
		}
		Expect(byCompany).To(Equal(faults))
	})

	It("should stop when the context is canceled", func() {
		s := mustBuild(quietBuilder())

		ctx, cancel := context.WithCancel(context.Background())
		s.Scheduler().AcceptHook(hooking.HookFunc(func(hc hooking.HookCtx) {
			if hc.Pos == timing.HookPosAfterTick &&
				hc.Item.(timing.TickInfo).Cur == 5000 {
				cancel()
			}
		}))

		err := s.Run(ctx)

		Expect(err).To(MatchError(context.Canceled))
		Expect(s.Scheduler().Now()).To(Equal(sim.VTimeInMs(5000)))
	})

	It("should record vehicle events and summaries", func() {
		path := filepath.Join(GinkgoT().TempDir(), "run")

		s, err := quietBuilder().
			WithDuration(60).
			WithOutputFileName(path).
			Build()
		Expect(err).ToNot(HaveOccurred())

		Expect(s.Run(context.Background())).To(Succeed())
		Expect(s.Terminate()).To(Succeed())

		reader, err := datarecording.NewReader(path + ".sqlite3")
		Expect(err).ToNot(HaveOccurred())
		defer reader.Close()

		reader.MapTable(VehicleEventTable, VehicleEvent{})
		reader.MapTable(report.VehicleSummaryTable, report.VehicleSummary{})

		events, total, err := reader.Query(context.Background(),
			VehicleEventTable, datarecording.QueryParams{
				Where: "TimeMs = ?",
				Args:  []any{0},
			})
		Expect(err).ToNot(HaveOccurred())
		Expect(total).To(Equal(20))

		first := events[0].(*VehicleEvent)
		Expect(first.Kind).To(Equal(EventStateChange))
		Expect(first.From).To(Equal(vehicle.StateUnknown.String()))
		Expect(first.To).To(Equal(vehicle.StateFlying.String()))

		_, total, err = reader.Query(context.Background(),
			report.VehicleSummaryTable, datarecording.QueryParams{})
		Expect(err).ToNot(HaveOccurred())
		Expect(total).To(Equal(20))
	})

	It("should serve the monitor while running", func() {
		s := mustBuild(quietBuilder().WithDuration(1).WithMonitorPort(0))

		Expect(s.GetMonitor()).ToNot(BeNil())
		Expect(s.Run(context.Background())).To(Succeed())
		Expect(s.GetMonitor().URL()).To(HavePrefix("http://localhost:"))
	})
})
