package vehicle

import (
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/vtolsim/sim"
	"github.com/sarchlab/vtolsim/sim/hooking"
	"github.com/sarchlab/vtolsim/station"
)

// drainsTo49Percent loses 51 kWh out of 100 kWh in one second of flight and
// recharges at 1 kWh per second.
func drainsTo49Percent() Configuration {
	c, err := NewConfiguration("Test", 100, 100, 1.0/36, 1836, 2, 0)
	Expect(err).NotTo(HaveOccurred())

	return c
}

// barelyDrains loses about 0.1 kWh per hour of flight.
func barelyDrains(faultProb float64) Configuration {
	c, err := NewConfiguration("Test", 100, 100, 1, 0.001, 2, faultProb)
	Expect(err).NotTo(HaveOccurred())

	return c
}

func mustBuild(b Builder, name string) *Vehicle {
	v, err := b.Build(name)
	Expect(err).NotTo(HaveOccurred())

	return v
}

var _ = Describe("Vehicle", func() {
	var (
		mockCtrl *gomock.Controller
		st       *MockStation
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		st = NewMockStation(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should start fully charged in the unknown state", func() {
		v := mustBuild(MakeBuilder().WithConfiguration(drainsTo49Percent()), "V")

		Expect(v.Name()).To(Equal("V"))
		Expect(v.State()).To(Equal(StateUnknown))
		Expect(v.HasFullCharge()).To(BeTrue())
		Expect(v.PercentChargeRemaining()).To(Equal(100.0))
	})

	It("should reject an invalid configuration", func() {
		_, err := MakeBuilder().Build("V")

		Expect(err).To(MatchError(ErrInvalidConfiguration))
	})

	It("should reject an out of range threshold", func() {
		_, err := MakeBuilder().
			WithConfiguration(drainsTo49Percent()).
			WithLowChargeThreshold(150).
			Build("V")

		Expect(err).To(MatchError(ErrInvalidConfiguration))
	})

	It("should refuse to tick before Begin", func() {
		v := mustBuild(MakeBuilder().WithConfiguration(drainsTo49Percent()), "V")

		err := v.Tick(0, 1000)

		Expect(err).To(MatchError(ErrNotBegun))
		Expect(v.TotalFlightTime()).To(BeZero())
		Expect(v.HasFullCharge()).To(BeTrue())
	})

	It("should fly after Begin", func() {
		v := mustBuild(MakeBuilder().WithConfiguration(barelyDrains(0)), "V")

		v.Begin()
		Expect(v.Tick(0, 1000)).To(Succeed())
		Expect(v.Tick(1000, 3000)).To(Succeed())

		Expect(v.State()).To(Equal(StateFlying))
		Expect(v.TotalFlightTime()).To(Equal(sim.VTimeInMs(3000)))
		Expect(v.CurrentCharge()).To(BeNumerically("<", 100))
	})

	It("should keep flying at 49% with the default threshold", func() {
		v := mustBuild(MakeBuilder().
			WithConfiguration(drainsTo49Percent()).
			WithStation(st), "V")

		v.Begin()
		Expect(v.Tick(0, 1000)).To(Succeed())

		Expect(v.PercentChargeRemaining()).To(BeNumerically("~", 49, 1e-6))
		Expect(v.State()).To(Equal(StateFlying))
	})

	It("should ask the station for a charge when nearly empty", func() {
		c, _ := NewConfiguration("Test", 100, 100, 1, 3585.6, 2, 0)
		v := mustBuild(MakeBuilder().
			WithConfiguration(c).
			WithStation(st), "V")
		st.EXPECT().AddDevice(v)

		v.Begin()
		Expect(v.Tick(0, 1000)).To(Succeed())

		Expect(v.PercentChargeRemaining()).To(BeNumerically("~", 0.4, 1e-6))
		Expect(v.State()).To(Equal(StateWaiting))
	})

	It("should never drain below empty", func() {
		v := mustBuild(MakeBuilder().WithConfiguration(drainsTo49Percent()), "V")

		v.Begin()
		Expect(v.Tick(0, 10000)).To(Succeed())

		Expect(v.CurrentCharge()).To(BeZero())
		Expect(v.State()).To(Equal(StateWaiting))
	})

	It("should wait without a station", func() {
		v := mustBuild(MakeBuilder().
			WithConfiguration(drainsTo49Percent()).
			WithLowChargeThreshold(50), "V")

		v.Begin()
		Expect(v.Tick(0, 1000)).To(Succeed())
		Expect(v.Tick(1000, 2000)).To(Succeed())
		Expect(v.Tick(2000, 3500)).To(Succeed())

		Expect(v.State()).To(Equal(StateWaiting))
		Expect(v.TotalFlightTime()).To(Equal(sim.VTimeInMs(1000)))
		Expect(v.TotalWaitTime()).To(Equal(sim.VTimeInMs(2500)))
	})

	It("should clamp the charge at the battery capacity", func() {
		v := mustBuild(MakeBuilder().
			WithConfiguration(drainsTo49Percent()).
			WithLowChargeThreshold(50).
			WithStation(st), "V")
		st.EXPECT().AddDevice(v)

		v.Begin()
		Expect(v.Tick(0, 1000)).To(Succeed())

		v.AddCharge(10)
		Expect(v.State()).To(Equal(StateCharging))
		Expect(v.HasFullCharge()).To(BeFalse())

		v.AddCharge(1000)
		Expect(v.CurrentCharge()).To(Equal(100.0))
		Expect(v.HasFullCharge()).To(BeTrue())
		Expect(v.State()).To(Equal(StateFlying))
	})

	It("should count charging time", func() {
		v := mustBuild(MakeBuilder().
			WithConfiguration(drainsTo49Percent()).
			WithLowChargeThreshold(50).
			WithStation(st), "V")
		st.EXPECT().AddDevice(v)

		v.Begin()
		Expect(v.Tick(0, 1000)).To(Succeed())
		v.AddCharge(1)
		Expect(v.Tick(1000, 2000)).To(Succeed())
		Expect(v.Tick(2000, 3000)).To(Succeed())

		Expect(v.TotalChargeTime()).To(Equal(sim.VTimeInMs(2000)))
		Expect(v.State()).To(Equal(StateCharging))
	})

	It("should go through a full flight and charge cycle", func() {
		s, err := station.MakeBuilder().WithNumBays(1).Build("Station")
		Expect(err).NotTo(HaveOccurred())

		v := mustBuild(MakeBuilder().
			WithConfiguration(drainsTo49Percent()).
			WithLowChargeThreshold(50).
			WithStation(s), "V")

		v.Begin()
		Expect(v.Tick(0, 1000)).To(Succeed())
		Expect(v.PercentChargeRemaining()).To(BeNumerically("~", 49, 1e-6))
		Expect(v.State()).To(Equal(StateWaiting))
		Expect(s.Charging()).To(ConsistOf(v))

		Expect(s.Tick(0, 1000)).To(Succeed())
		Expect(v.State()).To(Equal(StateCharging))

		now := sim.VTimeInMs(1000)
		for i := 0; i < 100 && v.State() != StateFlying; i++ {
			Expect(v.Tick(now, now+1000)).To(Succeed())
			Expect(s.Tick(now, now+1000)).To(Succeed())
			now += 1000
		}

		Expect(v.State()).To(Equal(StateFlying))
		Expect(v.CurrentCharge()).To(Equal(100.0))
		Expect(s.NumCharging()).To(Equal(0))
		Expect(s.NumWaiting()).To(Equal(0))
	})

	Context("when sampling faults", func() {
		It("should never fault with zero probability", func() {
			v := mustBuild(MakeBuilder().
				WithConfiguration(barelyDrains(0)).
				WithRandSource(rand.NewPCG(1, 2)), "V")

			v.Begin()
			for i := sim.VTimeInMs(0); i < 100; i++ {
				Expect(v.Tick(i*1000, (i+1)*1000)).To(Succeed())
			}

			Expect(v.NumFaults()).To(BeZero())
		})

		It("should always fault when a fault is certain", func() {
			v := mustBuild(MakeBuilder().
				WithConfiguration(barelyDrains(1)), "V")

			v.Begin()
			hour := sim.VTimeInMs(3600000)
			Expect(v.Tick(0, 2*hour)).To(Succeed())
			Expect(v.Tick(2*hour, 4*hour)).To(Succeed())

			Expect(v.NumFaults()).To(Equal(uint64(2)))
		})

		It("should repeat the faults of a seeded source", func() {
			run := func() uint64 {
				v := mustBuild(MakeBuilder().
					WithConfiguration(barelyDrains(0.5)).
					WithRandSource(rand.NewPCG(7, 11)), "V")

				v.Begin()
				minute := sim.VTimeInMs(60000)
				for i := sim.VTimeInMs(0); i < 200; i++ {
					Expect(v.Tick(i*minute, (i+1)*minute)).To(Succeed())
				}

				return v.NumFaults()
			}

			Expect(run()).To(Equal(run()))
		})

		It("should report faults through hooks", func() {
			v := mustBuild(MakeBuilder().
				WithConfiguration(barelyDrains(1)), "V")

			var faults []Fault
			v.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
				if ctx.Pos == HookPosFault {
					faults = append(faults, ctx.Item.(Fault))
				}
			}))

			v.Begin()
			Expect(v.Tick(0, 7200000)).To(Succeed())

			Expect(faults).To(Equal([]Fault{{Time: 7200000}}))
		})
	})

	It("should report state changes through hooks", func() {
		v := mustBuild(MakeBuilder().
			WithConfiguration(drainsTo49Percent()).
			WithLowChargeThreshold(50).
			WithStation(st), "V")
		st.EXPECT().AddDevice(v)

		var changes []StateChange
		v.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			if ctx.Pos == HookPosStateChange {
				changes = append(changes, ctx.Item.(StateChange))
			}
		}))

		v.Begin()
		Expect(v.Tick(0, 1000)).To(Succeed())
		v.AddCharge(1)
		v.AddCharge(100)

		Expect(changes).To(Equal([]StateChange{
			{From: StateUnknown, To: StateFlying, Time: 0},
			{From: StateFlying, To: StateWaiting, Time: 1000},
			{From: StateWaiting, To: StateCharging, Time: 1000},
			{From: StateCharging, To: StateFlying, Time: 1000},
		}))
	})

	It("should name its states", func() {
		Expect(StateFlying.String()).To(Equal("FLYING"))
		Expect(StateWaiting.String()).To(Equal("WAITING"))
		Expect(StateCharging.String()).To(Equal("CHARGING"))
		Expect(StateUnknown.String()).To(Equal("UNKNOWN"))
	})

	It("should compute passenger miles", func() {
		v := mustBuild(MakeBuilder().WithConfiguration(barelyDrains(0)), "V")

		v.Begin()
		Expect(v.Tick(0, 1800000)).To(Succeed())

		Expect(v.PassengerMiles()).To(BeNumerically("~", 0.5*100*2, 1e-9))
	})

	Context("when cloned", func() {
		It("should copy the configuration and counters", func() {
			v := mustBuild(MakeBuilder().
				WithConfiguration(barelyDrains(0)).
				WithStation(st), "Proto")
			v.Begin()
			Expect(v.Tick(0, 1000)).To(Succeed())

			c := v.Clone("Copy")

			Expect(c.Name()).To(Equal("Copy"))
			Expect(c.Configuration()).To(Equal(v.Configuration()))
			Expect(c.State()).To(Equal(StateFlying))
			Expect(c.TotalFlightTime()).To(Equal(v.TotalFlightTime()))
			Expect(c.CurrentCharge()).To(Equal(v.CurrentCharge()))
			Expect(c.station).To(BeIdenticalTo(v.station))
		})

		It("should not share the random generator", func() {
			v := mustBuild(MakeBuilder().
				WithConfiguration(barelyDrains(0)).
				WithRandSource(rand.NewPCG(1, 2)), "Proto")

			a := v.Clone("A")
			b := v.Clone("B")

			Expect(a.rng).NotTo(BeIdenticalTo(v.rng))
			Expect(a.rng).NotTo(BeIdenticalTo(b.rng))

			drawsA := []uint64{a.rng.Uint64(), a.rng.Uint64(), a.rng.Uint64()}
			drawsB := []uint64{b.rng.Uint64(), b.rng.Uint64(), b.rng.Uint64()}
			Expect(drawsA).NotTo(Equal(drawsB))
		})

		It("should not copy hooks", func() {
			v := mustBuild(MakeBuilder().WithConfiguration(barelyDrains(0)), "P")
			v.AcceptHook(hooking.HookFunc(func(hooking.HookCtx) {}))

			Expect(v.Clone("C").NumHooks()).To(BeZero())
		})
	})
})
