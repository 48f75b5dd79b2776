package bottleneckanalysis

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/vtolsim/sim"
	"github.com/sarchlab/vtolsim/sim/queueing"
)

var _ = Describe("BufferAnalyzer", func() {
	var (
		mockCtrl   *gomock.Controller
		timeTeller *MockTimeTeller
		buf        queueing.Buffer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		timeTeller = NewMockTimeTeller(mockCtrl)
		buf = queueing.MakeBufferBuilder().Build("Buf")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	expectTimes := func(times ...sim.VTimeInMs) {
		calls := make([]any, 0, len(times))
		for _, t := range times {
			calls = append(calls, timeTeller.EXPECT().Now().Return(t))
		}

		gomock.InOrder(calls...)
	}

	It("should calculate average buffer level", func() {
		analyzer := MakeBufferAnalyzerBuilder().
			WithTimeTeller(timeTeller).
			Build()

		expectTimes(0, 0, 10, 20, 30, 40, 40)

		analyzer.Watch(buf)
		buf.Push(1)
		buf.Push(1)
		buf.Push(1)
		buf.Push(1)
		buf.Push(1)

		levels := analyzer.Levels()

		Expect(levels).To(HaveLen(1))
		Expect(levels[0].Buffer).To(Equal("Buf"))
		Expect(levels[0].Average).To(Equal(2.5))
		Expect(levels[0].Max).To(Equal(5))
		Expect(levels[0].Current).To(Equal(5))
		Expect(levels[0].PeriodAverage).To(Equal(0.0))
	})

	It("should account for pops", func() {
		analyzer := MakeBufferAnalyzerBuilder().
			WithTimeTeller(timeTeller).
			Build()

		expectTimes(0, 0, 0, 10, 30)

		analyzer.Watch(buf)
		buf.Push(1)
		buf.Push(1)
		buf.Pop()

		levels := analyzer.Levels()

		Expect(levels[0].Average).To(BeNumerically("~", 4.0/3.0, 1e-9))
		Expect(levels[0].Max).To(Equal(2))
		Expect(levels[0].Current).To(Equal(1))
	})

	It("should calculate per-period buffer level", func() {
		analyzer := MakeBufferAnalyzerBuilder().
			WithTimeTeller(timeTeller).
			WithPeriod(100).
			Build()

		expectTimes(0, 0, 49, 98, 98)

		analyzer.Watch(buf)
		buf.Push(1)
		buf.Push(1)
		buf.Push(1)

		Expect(analyzer.Levels()[0].PeriodAverage).
			To(BeNumerically("~", 1.5, 0.01))
	})

	It("should start over when a period ends", func() {
		analyzer := MakeBufferAnalyzerBuilder().
			WithTimeTeller(timeTeller).
			WithPeriod(100).
			Build()

		expectTimes(0, 0, 150, 180)

		analyzer.Watch(buf)
		buf.Push(1)
		buf.Push(1)

		levels := analyzer.Levels()

		Expect(levels[0].PeriodAverage).To(BeNumerically("~", 1.375, 1e-9))
		Expect(levels[0].Average).To(BeNumerically("~", 210.0/180.0, 1e-9))
	})

	It("should refuse to watch a buffer twice", func() {
		analyzer := MakeBufferAnalyzerBuilder().
			WithTimeTeller(timeTeller).
			Build()

		timeTeller.EXPECT().Now().Return(sim.VTimeInMs(0))
		analyzer.Watch(buf)

		Expect(func() { analyzer.Watch(buf) }).To(Panic())
	})
})
