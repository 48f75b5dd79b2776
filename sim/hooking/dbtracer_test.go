package hooking

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vtolsim/sim"
)

type sliceBackend struct {
	tasks   []Task
	flushed int
}

func (b *sliceBackend) Write(t Task) {
	b.tasks = append(b.tasks, t)
}

func (b *sliceBackend) Flush() {
	b.flushed++
}

var _ = Describe("DBTracer", func() {
	var (
		timeTeller *stubTimeTeller
		backend    *sliceBackend
		t          *DBTracer
	)

	BeforeEach(func() {
		timeTeller = &stubTimeTeller{}
		backend = &sliceBackend{}
		t = NewDBTracer(timeTeller, backend)
	})

	It("should panic on incomplete task start", func() {
		Expect(func() { t.StartTask(TaskStart{ID: "1"}) }).To(Panic())
	})

	It("should write a finished task", func() {
		timeTeller.now = 1000
		t.StartTask(TaskStart{
			ID: "1", Kind: "wait", What: "V[0]", Where: "Station",
		})
		t.TagTask(TaskTag{TaskID: "1", What: "queued"})

		timeTeller.now = 5000
		t.EndTask(TaskEnd{ID: "1"})

		Expect(backend.tasks).To(HaveLen(1))
		Expect(backend.tasks[0].StartTime).To(Equal(sim.VTimeInMs(1000)))
		Expect(backend.tasks[0].EndTime).To(Equal(sim.VTimeInMs(5000)))
		Expect(backend.tasks[0].Tags).To(HaveLen(1))
		Expect(t.NumInflightTasks()).To(Equal(0))
	})

	It("should terminate in-flight tasks", func() {
		t.StartTask(TaskStart{
			ID: "1", Kind: "charge", What: "V[0]", Where: "Station",
		})

		timeTeller.now = 7000
		t.Terminate()

		Expect(backend.tasks).To(HaveLen(1))
		Expect(backend.tasks[0].EndTime).To(Equal(sim.VTimeInMs(7000)))
		Expect(backend.flushed).To(Equal(1))
	})
})

var _ = Describe("HookableBase", func() {
	It("should invoke hooks in order", func() {
		h := &HookableBase{}
		var order []string

		h.AcceptHook(HookFunc(func(HookCtx) { order = append(order, "a") }))
		h.AcceptHook(HookFunc(func(HookCtx) { order = append(order, "b") }))
		h.InvokeHook(HookCtx{})

		Expect(h.NumHooks()).To(Equal(2))
		Expect(order).To(Equal([]string{"a", "b"}))
	})

	It("should reject duplicated hooks", func() {
		h := &HookableBase{}
		tracer := NewTagCountTracer()

		h.AcceptHook(tracer)

		Expect(func() { h.AcceptHook(tracer) }).To(Panic())
	})
})
