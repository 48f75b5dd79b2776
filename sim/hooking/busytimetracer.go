package hooking

import (
	"github.com/sarchlab/vtolsim/sim"
)

// BusyTimeTracer traces how long a domain has at least one task of a kind in
// flight, for example how long a station has at least one bay charging.
// Overlapping tasks are counted once. It also keeps the task time summed over
// all tasks and the largest number of tasks in flight at the same time.
//
// The time teller must not move backwards.
type BusyTimeTracer struct {
	timeTeller TimeTeller
	filter     TaskFilter

	inflight    map[string]sim.VTimeInMs
	busySince   sim.VTimeInMs
	busyTime    sim.VTimeInMs
	taskTime    sim.VTimeInMs
	concurrency int
}

// NewBusyTimeTracer creates a new BusyTimeTracer. A nil filter accepts all
// tasks.
func NewBusyTimeTracer(
	timeTeller TimeTeller,
	filter TaskFilter,
) *BusyTimeTracer {
	return &BusyTimeTracer{
		timeTeller: timeTeller,
		filter:     filter,
		inflight:   make(map[string]sim.VTimeInMs),
	}
}

// Func records the start end of a task.
func (t *BusyTimeTracer) Func(ctx HookCtx) {
	switch ctx.Pos {
	case HookPosTaskStart:
		t.StartTask(ctx.Item.(TaskStart))
	case HookPosTaskEnd:
		t.EndTask(ctx.Item.(TaskEnd))
	}
}

// BusyTime returns the time of the closed busy periods. A period is closed
// when its last task ends or when TerminateAllTasks is called.
func (t *BusyTimeTracer) BusyTime() sim.VTimeInMs {
	return t.busyTime
}

// TotalTaskTime returns the sum of the durations of the ended tasks.
func (t *BusyTimeTracer) TotalTaskTime() sim.VTimeInMs {
	return t.taskTime
}

// MaxConcurrency returns the largest number of tasks that were in flight at
// the same time.
func (t *BusyTimeTracer) MaxConcurrency() int {
	return t.concurrency
}

// NumInflightTasks returns the number of started tasks that have not ended.
func (t *BusyTimeTracer) NumInflightTasks() int {
	return len(t.inflight)
}

// StartTask records the task start time
func (t *BusyTimeTracer) StartTask(taskStart TaskStart) {
	if t.filter != nil && !t.filter(taskStart) {
		return
	}

	now := t.timeTeller.Now()
	if len(t.inflight) == 0 {
		t.busySince = now
	}

	t.inflight[taskStart.ID] = now
	t.concurrency = max(t.concurrency, len(t.inflight))
}

// EndTask records the end of the task
func (t *BusyTimeTracer) EndTask(taskEnd TaskEnd) {
	start, ok := t.inflight[taskEnd.ID]
	if !ok {
		return
	}

	t.end(taskEnd.ID, start, t.timeTeller.Now())
}

// TerminateAllTasks ends all the tasks in flight at the current time.
func (t *BusyTimeTracer) TerminateAllTasks() {
	now := t.timeTeller.Now()

	for id, start := range t.inflight {
		t.end(id, start, now)
	}
}

func (t *BusyTimeTracer) end(id string, start, now sim.VTimeInMs) {
	delete(t.inflight, id)
	t.taskTime += now - start

	if len(t.inflight) == 0 {
		t.busyTime += now - t.busySince
	}
}
