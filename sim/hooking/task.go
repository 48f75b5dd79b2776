package hooking

import "github.com/sarchlab/vtolsim/sim"

// A list of hook poses for the hooks to apply to
var (
	HookPosTaskStart = &HookPos{Name: "HookPosTaskStart"}
	HookPosTaskTag   = &HookPos{Name: "HookPosTaskTag"}
	HookPosTaskEnd   = &HookPos{Name: "HookPosTaskEnd"}
)

// TaskStart is data that is passed to the hook when a task starts.
type TaskStart struct {
	ID       string
	ParentID string
	Kind     string
	What     string
	Where    string
}

// TaskTag is data attached to a task to provide more information about the
// task.
type TaskTag struct {
	TaskID string
	What   string
	Detail string
}

// TaskEnd is data that is passed to the hook when a task ends.
type TaskEnd struct {
	ID string
}

type tag struct {
	What   string `json:"what"`
	Detail string `json:"detail"`
}

// Task is a completed or terminated task as seen by a tracer.
type Task struct {
	ID        string        `json:"id"`
	ParentID  string        `json:"parent_id"`
	Kind      string        `json:"kind"`
	What      string        `json:"what"`
	Where     string        `json:"where"`
	StartTime sim.VTimeInMs `json:"start_time"`
	EndTime   sim.VTimeInMs `json:"end_time"`
	Tags      []tag         `json:"tags"`
}

// TaskFilter is a function that can filter interesting tasks. If this function
// returns true, the task is considered useful.
type TaskFilter func(t TaskStart) bool

// KindFilter returns a TaskFilter that accepts the tasks of the given kind.
func KindFilter(kind string) TaskFilter {
	return func(t TaskStart) bool {
		return t.Kind == kind
	}
}

// A TimeTeller can tell the current virtual time.
type TimeTeller interface {
	Now() sim.VTimeInMs
}
