package simulation

import (
	"github.com/sarchlab/vtolsim/datarecording"
	"github.com/sarchlab/vtolsim/sim/hooking"
	"github.com/sarchlab/vtolsim/vehicle"
)

// Tables written while the simulation runs.
const (
	VehicleEventTable = "vehicle_event"
	TaskTable         = "task"
)

// Kinds of vehicle events.
const (
	EventStateChange = "state_change"
	EventFault       = "fault"
)

// VehicleEvent is an entry of the VehicleEventTable.
type VehicleEvent struct {
	TimeMs  uint64
	Vehicle string
	Company string
	Kind    string
	From    string
	To      string
}

// TaskRecord is an entry of the TaskTable. Each wait or charge session at the
// station is a task.
type TaskRecord struct {
	ID        string
	Kind      string
	What      string
	Location  string
	StartTime uint64
	EndTime   uint64
}

// taskTableBackend writes the tasks finished by a DBTracer into a data
// recorder.
type taskTableBackend struct {
	recorder datarecording.DataRecorder
}

func newTaskTableBackend(
	recorder datarecording.DataRecorder,
) *taskTableBackend {
	recorder.CreateTable(TaskTable, TaskRecord{})

	return &taskTableBackend{recorder: recorder}
}

func (b *taskTableBackend) Write(t hooking.Task) {
	b.recorder.InsertData(TaskTable, TaskRecord{
		ID:        t.ID,
		Kind:      t.Kind,
		What:      t.What,
		Location:  t.Where,
		StartTime: uint64(t.StartTime),
		EndTime:   uint64(t.EndTime),
	})
}

func (b *taskTableBackend) Flush() {
	b.recorder.Flush()
}

func (s *Simulation) startRecording(c datarecording.RecorderConfig) error {
	recorder, err := datarecording.NewWithConfig(c)
	if err != nil {
		return err
	}

	s.dataRecorder = recorder
	s.visTracer = hooking.NewDBTracer(s.scheduler, newTaskTableBackend(recorder))
	s.station.AcceptHook(s.visTracer)

	recorder.CreateTable(VehicleEventTable, VehicleEvent{})

	for _, v := range s.vehicles {
		v.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			s.recordVehicleEvent(v, ctx)
		}))
	}

	return nil
}

func (s *Simulation) recordVehicleEvent(v *vehicle.Vehicle, ctx hooking.HookCtx) {
	event := VehicleEvent{
		Vehicle: v.Name(),
		Company: v.Configuration().CompanyName,
	}

	switch item := ctx.Item.(type) {
	case vehicle.StateChange:
		event.TimeMs = uint64(item.Time)
		event.Kind = EventStateChange
		event.From = item.From.String()
		event.To = item.To.String()
	case vehicle.Fault:
		event.TimeMs = uint64(item.Time)
		event.Kind = EventFault
	default:
		return
	}

	s.dataRecorder.InsertData(VehicleEventTable, event)
}
