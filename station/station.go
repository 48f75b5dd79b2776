// Package station models a charging station with a fixed number of charging
// bays and a first-come-first-served waiting queue.
package station

import (
	"github.com/sarchlab/vtolsim/sim"
	"github.com/sarchlab/vtolsim/sim/hooking"
	"github.com/sarchlab/vtolsim/sim/id"
	"github.com/sarchlab/vtolsim/sim/naming"
	"github.com/sarchlab/vtolsim/sim/queueing"
)

// Task kinds reported through the station hooks.
const (
	TaskKindWait   = "wait"
	TaskKindCharge = "charge"
)

// Station is a charging station where devices get recharged. If all the
// charging bays are occupied, a device waits in line for the next free bay.
type Station struct {
	naming.NamedBase
	hooking.HookableBase

	numBays  int
	charging []sim.Chargeable
	waiting  queueing.Buffer

	// taskIDs maps a tracked device to its current wait or charge task. It
	// is only maintained while hooks are registered.
	taskIDs map[sim.Chargeable]string
}

// Begin does nothing. A station starts empty.
func (s *Station) Begin() {
	// no op
}

// AddDevice accepts a device that needs charging. If a bay is free, the device
// takes it at once and is charged by the next call to Tick. Otherwise, it
// joins the tail of the waiting queue. The device must not be tracked by the station already.
func (s *Station) AddDevice(device sim.Chargeable) {
	if len(s.charging) < s.numBays {
		s.charging = append(s.charging, device)
		s.startTask(device, TaskKindCharge)

		return
	}

	s.waiting.Push(device)
	s.startTask(device, TaskKindWait)
}

// Tick charges the devices in the bays, releases the fully charged ones and
// moves waiting devices into the freed bays. A device moved in from the queue
// is not charged until the following Tick.
func (s *Station) Tick(prev, cur sim.VTimeInMs) error {
	s.chargeDevices(cur - prev)
	s.releaseFullyChargedDevices()
	s.admitWaitingDevices()

	return nil
}

func (s *Station) chargeDevices(duration sim.VTimeInMs) {
	for _, device := range s.charging {
		device.AddCharge(device.ChargeRate() * float64(duration))
	}
}

func (s *Station) releaseFullyChargedDevices() {
	stillCharging := s.charging[:0]

	for _, device := range s.charging {
		if device.HasFullCharge() {
			s.endTask(device)
			continue
		}

		stillCharging = append(stillCharging, device)
	}

	for i := len(stillCharging); i < len(s.charging); i++ {
		s.charging[i] = nil
	}

	s.charging = stillCharging
}

func (s *Station) admitWaitingDevices() {
	for len(s.charging) < s.numBays && s.waiting.Size() > 0 {
		device := s.waiting.Pop().(sim.Chargeable)

		s.endTask(device)
		s.charging = append(s.charging, device)
		s.startTask(device, TaskKindCharge)
	}
}

// NumBays returns the number of devices that can charge at the same time.
func (s *Station) NumBays() int {
	return s.numBays
}

// NumCharging returns the number of devices occupying a bay.
func (s *Station) NumCharging() int {
	return len(s.charging)
}

// NumWaiting returns the number of devices waiting for a bay.
func (s *Station) NumWaiting() int {
	return s.waiting.Size()
}

// Charging returns the devices occupying a bay, in the order they got the bay.
func (s *Station) Charging() []sim.Chargeable {
	devices := make([]sim.Chargeable, len(s.charging))
	copy(devices, s.charging)

	return devices
}

// Waiting returns the devices waiting for a bay, head of the queue first.
func (s *Station) Waiting() []sim.Chargeable {
	elements := s.waiting.Elements()

	devices := make([]sim.Chargeable, len(elements))
	for i, e := range elements {
		devices[i] = e.(sim.Chargeable)
	}

	return devices
}

// WaitingQueue returns the buffer that holds the waiting devices so that it
// can be observed through its hooks.
func (s *Station) WaitingQueue() queueing.Buffer {
	return s.waiting
}

func (s *Station) startTask(device sim.Chargeable, kind string) {
	if s.NumHooks() == 0 {
		return
	}

	taskID := id.Generate()
	s.taskIDs[device] = taskID

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    hooking.HookPosTaskStart,
		Item: hooking.TaskStart{
			ID:    taskID,
			Kind:  kind,
			What:  naming.NameOf(device),
			Where: s.Name(),
		},
	})
}

func (s *Station) endTask(device sim.Chargeable) {
	taskID, ok := s.taskIDs[device]
	if !ok {
		return
	}

	delete(s.taskIDs, device)

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    hooking.HookPosTaskEnd,
		Item:   hooking.TaskEnd{ID: taskID},
	})
}
