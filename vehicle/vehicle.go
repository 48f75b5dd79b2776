// Package vehicle models eVTOL aircraft that fly until their battery runs low
// and then recharge at a charging station.
package vehicle

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/sarchlab/vtolsim/sim"
	"github.com/sarchlab/vtolsim/sim/hooking"
	"github.com/sarchlab/vtolsim/sim/naming"
)

// DefaultLowChargeThreshold is the percent of battery capacity below which a
// flying vehicle stops to recharge.
const DefaultLowChargeThreshold = 0.5

// ErrNotBegun is returned when a vehicle is ticked before Begin is called.
var ErrNotBegun = errors.New("vehicle ticked before Begin")

// State is the operating state of a vehicle.
type State int

// All the vehicle states.
const (
	StateUnknown State = iota
	StateFlying
	StateWaiting
	StateCharging
)

func (s State) String() string {
	switch s {
	case StateFlying:
		return "FLYING"
	case StateWaiting:
		return "WAITING"
	case StateCharging:
		return "CHARGING"
	default:
		return "UNKNOWN"
	}
}

// Station is where a vehicle goes when its battery runs low.
type Station interface {
	AddDevice(device sim.Chargeable)
}

// HookPosStateChange marks a vehicle moving from one state to another. The
// hook item is a StateChange.
var HookPosStateChange = &hooking.HookPos{Name: "Vehicle State Change"}

// HookPosFault marks a fault that occurred during flight. The hook item is a
// Fault.
var HookPosFault = &hooking.HookPos{Name: "Vehicle Fault"}

// StateChange is the hook item of HookPosStateChange.
type StateChange struct {
	From, To State
	Time     sim.VTimeInMs
}

// Fault is the hook item of HookPosFault.
type Fault struct {
	Time sim.VTimeInMs
}

// A Vehicle is an eVTOL aircraft.
type Vehicle struct {
	naming.NamedBase
	hooking.HookableBase

	config             Configuration
	station            Station
	rng                *rand.Rand
	lowChargeThreshold float64

	state           State
	currentCharge   float64
	totalFlightTime sim.VTimeInMs
	totalChargeTime sim.VTimeInMs
	totalWaitTime   sim.VTimeInMs
	numFaults       uint64

	// now is the end of the tick being processed.
	now sim.VTimeInMs
}

// Begin puts the vehicle into the air.
func (v *Vehicle) Begin() {
	v.setState(StateFlying)
}

// Tick advances the vehicle from prev to cur.
func (v *Vehicle) Tick(prev, cur sim.VTimeInMs) error {
	if v.state == StateUnknown {
		return fmt.Errorf("%w: %s", ErrNotBegun, v.Name())
	}

	duration := cur - prev
	v.now = cur

	switch v.state {
	case StateFlying:
		v.fly(duration)
	case StateWaiting:
		v.totalWaitTime += duration
	case StateCharging:
		v.totalChargeTime += duration
		if v.HasFullCharge() {
			v.setState(StateFlying)
		}
	}

	return nil
}

func (v *Vehicle) fly(duration sim.VTimeInMs) {
	v.totalFlightTime += duration
	v.currentCharge -= v.config.EnergyUsePerMs() * float64(duration)
	v.currentCharge = max(v.currentCharge, 0)

	if v.faultOccurred(duration) {
		v.numFaults++
		v.invokeHook(HookPosFault, Fault{Time: v.now})
	}

	if v.PercentChargeRemaining() < v.lowChargeThreshold {
		v.setState(StateWaiting)

		if v.station != nil {
			v.station.AddDevice(v)
		}
	}
}

func (v *Vehicle) faultOccurred(duration sim.VTimeInMs) bool {
	p := v.config.FaultProbPerHour / msPerHour * float64(duration)

	return v.rng.Float64() < p
}

// AddCharge puts energy into the battery, capped at the battery capacity. The
// vehicle flies again once the battery is full.
func (v *Vehicle) AddCharge(kWh float64) {
	v.currentCharge = min(v.currentCharge+kWh, v.config.BatteryCapacity)

	if v.HasFullCharge() {
		v.setState(StateFlying)
		return
	}

	v.setState(StateCharging)
}

// HasFullCharge returns true if the battery is at capacity.
func (v *Vehicle) HasFullCharge() bool {
	return v.currentCharge == v.config.BatteryCapacity
}

// ChargeRate returns the charge rate of the battery in kWh per millisecond.
func (v *Vehicle) ChargeRate() float64 {
	return v.config.ChargeRate()
}

func (v *Vehicle) setState(s State) {
	if s == v.state {
		return
	}

	change := StateChange{From: v.state, To: s, Time: v.now}
	v.state = s

	v.invokeHook(HookPosStateChange, change)
}

func (v *Vehicle) invokeHook(pos *hooking.HookPos, item any) {
	if v.NumHooks() == 0 {
		return
	}

	v.InvokeHook(hooking.HookCtx{
		Domain: v,
		Pos:    pos,
		Item:   item,
	})
}

// Clone creates a new vehicle with the same configuration, station and
// counters. The clone draws faults from its own newly seeded generator.
// Hooks are not copied.
func (v *Vehicle) Clone(name string) *Vehicle {
	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	return v.cloneWithRand(name, rng)
}

func (v *Vehicle) cloneWithRand(name string, rng *rand.Rand) *Vehicle {
	c := &Vehicle{
		NamedBase:          naming.MakeNamedBase(name),
		config:             v.config,
		station:            v.station,
		rng:                rng,
		lowChargeThreshold: v.lowChargeThreshold,
		state:              v.state,
		currentCharge:      v.currentCharge,
		totalFlightTime:    v.totalFlightTime,
		totalChargeTime:    v.totalChargeTime,
		totalWaitTime:      v.totalWaitTime,
		numFaults:          v.numFaults,
		now:                v.now,
	}

	return c
}

// Configuration returns the vehicle model.
func (v *Vehicle) Configuration() Configuration {
	return v.config
}

// State returns the current state.
func (v *Vehicle) State() State {
	return v.state
}

// TotalFlightTime returns the accumulated time in the air.
func (v *Vehicle) TotalFlightTime() sim.VTimeInMs {
	return v.totalFlightTime
}

// TotalChargeTime returns the accumulated time spent in a charging bay.
func (v *Vehicle) TotalChargeTime() sim.VTimeInMs {
	return v.totalChargeTime
}

// TotalWaitTime returns the accumulated time spent waiting for a bay.
func (v *Vehicle) TotalWaitTime() sim.VTimeInMs {
	return v.totalWaitTime
}

// NumFaults returns the number of faults so far.
func (v *Vehicle) NumFaults() uint64 {
	return v.numFaults
}

// CurrentCharge returns the energy left in the battery, in kWh.
func (v *Vehicle) CurrentCharge() float64 {
	return v.currentCharge
}

// PercentChargeRemaining returns the energy left as a percent of the battery
// capacity.
func (v *Vehicle) PercentChargeRemaining() float64 {
	return v.currentCharge / v.config.BatteryCapacity * 100
}

// PassengerMiles returns the passenger miles flown so far.
func (v *Vehicle) PassengerMiles() float64 {
	return v.totalFlightTime.Hours() *
		v.config.CruiseSpeed *
		float64(v.config.PassengerCount)
}
