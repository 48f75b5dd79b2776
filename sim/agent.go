// Package sim defines the capability contracts shared by everything that
// takes part in a vehicle simulation.
package sim

// VTimeInMs is the virtual time since the start of the simulation, measured
// in milliseconds.
type VTimeInMs uint64

// Minutes converts the virtual time to minutes.
func (t VTimeInMs) Minutes() float64 {
	return float64(t) / (60 * 1000)
}

// Hours converts the virtual time to hours.
func (t VTimeInMs) Hours() float64 {
	return float64(t) / (60 * 60 * 1000)
}

// A Tickable is an object that participates in a simulation by receiving
// timestep updates.
type Tickable interface {
	// Begin is called exactly once before the first tick to establish the
	// initial state.
	Begin()

	// Tick updates the state for the interval (prev, cur]. Both times are
	// virtual milliseconds since the start of the simulation and prev < cur.
	Tick(prev, cur VTimeInMs) error
}

// A Chargeable is a device that can be charged at a charging station.
type Chargeable interface {
	// AddCharge adds energy to the device, in kWh.
	AddCharge(kWh float64)

	// ChargeRate returns the kWh per virtual millisecond that the device can
	// receive.
	ChargeRate() float64

	// HasFullCharge returns true if the device is fully charged.
	HasFullCharge() bool
}
