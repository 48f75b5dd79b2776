package vehicle

import (
	"errors"
	"fmt"
)

const msPerHour = 60.0 * 60.0 * 1000.0

// ErrInvalidConfiguration is returned when a vehicle configuration has a
// field out of range.
var ErrInvalidConfiguration = errors.New("invalid vehicle configuration")

// Configuration describes a vehicle model. It is shared by value by all the
// vehicles spawned from the same prototype.
type Configuration struct {
	CompanyName       string  `json:"name" mapstructure:"name"`
	CruiseSpeed       float64 `json:"cruiseSpeed" mapstructure:"cruiseSpeed"`             // mph
	BatteryCapacity   float64 `json:"batteryCapacity" mapstructure:"batteryCapacity"`     // kWh
	TimeToCharge      float64 `json:"timeToCharge" mapstructure:"timeToCharge"`           // hours
	EnergyUseAtCruise float64 `json:"energyUseAtCruise" mapstructure:"energyUseAtCruise"` // kWh/mile
	PassengerCount    int     `json:"passengerCount" mapstructure:"passengerCount"`
	FaultProbPerHour  float64 `json:"faultProbPerHour" mapstructure:"faultProbPerHour"`
}

// NewConfiguration creates a validated Configuration.
func NewConfiguration(
	companyName string,
	cruiseSpeed, batteryCapacity, timeToCharge, energyUseAtCruise float64,
	passengerCount int,
	faultProbPerHour float64,
) (Configuration, error) {
	c := Configuration{
		CompanyName:       companyName,
		CruiseSpeed:       cruiseSpeed,
		BatteryCapacity:   batteryCapacity,
		TimeToCharge:      timeToCharge,
		EnergyUseAtCruise: energyUseAtCruise,
		PassengerCount:    passengerCount,
		FaultProbPerHour:  faultProbPerHour,
	}

	if err := c.Validate(); err != nil {
		return Configuration{}, err
	}

	return c, nil
}

// Validate checks every field of the configuration.
func (c Configuration) Validate() error {
	switch {
	case c.CompanyName == "":
		return fmt.Errorf("%w: company name cannot be blank",
			ErrInvalidConfiguration)
	case c.CruiseSpeed <= 0:
		return c.mustBePositive("cruise speed", c.CruiseSpeed)
	case c.BatteryCapacity <= 0:
		return c.mustBePositive("battery capacity", c.BatteryCapacity)
	case c.TimeToCharge <= 0:
		return c.mustBePositive("time to charge", c.TimeToCharge)
	case c.EnergyUseAtCruise <= 0:
		return c.mustBePositive("energy use at cruise", c.EnergyUseAtCruise)
	case c.PassengerCount <= 0:
		return c.mustBePositive("passenger count", float64(c.PassengerCount))
	case c.FaultProbPerHour < 0 || c.FaultProbPerHour > 1:
		return fmt.Errorf("%w: %s: fault probability per hour must be in "+
			"[0, 1], got %g",
			ErrInvalidConfiguration, c.CompanyName, c.FaultProbPerHour)
	}

	return nil
}

func (c Configuration) mustBePositive(field string, value float64) error {
	return fmt.Errorf("%w: %s: %s must be a positive number, got %g",
		ErrInvalidConfiguration, c.CompanyName, field, value)
}

// ChargeRate returns the rate at which the battery can be charged, in kWh
// per millisecond.
func (c Configuration) ChargeRate() float64 {
	return c.BatteryCapacity / (c.TimeToCharge * msPerHour)
}

// EnergyUsePerMs returns the energy consumed when flying at cruise speed, in
// kWh per millisecond.
func (c Configuration) EnergyUsePerMs() float64 {
	return c.EnergyUseAtCruise * c.CruiseSpeed / msPerHour
}
