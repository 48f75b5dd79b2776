package config

import "github.com/sarchlab/vtolsim/vehicle"

// DefaultCompanies returns the vehicle models that are simulated when the
// configuration does not list any.
func DefaultCompanies() []vehicle.Configuration {
	return []vehicle.Configuration{
		{
			CompanyName:       "Alpha",
			CruiseSpeed:       120,
			BatteryCapacity:   320,
			TimeToCharge:      0.6,
			EnergyUseAtCruise: 1.6,
			PassengerCount:    4,
			FaultProbPerHour:  0.25,
		},
		{
			CompanyName:       "Beta",
			CruiseSpeed:       100,
			BatteryCapacity:   100,
			TimeToCharge:      0.2,
			EnergyUseAtCruise: 1.5,
			PassengerCount:    5,
			FaultProbPerHour:  0.10,
		},
		{
			CompanyName:       "Charlie",
			CruiseSpeed:       220,
			BatteryCapacity:   320,
			TimeToCharge:      0.8,
			EnergyUseAtCruise: 2.2,
			PassengerCount:    3,
			FaultProbPerHour:  0.05,
		},
		{
			CompanyName:       "Delta",
			CruiseSpeed:       90,
			BatteryCapacity:   120,
			TimeToCharge:      0.62,
			EnergyUseAtCruise: 0.8,
			PassengerCount:    2,
			FaultProbPerHour:  0.22,
		},
		{
			CompanyName:       "Echo",
			CruiseSpeed:       30,
			BatteryCapacity:   150,
			TimeToCharge:      0.3,
			EnergyUseAtCruise: 5.8,
			PassengerCount:    2,
			FaultProbPerHour:  0.61,
		},
	}
}
