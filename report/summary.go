// Package report summarizes the state of a fleet at the end of a run and
// renders the summaries as text, database tables or a workbook.
package report

import (
	"slices"
	"strings"

	"github.com/sarchlab/vtolsim/vehicle"
)

// Parameters describe how a run was set up.
type Parameters struct {
	NumVehicles     int
	NumBays         int
	DurationMinutes float64
	Compression     float64
	TickSizeMs      uint64
	Seed            uint64
}

// VehicleSummary is the end-of-run record of one vehicle.
type VehicleSummary struct {
	Vehicle                string
	Company                string
	FlightMinutes          float64
	ChargeMinutes          float64
	WaitMinutes            float64
	EndingState            string
	PercentChargeRemaining float64
	Faults                 uint64
	PassengerMiles         float64
}

// CompanySummary aggregates the vehicles of one company.
type CompanySummary struct {
	Company          string
	Count            int
	AvgFlightMinutes float64
	AvgChargeMinutes float64
	AvgWaitMinutes   float64
	MaxFaults        uint64
	PassengerMiles   float64
}

// SummarizeVehicles returns one summary per vehicle, in the given order.
func SummarizeVehicles(vehicles []*vehicle.Vehicle) []VehicleSummary {
	summaries := make([]VehicleSummary, 0, len(vehicles))

	for _, v := range vehicles {
		summaries = append(summaries, VehicleSummary{
			Vehicle:                v.Name(),
			Company:                v.Configuration().CompanyName,
			FlightMinutes:          v.TotalFlightTime().Minutes(),
			ChargeMinutes:          v.TotalChargeTime().Minutes(),
			WaitMinutes:            v.TotalWaitTime().Minutes(),
			EndingState:            v.State().String(),
			PercentChargeRemaining: v.PercentChargeRemaining(),
			Faults:                 v.NumFaults(),
			PassengerMiles:         v.PassengerMiles(),
		})
	}

	return summaries
}

// SummarizeCompanies groups the vehicles by company. The result is sorted by
// company name. Companies without vehicles are not listed.
func SummarizeCompanies(vehicles []*vehicle.Vehicle) []CompanySummary {
	byCompany := make(map[string]*CompanySummary)

	for _, v := range vehicles {
		name := v.Configuration().CompanyName

		s, found := byCompany[name]
		if !found {
			s = &CompanySummary{Company: name}
			byCompany[name] = s
		}

		s.Count++
		s.AvgFlightMinutes += v.TotalFlightTime().Minutes()
		s.AvgChargeMinutes += v.TotalChargeTime().Minutes()
		s.AvgWaitMinutes += v.TotalWaitTime().Minutes()
		s.MaxFaults = max(s.MaxFaults, v.NumFaults())
		s.PassengerMiles += v.PassengerMiles()
	}

	summaries := make([]CompanySummary, 0, len(byCompany))
	for _, s := range byCompany {
		n := float64(s.Count)
		s.AvgFlightMinutes /= n
		s.AvgChargeMinutes /= n
		s.AvgWaitMinutes /= n

		summaries = append(summaries, *s)
	}

	slices.SortFunc(summaries, func(a, b CompanySummary) int {
		return strings.Compare(a.Company, b.Company)
	})

	return summaries
}
