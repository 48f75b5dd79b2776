package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheets of the workbook written by WriteWorkbook.
const (
	ParametersSheet = "Parameters"
	VehiclesSheet   = "Vehicles"
	CompaniesSheet  = "Companies"
)

// WriteWorkbook saves the summaries as an Excel workbook.
func WriteWorkbook(
	filename string,
	params Parameters,
	vehicles []VehicleSummary,
	companies []CompanySummary,
) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ParametersSheet); err != nil {
		return err
	}

	rows := [][]any{
		{"Number of eVTOLs", params.NumVehicles},
		{"Number of Charging Bays", params.NumBays},
		{"Total Simulation Time (minutes)", params.DurationMinutes},
		{"Simulation Time Compression", params.Compression},
		{"Timestep Interval (ms)", params.TickSizeMs},
		{"Random Seed", params.Seed},
	}
	if err := setRows(f, ParametersSheet, rows); err != nil {
		return err
	}

	rows = [][]any{{
		"Vehicle", "Company", "Flight Minutes", "Charge Minutes",
		"Wait Minutes", "Ending State", "Charge Remaining (%)", "Faults",
		"Passenger Miles",
	}}
	for _, v := range vehicles {
		rows = append(rows, []any{
			v.Vehicle, v.Company, v.FlightMinutes, v.ChargeMinutes,
			v.WaitMinutes, v.EndingState, v.PercentChargeRemaining, v.Faults,
			v.PassengerMiles,
		})
	}
	if err := addSheet(f, VehiclesSheet, rows); err != nil {
		return err
	}

	rows = [][]any{{
		"Company", "Count", "Avg Flight Minutes", "Avg Charge Minutes",
		"Avg Wait Minutes", "Max Faults", "Passenger Miles",
	}}
	for _, c := range companies {
		rows = append(rows, []any{
			c.Company, c.Count, c.AvgFlightMinutes, c.AvgChargeMinutes,
			c.AvgWaitMinutes, c.MaxFaults, c.PassengerMiles,
		})
	}
	if err := addSheet(f, CompaniesSheet, rows); err != nil {
		return err
	}

	return f.SaveAs(filename)
}

func addSheet(f *excelize.File, sheet string, rows [][]any) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	return setRows(f, sheet, rows)
}

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	return nil
}
