package report

import "github.com/sarchlab/vtolsim/datarecording"

// Tables written by Record.
const (
	ParametersTable     = "parameters"
	VehicleSummaryTable = "vehicle_summary"
	CompanySummaryTable = "company_summary"
)

// Record stores the summaries into the recorder and flushes it.
func Record(
	recorder datarecording.DataRecorder,
	params Parameters,
	vehicles []VehicleSummary,
	companies []CompanySummary,
) {
	recorder.CreateTable(ParametersTable, Parameters{})
	recorder.InsertData(ParametersTable, params)

	recorder.CreateTable(VehicleSummaryTable, VehicleSummary{})
	for _, v := range vehicles {
		recorder.InsertData(VehicleSummaryTable, v)
	}

	recorder.CreateTable(CompanySummaryTable, CompanySummary{})
	for _, c := range companies {
		recorder.InsertData(CompanySummaryTable, c)
	}

	recorder.Flush()
}
