package report

import (
	"fmt"
	"io"
	"text/tabwriter"
)

const banner = "******************************** R E S U L T S " +
	"********************************"

// Write renders the parameters, the per-vehicle table and the per-company
// table.
func Write(
	w io.Writer,
	params Parameters,
	vehicles []VehicleSummary,
	companies []CompanySummary,
) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintf(tw, "\n%s\n", banner)

	writeParameters(tw, params)
	writeVehicles(tw, vehicles)
	writeCompanies(tw, companies)

	return tw.Flush()
}

func writeParameters(w io.Writer, p Parameters) {
	fmt.Fprintf(w, "\nSimulation Parameters\n")
	fmt.Fprintf(w, "  Number of eVTOLs:            %d\n", p.NumVehicles)
	fmt.Fprintf(w, "  Number of Charging Bays:     %d\n", p.NumBays)
	fmt.Fprintf(w, "  Total Simulation Time:       %g minutes\n",
		p.DurationMinutes)
	fmt.Fprintf(w, "  Simulation Time Compression: %g\n", p.Compression)
	fmt.Fprintf(w, "  Timestep Interval:           %d milliseconds\n",
		p.TickSizeMs)

	if p.Seed != 0 {
		fmt.Fprintf(w, "  Random Seed:                 %d\n", p.Seed)
	}
}

func writeVehicles(w io.Writer, vehicles []VehicleSummary) {
	fmt.Fprintf(w, "\nIndividual eVTOL Stats\n")
	fmt.Fprintf(w, "VEHICLE\tCOMPANY\tFLIGHT\tCHARGE\tWAIT\tENDING\tCHARGE\tFAULTS\t\n")
	fmt.Fprintf(w, "\t\tMINUTES\tMINUTES\tMINUTES\tSTATE\tREMAINING\t\t\n")

	for _, v := range vehicles {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%.2f\t%s\t%.2f%%\t%d\t\n",
			v.Vehicle, v.Company,
			v.FlightMinutes, v.ChargeMinutes, v.WaitMinutes,
			v.EndingState, v.PercentChargeRemaining, v.Faults)
	}
}

func writeCompanies(w io.Writer, companies []CompanySummary) {
	fmt.Fprintf(w, "\nCompany Stats\n")
	fmt.Fprintf(w, "COMPANY\tCOUNT\tAVERAGE\tAVERAGE\tAVERAGE\tMAX\tTOTAL\t\n")
	fmt.Fprintf(w, "\t\tFLT TIME\tCHG TIME\tWAT TIME\tNUMBER\tPASSENGR\t\n")
	fmt.Fprintf(w, "\t\tMINUTES\tMINUTES\tMINUTES\tFAULTS\tMILES\t\n")

	for _, c := range companies {
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%.2f\t%d\t%.2f\t\n",
			c.Company, c.Count,
			c.AvgFlightMinutes, c.AvgChargeMinutes, c.AvgWaitMinutes,
			c.MaxFaults, c.PassengerMiles)
	}
}
