package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List the configured vehicle companies.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

		fmt.Fprintln(tw, "COMPANY\tSPEED (MPH)\tBATTERY (KWH)\t"+
			"CHARGE (H)\tENERGY (KWH/MI)\tPASSENGERS\tFAULTS (/H)")

		for _, c := range cfg.Companies {
			fmt.Fprintf(tw, "%s\t%g\t%g\t%g\t%g\t%d\t%g\n",
				c.CompanyName, c.CruiseSpeed, c.BatteryCapacity,
				c.TimeToCharge, c.EnergyUseAtCruise, c.PassengerCount,
				c.FaultProbPerHour)
		}

		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(companiesCmd)
}
