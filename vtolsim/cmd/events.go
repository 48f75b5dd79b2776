package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/vtolsim/datarecording"
	"github.com/sarchlab/vtolsim/simulation"
)

var eventsCmd = &cobra.Command{
	Use:   "events <file.sqlite3>",
	Short: "Print the vehicle events recorded by a run.",
	Args:  cobra.ExactArgs(1),
	RunE:  listEvents,
}

func init() {
	eventsCmd.Flags().String("vehicle", "", "only show this vehicle")
	eventsCmd.Flags().String("kind", "",
		"only show this kind of event (state_change, fault)")
	eventsCmd.Flags().Int("limit", 0, "show at most this many events")
	eventsCmd.Flags().Int("offset", 0, "skip this many events")

	rootCmd.AddCommand(eventsCmd)
}

func eventQuery(cmd *cobra.Command) datarecording.QueryParams {
	f := cmd.Flags()

	vehicle, _ := f.GetString("vehicle")
	kind, _ := f.GetString("kind")
	limit, _ := f.GetInt("limit")
	offset, _ := f.GetInt("offset")

	var (
		conditions []string
		args       []any
	)

	if vehicle != "" {
		conditions = append(conditions, "Vehicle = ?")
		args = append(args, vehicle)
	}

	if kind != "" {
		conditions = append(conditions, "Kind = ?")
		args = append(args, kind)
	}

	return datarecording.QueryParams{
		Where:   strings.Join(conditions, " AND "),
		Args:    args,
		OrderBy: "TimeMs",
		Limit:   limit,
		Offset:  offset,
	}
}

func listEvents(cmd *cobra.Command, args []string) error {
	reader, err := datarecording.NewReader(args[0])
	if err != nil {
		return err
	}
	defer reader.Close()

	reader.MapTable(simulation.VehicleEventTable, simulation.VehicleEvent{})

	events, total, err := reader.Query(cmd.Context(),
		simulation.VehicleEventTable, eventQuery(cmd))
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME (MIN)\tVEHICLE\tCOMPANY\tEVENT\tFROM\tTO")

	for _, e := range events {
		event := e.(*simulation.VehicleEvent)
		fmt.Fprintf(tw, "%.2f\t%s\t%s\t%s\t%s\t%s\n",
			float64(event.TimeMs)/60000, event.Vehicle, event.Company,
			event.Kind, event.From, event.To)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d events\n", len(events), total)

	return nil
}
