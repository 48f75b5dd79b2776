package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sarchlab/vtolsim/report"
	"github.com/sarchlab/vtolsim/simulation"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation and print the results.",
	Long: `Run a simulation and print the results. Flags override the ` +
		`configuration file and the VTOLSIM_* environment variables.`,
	Args: cobra.NoArgs,
	RunE: runSimulation,
}

var runFlags struct {
	vehicles    int
	bays        int
	duration    float64
	compression float64
	tick        uint64
	seed        uint64
	threshold   float64
	output      string
	noRecord    bool
	monitor     bool
	monitorPort int
	openBrowser bool
	xlsx        string
}

func init() {
	f := runCmd.Flags()
	f.IntVar(&runFlags.vehicles, "vehicles", 0, "number of vehicles")
	f.IntVar(&runFlags.bays, "bays", 0, "number of charging bays")
	f.Float64Var(&runFlags.duration, "duration", 0,
		"virtual duration, in minutes")
	f.Float64Var(&runFlags.compression, "compression", 0,
		"virtual minutes per real minute")
	f.Uint64Var(&runFlags.tick, "tick", 0,
		"virtual length of a tick, in milliseconds")
	f.Uint64Var(&runFlags.seed, "seed", 0, "random seed, 0 for a random run")
	f.Float64Var(&runFlags.threshold, "threshold", 0,
		"percent of charge below which a vehicle seeks a charging bay")
	f.StringVar(&runFlags.output, "output", "",
		"SQLite file name, without extension")
	f.BoolVar(&runFlags.noRecord, "no-record", false, "do not record the run")
	f.BoolVar(&runFlags.monitor, "monitor", false,
		"serve the monitoring page")
	f.IntVar(&runFlags.monitorPort, "monitor-port", 0,
		"serve the monitoring page on this port")
	f.BoolVar(&runFlags.openBrowser, "open-browser", false,
		"open the monitoring page in a browser")
	f.StringVar(&runFlags.xlsx, "xlsx", "",
		"also write the results into this Excel workbook")

	rootCmd.AddCommand(runCmd)
}

// applyRunFlags overrides the configuration with the flags that are set.
func applyRunFlags(cmd *cobra.Command) error {
	changed := cmd.Flags().Changed

	if changed("vehicles") {
		cfg.NumVehicles = runFlags.vehicles
	}

	if changed("bays") {
		cfg.NumBays = runFlags.bays
	}

	if changed("duration") {
		cfg.DurationMinutes = runFlags.duration
	}

	if changed("compression") {
		cfg.Compression = runFlags.compression
	}

	if changed("tick") {
		cfg.TickSize = runFlags.tick
	}

	if changed("seed") {
		cfg.Seed = runFlags.seed
	}

	if changed("threshold") {
		cfg.LowChargeThreshold = runFlags.threshold
	}

	if changed("output") {
		cfg.Recorder.Path = runFlags.output
	}

	if changed("no-record") {
		cfg.Recorder.Enabled = !runFlags.noRecord
	}

	if changed("monitor") {
		cfg.Monitor.Enabled = runFlags.monitor
	}

	if changed("monitor-port") {
		cfg.Monitor.Enabled = true
		cfg.Monitor.Port = runFlags.monitorPort
	}

	if changed("open-browser") {
		cfg.Monitor.OpenBrowser = runFlags.openBrowser
	}

	return cfg.Validate()
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	if err := applyRunFlags(cmd); err != nil {
		return err
	}

	s, err := simulation.MakeBuilder().
		WithConfig(cfg).
		WithLogger(logger).
		Build()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	runErr := s.Run(ctx)
	if errors.Is(runErr, context.Canceled) {
		logger.Warn().Msg("interrupted, reporting partial results")
	} else if runErr != nil {
		return errors.Join(runErr, s.Terminate())
	}

	vehicles := s.VehicleSummaries()
	companies := s.CompanySummaries()

	err = report.Write(cmd.OutOrStdout(), s.Parameters(), vehicles, companies)
	if err != nil {
		return errors.Join(err, s.Terminate())
	}

	stats := s.Statistics()
	logger.Info().
		Uint64("charge_sessions", stats.ChargeSessions).
		Float64("mean_charge_min", stats.MeanChargeMinutes).
		Uint64("wait_sessions", stats.WaitSessions).
		Float64("mean_wait_min", stats.MeanWaitMinutes).
		Float64("station_busy_min", stats.StationBusyMinutes).
		Float64("bay_min", stats.ChargingBayMinutes).
		Int("peak_bays", stats.PeakChargingBays).
		Uint64("faults", stats.Faults).
		Msg("station statistics")

	if xlsx := runFlags.xlsx; xlsx != "" {
		err := report.WriteWorkbook(xlsx, s.Parameters(), vehicles, companies)
		if err != nil {
			return errors.Join(err, s.Terminate())
		}

		logger.Info().Str("file", xlsx).Msg("workbook written")
	}

	return s.Terminate()
}
