// Package cmd provides the command-line interface for vtolsim.
package cmd

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/vtolsim/config"
)

var (
	configDir string
	logLevel  string

	cfg    *config.Config
	logger zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vtolsim",
	Short: "vtolsim simulates eVTOL aircraft that share a charging station.",
	Long: `vtolsim simulates a fleet of eVTOL aircraft from several companies. ` +
		`The aircraft fly until their batteries run low and then queue for ` +
		`a limited number of charging bays. At the end of a run, vtolsim ` +
		`reports flight, charge and wait times per vehicle and per company.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error

		cfg, err = config.Load(configDir)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}

		if err := cfg.Validate(); err != nil {
			return err
		}

		logger = newLogger(cfg.Level())

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".",
		"directory that holds vtolsim.{json,yaml,toml} and .env")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (trace, debug, info, warn, error)")
}

func newLogger(level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.TimeOnly,
	}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
