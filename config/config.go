// Package config loads the simulation parameters from a configuration file,
// a .env file and VTOLSIM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/sarchlab/vtolsim/datarecording"
	"github.com/sarchlab/vtolsim/vehicle"
)

// FileName is the base name of the configuration file. The extension can be
// json, yaml or toml.
const FileName = "vtolsim"

// EnvPrefix is the prefix of the environment variables that override the
// configuration file.
const EnvPrefix = "VTOLSIM"

// ErrInvalidConfig is returned when a loaded value is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// RecorderConfig controls where the run is recorded.
type RecorderConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	datarecording.RecorderConfig `mapstructure:",squash"`
}

// MonitorConfig controls the monitoring web server.
type MonitorConfig struct {
	Enabled     bool `json:"enabled" mapstructure:"enabled"`
	Port        int  `json:"port" mapstructure:"port"`
	OpenBrowser bool `json:"openBrowser" mapstructure:"openBrowser"`
}

// Config holds everything needed to set up a simulation run.
type Config struct {
	LogLevel string `json:"logLevel" mapstructure:"logLevel"`

	NumVehicles        int     `json:"numVehicles" mapstructure:"numVehicles"`
	NumBays            int     `json:"numBays" mapstructure:"numBays"`
	DurationMinutes    float64 `json:"duration" mapstructure:"duration"`
	Compression        float64 `json:"compression" mapstructure:"compression"`
	TickSize           uint64  `json:"tickSize" mapstructure:"tickSize"`
	Seed               uint64  `json:"seed" mapstructure:"seed"`
	LowChargeThreshold float64 `json:"lowChargeThreshold" mapstructure:"lowChargeThreshold"`

	Companies []vehicle.Configuration `json:"companies" mapstructure:"companies"`

	Recorder RecorderConfig `json:"recorder" mapstructure:"recorder"`
	Monitor  MonitorConfig  `json:"monitor" mapstructure:"monitor"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")

	v.SetDefault("numVehicles", 20)
	v.SetDefault("numBays", 3)
	v.SetDefault("duration", 180)
	v.SetDefault("compression", 60)
	v.SetDefault("tickSize", 1000)
	v.SetDefault("seed", 0)
	v.SetDefault("lowChargeThreshold", vehicle.DefaultLowChargeThreshold)

	v.SetDefault("recorder.enabled", true)
	v.SetDefault("recorder.type", datarecording.BackendSQLite)
	v.SetDefault("recorder.path", "")
	v.SetDefault("recorder.dsn", "")
	v.SetDefault("recorder.host", "localhost")
	v.SetDefault("recorder.port", 9000)
	v.SetDefault("recorder.database", "vtolsim")
	v.SetDefault("recorder.username", "default")
	v.SetDefault("recorder.password", "")
	v.SetDefault("recorder.batchSize", 100000)

	v.SetDefault("monitor.enabled", false)
	v.SetDefault("monitor.port", 0)
	v.SetDefault("monitor.openBrowser", false)
}

// Load reads the configuration. A .env file in configDir is loaded into the
// environment first, without overriding variables that are already set. The
// configuration file is optional; defaults apply to every missing key.
func Load(configDir string) (*Config, error) {
	err := godotenv.Load(filepath.Join(configDir, ".env"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName(FileName)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err = v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	if len(cfg.Companies) == 0 {
		cfg.Companies = DefaultCompanies()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		panic(err)
	}

	cfg.Companies = DefaultCompanies()

	return cfg
}

// Validate checks the ranges of all the values.
func (c *Config) Validate() error {
	switch {
	case c.NumVehicles <= 0:
		return fmt.Errorf("%w: numVehicles must be positive, got %d",
			ErrInvalidConfig, c.NumVehicles)
	case c.NumBays <= 0:
		return fmt.Errorf("%w: numBays must be positive, got %d",
			ErrInvalidConfig, c.NumBays)
	case c.DurationMinutes <= 0:
		return fmt.Errorf("%w: duration must be positive, got %g",
			ErrInvalidConfig, c.DurationMinutes)
	case c.Compression <= 0:
		return fmt.Errorf("%w: compression must be positive, got %g",
			ErrInvalidConfig, c.Compression)
	case c.TickSize == 0:
		return fmt.Errorf("%w: tickSize must be positive", ErrInvalidConfig)
	case len(c.Companies) == 0:
		return fmt.Errorf("%w: no company is configured", ErrInvalidConfig)
	case c.Monitor.Port < 0 || c.Monitor.Port > 65535:
		return fmt.Errorf("%w: monitor port %d is out of range",
			ErrInvalidConfig, c.Monitor.Port)
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	seen := make(map[string]bool)
	for _, company := range c.Companies {
		if err := company.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}

		if seen[company.CompanyName] {
			return fmt.Errorf("%w: company %s is listed twice",
				ErrInvalidConfig, company.CompanyName)
		}

		seen[company.CompanyName] = true
	}

	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}

	return level
}
