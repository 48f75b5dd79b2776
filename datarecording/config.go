package datarecording

import "fmt"

// Recorder backends.
const (
	BackendSQLite     = "sqlite"
	BackendClickHouse = "clickhouse"
)

// RecorderConfig selects and configures a DataRecorder backend.
type RecorderConfig struct {
	// Type is either "sqlite" (default) or "clickhouse".
	Type string `mapstructure:"type"`

	// Path is the SQLite file name without the .sqlite3 extension.
	Path string `mapstructure:"path"`

	// DSN, if set, overrides the individual ClickHouse parameters.
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	BatchSize int `mapstructure:"batchSize"`
}

// NewWithConfig creates the DataRecorder described by cfg.
func NewWithConfig(cfg RecorderConfig) (DataRecorder, error) {
	switch cfg.Type {
	case "", BackendSQLite:
		r, err := New(cfg.Path)
		if err != nil {
			return nil, err
		}

		if cfg.BatchSize > 0 {
			r.(*sqliteWriter).batchSize = cfg.BatchSize
		}

		return r, nil
	case BackendClickHouse:
		r, err := NewClickHouseRecorder(cfg)
		if err != nil {
			return nil, err
		}

		return r, nil
	default:
		return nil, fmt.Errorf("unknown recorder type %q", cfg.Type)
	}
}
