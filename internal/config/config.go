package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Deployment identifies one market location the pipeline runs against.
// A single process invocation may run several deployments back to back;
// each pipeline run receives its own immutable copy.
type Deployment struct {
	Name       string
	RegionID   int32
	SystemID   int32
	LocationID int64
}

// Config holds process-wide settings, loaded once from the environment.
type Config struct {
	DBPath     string `env:"MKTS_DB_PATH" envDefault:"wcmkt.db"`
	ExportPath string `env:"MKTS_EXPORT_PATH" envDefault:"market_report.xlsx"`

	LogLevel    string `env:"MKTS_LOG_LEVEL" envDefault:"info"`
	LogEncoding string `env:"MKTS_LOG_ENCODING" envDefault:"console"`

	ESIBaseURL   string `env:"MKTS_ESI_BASE_URL" envDefault:"https://esi.evetech.net/latest"`
	ESIUserAgent string `env:"MKTS_ESI_USER_AGENT" envDefault:"mkts-backend/1.0"`
	ESIMaxConns  int    `env:"MKTS_ESI_MAX_CONNS" envDefault:"20"`

	// Deployment market. Defaults point at the Nakah trade hub.
	DeploymentName string `env:"MKTS_DEPLOYMENT_NAME" envDefault:"nakah"`
	RegionID       int32  `env:"MKTS_REGION_ID" envDefault:"10000001"`
	SystemID       int32  `env:"MKTS_SYSTEM_ID" envDefault:"30000144"`
	LocationID     int64  `env:"MKTS_LOCATION_ID" envDefault:"60014068"`

	// Statistics parameters.
	HistoryWindowDays int `env:"MKTS_HISTORY_WINDOW_DAYS" envDefault:"30"`
	MinHistoryPoints  int `env:"MKTS_MIN_HISTORY_POINTS" envDefault:"1"`
	HistoryRetention  int `env:"MKTS_HISTORY_RETENTION_DAYS" envDefault:"90"`

	// Readiness parameters.
	ExcludeOptionalItems bool    `env:"MKTS_EXCLUDE_OPTIONAL_ITEMS" envDefault:"true"`
	DefaultShipTarget    int     `env:"MKTS_DEFAULT_SHIP_TARGET" envDefault:"20"`
	LowStockDays         float64 `env:"MKTS_LOW_STOCK_DAYS" envDefault:"3"`
}

// Load reads configuration from the environment, applying defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.RegionID <= 0 {
		return fmt.Errorf("config: region id must be positive, got %d", c.RegionID)
	}
	if c.LocationID <= 0 {
		return fmt.Errorf("config: location id must be positive, got %d", c.LocationID)
	}
	if c.HistoryWindowDays <= 0 {
		return fmt.Errorf("config: history window must be positive, got %d", c.HistoryWindowDays)
	}
	if c.MinHistoryPoints < 1 {
		return fmt.Errorf("config: min history points must be >= 1, got %d", c.MinHistoryPoints)
	}
	return nil
}

// Deployment returns the configured deployment market.
func (c *Config) Deployment() Deployment {
	return Deployment{
		Name:       c.DeploymentName,
		RegionID:   c.RegionID,
		SystemID:   c.SystemID,
		LocationID: c.LocationID,
	}
}
