// Package config loads the application configuration from config.yaml and
// SAFEROUTE_* environment variables, and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/safemap/saferoute/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Network  NetworkConfig  `yaml:"network" mapstructure:"network"`
	Risk     RiskConfig     `yaml:"risk" mapstructure:"risk"`
	Profiles model.Profiles `yaml:"profiles" mapstructure:"profiles"`
	Hazards  HazardsConfig  `yaml:"hazards" mapstructure:"hazards"`
	Geocode  GeocodeConfig  `yaml:"geocode" mapstructure:"geocode"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// NetworkConfig locates the per-mode base network files.
type NetworkConfig struct {
	DataDir string   `yaml:"data_dir" mapstructure:"data_dir"`
	Format  string   `yaml:"format" mapstructure:"format"` // "geojson" or "shapefile"
	Modes   []string `yaml:"modes" mapstructure:"modes"`
}

// RiskConfig configures the hazard decay field. The field is a raw decayed
// sum (no normalization); profile betas are calibrated against raw severity
// magnitudes. EdgeAggregation selects how endpoint risks combine into edge
// risk: "max" (default) or, explicitly, "mean".
type RiskConfig struct {
	RadiusM         float64 `yaml:"radius_m" mapstructure:"radius_m"`
	DecayM          float64 `yaml:"decay_m" mapstructure:"decay_m"`
	EdgeAggregation string  `yaml:"edge_aggregation" mapstructure:"edge_aggregation"`
}

// HazardsConfig configures the hazard observation store.
type HazardsConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "sqlite" or "postgres"
	Path        string `yaml:"path" mapstructure:"path"`     // sqlite file
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	CSVPath     string `yaml:"csv_path" mapstructure:"csv_path"` // optional seed file
}

// GeocodeConfig configures the Nominatim proxy.
type GeocodeConfig struct {
	BaseURL       string  `yaml:"base_url" mapstructure:"base_url"`
	UserAgent     string  `yaml:"user_agent" mapstructure:"user_agent"`
	RateRPS       float64 `yaml:"rate_rps" mapstructure:"rate_rps"`
	Limit         int     `yaml:"limit" mapstructure:"limit"`
	CacheTTLHours int     `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // "json" or "console"
}

// Load reads configuration from config.yaml in the working directory and the
// environment, applies defaults, and validates the profile set.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SAFEROUTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("network.data_dir", "data/network")
	v.SetDefault("network.format", "geojson")
	v.SetDefault("network.modes", []string{"walk", "bike", "drive"})
	v.SetDefault("risk.radius_m", 300.0)
	v.SetDefault("risk.decay_m", 150.0)
	v.SetDefault("risk.edge_aggregation", "max")
	v.SetDefault("profiles", defaultProfiles())
	v.SetDefault("hazards.driver", "sqlite")
	v.SetDefault("hazards.path", "data/hazards.db")
	v.SetDefault("geocode.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.user_agent", "saferoute/1.0")
	v.SetDefault("geocode.rate_rps", 1.0)
	v.SetDefault("geocode.limit", 5)
	v.SetDefault("geocode.cache_ttl_hours", 24)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !eris.As(err, &notFound) {
			return nil, eris.Wrap(err, "config: read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the cross-field invariants.
func (c *Config) Validate() error {
	if err := c.Profiles.Validate(); err != nil {
		return err
	}
	if c.Risk.RadiusM <= 0 {
		return eris.Errorf("config: risk.radius_m must be positive, got %f", c.Risk.RadiusM)
	}
	if c.Risk.DecayM <= 0 {
		return eris.Errorf("config: risk.decay_m must be positive, got %f", c.Risk.DecayM)
	}
	if agg := c.Risk.EdgeAggregation; agg != "max" && agg != "mean" {
		return eris.Errorf("config: risk.edge_aggregation must be max or mean, got %q", agg)
	}
	if len(c.Network.Modes) == 0 {
		return eris.New("config: network.modes is empty")
	}
	return nil
}

// defaultProfiles mirrors the three stock risk-aversion levels.
func defaultProfiles() []map[string]any {
	return []map[string]any{
		{"tag": "b0", "beta": 0.0, "name": "Shortest distance", "color": "#ff0000"},
		{"tag": "b03", "beta": 0.3, "name": "Balanced safety", "color": "#1d4ed8"},
		{"tag": "b1", "beta": 1.0, "name": "Avoid risk strongly", "color": "#0fdf00"},
	}
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
