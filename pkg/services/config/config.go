package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/de-tools/site-digest/pkg/delivery"
	"github.com/de-tools/site-digest/pkg/store/metrics/snowflake"
)

// Config is the full application profile for the digest tools.
type Config struct {
	Site      SiteConfig         `mapstructure:"site"`
	Database  DatabaseConfig     `mapstructure:"database"`
	Snowflake SnowflakeConfig    `mapstructure:"snowflake"`
	SES       delivery.SESConfig `mapstructure:"ses"`
	Server    ServerConfig       `mapstructure:"server"`
	Schedule  ScheduleConfig     `mapstructure:"schedule"`
}

// SiteConfig names the site the digest reports on.
type SiteConfig struct {
	Name string `mapstructure:"name"`
}

// DatabaseConfig points at the site's primary Postgres database.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// SnowflakeConfig selects the warehouse-backed metrics store instead of the
// primary database when Enabled is set.
type SnowflakeConfig struct {
	Enabled bool `mapstructure:"enabled"`

	snowflake.Config `mapstructure:",squash"`
}

// ServerConfig holds the HTTP listen address for the web surface.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// ScheduleConfig holds the cron expression for automated generation.
type ScheduleConfig struct {
	Cron string `mapstructure:"cron"`
}

// Load reads the profile at path (YAML) and applies defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("site.name", "Site")
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8080")
	// 08:00 on the first of the month, after the final daily rollup lands.
	v.SetDefault("schedule.cron", "0 8 1 * *")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
