package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Optimizer   OptimizerConfig   `mapstructure:"optimizer"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Alerts      AlertsConfig      `mapstructure:"alerts"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
	WebSocket   WebSocketConfig   `mapstructure:"websocket"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path           string `mapstructure:"path"`
	MigrationsPath string `mapstructure:"migrations_path"`
	MaxConnections int    `mapstructure:"max_connections"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OptimizerConfig contains optimization loop configuration
type OptimizerConfig struct {
	Interval          string                 `mapstructure:"interval"`
	StopTimeout       string                 `mapstructure:"stop_timeout"`
	HistorySize       int                    `mapstructure:"history_size"`
	ActionHistorySize int                    `mapstructure:"action_history_size"`
	Strategy          string                 `mapstructure:"strategy"`
	AutoStart         bool                   `mapstructure:"auto_start"`
	ThresholdsFile    string                 `mapstructure:"thresholds_file"`
	Sources           OptimizerSourcesConfig `mapstructure:"sources"`
}

// OptimizerSourcesConfig selects which metric sources feed the collector
type OptimizerSourcesConfig struct {
	System     bool  `mapstructure:"system"`
	Random     bool  `mapstructure:"random"`
	RandomSeed int64 `mapstructure:"random_seed"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Prefix  string `mapstructure:"prefix"`
}

type AlertsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	MaxAlerts int    `mapstructure:"max_alerts"`
	Retention string `mapstructure:"retention"`
}

// MaintenanceConfig contains cron schedules for background housekeeping
type MaintenanceConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	PruneSchedule   string `mapstructure:"prune_schedule"`
	SummarySchedule string `mapstructure:"summary_schedule"`
	AuditRetention  string `mapstructure:"audit_retention"`
}

type WebSocketConfig struct {
	PingInterval int `mapstructure:"ping_interval"`
	PongTimeout  int `mapstructure:"pong_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()

	// Override specific values from env
	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("database.path", "DATABASE_PATH")
	viper.BindEnv("logging.level", "LOG_LEVEL")
	viper.BindEnv("optimizer.interval", "OPTIMIZER_INTERVAL")
	viper.BindEnv("optimizer.strategy", "OPTIMIZER_STRATEGY")
	viper.BindEnv("optimizer.auto_start", "OPTIMIZER_AUTO_START")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 3200)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.mode", "development")

	viper.SetDefault("database.path", "./data/optimizer.db")
	viper.SetDefault("database.migrations_path", "./migrations")
	viper.SetDefault("database.max_connections", 10)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	viper.SetDefault("optimizer.interval", "100ms")
	viper.SetDefault("optimizer.stop_timeout", "2s")
	viper.SetDefault("optimizer.history_size", 100)
	viper.SetDefault("optimizer.action_history_size", 50)
	viper.SetDefault("optimizer.strategy", "adaptive")
	viper.SetDefault("optimizer.auto_start", true)
	viper.SetDefault("optimizer.sources.system", true)
	viper.SetDefault("optimizer.sources.random", false)

	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.prefix", "optimizer")

	viper.SetDefault("alerts.enabled", true)
	viper.SetDefault("alerts.max_alerts", 1000)
	viper.SetDefault("alerts.retention", "24h")

	viper.SetDefault("maintenance.enabled", true)
	viper.SetDefault("maintenance.prune_schedule", "0 0 * * * *")
	viper.SetDefault("maintenance.summary_schedule", "0 */5 * * * *")
	viper.SetDefault("maintenance.audit_retention", "168h")

	viper.SetDefault("websocket.ping_interval", 30)
	viper.SetDefault("websocket.pong_timeout", 60)
	viper.SetDefault("websocket.write_timeout", 10)
}

// Validate validates the configuration for completeness and correctness
func (c *Config) Validate() error {
	var errors []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errors = append(errors, "server.port must be between 1 and 65535")
	}
	if c.Server.Host == "" {
		errors = append(errors, "server.host is required")
	}

	if c.Database.Path == "" {
		errors = append(errors, "database.path is required")
	}

	if _, err := time.ParseDuration(c.Optimizer.Interval); err != nil {
		errors = append(errors, "optimizer.interval must be a valid duration")
	}
	if _, err := time.ParseDuration(c.Optimizer.StopTimeout); err != nil {
		errors = append(errors, "optimizer.stop_timeout must be a valid duration")
	}
	if c.Optimizer.HistorySize <= 0 {
		errors = append(errors, "optimizer.history_size must be greater than 0")
	}
	if c.Optimizer.ActionHistorySize <= 0 {
		errors = append(errors, "optimizer.action_history_size must be greater than 0")
	}

	switch c.Optimizer.Strategy {
	case "reactive", "predictive", "adaptive", "proactive":
	default:
		errors = append(errors, "optimizer.strategy must be one of: reactive, predictive, adaptive, proactive")
	}

	if c.Maintenance.Enabled {
		if _, err := time.ParseDuration(c.Maintenance.AuditRetention); err != nil {
			errors = append(errors, "maintenance.audit_retention must be a valid duration")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errors, "; "))
	}

	return nil
}

// LoopInterval returns the parsed optimization interval
func (c *OptimizerConfig) LoopInterval() time.Duration {
	interval, err := time.ParseDuration(c.Interval)
	if err != nil {
		return 100 * time.Millisecond
	}
	return interval
}

// LoopStopTimeout returns the parsed worker join timeout
func (c *OptimizerConfig) LoopStopTimeout() time.Duration {
	timeout, err := time.ParseDuration(c.StopTimeout)
	if err != nil {
		return 2 * time.Second
	}
	return timeout
}
