package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the database facade.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Tables   TablesConfig   `yaml:"tables"`
	Health   HealthConfig   `yaml:"health"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// Supported values for DatabaseConfig.Driver.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

// Supported values for DatabaseConfig.Mode.
const (
	ModeSync   = "sync"
	ModePooled = "pooled"
)

// DatabaseConfig contains relational database connection settings.
type DatabaseConfig struct {
	// Driver selects the SQL dialect: "mysql" or "sqlite3".
	Driver string `yaml:"driver"`

	// Mode selects the facade variant: "sync" (single connection with
	// reconnect-and-retry) or "pooled" (connection checked out per call).
	Mode string `yaml:"mode"`

	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`

	// Name is the database (schema) name. For sqlite3 it is the file path.
	Name string `yaml:"name"`

	// ConnectTimeout bounds dialing the server (seconds).
	ConnectTimeout int `yaml:"connect_timeout"`

	Pool PoolConfig `yaml:"pool"`
}

// PoolConfig contains connection pool settings for pooled mode.
type PoolConfig struct {
	MaxOpen         int `yaml:"max_open"`
	MaxIdle         int `yaml:"max_idle"`
	ConnMaxLifetime int `yaml:"conn_max_lifetime"`  // seconds
	ConnMaxIdleTime int `yaml:"conn_max_idle_time"` // seconds
}

// HealthConfig controls the periodic database health check.
type HealthConfig struct {
	// Interval between health checks (seconds). 0 disables the loop.
	Interval int `yaml:"interval"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: DBFACADE_SECTION_KEY
// For example: DBFACADE_DATABASE_HOST, DBFACADE_DATABASE_PASSWORD
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:         DriverMySQL,
			Mode:           ModeSync,
			Host:           "localhost",
			Port:           3306,
			ConnectTimeout: 10,
			Pool: PoolConfig{
				MaxOpen:         10,
				MaxIdle:         2,
				ConnMaxLifetime: 3600,
				ConnMaxIdleTime: 300,
			},
		},
		Health: HealthConfig{
			Interval: 30,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "dbfacade",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: DBFACADE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("DBFACADE_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DBFACADE_DATABASE_MODE"); v != "" {
		cfg.Database.Mode = v
	}
	if v := os.Getenv("DBFACADE_DATABASE_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DBFACADE_DATABASE_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DBFACADE_DATABASE_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DBFACADE_DATABASE_NAME"); v != "" {
		cfg.Database.Name = v
	}

	// MQTT
	if v := os.Getenv("DBFACADE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("DBFACADE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("DBFACADE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("DBFACADE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	switch c.Database.Driver {
	case DriverMySQL:
		if c.Database.User == "" {
			errs = append(errs, "database.user is required for mysql (set DBFACADE_DATABASE_USER)")
		}
		if c.Database.Port < 0 || c.Database.Port > 65535 {
			errs = append(errs, "database.port must be between 0 and 65535")
		}
	case DriverSQLite:
	default:
		errs = append(errs, fmt.Sprintf("database.driver must be %q or %q", DriverMySQL, DriverSQLite))
	}

	if c.Database.Mode != ModeSync && c.Database.Mode != ModePooled {
		errs = append(errs, fmt.Sprintf("database.mode must be %q or %q", ModeSync, ModePooled))
	}

	if c.Database.Name == "" {
		errs = append(errs, "database.name is required")
	}

	if c.Database.ConnectTimeout < 0 {
		errs = append(errs, "database.connect_timeout cannot be negative")
	}

	p := c.Database.Pool
	if p.MaxOpen < 0 || p.MaxIdle < 0 || p.ConnMaxLifetime < 0 || p.ConnMaxIdleTime < 0 {
		errs = append(errs, "database.pool values cannot be negative")
	}

	seen := make(map[string]bool, len(c.Tables))
	for _, t := range c.Tables {
		if t.Name == "" {
			errs = append(errs, "tables: table name cannot be empty")
			continue
		}
		if seen[t.Name] {
			errs = append(errs, fmt.Sprintf("tables: duplicate table %q", t.Name))
		}
		seen[t.Name] = true
		if strings.TrimSpace(t.Columns) == "" {
			errs = append(errs, fmt.Sprintf("tables: table %q has no column definition", t.Name))
		}
	}

	if c.Health.Interval < 0 {
		errs = append(errs, "health.interval cannot be negative")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetConnectTimeout returns the database connect timeout as a Duration.
func (c *Config) GetConnectTimeout() time.Duration {
	return time.Duration(c.Database.ConnectTimeout) * time.Second
}

// GetHealthInterval returns the health check interval as a Duration.
func (c *Config) GetHealthInterval() time.Duration {
	return time.Duration(c.Health.Interval) * time.Second
}
