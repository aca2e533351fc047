// Package config provides Viper-based configuration loading for the colony engine.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// Storage drivers for turn reports.
const (
	DriverNone     = "none"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// StorageConfig selects where closed turn reports are persisted.
type StorageConfig struct {
	// Driver is one of "none", "sqlite" or "postgres".
	Driver string `mapstructure:"driver"`
	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string `mapstructure:"sqlite_path"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is a zap sink: "stderr", "stdout" or a file path.
	Output string `mapstructure:"output"`
}

// GameConfig holds the settings of a colony game session.
type GameConfig struct {
	// StartingMoney is the opening treasury balance.
	StartingMoney int `mapstructure:"starting_money"`
	// StartingOpinion is the opening public opinion, 0-100.
	StartingOpinion int `mapstructure:"starting_opinion"`
	// FrameInterval is the period of the real-time frame loop.
	FrameInterval time.Duration `mapstructure:"frame_interval"`
	// NotificationDelay is how long a headless run shows each notification.
	NotificationDelay time.Duration `mapstructure:"notification_delay"`
	// Seed seeds the dice. Zero selects the crypto source.
	Seed int64 `mapstructure:"seed"`
	// AlwaysSucceed forces every own roll to sixes.
	AlwaysSucceed bool `mapstructure:"always_succeed"`
	// AlwaysFail forces every own roll to ones.
	AlwaysFail bool `mapstructure:"always_fail"`
	// ActionsDir holds YAML action definition overrides.
	ActionsDir string `mapstructure:"actions_dir"`
	// BuildingsFile replaces the built-in building catalog.
	BuildingsFile string `mapstructure:"buildings_file"`
	// ScriptsDir holds Lua hook scripts.
	ScriptsDir string `mapstructure:"scripts_dir"`
	// ScriptInstructionLimit bounds each Lua hook call.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Game     GameConfig     `mapstructure:"game"`
}

// Validate checks all configuration invariants. Database settings are only
// checked when the postgres storage driver is selected.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Storage.Driver == DriverPostgres {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateGame(c.Game); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	switch s.Driver {
	case DriverNone, DriverPostgres:
		return nil
	case DriverSQLite:
		if s.SQLitePath == "" {
			return errors.New("storage.sqlite_path must not be empty for the sqlite driver")
		}
		return nil
	default:
		return fmt.Errorf("storage.driver must be one of [none, sqlite, postgres], got %q", s.Driver)
	}
}

func validateGame(g GameConfig) error {
	var errs []string
	if g.StartingOpinion < 0 || g.StartingOpinion > 100 {
		errs = append(errs, fmt.Sprintf("game.starting_opinion must be 0-100, got %d", g.StartingOpinion))
	}
	if g.FrameInterval <= 0 {
		errs = append(errs, "game.frame_interval must be positive")
	}
	if g.NotificationDelay < 0 {
		errs = append(errs, "game.notification_delay must not be negative")
	}
	if g.AlwaysSucceed && g.AlwaysFail {
		errs = append(errs, "game.always_succeed and game.always_fail are mutually exclusive")
	}
	if g.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("game.script_instruction_limit must be >= 0, got %d", g.ScriptInstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// NewViper returns a Viper instance carrying the defaults and the COLONY_
// environment overrides.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("COLONY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "colony")
	v.SetDefault("database.password", "colony")
	v.SetDefault("database.name", "colony")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("storage.driver", DriverNone)
	v.SetDefault("storage.sqlite_path", "colony.db")

	v.SetDefault("game.starting_money", 100)
	v.SetDefault("game.starting_opinion", 50)
	v.SetDefault("game.frame_interval", "50ms")
	v.SetDefault("game.notification_delay", "0s")
	v.SetDefault("game.seed", 0)
	v.SetDefault("game.always_succeed", false)
	v.SetDefault("game.always_fail", false)
	v.SetDefault("game.actions_dir", "")
	v.SetDefault("game.buildings_file", "")
	v.SetDefault("game.scripts_dir", "")
	v.SetDefault("game.script_instruction_limit", 100000)
}
