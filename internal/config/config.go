// Package config loads and saves the paycycle configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/theirongolddev/paycycle/internal/model"
)

// EnvPrefix prefixes every environment override, e.g. PAYCYCLE_GENERAL_DB_PATH.
const EnvPrefix = "PAYCYCLE"

// Config holds all paycycle configuration.
type Config struct {
	General         GeneralConfig    `toml:"general" mapstructure:"general"`
	Daemon          DaemonConfig     `toml:"daemon" mapstructure:"daemon"`
	SavingsCategory string           `toml:"savings_category,omitempty" mapstructure:"savings_category"`
	Categories      []model.Category `toml:"categories,omitempty" mapstructure:"categories"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DBPath         string `toml:"db_path" mapstructure:"db_path"`
	Timezone       string `toml:"timezone,omitempty" mapstructure:"timezone"`
	CurrencySymbol string `toml:"currency_symbol" mapstructure:"currency_symbol"`
	// AutoCheck runs the cycle-end check before every command.
	AutoCheck bool `toml:"auto_check" mapstructure:"auto_check"`
}

// DaemonConfig holds settings for the background checker.
type DaemonConfig struct {
	Addr         string `toml:"addr" mapstructure:"addr"`
	Interval     string `toml:"interval" mapstructure:"interval"`
	EventsBuffer int    `toml:"events_buffer" mapstructure:"events_buffer"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DBPath:         filepath.Join(DataDir(), "paycycle.db"),
			CurrencySymbol: "$",
			AutoCheck:      true,
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8797",
			Interval:     "15m",
			EventsBuffer: 200,
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "paycycle")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "paycycle")
}

// DataDir returns the XDG-compliant data directory holding the database.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "paycycle")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "paycycle")
}

// Path returns the full path to the config file. PAYCYCLE_CONFIG overrides it.
func Path() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(Dir(), "config.toml")
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// Load reads .env, the config file and PAYCYCLE_* environment overrides on
// top of the defaults. A missing config file is not an error.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), fmt.Errorf("reading .env: %w", err)
	}
	return LoadFile(Path())
}

// LoadFile is Load without the .env step, reading the given config file.
func LoadFile(path string) (Config, error) {
	def := DefaultConfig()
	v := viper.New()
	v.SetDefault("general.db_path", def.General.DBPath)
	v.SetDefault("general.timezone", def.General.Timezone)
	v.SetDefault("general.currency_symbol", def.General.CurrencySymbol)
	v.SetDefault("general.auto_check", def.General.AutoCheck)
	v.SetDefault("daemon.addr", def.Daemon.Addr)
	v.SetDefault("daemon.interval", def.Daemon.Interval)
	v.SetDefault("daemon.events_buffer", def.Daemon.EventsBuffer)
	v.SetDefault("savings_category", "")

	v.SetConfigType("toml")
	v.SetConfigFile(path)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return def, fmt.Errorf("parsing config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return def, fmt.Errorf("decoding config: %w", err)
	}
	if _, err := cfg.Schema(); err != nil {
		return cfg, err
	}
	if _, err := cfg.Location(); err != nil {
		return cfg, err
	}
	if _, err := cfg.Daemon.IntervalDuration(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveFile(Path(), cfg)
}

// SaveFile writes the config to path, creating its directory.
func SaveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Schema returns the category schema: the configured categories, or the
// built-in schema when none are configured.
func (c Config) Schema() (model.CategorySchema, error) {
	if len(c.Categories) == 0 {
		s := model.DefaultSchema()
		if c.SavingsCategory != "" && c.SavingsCategory != s.SavingsID {
			return s, fmt.Errorf("%w: savings_category %q needs [[categories]]", model.ErrInvalidSchema, c.SavingsCategory)
		}
		return s, nil
	}
	s := model.CategorySchema{
		Categories: c.Categories,
		SavingsID:  c.SavingsCategory,
	}
	if s.SavingsID == "" {
		s.SavingsID = model.DefaultSavingsID
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Location resolves the configured timezone; empty means the system zone.
func (c Config) Location() (*time.Location, error) {
	if c.General.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.General.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.General.Timezone, err)
	}
	return loc, nil
}

// IntervalDuration parses the daemon check interval.
func (d DaemonConfig) IntervalDuration() (time.Duration, error) {
	iv, err := time.ParseDuration(d.Interval)
	if err != nil {
		return 0, fmt.Errorf("daemon interval %q: %w", d.Interval, err)
	}
	if iv <= 0 {
		return 0, fmt.Errorf("daemon interval %q must be positive", d.Interval)
	}
	return iv, nil
}
