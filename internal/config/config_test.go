package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/paycycle/internal/model"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFile_MissingUsesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	def := DefaultConfig()
	if cfg.General.CurrencySymbol != def.General.CurrencySymbol || !cfg.General.AutoCheck {
		t.Fatalf("general = %+v, want defaults", cfg.General)
	}
	if cfg.Daemon.Interval != "15m" || cfg.Daemon.EventsBuffer != 200 {
		t.Fatalf("daemon = %+v, want defaults", cfg.Daemon)
	}
	s, err := cfg.Schema()
	if err != nil || s.SavingsID != model.DefaultSavingsID || len(s.Categories) != 6 {
		t.Fatalf("schema = %+v err=%v, want built-in", s, err)
	}
}

func TestLoadFile_ReadsSectionsAndCategories(t *testing.T) {
	path := writeFile(t, `
savings_category = "keep"

[general]
db_path = "/tmp/x.db"
timezone = "UTC"
currency_symbol = "€"
auto_check = false

[daemon]
interval = "1h"

[[categories]]
id = "rent"
name = "Rent"

[[categories]]
id = "keep"
name = "Keep"
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.General.DBPath != "/tmp/x.db" || cfg.General.CurrencySymbol != "€" || cfg.General.AutoCheck {
		t.Fatalf("general = %+v", cfg.General)
	}
	// Unset keys keep their defaults.
	if cfg.Daemon.Addr != DefaultConfig().Daemon.Addr {
		t.Fatalf("addr = %q, want default", cfg.Daemon.Addr)
	}
	iv, err := cfg.Daemon.IntervalDuration()
	if err != nil || iv != time.Hour {
		t.Fatalf("interval = %v err=%v, want 1h", iv, err)
	}
	s, err := cfg.Schema()
	if err != nil {
		t.Fatalf("Schema: %v", err)
	}
	if s.SavingsID != "keep" || len(s.Categories) != 2 || s.Categories[0].ID != "rent" {
		t.Fatalf("schema = %+v", s)
	}
	loc, err := cfg.Location()
	if err != nil || loc != time.UTC {
		t.Fatalf("location = %v err=%v, want UTC", loc, err)
	}
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	path := writeFile(t, "[general]\ncurrency_symbol = \"£\"\n")
	t.Setenv("PAYCYCLE_GENERAL_CURRENCY_SYMBOL", "kr")
	t.Setenv("PAYCYCLE_GENERAL_AUTO_CHECK", "false")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.General.CurrencySymbol != "kr" {
		t.Fatalf("currency = %q, want env override", cfg.General.CurrencySymbol)
	}
	if cfg.General.AutoCheck {
		t.Fatal("auto_check env override ignored")
	}
}

func TestLoadFile_RejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"savings missing":  "savings_category = \"nope\"\n[[categories]]\nid = \"a\"\n",
		"duplicate ids":    "[[categories]]\nid = \"savings\"\n[[categories]]\nid = \"savings\"\n",
		"bad timezone":     "[general]\ntimezone = \"Mars/Olympus\"\n",
		"bad interval":     "[daemon]\ninterval = \"soon\"\n",
		"zero interval":    "[daemon]\ninterval = \"0s\"\n",
		"malformed toml":   "[general\n",
		"savings no cats":  "savings_category = \"keep\"\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFile(writeFile(t, body)); err == nil {
				t.Fatal("LoadFile accepted an invalid config")
			}
		})
	}
}

func TestSchemaErrorIsInvalidSchema(t *testing.T) {
	cfg := Config{Categories: []model.Category{{ID: "a"}}}
	if _, err := cfg.Schema(); !errors.Is(err, model.ErrInvalidSchema) {
		t.Fatalf("err = %v, want ErrInvalidSchema", err)
	}
}

func TestSaveFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := DefaultConfig()
	cfg.General.Timezone = "UTC"
	cfg.SavingsCategory = "keep"
	cfg.Categories = []model.Category{{ID: "rent", Name: "Rent"}, {ID: "keep", Name: "Keep", Color: "#fff"}}

	if err := SaveFile(path, cfg); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got.General != cfg.General || got.Daemon != cfg.Daemon {
		t.Fatalf("got %+v, want %+v", got, cfg)
	}
	if len(got.Categories) != 2 || got.Categories[1] != cfg.Categories[1] {
		t.Fatalf("categories = %+v", got.Categories)
	}
}

func TestPathHonoursOverride(t *testing.T) {
	t.Setenv("PAYCYCLE_CONFIG", "/etc/paycycle.toml")
	if Path() != "/etc/paycycle.toml" {
		t.Fatalf("Path = %q", Path())
	}
	t.Setenv("PAYCYCLE_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if Path() != filepath.Join("/xdg", "paycycle", "config.toml") {
		t.Fatalf("Path = %q", Path())
	}
}
