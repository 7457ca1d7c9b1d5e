package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/paycycle/internal/config"
)

var flagConfigInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&flagConfigInit, "init", false, "Write the current settings to the config file")
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if flagConfigInit {
		if config.Exists() {
			return fmt.Errorf("%s already exists", config.Path())
		}
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Printf("  Wrote %s\n", config.Path())
		return nil
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	dbPath := cfg.General.DBPath
	if flagDB != "" {
		dbPath = flagDB + " (--db)"
	}
	fmt.Printf("    Database:    %s\n", dbPath)
	tz := cfg.General.Timezone
	if tz == "" {
		tz = "system"
	}
	fmt.Printf("    Timezone:    %s\n", tz)
	fmt.Printf("    Currency:    %s\n", cfg.General.CurrencySymbol)
	fmt.Printf("    Auto check:  %v\n", cfg.General.AutoCheck)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:       %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval:      %s\n", cfg.Daemon.Interval)
	fmt.Printf("    Events buffer: %d\n", cfg.Daemon.EventsBuffer)
	fmt.Println()

	schema, err := cfg.Schema()
	if err != nil {
		return err
	}
	fmt.Println("  [Categories]")
	if len(cfg.Categories) == 0 {
		fmt.Println("    (built-in)")
	}
	for _, c := range schema.Categories {
		mark := ""
		if c.ID == schema.SavingsID {
			mark = "  (savings)"
		}
		fmt.Printf("    %-10s %s%s\n", c.ID, c.Name, mark)
	}
	fmt.Println()

	fmt.Println("  Run `paycycle setup` to configure a pay cycle.")
	return nil
}
