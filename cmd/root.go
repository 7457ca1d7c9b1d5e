// Package cmd implements the paycycle CLI commands.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/paycycle/internal/calendar"
	"github.com/theirongolddev/paycycle/internal/cli"
	"github.com/theirongolddev/paycycle/internal/config"
	"github.com/theirongolddev/paycycle/internal/repository"
	"github.com/theirongolddev/paycycle/internal/service"
	"github.com/theirongolddev/paycycle/internal/store"
	"github.com/theirongolddev/paycycle/internal/trigger"
)

// memoryDB selects a throwaway in-memory state instead of SQLite.
const memoryDB = ":memory:"

var (
	flagDB      string
	flagProfile string
	flagToday   string
	flagQuiet   bool
	flagNoCheck bool
)

var rootCmd = &cobra.Command{
	Use:          "paycycle",
	Short:        "Pay-cycle budgeting CLI",
	Long:         "Track expenses against your pay cycles and keep a history of budgets.",
	SilenceUsage: true,
	RunE:         runCycle,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (\":memory:\" for a throwaway state)")
	rootCmd.PersistentFlags().StringVarP(&flagProfile, "profile", "p", "", "Profile id or name (default: active profile)")
	rootCmd.PersistentFlags().StringVar(&flagToday, "today", "", "Pretend today is this date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&flagNoCheck, "no-check", false, "Skip the automatic cycle-end check")
}

// backend is what the CLI needs from a state store.
type backend interface {
	repository.Backend
	trigger.Journal
	RecentRuns(limit int) ([]store.TriggerRun, error)
	Close() error
}

// app is the wired dependency set shared by every command.
type app struct {
	cfg     config.Config
	dbPath  string
	backend backend
	svc     *service.Service
	trig    *trigger.Trigger
	log     *log.Logger
}

func (a *app) Close() error {
	return a.backend.Close()
}

// openApp loads config, opens state and, when check is set and the config
// allows it, runs the cycle-end check.
func openApp(ctx context.Context, check bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cli.SetCurrency(cfg.General.CurrencySymbol)

	schema, err := cfg.Schema()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	var clock calendar.Clock = calendar.SystemClock{}
	if flagToday != "" {
		d, err := calendar.Parse(flagToday)
		if err != nil {
			return nil, fmt.Errorf("--today: %w", err)
		}
		clock = calendar.DateClock(d, loc)
	}

	logger := log.New(os.Stderr, "  ", 0)
	if flagQuiet {
		logger = log.New(io.Discard, "", 0)
	}

	dbPath := flagDB
	if dbPath == "" {
		dbPath = cfg.General.DBPath
	}
	var b backend
	if dbPath == memoryDB {
		b = store.NewMemory()
	} else {
		st, err := store.Open(dbPath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		b = st
	}

	repo := repository.New(b, logger)
	a := &app{
		cfg:     cfg,
		dbPath:  dbPath,
		backend: b,
		log:     logger,
		svc: service.New(repo, service.Options{
			Schema:   schema,
			Clock:    clock,
			Location: loc,
			Logger:   logger,
		}),
		trig: trigger.New(repo, trigger.Options{
			Schema:   schema,
			Clock:    clock,
			Location: loc,
			Logger:   logger,
			Journal:  b,
		}),
	}

	if err := a.svc.Init(); err != nil {
		_ = a.Close()
		return nil, err
	}

	if check && cfg.General.AutoCheck && !flagNoCheck {
		rep, err := a.trig.Run(ctx)
		if err != nil {
			// A failed check must not block the command itself.
			logger.Printf("warning: cycle-end check: %v", err)
		}
		for _, rec := range rep.Created() {
			if !flagQuiet {
				fmt.Fprintf(os.Stderr, "  Saved %s to budget history\n", rec.Name)
			}
		}
	}
	return a, nil
}

// withApp runs fn with an opened app and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	return runApp(cmd, true, fn)
}

func runApp(cmd *cobra.Command, check bool, fn func(a *app) error) error {
	a, err := openApp(commandContext(cmd), check)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	return fn(a)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// parseDateFlag parses an optional date flag, defaulting to today.
func parseDateFlag(a *app, name, value string) (calendar.Date, error) {
	if value == "" {
		return a.svc.Today(), nil
	}
	d, err := calendar.Parse(value)
	if err != nil {
		return calendar.Date{}, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
