package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/paycycle/internal/cli"
	"github.com/theirongolddev/paycycle/internal/config"
	"github.com/theirongolddev/paycycle/internal/model"
	"github.com/theirongolddev/paycycle/internal/service"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive pay-cycle setup",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

// setupValues holds the form answers.
type setupValues struct {
	name      string
	frequency string
	start     string
	income    string
	currency  string
}

func runSetup(cmd *cobra.Command, _ []string) error {
	return runApp(cmd, false, func(a *app) error {
		p, err := a.svc.ResolveProfile(flagProfile)
		if err != nil {
			return err
		}

		vals := setupValues{
			name:      p.Name,
			frequency: string(model.CycleMonthly),
			start:     a.svc.Today().Key(),
			income:    "0",
			currency:  a.cfg.General.CurrencySymbol,
		}
		if p.Configured() {
			vals.frequency = string(p.Config.Frequency)
			vals.start = p.Config.StartDate.Key()
			vals.income = p.Config.Income.String()
		}

		if err := newSetupForm(&vals).Run(); err != nil {
			return err
		}

		cfg, err := service.ParseConfig(service.ConfigInput{
			Frequency: vals.frequency,
			StartDate: vals.start,
			Income:    vals.income,
		})
		if err != nil {
			return err
		}
		if vals.name != p.Name {
			if p, err = a.svc.RenameProfile(p.ID, vals.name, ""); err != nil {
				return err
			}
		}
		if p, err = a.svc.ConfigureProfile(p.ID, cfg); err != nil {
			return err
		}

		if vals.currency != a.cfg.General.CurrencySymbol {
			a.cfg.General.CurrencySymbol = vals.currency
			if err := config.Save(a.cfg); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}
			cli.SetCurrency(vals.currency)
			fmt.Printf("  Saved to %s\n", config.Path())
		}

		fmt.Println()
		fmt.Printf("  %s: %s cycles from %s, income %s\n",
			p.Name, p.Config.Frequency, p.Config.StartDate, cli.FormatMoney(p.Config.Income))
		fmt.Println("  Run `paycycle setup` anytime to reconfigure.")
		fmt.Println()
		return nil
	})
}

func newSetupForm(v *setupValues) *huh.Form {
	freqs := make([]huh.Option[string], 0, len(model.CycleFrequencies))
	for _, f := range model.CycleFrequencies {
		freqs = append(freqs, huh.NewOption(string(f), string(f)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Profile name").
				Value(&v.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("How often are you paid?").
				Options(freqs...).
				Value(&v.frequency),
			huh.NewInput().
				Title("First day of a pay cycle").
				Description("YYYY-MM-DD; any past or future payday works").
				Value(&v.start).
				Validate(func(s string) error {
					_, err := service.ParseConfig(service.ConfigInput{Frequency: v.frequency, StartDate: s, Income: "0"})
					return err
				}),
			huh.NewInput().
				Title("Income per cycle").
				Value(&v.income).
				Validate(func(s string) error {
					_, err := service.ParseConfig(service.ConfigInput{Frequency: v.frequency, StartDate: v.start, Income: s})
					return err
				}),
			huh.NewInput().
				Title("Currency symbol").
				Value(&v.currency),
		),
	)
}
