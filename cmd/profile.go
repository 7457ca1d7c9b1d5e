package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/paycycle/internal/cli"
	"github.com/theirongolddev/paycycle/internal/cycle"
	"github.com/theirongolddev/paycycle/internal/service"
)

var (
	flagProfileColor  string
	flagProfileFreq   string
	flagProfileStart  string
	flagProfileIncome string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage pay-cycle profiles",
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	RunE:  runProfileList,
}

var profileAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileAdd,
}

var profileUseCmd = &cobra.Command{
	Use:   "use <profile>",
	Short: "Select the active profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileUse,
}

var profileRmCmd = &cobra.Command{
	Use:   "rm <profile>",
	Short: "Delete a profile with its expenses",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileRm,
}

var profileRenameCmd = &cobra.Command{
	Use:   "rename <profile> <name>",
	Short: "Rename a profile",
	Args:  cobra.ExactArgs(2),
	RunE:  runProfileRename,
}

var profileConfigCmd = &cobra.Command{
	Use:   "config [profile]",
	Short: "Set a profile's pay cycle",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProfileConfig,
}

func init() {
	profileAddCmd.Flags().StringVar(&flagProfileColor, "color", "", "Display color (default: next in palette)")
	profileRenameCmd.Flags().StringVar(&flagProfileColor, "color", "", "New display color")

	profileConfigCmd.Flags().StringVarP(&flagProfileFreq, "freq", "f", "", "Cycle frequency: weekly, biweekly, monthly, yearly")
	profileConfigCmd.Flags().StringVar(&flagProfileStart, "start", "", "First day of any cycle (YYYY-MM-DD)")
	profileConfigCmd.Flags().StringVar(&flagProfileIncome, "income", "", "Income per cycle")
	_ = profileConfigCmd.MarkFlagRequired("freq")
	_ = profileConfigCmd.MarkFlagRequired("start")
	_ = profileConfigCmd.MarkFlagRequired("income")

	profileCmd.AddCommand(profileListCmd, profileAddCmd, profileUseCmd, profileRmCmd, profileRenameCmd, profileConfigCmd)
	rootCmd.AddCommand(profileCmd)
}

func runProfileList(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(a *app) error {
		profiles, err := a.svc.Profiles()
		if err != nil {
			return err
		}
		active, err := a.svc.ActiveProfile()
		if err != nil {
			return err
		}
		today := a.svc.Today()

		fmt.Println()
		fmt.Println(cli.RenderTitle("PROFILES"))
		fmt.Println()
		rows := make([][]string, 0, len(profiles))
		for _, p := range profiles {
			mark := ""
			if p.ID == active.ID {
				mark = "*"
			}
			freq, income, current := "-", "-", "-"
			if p.Configured() {
				freq = string(p.Config.Frequency)
				income = cli.FormatMoney(p.Config.Income)
				if period, ok, err := cycle.Locate(p.Config.StartDate, p.Config.Frequency.Recurrence(), today); err == nil && ok {
					current = cli.FormatPeriod(period.Start, period.End)
				}
			}
			rows = append(rows, []string{mark + p.Name, cli.ShortID(p.ID), freq, current, income})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Profile", "ID", "Every", "Current cycle", "Income"},
			Rows:    rows,
		}))
		return nil
	})
}

func runProfileAdd(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		p, err := a.svc.AddProfile(args[0], flagProfileColor)
		if err != nil {
			return err
		}
		fmt.Printf("  Created profile %s [%s]\n", p.Name, cli.ShortID(p.ID))
		fmt.Printf("  Configure it with: paycycle profile config %q --freq monthly --start YYYY-MM-DD --income N\n", p.Name)
		return nil
	})
}

func runProfileUse(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		p, err := a.svc.UseProfile(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("  Active profile: %s\n", p.Name)
		return nil
	})
}

func runProfileRm(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		p, err := a.svc.DeleteProfile(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("  Deleted profile %s and its expenses\n", p.Name)
		return nil
	})
}

func runProfileRename(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		p, err := a.svc.RenameProfile(args[0], args[1], flagProfileColor)
		if err != nil {
			return err
		}
		fmt.Printf("  Renamed to %s\n", p.Name)
		return nil
	})
}

func runProfileConfig(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		ref := flagProfile
		if len(args) == 1 {
			ref = args[0]
		}
		cfg, err := service.ParseConfig(service.ConfigInput{
			Frequency: flagProfileFreq,
			StartDate: flagProfileStart,
			Income:    flagProfileIncome,
		})
		if err != nil {
			return err
		}
		p, err := a.svc.ConfigureProfile(ref, cfg)
		if err != nil {
			return err
		}
		fmt.Printf("  %s: %s cycles from %s, income %s\n",
			p.Name, p.Config.Frequency, p.Config.StartDate, cli.FormatMoney(p.Config.Income))
		return nil
	})
}
