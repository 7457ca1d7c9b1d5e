package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/paycycle/internal/cli"
	"github.com/theirongolddev/paycycle/internal/service"
)

var savingsCmd = &cobra.Command{
	Use:   "savings",
	Short: "Show the global savings balance",
	RunE:  runSavings,
}

var savingsSetCmd = &cobra.Command{
	Use:   "set <amount>",
	Short: "Set the global savings balance",
	Args:  cobra.ExactArgs(1),
	RunE:  runSavingsSet,
}

var savingsGoalCmd = &cobra.Command{
	Use:   "goal <target>",
	Short: "Estimate when regular contributions reach a savings target",
	Args:  cobra.ExactArgs(1),
	RunE:  runSavingsGoal,
}

var (
	flagGoalContribution string
	flagGoalFreq         string
	flagGoalCurrent      string
)

func init() {
	savingsGoalCmd.Flags().StringVar(&flagGoalContribution, "contribution", "", "amount saved each period")
	savingsGoalCmd.Flags().StringVarP(&flagGoalFreq, "freq", "f", "", "contribution frequency (default: the active profile's cycle)")
	savingsGoalCmd.Flags().StringVar(&flagGoalCurrent, "current", "", "starting balance (default: the stored savings balance)")
	_ = savingsGoalCmd.MarkFlagRequired("contribution")

	savingsCmd.AddCommand(savingsSetCmd, savingsGoalCmd)
	rootCmd.AddCommand(savingsCmd)
}

func runSavings(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(a *app) error {
		stored, fromHistory, err := a.svc.Savings()
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Savings", "Amount"},
			Rows: [][]string{
				{"Balance", cli.FormatMoney(stored)},
				{"Saved across budgets", cli.FormatMoney(fromHistory)},
			},
		}))
		return nil
	})
}

func runSavingsSet(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		v, err := a.svc.SetSavings(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("  Savings balance set to %s\n", cli.FormatMoney(v))
		return nil
	})
}

func runSavingsGoal(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		plan, current, freq, err := a.svc.SavingsGoal(service.GoalInput{
			Target:       args[0],
			Contribution: flagGoalContribution,
			Frequency:    flagGoalFreq,
			Current:      flagGoalCurrent,
		})
		if err != nil {
			return err
		}
		if plan.Reached {
			fmt.Printf("  Goal already reached with %s saved\n", cli.FormatMoney(current))
			return nil
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Goal", "Value"},
			Rows: [][]string{
				{"Starting balance", cli.FormatMoney(current)},
				{"Still to save", cli.FormatMoney(plan.Remaining)},
				{"Contributions", fmt.Sprintf("%d %s", plan.Contributions, freq)},
				{"Reached on", cli.FormatDate(plan.Date)},
				{"Days away", cli.FormatDays(a.svc.Today().DaysUntil(plan.Date))},
			},
		}))
		return nil
	})
}
