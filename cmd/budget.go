package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/paycycle/internal/cli"
	"github.com/theirongolddev/paycycle/internal/model"
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Budget history",
	RunE:  runBudgetList,
}

var budgetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved budgets, newest first",
	RunE:  runBudgetList,
}

var budgetShowCmd = &cobra.Command{
	Use:   "show [budget]",
	Short: "Show a saved budget (default: the live budget of the current cycle)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBudgetShow,
}

var budgetRmCmd = &cobra.Command{
	Use:   "rm <budget>",
	Short: "Delete a saved budget",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetRm,
}

var budgetForceCmd = &cobra.Command{
	Use:   "force",
	Short: "Save the current cycle's budget now, before the cycle ends",
	RunE:  runBudgetForce,
}

var budgetCompareCmd = &cobra.Command{
	Use:   "compare [current previous]",
	Short: "Compare two budgets (default: the latest two)",
	Args:  cobra.MatchAll(cobra.MaximumNArgs(2), func(_ *cobra.Command, args []string) error {
		if len(args) == 1 {
			return errors.New("compare needs both budgets or neither")
		}
		return nil
	}),
	RunE: runBudgetCompare,
}

var budgetAverageCmd = &cobra.Command{
	Use:   "average",
	Short: "Average of every saved budget",
	RunE:  runBudgetAverage,
}

func init() {
	budgetCmd.AddCommand(budgetListCmd, budgetShowCmd, budgetRmCmd, budgetForceCmd, budgetCompareCmd, budgetAverageCmd)
	rootCmd.AddCommand(budgetCmd)
}

func runBudgetList(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(a *app) error {
		recs, err := a.svc.Budgets()
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println("\n  No saved budgets yet.")
			fmt.Println("  Budgets are saved automatically when a pay cycle ends.")
			return nil
		}
		savingsID := a.svc.Schema().SavingsID

		fmt.Println()
		fmt.Println(cli.RenderTitle("BUDGET HISTORY"))
		fmt.Println()
		rows := make([][]string, 0, len(recs))
		for _, r := range recs {
			rows = append(rows, []string{
				r.Name,
				cli.ShortID(r.ID),
				formatTimestamp(r.DateSaved),
				cli.FormatMoney(r.TotalIncome),
				cli.FormatMoney(r.Allocated(savingsID)),
				cli.FormatMoney(r.Amount(savingsID)),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Budget", "ID", "Saved", "Income", "Spent", "Savings"},
			Rows:    rows,
		}))
		return nil
	})
}

func runBudgetShow(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		var rec model.BudgetRecord
		if len(args) == 0 || args[0] == model.CurrentCycleBudgetID {
			view, err := a.svc.CurrentCycle(flagProfile)
			if err != nil {
				return err
			}
			rec = view.Live
		} else {
			var err error
			if rec, err = a.svc.Budget(args[0]); err != nil {
				return err
			}
		}
		fmt.Println()
		fmt.Print(renderBudget(rec, a.svc.Schema()))
		if rec.ID != model.CurrentCycleBudgetID {
			fmt.Printf("  Saved %s  [%s]\n", formatTimestamp(rec.DateSaved), rec.ID)
		}
		return nil
	})
}

func runBudgetRm(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		rec, err := a.svc.DeleteBudget(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("  Deleted budget %s\n", rec.Name)
		return nil
	})
}

func runBudgetForce(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(a *app) error {
		rec, err := a.svc.ForceBudget(flagProfile)
		if err != nil {
			return err
		}
		fmt.Printf("  Saved %s [%s]\n", rec.Name, cli.ShortID(rec.ID))
		return nil
	})
}

func runBudgetCompare(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		var cur, prev string
		if len(args) == 2 {
			cur, prev = args[0], args[1]
		}
		curRec, prevRec, cmp, err := a.svc.CompareBudgets(cur, prev)
		if err != nil {
			return err
		}

		fmt.Println()
		fmt.Println(cli.RenderTitle(fmt.Sprintf("%s  vs  %s", curRec.Name, prevRec.Name)))
		fmt.Println()
		rows := [][]string{
			{"Income", cli.FormatMoney(curRec.TotalIncome), cli.FormatMoney(prevRec.TotalIncome), cli.FormatDelta(cmp.IncomeDelta)},
		}
		savingsID := a.svc.Schema().SavingsID
		rows = append(rows, []string{"Spent",
			cli.FormatMoney(curRec.Allocated(savingsID)), cli.FormatMoney(prevRec.Allocated(savingsID)), cli.FormatDelta(cmp.AllocatedDelta)})
		rows = append(rows, []string{"Balance",
			cli.FormatMoney(curRec.TotalIncome.Sub(curRec.Allocated(savingsID))),
			cli.FormatMoney(prevRec.TotalIncome.Sub(prevRec.Allocated(savingsID))),
			cli.FormatDelta(cmp.BalanceDelta)})
		if len(cmp.Changes) > 0 {
			rows = append(rows, cli.SeparatorRow)
		}
		for _, c := range cmp.Changes {
			rows = append(rows, []string{c.Category.Name, cli.FormatMoney(c.Current), cli.FormatMoney(c.Previous), cli.FormatDelta(c.Delta)})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"", "Current", "Previous", "Change"},
			Rows:    rows,
		}))
		return nil
	})
}

func runBudgetAverage(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(a *app) error {
		avg, n, err := a.svc.AverageBudget()
		if err != nil {
			return err
		}
		avg.Name = fmt.Sprintf("Average of %d budgets", n)
		fmt.Println()
		fmt.Print(renderBudget(avg, a.svc.Schema()))
		return nil
	})
}
