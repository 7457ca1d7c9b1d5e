package cmd

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/paycycle/internal/calendar"
	"github.com/theirongolddev/paycycle/internal/cli"
	"github.com/theirongolddev/paycycle/internal/cycle"
	"github.com/theirongolddev/paycycle/internal/service"
)

var (
	flagExpenseDate    string
	flagExpenseNote    string
	flagExpenseFrom    string
	flagExpenseTo      string
	flagExpenseLogOnly bool
)

var expenseCmd = &cobra.Command{
	Use:     "expense",
	Aliases: []string{"exp"},
	Short:   "Log and list daily expenses",
}

var expenseAddCmd = &cobra.Command{
	Use:   "add <amount> <category> [note...]",
	Short: "Log an expense",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runExpenseAdd,
}

var expenseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List expenses of the current cycle or a date range",
	RunE:  runExpenseList,
}

var expenseRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a logged expense",
	Args:  cobra.ExactArgs(1),
	RunE:  runExpenseRm,
}

func init() {
	expenseAddCmd.Flags().StringVar(&flagExpenseDate, "date", "", "Expense date (default: today)")
	expenseAddCmd.Flags().StringVar(&flagExpenseNote, "note", "", "Note (alternative to trailing args)")
	expenseListCmd.Flags().StringVar(&flagExpenseFrom, "from", "", "First day (default: cycle start)")
	expenseListCmd.Flags().StringVar(&flagExpenseTo, "to", "", "Last day (default: cycle end)")
	expenseListCmd.Flags().BoolVar(&flagExpenseLogOnly, "logged", false, "Hide planned occurrences")

	expenseCmd.AddCommand(expenseAddCmd, expenseListCmd, expenseRmCmd)
	rootCmd.AddCommand(expenseCmd)
}

func runExpenseAdd(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		day, err := parseDateFlag(a, "date", flagExpenseDate)
		if err != nil {
			return err
		}
		note := flagExpenseNote
		if note == "" {
			note = strings.Join(args[2:], " ")
		}
		exp, err := a.svc.AddExpense(flagProfile, day, service.ExpenseInput{
			Amount:   args[0],
			Category: args[1],
			Note:     note,
		})
		if err != nil {
			return err
		}
		fmt.Printf("  Logged %s (%s) on %s  [%s]\n", cli.FormatMoney(exp.Amount), exp.CategoryID, day.Key(), cli.ShortID(exp.ID))
		return nil
	})
}

func runExpenseList(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(a *app) error {
		window, err := listWindow(a)
		if err != nil {
			return err
		}
		res, err := a.svc.Expenses(flagProfile, window)
		if err != nil {
			return err
		}
		entries := res.Entries
		if flagExpenseLogOnly {
			entries = res.Logged()
		}
		if len(entries) == 0 {
			fmt.Printf("\n  No expenses between %s and %s.\n", window.From, window.To)
			return nil
		}

		fmt.Println()
		fmt.Println(cli.RenderTitle(fmt.Sprintf("EXPENSES  %s", cli.FormatPeriod(window.From, window.To))))
		fmt.Println()
		total := decimal.Zero
		for _, e := range entries {
			total = total.Add(e.Amount)
		}
		rows := entryRows(entries, a.svc.Schema())
		rows = append(rows, cli.SeparatorRow, []string{"Total", "", "", "", cli.FormatMoney(total)})
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Date", "ID", "Category", "Note", "Amount"},
			Rows:    rows,
		}))
		return nil
	})
}

// listWindow is --from/--to, each defaulting to the running cycle's bounds.
func listWindow(a *app) (calendar.Range, error) {
	var from, to calendar.Date
	if flagExpenseFrom == "" || flagExpenseTo == "" {
		p, err := a.svc.ResolveProfile(flagProfile)
		if err != nil {
			return calendar.Range{}, err
		}
		if !p.Configured() {
			return calendar.Range{}, fmt.Errorf("%w: pass --from and --to", service.ErrProfileNotConfigured)
		}
		period, ok, err := cycle.Locate(p.Config.StartDate, p.Config.Frequency.Recurrence(), a.svc.Today())
		if err != nil {
			return calendar.Range{}, err
		}
		if !ok {
			return calendar.Range{}, fmt.Errorf("%w: pass --from and --to", service.ErrNoCycle)
		}
		from, to = period.Start, period.End
	}
	var err error
	if flagExpenseFrom != "" {
		if from, err = calendar.Parse(flagExpenseFrom); err != nil {
			return calendar.Range{}, fmt.Errorf("--from: %w", err)
		}
	}
	if flagExpenseTo != "" {
		if to, err = calendar.Parse(flagExpenseTo); err != nil {
			return calendar.Range{}, fmt.Errorf("--to: %w", err)
		}
	}
	if to.Before(from) {
		return calendar.Range{}, fmt.Errorf("--to %s is before --from %s", to, from)
	}
	return calendar.NewRange(from, to), nil
}

func runExpenseRm(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		exp, err := a.svc.DeleteExpense(flagProfile, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("  Deleted %s (%s)\n", cli.FormatMoney(exp.Amount), exp.CategoryID)
		return nil
	})
}
