package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/paycycle/internal/cli"
	"github.com/theirongolddev/paycycle/internal/model"
	"github.com/theirongolddev/paycycle/internal/service"
)

var (
	flagPlannedStart string
	flagPlannedFreq  string
	flagPlannedEnd   string
)

var plannedCmd = &cobra.Command{
	Use:   "planned",
	Short: "Manage planned (recurring) expenses",
}

var plannedAddCmd = &cobra.Command{
	Use:   "add <amount> <category> [note...]",
	Short: "Add a planned expense",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runPlannedAdd,
}

var plannedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List planned expenses and their next occurrence",
	RunE:  runPlannedList,
}

var plannedRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a planned expense",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlannedRm,
}

func init() {
	plannedAddCmd.Flags().StringVar(&flagPlannedStart, "start", "", "First occurrence (default: today)")
	plannedAddCmd.Flags().StringVarP(&flagPlannedFreq, "freq", "f", string(model.ExpenseMonthly),
		"Frequency: "+strings.Join(expenseFrequencyNames(), ", "))
	plannedAddCmd.Flags().StringVar(&flagPlannedEnd, "end", "", "Last possible occurrence (optional)")

	plannedCmd.AddCommand(plannedAddCmd, plannedListCmd, plannedRmCmd)
	rootCmd.AddCommand(plannedCmd)
}

func expenseFrequencyNames() []string {
	out := make([]string, len(model.ExpenseFrequencies))
	for i, f := range model.ExpenseFrequencies {
		out[i] = string(f)
	}
	return out
}

func runPlannedAdd(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		start := flagPlannedStart
		if start == "" {
			start = a.svc.Today().Key()
		}
		fe, err := a.svc.AddPlanned(flagProfile, service.PlannedInput{
			ExpenseInput: service.ExpenseInput{
				Amount:   args[0],
				Category: args[1],
				Note:     strings.Join(args[2:], " "),
			},
			StartDate: start,
			Frequency: flagPlannedFreq,
			EndDate:   flagPlannedEnd,
		})
		if err != nil {
			return err
		}
		fmt.Printf("  Planned %s %s (%s) from %s  [%s]\n",
			cli.FormatMoney(fe.Amount), fe.Frequency, fe.CategoryID, fe.StartDate, cli.ShortID(fe.ID))
		return nil
	})
}

func runPlannedList(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(a *app) error {
		rules, err := a.svc.Planned(flagProfile)
		if err != nil {
			return err
		}
		if len(rules) == 0 {
			fmt.Println("\n  No planned expenses.")
			return nil
		}
		schema := a.svc.Schema()

		fmt.Println()
		fmt.Println(cli.RenderTitle("PLANNED EXPENSES"))
		fmt.Println()
		rows := make([][]string, 0, len(rules))
		for _, fe := range rules {
			end := "-"
			if fe.EndDate != nil {
				end = fe.EndDate.Key()
			}
			rows = append(rows, []string{
				cli.ShortID(fe.ID), fe.Note, categoryName(schema, fe.CategoryID), string(fe.Frequency),
				fe.StartDate.Key(), end, cli.FormatMoney(fe.Amount),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"ID", "Note", "Category", "Every", "Start", "End", "Amount"},
			Rows:    rows,
		}))

		next, ok, err := a.svc.NextPlanned(flagProfile)
		if err != nil {
			return err
		}
		if ok {
			fmt.Printf("  Next: %s %s on %s\n", next.Note, cli.FormatMoney(next.Amount), cli.FormatDate(next.Date))
		}
		return nil
	})
}

func runPlannedRm(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(a *app) error {
		fe, err := a.svc.DeletePlanned(flagProfile, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("  Deleted planned %s %s (%s)\n", cli.FormatMoney(fe.Amount), fe.Frequency, fe.CategoryID)
		return nil
	})
}
