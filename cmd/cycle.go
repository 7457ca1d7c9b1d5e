package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/paycycle/internal/budget"
	"github.com/theirongolddev/paycycle/internal/cli"
	"github.com/theirongolddev/paycycle/internal/ledger"
	"github.com/theirongolddev/paycycle/internal/model"
	"github.com/theirongolddev/paycycle/internal/service"
)

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Current pay cycle, live budget and spending so far",
	RunE:  runCycle,
}

func init() {
	rootCmd.AddCommand(cycleCmd)
}

func runCycle(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(a *app) error {
		view, err := a.svc.CurrentCycle(flagProfile)
		switch {
		case errors.Is(err, service.ErrProfileNotConfigured):
			fmt.Println("\n  This profile has no pay cycle yet.")
			fmt.Println("  Run `paycycle setup` or `paycycle profile config` first.")
			return nil
		case errors.Is(err, service.ErrNoCycle):
			fmt.Printf("\n  %v\n", err)
			return nil
		case err != nil:
			return err
		}
		printCycle(a, view)
		return nil
	})
}

func printCycle(a *app, view service.CycleView) {
	p := view.Progress
	schema := a.svc.Schema()

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("PAY CYCLE  %s", view.Profile.Name)))
	fmt.Println()

	remaining := p.Income.Sub(p.Committed)
	rows := [][]string{
		{"Period", cli.FormatPeriod(view.Period.Start, view.Period.End)},
		{"Frequency", string(view.Profile.Config.Frequency)},
		{"Progress", cli.RenderProgressBar(p.DaysElapsed, view.Period.Days(), 20)},
		{"Days left", cli.FormatDays(view.Period.Remaining(view.Today))},
		cli.SeparatorRow,
		{"Income", cli.FormatMoney(p.Income)},
		{"Spent so far", cli.FormatMoney(p.Spent)},
		{"Committed (cycle)", cli.FormatMoney(p.Committed)},
		{"Left over", cli.RenderMoney(cli.FormatMoney(remaining), remaining.IsNegative())},
		cli.SeparatorRow,
		{"Spend/day", cli.FormatMoney(p.DailyBurnRate)},
		{"Projected", cli.FormatMoney(p.ProjectedSpend)},
		{"Income used", cli.FormatPercent(p.IncomeUsedRatio)},
	}
	fmt.Print(cli.RenderTable(cli.Table{Headers: []string{"Cycle", "Value"}, Rows: rows}))

	if spark := dailySpark(view); spark != "" {
		fmt.Printf("  Daily spend  %s\n", spark)
	}

	if len(view.Breakdown) > 0 {
		fmt.Println()
		brows := make([][]string, 0, len(view.Breakdown))
		for _, c := range view.Breakdown {
			brows = append(brows, []string{c.Category.Name, cli.FormatMoney(c.Amount), cli.FormatPercent(c.Share)})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Spent so far by category",
			Headers: []string{"Category", "Amount", "Share"},
			Rows:    brows,
		}))
		fmt.Print(shareBars(view.Breakdown))
	}

	fmt.Println()
	fmt.Print(renderBudget(view.Live, schema))
	if deficit := budget.Deficit(view.Live, schema.SavingsID); deficit.IsPositive() {
		fmt.Printf("  %s\n", cli.RenderMoney(fmt.Sprintf("Over budget by %s", cli.FormatMoney(deficit)), true))
	}
}

// dailySpark renders logged and planned spending per day of the cycle so far.
func dailySpark(view service.CycleView) string {
	days := view.Progress.DaysElapsed
	if days <= 1 {
		return ""
	}
	perDay := make([]float64, days)
	for _, e := range view.ToDate.Entries {
		i := view.Period.Start.DaysUntil(e.Date)
		if i >= 0 && i < days {
			perDay[i] += e.Amount.InexactFloat64()
		}
	}
	return cli.RenderSparkline(perDay)
}

// shareBars draws one bar per category, scaled to the largest share.
func shareBars(breakdown []ledger.CategoryAmount) string {
	if len(breakdown) == 0 {
		return ""
	}
	width := 0
	peak := 0.0
	for _, c := range breakdown {
		width = max(width, len(c.Category.Name))
		peak = max(peak, c.Share)
	}
	var b strings.Builder
	for _, c := range breakdown {
		label := fmt.Sprintf("%-*s", width, c.Category.Name)
		b.WriteString(cli.RenderHorizontalBar(label, c.Share, peak, 30))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return b.String()
}

func renderBudget(rec model.BudgetRecord, schema model.CategorySchema) string {
	rows := make([][]string, 0, len(rec.Categories)+2)
	for _, c := range rec.Categories {
		name := c.Name
		if c.ID == schema.SavingsID {
			rows = append(rows, cli.SeparatorRow)
		}
		rows = append(rows, []string{name, cli.FormatMoney(c.Amount)})
	}
	rows = append(rows, cli.SeparatorRow, []string{"Income", cli.FormatMoney(rec.TotalIncome)})
	return cli.RenderTable(cli.Table{
		Title:   rec.Name,
		Headers: []string{"Category", "Amount"},
		Rows:    rows,
	})
}

func entryRows(entries []ledger.Entry, schema model.CategorySchema) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		id := cli.ShortID(e.ID)
		if e.Planned {
			id = cli.Muted("planned")
		}
		rows = append(rows, []string{cli.FormatDate(e.Date), id, categoryName(schema, e.CategoryID), e.Note, cli.FormatMoney(e.Amount)})
	}
	return rows
}
