package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/paycycle/internal/cli"
	"github.com/theirongolddev/paycycle/internal/trigger"
)

var (
	flagCheckForce   bool
	flagCheckStatus  bool
	flagCheckHistory int
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Save budgets for pay cycles that have ended",
	Long: "Runs the cycle-end check: every profile whose last completed cycle has no\n" +
		"budget in history gets one. The check runs at most once per day unless --force.",
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&flagCheckForce, "force", false, "Run even if a check already ran today")
	checkCmd.Flags().BoolVar(&flagCheckStatus, "status", false, "Only report each profile's state, write nothing")
	checkCmd.Flags().IntVar(&flagCheckHistory, "history", 0, "Show the last N check runs")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	return runApp(cmd, false, func(a *app) error {
		ctx := commandContext(cmd)
		if flagCheckHistory > 0 {
			return printRuns(a, flagCheckHistory)
		}
		if flagCheckStatus {
			outcomes, err := a.trig.Status(ctx)
			if err != nil {
				return err
			}
			printOutcomes(outcomes)
			return nil
		}

		if flagCheckForce {
			if err := a.svc.Repository().ResetLastCycleCheck(); err != nil {
				return err
			}
		}
		rep, err := a.trig.Run(ctx)
		if err != nil {
			return err
		}
		if rep.Skipped {
			fmt.Printf("  Already checked on %s (use --force to run again)\n", rep.Day)
			return nil
		}
		printOutcomes(rep.Outcomes)
		for _, rec := range rep.Created() {
			fmt.Printf("  Saved %s\n", rec.Name)
		}
		if n := len(rep.Failed()); n > 0 {
			return fmt.Errorf("%d profile(s) failed the cycle-end check", n)
		}
		return nil
	})
}

func printOutcomes(outcomes []trigger.Outcome) {
	if len(outcomes) == 0 {
		fmt.Println("\n  No configured profiles.")
		return
	}
	fmt.Println()
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		last := "-"
		if o.HasPeriod {
			last = cli.FormatPeriod(o.Period.Start, o.Period.End)
		}
		note := ""
		if o.Err != nil {
			note = o.Err.Error()
		}
		rows = append(rows, []string{o.ProfileName, cli.RenderState(string(o.State)), last, note})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Cycle-end check",
		Headers: []string{"Profile", "State", "Last completed cycle", "Error"},
		Rows:    rows,
	}))
}

func printRuns(a *app, limit int) error {
	runs, err := a.backend.RecentRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("\n  No checks recorded yet.")
		return nil
	}
	fmt.Println()
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		result := r.Detail
		if r.Skipped {
			result = cli.Muted("skipped")
		}
		rows = append(rows, []string{
			formatTimestamp(r.RanAt),
			r.Day,
			cli.FormatNumber(int64(r.Created)),
			cli.FormatNumber(int64(r.Failed)),
			result,
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Recent checks",
		Headers: []string{"Ran at", "Day", "Created", "Failed", "Detail"},
		Rows:    rows,
	}))
	return nil
}
