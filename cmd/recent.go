package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/paycycle/internal/cli"
)

var flagRecentCount int

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show the latest logged expenses across all profiles",
	RunE:  runRecent,
}

func init() {
	recentCmd.Flags().IntVarP(&flagRecentCount, "count", "n", 5, "number of expenses to show")
	rootCmd.AddCommand(recentCmd)
}

func runRecent(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(a *app) error {
		entries, err := a.svc.Recent(flagRecentCount)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("\n  No expenses logged yet.")
			return nil
		}

		schema := a.svc.Schema()
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{
				cli.FormatDate(e.Date), e.ProfileName, categoryName(schema, e.CategoryID), e.Note, cli.FormatMoney(e.Amount),
			})
		}
		fmt.Println()
		fmt.Println(cli.RenderTitle("RECENT ACTIVITY"))
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Date", "Profile", "Category", "Note", "Amount"},
			Rows:    rows,
		}))
		return nil
	})
}
