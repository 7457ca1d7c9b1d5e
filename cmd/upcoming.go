package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/paycycle/internal/cli"
	"github.com/theirongolddev/paycycle/internal/model"
)

var flagUpcomingDays int

var upcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "Planned expenses due soon, across every profile",
	RunE:  runUpcoming,
}

func init() {
	upcomingCmd.Flags().IntVarP(&flagUpcomingDays, "days", "n", 30, "Look-ahead window in days")
	rootCmd.AddCommand(upcomingCmd)
}

func runUpcoming(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(a *app) error {
		entries, err := a.svc.Upcoming(flagUpcomingDays)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Printf("\n  Nothing planned in the next %s.\n", cli.FormatDays(flagUpcomingDays))
			return nil
		}
		profiles, err := a.svc.Profiles()
		if err != nil {
			return err
		}
		names := make(map[string]string, len(profiles))
		for _, p := range profiles {
			names[p.ID] = p.Name
		}
		schema := a.svc.Schema()
		today := a.svc.Today()

		fmt.Println()
		fmt.Println(cli.RenderTitle(fmt.Sprintf("UPCOMING  Next %dd", flagUpcomingDays)))
		fmt.Println()
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{
				cli.FormatDate(e.Date),
				fmt.Sprintf("in %s", cli.FormatDays(today.DaysUntil(e.Date))),
				names[e.ProfileID],
				categoryName(schema, e.CategoryID),
				e.Note,
				cli.FormatMoney(e.Amount),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Date", "When", "Profile", "Category", "Note", "Amount"},
			Rows:    rows,
		}))
		return nil
	})
}

func categoryName(schema model.CategorySchema, id string) string {
	if c, ok := schema.Lookup(id); ok {
		return c.Name
	}
	return id
}
