package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newReportCommand() *cobra.Command {
	var (
		year   int
		month  int
		day    int
		top    int
		noSend bool
	)

	cmd := &cobra.Command{
		Use:       "report latest|daily|monthly",
		Short:     "Render a report and deliver it to the configured channels",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"latest", "daily", "monthly"},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			reports := app.reportService()
			now := time.Now()

			var text string
			switch args[0] {
			case "latest":
				// Unreported rows are stamped only when the report actually
				// goes out, so a dry run never loses transactions.
				text, _, err = reports.Latest(ctx, !noSend)
			case "daily":
				target := now.AddDate(0, 0, -1)
				if year != 0 || month != 0 || day != 0 {
					target = time.Date(orDefault(year, now.Year()), time.Month(orDefault(month, int(now.Month()))),
						orDefault(day, now.Day()), 0, 0, 0, 0, now.Location())
				}
				text, _, err = reports.Daily(ctx, target)
			case "monthly":
				y, m := now.Year(), int(now.Month())
				if year != 0 {
					y = year
				}
				if month != 0 {
					m = month
				}
				text, err = reports.Monthly(ctx, y, m, top)
			default:
				return fmt.Errorf("unknown report type %q", args[0])
			}
			if err != nil {
				return err
			}

			fmt.Println(text)
			if !noSend {
				dispatcher := app.dispatcher(ctx)
				defer dispatcher.Close()
				dispatcher.Send(ctx, text)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "report year (default: current)")
	cmd.Flags().IntVar(&month, "month", 0, "report month 1-12 (default: current)")
	cmd.Flags().IntVar(&day, "day", 0, "report day of month, daily only (default: yesterday)")
	cmd.Flags().IntVar(&top, "top", 0, "top merchants per card, monthly only")
	cmd.Flags().BoolVar(&noSend, "no-send", false, "print only, skip notification channels")
	return cmd
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
