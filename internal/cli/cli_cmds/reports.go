package cli_cmds

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcosvidal/carniceria-go/domain/models"
	"github.com/marcosvidal/carniceria-go/internal/cli"
)

// NewReport creates the report command group
func NewReport(params *cli.CmdParams) *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Derive daily, weekly and monthly reports from the ledger",
		Long:  `Reports are always recomputed from the ledger rows; nothing is read from a stored aggregate.`,
	}

	reportCmd.AddCommand(newReportDaily(params))
	reportCmd.AddCommand(newReportWeekly(params))
	reportCmd.AddCommand(newReportMonthly(params))
	reportCmd.AddCommand(newReportRange(params))

	return reportCmd
}

func newReportDaily(params *cli.CmdParams) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Report for one calendar day",
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = params.Accounting.Today()
			}
			report, err := params.Accounting.DailyReport(context.Background(), date)
			if err != nil {
				return err
			}
			printDaily(cmd, report)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day YYYY-MM-DD (default today)")
	return cmd
}

func newReportWeekly(params *cli.CmdParams) *cobra.Command {
	var start string
	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "Seven consecutive daily reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			if start == "" {
				start = mondayOf(params.Accounting.Today())
			}
			report, err := params.Accounting.WeeklyReport(context.Background(), start)
			if err != nil {
				return err
			}
			for _, day := range report.Days {
				printDaily(cmd, day)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "week start YYYY-MM-DD (default Monday of the current week)")
	return cmd
}

func newReportMonthly(params *cli.CmdParams) *cobra.Command {
	var year, month int
	cmd := &cobra.Command{
		Use:   "monthly",
		Short: "Report for one calendar month",
		RunE: func(cmd *cobra.Command, args []string) error {
			if year == 0 || month == 0 {
				today, err := models.ParseDate(params.Accounting.Today())
				if err != nil {
					return err
				}
				year, month = today.Year(), int(today.Month())
			}
			report, err := params.Accounting.MonthlyReport(context.Background(), year, month)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%04d-%02d  income %s  expenses %s  net %s  entries %d\n",
				report.Year, report.Month,
				models.FormatAmount(report.TotalIncome),
				models.FormatAmount(report.TotalExpenses),
				models.FormatAmount(report.NetProfit),
				report.TransactionsCount)
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "year (default current)")
	cmd.Flags().IntVar(&month, "month", 0, "month 1-12 (default current)")
	return cmd
}

func newReportRange(params *cli.CmdParams) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "range",
		Short: "One daily report per day in a range",
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, err := params.Accounting.RangeReport(context.Background(), from, to)
			if err != nil {
				return err
			}
			for _, day := range reports {
				printDaily(cmd, day)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "range start YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "range end YYYY-MM-DD")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	return cmd
}

func printDaily(cmd *cobra.Command, r models.DailyReport) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s  income %s  expenses %s  net %s  margin %s%%  entries %d\n",
		r.Date,
		models.FormatAmount(r.TotalIncome),
		models.FormatAmount(r.TotalExpenses),
		models.FormatAmount(r.NetProfit),
		r.DisplayMargin().String(),
		r.TransactionsCount)
}

// mondayOf returns the Monday of the week containing the given day.
func mondayOf(date string) string {
	day, err := models.ParseDate(date)
	if err != nil {
		return date
	}
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset).Format(models.DateLayout)
}
