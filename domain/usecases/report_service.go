package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/marcosvidal/carniceria-go/domain/models"
	"github.com/marcosvidal/carniceria-go/internal"
)

// ReportService derives daily, weekly and monthly aggregates from the
// ledger on demand. It owns no state and never reads or writes precomputed
// report rows: a historical "daily_reports" cache once let a weekly total
// survive the deletion of its underlying entries, so the engine is the
// single source of truth.
type ReportService struct {
	ledger *LedgerService
	logger *internal.Logger
}

// NewReportService creates a new ReportService.
func NewReportService(ledger *LedgerService, logger *internal.Logger) *ReportService {
	if logger == nil {
		logger = internal.GetLogger()
	}
	return &ReportService{ledger: ledger, logger: logger}
}

// Daily computes the report for one calendar day.
func (s *ReportService) Daily(ctx context.Context, date string) (models.DailyReport, error) {
	reports, err := s.Range(ctx, date, date)
	if err != nil {
		return models.DailyReport{}, err
	}
	return reports[0], nil
}

// Weekly computes the seven consecutive daily reports starting at start.
func (s *ReportService) Weekly(ctx context.Context, start string) (models.WeeklyReport, error) {
	startDate, err := models.ParseDate(start)
	if err != nil {
		return models.WeeklyReport{}, err
	}
	end := startDate.AddDate(0, 0, 6).Format(models.DateLayout)

	days, err := s.Range(ctx, start, end)
	if err != nil {
		return models.WeeklyReport{}, err
	}
	return models.WeeklyReport{StartDate: start, Days: days}, nil
}

// Monthly computes the report for one calendar month.
func (s *ReportService) Monthly(ctx context.Context, year, month int) (models.MonthlyReport, error) {
	if month < 1 || month > 12 {
		return models.MonthlyReport{}, models.ErrDateMalformed
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	days, err := s.Range(ctx, first.Format(models.DateLayout), last.Format(models.DateLayout))
	if err != nil {
		return models.MonthlyReport{}, err
	}

	report := models.MonthlyReport{
		Year:          year,
		Month:         month,
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
		NetProfit:     decimal.Zero,
		Days:          days,
	}
	for _, day := range days {
		report.TotalIncome = report.TotalIncome.Add(day.TotalIncome)
		report.TotalExpenses = report.TotalExpenses.Add(day.TotalExpenses)
		report.TransactionsCount += day.TransactionsCount
	}
	report.NetProfit = report.TotalIncome.Sub(report.TotalExpenses)
	return report, nil
}

// Range computes one report per day in [from, to] inclusive. Days without
// entries are explicit zero rows. The whole window is read from the ledger
// in a single call and bucketed in memory; no per-day queries.
func (s *ReportService) Range(ctx context.Context, from, to string) ([]models.DailyReport, error) {
	fromDate, err := models.ParseDate(from)
	if err != nil {
		return nil, err
	}
	toDate, err := models.ParseDate(to)
	if err != nil {
		return nil, err
	}
	if toDate.Before(fromDate) {
		return nil, fmt.Errorf("%w: range end %s precedes start %s", models.ErrDateMalformed, to, from)
	}

	entries, err := s.ledger.ListEntries(ctx, nil, from, to)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]*models.DailyReport)
	for _, entry := range entries {
		report, ok := buckets[entry.Date]
		if !ok {
			empty := models.EmptyDailyReport(entry.Date)
			report = &empty
			buckets[entry.Date] = report
		}
		switch entry.Kind {
		case models.EntryKindIncome:
			report.TotalIncome = report.TotalIncome.Add(entry.Amount)
		case models.EntryKindExpense:
			report.TotalExpenses = report.TotalExpenses.Add(entry.Amount)
		}
		report.TransactionsCount++
	}

	reports := make([]models.DailyReport, 0, int(toDate.Sub(fromDate).Hours()/24)+1)
	for day := fromDate; !day.After(toDate); day = day.AddDate(0, 0, 1) {
		date := day.Format(models.DateLayout)
		if report, ok := buckets[date]; ok {
			report.NetProfit = report.TotalIncome.Sub(report.TotalExpenses)
			report.ProfitMargin = models.ComputeMargin(report.TotalIncome, report.NetProfit)
			reports = append(reports, *report)
		} else {
			reports = append(reports, models.EmptyDailyReport(date))
		}
	}

	s.logger.Debug(internal.ComponentReport, "Computed %d daily reports from %d entries (%s..%s)",
		len(reports), len(entries), from, to)
	return reports, nil
}
