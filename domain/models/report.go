package models

import (
	"github.com/shopspring/decimal"
)

// DailyReport is the derived aggregate for one calendar day. It is never
// persisted: every value is recomputed from the ledger rows on demand, so a
// report can never hold a total whose underlying entries are gone.
type DailyReport struct {
	Date              string          `json:"date"` // YYYY-MM-DD
	TotalIncome       decimal.Decimal `json:"totalIncome"`
	TotalExpenses     decimal.Decimal `json:"totalExpenses"`
	NetProfit         decimal.Decimal `json:"netProfit"`
	ProfitMargin      decimal.Decimal `json:"profitMargin"` // full precision
	TransactionsCount int             `json:"transactionsCount"`
}

// EmptyDailyReport returns the explicit all-zero report for a day with no
// entries. Zero days are emitted, not omitted, so downstream charts align.
func EmptyDailyReport(date string) DailyReport {
	return DailyReport{
		Date:          date,
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
		NetProfit:     decimal.Zero,
		ProfitMargin:  decimal.Zero,
	}
}

// DisplayMargin is the profit margin rounded to one fractional digit for
// display-facing consumers. The internal value keeps full precision.
func (r DailyReport) DisplayMargin() decimal.Decimal {
	return r.ProfitMargin.Round(1)
}

// WeeklyReport is the ordered sequence of seven consecutive DailyReports
// starting at the caller-supplied start date.
type WeeklyReport struct {
	StartDate string        `json:"startDate"`
	Days      []DailyReport `json:"days"` // always 7, dates contiguous ascending
}

// MonthlyReport aggregates one calendar month.
type MonthlyReport struct {
	Year              int             `json:"year"`
	Month             int             `json:"month"`
	TotalIncome       decimal.Decimal `json:"totalIncome"`
	TotalExpenses     decimal.Decimal `json:"totalExpenses"`
	NetProfit         decimal.Decimal `json:"netProfit"`
	TransactionsCount int             `json:"transactionsCount"`
	Days              []DailyReport   `json:"days"`
}

// ComputeMargin derives the profit margin from two fixed-precision sums:
// net/income × 100 when income is positive, zero otherwise.
func ComputeMargin(totalIncome, netProfit decimal.Decimal) decimal.Decimal {
	if totalIncome.Sign() <= 0 {
		return decimal.Zero
	}
	return netProfit.Div(totalIncome).Mul(decimal.NewFromInt(100))
}
