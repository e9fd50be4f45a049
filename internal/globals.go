package internal

import (
	"os"
	"path/filepath"
)

// MaxStoreConnections is the hard cap on outbound store connections. A
// historical incident leaked hundreds of file descriptors, so the cap is not
// configurable above this value.
const MaxStoreConnections = 10

var (
	DefaultAppName        = "carniceria"
	DefaultAppCMDShortCut = "carni"
	DefaultConfigPath     = filepath.Join(os.Getenv("HOME"), ".config", DefaultAppName)
	DefaultFallbackDBPath = filepath.Join(DefaultConfigPath, "fallback.db")
	DefaultConfigFile     = filepath.Join(DefaultConfigPath, "config.json")
)

// Table names of the accounting core.
const (
	TableDailyIncome   = "daily_income"
	TableDailyExpenses = "daily_expenses"
	TableCategories    = "accounting_categories"
)

// AccountingTables lists every table the store probe must verify.
var AccountingTables = []string{TableDailyIncome, TableDailyExpenses, TableCategories}
