package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind defines the kind of ledger entry
type EntryKind string

const (
	// EntryKindIncome represents an income entry
	EntryKindIncome EntryKind = "income"

	// EntryKindExpense represents an expense entry
	EntryKindExpense EntryKind = "expense"
)

// PaymentMethod defines how an entry was paid
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "Efectivo"
	PaymentMethodCard     PaymentMethod = "Tarjeta"
	PaymentMethodTransfer PaymentMethod = "Transferencia"
	PaymentMethodOther    PaymentMethod = "Otro"
)

// DateLayout is the ISO calendar-date format used for every stored date.
// Entries carry no time-of-day semantics.
const DateLayout = "2006-01-02"

// ParseDate validates and parses a stored calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrDateMalformed
	}
	return t, nil
}

// ValidPaymentMethod reports whether m is in the allowed set.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodOther:
		return true
	default:
		return false
	}
}

// Entry represents one monetary movement in the daily ledger.
type Entry struct {
	ID            string          `json:"id"`
	Kind          EntryKind       `json:"kind"`
	Date          string          `json:"date"` // YYYY-MM-DD
	Amount        decimal.Decimal `json:"amount"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Supplier      string          `json:"supplier,omitempty"` // expense only
	CreatedAt     time.Time       `json:"createdAt"`
	ActorID       string          `json:"actorId,omitempty"`
}

// Validate checks the entry against the ledger rules, in the documented
// fail-fast order: amount positive, amount representable, date in range,
// category present. Category resolution against the registry and the payment
// method check happen at the service layer, after these checks, so callers
// always see the earliest failing rule. The today argument is the current
// calendar day in the shop timezone.
func (e *Entry) Validate(today time.Time) error {
	if e.Kind != EntryKindIncome && e.Kind != EntryKindExpense {
		return ErrInvalidEntryKind
	}

	if err := ValidateAmount(e.Amount); err != nil {
		return err
	}

	date, err := ParseDate(e.Date)
	if err != nil {
		return err
	}

	// One day of tolerance for timezone skew between the shop and the store.
	limit := today.AddDate(0, 0, 1)
	if date.After(limit) {
		return ErrDateOutOfRange
	}

	if e.Category == "" {
		return ErrMissingRequiredField
	}

	return nil
}

// EntryPatch carries the mutable fields of an update. Nil fields are left
// untouched; kind and id are immutable.
type EntryPatch struct {
	Date          *string
	Amount        any // decimal, float or string; canonicalized on apply
	Category      *string
	Description   *string
	PaymentMethod *PaymentMethod
	Supplier      *string
}

// IsEmpty reports whether the patch changes nothing.
func (p EntryPatch) IsEmpty() bool {
	return p.Date == nil && p.Amount == nil && p.Category == nil &&
		p.Description == nil && p.PaymentMethod == nil && p.Supplier == nil
}
