package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmount is the largest value an amount column can hold: DECIMAL(10,2).
// The historical schema used DECIMAL(5,2) and overflowed above 999.99.
var MaxAmount = decimal.RequireFromString("99999999.99")

// ParseAmount canonicalizes a caller-supplied amount to two fractional
// digits using banker's rounding. It accepts decimals, floats, ints and
// strings; string input may use a comma as the decimal separator, with an
// optional dot as the thousands separator ("1.234,56").
func ParseAmount(value any) (decimal.Decimal, error) {
	var d decimal.Decimal

	switch v := value.(type) {
	case decimal.Decimal:
		d = v
	case float64:
		d = decimal.NewFromFloat(v)
	case float32:
		d = decimal.NewFromFloat32(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return decimal.Zero, ErrMissingRequiredField
		}
		if strings.Contains(s, ",") {
			// Comma decimal separator; any dots are thousands separators
			// and must come before it. A dot after the comma means the
			// string follows the opposite convention ("1,234.56"), which
			// would silently parse to the wrong value.
			if strings.LastIndex(s, ".") > strings.LastIndex(s, ",") {
				return decimal.Zero, ErrAmountMalformed
			}
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		}
		parsed, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, ErrAmountMalformed
		}
		d = parsed
	default:
		return decimal.Zero, ErrAmountMalformed
	}

	return d.RoundBank(2), nil
}

// ValidateAmount checks a canonicalized amount against the ledger rules.
func ValidateAmount(d decimal.Decimal) error {
	if d.Sign() <= 0 {
		return ErrAmountNonPositive
	}
	if d.GreaterThan(MaxAmount) {
		return ErrAmountOutOfRange
	}
	return nil
}

// FormatAmount renders an amount as the canonical two-digit string stored in
// the backing tables.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
