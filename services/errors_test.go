package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/marcosvidal/carniceria-go/domain/models"
	"github.com/marcosvidal/carniceria-go/interfaces"
)

func TestTranslate_ValidationSubkinds(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		subkind string
	}{
		{"Amount Non Positive", models.ErrAmountNonPositive, SubkindAmountNonPositive},
		{"Amount Out Of Range", models.ErrAmountOutOfRange, SubkindAmountOutOfRange},
		{"Amount Malformed", models.ErrAmountMalformed, SubkindAmountOutOfRange},
		{"Date Out Of Range", models.ErrDateOutOfRange, SubkindDateOutOfRange},
		{"Date Malformed", models.ErrDateMalformed, SubkindDateOutOfRange},
		{"Unknown Category", models.ErrUnknownCategory, SubkindUnknownCategory},
		{"Category Kind Mismatch", models.ErrCategoryKindMismatch, SubkindCategoryKindMismatch},
		{"Invalid Payment Method", models.ErrInvalidPaymentMethod, SubkindInvalidPaymentMethod},
		{"Missing Required Field", models.ErrMissingRequiredField, SubkindMissingRequiredField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			translated := translate(tt.err)

			var fe *Error
			if !errors.As(translated, &fe) {
				t.Fatalf("translate() = %T, want *Error", translated)
			}
			if fe.Kind != ErrKindValidation {
				t.Errorf("Kind = %s, want %s", fe.Kind, ErrKindValidation)
			}
			if fe.Subkind != tt.subkind {
				t.Errorf("Subkind = %s, want %s", fe.Subkind, tt.subkind)
			}
			if !errors.Is(translated, tt.err) {
				t.Error("Expected translated error to wrap the sentinel")
			}
		})
	}
}

func TestTranslate_WrappedSentinel(t *testing.T) {
	wrapped := fmt.Errorf("while adding entry: %w", models.ErrDateOutOfRange)
	translated := translate(wrapped)

	if KindOf(translated) != ErrKindValidation {
		t.Errorf("KindOf() = %s, want %s", KindOf(translated), ErrKindValidation)
	}
}

func TestTranslate_Kinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind ErrorKind
	}{
		{"Entry Not Found", models.ErrEntryNotFound, ErrKindNotFound},
		{"Category Not Found", models.ErrCategoryNotFound, ErrKindNotFound},
		{"Duplicate Category", models.ErrDuplicateCategory, ErrKindConstraintViolation},
		{"Deadline Exceeded", context.DeadlineExceeded, ErrKindConnectivity},
		{
			"Store Connectivity",
			interfaces.NewStoreError(interfaces.StoreErrConnectivity, "select", "daily_income", errors.New("dial tcp: timeout")),
			ErrKindConnectivity,
		},
		{
			"Store Schema Mismatch",
			interfaces.NewStoreError(interfaces.StoreErrSchemaMismatch, "probe", "daily_income", errors.New("missing column")),
			ErrKindSchemaMismatch,
		},
		{
			"Store Constraint Violation",
			interfaces.NewStoreError(interfaces.StoreErrConstraintViolation, "insert", "accounting_categories", errors.New("duplicate key")),
			ErrKindConstraintViolation,
		},
		{"Unanticipated Error", errors.New("something odd"), ErrKindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(translate(tt.err)); got != tt.kind {
				t.Errorf("KindOf() = %s, want %s", got, tt.kind)
			}
		})
	}
}

func TestTranslate_InternalHidesDetail(t *testing.T) {
	// Unanticipated failures must not leak internals into the public message.
	translated := translate(errors.New("pq: password authentication failed for user admin"))

	var fe *Error
	if !errors.As(translated, &fe) {
		t.Fatalf("translate() = %T, want *Error", translated)
	}
	if fe.Message != "internal error" {
		t.Errorf("Message = %q, want minimal public message", fe.Message)
	}
}

func TestTranslate_PassThrough(t *testing.T) {
	original := &Error{Kind: ErrKindValidation, Subkind: SubkindUnknownCategory, Message: "unknown category"}

	if translated := translate(original); translated != original {
		t.Errorf("translate() re-wrapped an already translated error: %v", translated)
	}
	if translate(nil) != nil {
		t.Error("translate(nil) should be nil")
	}
}
