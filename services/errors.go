package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/marcosvidal/carniceria-go/domain/models"
	"github.com/marcosvidal/carniceria-go/interfaces"
)

// ErrorKind is the stable error taxonomy the façade exposes. Consumers
// translate kinds into localized messages; they never see store internals.
type ErrorKind string

const (
	ErrKindValidation          ErrorKind = "validation"
	ErrKindNotFound            ErrorKind = "not_found"
	ErrKindConstraintViolation ErrorKind = "constraint_violation"
	ErrKindConnectivity        ErrorKind = "connectivity"
	ErrKindSchemaMismatch      ErrorKind = "schema_mismatch"
	ErrKindInternal            ErrorKind = "internal"
)

// Validation subkinds.
const (
	SubkindAmountNonPositive    = "amount_non_positive"
	SubkindAmountOutOfRange     = "amount_out_of_range"
	SubkindDateOutOfRange       = "date_out_of_range"
	SubkindUnknownCategory      = "unknown_category"
	SubkindCategoryKindMismatch = "category_kind_mismatch"
	SubkindInvalidPaymentMethod = "invalid_payment_method"
	SubkindMissingRequiredField = "missing_required_field"
)

// Error is the structured error value every façade operation fails with.
type Error struct {
	Kind    ErrorKind
	Subkind string // set for validation errors
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Subkind != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Subkind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the façade error kind from an error chain.
func KindOf(err error) ErrorKind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ErrKindInternal
}

// validationSubkinds maps domain sentinels onto the published subkinds.
// The published vocabulary is closed and has no slot for malformed input:
// an unparseable amount reports as amount_out_of_range and a malformed
// date as date_out_of_range, the nearest subkind the caller can act on.
var validationSubkinds = []struct {
	sentinel error
	subkind  string
}{
	{models.ErrAmountNonPositive, SubkindAmountNonPositive},
	{models.ErrAmountOutOfRange, SubkindAmountOutOfRange},
	{models.ErrAmountMalformed, SubkindAmountOutOfRange},
	{models.ErrDateOutOfRange, SubkindDateOutOfRange},
	{models.ErrDateMalformed, SubkindDateOutOfRange},
	{models.ErrUnknownCategory, SubkindUnknownCategory},
	{models.ErrCategoryKindMismatch, SubkindCategoryKindMismatch},
	{models.ErrInvalidPaymentMethod, SubkindInvalidPaymentMethod},
	{models.ErrMissingRequiredField, SubkindMissingRequiredField},
	{models.ErrMissingCategoryName, SubkindMissingRequiredField},
	{models.ErrInvalidCategoryKind, SubkindMissingRequiredField},
	{models.ErrInvalidEntryKind, SubkindMissingRequiredField},
}

// translate maps internal errors onto the façade taxonomy. Validation,
// not_found and constraint_violation pass through unchanged in meaning;
// anything unanticipated becomes internal with a minimal public message.
func translate(err error) error {
	if err == nil {
		return nil
	}

	var fe *Error
	if errors.As(err, &fe) {
		return err
	}

	for _, m := range validationSubkinds {
		if errors.Is(err, m.sentinel) {
			return &Error{Kind: ErrKindValidation, Subkind: m.subkind, Message: m.sentinel.Error(), Err: err}
		}
	}

	switch {
	case errors.Is(err, models.ErrEntryNotFound), errors.Is(err, models.ErrCategoryNotFound):
		return &Error{Kind: ErrKindNotFound, Message: err.Error(), Err: err}
	case errors.Is(err, models.ErrDuplicateCategory):
		return &Error{Kind: ErrKindConstraintViolation, Message: models.ErrDuplicateCategory.Error(), Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: ErrKindConnectivity, Message: "store call exceeded its deadline", Err: err}
	}

	var se *interfaces.StoreError
	if errors.As(err, &se) {
		switch se.Kind {
		case interfaces.StoreErrConnectivity:
			return &Error{Kind: ErrKindConnectivity, Message: "store unreachable", Err: err}
		case interfaces.StoreErrSchemaMismatch:
			return &Error{Kind: ErrKindSchemaMismatch, Message: "backing table schema mismatch", Err: err}
		case interfaces.StoreErrConstraintViolation:
			return &Error{Kind: ErrKindConstraintViolation, Message: "constraint violation", Err: err}
		case interfaces.StoreErrNotFound:
			return &Error{Kind: ErrKindNotFound, Message: "not found", Err: err}
		}
	}

	return &Error{Kind: ErrKindInternal, Message: "internal error", Err: err}
}
