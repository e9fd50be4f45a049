package models

import (
	"errors"
)

// Domain error types
var (
	// Entry errors
	// ErrAmountNonPositive is returned when an entry amount is zero or negative
	ErrAmountNonPositive = errors.New("amount must be greater than 0")

	// ErrAmountOutOfRange is returned when an entry amount exceeds the representable precision
	ErrAmountOutOfRange = errors.New("amount exceeds the maximum representable value")

	// ErrAmountMalformed is returned when an amount cannot be parsed as a decimal
	ErrAmountMalformed = errors.New("amount is not a valid decimal number")

	// ErrDateOutOfRange is returned when an entry date is further than one day in the future
	ErrDateOutOfRange = errors.New("date cannot be more than one day in the future")

	// ErrDateMalformed is returned when a date is not a valid ISO calendar date
	ErrDateMalformed = errors.New("date must be a valid YYYY-MM-DD calendar date")

	// ErrUnknownCategory is returned when an entry references a category that is
	// missing or inactive
	ErrUnknownCategory = errors.New("category does not exist or is inactive")

	// ErrCategoryKindMismatch is returned when an entry references a category of
	// the opposite kind
	ErrCategoryKindMismatch = errors.New("category kind does not match entry kind")

	// ErrInvalidPaymentMethod is returned when a payment method is outside the allowed set
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrMissingRequiredField is returned when a required entry field is empty
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrInvalidEntryKind is returned when an entry kind is neither income nor expense
	ErrInvalidEntryKind = errors.New("entry kind must be income or expense")

	// ErrEntryNotFound is returned when an entry id does not exist
	ErrEntryNotFound = errors.New("entry not found")

	// Category errors
	// ErrMissingCategoryName is returned when a category has no name
	ErrMissingCategoryName = errors.New("category must have a name")

	// ErrInvalidCategoryKind is returned when a category kind is invalid
	ErrInvalidCategoryKind = errors.New("invalid category kind")

	// ErrDuplicateCategory is returned when an active category with the same
	// name and kind already exists
	ErrDuplicateCategory = errors.New("an active category with this name and kind already exists")

	// ErrCategoryNotFound is returned when a category id does not exist
	ErrCategoryNotFound = errors.New("category not found")
)
