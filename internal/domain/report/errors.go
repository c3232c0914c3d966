package report

import (
	"errors"
	"fmt"
)

// Error codes used by the report domain
const (
	ErrCodeInvalidDate   = "INVALID_DATE"
	ErrCodeInvalidQuery  = "INVALID_QUERY"
	ErrCodeStoreNotFound = "STORE_NOT_FOUND"
	ErrCodeLookupFailed  = "LOOKUP_FAILED"
	ErrCodeInvalidRow    = "INVALID_ROW"
)

// DomainError represents a report-domain error with a stable code
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

var (
	// ErrInvalidDate is returned when the report date is not a YYYY-MM-DD calendar date
	ErrInvalidDate = NewDomainError(ErrCodeInvalidDate, "Input date is not valid")

	// ErrInvalidQuery is returned when a filter names an unknown column or entity type.
	// It signals a defect at the call site and must not be retried.
	ErrInvalidQuery = NewDomainError(ErrCodeInvalidQuery, "Input fields are not valid")

	// ErrStoreNotFound is returned when a known entity type has no backing store
	ErrStoreNotFound = NewDomainError(ErrCodeStoreNotFound, "backing store not found")

	// ErrMissingColumn is returned when a row lacks a column the caller asked for
	ErrMissingColumn = errors.New("column not present in row")
)

// Lookup kinds reported by LookupError
const (
	LookupVendorRate      = "vendor commission rate"
	LookupPromotionBucket = "promotion bucket"
)

// LookupError reports a join lookup that found nothing to use.
// The whole report build fails; no partial report is returned.
type LookupError struct {
	Kind string
	Key  string
	Date string
}

// Error implements the error interface
func (e *LookupError) Error() string {
	if e.Date != "" {
		return fmt.Sprintf("no %s found for %q on %s", e.Kind, e.Key, e.Date)
	}
	return fmt.Sprintf("no %s found for %q", e.Kind, e.Key)
}

// RowError reports a store row that could not be turned into a record
type RowError struct {
	Store  string
	Row    int
	Column string
	Value  string
	Err    error
}

// Error implements the error interface. A zero Row is left out of the message.
func (e *RowError) Error() string {
	where := e.Store
	if e.Row > 0 {
		where = fmt.Sprintf("%s row %d", e.Store, e.Row)
	}
	if e.Value != "" {
		return fmt.Sprintf("%s, column '%s' (%q): %v", where, e.Column, e.Value, e.Err)
	}
	return fmt.Sprintf("%s, column '%s': %v", where, e.Column, e.Err)
}

// Unwrap returns the underlying cause
func (e *RowError) Unwrap() error {
	return e.Err
}
