package source

import (
	"errors"
	"fmt"
	"strings"
)

// Common source errors
var (
	// ErrEmptyFile is returned when the input file has no content
	ErrEmptyFile = errors.New("input file is empty")

	// ErrInvalidEncoding is returned when the file encoding cannot be detected
	ErrInvalidEncoding = errors.New("invalid file encoding")

	// ErrMissingHeader is returned when the CSV file has no header row
	ErrMissingHeader = errors.New("CSV file missing header row")

	// ErrMissingColumns is returned when required columns are absent from the header
	ErrMissingColumns = errors.New("required columns missing")
)

// RecordError represents a problem with a specific source record. Row is the
// 1-based record index within the file.
type RecordError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e RecordError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("record %d, field '%s': %s", e.Row, e.Field, e.Message)
	}
	return fmt.Sprintf("record %d: %s", e.Row, e.Message)
}

// NewRecordError creates a new RecordError
func NewRecordError(row int, field, message string) RecordError {
	return RecordError{
		Row:     row,
		Field:   field,
		Message: message,
	}
}

// ErrorCollection accumulates record-level source errors up to a limit.
// Every error counts toward TotalCount; only the first maxErrors are retained.
type ErrorCollection struct {
	errors     []RecordError
	maxErrors  int
	totalCount int
}

// NewErrorCollection creates a new ErrorCollection with a maximum error limit
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollection{
		errors:    make([]RecordError, 0, maxErrors),
		maxErrors: maxErrors,
	}
}

// Add adds an error to the collection
func (ec *ErrorCollection) Add(err RecordError) {
	ec.totalCount++
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, err)
	}
}

// AddMissingElements records a record skipped because required elements are absent
func (ec *ErrorCollection) AddMissingElements(row int, fields ...string) {
	joined := strings.Join(fields, ", ")
	ec.Add(NewRecordError(row, joined, "required element(s) missing"))
}

// Errors returns the retained errors
func (ec *ErrorCollection) Errors() []RecordError {
	return ec.errors
}

// Count returns the number of retained errors (up to maxErrors)
func (ec *ErrorCollection) Count() int {
	return len(ec.errors)
}

// TotalCount returns the total number of errors including those not retained
func (ec *ErrorCollection) TotalCount() int {
	return ec.totalCount
}

// HasErrors returns true if there are any errors
func (ec *ErrorCollection) HasErrors() bool {
	return ec.totalCount > 0
}

// IsTruncated returns true if some errors were dropped due to the limit
func (ec *ErrorCollection) IsTruncated() bool {
	return ec.totalCount > ec.maxErrors
}

// String returns a string representation of all retained errors
func (ec *ErrorCollection) String() string {
	if !ec.HasErrors() {
		return "no errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d error(s) found", ec.totalCount))
	if ec.IsTruncated() {
		sb.WriteString(fmt.Sprintf(" (showing first %d)", ec.maxErrors))
	}
	sb.WriteString(":\n")

	for _, err := range ec.errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}

	return sb.String()
}
