package search

import (
	"errors"
	"fmt"
)

// Error is a failure of search evaluation. Parse problems are never
// errors; they become warnings on the search.
type Error struct {
	Code    ErrorCode
	Message string
	// Query is the search text, when known.
	Query string
	Err   error
}

// ErrorCode categorizes search errors.
type ErrorCode string

const (
	// ErrCodeCompiled marks a parameter change after compilation.
	ErrCodeCompiled ErrorCode = "SEARCH_COMPILED"

	// ErrCodeRowSource marks a failure of the row source.
	ErrCodeRowSource ErrorCode = "ROW_SOURCE"

	// ErrCodeNoRowSource marks evaluation without a row source.
	ErrCodeNoRowSource ErrorCode = "NO_ROW_SOURCE"
)

// ErrSearchCompiled is returned when a search parameter is changed after
// the search has compiled.
var ErrSearchCompiled = &Error{Code: ErrCodeCompiled, Message: "search already compiled"}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Query != "" {
		msg += fmt.Sprintf(" (q=%q)", e.Query)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors by code, so that errors.Is(err, ErrSearchCompiled)
// holds for any compiled-search error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// IsRowSourceError reports whether err came from the row source.
// Uses errors.As to handle wrapped errors.
func IsRowSourceError(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == ErrCodeRowSource
	}
	return false
}

func rowSourceError(q string, err error) error {
	return &Error{Code: ErrCodeRowSource, Message: "query papers", Query: q, Err: err}
}
