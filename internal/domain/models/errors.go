package models

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindNotSeeded    ErrorKind = "NOT_SEEDED"
	KindNotReady     ErrorKind = "NOT_READY"
	KindInvalidInput ErrorKind = "INVALID_INPUT"
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindInternal     ErrorKind = "INTERNAL"
)

const (
	CodeNotSeeded            = "GHOSTREGIME_NOT_SEEDED"
	CodeNotReady             = "NOT_READY"
	CodeMissingDateParameter = "MISSING_DATE_PARAMETER"
	CodeInvalidDateFormat    = "INVALID_DATE_FORMAT"
	CodeInvalidDateRange     = "INVALID_DATE_RANGE"
	CodeDateNotFound         = "DATE_NOT_FOUND"
	CodeInternal             = "INTERNAL_ERROR"
)

// EngineError is the domain error taxonomy. Details is rendered to callers as-is.
type EngineError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Field   string
	Details map[string]interface{}
	Err     error
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// WithDetail sets a single detail entry.
func (e *EngineError) WithDetail(key string, value interface{}) *EngineError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func ErrNotSeeded() *EngineError {
	return &EngineError{Kind: KindNotSeeded, Code: CodeNotSeeded, Message: "ghostregime history has not been seeded"}
}

// ErrNotReady carries build diagnostics when available.
func ErrNotReady(message string, diag *Diagnostics) *EngineError {
	e := &EngineError{Kind: KindNotReady, Code: CodeNotReady, Message: message}
	if diag != nil {
		e.WithDetail("diagnostics", diag)
	}
	return e
}

func ErrInvalidInput(code, field, message string) *EngineError {
	return &EngineError{Kind: KindInvalidInput, Code: code, Field: field, Message: message}
}

func ErrDateNotFound(date string, samples []string) *EngineError {
	if samples == nil {
		samples = []string{}
	}
	e := &EngineError{Kind: KindNotFound, Code: CodeDateNotFound, Field: "date", Message: fmt.Sprintf("no snapshot for %s", date)}
	return e.WithDetail("sample_dates", samples)
}

func ErrInternal(err error) *EngineError {
	return &EngineError{Kind: KindInternal, Code: CodeInternal, Message: "internal error", Err: err}
}

// AsEngineError unwraps err into an *EngineError.
func AsEngineError(err error) (*EngineError, bool) {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}

// IsKind reports whether err is an EngineError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	ee, ok := AsEngineError(err)
	return ok && ee.Kind == kind
}
