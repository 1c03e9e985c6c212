package core

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// ErrorKind classifies failures so that callers can decide whether to retry, stop or ask for a correction.
type ErrorKind string

const (
	KindNotFound       ErrorKind = "not_found"
	KindForbidden      ErrorKind = "forbidden"
	KindInvalidInput   ErrorKind = "invalid_input"
	KindDeadlinePassed ErrorKind = "deadline_passed"
	KindConflict       ErrorKind = "conflict"
	KindInternal       ErrorKind = "internal"
)

// Error is a domain failure detected before (or instead of) any mutation.
type Error struct {
	Kind    ErrorKind
	Code    string // e.g. "not_enrolled", "deadline_passed"
	Field   string // offending input field, if any
	Message string
	Detail  string
}

func NewError(kind ErrorKind, code, field, msg string) *Error {
	return &Error{Kind: kind, Code: code, Field: field, Message: msg}
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Message + ": " + e.Detail
	}
	return e.Message
}

// Is reports whether target is the same domain error, ignoring Detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code && e.Field == t.Field
}

// WithDetail returns a copy of e carrying detail. The copy still matches e with errors.Is.
func (e *Error) WithDetail(detail string) *Error {
	cp := *e
	cp.Detail = detail
	return &cp
}

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// KindOf returns the ErrorKind of err's cause. Unknown errors are KindInternal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	switch errors.Cause(err).(type) {
	case *ValidationError, validator.ValidationErrors:
		return KindInvalidInput
	}
	return KindInternal
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
