package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation      ErrorKind = "ValidationError"
	KindNotFound        ErrorKind = "NotFoundError"
	KindAuthorization   ErrorKind = "AuthorizationError"
	KindExternalService ErrorKind = "ExternalServiceError"
	KindRejectedContent ErrorKind = "RejectedContent"
)

// Error is the discriminated outcome returned by every service operation.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Err: errors.New(msg)}
}

func NewValidationError(format string, args ...any) error {
	return &Error{Kind: KindValidation, Err: fmt.Errorf(format, args...)}
}

func NewNotFoundError(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Err: fmt.Errorf(format, args...)}
}

func NewAuthorizationError(format string, args ...any) error {
	return &Error{Kind: KindAuthorization, Err: fmt.Errorf(format, args...)}
}

// NewExternalServiceError wraps the provider failure; the cause stays
// reachable through errors.Unwrap for logging.
func NewExternalServiceError(service string, cause error) error {
	return &Error{Kind: KindExternalService, Err: fmt.Errorf("%s: %w", service, cause)}
}

// KindOf reports the kind of err, or "" for unclassified errors.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
