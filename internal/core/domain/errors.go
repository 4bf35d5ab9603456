package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAppointmentType  = errors.New("invalid appointment type")
	ErrMissingRequiredField    = errors.New("missing required field")
	ErrMalformedDate           = errors.New("malformed date")
	ErrMalformedTime           = errors.New("malformed time")
	ErrMalformedEmail          = errors.New("malformed email")
	ErrSlotUnavailable         = errors.New("slot unavailable")
	ErrExternalFetchFailure    = errors.New("external fetch failure")
	ErrBookingNotFound         = errors.New("booking not found")
	ErrBookingAlreadyCancelled = errors.New("booking already cancelled")
	ErrCancelFailed            = errors.New("cancel failed")
	ErrInvalidInterval         = errors.New("invalid slot interval")
	ErrInvalidDateRange        = errors.New("invalid date range")
	ErrInvalidCatalog          = errors.New("invalid appointment type catalog")
	ErrInvalidWorkingHours     = errors.New("invalid working hours")
)

// Error is a classified failure with a message fit for the end user.
// errors.Is matches it against its Kind.
type Error struct {
	Kind    error
	Message string
}

func NewError(kind error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// ExternalError is returned by calendar adapters on transport, auth or decoding failures.
type ExternalError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *ExternalError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("calendar %s failed with status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("calendar %s failed: %v", e.Op, e.Err)
}

func (e *ExternalError) Unwrap() []error {
	return []error{ErrExternalFetchFailure, e.Err}
}

// Message returns the user-facing text of err: the message of a *Error when
// there is one in the chain, the plain error text otherwise.
func Message(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}
