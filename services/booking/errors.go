package booking

import (
	"errors"
	"fmt"

	"gigbook/database/repository"
)

type ErrorKind string

const (
	KindInvalidRequest         ErrorKind = "INVALID_REQUEST"
	KindNotFound               ErrorKind = "NOT_FOUND"
	KindProviderUnavailable    ErrorKind = "PROVIDER_UNAVAILABLE"
	KindSlotConflict           ErrorKind = "SLOT_CONFLICT"
	KindInvalidRange           ErrorKind = "INVALID_RANGE"
	KindInvalidRate            ErrorKind = "INVALID_RATE"
	KindInvalidState           ErrorKind = "INVALID_STATE"
	KindForbidden              ErrorKind = "FORBIDDEN"
	KindGatewayError           ErrorKind = "GATEWAY_ERROR"
	KindReconciliationRequired ErrorKind = "RECONCILIATION_REQUIRED"
	KindBusy                   ErrorKind = "BUSY"
)

// BookingError is the error type every escrow operation returns for
// business-rule failures. Anything else is an internal error.
type BookingError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *BookingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, format string, args ...any) *BookingError {
	return &BookingError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind ErrorKind, err error, format string, args ...any) *BookingError {
	return &BookingError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first BookingError in err's chain, or "".
func KindOf(err error) ErrorKind {
	var be *BookingError
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// fromRepo turns repository sentinels into booking kinds and wraps the rest.
func fromRepo(err error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return wrapError(KindNotFound, err, "%s not found", what)
	case errors.Is(err, repository.ErrStaleState):
		return wrapError(KindInvalidState, err, "%s was modified concurrently", what)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func invalidState(what string, current, required any) *BookingError {
	return newError(KindInvalidState, "%s is %v, expected %v", what, current, required)
}
