package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain failures so callers can switch over every case.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindValidation covers malformed or out-of-range input, duplicate usernames
	// and the protected admin account.
	KindValidation
	// KindAuthentication covers unknown usernames and wrong passwords.
	KindAuthentication
	// KindNotFound covers unresolved users, portfolios and owner/portfolio pairs.
	// Ownership mismatches are reported with this kind too.
	KindNotFound
	KindInsufficientFunds
	KindInsufficientHoldings
	// KindPersistence marks a snapshot load/save failure. It is never fatal.
	KindPersistence
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindNotFound:
		return "not_found"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindInsufficientHoldings:
		return "insufficient_holdings"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Error is a domain failure tagged with its kind.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrValidation           = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrAuthentication       = &Error{Kind: KindAuthentication, Message: "authentication failed"}
	ErrNotFound             = &Error{Kind: KindNotFound, Message: "not found"}
	ErrInsufficientFunds    = &Error{Kind: KindInsufficientFunds, Message: "insufficient balance"}
	ErrInsufficientHoldings = &Error{Kind: KindInsufficientHoldings, Message: "not enough quantity to sell"}
	ErrPersistence          = &Error{Kind: KindPersistence, Message: "persistence failed"}
)

// NewValidationError creates a validation error
func NewValidationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewAuthenticationError creates an authentication error
func NewAuthenticationError(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// NewInsufficientFundsError creates an insufficient funds error
func NewInsufficientFundsError(format string, args ...any) *Error {
	return &Error{Kind: KindInsufficientFunds, Message: fmt.Sprintf(format, args...)}
}

// NewInsufficientHoldingsError creates an insufficient holdings error
func NewInsufficientHoldingsError(format string, args ...any) *Error {
	return &Error{Kind: KindInsufficientHoldings, Message: fmt.Sprintf(format, args...)}
}

// NewPersistenceError wraps a snapshot I/O failure.
func NewPersistenceError(message string, cause error) *Error {
	return &Error{Kind: KindPersistence, Message: message, Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsDomainError reports whether err carries one of the domain kinds that the
// session shows to the user and then continues from.
func IsDomainError(err error) bool {
	return KindOf(err) != KindUnknown
}
