package accessledger

import (
	"errors"
)

// Sentinel errors for every caller-visible failure. All errors are
// synchronous and abort the whole operation with no partial state change.
var (
	// General errors
	ErrInvalidInput    = errors.New("accessledger: invalid input")
	ErrNoCaller        = errors.New("accessledger: no caller in context")
	ErrInvalidDuration = errors.New("accessledger: duration must be a non-negative whole number of seconds")
	ErrReentrantCall   = errors.New("accessledger: re-entrant or overlapping mutating call")

	// Tier errors
	ErrTierNotFound = errors.New("accessledger: tier not found")
	ErrTierInactive = errors.New("accessledger: tier is archived")

	// Key errors
	ErrKeyAlreadyExists = errors.New("accessledger: key already exists")
	ErrKeyNotFound      = errors.New("accessledger: key not found")
	ErrKeyNotActive     = errors.New("accessledger: key is not active")
	ErrKeyIndexNotFound = errors.New("accessledger: key index out of range")

	// Authorization errors
	ErrNotOwner    = errors.New("accessledger: caller is not the key owner")
	ErrNotOperator = errors.New("accessledger: caller is not the operator")

	// Payment and accounting errors
	ErrInsufficientAllowance = errors.New("accessledger: insufficient token allowance")
	ErrArithmeticOverflow    = errors.New("accessledger: arithmetic overflow")
	ErrNothingToWithdraw     = errors.New("accessledger: nothing to withdraw")

	// Batch errors
	ErrEmptyInput    = errors.New("accessledger: empty batch input")
	ErrTooManyInputs = errors.New("accessledger: batch input exceeds limit")

	// Store errors
	ErrStoreClosed = errors.New("accessledger: store is closed")
)

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTierNotFound) ||
		errors.Is(err, ErrKeyNotFound) ||
		errors.Is(err, ErrKeyIndexNotFound)
}

// IsAuthError returns true if the error is an authorization failure.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNotOwner) ||
		errors.Is(err, ErrNotOperator) ||
		errors.Is(err, ErrNoCaller)
}

// IsOverflow returns true if the error is an arithmetic-overflow rejection.
func IsOverflow(err error) bool {
	return errors.Is(err, ErrArithmeticOverflow)
}
