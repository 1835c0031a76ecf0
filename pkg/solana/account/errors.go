package account

import (
	"github.com/pkg/errors"
)

var (
	// ErrInvalidOwner indicates the account is not owned by the program that
	// defines the requested kind. The account data is not inspected.
	ErrInvalidOwner = errors.New("account: invalid owner")

	// ErrInvalidAccountData indicates the account's discriminator is not one
	// of the discriminators recognized for the requested kind.
	ErrInvalidAccountData = errors.New("account: invalid account data")

	// ErrMalformedAccountData indicates the account's discriminator is
	// recognized, but the data could not be decoded with the matching layout.
	ErrMalformedAccountData = errors.New("account: malformed account data")

	// ErrAccountNotFound indicates there is no account at the requested address.
	ErrAccountNotFound = errors.New("account: not found")

	// ErrUnknownKind indicates no program has registered the requested kind.
	ErrUnknownKind = errors.New("account: unknown kind")
)

// malformedError matches both ErrMalformedAccountData and the underlying
// decode error with errors.Is.
type malformedError struct {
	cause error
}

func (e *malformedError) Error() string {
	return ErrMalformedAccountData.Error() + ": " + e.cause.Error()
}

func (e *malformedError) Is(target error) bool {
	return target == ErrMalformedAccountData
}

func (e *malformedError) Unwrap() error {
	return e.cause
}

func (e *malformedError) Cause() error {
	return e.cause
}
