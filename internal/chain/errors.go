package chain

import "errors"

var (
	// ErrBetNotFound means the requested bet id has never been issued. The
	// contract returns a zero record for those, which is mapped to this
	// error at the decode boundary instead of leaking zero values.
	ErrBetNotFound = errors.New("bet not found")

	// ErrHeaderNotFound means the header cache holds nothing at the
	// requested height. Distinct from a network failure.
	ErrHeaderNotFound = errors.New("header not found")

	// ErrInvalidAddress means the supplied account identifier is not a
	// well-formed address.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrReadOnly means the gateway has no operator key and cannot sign
	// transactions.
	ErrReadOnly = errors.New("gateway is read-only: no operator key configured")
)
