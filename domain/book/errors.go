package book

import "errors"

// The four recoverable failure kinds of the public API. Callers match them
// with errors.Is; everything else the package can report is an invariant
// violation and panics instead of returning.
var (
	// ErrDuplicateID rejects a new order whose id is already resting.
	ErrDuplicateID = errors.New("duplicate order id")

	// ErrNotFound reports a cancel, modify, or registry lookup for something
	// that is not there. Losing a cancel race produces this; it is a normal
	// client outcome, not corruption.
	ErrNotFound = errors.New("not found")

	// ErrInvalidQuantity rejects a non-positive quantity, or a modify that
	// does not strictly reduce.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInvalidPrice rejects a price that is not a positive multiple of the
	// instrument tick size.
	ErrInvalidPrice = errors.New("invalid price")
)

// IsRecoverable reports whether err is one of the public error kinds, as
// opposed to an infrastructure failure.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrDuplicateID) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidPrice)
}
