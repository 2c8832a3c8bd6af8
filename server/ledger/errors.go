package ledger

import "errors"

var (
	// ErrNotFound means a referenced document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument means the input was malformed or out of range, or a
	// stored document failed shape validation on read.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrFull means an event has reached its participant capacity.
	ErrFull = errors.New("event is full")
	// ErrLimitExceeded means a club already has the maximum number of admins.
	ErrLimitExceeded = errors.New("limit exceeded")
	// ErrUnauthorized means the actor lacks the role required for the operation.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConflict means a transaction kept colliding with concurrent writers
	// and gave up. The operation can be retried by the caller.
	ErrConflict = errors.New("conflict")
)

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
