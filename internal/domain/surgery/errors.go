package surgery

import "errors"

var (
	ErrSurgeryNotFound = errors.New("surgery not found")
	// ErrInvalidID means the identifier is not a well-formed store identifier.
	ErrInvalidID = errors.New("invalid surgery identifier")
	// ErrStoreUnavailable wraps driver failures, timeouts and an open breaker.
	ErrStoreUnavailable  = errors.New("surgery store unavailable")
	ErrBirthdateInFuture = errors.New("patient birthdate cannot be in the future")
)
