package documents

import "errors"

var (
	// ErrInvalidInput rejects uploads violating size or type policy.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound means no record exists, or bytes are missing on all backends.
	ErrNotFound = errors.New("document not found")
	// ErrForbidden means the authorization policy denied access.
	ErrForbidden = errors.New("access denied")
	// ErrStorageUnavailable means the mandatory backend for a durable category
	// was unreachable; the upload fails outright and no record is created.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrBackendUnavailable is a transient backend failure after all fallback
	// options were exhausted; callers may retry.
	ErrBackendUnavailable = errors.New("storage backend unavailable")
)
