package database

import "errors"

var (
	// ErrSiteNotFound is the negative result of an update keyed on an unknown id.
	ErrSiteNotFound = errors.New("site not found")

	// ErrStoreUnavailable means the medium behind a store could not be reached
	// or is not configured.
	ErrStoreUnavailable = errors.New("store unavailable")
)
