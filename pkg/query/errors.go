package query

import "errors"

// Error taxonomy for the retrieval surface. Empty result sets are not
// errors; they come back as empty slices.
var (
	// ErrInvalidArgument covers bad section names, empty search queries
	// and out-of-range limits. Reported to the caller, never retried.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCorpusUnavailable means no snapshot has been loaded yet. Queries
	// fail fast with this rather than returning stale or empty data.
	ErrCorpusUnavailable = errors.New("corpus unavailable: no snapshot loaded")
)
