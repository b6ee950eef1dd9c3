package entities

import "errors"

// Domain errors. Load failures are the only fatal class; the resolution chain
// recovers from the other two by advancing to its next stage.
var (
	// ErrMalformedRecord indicates a tabular source is missing a required column.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrRetrievalUnavailable indicates the embedding or index-search service
	// failed for a query. The resolver treats it as "no usable text".
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")

	// ErrCompletionUnavailable indicates the generation service failed.
	ErrCompletionUnavailable = errors.New("completion unavailable")
)
