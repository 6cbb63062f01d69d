package rwse

import "errors"

// Sentinel errors returned by the registry and the checker. Callers match them
// with errors.Is; wrapped variants carry the offending input.
var (
	// ErrNotConfigured is returned when no confusion sets have been configured yet.
	ErrNotConfigured = errors.New("no confusion sets configured")
	// ErrUnknownWord is returned when the word belongs to no configured confusion set.
	ErrUnknownWord = errors.New("word is not in any confusion set")
	// ErrMalformedContext is returned when the context sentence does not contain
	// exactly one mask marker.
	ErrMalformedContext = errors.New("context must contain exactly one mask marker")
	// ErrScorerUnavailable is returned when the masked-language-model backend
	// cannot be queried.
	ErrScorerUnavailable = errors.New("scorer unavailable")
)
