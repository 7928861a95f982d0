// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lookup

import "fmt"

// ErrorKind classifies a lookup failure.
type ErrorKind string

const (
	// ErrNotFound means the backend answered but holds no record for the
	// identifier. Permanent; never retried.
	ErrNotFound ErrorKind = "not_found"

	// ErrTransient covers timeouts, 5xx responses, and rate-limit
	// responses that survived the retry ceiling.
	ErrTransient ErrorKind = "transient"

	// ErrPermanent covers non-rate-limit 4xx responses.
	ErrPermanent ErrorKind = "permanent"

	// ErrMalformed means the backend responded with a body the adapter
	// could not parse. Permanent; never retried.
	ErrMalformed ErrorKind = "malformed"
)

// LookupError is the structured failure returned by the client. Retryable
// reports whether a later identical request could plausibly succeed.
type LookupError struct {
	Kind    ErrorKind
	Backend string
	Err     error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s lookup (%s): %v", e.Backend, e.Kind, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is transient.
func (e *LookupError) Retryable() bool {
	return e.Kind == ErrTransient
}
