// Package source fetches raw payloads from the configured provider and
// classifies every failure so the pipeline can apply per-outcome policy:
// skip the unit, retry it, or abort the whole run.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"Stratus/internal/normalize"
)

var (
	// ErrNotFound: the unit does not exist at the provider. Skip it.
	ErrNotFound = errors.New("unit not found at provider")
	// ErrUnauthorized: the credential was rejected. Every later call will
	// fail the same way, so the caller should abort the run.
	ErrUnauthorized = errors.New("provider rejected credential")
	// ErrRateLimited: throttled and retries are exhausted. Skip the unit.
	ErrRateLimited = errors.New("provider rate limit")
	// ErrMalformed: the body is not the expected structured shape. Skip.
	ErrMalformed = errors.New("malformed provider response")
)

// Client fetches the payload(s) for one unit of work. A weather city yields
// one payload; a dataset bundle yields one payload per contained object.
type Client interface {
	Name() string
	Fetch(ctx context.Context, unit string) ([]normalize.Payload, error)
}

// RetryPolicy bounds how often a rate-limited request is retried before the
// unit is given up on. Backoff is the fixed wait between attempts unless the
// provider supplies a Retry-After of its own.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

func classifyStatus(code int) error {
	switch code {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return fmt.Errorf("unexpected status %d", code)
	}
}
