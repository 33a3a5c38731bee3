// Package normalize maps raw provider payloads into the fixed document
// shapes persisted by the loader. Mapping is pure: same payload and same
// ingestion time always produce the same document, and the untouched
// payload is kept under raw_data so stored documents can be reprocessed
// without re-extracting.
package normalize

import (
	"errors"
	"fmt"
	"time"
)

// ErrValidation marks a payload that is structurally incomplete. The unit
// is dropped, never retried: the body already arrived intact, re-fetching
// will not grow it the missing fields.
var ErrValidation = errors.New("payload validation failed")

func missingField(name string) error {
	return fmt.Errorf("%w: missing %s", ErrValidation, name)
}

// Normalizer turns one raw payload into one storable document.
type Normalizer interface {
	Normalize(p Payload, ingestedAt time.Time) (any, error)
}
