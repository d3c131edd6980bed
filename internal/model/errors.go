package model

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by record and document lookups for unknown,
// deleted, or stale ids.
var ErrNotFound = errors.New("not found")

// MissingLinkageError reports a mention whose navigation target cannot be
// built because a required parent reference is absent (e.g. an interview
// record with no application id). Navigation is suppressed; the embed itself
// stays usable.
type MissingLinkageError struct {
	Kind  RecordKind
	ID    string
	Field string
}

func (e *MissingLinkageError) Error() string {
	return fmt.Sprintf("%s %s: missing linkage field %q", e.Kind, e.ID, e.Field)
}
