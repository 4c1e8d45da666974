// Package core holds the primitives shared across every planning
// component: identifiers, decimal quantities, the error taxonomy,
// configuration, logging, and the clock abstraction.
package core

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ID identifies any persisted entity. It wraps uuid.UUID so repository
// interfaces never leak a storage-specific key type.
type ID uuid.UUID

// NewID generates a fresh random ID.
func NewID() ID {
	return ID(uuid.New())
}

// ParseID parses a canonical UUID string into an ID.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ID{}, NewError(ErrValidation, "InvalidID", "not a valid id: "+s)
	}
	return ID(u), nil
}

// IsZero reports whether the ID was never assigned.
func (id ID) IsZero() bool {
	return id == ID{}
}

func (id ID) String() string {
	return uuid.UUID(id).String()
}

// MarshalJSON renders an ID as its canonical string form rather than the
// raw 16-byte array json.Marshal would otherwise produce.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON parses an ID from its canonical string form.
func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
