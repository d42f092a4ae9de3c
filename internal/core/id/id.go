// Package id provides UUIDv7 identifiers for items, mirrors, documents and ledger rows.
package id

import (
	"github.com/google/uuid"
)

// ID is the identifier type shared by all records.
type ID = uuid.UUID

// New generates a time-ordered UUIDv7 so ledger rows sort by creation.
func New() ID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// Parse converts string to ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// ParseOptional parses s, returning nil for an empty string.
func ParseOptional(s string) (*ID, error) {
	if s == "" {
		return nil, nil
	}
	v, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// MustParse converts string to ID, panics on error.
// Use only for constants and tests.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// Nil returns zero-value UUID.
func Nil() ID {
	return uuid.Nil
}

// IsNil checks if ID is zero-value.
func IsNil(id ID) bool {
	return id == uuid.Nil
}

// PtrIsNil reports whether p is nil or points at the zero UUID.
func PtrIsNil(p *ID) bool {
	return p == nil || *p == uuid.Nil
}
