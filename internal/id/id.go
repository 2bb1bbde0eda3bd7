// Package id generates identifiers for persisted records.
package id

import (
	"fmt"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for the prefixed ids handed out by Generate.
const (
	PrefixEntry = "ent"
	PrefixToken = "tok"
	PrefixUser  = "usr"
)

// Generate returns "prefix-<nanoid>", e.g. "ent-V1StGXR8_Z5jdHi6B-myT".
// It only fails when the system cannot supply secure randomness.
func Generate(prefix string) (string, error) {
	nid, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + nid, nil
}

// MustGenerate is Generate for initialisation paths where failure should crash.
func MustGenerate(prefix string) string {
	v, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return v
}

// NewEntryID returns a fresh daily entry id.
func NewEntryID() (string, error) {
	return Generate(PrefixEntry)
}

// NewPhotoID returns a random UUID for a photo row. Photo rows mirror the
// hosted schema, where the primary key is a uuid column.
func NewPhotoID() string {
	return uuid.NewString()
}
