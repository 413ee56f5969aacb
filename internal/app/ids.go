package app

import "github.com/google/uuid"

// newID returns a random game identifier.
func newID() string { return uuid.NewString() }

// ValidID reports whether id has the shape of a game identifier.
func ValidID(id string) bool {
    _, err := uuid.Parse(id)
    return err == nil
}
