package utils

import "github.com/google/uuid"

// UUIDGenerator issues random (version 4) UUID strings
type UUIDGenerator struct{}

// NewID returns a new random UUID
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}
