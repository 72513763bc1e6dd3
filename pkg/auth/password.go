// Package auth holds credential helpers. Secrets never reach the document
// store in clear text: they are stored as bcrypt hashes and compared in
// process.
package auth

import (
	"errors"

	pkgerrors "users-backend/pkg/errors"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest secret bcrypt accepts
const MaxPasswordBytes = 72

// PasswordHasher hashes and verifies user secrets with bcrypt
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a hasher. A cost outside bcrypt's accepted range
// falls back to bcrypt.DefaultCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns the bcrypt hash of plain. A secret over MaxPasswordBytes is
// a validation error.
func (h *PasswordHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", pkgerrors.NewValidationError("userPassword must be at most 72 bytes").
				WithCode(pkgerrors.CodeInvalidPayload).
				WithCause(err)
		}
		return "", err
	}
	return string(b), nil
}

// Matches reports whether plain hashes to hash. Malformed hashes never match.
func (h *PasswordHasher) Matches(hash, plain string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
