package utils

import (
	"testing"
	"time"

	apperrors "users-backend/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupRequest struct {
	UserName  string `json:"userName" validate:"required"`
	UserEmail string `json:"userEmail" validate:"required,email"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid input", func(t *testing.T) {
		assert.NoError(t, ValidateStruct(signupRequest{UserName: "A", UserEmail: "a@x.com"}))
	})

	t.Run("reports json field names", func(t *testing.T) {
		err := ValidateStruct(signupRequest{UserEmail: "not-an-email"})

		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		assert.Contains(t, err.Error(), "userName is required")
		assert.Contains(t, err.Error(), "userEmail must be a valid email")

		fields := apperrors.GetAppError(err).Details["fields"].(map[string]interface{})
		assert.Equal(t, "required", fields["userName"])
		assert.Equal(t, "email", fields["userEmail"])
	})
}

type secretRequest struct {
	Secret string `json:"secret" validate:"required,maxbytes=4"`
}

func TestValidateStruct_MaxBytesCountsBytes(t *testing.T) {
	assert.NoError(t, ValidateStruct(secretRequest{Secret: "abcd"}))

	// two runes, four bytes
	assert.NoError(t, ValidateStruct(secretRequest{Secret: "éé"}))

	// three runes, six bytes
	err := ValidateStruct(secretRequest{Secret: "ééé"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "secret must be at most 4 bytes")
	fields := apperrors.GetAppError(err).Details["fields"].(map[string]interface{})
	assert.Equal(t, "maxbytes", fields["secret"])
}

func TestUUIDGenerator_NewID(t *testing.T) {
	gen := UUIDGenerator{}
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		id := gen.NewID()
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestRFC3339_RoundTrip(t *testing.T) {
	local := time.Date(2026, 5, 4, 9, 30, 0, 0, time.FixedZone("CEST", 2*60*60))

	formatted := FormatRFC3339(local)
	parsed, err := ParseRFC3339(formatted)

	require.NoError(t, err)
	assert.Equal(t, "2026-05-04T07:30:00Z", formatted)
	assert.True(t, parsed.Equal(local))
}
