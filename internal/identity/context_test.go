package identity

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromToken(t *testing.T) {
	sub := uuid.NewString()
	id, err := FromToken(jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": "asha@example.com",
	}))
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: sub, Email: "asha@example.com"}, id)
	assert.False(t, id.Anonymous())
}

func TestFromTokenRejectsBadClaims(t *testing.T) {
	_, err := FromToken(nil)
	assert.Error(t, err)

	_, err = FromToken(jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "x@y.z"}))
	assert.Error(t, err)

	_, err = FromToken(jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "not-a-uuid"}))
	assert.Error(t, err)
}

func TestZeroIdentityIsAnonymous(t *testing.T) {
	assert.True(t, Identity{}.Anonymous())
}
