package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_GenerateAndValidate(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret")

	access, refresh, err := tm.Generate("user-42")
	require.NoError(t, err)

	got, err := tm.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "user-42", got)

	got, err = tm.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-42", got)
}

func TestTokenManager_RejectsCrossTokenUse(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret")

	access, refresh, err := tm.Generate("user-42")
	require.NoError(t, err)

	// Разные секреты: refresh не проходит как access и наоборот
	_, err = tm.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = tm.ValidateRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret")

	_, err := tm.ValidateAccessToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsForeignSecret(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret")
	other := NewTokenManager("other-secret", "other-refresh")

	access, _, err := other.Generate("user-42")
	require.NoError(t, err)

	_, err = tm.ValidateAccessToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
