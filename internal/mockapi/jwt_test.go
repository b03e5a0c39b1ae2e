package mockapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, err := m.Generate("crio-user")
	require.NoError(t, err)

	username, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "crio-user", username)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	m1 := NewTokenManager("secret-one", time.Hour)
	m2 := NewTokenManager("secret-two", time.Hour)

	token, err := m1.Generate("crio-user")
	require.NoError(t, err)

	_, err = m2.Validate(token)
	assert.Error(t, err)
}

func TestTokenManager_ExpiredToken(t *testing.T) {
	m := NewTokenManager("test-secret", -time.Minute)

	token, err := m.Generate("crio-user")
	require.NoError(t, err)

	_, err = m.Validate(token)
	assert.Error(t, err)
}

func TestTokenManager_Garbage(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	_, err := m.Validate("not-a-jwt")
	assert.Error(t, err)
}
