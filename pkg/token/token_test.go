package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_GenerateAndParse(t *testing.T) {
	m := NewManager("secret", time.Hour)

	signed, expiresAt, err := m.Generate(Subject{UserID: "u-1", Email: "a@b.c", Role: "owner"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "owner", claims.Role)
	assert.Equal(t, "a@b.c", claims.Email)
	assert.Equal(t, "u-1", claims.Subject)
}

func TestManager_RejectsWrongSecret(t *testing.T) {
	signed, _, err := NewManager("one", time.Hour).Generate(Subject{UserID: "u", Role: "student"})
	require.NoError(t, err)

	_, err = NewManager("two", time.Hour).Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_RejectsExpired(t *testing.T) {
	m := NewManager("secret", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	signed, _, err := m.Generate(Subject{UserID: "u", Role: "student"})
	require.NoError(t, err)

	_, err = NewManager("secret", time.Minute).Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_RejectsNoneAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u", Role: "admin"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewManager("secret", time.Hour).Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_RejectsMissingRole(t *testing.T) {
	m := NewManager("secret", time.Hour)
	signed, _, err := m.Generate(Subject{UserID: "u"})
	require.NoError(t, err)

	_, err = m.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
