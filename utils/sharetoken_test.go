package utils

import (
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The share secret is cached on first use, so it has to be in place before
// any test in this package touches a token.
func TestMain(m *testing.M) {
	os.Setenv("SHARE_TOKEN_SECRET", "sharetoken-test-secret")
	os.Exit(m.Run())
}

func TestShareTokenRoundTrip(t *testing.T) {
	raw, err := GenerateShareToken(42)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	id, err := ParseShareToken(raw)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestParseShareTokenGarbage(t *testing.T) {
	_, err := ParseShareToken("not-a-token")
	assert.Error(t, err)
}

func TestParseShareTokenExpired(t *testing.T) {
	require.NoError(t, loadShareSecret())
	claims := &ShareClaims{
		InvoiceID: 7,
		Type:      shareTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(shareSecret)
	require.NoError(t, err)

	_, err = ParseShareToken(raw)
	assert.ErrorIs(t, err, ErrShareTokenExpired)
}

func TestParseShareTokenWrongType(t *testing.T) {
	require.NoError(t, loadShareSecret())
	claims := &ShareClaims{
		InvoiceID: 7,
		Type:      "session",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(shareSecret)
	require.NoError(t, err)

	_, err = ParseShareToken(raw)
	assert.Error(t, err)
}

func TestParseShareTokenWrongSecret(t *testing.T) {
	claims := &ShareClaims{
		InvoiceID: 7,
		Type:      shareTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("someone-else"))
	require.NoError(t, err)

	_, err = ParseShareToken(raw)
	assert.Error(t, err)
}
