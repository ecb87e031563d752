package stats

import (
	"testing"

	"github.com/sanchawla17/Invosight/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityForPrefersEmail(t *testing.T) {
	id := IdentityFor(models.BillTo{ClientName: "Acme", Email: "Billing@Acme.COM"})
	assert.True(t, id.IsEmail())
	assert.Equal(t, "email:billing@acme.com", id.Key())

	// Different casing, same client.
	other := IdentityFor(models.BillTo{ClientName: "ACME Inc", Email: "billing@acme.com"})
	assert.Equal(t, id.Key(), other.Key())
}

func TestIdentityForNameFallback(t *testing.T) {
	id := IdentityFor(models.BillTo{ClientName: "Acme"})
	assert.False(t, id.IsEmail())
	assert.Equal(t, "name:Acme", id.Key())

	unknown := IdentityFor(models.BillTo{})
	assert.Equal(t, "name:Unknown", unknown.Key())
}

func TestParseClientKey(t *testing.T) {
	id, err := ParseClientKey("email:A@X.com")
	require.NoError(t, err)
	assert.True(t, id.IsEmail())
	assert.Equal(t, "a@x.com", id.Value())

	id, err = ParseClientKey("name:Acme Corp")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", id.Value())

	// URL-encoded keys are decoded before prefix matching.
	id, err = ParseClientKey("email%3Aa%40x.com")
	require.NoError(t, err)
	assert.Equal(t, "email:a@x.com", id.Key())
}

func TestParseClientKeyRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "acme", "email:", "name:", "client:acme"} {
		_, err := ParseClientKey(raw)
		assert.ErrorIs(t, err, ErrInvalidClientKey, "key %q", raw)
	}
}

func TestKeyRoundTrip(t *testing.T) {
	for _, billTo := range []models.BillTo{
		{Email: "A@X.com", ClientName: "Alpha"},
		{ClientName: "Beta GmbH"},
		{},
	} {
		id := IdentityFor(billTo)
		parsed, err := ParseClientKey(id.Key())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	}
}
