package security_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/flota-api/internal/infrastructure/security"
)

func TestBcryptHasher_HashYVerify(t *testing.T) {
	h := security.NewBcryptHasher(bcrypt.MinCost)

	digest, err := h.Hash("secreto123")
	require.NoError(t, err)
	assert.NotEqual(t, "secreto123", digest)

	assert.True(t, h.Verify("secreto123", digest))
	assert.False(t, h.Verify("otro", digest))
	assert.False(t, h.Verify("secreto123", "no-es-bcrypt"))
}

func TestBcryptHasher_SalDistintaPorHash(t *testing.T) {
	h := security.NewBcryptHasher(bcrypt.MinCost)
	a, err := h.Hash("igual")
	require.NoError(t, err)
	b, err := h.Hash("igual")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
