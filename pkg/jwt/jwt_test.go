package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/flota-api/pkg/jwt"
)

func TestIssuer_EmiteYVerificaSujeto(t *testing.T) {
	iss := jwt.NewIssuer("secreto", "flota-api", 5)

	token, err := iss.Issue("ana@acme.co")
	require.NoError(t, err)

	subject, err := iss.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "ana@acme.co", subject)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	token, err := jwt.Generate("uno", "ana@acme.co", "flota-api", time.Minute)
	require.NoError(t, err)

	_, err = jwt.Parse("otro", "flota-api", token)
	assert.Error(t, err)
}

func TestParse_TokenExpirado(t *testing.T) {
	token, err := jwt.Generate("secreto", "ana@acme.co", "flota-api", -time.Minute)
	require.NoError(t, err)

	_, err = jwt.Parse("secreto", "flota-api", token)
	assert.Error(t, err)
}

func TestParse_EmisorDistinto(t *testing.T) {
	token, err := jwt.Generate("secreto", "ana@acme.co", "otra-app", time.Minute)
	require.NoError(t, err)

	_, err = jwt.Parse("secreto", "flota-api", token)
	assert.Error(t, err)
}

func TestGenerate_ValidaEntradas(t *testing.T) {
	_, err := jwt.Generate("", "ana@acme.co", "", time.Minute)
	assert.Error(t, err)

	_, err = jwt.Generate("secreto", "", "", time.Minute)
	assert.Error(t, err)
}
