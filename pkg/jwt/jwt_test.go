package jwt_test

import (
	"testing"

	"github.com/jhoicas/Gestion-api/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse_RoundTrip(t *testing.T) {
	tok, err := jwt.Generate("secreto", "user-1", "tenant-1", "gestion-api", 5)
	require.NoError(t, err)

	userID, tenantID, err := jwt.Parse("secreto", tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "tenant-1", tenantID)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	tok, err := jwt.Generate("secreto", "user-1", "tenant-1", "gestion-api", 5)
	require.NoError(t, err)

	_, _, err = jwt.Parse("otro-secreto", tok)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	tok, err := jwt.Generate("secreto", "user-1", "tenant-1", "gestion-api", -1)
	require.NoError(t, err)

	_, _, err = jwt.Parse("secreto", tok)
	assert.Error(t, err)
}

func TestParse_SinTenant(t *testing.T) {
	tok, err := jwt.Generate("secreto", "user-1", "", "gestion-api", 5)
	require.NoError(t, err)

	_, _, err = jwt.Parse("secreto", tok)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := jwt.Generate("", "user-1", "tenant-1", "gestion-api", 5)
	assert.Error(t, err)
}
