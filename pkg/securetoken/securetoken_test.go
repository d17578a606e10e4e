package securetoken_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Gestion-api/pkg/securetoken"
)

func TestGenerate_Longitud43YAlfabetoURL(t *testing.T) {
	tok, err := securetoken.Generate()
	require.NoError(t, err)

	assert.Len(t, tok, securetoken.EncodedLength)
	assert.True(t, securetoken.WellFormed(tok), "el token generado debe ser base64url sin relleno")
	assert.NotContains(t, tok, "=")
	assert.NotContains(t, tok, "+")
	assert.NotContains(t, tok, "/")
}

func TestGenerate_NoRepite(t *testing.T) {
	seen := make(map[string]struct{}, 500)
	for i := 0; i < 500; i++ {
		tok, err := securetoken.Generate()
		require.NoError(t, err)
		_, dup := seen[tok]
		require.False(t, dup, "token repetido en la iteración %d", i)
		seen[tok] = struct{}{}
	}
}

func TestWellFormed_RechazaValoresInvalidos(t *testing.T) {
	cases := map[string]string{
		"vacío":          "",
		"corto":          "abc",
		"con relleno":    "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=",
		"carácter +":     "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA+",
		"demasiado largo": "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	}
	for name, v := range cases {
		t.Run(name, func(t *testing.T) {
			assert.False(t, securetoken.WellFormed(v))
		})
	}
}
