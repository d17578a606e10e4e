package securetoken

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const (
	// ByteLength bytes aleatorios por token.
	ByteLength = 32
	// EncodedLength longitud en base64url sin relleno de ByteLength bytes.
	EncodedLength = 43
)

// Generate devuelve un token opaco URL-safe de 43 caracteres (32 bytes de crypto/rand).
func Generate() (string, error) {
	b := make([]byte, ByteLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("securetoken: leer aleatorio: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// WellFormed descarta sin ir a la base de datos los valores que no pueden ser un token.
func WellFormed(s string) bool {
	if len(s) != EncodedLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
