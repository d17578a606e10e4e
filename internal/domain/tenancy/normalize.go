package tenancy

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NormalizeCode deja un código de negocio en forma canónica (NFC, sin espacios, mayúsculas)
// para que "b-001" y "B-001 " choquen con la misma clave única (tenant_id, code).
func NormalizeCode(code string) string {
	c := norm.NFC.String(strings.TrimSpace(code))
	// cases.Caser no es seguro entre goroutines: uno por llamada.
	return cases.Upper(language.Und).String(c)
}

// NormalizeEmail aplica NFC y minúsculas a un email.
func NormalizeEmail(email string) string {
	e := norm.NFC.String(strings.TrimSpace(email))
	return cases.Lower(language.Und).String(e)
}
