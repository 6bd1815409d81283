// Package validation contiene chequeos de forma sobre valores de configuración.
package validation

import (
	"fmt"
	"regexp"
)

// Reglas de scope OAuth:
// - Sólo minúsculas, sin espacios ni ';' ni ','.
// - Empieza y termina con [a-z0-9].
// - En el medio se admite [a-z0-9:_./-] (cubre scopes en forma de URL de Google).
// - Largo 1..256.
//
// Válidos: email, user.info.basic, pages_show_list, https://www.googleapis.com/auth/gmail.send
// Inválidos: "", BAD, "a b", "a,b", :lead, trail/
var scopeNameRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9:_./-]{0,254}[a-z0-9])?$`)

// ValidScopeName indica si name es un scope aceptable.
func ValidScopeName(name string) bool {
	return scopeNameRe.MatchString(name)
}

// CheckScopes devuelve error con el primer scope inválido de la lista.
func CheckScopes(scopes []string) error {
	for _, s := range scopes {
		if !ValidScopeName(s) {
			return fmt.Errorf("invalid scope %q", s)
		}
	}
	return nil
}
