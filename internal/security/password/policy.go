package password

import (
	"errors"
	"strings"
	"unicode"
)

// Policy define requisitos mínimos para passwords de usuarios de la aplicación.
type Policy struct {
	MinLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireDigit  bool
	RequireSymbol bool
}

// DefaultPolicy es la política usada por `socialbridge user create`.
var DefaultPolicy = Policy{MinLength: 10, RequireDigit: true}

// Validate devuelve las razones de rechazo (too_short, missing_digit, ...).
func (p Policy) Validate(s string) (ok bool, reasons []string) {
	if len([]rune(s)) < p.MinLength {
		reasons = append(reasons, "too_short")
	}
	var hasU, hasL, hasD, hasS bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			hasU = true
		case unicode.IsLower(r):
			hasL = true
		case unicode.IsDigit(r):
			hasD = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasS = true
		}
	}
	if p.RequireUpper && !hasU {
		reasons = append(reasons, "missing_upper")
	}
	if p.RequireLower && !hasL {
		reasons = append(reasons, "missing_lower")
	}
	if p.RequireDigit && !hasD {
		reasons = append(reasons, "missing_digit")
	}
	if p.RequireSymbol && !hasS {
		reasons = append(reasons, "missing_symbol")
	}
	return len(reasons) == 0, reasons
}

// Check es Validate en forma de error.
func (p Policy) Check(s string) error {
	if ok, reasons := p.Validate(s); !ok {
		return errors.New("password policy: " + strings.Join(reasons, ","))
	}
	return nil
}
