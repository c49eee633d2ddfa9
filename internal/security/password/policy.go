package password

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Policy reglas de complejidad para passwords nuevas (registro y cambio de password).
// El login nunca aplica la policy: una password vieja sigue siendo válida.
type Policy struct {
	MinLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireDigit  bool
	RequireSymbol bool
}

type charRule struct {
	required bool
	reason   string
	match    func(rune) bool
}

func isSymbol(r rune) bool { return unicode.IsPunct(r) || unicode.IsSymbol(r) }

// Validate devuelve ok y los códigos de las reglas incumplidas
// (too_short, missing_upper, missing_lower, missing_digit, missing_symbol).
func (p Policy) Validate(s string) (bool, []string) {
	var reasons []string
	if utf8.RuneCountInString(s) < p.MinLength {
		reasons = append(reasons, "too_short")
	}
	for _, rule := range []charRule{
		{p.RequireUpper, "missing_upper", unicode.IsUpper},
		{p.RequireLower, "missing_lower", unicode.IsLower},
		{p.RequireDigit, "missing_digit", unicode.IsDigit},
		{p.RequireSymbol, "missing_symbol", isSymbol},
	} {
		if rule.required && !strings.ContainsFunc(s, rule.match) {
			reasons = append(reasons, rule.reason)
		}
	}
	return len(reasons) == 0, reasons
}
