// Package util junta helpers chicos sin dependencias.
package util

import "strings"

// MaskEmail deja visible la primera letra del usuario y de cada etiqueta del
// dominio salvo el TLD: "ana@example.com" -> "a…@e….com".
func MaskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	user, domain, ok := strings.Cut(s, "@")
	if !ok || user == "" {
		return maskPart(s)
	}
	labels := strings.Split(domain, ".")
	for i := 0; i < len(labels)-1; i++ {
		labels[i] = firstOnly(labels[i])
	}
	return firstOnly(user) + "@" + strings.Join(labels, ".")
}

func firstOnly(s string) string {
	if len(s) <= 1 {
		return s
	}
	return s[:1] + "…"
}

// maskPart cubre valores que no son emails.
func maskPart(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 3:
		return "***"
	default:
		return s[:1] + "…" + s[len(s)-1:]
	}
}
