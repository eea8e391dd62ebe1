// Package phone converts between the stored (normalized) phone value and its display form.
package phone

import (
	"strings"
	"unicode"
)

// USDigits is the length of a domestic number; longer input needs a + prefix.
const USDigits = 10

// Normalize keeps digits only, plus a single leading '+' when the input starts with one.
func Normalize(raw string) string {
	trimmed := strings.TrimLeftFunc(raw, unicode.IsSpace)
	var b strings.Builder
	b.Grow(len(trimmed))
	if strings.HasPrefix(trimmed, "+") {
		b.WriteByte('+')
	}
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 1 && strings.HasPrefix(trimmed, "+") {
		return ""
	}
	return b.String()
}

// Digits strips everything but digits.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// IsInternational reports whether the normalized value carries the + prefix.
func IsInternational(normalized string) bool {
	return strings.HasPrefix(normalized, "+")
}

// Format renders a normalized value for display: (555) 123-4567.
// International or over-length values are shown unpunctuated.
func Format(normalized string) string {
	if normalized == "" {
		return ""
	}
	if IsInternational(normalized) {
		return "+" + Digits(normalized)
	}
	d := Digits(normalized)
	switch {
	case len(d) > USDigits:
		return d
	case len(d) < 3:
		return d
	case len(d) == 3:
		return "(" + d + ")"
	case len(d) < 6:
		return "(" + d[:3] + ") " + d[3:]
	case len(d) == 6:
		return "(" + d[:3] + ") " + d[3:6]
	default:
		return "(" + d[:3] + ") " + d[3:6] + "-" + d[6:]
	}
}

// E164 returns +<digits>, assuming a US country code for 10-digit numbers.
func E164(normalized string) string {
	d := Digits(normalized)
	if d == "" {
		return ""
	}
	if !IsInternational(normalized) && len(d) == USDigits {
		return "+1" + d
	}
	return "+" + d
}
