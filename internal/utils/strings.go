package utils

import (
	"strings"
	"unicode"
)

// NormalizeEmail normalizes email addresses (lowercase and trim)
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone strips everything but digits and a leading +
func NormalizePhone(phone string) string {
	cleaned := strings.TrimSpace(phone)
	if cleaned == "" {
		return ""
	}

	var result strings.Builder
	for i, r := range cleaned {
		if i == 0 && r == '+' {
			result.WriteRune(r)
		} else if unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// MaskGovernmentID hides the middle of a government ID for display,
// keeping the first and last three characters: "344567kjd" -> "344***kjd".
// Values shorter than six characters are returned unchanged.
func MaskGovernmentID(id string) string {
	runes := []rune(id)
	if len(runes) < 6 {
		return id
	}
	return string(runes[:3]) + "***" + string(runes[len(runes)-3:])
}
