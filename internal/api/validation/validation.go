package validation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hugh/go-portal/internal/store"
)

var (
	// EmailRegex validates email format
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// digits with optional leading +, spaces, dashes, dots and parentheses
	phoneRegex = regexp.MustCompile(`^\+?[0-9 ().\-]{6,20}$`)
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MaxFieldLength    = 200
)

// IsValidEmail checks if the string is a valid email format
func IsValidEmail(email string) bool {
	if len(email) > 254 {
		return false
	}
	return emailRegex.MatchString(email)
}

// IsValidPhone accepts loosely formatted phone numbers with at least six digits.
func IsValidPhone(phone string) bool {
	if !phoneRegex.MatchString(phone) {
		return false
	}
	digits := 0
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return digits >= 6
}

// IsValidIdentity checks that a username or orgname can be used as a
// storage key once normalized.
func IsValidIdentity(name string) (bool, string) {
	key := store.NormalizeKey(name)
	if key == "" {
		return false, "is required"
	}
	for _, r := range key {
		if unicode.IsControl(r) {
			return false, "may not contain control characters"
		}
	}
	if err := store.ValidateKey(key); err != nil {
		return false, "may not contain slashes, start with a dot, or exceed 64 bytes"
	}
	return true, ""
}

// IsValidPassword only enforces length; the hash does the rest.
func IsValidPassword(password string) (bool, string) {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		return false, "Password must be at least 8 characters"
	}
	if n > MaxPasswordLength {
		return false, "Password must be at most 128 characters"
	}
	return true, ""
}

// SanitizeString removes potentially dangerous characters for display
func SanitizeString(s string) string {
	// Remove null bytes
	s = strings.ReplaceAll(s, "\x00", "")

	// Remove control characters except newlines and tabs
	var result strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || !unicode.IsControl(r) {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// TruncateString truncates a string to maxLen bytes without splitting a rune
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	for maxLen > 0 && !utf8.RuneStart(s[maxLen]) {
		maxLen--
	}
	return s[:maxLen]
}
