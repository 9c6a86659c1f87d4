package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		valid bool
	}{
		{"valid_simple", "user@example.com", true},
		{"valid_subdomain", "user@mail.example.com", true},
		{"valid_plus", "user+tag@example.com", true},
		{"valid_dash", "user-name@example.com", true},
		{"valid_dot", "user.name@example.com", true},
		{"valid_numbers", "user123@example456.com", true},
		{"invalid_no_at", "userexample.com", false},
		{"invalid_no_domain", "user@", false},
		{"invalid_no_user", "@example.com", false},
		{"invalid_double_at", "user@@example.com", false},
		{"invalid_spaces", "user @example.com", false},
		{"invalid_no_tld", "user@example", false},
		{"too_long", "a" + string(make([]byte, 250)) + "@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidEmail(tt.email)
			assert.Equal(t, tt.valid, result, "Email: %s", tt.email)
		})
	}
}

func TestIsValidPhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		valid bool
	}{
		{"international", "+39 06 1234 5678", true},
		{"dashes", "555-010-0199", true},
		{"parentheses", "(555) 010.0199", true},
		{"too_short", "12345", false},
		{"letters", "555-CALL-NOW", false},
		{"mostly_punctuation", "+(-- --)-.", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidPhone(tt.phone), "Phone: %s", tt.phone)
		})
	}
}

func TestIsValidIdentity(t *testing.T) {
	tests := []struct {
		name     string
		identity string
		valid    bool
		msg      string
	}{
		{"simple", "alice", true, ""},
		{"mixed_case_padded", "  Alice ", true, ""},
		{"with_space", "acme corp", true, ""},
		{"empty", "", false, "is required"},
		{"blank", "   ", false, "is required"},
		{"slash", "a/b", false, "may not contain slashes"},
		{"traversal", "..", false, "may not contain slashes"},
		{"leading_dot", ".hidden", false, "start with a dot"},
		{"control", "bad\x07name", false, "control characters"},
		{"nul", "bob\x00", false, "control characters"},
		{"too_long", strings.Repeat("a", 65), false, "exceed 64 bytes"},
		{"multibyte_64_bytes", strings.Repeat("é", 32), true, ""},
		{"multibyte_over_64_bytes", strings.Repeat("é", 33), false, "exceed 64 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, msg := IsValidIdentity(tt.identity)
			assert.Equal(t, tt.valid, valid)
			if !tt.valid {
				assert.Contains(t, msg, tt.msg)
			}
		})
	}
}

func TestIsValidPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"long_enough", "securepassword123", true},
		{"exactly_min", "12345678", true},
		{"multibyte", "pässwörd", true},
		{"too_short", "short", false},
		{"empty", "", false},
		{"too_long", strings.Repeat("a", 129), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, msg := IsValidPassword(tt.password)
			assert.Equal(t, tt.valid, valid)
			if !tt.valid {
				assert.NotEmpty(t, msg)
			}
		})
	}
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello", "hello"},
		{"null_bytes", "he\x00llo", "hello"},
		{"control", "bell\x07", "bell"},
		{"keeps_whitespace", "a\tb\nc", "a\tb\nc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeString(tt.input))
		})
	}
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "hello", TruncateString("hello", 10))
	assert.Equal(t, "hel", TruncateString("hello", 3))
	// "é" is two bytes; cutting inside it backs off to the rune boundary
	assert.Equal(t, "caf", TruncateString("café", 4))
}
