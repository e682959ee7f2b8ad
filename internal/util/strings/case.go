// Package strings provides identifier case conversion used to map accessor
// names to storage names and discriminator tags to type names.
package strings

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Converter adapts the package functions to the name conversion interface
// expected by the metadata factory.
type Converter struct{}

// ToSnakeCase converts an identifier to snake_case
func (Converter) ToSnakeCase(s string) string { return ToSnakeCase(s) }

// ToStudlyCase converts an identifier to StudlyCase
func (Converter) ToStudlyCase(s string) string { return ToStudlyCase(s) }

// ToSnakeCase converts CamelCase to snake_case
// Handles acronyms properly (HTTPRequest -> http_request)
func ToSnakeCase(s string) string {
	var result strings.Builder
	runes := []rune(s)

	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				// Add underscore before uppercase letter if:
				// 1. Previous char is lowercase or a digit
				// 2. Next char is lowercase (for acronyms like HTTPRequest -> http_request)
				if unicode.IsLower(prev) || unicode.IsDigit(prev) {
					result.WriteRune('_')
				} else if unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
					result.WriteRune('_')
				}
			}
			result.WriteRune(unicode.ToLower(r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// ToStudlyCase converts snake_case, kebab-case, space separated and camelCase
// identifiers to StudlyCase (user_profile -> UserProfile, userProfile -> UserProfile).
func ToStudlyCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	nextUpper := true
	for _, r := range s {
		if r == '_' || r == '-' || r == ' ' {
			nextUpper = true
			continue
		}
		if nextUpper {
			b.WriteRune(unicode.ToUpper(r))
			nextUpper = false
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ToCamelCase converts an identifier to camelCase (user_profile -> userProfile)
func ToCamelCase(s string) string {
	return LowerFirst(ToStudlyCase(s))
}

// LowerFirst lower-cases the first rune of s
func LowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// UpperFirst upper-cases the first rune of s
func UpperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
