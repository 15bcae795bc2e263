package utils

import (
	"strings"
	"unicode"
)

// IsSeparator checks if a rune may appear between words of a trip or resort name
func IsSeparator(r rune) bool {
	return r == ' ' || r == '_' || r == '-' || r == '.' || r == '/' || r == '\'' || r == ',' || r == '&'
}

// StringContainsIgnoreCase checks if string contains substring case-insensitively
func StringContainsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// IsOnlyNumbers checks if a string consists entirely of numeric digits
func IsOnlyNumbers(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ContainsSpecialChars checks if a string contains characters that never
// appear in catalog names (anything but letters, digits and separators)
func ContainsSpecialChars(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !IsSeparator(r) {
			return true
		}
	}
	return false
}

// IsValidInput checks if a typed prefix is worth a lookup.
// Rejects empty input, bare numbers, stray symbols and repeated characters like "zzz".
func IsValidInput(s string) bool {
	if len(s) == 0 {
		return false
	}
	if IsOnlyNumbers(s) {
		return false
	}
	if ContainsSpecialChars(s) {
		return false
	}
	return !IsRepetitive(s)
}

// IsRepetitive checks if a string is one character repeated 3+ times (e.g., "aaa")
func IsRepetitive(s string) bool {
	runes := []rune(s)
	if len(runes) <= 2 {
		return false
	}
	for _, r := range runes[1:] {
		if r != runes[0] {
			return false
		}
	}
	return true
}
