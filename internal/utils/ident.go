package utils

import (
	"unicode"
	"unicode/utf8"
)

// IsIdentifierRune reports whether r can appear inside an identifier.
func IsIdentifierRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// TrailingIdentifier returns the identifier characters at the end of line,
// the word a completion prefix is taken from.
func TrailingIdentifier(line string) string {
	end := len(line)
	start := end
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(line[:start])
		if !IsIdentifierRune(r) {
			break
		}
		start -= size
	}
	return line[start:end]
}

// IsValidPrefix rejects prefixes made only of digits, which never start an identifier.
func IsValidPrefix(s string) bool {
	if s == "" {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s)
	return !unicode.IsDigit(r)
}
