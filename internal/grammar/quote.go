package grammar

import (
	"strings"

	"braces.dev/errtrace"
)

// IsQuoted checks whether s is enclosed in double quotes with all inner quotes escaped.
func IsQuoted(s string) bool {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return false
	}
	for i := 1; i < len(s)-1; i++ {
		switch s[i] {
		case '\\':
			i++
			if i == len(s)-1 {
				return false
			}
		case '"':
			return false
		}
	}
	return true
}

// Quote encloses s in double quotes escaping '"' and '\' with quoted-pair.
func Quote(s string) string {
	if !strings.ContainsAny(s, `"\`) {
		return `"` + s + `"`
	}

	var b strings.Builder
	b.Grow(len(s) + 4)
	b.WriteByte('"')
	for i := range len(s) {
		if s[i] == '"' || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}

// Unquote removes enclosing double quotes from s and resolves the \" and \\ quoted-pairs.
// Other quoted-pairs are kept as is.
// If s is not quoted, it is returned unchanged.
func Unquote(s string) string {
	if !IsQuoted(s) {
		return s
	}
	return unescapeQuotedPairs(s[1 : len(s)-1])
}

func unescapeQuotedPairs(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\\') {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// ReadQuoted reads a quoted string at the beginning of s.
// It returns the unescaped content and the rest of s after the closing quote.
func ReadQuoted(s string) (val, rest string, err error) {
	if s == "" || s[0] != '"' {
		return "", s, errtrace.Wrap(ErrUnterminatedQuote)
	}
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return unescapeQuotedPairs(s[1:i]), s[i+1:], nil
		}
	}
	return "", s, errtrace.Wrap(ErrUnterminatedQuote)
}
