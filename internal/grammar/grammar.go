// Package grammar implements the lexical rules of RFC 3261 shared by the URI,
// header and digest parsers: character classes, host validation,
// percent-escaping, quoted strings and the top-level scanner.
package grammar

//go:generate go tool errtrace -w .

import (
	"net/netip"
	"strings"

	"github.com/miekg/dns"

	"github.com/ghettovoice/sipmsg/internal/errorutil"
)

const (
	ErrUnterminatedQuote errorutil.Error = "unterminated quoted string"
	ErrUnbalancedAngle   errorutil.Error = "unbalanced angle brackets"
)

var tokenChars = [256]bool{
	'-': true, '.': true, '!': true, '%': true, '*': true,
	'_': true, '+': true, '`': true, '\'': true, '~': true,
}

func init() {
	for c := '0'; c <= '9'; c++ {
		tokenChars[c] = true
	}
	for c := 'a'; c <= 'z'; c++ {
		tokenChars[c] = true
		tokenChars[c-'a'+'A'] = true
	}
}

// IsTokenChar checks the token character class.
func IsTokenChar(c byte) bool { return tokenChars[c] }

// IsToken checks whether s is a non-empty RFC 3261 token.
func IsToken[T ~string | ~[]byte](s T) bool {
	if len(s) == 0 {
		return false
	}
	for i := range len(s) {
		if !tokenChars[s[i]] {
			return false
		}
	}
	return true
}

// IsAlpha checks ALPHA rule.
func IsAlpha(c byte) bool { return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' }

// IsDigit checks DIGIT rule.
func IsDigit(c byte) bool { return '0' <= c && c <= '9' }

// IsAlphanumChar checks alphanum rule.
func IsAlphanumChar(c byte) bool { return IsAlpha(c) || IsDigit(c) }

// IsDigits checks whether s is a non-empty run of DIGIT.
func IsDigits[T ~string | ~[]byte](s T) bool {
	if len(s) == 0 {
		return false
	}
	for i := range len(s) {
		if !IsDigit(s[i]) {
			return false
		}
	}
	return true
}

// IsHex checks whether s is a non-empty run of HEXDIG (case-insensitive).
func IsHex[T ~string | ~[]byte](s T) bool {
	if len(s) == 0 {
		return false
	}
	for i := range len(s) {
		if !ishex(s[i]) {
			return false
		}
	}
	return true
}

// IsScheme checks the URI scheme rule: ALPHA *( ALPHA / DIGIT / "+" / "-" / "." ).
func IsScheme(s string) bool {
	if s == "" || !IsAlpha(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if c := s[i]; !IsAlphanumChar(c) && c != '+' && c != '-' && c != '.' {
			return false
		}
	}
	return true
}

// IsIP checks whether s is an IPv4 or IPv6 literal.
// IPv6 literals may be enclosed in brackets.
func IsIP(s string) bool {
	if len(s) > 1 && s[0] == '[' && s[len(s)-1] == ']' {
		s = s[1 : len(s)-1]
		addr, err := netip.ParseAddr(s)
		return err == nil && addr.Is6()
	}
	_, err := netip.ParseAddr(s)
	return err == nil
}

// IsHostname checks the RFC 3261 hostname rule:
//
//	hostname    =  *( domainlabel "." ) toplabel [ "." ]
//	domainlabel =  alphanum / alphanum *( alphanum / "-" ) alphanum
//	toplabel    =  ALPHA / ALPHA *( alphanum / "-" ) alphanum
func IsHostname(s string) bool {
	if _, ok := dns.IsDomainName(s); !ok {
		return false
	}
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return false
	}
	labels := strings.Split(s, ".")
	for _, l := range labels {
		if l == "" || l[0] == '-' || l[len(l)-1] == '-' {
			return false
		}
		for i := range len(l) {
			if !IsAlphanumChar(l[i]) && l[i] != '-' {
				return false
			}
		}
	}
	return IsAlpha(labels[len(labels)-1][0])
}

// IsHost checks whether s is a hostname or an IP literal.
func IsHost(s string) bool { return IsIP(s) || IsHostname(s) }
