package util

import (
	"strings"
	"sync"
)

func UCase[T ~string](s T) T { return T(strings.ToUpper(string(s))) }

func LCase[T ~string](s T) T { return T(strings.ToLower(string(s))) }

func TrimSP[T ~string](s T) T { return T(strings.TrimSpace(string(s))) }

func EqFold[T1, T2 ~string](s1 T1, s2 T2) bool {
	return strings.EqualFold(string(s1), string(s2))
}

// TrimLWS trims SP and HTAB from both sides of s.
func TrimLWS[T ~string](s T) T { return T(strings.Trim(string(s), " \t")) }

// IsLWS reports whether c is SP or HTAB.
func IsLWS(c byte) bool { return c == ' ' || c == '\t' }

// CutLWS slices s around the first run of SP/HTAB.
// The found result reports whether a run was found.
func CutLWS(s string) (before, after string, found bool) {
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, "", false
	}
	return s[:i], strings.TrimLeft(s[i:], " \t"), true
}

func Ellipsis(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[0:maxLen]) + "..."
}

var strBldrPool = &sync.Pool{
	New: func() any {
		sb := new(strings.Builder)
		sb.Grow(1024)
		return sb
	},
}

func GetStringBuilder() *strings.Builder {
	return strBldrPool.Get().(*strings.Builder) //nolint:forcetypeassert
}

func FreeStringBuilder(sb *strings.Builder) {
	sb.Reset()
	strBldrPool.Put(sb)
}
