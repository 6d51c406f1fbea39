// Package util provides common utility functions.
package util

//go:generate go tool errtrace -w .

func Must[T any](v T, e error) T {
	if e != nil {
		panic(e)
	}
	return v
}

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T { return &v }

// Compact returns s without zero values, reusing the underlying array.
func Compact[T comparable](s []T) []T {
	var zero T
	out := s[:0]
	for _, v := range s {
		if v != zero {
			out = append(out, v)
		}
	}
	return out
}
