// Package types contains value types shared by the uri, header, digest and sip packages.
package types

//go:generate go tool errtrace -w .

import (
	"io"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipmsg/internal/util"
)

// Renderer is an interface that is used to render a type to a string or a writer.
type Renderer interface {
	// Render renders the type to a string with the given options.
	Render(opts *RenderOptions) (string, error)
	// RenderTo renders the type to a writer with the given options.
	RenderTo(w io.Writer, opts *RenderOptions) (int, error)
}

// RenderOptions is a struct that is used to pass options to rendering methods.
// Nil options mean defaults.
type RenderOptions struct {
	// Compact enables one-letter header names where they are defined.
	Compact bool `json:"compact,omitempty"`
}

// IsCompact reports whether compact rendering is requested.
func (o *RenderOptions) IsCompact() bool { return o != nil && o.Compact }

// RenderString runs a RenderTo-style function against a pooled string builder.
func RenderString(fn func(io.Writer, *RenderOptions) (int, error), opts *RenderOptions) (string, error) {
	sb := util.GetStringBuilder()
	defer util.FreeStringBuilder(sb)

	if _, err := fn(sb, opts); err != nil {
		return "", errtrace.Wrap(err)
	}
	return sb.String(), nil
}

type Equalable interface {
	Equal(val any) bool
}

type Cloneable[T any] interface {
	Clone() T
}

// Clone clones the value if it has method `Clone() T`, otherwise returns a zero value.
func Clone[T any](v any) T {
	if v1, ok := v.(Cloneable[T]); ok {
		return v1.Clone()
	}
	if v == nil {
		var zero T
		return zero
	}
	v1, _ := v.(T)
	return v1
}
