package header

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipmsg/internal/util"
)

// Text is a header whose values are kept verbatim, one value per header line,
// e.g. Subject, User-Agent, Date, Route.
type Text struct {
	name   Name
	Values []string
}

// NewText returns a text header with the given name and values.
func NewText(name string, vals ...string) *Text {
	return &Text{name: CanonicName(name), Values: vals}
}

func parseText(name Name, lines []string) (Header, error) {
	return &Text{name: name, Values: slices.Clone(lines)}, nil
}

func (hdr *Text) Name() Name {
	if hdr == nil {
		return ""
	}
	return hdr.name
}

func (hdr *Text) CompactName() Name { return compactName(hdr.Name()) }

// RenderTo writes one header line per value.
func (hdr *Text) RenderTo(w io.Writer, opts *RenderOptions) (int, error) {
	if hdr == nil {
		return 0, nil
	}
	if len(hdr.Values) == 0 {
		return 0, errtrace.Wrap(newMissingError(string(hdr.name) + " value"))
	}
	return errtrace.Wrap2(renderLines(w, hdr, opts, len(hdr.Values), func(w io.Writer, i int) (int, error) {
		return errtrace.Wrap2(io.WriteString(w, hdr.Values[i]))
	}))
}

func (hdr *Text) Render(opts *RenderOptions) (string, error) {
	return errtrace.Wrap2(renderString(hdr, opts))
}

// RenderValue returns all values joined with a comma.
func (hdr *Text) RenderValue() string {
	if hdr == nil {
		return ""
	}
	return strings.Join(hdr.Values, ", ")
}

func (hdr *Text) String() string { return hdr.RenderValue() }

func (hdr *Text) Format(f fmt.State, verb rune) {
	type hideMethods Text
	type Text hideMethods
	formatHeader(f, verb, hdr, (*Text)(hdr))
}

func (hdr *Text) Clone() Header {
	if hdr == nil {
		return nil
	}
	return &Text{name: hdr.name, Values: slices.Clone(hdr.Values)}
}

func (hdr *Text) Equal(val any) bool {
	var other *Text
	switch v := val.(type) {
	case Text:
		other = &v
	case *Text:
		other = v
	default:
		return false
	}

	if hdr == other {
		return true
	} else if hdr == nil || other == nil {
		return false
	}
	return hdr.name.Equal(other.name) && slices.Equal(hdr.Values, other.Values)
}

// List is a header with a comma-separated list of values, e.g. Allow, Supported, Require.
// Headers with unknown names are parsed as List too.
type List struct {
	name   Name
	Values []string
}

// NewList returns a list header with the given name and values.
// Unlike other constructors, the name is kept as is, so extension headers
// render under the name they were created with.
func NewList(name string, vals ...string) *List {
	return &List{name: Name(util.TrimSP(name)), Values: vals}
}

func parseList(name Name, lines []string) (Header, error) {
	hdr := &List{name: name}
	for _, l := range lines {
		for v := range strings.SplitSeq(l, ",") {
			if v = util.TrimLWS(v); v != "" {
				hdr.Values = append(hdr.Values, v)
			}
		}
	}
	if len(hdr.Values) == 0 {
		return nil, errtrace.Wrap(newMissingError("list value"))
	}
	return hdr, nil
}

func (hdr *List) Name() Name {
	if hdr == nil {
		return ""
	}
	return hdr.name
}

func (hdr *List) CompactName() Name { return compactName(hdr.Name()) }

// RenderTo writes the header with values joined by a comma on a single line.
func (hdr *List) RenderTo(w io.Writer, opts *RenderOptions) (int, error) {
	if hdr == nil {
		return 0, nil
	}
	if len(hdr.Values) == 0 {
		return 0, errtrace.Wrap(newMissingError(string(hdr.name) + " value"))
	}
	return errtrace.Wrap2(renderLine(w, hdr, opts, hdr.renderValueTo))
}

func (hdr *List) renderValueTo(w io.Writer) (int, error) {
	return errtrace.Wrap2(io.WriteString(w, strings.Join(hdr.Values, ", ")))
}

func (hdr *List) Render(opts *RenderOptions) (string, error) {
	return errtrace.Wrap2(renderString(hdr, opts))
}

func (hdr *List) RenderValue() string {
	if hdr == nil {
		return ""
	}
	return renderValue(hdr.renderValueTo)
}

func (hdr *List) String() string { return hdr.RenderValue() }

func (hdr *List) Format(f fmt.State, verb rune) {
	type hideMethods List
	type List hideMethods
	formatHeader(f, verb, hdr, (*List)(hdr))
}

// Contains reports whether the list has the value, compared case-insensitively.
func (hdr *List) Contains(val string) bool {
	return hdr != nil && slices.ContainsFunc(hdr.Values, func(v string) bool { return util.EqFold(v, val) })
}

func (hdr *List) Clone() Header {
	if hdr == nil {
		return nil
	}
	return &List{name: hdr.name, Values: slices.Clone(hdr.Values)}
}

// Equal compares this header with another for equality.
// Values are compared case-insensitively and in order.
func (hdr *List) Equal(val any) bool {
	var other *List
	switch v := val.(type) {
	case List:
		other = &v
	case *List:
		other = v
	default:
		return false
	}

	if hdr == other {
		return true
	} else if hdr == nil || other == nil {
		return false
	}
	return hdr.name.Equal(other.name) && slices.EqualFunc(hdr.Values, other.Values, util.EqFold[string, string])
}
