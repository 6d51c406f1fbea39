package header

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipmsg/internal/errorutil"
	"github.com/ghettovoice/sipmsg/internal/grammar"
	"github.com/ghettovoice/sipmsg/internal/ioutil"
	"github.com/ghettovoice/sipmsg/internal/util"
	"github.com/ghettovoice/sipmsg/uri"
)

// Contact represents the Contact header field.
// It holds either a list of addresses or the wildcard "*" used in REGISTER requests.
type Contact struct {
	Wildcard bool
	Values   []ContactEntry
}

// ContactEntry is a single Contact address.
// The q and expires parameters are kept in dedicated fields.
type ContactEntry struct {
	DisplayName string
	URI         *uri.URI
	Q           *float64
	Expires     *uint32
	Params      Params
}

func parseContact(_ Name, lines []string) (Header, error) {
	hdr := &Contact{}
	for _, l := range lines {
		items, err := grammar.Split(l, ',')
		if err != nil {
			return nil, errtrace.Wrap(wrapMalformed(err))
		}
		for _, item := range items {
			if item = util.TrimLWS(item); item == "" {
				continue
			}
			if item == "*" {
				if hdr.Wildcard {
					return nil, errtrace.Wrap(newMalformedError("wildcard must be the only value"))
				}
				hdr.Wildcard = true
				continue
			}
			e, err := parseContactEntry(item)
			if err != nil {
				return nil, errtrace.Wrap(err)
			}
			hdr.Values = append(hdr.Values, e)
		}
	}

	switch {
	case hdr.Wildcard && (len(hdr.Values) > 0 || len(lines) > 1):
		return nil, errtrace.Wrap(newMalformedError("wildcard must be the only value"))
	case !hdr.Wildcard && len(hdr.Values) == 0:
		return nil, errtrace.Wrap(newMissingError("contact address"))
	}
	return hdr, nil
}

func parseContactEntry(s string) (ContactEntry, error) {
	var e ContactEntry
	val, err := parseAddrValue(s)
	if err != nil {
		return e, errtrace.Wrap(err)
	}
	e.DisplayName, e.URI = val.display, val.uri

	ps, err := parseParams(val.params, true)
	if err != nil {
		return e, errtrace.Wrap(err)
	}
	for _, p := range ps {
		switch util.LCase(p.Name) {
		case "q":
			q, err := strconv.ParseFloat(p.Value, 64)
			if err != nil || q < 0 || q > 1 {
				return e, errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidParameter, "invalid q %q", p.Value))
			}
			e.Q = &q
		case "expires":
			exp, err := parseUint(p.Value, maxScalar)
			if err != nil {
				return e, errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidParameter, err))
			}
			e.Expires = util.Ptr(uint32(exp))
		default:
			e.Params = append(e.Params, p)
		}
	}
	return e, nil
}

func (e ContactEntry) renderTo(w io.Writer) (int, error) {
	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	cw.Call(func(w io.Writer) (int, error) { return renderAddr(w, e.DisplayName, e.URI) })
	if e.Q != nil {
		cw.Fprint(";q=", strconv.FormatFloat(*e.Q, 'f', -1, 64))
	}
	if e.Expires != nil {
		cw.Fprint(";expires=", *e.Expires)
	}
	cw.Call(func(w io.Writer) (int, error) { return renderParams(w, e.Params) })
	return errtrace.Wrap2(cw.Result())
}

func (e ContactEntry) String() string { return renderValue(e.renderTo) }

func (e ContactEntry) Clone() ContactEntry {
	e2 := e
	e2.URI = e.URI.Clone()
	if e.Q != nil {
		e2.Q = util.Ptr(*e.Q)
	}
	if e.Expires != nil {
		e2.Expires = util.Ptr(*e.Expires)
	}
	e2.Params = e.Params.Clone()
	return e2
}

func (e ContactEntry) Equal(val any) bool {
	var other ContactEntry
	switch v := val.(type) {
	case ContactEntry:
		other = v
	case *ContactEntry:
		if v == nil {
			return false
		}
		other = *v
	default:
		return false
	}
	return e.DisplayName == other.DisplayName &&
		e.URI.Equal(other.URI) &&
		ptrEqual(e.Q, other.Q) &&
		ptrEqual(e.Expires, other.Expires) &&
		e.Params.Equal(other.Params)
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (*Contact) Name() Name { return "Contact" }

func (*Contact) CompactName() Name { return "m" }

// RenderTo writes the header to the provided writer.
// Entries are joined by a comma on a single line.
func (hdr *Contact) RenderTo(w io.Writer, opts *RenderOptions) (int, error) {
	if hdr == nil {
		return 0, nil
	}
	switch {
	case hdr.Wildcard && len(hdr.Values) > 0:
		return 0, errtrace.Wrap(newMalformedError("wildcard must be the only value"))
	case !hdr.Wildcard && len(hdr.Values) == 0:
		return 0, errtrace.Wrap(newMissingError("contact address"))
	}
	return errtrace.Wrap2(renderLine(w, hdr, opts, hdr.renderValueTo))
}

func (hdr *Contact) renderValueTo(w io.Writer) (int, error) {
	if hdr.Wildcard {
		return errtrace.Wrap2(io.WriteString(w, "*"))
	}
	return errtrace.Wrap2(joinValues(w, hdr.Values, func(w io.Writer, e ContactEntry) (int, error) {
		return errtrace.Wrap2(e.renderTo(w))
	}))
}

func (hdr *Contact) Render(opts *RenderOptions) (string, error) {
	return errtrace.Wrap2(renderString(hdr, opts))
}

func (hdr *Contact) RenderValue() string {
	if hdr == nil {
		return ""
	}
	return renderValue(hdr.renderValueTo)
}

func (hdr *Contact) String() string { return hdr.RenderValue() }

func (hdr *Contact) Format(f fmt.State, verb rune) {
	type hideMethods Contact
	type Contact hideMethods
	formatHeader(f, verb, hdr, (*Contact)(hdr))
}

func (hdr *Contact) Clone() Header {
	if hdr == nil {
		return nil
	}
	hdr2 := &Contact{Wildcard: hdr.Wildcard}
	if hdr.Values != nil {
		hdr2.Values = make([]ContactEntry, len(hdr.Values))
		for i := range hdr.Values {
			hdr2.Values[i] = hdr.Values[i].Clone()
		}
	}
	return hdr2
}

func (hdr *Contact) Equal(val any) bool {
	var other *Contact
	switch v := val.(type) {
	case Contact:
		other = &v
	case *Contact:
		other = v
	default:
		return false
	}

	if hdr == other {
		return true
	} else if hdr == nil || other == nil {
		return false
	}
	return hdr.Wildcard == other.Wildcard &&
		slices.EqualFunc(hdr.Values, other.Values, func(a, b ContactEntry) bool { return a.Equal(b) })
}
