package sip

import (
	"io"
	"iter"
	"slices"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipmsg/header"
	"github.com/ghettovoice/sipmsg/internal/ioutil"
	"github.com/ghettovoice/sipmsg/internal/types"
)

var renderRank = func() map[string]int {
	m := make(map[string]int, len(header.RenderOrder))
	for i, n := range header.RenderOrder {
		m[n] = i
	}
	return m
}()

// Headers holds message header fields, one slot per header name.
//
// Slots are keyed by the lower-case full header name, so "v", "Via" and "VIA" address the same slot.
// Known headers render in [header.RenderOrder], other headers follow in the order they were added.
// The zero value is an empty set ready to use.
type Headers struct {
	hdrs  map[string]Header
	order []string
}

// NewHeaders creates a header set from the given headers.
// A later header replaces an earlier one with the same name.
func NewHeaders(hdrs ...Header) Headers {
	var hs Headers
	for _, h := range hdrs {
		hs.Set(h)
	}
	return hs
}

func hdrKey[T ~string](name T) string { return header.Expand(name) }

// Get returns the header stored under the name.
// The name can be given in any case or as a compact alias.
func (hs *Headers) Get(name string) (Header, bool) {
	if hs == nil {
		return nil, false
	}
	h, ok := hs.hdrs[hdrKey(name)]
	return h, ok
}

// Has reports whether the header with the name is present.
func (hs *Headers) Has(name string) bool {
	_, ok := hs.Get(name)
	return ok
}

// Set stores the header in the slot of its name, replacing any previous value.
// Nil headers are ignored.
func (hs *Headers) Set(hdr Header) *Headers {
	if hs == nil || hdr == nil {
		return hs
	}
	key := hdrKey(hdr.Name())
	if key == "" {
		return hs
	}
	if hs.hdrs == nil {
		hs.hdrs = make(map[string]Header)
	}
	if _, ok := hs.hdrs[key]; !ok {
		hs.order = append(hs.order, key)
	}
	hs.hdrs[key] = hdr
	return hs
}

// Del removes the header with the name.
func (hs *Headers) Del(name string) *Headers {
	if hs == nil {
		return hs
	}
	key := hdrKey(name)
	if _, ok := hs.hdrs[key]; !ok {
		return hs
	}
	delete(hs.hdrs, key)
	hs.order = slices.DeleteFunc(hs.order, func(k string) bool { return k == key })
	return hs
}

// Len returns the number of header slots.
func (hs *Headers) Len() int {
	if hs == nil {
		return 0
	}
	return len(hs.hdrs)
}

// Names returns lower-case full names of the headers in render order.
func (hs *Headers) Names() []string {
	if hs == nil || len(hs.order) == 0 {
		return nil
	}
	names := slices.Clone(hs.order)
	slices.SortStableFunc(names, func(a, b string) int {
		ra, oka := renderRank[a]
		rb, okb := renderRank[b]
		switch {
		case oka && okb:
			return ra - rb
		case oka:
			return -1
		case okb:
			return 1
		default:
			return 0
		}
	})
	return names
}

// All returns an iterator over the headers in render order.
func (hs *Headers) All() iter.Seq[Header] {
	return func(yield func(Header) bool) {
		for _, n := range hs.Names() {
			if h := hs.hdrs[n]; h != nil && !yield(h) {
				return
			}
		}
	}
}

// Via returns the Via header.
func (hs *Headers) Via() (header.Via, bool) { return getHdr[header.Via](hs, "via") }

// From returns the From header.
func (hs *Headers) From() (*header.NameAddr, bool) { return getHdr[*header.NameAddr](hs, "from") }

// To returns the To header.
func (hs *Headers) To() (*header.NameAddr, bool) { return getHdr[*header.NameAddr](hs, "to") }

// Contact returns the Contact header.
func (hs *Headers) Contact() (*header.Contact, bool) { return getHdr[*header.Contact](hs, "contact") }

// CallID returns the Call-ID header.
func (hs *Headers) CallID() (header.CallID, bool) { return getHdr[header.CallID](hs, "call-id") }

// CSeq returns the CSeq header.
func (hs *Headers) CSeq() (*header.CSeq, bool) { return getHdr[*header.CSeq](hs, "cseq") }

// ContentType returns the Content-Type header.
func (hs *Headers) ContentType() (*header.ParamValue, bool) {
	return getHdr[*header.ParamValue](hs, "content-type")
}

// MaxForwards returns the value of the Max-Forwards header.
func (hs *Headers) MaxForwards() (uint32, bool) { return scalarHdr(hs, "max-forwards") }

// ContentLength returns the value of the Content-Length header.
func (hs *Headers) ContentLength() (uint32, bool) { return scalarHdr(hs, "content-length") }

func getHdr[T Header](hs *Headers, name string) (T, bool) {
	var zero T
	h, ok := hs.Get(name)
	if !ok {
		return zero, false
	}
	v, ok := h.(T)
	return v, ok
}

func scalarHdr(hs *Headers, name string) (uint32, bool) {
	h, ok := getHdr[*header.Scalar](hs, name)
	if !ok || h == nil {
		return 0, false
	}
	return h.Value, true
}

// RenderTo writes the headers to w, each line terminated by CRLF.
func (hs *Headers) RenderTo(w io.Writer, opts *RenderOptions) (int, error) {
	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	for h := range hs.All() {
		cw.Call(func(w io.Writer) (int, error) {
			return errtrace.Wrap2(h.RenderTo(w, opts))
		}).Line()
	}
	return errtrace.Wrap2(cw.Result())
}

// Render renders the headers to a string.
func (hs *Headers) Render(opts *RenderOptions) (string, error) {
	return errtrace.Wrap2(types.RenderString(hs.RenderTo, opts))
}

func (hs *Headers) String() string {
	s, _ := hs.Render(nil)
	return s
}

// Clone returns a deep copy of the headers.
func (hs *Headers) Clone() Headers {
	if hs == nil || len(hs.hdrs) == 0 {
		return Headers{}
	}
	hs2 := Headers{
		hdrs:  make(map[string]Header, len(hs.hdrs)),
		order: slices.Clone(hs.order),
	}
	for k, h := range hs.hdrs {
		hs2.hdrs[k] = h.Clone()
	}
	return hs2
}

// Equal reports whether both sets have the same header slots with equal values.
// The order of extension headers is not compared.
func (hs *Headers) Equal(val any) bool {
	var other *Headers
	switch v := val.(type) {
	case Headers:
		other = &v
	case *Headers:
		other = v
	default:
		return false
	}

	if hs == other {
		return true
	}
	if hs.Len() != other.Len() {
		return false
	} else if hs.Len() == 0 {
		return true
	}
	for k, h := range hs.hdrs {
		h2, ok := other.hdrs[k]
		if !ok || !h.Equal(h2) {
			return false
		}
	}
	return true
}
