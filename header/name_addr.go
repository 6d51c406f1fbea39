package header

import (
	"fmt"
	"io"
	"strings"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipmsg/internal/grammar"
	"github.com/ghettovoice/sipmsg/internal/ioutil"
	"github.com/ghettovoice/sipmsg/internal/util"
	"github.com/ghettovoice/sipmsg/uri"
)

// NameAddr is a header with a single name-addr or addr-spec value and parameters,
// e.g. From, To, Reply-To, Refer-To.
//
//	From: "Bob" <sips:bob@biloxi.com>;tag=a48s
type NameAddr struct {
	name        Name
	DisplayName string
	URI         *uri.URI
	Tag         string
	Params      Params
}

// NewNameAddr returns a name-addr header with the given name, display name and URI.
func NewNameAddr(name, displayName string, u *uri.URI) *NameAddr {
	return &NameAddr{name: CanonicName(name), DisplayName: displayName, URI: u}
}

func nameAddrParser(requireTag bool) parseFunc {
	return func(name Name, lines []string) (Header, error) {
		s, err := singleLine(lines)
		if err != nil {
			return nil, errtrace.Wrap(err)
		}
		na, err := parseAddrValue(s)
		if err != nil {
			return nil, errtrace.Wrap(err)
		}

		hdr := &NameAddr{name: name, DisplayName: na.display, URI: na.uri}
		if hdr.Params, err = parseParams(na.params, true); err != nil {
			return nil, errtrace.Wrap(err)
		}
		if tag, ok := hdr.Params.Get("tag"); ok {
			hdr.Tag = tag
			hdr.Params = hdr.Params.Del("tag")
		}
		if requireTag && hdr.Tag == "" {
			return nil, errtrace.Wrap(newMissingError("tag parameter"))
		}
		return hdr, nil
	}
}

type addrValue struct {
	display string
	uri     *uri.URI
	params  []string
}

// parseAddrValue parses a single name-addr or addr-spec followed by ;params.
//
//	name-addr = [ display-name ] LAQUOT addr-spec RAQUOT
//	addr-spec = SIP-URI / SIPS-URI / absoluteURI
//
// In the addr-spec form everything after the first ';' is a header parameter,
// and a display name may precede the address separated by whitespace.
func parseAddrValue(s string) (addrValue, error) {
	var (
		val        addrValue
		open, end  = -1, -1
		addr, rest string
	)

	s = util.TrimLWS(s)
	sc := grammar.NewScanner(s)
	for {
		c, st, ok := sc.Next()
		if !ok {
			break
		}
		if c == '<' && st == grammar.Unquoted {
			open = sc.Pos() - 1
		} else if c == '>' && st == grammar.InAngleBrackets {
			end = sc.Pos() - 1
			break
		}
	}
	if err := sc.Err(); err != nil {
		return val, errtrace.Wrap(wrapMalformed(err))
	}

	if open >= 0 {
		display := util.TrimLWS(s[:open])
		switch {
		case display == "":
		case display[0] == '"':
			if !grammar.IsQuoted(display) {
				return val, errtrace.Wrap(newMalformedError("malformed display name %s", display))
			}
			val.display = grammar.Unquote(display)
		default:
			if strings.ContainsAny(display, `"\`) {
				return val, errtrace.Wrap(newMalformedError("malformed display name %s", display))
			}
			val.display = display
		}
		addr, rest = s[open+1:end], s[end+1:]
	} else {
		var err error
		if addr, rest, val.display, err = splitBareAddr(s); err != nil {
			return val, errtrace.Wrap(err)
		}
	}

	if addr = util.TrimLWS(addr); addr == "" {
		return val, errtrace.Wrap(newMissingError("addr-spec"))
	}
	u, err := uri.Parse(addr)
	if err != nil {
		return val, errtrace.Wrap(wrapMalformed(err))
	}
	val.uri = u

	if rest = util.TrimLWS(rest); rest != "" {
		if rest[0] != ';' {
			return val, errtrace.Wrap(newMalformedError("unexpected %q after address", rest))
		}
		if val.params, err = grammar.Split(rest[1:], ';'); err != nil {
			return val, errtrace.Wrap(wrapMalformed(err))
		}
	}
	return val, nil
}

// splitBareAddr splits an addr-spec value without angle brackets.
// The last whitespace-separated run before the first ';' is the address,
// anything before it is the display name.
func splitBareAddr(s string) (addr, rest, display string, err error) {
	quoted := s != "" && s[0] == '"'
	if quoted {
		if display, s, err = grammar.ReadQuoted(s); err != nil {
			return "", "", "", errtrace.Wrap(wrapMalformed(err))
		}
	}

	if i := strings.IndexByte(s, ';'); i >= 0 {
		addr, rest = s[:i], s[i:]
	} else {
		addr = s
	}
	addr = util.TrimLWS(addr)
	if i := strings.LastIndexAny(addr, " \t"); i >= 0 {
		token := util.TrimLWS(addr[:i])
		if quoted || strings.ContainsAny(token, `"\<>`) {
			return "", "", "", errtrace.Wrap(newMalformedError("malformed display name in %q", s))
		}
		display, addr = token, addr[i+1:]
	}
	return addr, rest, display, nil
}

func renderAddr(w io.Writer, display string, u *uri.URI) (int, error) {
	if u == nil {
		return 0, errtrace.Wrap(newMissingError("URI"))
	}
	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	if display != "" {
		cw.Fprint(grammar.Quote(display), " ")
	}
	cw.WriteString("<")
	cw.Call(func(w io.Writer) (int, error) { return u.RenderTo(w, nil) })
	cw.WriteString(">")
	return errtrace.Wrap2(cw.Result())
}

func (hdr *NameAddr) Name() Name {
	if hdr == nil {
		return ""
	}
	return hdr.name
}

func (hdr *NameAddr) CompactName() Name { return compactName(hdr.Name()) }

// RenderTo writes the header to the provided writer.
// The address is always rendered in the name-addr form.
func (hdr *NameAddr) RenderTo(w io.Writer, opts *RenderOptions) (int, error) {
	if hdr == nil {
		return 0, nil
	}
	if hdr.URI == nil {
		return 0, errtrace.Wrap(newMissingError(string(hdr.name) + " URI"))
	}
	return errtrace.Wrap2(renderLine(w, hdr, opts, hdr.renderValueTo))
}

func (hdr *NameAddr) renderValueTo(w io.Writer) (int, error) {
	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	cw.Call(func(w io.Writer) (int, error) { return renderAddr(w, hdr.DisplayName, hdr.URI) })
	if hdr.Tag != "" {
		cw.Fprint(";tag=", hdr.Tag)
	}
	cw.Call(func(w io.Writer) (int, error) { return renderParams(w, hdr.Params) })
	return errtrace.Wrap2(cw.Result())
}

func (hdr *NameAddr) Render(opts *RenderOptions) (string, error) {
	return errtrace.Wrap2(renderString(hdr, opts))
}

func (hdr *NameAddr) RenderValue() string {
	if hdr == nil {
		return ""
	}
	return renderValue(hdr.renderValueTo)
}

func (hdr *NameAddr) String() string { return hdr.RenderValue() }

func (hdr *NameAddr) Format(f fmt.State, verb rune) {
	type hideMethods NameAddr
	type NameAddr hideMethods
	formatHeader(f, verb, hdr, (*NameAddr)(hdr))
}

func (hdr *NameAddr) Clone() Header {
	if hdr == nil {
		return nil
	}
	hdr2 := *hdr
	hdr2.URI = hdr.URI.Clone()
	hdr2.Params = hdr.Params.Clone()
	return &hdr2
}

// Equal compares this header with another for equality.
// URIs are compared structurally, tags case-sensitively.
func (hdr *NameAddr) Equal(val any) bool {
	var other *NameAddr
	switch v := val.(type) {
	case NameAddr:
		other = &v
	case *NameAddr:
		other = v
	default:
		return false
	}

	if hdr == other {
		return true
	} else if hdr == nil || other == nil {
		return false
	}
	return hdr.name.Equal(other.name) &&
		hdr.DisplayName == other.DisplayName &&
		hdr.URI.Equal(other.URI) &&
		hdr.Tag == other.Tag &&
		hdr.Params.Equal(other.Params)
}
