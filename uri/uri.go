package uri

//go:generate go tool errtrace -w .

import (
	"fmt"
	"io"
	"strconv"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipmsg/internal/errorutil"
	"github.com/ghettovoice/sipmsg/internal/grammar"
	"github.com/ghettovoice/sipmsg/internal/ioutil"
	"github.com/ghettovoice/sipmsg/internal/types"
	"github.com/ghettovoice/sipmsg/internal/util"
)

// ErrInvalidURI is returned when a URI cannot be parsed, rendered or compared.
const ErrInvalidURI errorutil.Error = "invalid URI"

// Addr represents a network address consisting of a host and optional port.
type Addr = types.Addr

// Host creates an Addr from a hostname without a port.
func Host(host string) Addr { return types.Host(host) }

// HostPort creates an Addr from a hostname and port.
func HostPort(host string, port uint16) Addr { return types.HostPort(host, port) }

// Params is an ordered list of URI parameters or URI headers.
type Params = types.Params

// RenderOptions contains options for rendering URIs.
type RenderOptions = types.RenderOptions

// URI is a parsed URI.
// Scheme and Addr host are mandatory for rendering and comparison.
type URI struct {
	Scheme   string
	User     string
	Password string
	Addr     Addr

	Transport string
	MAddr     string
	TTL       *uint
	UserParam string
	Method    string
	LR        bool

	// Params holds extension parameters.
	Params Params
	// Headers holds the URI headers, the query component after "?".
	Headers Params

	// Opaque is the text after the scheme of a non-SIP URI as it was parsed.
	// When set, it is rendered instead of the components above.
	Opaque string
}

// IsSecured reports whether u is a sips URI.
func (u *URI) IsSecured() bool { return u != nil && u.Scheme == "sips" }

// IsSIP reports whether u has sip or sips scheme.
func (u *URI) IsSIP() bool { return u != nil && isSIPScheme(u.Scheme) }

func isSIPScheme(s string) bool { return s == "sip" || s == "sips" }

// Clone returns a deep copy of the URI.
func (u *URI) Clone() *URI {
	if u == nil {
		return nil
	}
	u2 := *u
	if u.TTL != nil {
		u2.TTL = util.Ptr(*u.TTL)
	}
	u2.Params = u.Params.Clone()
	u2.Headers = u.Headers.Clone()
	return &u2
}

func (u *URI) validate() error {
	if u.Scheme == "" {
		return errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidURI, "missing scheme"))
	}
	if u.Addr.Host() == "" {
		return errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidURI, "missing host"))
	}
	return nil
}

// RenderTo writes the URI to w.
// It fails with [ErrInvalidURI] if the scheme or the host is missing.
func (u *URI) RenderTo(w io.Writer, _ *RenderOptions) (num int, err error) {
	if u == nil {
		return 0, errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidURI, "nil URI"))
	}
	if err := u.validate(); err != nil {
		return 0, errtrace.Wrap(err)
	}

	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	cw.Fprint(u.Scheme, ":")
	if u.Opaque != "" && !u.IsSIP() {
		cw.WriteString(u.Opaque)
		return errtrace.Wrap2(cw.Result())
	}
	if u.User != "" || u.Password != "" {
		cw.WriteString(grammar.Escape(u.User, shouldEscapeUserChar))
		if u.Password != "" {
			cw.Fprint(":", grammar.Escape(u.Password, shouldEscapePasswdChar))
		}
		cw.WriteString("@")
	}
	cw.WriteString(u.Addr.String())
	cw.Call(u.renderParams)
	cw.Call(u.renderHeaders)
	return errtrace.Wrap2(cw.Result())
}

func (u *URI) renderParams(w io.Writer) (int, error) {
	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	for _, p := range u.knownParams() {
		cw.Fprint(";", p.Name)
		if p.Value != "" {
			cw.Fprint("=", escapeParam(p.Value))
		}
	}
	cw.Call(func(w io.Writer) (int, error) {
		return errtrace.Wrap2(u.Params.RenderTo(w, ";", ";", escapeParam))
	})
	return errtrace.Wrap2(cw.Result())
}

func (u *URI) knownParams() Params {
	var ps Params
	if u.Transport != "" {
		ps = append(ps, types.Param{Name: "transport", Value: u.Transport})
	}
	if u.MAddr != "" {
		ps = append(ps, types.Param{Name: "maddr", Value: u.MAddr})
	}
	if u.TTL != nil {
		ps = append(ps, types.Param{Name: "ttl", Value: strconv.FormatUint(uint64(*u.TTL), 10)})
	}
	if u.UserParam != "" {
		ps = append(ps, types.Param{Name: "user", Value: u.UserParam})
	}
	if u.Method != "" {
		ps = append(ps, types.Param{Name: "method", Value: u.Method})
	}
	if u.LR {
		ps = append(ps, types.Param{Name: "lr"})
	}
	return ps
}

func (u *URI) renderHeaders(w io.Writer) (int, error) {
	if len(u.Headers) == 0 {
		return 0, nil
	}

	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	for i, h := range u.Headers {
		if i == 0 {
			cw.WriteString("?")
		} else {
			cw.WriteString("&")
		}
		cw.Fprint(escapeHeader(h.Name), "=", escapeHeader(h.Value))
	}
	return errtrace.Wrap2(cw.Result())
}

// Render returns the string representation of the URI.
func (u *URI) Render(opts *RenderOptions) (string, error) {
	return errtrace.Wrap2(types.RenderString(u.RenderTo, opts))
}

// String returns the string representation of the URI.
// It returns an empty string if the URI can not be rendered.
func (u *URI) String() string {
	s, _ := u.Render(nil)
	return s
}

// Format implements fmt.Formatter for custom formatting of the URI.
func (u *URI) Format(f fmt.State, verb rune) {
	switch verb {
	case 's':
		if f.Flag('+') {
			u.RenderTo(f, nil) //nolint:errcheck
			return
		}
		fmt.Fprint(f, u.String())
		return
	case 'q':
		fmt.Fprint(f, strconv.Quote(u.String()))
		return
	default:
		if !f.Flag('+') && !f.Flag('#') {
			fmt.Fprint(f, u.String())
			return
		}

		type hideMethods URI
		type URI hideMethods
		fmt.Fprintf(f, fmt.FormatString(f, verb), (*URI)(u))
		return
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (u *URI) MarshalText() ([]byte, error) {
	s, err := u.Render(nil)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	return []byte(s), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (u *URI) UnmarshalText(text []byte) error {
	u1, err := Parse(text)
	if err != nil {
		*u = URI{}
		return errtrace.Wrap(err)
	}
	*u = *u1
	return nil
}

// Equal reports whether u and val hold exactly the same components.
// It accepts URI and *URI values. For the RFC 3261 comparison see [URI.IsEquivalent].
func (u *URI) Equal(val any) bool {
	var other *URI
	switch v := val.(type) {
	case URI:
		other = &v
	case *URI:
		other = v
	default:
		return false
	}

	if u == other {
		return true
	} else if u == nil || other == nil {
		return false
	}

	return u.Scheme == other.Scheme &&
		u.User == other.User &&
		u.Password == other.Password &&
		u.Addr.Equal(other.Addr) &&
		u.sameKnownParams(other) &&
		u.Params.Equal(other.Params) &&
		u.Headers.Equal(other.Headers) &&
		u.Opaque == other.Opaque
}

func (u *URI) sameKnownParams(other *URI) bool {
	if (u.TTL == nil) != (other.TTL == nil) || u.TTL != nil && *u.TTL != *other.TTL {
		return false
	}
	return u.Transport == other.Transport &&
		u.MAddr == other.MAddr &&
		u.UserParam == other.UserParam &&
		u.Method == other.Method &&
		u.LR == other.LR
}

// IsEquivalent compares u with other according to RFC 3261 Section 19.1.4.
//
// Scheme, user, password, host, port and the well-known parameters must match,
// with presence mattering as much as the value. Extension parameters are
// compared only when both URIs carry them. URI headers must be equal as sets.
//
// It fails with [ErrInvalidURI] if either URI lacks the scheme or the host.
func (u *URI) IsEquivalent(other *URI) (bool, error) {
	if u == nil || other == nil {
		return false, errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidURI, "nil URI"))
	}
	if err := u.validate(); err != nil {
		return false, errtrace.Wrap(err)
	}
	if err := other.validate(); err != nil {
		return false, errtrace.Wrap(err)
	}

	if !util.EqFold(u.Scheme, other.Scheme) ||
		u.User != other.User ||
		u.Password != other.Password ||
		!u.Addr.Equal(other.Addr) ||
		!u.sameKnownParams(other) {
		return false, nil
	}
	for _, p := range u.Params {
		if v, ok := other.Params.Get(p.Name); ok && !util.EqFold(v, p.Value) {
			return false, nil
		}
	}
	return u.Headers.Equal(other.Headers), nil
}

func shouldEscapeUserChar(c byte) bool { return !grammar.IsURIUserCharUnreserved(c) }

func shouldEscapePasswdChar(c byte) bool { return !grammar.IsURIPasswdCharUnreserved(c) }

func escapeParam(s string) string {
	return grammar.Escape(s, func(c byte) bool { return !grammar.IsURIParamCharUnreserved(c) })
}

func escapeHeader(s string) string {
	return grammar.Escape(s, func(c byte) bool { return !grammar.IsURIHeaderCharUnreserved(c) })
}
