package header

//go:generate go tool errtrace -w .

import (
	"fmt"
	"io"
	"net/textproto"
	"strconv"
	"strings"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipmsg/internal/errorutil"
	"github.com/ghettovoice/sipmsg/internal/grammar"
	"github.com/ghettovoice/sipmsg/internal/ioutil"
	"github.com/ghettovoice/sipmsg/internal/types"
	"github.com/ghettovoice/sipmsg/internal/util"
)

const (
	ErrMalformedValue   = errorutil.ErrMalformedValue
	ErrInvalidParameter = errorutil.ErrInvalidParameter
	ErrMissingValue     = errorutil.ErrMissingValue
	ErrOutOfBounds      = errorutil.ErrOutOfBounds

	// ErrDuplicateHeader is returned when a single-value header has more than one line.
	ErrDuplicateHeader errorutil.Error = "duplicate single-value header"
	// ErrUnsupportedProtocolVersion is returned for a Via entry with other than SIP/2.0 protocol.
	ErrUnsupportedProtocolVersion errorutil.Error = "unsupported protocol version"
)

// Addr represents a network address consisting of a host and optional port.
type Addr = types.Addr

// Host creates an Addr from a hostname without a port.
func Host(host string) Addr { return types.Host(host) }

// HostPort creates an Addr from a hostname and port.
func HostPort(host string, port uint16) Addr { return types.HostPort(host, port) }

// ParseAddr parses a network address from the given input s (string or []byte).
func ParseAddr[T ~string | ~[]byte](s T) (Addr, error) { return errtrace.Wrap2(types.ParseAddr(string(s))) }

// Params is an ordered list of header parameters.
type Params = types.Params

// Param is a single header parameter.
type Param = types.Param

// RequestMethod represents a SIP request method (INVITE, ACK, BYE, etc.).
type RequestMethod = types.RequestMethod

// TransportProto represents a transport protocol (UDP, TCP, TLS, SCTP, WS, WSS).
type TransportProto = types.TransportProto

// RenderOptions contains options for rendering headers and URIs.
type RenderOptions = types.RenderOptions

// Header represents a parsed SIP header field.
type Header interface {
	types.Renderer
	types.Cloneable[Header]
	types.Equalable
	// Name returns the canonical header name.
	Name() Name
	// CompactName returns the one-letter alias, or the canonical name if the header has none.
	CompactName() Name
	// RenderValue returns the header value without the name prefix.
	RenderValue() string
	String() string
}

// Name represents a SIP header name.
type Name string

// ToCanonic converts the Name to its canonical form.
func (n Name) ToCanonic() Name { return CanonicName(n) }

// Key returns the lower-case full name.
func (n Name) Key() string { return Expand(n) }

// IsValid checks whether the Name is syntactically valid.
func (n Name) IsValid() bool { return grammar.IsToken(n) }

// Equal compares this Name with another for equality.
func (n Name) Equal(val any) bool {
	var other Name
	switch v := val.(type) {
	case Name:
		other = v
	case *Name:
		if v == nil {
			return false
		}
		other = *v
	default:
		return false
	}
	return Expand(n) == Expand(other)
}

var compactNames = map[string]string{
	"c": "content-type",
	"e": "content-encoding",
	"f": "from",
	"i": "call-id",
	"k": "supported",
	"l": "content-length",
	"m": "contact",
	"o": "event",
	"r": "refer-to",
	"s": "subject",
	"t": "to",
	"u": "allow-events",
	"v": "via",
}

var fullNames = func() map[string]Name {
	m := make(map[string]Name, len(compactNames))
	for c, n := range compactNames {
		m[n] = Name(c)
	}
	return m
}()

var hdrNames = map[string]Name{
	"Call-Id":          "Call-ID",
	"Cseq":             "CSeq",
	"Mime-Version":     "MIME-Version",
	"Rack":             "RAck",
	"Rseq":             "RSeq",
	"Www-Authenticate": "WWW-Authenticate",
}

// CanonicName converts name to the canonical form.
// The canonicalization converts the first letter and any letter following a hyphen to upper case;
// the rest are converted to lowercase. For example, the canonical name for "accept-encoding" is "Accept-Encoding".
// Also, any compact name is converted to its full canonical form. For example, "c" converts to "Content-Type".
func CanonicName[T ~string](name T) Name {
	s := util.TrimSP(string(name))
	if full, ok := compactNames[util.LCase(s)]; ok {
		s = full
	}
	s = textproto.CanonicalMIMEHeaderKey(s)
	if n, ok := hdrNames[s]; ok {
		return n
	}
	return Name(s)
}

// Expand returns the lower-case full name of the header.
// Compact aliases are expanded: "v" -> "via".
func Expand[T ~string](name T) string {
	s := util.LCase(util.TrimSP(string(name)))
	if full, ok := compactNames[s]; ok {
		return full
	}
	return s
}

func compactName(n Name) Name {
	if c, ok := fullNames[Expand(n)]; ok {
		return c
	}
	return n
}

// RenderOrder lists lower-case header names in the order a message renders them.
// Headers not listed are rendered after these in the order they were added.
var RenderOrder = []string{
	"via",
	"from",
	"to",
	"contact",
	"call-id",
	"cseq",
	"max-forwards",
	"content-length",
	"expires",
	"min-expires",
	"retry-after",
	"timestamp",
	"content-type",
	"content-disposition",
	"event",
	"subscription-state",
	"accept-encoding",
	"allow",
	"allow-events",
	"content-encoding",
	"in-reply-to",
	"require",
	"supported",
	"unsupported",
	"proxy-require",
	"accept",
	"accept-language",
	"call-info",
	"content-language",
	"reply-to",
	"alert-info",
	"authentication-info",
	"authorization",
	"date",
	"error-info",
	"proxy-authenticate",
	"proxy-authorization",
	"record-route",
	"mime-version",
	"organization",
	"priority",
	"route",
	"subject",
	"server",
	"user-agent",
	"warning",
	"www-authenticate",
	"refer-to",
	"referred-by",
	"rack",
	"rseq",
}

type parseFunc func(name Name, lines []string) (Header, error)

var parsers map[string]parseFunc

func init() {
	parsers = map[string]parseFunc{
		"accept":              parseParamValueList,
		"accept-encoding":     parseList,
		"accept-language":     parseParamValueList,
		"alert-info":          parseText,
		"allow":               parseList,
		"allow-events":        parseList,
		"authentication-info": parseText,
		"authorization":       parseCredentials,
		"call-id":             parseCallID,
		"call-info":           parseParamValueList,
		"contact":             parseContact,
		"content-disposition": parseParamValue,
		"content-encoding":    parseList,
		"content-language":    parseParamValueList,
		"content-length":      scalarParser(maxScalar),
		"content-type":        parseParamValue,
		"cseq":                parseCSeq,
		"date":                parseText,
		"error-info":          parseText,
		"event":               parseParamValue,
		"expires":             scalarParser(maxScalar),
		"from":                nameAddrParser(true),
		"in-reply-to":         parseList,
		"max-forwards":        scalarParser(maxForwards),
		"mime-version":        parseText,
		"min-expires":         scalarParser(maxScalar),
		"organization":        parseText,
		"priority":            parseText,
		"proxy-authenticate":  parseChallenge,
		"proxy-authorization": parseCredentials,
		"proxy-require":       parseList,
		"rack":                parseRAck,
		"record-route":        parseText,
		"refer-to":            nameAddrParser(false),
		"referred-by":         nameAddrParser(false),
		"reply-to":            nameAddrParser(false),
		"require":             parseList,
		"retry-after":         parseParamValue,
		"route":               parseText,
		"rseq":                scalarParser(maxScalar),
		"server":              parseText,
		"subject":             parseText,
		"subscription-state":  parseParamValue,
		"supported":           parseList,
		"timestamp":           parseText,
		"to":                  nameAddrParser(false),
		"unsupported":         parseList,
		"user-agent":          parseText,
		"via":                 parseVia,
		"warning":             parseText,
		"www-authenticate":    parseChallenge,
	}
}

// IsKnown reports whether name has a dedicated entry in the parser table.
// Unknown headers are parsed as [List].
func IsKnown[T ~string](name T) bool {
	_, ok := parsers[Expand(name)]
	return ok
}

// Parse parses the value lines of the header with the given name.
// Each element of lines is the value of one header line with folding already resolved.
// Lines that are empty after trimming are ignored.
func Parse(name string, lines []string) (Header, error) {
	name = util.TrimSP(name)
	if !grammar.IsToken(name) {
		return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrMalformedValue, "invalid header name %q", name))
	}

	vals := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = util.TrimLWS(l); l != "" {
			vals = append(vals, l)
		}
	}
	if len(vals) == 0 {
		return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrMissingValue, "empty %s header", name))
	}

	if p, ok := parsers[Expand(name)]; ok {
		hdr, err := p(CanonicName(name), vals)
		if err != nil {
			return nil, errtrace.Wrap(fmt.Errorf("%s: %w", CanonicName(name), err))
		}
		return hdr, nil
	}
	return errtrace.Wrap2(parseList(Name(name), vals))
}

// ParseLine parses a single "Name: value" header line.
func ParseLine[T ~string | ~[]byte](s T) (Header, error) {
	name, val, ok := strings.Cut(string(s), ":")
	if !ok {
		return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrMalformedValue, "missing colon"))
	}
	return errtrace.Wrap2(Parse(name, []string{val}))
}

func singleLine(lines []string) (string, error) {
	if len(lines) > 1 {
		return "", errtrace.Wrap(ErrDuplicateHeader)
	}
	return lines[0], nil
}

const (
	maxScalar   = 1<<32 - 1
	maxForwards = 255
)

// parseUint parses a bounded unsigned decimal.
// Syntax errors are ErrMalformedValue, a sign or a value above max is ErrOutOfBounds.
func parseUint(s string, maxVal uint64) (uint64, error) {
	neg := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")
	if !grammar.IsDigits(digits) {
		return 0, errtrace.Wrap(errorutil.NewWrapperError(ErrMalformedValue, "not a number %q", s))
	}
	if neg {
		return 0, errtrace.Wrap(errorutil.NewWrapperError(ErrOutOfBounds, "negative value %s", s))
	}
	v, err := strconv.ParseUint(digits, 10, 64)
	if err != nil || v > maxVal {
		return 0, errtrace.Wrap(errorutil.NewWrapperError(ErrOutOfBounds, "%s exceeds %d", s, maxVal))
	}
	return v, nil
}

// parseParams parses "key[=value]" segments.
// With strict set, repeated keys are an error, otherwise the last one wins.
func parseParams(segs []string, strict bool) (Params, error) {
	var ps Params
	for _, seg := range segs {
		k, v, _ := strings.Cut(seg, "=")
		k, v = util.TrimLWS(k), util.TrimLWS(v)
		if !grammar.IsToken(k) {
			return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidParameter, "malformed parameter %q", util.TrimLWS(seg)))
		}
		if !strict {
			ps = ps.Set(k, v)
			continue
		}
		var ok bool
		if ps, ok = ps.Add(k, v); !ok {
			return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidParameter, "duplicate parameter %q", k))
		}
	}
	return ps, nil
}

func renderParams(w io.Writer, ps Params) (int, error) {
	return errtrace.Wrap2(ps.RenderTo(w, ";", ";", nil))
}

func headerName(hdr Header, opts *RenderOptions) Name {
	if opts.IsCompact() {
		return hdr.CompactName()
	}
	return hdr.Name()
}

// renderLines writes n "Name: value" lines separated by CRLF.
func renderLines(w io.Writer, hdr Header, opts *RenderOptions, n int, fn func(w io.Writer, i int) (int, error)) (int, error) {
	name := headerName(hdr, opts)
	if name == "" {
		return 0, errtrace.Wrap(errorutil.NewWrapperError(ErrMissingValue, "header name"))
	}

	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	for i := range n {
		if i > 0 {
			cw.WriteString(ioutil.CRLF)
		}
		cw.Fprint(name, ": ")
		cw.Call(func(w io.Writer) (int, error) { return fn(w, i) })
	}
	return errtrace.Wrap2(cw.Result())
}

func renderLine(w io.Writer, hdr Header, opts *RenderOptions, fn func(w io.Writer) (int, error)) (int, error) {
	return errtrace.Wrap2(renderLines(w, hdr, opts, 1, func(w io.Writer, _ int) (int, error) { return fn(w) }))
}

func renderValue(fn func(w io.Writer) (int, error)) string {
	sb := util.GetStringBuilder()
	defer util.FreeStringBuilder(sb)
	fn(sb) //nolint:errcheck
	return sb.String()
}

func joinValues[E any](w io.Writer, vals []E, fn func(w io.Writer, v E) (int, error)) (int, error) {
	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	for i, v := range vals {
		if i > 0 {
			cw.WriteString(", ")
		}
		cw.Call(func(w io.Writer) (int, error) { return fn(w, v) })
	}
	return errtrace.Wrap2(cw.Result())
}

// formatHeader implements fmt.Formatter for headers:
// %s prints the value, %+s the full header, %q and %+q their quoted forms.
// Other verbs print v, which must be a method-less copy of hdr.
func formatHeader(f fmt.State, verb rune, hdr Header, v any) {
	switch verb {
	case 's':
		if f.Flag('+') {
			hdr.RenderTo(f, nil) //nolint:errcheck
			return
		}
		fmt.Fprint(f, hdr.String())
	case 'q':
		if f.Flag('+') {
			s, _ := hdr.Render(nil)
			fmt.Fprint(f, strconv.Quote(s))
			return
		}
		fmt.Fprint(f, strconv.Quote(hdr.String()))
	default:
		fmt.Fprintf(f, fmt.FormatString(f, verb), v)
	}
}

func renderString(hdr Header, opts *RenderOptions) (string, error) {
	return errtrace.Wrap2(types.RenderString(hdr.RenderTo, opts))
}

func newMalformedError(format string, args ...any) error {
	return errorutil.NewWrapperError(ErrMalformedValue, append([]any{format}, args...)...) //errtrace:skip
}

func newMissingError(what string) error {
	return errorutil.NewWrapperError(ErrMissingValue, what) //errtrace:skip
}

func wrapMalformed(err error) error {
	return errorutil.NewWrapperError(ErrMalformedValue, err) //errtrace:skip
}
