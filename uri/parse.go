package uri

import (
	"strconv"
	"strings"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipmsg/internal/errorutil"
	"github.com/ghettovoice/sipmsg/internal/grammar"
	"github.com/ghettovoice/sipmsg/internal/types"
	"github.com/ghettovoice/sipmsg/internal/util"
)

// Parse parses a URI from the given input s (string or []byte).
//
// The scheme and the host are lower-cased. Parameter names and values are
// unescaped and lower-cased, a repeated parameter name is an error.
// For sip and sips schemes the host must be a hostname or an IP literal,
// other schemes accept the host verbatim after stripping leading slashes
// and keep the text after the scheme in [URI.Opaque].
func Parse[T ~string | ~[]byte](s T) (*URI, error) {
	return errtrace.Wrap2(parse(string(s)))
}

func parse(s string) (*URI, error) {
	scheme, rest, ok := strings.Cut(s, ":")
	if !ok {
		return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidURI, "missing scheme delimiter in %q", s))
	}
	if !grammar.IsScheme(scheme) {
		return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidURI, "invalid scheme %q", scheme))
	}
	u := &URI{Scheme: util.LCase(scheme)}
	if !u.IsSIP() {
		u.Opaque = rest
	}

	rest, hdrs, hasHdrs := strings.Cut(rest, "?")
	if hasHdrs {
		var err error
		if u.Headers, err = parseHeaders(hdrs); err != nil {
			return nil, errtrace.Wrap(err)
		}
	}

	if i := strings.LastIndexByte(rest, '@'); i >= 0 {
		user, passwd, _ := strings.Cut(rest[:i], ":")
		u.User, u.Password = grammar.Unescape(user), grammar.Unescape(passwd)
		rest = rest[i+1:]
	}

	hostport, params, hasParams := strings.Cut(rest, ";")
	if hasParams {
		if err := u.parseParams(params); err != nil {
			return nil, errtrace.Wrap(err)
		}
	}

	var err error
	if u.Addr, err = parseAddr(u.Scheme, hostport); err != nil {
		return nil, errtrace.Wrap(err)
	}
	return u, nil
}

func parseAddr(scheme, s string) (Addr, error) {
	if !isSIPScheme(scheme) {
		s = strings.TrimLeft(s, "/")
		if s == "" {
			return Addr{}, errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidURI, "missing host"))
		}
		if addr, err := types.ParseAddr(s); err == nil {
			return addr, nil
		}
		return types.RawHost(s), nil
	}

	addr, err := types.ParseAddr(s)
	if err != nil {
		return Addr{}, errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidURI, err))
	}
	if !addr.IsValid() {
		return Addr{}, errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidURI, "invalid host %q", addr.Host()))
	}
	return addr, nil
}

func (u *URI) parseParams(s string) error {
	seen := make(types.Params, 0, strings.Count(s, ";")+1)
	for seg := range strings.SplitSeq(s, ";") {
		name, value, _ := strings.Cut(seg, "=")
		name, value = util.LCase(grammar.Unescape(name)), util.LCase(grammar.Unescape(value))
		if name == "" {
			return errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidURI, "empty parameter name in %q", s))
		}

		var ok bool
		if seen, ok = seen.Add(name, value); !ok {
			return errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidURI, "duplicate parameter %q", name))
		}

		switch name {
		case "transport":
			u.Transport = value
		case "maddr":
			if !grammar.IsIP(value) {
				return errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidURI, "maddr %q is not an IP address", value))
			}
			u.MAddr = value
		case "ttl":
			if !grammar.IsDigits(value) {
				return errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidURI, "invalid ttl %q", value))
			}
			ttl, err := strconv.ParseUint(value, 10, 0)
			if err != nil {
				return errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidURI, "invalid ttl %q", value))
			}
			u.TTL = util.Ptr(uint(ttl))
		case "user":
			u.UserParam = value
		case "method":
			u.Method = value
		case "lr":
			u.LR = true
		default:
			u.Params = append(u.Params, types.Param{Name: name, Value: value})
		}
	}
	return nil
}

func parseHeaders(s string) (Params, error) {
	var hdrs Params
	for seg := range strings.SplitSeq(s, "&") {
		if seg == "" {
			continue
		}
		name, value, _ := strings.Cut(seg, "=")
		name = grammar.Unescape(name)
		if name == "" {
			return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidURI, "empty header name in %q", s))
		}
		hdrs = hdrs.Set(name, grammar.Unescape(value))
	}
	return hdrs, nil
}
