package digest

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipmsg/internal/errorutil"
	"github.com/ghettovoice/sipmsg/internal/types"
	"github.com/ghettovoice/sipmsg/internal/util"
)

// Challenge holds parameters of a Digest challenge sent in WWW-Authenticate
// and Proxy-Authenticate headers.
type Challenge struct {
	Realm     string
	Algorithm string
	Nonce     string
	Opaque    string
	Domain    string
	Stale     *bool
	QoP       []string
	Params    Params
}

// ParseChallenge parses the Digest challenge parameters s.
// The scheme token must already be stripped.
func ParseChallenge(s string) (*Challenge, error) {
	ch := &Challenge{}
	err := walkParams(s, func(key, val string) error {
		switch util.LCase(key) {
		case "realm":
			ch.Realm = val
		case "algorithm":
			ch.Algorithm = val
		case "nonce":
			ch.Nonce = val
		case "opaque":
			ch.Opaque = val
		case "domain":
			ch.Domain = val
		case "stale":
			switch util.LCase(val) {
			case "true":
				ch.Stale = util.Ptr(true)
			case "false":
				ch.Stale = util.Ptr(false)
			default:
				return errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidParameter, "non-boolean stale %q", val))
			}
		case "qop":
			ch.QoP = ch.QoP[:0]
			for v := range strings.SplitSeq(val, ",") {
				if v = util.TrimLWS(v); v != "" {
					ch.QoP = append(ch.QoP, v)
				}
			}
		default:
			ch.Params = append(ch.Params, types.Param{Name: key, Value: val})
		}
		return nil
	})
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	return ch, nil
}

// RenderTo writes the challenge parameters, without the scheme token, to w.
func (ch *Challenge) RenderTo(w io.Writer, _ *RenderOptions) (int, error) {
	if ch == nil {
		return 0, nil
	}
	return errtrace.Wrap2(renderParams(w, func(pw *paramWriter) {
		pw.writeNonEmpty("realm", ch.Realm, true)
		pw.writeNonEmpty("algorithm", ch.Algorithm, false)
		pw.writeNonEmpty("nonce", ch.Nonce, true)
		pw.writeNonEmpty("opaque", ch.Opaque, true)
		pw.writeNonEmpty("domain", ch.Domain, true)
		if ch.Stale != nil {
			pw.write("stale", strings.ToUpper(strconv.FormatBool(*ch.Stale)), false)
		}
		if len(ch.QoP) > 0 {
			pw.write("qop", strings.Join(ch.QoP, ","), true)
		}
		pw.writeExtra(ch.Params)
	}))
}

// Render returns the challenge parameters as a string.
func (ch *Challenge) Render(opts *RenderOptions) (string, error) {
	return errtrace.Wrap2(types.RenderString(ch.RenderTo, opts))
}

func (ch *Challenge) String() string {
	s, _ := ch.Render(nil)
	return s
}

func (ch *Challenge) Format(f fmt.State, verb rune) {
	switch verb {
	case 's':
		fmt.Fprint(f, ch.String())
		return
	case 'q':
		fmt.Fprint(f, strconv.Quote(ch.String()))
		return
	default:
		type hideMethods Challenge
		type Challenge hideMethods
		fmt.Fprintf(f, fmt.FormatString(f, verb), (*Challenge)(ch))
		return
	}
}

// SupportsQoP reports whether the challenge offers the given quality of protection.
func (ch *Challenge) SupportsQoP(qop string) bool {
	return ch != nil && slices.ContainsFunc(ch.QoP, func(v string) bool { return util.EqFold(v, qop) })
}

func (ch *Challenge) Clone() *Challenge {
	if ch == nil {
		return nil
	}
	ch2 := *ch
	if ch.Stale != nil {
		ch2.Stale = util.Ptr(*ch.Stale)
	}
	ch2.QoP = slices.Clone(ch.QoP)
	ch2.Params = ch.Params.Clone()
	return &ch2
}

func (ch *Challenge) Equal(val any) bool {
	var other *Challenge
	switch v := val.(type) {
	case Challenge:
		other = &v
	case *Challenge:
		other = v
	default:
		return false
	}

	if ch == other {
		return true
	} else if ch == nil || other == nil {
		return false
	}

	if (ch.Stale == nil) != (other.Stale == nil) || ch.Stale != nil && *ch.Stale != *other.Stale {
		return false
	}
	return util.EqFold(ch.Realm, other.Realm) &&
		util.EqFold(ch.Algorithm, other.Algorithm) &&
		ch.Nonce == other.Nonce &&
		ch.Opaque == other.Opaque &&
		ch.Domain == other.Domain &&
		slices.EqualFunc(ch.QoP, other.QoP, util.EqFold[string, string]) &&
		ch.Params.Equal(other.Params)
}
