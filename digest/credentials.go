package digest

import (
	"fmt"
	"io"
	"strconv"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipmsg/internal/errorutil"
	"github.com/ghettovoice/sipmsg/internal/grammar"
	"github.com/ghettovoice/sipmsg/internal/types"
	"github.com/ghettovoice/sipmsg/internal/util"
)

// Credentials holds parameters of a Digest response sent in Authorization
// and Proxy-Authorization headers.
type Credentials struct {
	Username  string
	Realm     string
	Nonce     string
	URI       string
	Response  string
	Algorithm string
	CNonce    string
	Opaque    string
	QoP       string
	NC        string
	Params    Params
}

// ParseCredentials parses the Digest response parameters s.
// The scheme token must already be stripped.
// The nc and response values must be hexadecimal.
func ParseCredentials(s string) (*Credentials, error) {
	crd := &Credentials{}
	err := walkParams(s, func(key, val string) error {
		switch util.LCase(key) {
		case "username":
			crd.Username = val
		case "realm":
			crd.Realm = val
		case "nonce":
			crd.Nonce = val
		case "uri":
			crd.URI = val
		case "response":
			if !grammar.IsHex(val) {
				return errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidParameter, "non-hexadecimal response %q", val))
			}
			crd.Response = val
		case "algorithm":
			crd.Algorithm = val
		case "cnonce":
			crd.CNonce = val
		case "opaque":
			crd.Opaque = val
		case "qop":
			crd.QoP = val
		case "nc":
			if !grammar.IsHex(val) {
				return errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidParameter, "non-hexadecimal nc %q", val))
			}
			crd.NC = val
		default:
			crd.Params = append(crd.Params, types.Param{Name: key, Value: val})
		}
		return nil
	})
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	return crd, nil
}

// RenderTo writes the credentials parameters, without the scheme token, to w.
func (crd *Credentials) RenderTo(w io.Writer, _ *RenderOptions) (int, error) {
	if crd == nil {
		return 0, nil
	}
	return errtrace.Wrap2(renderParams(w, func(pw *paramWriter) {
		pw.writeNonEmpty("username", crd.Username, true)
		pw.writeNonEmpty("realm", crd.Realm, true)
		pw.writeNonEmpty("nonce", crd.Nonce, true)
		pw.writeNonEmpty("uri", crd.URI, true)
		pw.writeNonEmpty("response", crd.Response, true)
		pw.writeNonEmpty("algorithm", crd.Algorithm, false)
		pw.writeNonEmpty("cnonce", crd.CNonce, true)
		pw.writeNonEmpty("opaque", crd.Opaque, true)
		pw.writeNonEmpty("qop", crd.QoP, false)
		pw.writeNonEmpty("nc", crd.NC, false)
		pw.writeExtra(crd.Params)
	}))
}

// Render returns the credentials parameters as a string.
func (crd *Credentials) Render(opts *RenderOptions) (string, error) {
	return errtrace.Wrap2(types.RenderString(crd.RenderTo, opts))
}

func (crd *Credentials) String() string {
	s, _ := crd.Render(nil)
	return s
}

func (crd *Credentials) Format(f fmt.State, verb rune) {
	switch verb {
	case 's':
		fmt.Fprint(f, crd.String())
		return
	case 'q':
		fmt.Fprint(f, strconv.Quote(crd.String()))
		return
	default:
		type hideMethods Credentials
		type Credentials hideMethods
		fmt.Fprintf(f, fmt.FormatString(f, verb), (*Credentials)(crd))
		return
	}
}

func (crd *Credentials) Clone() *Credentials {
	if crd == nil {
		return nil
	}
	crd2 := *crd
	crd2.Params = crd.Params.Clone()
	return &crd2
}

func (crd *Credentials) Equal(val any) bool {
	var other *Credentials
	switch v := val.(type) {
	case Credentials:
		other = &v
	case *Credentials:
		other = v
	default:
		return false
	}

	if crd == other {
		return true
	} else if crd == nil || other == nil {
		return false
	}

	return crd.Username == other.Username &&
		util.EqFold(crd.Realm, other.Realm) &&
		crd.Nonce == other.Nonce &&
		crd.URI == other.URI &&
		util.EqFold(crd.Response, other.Response) &&
		util.EqFold(crd.Algorithm, other.Algorithm) &&
		crd.CNonce == other.CNonce &&
		crd.Opaque == other.Opaque &&
		util.EqFold(crd.QoP, other.QoP) &&
		util.EqFold(crd.NC, other.NC) &&
		crd.Params.Equal(other.Params)
}
