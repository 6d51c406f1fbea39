package header

import (
	"fmt"
	"io"
	"slices"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipmsg/digest"
	"github.com/ghettovoice/sipmsg/internal/grammar"
	"github.com/ghettovoice/sipmsg/internal/ioutil"
	"github.com/ghettovoice/sipmsg/internal/types"
	"github.com/ghettovoice/sipmsg/internal/util"
)

// AuthChallenge is a single challenge of WWW-Authenticate or Proxy-Authenticate header.
// Digest challenges are parsed into Digest, other schemes keep the parameters verbatim in Opaque.
type AuthChallenge struct {
	Scheme string
	Digest *digest.Challenge
	Opaque string
}

// AuthCredentials is a single credentials value of Authorization or Proxy-Authorization header.
// Digest credentials are parsed into Digest, other schemes keep the parameters verbatim in Opaque.
type AuthCredentials struct {
	Scheme string
	Digest *digest.Credentials
	Opaque string
}

func cutAuthScheme(s string) (scheme, rest string, err error) {
	scheme, rest, ok := util.CutLWS(s)
	if !grammar.IsToken(scheme) {
		return "", "", errtrace.Wrap(newMalformedError("invalid auth scheme %q", scheme))
	}
	if !ok || rest == "" {
		return "", "", errtrace.Wrap(newMissingError(scheme + " auth parameters"))
	}
	return scheme, rest, nil
}

func isDigest(scheme string) bool { return util.EqFold(scheme, digest.Scheme) }

func renderAuth(w io.Writer, scheme string, dig types.Renderer, opaque string) (int, error) {
	if scheme == "" {
		return 0, errtrace.Wrap(newMissingError("auth scheme"))
	}
	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	cw.WriteString(scheme)
	switch {
	case dig != nil:
		cw.WriteString(" ")
		cw.Call(func(w io.Writer) (int, error) { return dig.RenderTo(w, nil) })
	case opaque != "":
		cw.Fprint(" ", opaque)
	}
	return errtrace.Wrap2(cw.Result())
}

func (ch AuthChallenge) renderTo(w io.Writer) (int, error) {
	if ch.Digest != nil {
		return errtrace.Wrap2(renderAuth(w, ch.Scheme, ch.Digest, ""))
	}
	return errtrace.Wrap2(renderAuth(w, ch.Scheme, nil, ch.Opaque))
}

func (ch AuthChallenge) String() string { return renderValue(ch.renderTo) }

func (ch AuthChallenge) Clone() AuthChallenge {
	return AuthChallenge{Scheme: ch.Scheme, Digest: ch.Digest.Clone(), Opaque: ch.Opaque}
}

// Equal compares schemes case-insensitively and parameters structurally.
func (ch AuthChallenge) Equal(val any) bool {
	var other AuthChallenge
	switch v := val.(type) {
	case AuthChallenge:
		other = v
	case *AuthChallenge:
		if v == nil {
			return false
		}
		other = *v
	default:
		return false
	}
	return util.EqFold(ch.Scheme, other.Scheme) && ch.Digest.Equal(other.Digest) && ch.Opaque == other.Opaque
}

func (crd AuthCredentials) renderTo(w io.Writer) (int, error) {
	if crd.Digest != nil {
		return errtrace.Wrap2(renderAuth(w, crd.Scheme, crd.Digest, ""))
	}
	return errtrace.Wrap2(renderAuth(w, crd.Scheme, nil, crd.Opaque))
}

func (crd AuthCredentials) String() string { return renderValue(crd.renderTo) }

func (crd AuthCredentials) Clone() AuthCredentials {
	return AuthCredentials{Scheme: crd.Scheme, Digest: crd.Digest.Clone(), Opaque: crd.Opaque}
}

// Equal compares schemes case-insensitively and parameters structurally.
func (crd AuthCredentials) Equal(val any) bool {
	var other AuthCredentials
	switch v := val.(type) {
	case AuthCredentials:
		other = v
	case *AuthCredentials:
		if v == nil {
			return false
		}
		other = *v
	default:
		return false
	}
	return util.EqFold(crd.Scheme, other.Scheme) && crd.Digest.Equal(other.Digest) && crd.Opaque == other.Opaque
}

// Challenge represents the WWW-Authenticate and Proxy-Authenticate header fields.
// Each value is rendered on its own header line.
type Challenge struct {
	name   Name
	Values []AuthChallenge
}

// NewChallenge returns a challenge header with the given name and values.
func NewChallenge(name string, vals ...AuthChallenge) *Challenge {
	return &Challenge{name: CanonicName(name), Values: vals}
}

func parseChallenge(name Name, lines []string) (Header, error) {
	hdr := &Challenge{name: name, Values: make([]AuthChallenge, 0, len(lines))}
	for _, l := range lines {
		scheme, rest, err := cutAuthScheme(l)
		if err != nil {
			return nil, errtrace.Wrap(err)
		}
		ch := AuthChallenge{Scheme: scheme}
		if isDigest(scheme) {
			if ch.Digest, err = digest.ParseChallenge(rest); err != nil {
				return nil, errtrace.Wrap(err)
			}
		} else {
			ch.Opaque = rest
		}
		hdr.Values = append(hdr.Values, ch)
	}
	return hdr, nil
}

func (hdr *Challenge) Name() Name {
	if hdr == nil {
		return ""
	}
	return hdr.name
}

func (hdr *Challenge) CompactName() Name { return compactName(hdr.Name()) }

// RenderTo writes one header line per challenge.
func (hdr *Challenge) RenderTo(w io.Writer, opts *RenderOptions) (int, error) {
	if hdr == nil {
		return 0, nil
	}
	if len(hdr.Values) == 0 {
		return 0, errtrace.Wrap(newMissingError(string(hdr.name) + " value"))
	}
	return errtrace.Wrap2(renderLines(w, hdr, opts, len(hdr.Values), func(w io.Writer, i int) (int, error) {
		return errtrace.Wrap2(hdr.Values[i].renderTo(w))
	}))
}

func (hdr *Challenge) Render(opts *RenderOptions) (string, error) {
	return errtrace.Wrap2(renderString(hdr, opts))
}

func (hdr *Challenge) RenderValue() string {
	if hdr == nil {
		return ""
	}
	return renderValue(func(w io.Writer) (int, error) {
		return errtrace.Wrap2(joinValues(w, hdr.Values, func(w io.Writer, ch AuthChallenge) (int, error) {
			return errtrace.Wrap2(ch.renderTo(w))
		}))
	})
}

func (hdr *Challenge) String() string { return hdr.RenderValue() }

func (hdr *Challenge) Format(f fmt.State, verb rune) {
	type hideMethods Challenge
	type Challenge hideMethods
	formatHeader(f, verb, hdr, (*Challenge)(hdr))
}

func (hdr *Challenge) Clone() Header {
	if hdr == nil {
		return nil
	}
	hdr2 := &Challenge{name: hdr.name, Values: make([]AuthChallenge, len(hdr.Values))}
	for i := range hdr.Values {
		hdr2.Values[i] = hdr.Values[i].Clone()
	}
	return hdr2
}

func (hdr *Challenge) Equal(val any) bool {
	var other *Challenge
	switch v := val.(type) {
	case Challenge:
		other = &v
	case *Challenge:
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
		slices.EqualFunc(hdr.Values, other.Values, func(a, b AuthChallenge) bool { return a.Equal(b) })
}

// Credentials represents the Authorization and Proxy-Authorization header fields.
// Each value is rendered on its own header line.
type Credentials struct {
	name   Name
	Values []AuthCredentials
}

// NewCredentials returns a credentials header with the given name and values.
func NewCredentials(name string, vals ...AuthCredentials) *Credentials {
	return &Credentials{name: CanonicName(name), Values: vals}
}

func parseCredentials(name Name, lines []string) (Header, error) {
	hdr := &Credentials{name: name, Values: make([]AuthCredentials, 0, len(lines))}
	for _, l := range lines {
		scheme, rest, err := cutAuthScheme(l)
		if err != nil {
			return nil, errtrace.Wrap(err)
		}
		crd := AuthCredentials{Scheme: scheme}
		if isDigest(scheme) {
			if crd.Digest, err = digest.ParseCredentials(rest); err != nil {
				return nil, errtrace.Wrap(err)
			}
		} else {
			crd.Opaque = rest
		}
		hdr.Values = append(hdr.Values, crd)
	}
	return hdr, nil
}

func (hdr *Credentials) Name() Name {
	if hdr == nil {
		return ""
	}
	return hdr.name
}

func (hdr *Credentials) CompactName() Name { return compactName(hdr.Name()) }

// RenderTo writes one header line per credentials value.
func (hdr *Credentials) RenderTo(w io.Writer, opts *RenderOptions) (int, error) {
	if hdr == nil {
		return 0, nil
	}
	if len(hdr.Values) == 0 {
		return 0, errtrace.Wrap(newMissingError(string(hdr.name) + " value"))
	}
	return errtrace.Wrap2(renderLines(w, hdr, opts, len(hdr.Values), func(w io.Writer, i int) (int, error) {
		return errtrace.Wrap2(hdr.Values[i].renderTo(w))
	}))
}

func (hdr *Credentials) Render(opts *RenderOptions) (string, error) {
	return errtrace.Wrap2(renderString(hdr, opts))
}

func (hdr *Credentials) RenderValue() string {
	if hdr == nil {
		return ""
	}
	return renderValue(func(w io.Writer) (int, error) {
		return errtrace.Wrap2(joinValues(w, hdr.Values, func(w io.Writer, crd AuthCredentials) (int, error) {
			return errtrace.Wrap2(crd.renderTo(w))
		}))
	})
}

func (hdr *Credentials) String() string { return hdr.RenderValue() }

func (hdr *Credentials) Format(f fmt.State, verb rune) {
	type hideMethods Credentials
	type Credentials hideMethods
	formatHeader(f, verb, hdr, (*Credentials)(hdr))
}

func (hdr *Credentials) Clone() Header {
	if hdr == nil {
		return nil
	}
	hdr2 := &Credentials{name: hdr.name, Values: make([]AuthCredentials, len(hdr.Values))}
	for i := range hdr.Values {
		hdr2.Values[i] = hdr.Values[i].Clone()
	}
	return hdr2
}

func (hdr *Credentials) Equal(val any) bool {
	var other *Credentials
	switch v := val.(type) {
	case Credentials:
		other = &v
	case *Credentials:
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
		slices.EqualFunc(hdr.Values, other.Values, func(a, b AuthCredentials) bool { return a.Equal(b) })
}
