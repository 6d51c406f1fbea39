package digest

import (
	"crypto/md5" //nolint:gosec
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"hash"
	"strings"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipmsg/internal/errorutil"
	"github.com/ghettovoice/sipmsg/internal/util"
)

// Hash algorithms.
const (
	AlgorithmMD5       = "MD5"
	AlgorithmSHA256    = "SHA-256"
	AlgorithmSHA512256 = "SHA-512-256"

	sessSuffix = "-SESS"
)

var hashes = map[string]func() hash.Hash{
	AlgorithmMD5:       md5.New,
	AlgorithmSHA256:    sha256.New,
	AlgorithmSHA512256: sha512.New512_256,
}

// HashOptions are optional inputs of [Credentials.ComputeHash].
type HashOptions struct {
	// HA1 is a precomputed H(username:realm:secret) used instead of the secret.
	HA1 string
	// Body is the request body hashed into A2 for "auth-int" protection.
	Body []byte
}

func (o *HashOptions) ha1() string {
	if o == nil {
		return ""
	}
	return o.HA1
}

func (o *HashOptions) body() []byte {
	if o == nil {
		return nil
	}
	return o.Body
}

// ComputeHash computes the request-digest of crd for the given request method
// and secret (RFC 2617 Section 3.2.2, RFC 7616 Section 3.4.1).
//
// An empty Algorithm means MD5. With opts.HA1 set, the secret is ignored.
// It fails with [ErrUnsupportedAlgorithm] or [ErrUnsupportedQoP] on unknown parameter values.
func (crd *Credentials) ComputeHash(method, secret string, opts *HashOptions) (string, error) {
	algo := util.UCase(crd.Algorithm)
	if algo == "" {
		algo = AlgorithmMD5
	}
	algo, sess := strings.CutSuffix(algo, sessSuffix)
	newHash, ok := hashes[algo]
	if !ok {
		return "", errtrace.Wrap(errorutil.NewWrapperError(ErrUnsupportedAlgorithm, "%q", crd.Algorithm))
	}
	h := func(parts ...string) string {
		hh := newHash()
		hh.Write([]byte(strings.Join(parts, ":")))
		return hex.EncodeToString(hh.Sum(nil))
	}

	a1 := opts.ha1()
	if a1 == "" {
		a1 = h(crd.Username, crd.Realm, secret)
	}
	if sess {
		a1 = h(a1, crd.Nonce, crd.CNonce)
	}

	var a2 string
	switch util.LCase(crd.QoP) {
	case "", QoPAuth:
		a2 = h(method, crd.URI)
	case QoPAuthInt:
		a2 = h(method, crd.URI, h(string(opts.body())))
	default:
		return "", errtrace.Wrap(errorutil.NewWrapperError(ErrUnsupportedQoP, "%q", crd.QoP))
	}

	if crd.QoP == "" {
		return h(a1, crd.Nonce, a2), nil
	}
	return h(a1, crd.Nonce, crd.NC, crd.CNonce, crd.QoP, a2), nil
}

// Verify reports whether the Response parameter matches the request-digest
// computed by [Credentials.ComputeHash].
func (crd *Credentials) Verify(method, secret string, opts *HashOptions) (bool, error) {
	want, err := crd.ComputeHash(method, secret, opts)
	if err != nil {
		return false, errtrace.Wrap(err)
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(util.LCase(crd.Response))) == 1, nil
}
