package header_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ghettovoice/sipmsg/digest"
	"github.com/ghettovoice/sipmsg/header"
	"github.com/ghettovoice/sipmsg/internal/util"
)

func TestParse_Challenge(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		hdrName string
		lines   []string
		want    header.Header
		wantErr error
	}{
		{
			"digest and basic",
			"WWW-Authenticate",
			[]string{
				`Digest realm="atlanta.com", domain="sip:boxesbybob.com", qop="auth", nonce="f84f1cec41e6cbe5aea9c8e88d359", opaque="", stale=FALSE, algorithm=MD5`,
				`Basic realm="atlanta.com"`,
			},
			header.NewChallenge("WWW-Authenticate",
				header.AuthChallenge{
					Scheme: "Digest",
					Digest: &digest.Challenge{
						Realm:     "atlanta.com",
						Domain:    "sip:boxesbybob.com",
						QoP:       []string{"auth"},
						Nonce:     "f84f1cec41e6cbe5aea9c8e88d359",
						Stale:     util.Ptr(false),
						Algorithm: "MD5",
					},
				},
				header.AuthChallenge{Scheme: "Basic", Opaque: `realm="atlanta.com"`},
			),
			nil,
		},
		{
			"scheme is case-insensitive",
			"Proxy-Authenticate",
			[]string{`dIgEsT realm="a", nonce="b"`},
			header.NewChallenge("Proxy-Authenticate", header.AuthChallenge{
				Scheme: "dIgEsT",
				Digest: &digest.Challenge{Realm: "a", Nonce: "b"},
			}),
			nil,
		},
		{"missing params", "WWW-Authenticate", []string{"Digest"}, nil, header.ErrMissingValue},
		{"bad scheme", "WWW-Authenticate", []string{`Dig"est realm="a"`}, nil, header.ErrMalformedValue},
		{"bad stale", "WWW-Authenticate", []string{`Digest realm="a", stale=yes`}, nil, header.ErrInvalidParameter},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			got, err := header.Parse(c.hdrName, c.lines)
			if diff := cmp.Diff(err, c.wantErr, cmpopts.EquateErrors()); diff != "" {
				t.Errorf("header.Parse(%q, %q) error = %v, want %v\ndiff (-got +want):\n%v", c.hdrName, c.lines, err, c.wantErr, diff)
			}
			if diff := cmp.Diff(got, c.want); diff != "" {
				t.Errorf("header.Parse(%q, %q) = %+v, want %+v\ndiff (-got +want):\n%v", c.hdrName, c.lines, got, c.want, diff)
			}
		})
	}
}

func TestParse_Credentials(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		hdrName string
		lines   []string
		want    header.Header
		wantErr error
	}{
		{
			"digest",
			"Authorization",
			[]string{
				`Digest username="bob", realm="biloxi.com", nonce="dcd98b7102dd2f0e8b11d0f600bfb0c093", uri="sip:bob@biloxi.com", ` +
					`qop=auth, nc=00000001, cnonce="0a4f113b", response="6629fae49393a05397450978507c4ef1"`,
			},
			header.NewCredentials("Authorization", header.AuthCredentials{
				Scheme: "Digest",
				Digest: &digest.Credentials{
					Username: "bob",
					Realm:    "biloxi.com",
					Nonce:    "dcd98b7102dd2f0e8b11d0f600bfb0c093",
					URI:      "sip:bob@biloxi.com",
					QoP:      "auth",
					NC:       "00000001",
					CNonce:   "0a4f113b",
					Response: "6629fae49393a05397450978507c4ef1",
				},
			}),
			nil,
		},
		{
			"opaque scheme",
			"Proxy-Authorization",
			[]string{"Bearer  eyJhbGciOi.eyJzdWIi.SflKxwRJ"},
			header.NewCredentials("Proxy-Authorization", header.AuthCredentials{Scheme: "Bearer", Opaque: "eyJhbGciOi.eyJzdWIi.SflKxwRJ"}),
			nil,
		},
		{"bad nc", "Authorization", []string{`Digest username="bob", nc=xyz`}, nil, header.ErrInvalidParameter},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			got, err := header.Parse(c.hdrName, c.lines)
			if diff := cmp.Diff(err, c.wantErr, cmpopts.EquateErrors()); diff != "" {
				t.Errorf("header.Parse(%q, %q) error = %v, want %v\ndiff (-got +want):\n%v", c.hdrName, c.lines, err, c.wantErr, diff)
			}
			if diff := cmp.Diff(got, c.want); diff != "" {
				t.Errorf("header.Parse(%q, %q) = %+v, want %+v\ndiff (-got +want):\n%v", c.hdrName, c.lines, got, c.want, diff)
			}
		})
	}
}

func TestAuth_Render(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		hdr     header.Header
		want    string
		wantErr error
	}{
		{"nil challenge", (*header.Challenge)(nil), "", nil},
		{"no challenges", header.NewChallenge("WWW-Authenticate"), "", header.ErrMissingValue},
		{"no scheme", header.NewChallenge("WWW-Authenticate", header.AuthChallenge{Opaque: "x"}), "", header.ErrMissingValue},
		{
			"challenge lines",
			header.NewChallenge("www-authenticate",
				header.AuthChallenge{Scheme: "Digest", Digest: &digest.Challenge{Realm: "a", Nonce: "b", QoP: []string{"auth"}}},
				header.AuthChallenge{Scheme: "Basic", Opaque: `realm="a"`},
			),
			"WWW-Authenticate: Digest realm=\"a\", nonce=\"b\", qop=\"auth\"\r\nWWW-Authenticate: Basic realm=\"a\"",
			nil,
		},
		{
			"credentials",
			header.NewCredentials("proxy-authorization", header.AuthCredentials{
				Scheme: "Digest",
				Digest: &digest.Credentials{Username: "bob", Realm: "b", Nonce: "n", URI: "sip:b", Response: "ab"},
			}),
			`Proxy-Authorization: Digest username="bob", realm="b", nonce="n", uri="sip:b", response="ab"`,
			nil,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			got, err := c.hdr.Render(nil)
			if diff := cmp.Diff(err, c.wantErr, cmpopts.EquateErrors()); diff != "" {
				t.Errorf("hdr.Render(nil) error = %v, want %v\ndiff (-got +want):\n%v", err, c.wantErr, diff)
			}
			if got != c.want {
				t.Errorf("hdr.Render(nil) = %q, want %q", got, c.want)
			}
		})
	}
}
