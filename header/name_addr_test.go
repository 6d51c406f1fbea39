package header_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ghettovoice/sipmsg/header"
)

func nameAddr(name, display, u, tag string, params header.Params) *header.NameAddr {
	hdr := header.NewNameAddr(name, display, mustURI(u))
	hdr.Tag = tag
	hdr.Params = params
	return hdr
}

func TestParse_NameAddr(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		hdrName string
		in      string
		want    header.Header
		wantErr error
	}{
		{
			"quoted display name",
			"From",
			`"Bob" <sips:bob@biloxi.com> ;tag=a48s`,
			nameAddr("From", "Bob", "sips:bob@biloxi.com", "a48s", nil),
			nil,
		},
		{
			"token display name",
			"To",
			`The Operator <sip:operator@cs.columbia.edu>;tag=287447`,
			nameAddr("To", "The Operator", "sip:operator@cs.columbia.edu", "287447", nil),
			nil,
		},
		{
			"no display name",
			"t",
			`<sip:carol@chicago.com>`,
			nameAddr("To", "", "sip:carol@chicago.com", "", nil),
			nil,
		},
		{
			"no space before angle",
			"To",
			`"Carol"<sip:carol@chicago.com>`,
			nameAddr("To", "Carol", "sip:carol@chicago.com", "", nil),
			nil,
		},
		{
			"addr-spec",
			"f",
			`sip:+12125551212@phone2net.com;tag=887s`,
			nameAddr("From", "", "sip:+12125551212@phone2net.com", "887s", nil),
			nil,
		},
		{
			"uri params inside angles",
			"To",
			`<sip:carol@chicago.com;transport=tcp;lr>;x=y;z`,
			nameAddr("To", "", "sip:carol@chicago.com;transport=tcp;lr", "", header.Params{{Name: "x", Value: "y"}, {Name: "z", Value: ""}}),
			nil,
		},
		{
			"escaped quotes",
			"To",
			`"\"Joe\" \\ Smith" <sip:joe@example.com>`,
			nameAddr("To", `"Joe" \ Smith`, "sip:joe@example.com", "", nil),
			nil,
		},
		{
			"angles and separators in display name",
			"Reply-To",
			`"a <b>, c; d" <sip:x@example.com>`,
			nameAddr("Reply-To", "a <b>, c; d", "sip:x@example.com", "", nil),
			nil,
		},
		{
			"quoted param value",
			"Referred-By",
			`<sip:referrer@example.com>;cid="a;b"`,
			nameAddr("Referred-By", "", "sip:referrer@example.com", "", header.Params{{Name: "cid", Value: `"a;b"`}}),
			nil,
		},
		{
			"token display name before addr-spec",
			"To",
			`Bob sip:bob@biloxi.com`,
			nameAddr("To", "Bob", "sip:bob@biloxi.com", "", nil),
			nil,
		},
		{
			"multi-word display name before addr-spec",
			"From",
			"The  Operator\tsip:operator@cs.columbia.edu ;tag=287447",
			nameAddr("From", "The  Operator", "sip:operator@cs.columbia.edu", "287447", nil),
			nil,
		},
		{
			"quoted display name before addr-spec",
			"To",
			`"Bob \"B\"" sip:bob@biloxi.com;x=1`,
			nameAddr("To", `Bob "B"`, "sip:bob@biloxi.com", "", header.Params{{Name: "x", Value: "1"}}),
			nil,
		},
		{
			"other quoted-pairs are kept",
			"To",
			`"a\b\\c" <sip:a@example.com>`,
			nameAddr("To", `a\b\c`, "sip:a@example.com", "", nil),
			nil,
		},
		{"from without tag", "From", `<sip:a@example.com>`, nil, header.ErrMissingValue},
		{"from empty tag", "From", `<sip:a@example.com>;tag=`, nil, header.ErrMissingValue},
		{"duplicate tag", "To", `<sip:a@example.com>;tag=1;tag=2`, nil, header.ErrInvalidParameter},
		{"duplicate param", "To", `<sip:a@example.com>;x=1;X=2`, nil, header.ErrInvalidParameter},
		{"empty param", "To", `<sip:a@example.com>;;x`, nil, header.ErrInvalidParameter},
		{"unmatched open angle", "To", `"A" <sip:a@example.com`, nil, header.ErrMalformedValue},
		{"unmatched close angle", "To", `sip:a@example.com>`, nil, header.ErrMalformedValue},
		{"nested angle", "To", `<sip:<a@example.com>`, nil, header.ErrMalformedValue},
		{"unterminated quote", "To", `"A <sip:a@example.com>`, nil, header.ErrMalformedValue},
		{"quoted display name before addr-spec and token", "To", `"A" B sip:a@example.com`, nil, header.ErrMalformedValue},
		{"unterminated quote before addr-spec", "To", `"A sip:a@example.com`, nil, header.ErrMalformedValue},
		{"garbage after address", "To", `<sip:a@example.com> x`, nil, header.ErrMalformedValue},
		{"empty addr-spec", "To", `"A" <>`, nil, header.ErrMissingValue},
		{"bad uri", "To", `<sip:>`, nil, header.ErrMalformedValue},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			got, err := header.Parse(c.hdrName, []string{c.in})
			if diff := cmp.Diff(err, c.wantErr, cmpopts.EquateErrors()); diff != "" {
				t.Errorf("header.Parse(%q, %q) error = %v, want %v\ndiff (-got +want):\n%v", c.hdrName, c.in, err, c.wantErr, diff)
			}
			if diff := cmp.Diff(got, c.want); diff != "" {
				t.Errorf("header.Parse(%q, %q) = %+v, want %+v\ndiff (-got +want):\n%v", c.hdrName, c.in, got, c.want, diff)
			}
		})
	}
}

func TestNameAddr_Render(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		hdr     *header.NameAddr
		want    string
		wantErr error
	}{
		{"nil", nil, "", nil},
		{"no uri", header.NewNameAddr("To", "A", nil), "", header.ErrMissingValue},
		{
			"display name is quoted",
			nameAddr("To", "The Operator", "sip:operator@cs.columbia.edu", "287447", nil),
			`To: "The Operator" <sip:operator@cs.columbia.edu>;tag=287447`,
			nil,
		},
		{
			"display name is escaped",
			nameAddr("To", `"Joe" \`, "sip:joe@example.com", "", nil),
			`To: "\"Joe\" \\" <sip:joe@example.com>`,
			nil,
		},
		{
			"addr-spec is enclosed",
			nameAddr("From", "", "sip:+12125551212@phone2net.com", "887s", header.Params{{Name: "x", Value: ""}}),
			`From: <sip:+12125551212@phone2net.com>;tag=887s;x`,
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

func TestNameAddr_Equal(t *testing.T) {
	t.Parallel()

	base := nameAddr("To", "A", "sip:a@example.com", "1", header.Params{{Name: "x", Value: "y"}})
	cases := []struct {
		name string
		val  any
		want bool
	}{
		{"nil", nil, false},
		{"nil ptr", (*header.NameAddr)(nil), false},
		{"same", nameAddr("to", "A", "sip:a@example.com", "1", header.Params{{Name: "X", Value: "y"}}), true},
		{"value", *nameAddr("To", "A", "sip:a@example.com", "1", header.Params{{Name: "x", Value: "y"}}), true},
		{"other name", nameAddr("From", "A", "sip:a@example.com", "1", header.Params{{Name: "x", Value: "y"}}), false},
		{"other tag", nameAddr("To", "A", "sip:a@example.com", "2", header.Params{{Name: "x", Value: "y"}}), false},
		{"other display", nameAddr("To", "B", "sip:a@example.com", "1", header.Params{{Name: "x", Value: "y"}}), false},
		{"other uri", nameAddr("To", "A", "sip:b@example.com", "1", header.Params{{Name: "x", Value: "y"}}), false},
		{"other params", nameAddr("To", "A", "sip:a@example.com", "1", nil), false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			if got := base.Equal(c.val); got != c.want {
				t.Errorf("hdr.Equal(%v) = %v, want %v", c.val, got, c.want)
			}
		})
	}
}
