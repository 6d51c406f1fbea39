package grammar_test

import (
	"testing"

	"github.com/ghettovoice/sipmsg/internal/grammar"
)

func TestIsToken(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"INVITE", true},
		{"x-custom.ext!%*_+`'~", true},
		{"with space", false},
		{"semi;colon", false},
		{"quo\"te", false},
	}

	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			t.Parallel()

			if got := grammar.IsToken(c.in); got != c.want {
				t.Errorf("grammar.IsToken(%q) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}

func TestIsHost(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"atlanta.com", true},
		{"atlanta.com.", true},
		{"biloxi", true},
		{"a-1.example.com", true},
		{"192.168.0.1", true},
		{"[2001:db8::10]", true},
		{"2001:db8::10", true},
		{"[192.168.0.1]", false},
		{"atlanta+com", false},
		{"-atlanta.com", false},
		{"atlanta-.com", false},
		{"atlanta..com", false},
		{"example.123", false},
		{"192.168.0.256", false},
	}

	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			t.Parallel()

			if got := grammar.IsHost(c.in); got != c.want {
				t.Errorf("grammar.IsHost(%q) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}

func TestIsScheme(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"sip", true},
		{"sips", true},
		{"tel", true},
		{"coap+tcp", true},
		{"1sip", false},
		{"bob sip", false},
	}

	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			t.Parallel()

			if got := grammar.IsScheme(c.in); got != c.want {
				t.Errorf("grammar.IsScheme(%q) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}

func TestIsHex(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"00000001", true},
		{"6629fae49393a05397450978507c4ef1", true},
		{"DEADbeef", true},
		{"0x1", false},
	}

	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			t.Parallel()

			if got := grammar.IsHex(c.in); got != c.want {
				t.Errorf("grammar.IsHex(%q) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}
