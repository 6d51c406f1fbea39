package digest

import (
	"io"
	"strings"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipmsg/internal/errorutil"
	"github.com/ghettovoice/sipmsg/internal/grammar"
	"github.com/ghettovoice/sipmsg/internal/ioutil"
	"github.com/ghettovoice/sipmsg/internal/types"
	"github.com/ghettovoice/sipmsg/internal/util"
)

// Scheme is the authentication scheme name in its preferred case.
const Scheme = "Digest"

// Quality of protection values.
const (
	QoPAuth    = "auth"
	QoPAuthInt = "auth-int"
)

// Params is an ordered list of extension parameters.
type Params = types.Params

// RenderOptions are accepted for interface symmetry with headers and ignored.
type RenderOptions = types.RenderOptions

// walkParams iterates over comma separated key=value pairs of s.
// Values may be quoted strings, commas inside quotes do not separate pairs.
func walkParams(s string, fn func(key, val string) error) error {
	s = util.TrimLWS(s)
	for s != "" {
		key, rest, ok := strings.Cut(s, "=")
		if !ok {
			return errtrace.Wrap(errorutil.NewWrapperError(ErrMalformedValue, "valueless parameter %q", s))
		}
		key = util.TrimLWS(key)
		if !grammar.IsToken(key) {
			return errtrace.Wrap(errorutil.NewWrapperError(ErrMalformedValue, "invalid parameter name %q", key))
		}

		rest = strings.TrimLeft(rest, " \t")
		if rest == "" {
			return errtrace.Wrap(errorutil.NewWrapperError(ErrMalformedValue, "valueless parameter %q", key))
		}

		var val string
		if rest[0] == '"' {
			var err error
			if val, rest, err = grammar.ReadQuoted(rest); err != nil {
				return errtrace.Wrap(errorutil.NewWrapperError(ErrMalformedValue, err))
			}
			rest = strings.TrimLeft(rest, " \t")
			if rest != "" {
				if rest[0] != ',' {
					return errtrace.Wrap(errorutil.NewWrapperError(ErrMalformedValue, "unexpected %q after parameter %q", rest, key))
				}
				rest = rest[1:]
			}
		} else {
			val, rest, _ = strings.Cut(rest, ",")
			val = util.TrimLWS(val)
		}

		if err := fn(key, val); err != nil {
			return errtrace.Wrap(err)
		}
		s = strings.TrimLeft(rest, " \t")
	}
	return nil
}

type paramWriter struct {
	cw *ioutil.CountingWriter
	n  int
}

func (pw *paramWriter) write(key, val string, quote bool) {
	if pw.n > 0 {
		pw.cw.WriteString(", ")
	}
	if quote {
		val = grammar.Quote(val)
	}
	pw.cw.Fprint(key, "=", val)
	pw.n++
}

func (pw *paramWriter) writeNonEmpty(key, val string, quote bool) {
	if val != "" {
		pw.write(key, val, quote)
	}
}

func (pw *paramWriter) writeExtra(ps Params) {
	for _, p := range ps {
		pw.write(p.Name, p.Value, !grammar.IsToken(p.Value))
	}
}

func renderParams(w io.Writer, fn func(pw *paramWriter)) (int, error) {
	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	fn(&paramWriter{cw: cw})
	return errtrace.Wrap2(cw.Result())
}
