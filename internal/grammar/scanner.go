package grammar

import (
	"braces.dev/errtrace"

	"github.com/ghettovoice/sipmsg/internal/errorutil"
)

// ScanState is a state of the [Scanner].
type ScanState uint8

const (
	Unquoted        ScanState = iota // outside quotes and angle brackets
	Quoted                           // inside a quoted string
	InAngleBrackets                  // inside a <...> enclosure
)

func (s ScanState) String() string {
	switch s {
	case Unquoted:
		return "Unquoted"
	case Quoted:
		return "Quoted"
	case InAngleBrackets:
		return "InAngleBrackets"
	default:
		return "ScanState(?)"
	}
}

// Scanner walks a header value byte by byte tracking whether the cursor
// is inside a quoted string or an angle-bracket enclosure.
// A backslash inside a quoted string escapes the next byte.
// Quotes inside angle brackets are plain characters.
type Scanner struct {
	src   string
	pos   int
	state ScanState
	err   error
}

// NewScanner returns a scanner positioned at the start of s.
func NewScanner(s string) *Scanner { return &Scanner{src: s} }

// Next consumes one byte. It returns the byte and the state the scanner was in
// before consuming it, so structural characters ('"', '<', '>') are reported
// with the state they open or close from.
// ok is false at the end of input or after an error.
func (sc *Scanner) Next() (c byte, st ScanState, ok bool) {
	if sc.err != nil || sc.pos >= len(sc.src) {
		return 0, sc.state, false
	}

	c, st = sc.src[sc.pos], sc.state
	sc.pos++
	switch st {
	case Unquoted:
		switch c {
		case '"':
			sc.state = Quoted
		case '<':
			sc.state = InAngleBrackets
		case '>':
			sc.err = errorutil.NewWrapperError(ErrUnbalancedAngle, "unexpected '>' at %d", sc.pos-1)
			return c, st, false
		}
	case Quoted:
		switch c {
		case '\\':
			if sc.pos < len(sc.src) {
				sc.pos++
			}
		case '"':
			sc.state = Unquoted
		}
	case InAngleBrackets:
		switch c {
		case '>':
			sc.state = Unquoted
		case '<':
			sc.err = errorutil.NewWrapperError(ErrUnbalancedAngle, "nested '<' at %d", sc.pos-1)
			return c, st, false
		}
	}
	return c, st, true
}

// Pos returns the offset of the next byte.
func (sc *Scanner) Pos() int { return sc.pos }

// State returns the current state.
func (sc *Scanner) State() ScanState { return sc.state }

// Err returns the first error met, or an unterminated-construct error
// if the input ended inside quotes or angle brackets.
func (sc *Scanner) Err() error {
	if sc.err != nil {
		return errtrace.Wrap(sc.err)
	}
	if sc.pos >= len(sc.src) {
		switch sc.state {
		case Quoted:
			return errtrace.Wrap(ErrUnterminatedQuote)
		case InAngleBrackets:
			return errtrace.Wrap(errorutil.NewWrapperError(ErrUnbalancedAngle, "missing '>'"))
		}
	}
	return nil
}

// Split splits s around each sep byte met in the [Unquoted] state.
// Separators inside quoted strings or angle brackets do not split.
func Split(s string, sep byte) ([]string, error) {
	var (
		parts []string
		start int
	)
	sc := NewScanner(s)
	for {
		c, st, ok := sc.Next()
		if !ok {
			break
		}
		if c == sep && st == Unquoted {
			parts = append(parts, s[start:sc.Pos()-1])
			start = sc.Pos()
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errtrace.Wrap(err)
	}
	return append(parts, s[start:]), nil
}

// IndexUnquoted returns the index of the first c met in the [Unquoted] state, or -1.
// The search stops at the first syntax error.
func IndexUnquoted(s string, c byte) int {
	sc := NewScanner(s)
	for {
		b, st, ok := sc.Next()
		if !ok {
			return -1
		}
		if b == c && st == Unquoted {
			return sc.Pos() - 1
		}
	}
}
