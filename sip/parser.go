package sip

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipmsg/header"
	"github.com/ghettovoice/sipmsg/internal/errorutil"
	"github.com/ghettovoice/sipmsg/internal/grammar"
	"github.com/ghettovoice/sipmsg/internal/ioutil"
	"github.com/ghettovoice/sipmsg/internal/util"
	"github.com/ghettovoice/sipmsg/uri"
)

const hdrsEnd = ioutil.CRLF + ioutil.CRLF

// ParseOptions controls [ParseMessage].
// Nil options mean defaults.
type ParseOptions struct {
	// IgnoreBody stops parsing after the header section, the returned message has no body
	// and Content-Length is not checked against the input.
	IgnoreBody bool
}

func (o *ParseOptions) ignoreBody() bool { return o != nil && o.IgnoreBody }

// ParseState is a stage of message parsing.
type ParseState int

const (
	ParseStateStart   ParseState = iota // parsing message start line
	ParseStateHeaders                   // parsing message headers
	ParseStateBody                      // parsing message body
)

func (s ParseState) String() string {
	switch s {
	case ParseStateStart:
		return "start line"
	case ParseStateHeaders:
		return "headers"
	case ParseStateBody:
		return "body"
	default:
		return "ParseState(" + strconv.Itoa(int(s)) + ")"
	}
}

// ParseError represents an error that occurred during parsing.
//
// It contains the error that occurred, the parsing state, the line that caused the error
// and the partially built message.
type ParseError struct {
	Err   error
	State ParseState
	// Line is the start line or the header name that failed.
	Line string
	// Msg is the message built before the failure, nil when the start line failed.
	Msg Message
}

func (err *ParseError) Error() string {
	if err == nil {
		return "<nil>"
	}
	if err.Line != "" {
		return fmt.Sprintf("parse %s %q: %v", err.State, util.Ellipsis(err.Line, 64), err.Err)
	}
	return fmt.Sprintf("parse %s: %v", err.State, err.Err)
}

func (err *ParseError) Unwrap() error {
	if err == nil {
		return nil
	}
	return err.Err
}

// ParseMessage parses a single SIP message from s.
//
// s must hold a complete message: the start line, the header section terminated by an empty
// line and the body. Leading CRLFs are skipped. Repeated header lines with the same name are
// merged and parsed as one header.
//
// Unless [ParseOptions.IgnoreBody] is set, the body is the input after the header section.
// When the message has Content-Length, the body is cut to the declared length and a shorter
// body fails with [ErrBodyLengthMismatch].
//
// On failure it returns the partially built message along with a [*ParseError].
func ParseMessage[T ~string | ~[]byte](s T, opts *ParseOptions) (Message, error) {
	return errtrace.Wrap2(parseMessage(string(s), opts.ignoreBody()))
}

type hdrLines struct {
	name  string
	lines []string
}

func parseMessage(s string, ignoreBody bool) (Message, error) {
	s = strings.TrimLeft(s, "\r\n")
	line, rest, ok := strings.Cut(s, ioutil.CRLF)
	msg, err := parseStartLine(line)
	if err != nil {
		return nil, errtrace.Wrap(&ParseError{Err: err, State: ParseStateStart, Line: line})
	}

	var head, body string
	switch {
	case !ok:
		return msg, errtrace.Wrap(&ParseError{Err: ErrMissingHeaderSection, State: ParseStateHeaders, Msg: msg})
	case strings.HasPrefix(rest, ioutil.CRLF):
		body = rest[len(ioutil.CRLF):]
	default:
		i := strings.Index(rest, hdrsEnd)
		if i < 0 {
			return msg, errtrace.Wrap(&ParseError{
				Err:   errorutil.NewWrapperError(ErrMissingHeaderSection, "no empty line after headers"),
				State: ParseStateHeaders,
				Msg:   msg,
			})
		}
		head, body = rest[:i], rest[i+len(hdrsEnd):]
	}

	if err := parseHeaders(head, msg.MessageHeaders()); err != nil {
		err.Msg = msg
		return msg, errtrace.Wrap(err)
	}

	if req, ok := msg.(*Request); ok {
		if cseq, ok := req.Headers.CSeq(); ok && cseq != nil && cseq.Method != req.Method {
			return msg, errtrace.Wrap(&ParseError{
				Err:   errorutil.NewWrapperError(ErrCSeqMethodMismatch, "got %q, want %q", cseq.Method, req.Method),
				State: ParseStateHeaders,
				Line:  "CSeq",
				Msg:   msg,
			})
		}
	}

	if ignoreBody {
		return msg, nil
	}

	if n, ok := msg.MessageHeaders().ContentLength(); ok {
		if uint64(len(body)) < uint64(n) {
			return msg, errtrace.Wrap(&ParseError{
				Err:   errorutil.NewWrapperError(ErrBodyLengthMismatch, "got %d bytes, want %d", len(body), n),
				State: ParseStateBody,
				Msg:   msg,
			})
		}
		body = body[:n]
	}
	if len(body) > 0 {
		msg.SetMessageBody([]byte(body))
	}
	return msg, nil
}

func parseStartLine(line string) (Message, error) {
	if util.TrimSP(line) == "" {
		return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrMalformedStartLine, "empty line"))
	}
	if len(line) >= 4 && util.EqFold(line[:4], "SIP/") {
		return errtrace.Wrap2(parseStatusLine(line))
	}
	return errtrace.Wrap2(parseRequestLine(line))
}

func parseStatusLine(line string) (*Response, error) {
	ver, rest, ok := strings.Cut(line, " ")
	if !ok {
		return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrMalformedStartLine, "missing status code"))
	}
	if !util.EqFold(ver, Proto) {
		return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrUnsupportedProtocolVersion, "%q", ver))
	}

	code, reason, _ := strings.Cut(rest, " ")
	if len(code) != 3 || !grammar.IsDigits(code) {
		return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidStatusCode, "%q", code))
	}
	n, _ := strconv.ParseUint(code, 10, 16)
	sts := ResponseStatus(n)
	if !sts.IsValid() {
		return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidStatusCode, "%q", code))
	}
	return &Response{Status: sts, Reason: ResponseReason(reason)}, nil
}

func parseRequestLine(line string) (*Request, error) {
	parts := strings.Split(line, " ")
	if len(parts) != 3 {
		return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrMalformedStartLine, "want 3 elements, got %d", len(parts)))
	}

	method, rawURI, ver := parts[0], parts[1], parts[2]
	if !grammar.IsToken(method) {
		return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidRequestMethod, "%q", method))
	}
	if len(ver) < 4 || !util.EqFold(ver[:4], "SIP/") {
		return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrMalformedStartLine, "invalid protocol %q", ver))
	}
	if !util.EqFold(ver, Proto) {
		return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrUnsupportedProtocolVersion, "%q", ver))
	}
	if strings.HasPrefix(rawURI, "<") {
		return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidRequestURI, "URI enclosed in angle brackets"))
	}

	u, err := uri.Parse(rawURI)
	if err != nil {
		return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidRequestURI, err))
	}
	// headers are meaningless in a Request-URI, a UAS drops them
	u.Headers = nil
	u.Opaque, _, _ = strings.Cut(u.Opaque, "?")
	return &Request{Method: RequestMethod(method), URI: u}, nil
}

func parseHeaders(head string, hdrs *Headers) *ParseError {
	if head == "" {
		return nil
	}

	var (
		entries []*hdrLines
		byKey   = make(map[string]*hdrLines)
		last    *hdrLines
	)
	for line := range strings.SplitSeq(head, ioutil.CRLF) {
		if line != "" && util.IsLWS(line[0]) {
			if last == nil {
				return &ParseError{
					Err:   errorutil.NewWrapperError(ErrMalformedHeaderLine, "continuation without header"),
					State: ParseStateHeaders,
					Line:  line,
				}
			}
			i := len(last.lines) - 1
			if v := util.TrimLWS(line); v != "" {
				if last.lines[i] == "" {
					last.lines[i] = v
				} else {
					last.lines[i] += " " + v
				}
			}
			continue
		}

		name, val, ok := strings.Cut(line, ":")
		name = strings.TrimRight(name, " \t")
		if !ok || !grammar.IsToken(name) {
			return &ParseError{
				Err:   errorutil.NewWrapperError(ErrMalformedHeaderLine, "invalid header name"),
				State: ParseStateHeaders,
				Line:  line,
			}
		}

		key := header.Expand(name)
		e, ok := byKey[key]
		if !ok {
			e = &hdrLines{name: name}
			byKey[key] = e
			entries = append(entries, e)
		}
		e.lines = append(e.lines, util.TrimLWS(val))
		last = e
	}

	for _, e := range entries {
		vals := slices.DeleteFunc(e.lines, func(v string) bool { return v == "" })
		if len(vals) == 0 {
			continue
		}
		hdr, err := header.Parse(e.name, vals)
		if err != nil {
			return &ParseError{Err: err, State: ParseStateHeaders, Line: e.name}
		}
		hdrs.Set(hdr)
	}
	return nil
}
