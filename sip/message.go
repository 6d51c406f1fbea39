package sip

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipmsg/internal/errorutil"
	"github.com/ghettovoice/sipmsg/internal/ioutil"
	"github.com/ghettovoice/sipmsg/internal/types"
)

// Message is a SIP message, either [*Request] or [*Response].
type Message interface {
	types.Renderer
	slog.LogValuer
	fmt.Stringer
	// StartLine renders the Request-Line or the Status-Line without CRLF.
	StartLine() (string, error)
	// MessageHeaders returns the header set of the message.
	MessageHeaders() *Headers
	// MessageBody returns the message body.
	MessageBody() []byte
	// SetMessageBody replaces the message body.
	// Content-Length is not updated.
	SetMessageBody(body []byte)
	Clone() Message
	Equal(val any) bool
}

// Request represents a SIP request message.
type Request struct {
	Method  RequestMethod
	URI     *URI
	Headers Headers
	Body    []byte
}

// StartLine returns the Request-Line.
func (req *Request) StartLine() (string, error) {
	if req == nil {
		return "", nil
	}
	return errtrace.Wrap2(types.RenderString(func(w io.Writer, _ *RenderOptions) (int, error) {
		return errtrace.Wrap2(req.renderStartLine(w))
	}, nil))
}

func (req *Request) renderStartLine(w io.Writer) (int, error) {
	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	switch {
	case !req.Method.IsValid():
		cw.Fail(errorutil.NewWrapperError(ErrInvalidRequestMethod, "%q", req.Method))
	case req.URI == nil:
		cw.Fail(errorutil.NewWrapperError(ErrInvalidRequestURI, "missing URI"))
	case len(req.URI.Headers) > 0:
		cw.Fail(errorutil.NewWrapperError(ErrInvalidRequestURI, "URI headers are not allowed"))
	}
	cw.Fprint(req.Method, " ")
	cw.Call(func(w io.Writer) (int, error) {
		return errtrace.Wrap2(req.URI.RenderTo(w, nil))
	})
	cw.Fprint(" ", Proto)
	return errtrace.Wrap2(cw.Result())
}

// RenderTo renders the SIP request to the given writer.
func (req *Request) RenderTo(w io.Writer, opts *RenderOptions) (int, error) {
	if req == nil {
		return 0, nil
	}
	return errtrace.Wrap2(renderMessage(w, req.renderStartLine, &req.Headers, req.Body, opts))
}

// Render renders the SIP request to a string.
func (req *Request) Render(opts *RenderOptions) (string, error) {
	if req == nil {
		return "", nil
	}
	return errtrace.Wrap2(types.RenderString(req.RenderTo, opts))
}

// String returns a short representation of the request, its Request-Line.
func (req *Request) String() string {
	if req == nil {
		return "<nil>"
	}
	s, _ := req.StartLine()
	return s
}

// Format implements [fmt.Formatter] for custom formatting.
func (req *Request) Format(f fmt.State, verb rune) {
	type hideMethods Request
	type Request hideMethods
	formatMessage(f, verb, req, (*Request)(req))
}

// LogValue implements [slog.LogValuer] for structured logging.
func (req *Request) LogValue() slog.Value {
	if req == nil {
		return slog.Value{}
	}

	attrs := make([]slog.Attr, 0, 4)
	attrs = append(attrs, slog.String("method", string(req.Method)))
	if req.URI != nil {
		attrs = append(attrs, slog.String("uri", req.URI.String()))
	}
	return slog.GroupValue(appendHdrAttrs(attrs, &req.Headers)...)
}

func (req *Request) MessageHeaders() *Headers {
	if req == nil {
		return nil
	}
	return &req.Headers
}

func (req *Request) MessageBody() []byte {
	if req == nil {
		return nil
	}
	return req.Body
}

func (req *Request) SetMessageBody(body []byte) {
	if req != nil {
		req.Body = body
	}
}

// Clone returns a deep copy of the request.
func (req *Request) Clone() Message {
	if req == nil {
		return nil
	}

	req2 := *req
	req2.URI = req.URI.Clone()
	req2.Headers = req.Headers.Clone()
	req2.Body = slices.Clone(req.Body)
	return &req2
}

// Equal returns whether the request is equal to another value.
// The URI is compared structurally, see [uri.URI.IsEquivalent] for RFC 3261 comparison.
func (req *Request) Equal(val any) bool {
	var other *Request
	switch v := val.(type) {
	case Request:
		other = &v
	case *Request:
		other = v
	default:
		return false
	}

	if req == other {
		return true
	} else if req == nil || other == nil {
		return false
	}

	return req.Method == other.Method &&
		req.URI.Equal(other.URI) &&
		req.Headers.Equal(&other.Headers) &&
		bytes.Equal(req.Body, other.Body)
}

// Response represents a SIP response message.
type Response struct {
	Status ResponseStatus
	// Reason is the reason phrase.
	// When empty, the default phrase of the status is rendered.
	Reason  ResponseReason
	Headers Headers
	Body    []byte
}

// StartLine returns the Status-Line.
func (res *Response) StartLine() (string, error) {
	if res == nil {
		return "", nil
	}
	return errtrace.Wrap2(types.RenderString(func(w io.Writer, _ *RenderOptions) (int, error) {
		return errtrace.Wrap2(res.renderStartLine(w))
	}, nil))
}

func (res *Response) renderStartLine(w io.Writer) (int, error) {
	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	reason := res.Reason
	if reason == "" {
		reason = res.Status.Reason()
	}
	switch {
	case !res.Status.IsValid():
		cw.Fail(errorutil.NewWrapperError(ErrInvalidStatusCode, "%d", res.Status))
	case reason == "":
		cw.Fail(errorutil.NewWrapperError(ErrMissingValue, "reason phrase of status %d", res.Status))
	}
	cw.Fprint(Proto, " ", strconv.FormatUint(uint64(res.Status), 10), " ", reason)
	return errtrace.Wrap2(cw.Result())
}

// RenderTo renders the SIP response to the given writer.
func (res *Response) RenderTo(w io.Writer, opts *RenderOptions) (int, error) {
	if res == nil {
		return 0, nil
	}
	return errtrace.Wrap2(renderMessage(w, res.renderStartLine, &res.Headers, res.Body, opts))
}

// Render renders the SIP response to a string.
func (res *Response) Render(opts *RenderOptions) (string, error) {
	if res == nil {
		return "", nil
	}
	return errtrace.Wrap2(types.RenderString(res.RenderTo, opts))
}

// String returns a short representation of the response, its Status-Line.
func (res *Response) String() string {
	if res == nil {
		return "<nil>"
	}
	s, _ := res.StartLine()
	return s
}

// Format implements [fmt.Formatter] for custom formatting.
func (res *Response) Format(f fmt.State, verb rune) {
	type hideMethods Response
	type Response hideMethods
	formatMessage(f, verb, res, (*Response)(res))
}

// LogValue implements [slog.LogValuer] for structured logging.
func (res *Response) LogValue() slog.Value {
	if res == nil {
		return slog.Value{}
	}

	attrs := make([]slog.Attr, 0, 4)
	attrs = append(attrs, slog.Int("status", int(res.Status)))
	if res.Reason != "" {
		attrs = append(attrs, slog.String("reason", string(res.Reason)))
	}
	return slog.GroupValue(appendHdrAttrs(attrs, &res.Headers)...)
}

func (res *Response) MessageHeaders() *Headers {
	if res == nil {
		return nil
	}
	return &res.Headers
}

func (res *Response) MessageBody() []byte {
	if res == nil {
		return nil
	}
	return res.Body
}

func (res *Response) SetMessageBody(body []byte) {
	if res != nil {
		res.Body = body
	}
}

// Clone returns a deep copy of the response.
func (res *Response) Clone() Message {
	if res == nil {
		return nil
	}

	res2 := *res
	res2.Headers = res.Headers.Clone()
	res2.Body = slices.Clone(res.Body)
	return &res2
}

// Equal returns whether the response is equal to another value.
// Reason phrases are compared case-insensitively.
func (res *Response) Equal(val any) bool {
	var other *Response
	switch v := val.(type) {
	case Response:
		other = &v
	case *Response:
		other = v
	default:
		return false
	}

	if res == other {
		return true
	} else if res == nil || other == nil {
		return false
	}

	return res.Status == other.Status &&
		res.Reason.Equal(other.Reason) &&
		res.Headers.Equal(&other.Headers) &&
		bytes.Equal(res.Body, other.Body)
}

func renderMessage(
	w io.Writer,
	startLine func(w io.Writer) (int, error),
	hdrs *Headers,
	body []byte,
	opts *RenderOptions,
) (int, error) {
	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	cw.Call(startLine).Line()
	cw.Call(func(w io.Writer) (int, error) {
		return errtrace.Wrap2(hdrs.RenderTo(w, opts))
	}).Line()
	cw.Write(body)
	return errtrace.Wrap2(cw.Result())
}

func formatMessage(f fmt.State, verb rune, msg Message, v any) {
	switch verb {
	case 's':
		if f.Flag('+') {
			msg.RenderTo(f, nil) //nolint:errcheck
			return
		}
		fmt.Fprint(f, msg.String())
	case 'q':
		if f.Flag('+') {
			s, _ := msg.Render(nil)
			fmt.Fprint(f, strconv.Quote(s))
			return
		}
		fmt.Fprint(f, strconv.Quote(msg.String()))
	default:
		fmt.Fprintf(f, fmt.FormatString(f, verb), v)
	}
}

func appendHdrAttrs(attrs []slog.Attr, hdrs *Headers) []slog.Attr {
	if callID, ok := hdrs.CallID(); ok {
		attrs = append(attrs, slog.String("call_id", string(callID)))
	}
	if cseq, ok := hdrs.CSeq(); ok && cseq != nil {
		attrs = append(attrs, slog.String("cseq", cseq.RenderValue()))
	}
	if hops, ok := hdrs.Via(); ok && len(hops) > 0 && hops[0].Branch != "" {
		attrs = append(attrs, slog.String("branch", hops[0].Branch))
	}
	if n, ok := hdrs.ContentLength(); ok {
		attrs = append(attrs, slog.Any("content_length", n))
	}
	return attrs
}

// IsRequest reports whether msg is a request.
func IsRequest(msg Message) bool {
	_, ok := msg.(*Request)
	return ok
}

// IsResponse reports whether msg is a response.
func IsResponse(msg Message) bool {
	_, ok := msg.(*Response)
	return ok
}
