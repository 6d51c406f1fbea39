package sip

import (
	"bytes"
	"context"
	"log/slog"

	"braces.dev/errtrace"
	"github.com/qmuntal/stateless"

	"github.com/ghettovoice/sipmsg/internal/errorutil"
	"github.com/ghettovoice/sipmsg/internal/log"
)

// StreamStatus is the state of a [StreamParser] or the outcome of [StreamParser.Process].
type StreamStatus int

const (
	// StreamReady means nothing is buffered and no message is in flight.
	StreamReady StreamStatus = iota
	// StreamWaitingForHeaders means the buffer has no complete header section yet.
	StreamWaitingForHeaders
	// StreamWaitingForBody means the header section of a message is parsed and its body is incomplete.
	StreamWaitingForBody
	// StreamSuccess means at least one message was completed during the call.
	StreamSuccess
)

func (s StreamStatus) String() string {
	switch s {
	case StreamReady:
		return "ready"
	case StreamWaitingForHeaders:
		return "waiting for headers"
	case StreamWaitingForBody:
		return "waiting for body"
	case StreamSuccess:
		return "success"
	default:
		return "unknown"
	}
}

type streamTrigger int

const (
	triggerData    streamTrigger = iota // bytes buffered
	triggerHeaders                      // header section parsed
	triggerMessage                      // message completed
	triggerReset                        // buffer dropped
)

func (t streamTrigger) String() string {
	switch t {
	case triggerData:
		return "data"
	case triggerHeaders:
		return "headers"
	case triggerMessage:
		return "message"
	case triggerReset:
		return "reset"
	default:
		return "unknown"
	}
}

// StreamParserOptions configures [StreamParser].
// Nil options mean defaults.
type StreamParserOptions struct {
	// Logger receives debug records on state transitions.
	// Nil means [log.Default].
	Logger *slog.Logger
	// MaxBufferSize limits the bytes buffered for one message.
	// Zero means no limit.
	MaxBufferSize int
}

func (o *StreamParserOptions) logger() *slog.Logger {
	if o == nil || o.Logger == nil {
		return log.Default()
	}
	return o.Logger
}

func (o *StreamParserOptions) maxBufSize() int {
	if o == nil || o.MaxBufferSize < 0 {
		return 0
	}
	return o.MaxBufferSize
}

// StreamParser reassembles SIP messages from a byte stream.
//
// Each chunk passed to [StreamParser.Process] is appended to an internal buffer.
// Complete messages are cut from the buffer using the empty line after the headers
// and Content-Length. A message without Content-Length has an empty body.
//
// StreamParser is not safe for concurrent use, use one parser per connection.
type StreamParser struct {
	log    *slog.Logger
	maxBuf int
	sm     *stateless.StateMachine

	buf     []byte
	msg     Message
	bodyLen int
}

// NewStreamParser creates a new stream parser.
func NewStreamParser(opts *StreamParserOptions) *StreamParser {
	p := &StreamParser{
		log:    opts.logger(),
		maxBuf: opts.maxBufSize(),
	}

	sm := stateless.NewStateMachine(StreamReady)
	sm.Configure(StreamReady).
		OnEntry(p.onReady).
		Permit(triggerData, StreamWaitingForHeaders).
		Ignore(triggerMessage).
		Ignore(triggerReset)
	sm.Configure(StreamWaitingForHeaders).
		Permit(triggerHeaders, StreamWaitingForBody).
		Permit(triggerReset, StreamReady).
		Ignore(triggerData)
	sm.Configure(StreamWaitingForBody).
		OnEntryFrom(triggerHeaders, p.onHeaders).
		Permit(triggerMessage, StreamReady).
		Permit(triggerReset, StreamReady).
		Ignore(triggerData)
	sm.OnTransitioned(func(ctx context.Context, t stateless.Transition) {
		p.log.LogAttrs(ctx, slog.LevelDebug, "stream parser state changed",
			slog.Any("trigger", t.Trigger),
			slog.Any("from", t.Source),
			slog.Any("to", t.Destination),
			slog.Int("buffered", len(p.buf)),
		)
	})
	p.sm = sm
	return p
}

func (p *StreamParser) onReady(context.Context, ...any) error {
	p.msg = nil
	p.bodyLen = 0
	return nil
}

func (p *StreamParser) onHeaders(_ context.Context, args ...any) error {
	p.msg = args[0].(Message) //nolint:forcetypeassert
	p.bodyLen = args[1].(int) //nolint:forcetypeassert
	return nil
}

// State returns the current state of the parser:
// [StreamReady], [StreamWaitingForHeaders] or [StreamWaitingForBody].
func (p *StreamParser) State() StreamStatus {
	return p.sm.MustState().(StreamStatus) //nolint:forcetypeassert
}

// Buffered returns the number of buffered bytes not consumed by a completed message.
func (p *StreamParser) Buffered() int { return len(p.buf) }

// Reset drops the buffer and the message in flight.
func (p *StreamParser) Reset() {
	p.buf = nil
	p.fire(triggerReset)
}

func (p *StreamParser) fire(trigger streamTrigger, args ...any) {
	if err := p.sm.Fire(trigger, args...); err != nil {
		// all triggers are configured for every state
		panic(err)
	}
}

// Process appends the chunk to the buffer and extracts all complete messages.
//
// It returns [StreamSuccess] with the messages when at least one message was completed,
// [StreamReady] when nothing is buffered, otherwise [StreamWaitingForHeaders] or [StreamWaitingForBody].
// Whitespace is skipped only between messages, the body bytes are taken as is.
// When a header section fails to parse, the section is dropped so the next message can be parsed,
// and the [*ParseError] is returned along with the messages completed before it.
func (p *StreamParser) Process(chunk []byte) (StreamStatus, []Message, error) {
	if p.msg == nil {
		p.buf = trimLeadingSpace(append(p.buf, chunk...))
	} else {
		p.buf = append(p.buf, chunk...)
	}
	p.log.LogAttrs(context.Background(), slog.LevelDebug, "stream chunk received",
		slog.Any("chunk", log.ChunkValue(chunk)),
		slog.Int("buffered", len(p.buf)),
	)

	var msgs []Message
	for len(p.buf) > 0 || p.msg != nil {
		if p.msg == nil {
			p.fire(triggerData)

			i := bytes.Index(p.buf, []byte(hdrsEnd))
			if i < 0 {
				if p.maxBuf > 0 && len(p.buf) > p.maxBuf {
					n := len(p.buf)
					p.Reset()
					return p.status(msgs), msgs, errtrace.Wrap(
						errorutil.NewWrapperError(ErrMessageTooLarge, "%d bytes without header section", n),
					)
				}
				break
			}

			head := p.buf[:i+len(hdrsEnd)]
			p.buf = p.buf[len(head):]
			msg, err := parseMessage(string(head), true)
			if err != nil {
				p.log.LogAttrs(context.Background(), slog.LevelDebug, "drop malformed header section",
					slog.Any("error", err),
					slog.Int("dropped", len(head)),
				)
				if len(p.buf) == 0 {
					p.fire(triggerReset)
				}
				return p.status(msgs), msgs, errtrace.Wrap(err)
			}

			var bodyLen int
			if n, ok := msg.MessageHeaders().ContentLength(); ok {
				bodyLen = int(n)
			}
			if p.maxBuf > 0 && bodyLen > p.maxBuf {
				p.fire(triggerReset)
				p.buf = nil
				return p.status(msgs), msgs, errtrace.Wrap(&ParseError{
					Err:   errorutil.NewWrapperError(ErrMessageTooLarge, "Content-Length %d exceeds %d", bodyLen, p.maxBuf),
					State: ParseStateBody,
					Msg:   msg,
				})
			}
			p.fire(triggerHeaders, msg, bodyLen)
		}

		if p.bodyLen > len(p.buf) {
			break
		}

		msg := p.msg
		if p.bodyLen > 0 {
			msg.SetMessageBody(bytes.Clone(p.buf[:p.bodyLen]))
		}
		p.buf = trimLeadingSpace(p.buf[p.bodyLen:])
		p.fire(triggerMessage)
		p.log.LogAttrs(context.Background(), slog.LevelDebug, "stream message completed", slog.Any("message", msg))
		msgs = append(msgs, msg)
	}
	return p.status(msgs), msgs, nil
}

func (p *StreamParser) status(msgs []Message) StreamStatus {
	if len(msgs) > 0 {
		return StreamSuccess
	}
	switch st := p.State(); {
	case st == StreamWaitingForBody:
		return StreamWaitingForBody
	case st == StreamReady && len(p.buf) == 0:
		return StreamReady
	default:
		return StreamWaitingForHeaders
	}
}

func trimLeadingSpace(b []byte) []byte {
	b = bytes.TrimLeft(b, " \t\r\n")
	if len(b) == 0 {
		return nil
	}
	return b
}
