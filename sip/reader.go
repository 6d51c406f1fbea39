package sip

import (
	"errors"
	"io"
	"iter"
	"log/slog"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipmsg/internal/log"
)

// DefaultChunkSize is the read size used by [ReadMessages] when none is configured.
const DefaultChunkSize = 4096

// ReaderOptions configures [ReadMessages].
// Nil options mean defaults.
type ReaderOptions struct {
	// Logger is passed to the underlying [StreamParser].
	// Nil means [log.Default].
	Logger *slog.Logger
	// ChunkSize is the size of a single read.
	// Zero means [DefaultChunkSize].
	ChunkSize int
	// MaxBufferSize limits the bytes buffered for one message, see [StreamParserOptions].
	MaxBufferSize int
}

func (o *ReaderOptions) logger() *slog.Logger {
	if o == nil || o.Logger == nil {
		return log.Default()
	}
	return o.Logger
}

func (o *ReaderOptions) chunkSize() int {
	if o == nil || o.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return o.ChunkSize
}

func (o *ReaderOptions) maxBufSize() int {
	if o == nil {
		return 0
	}
	return o.MaxBufferSize
}

// ReadMessages returns an iterator that reads r until EOF and yields each parsed [Message].
//
// A malformed message yields the partially built message (or nil) and a [*ParseError],
// the iteration continues with the next message.
// A read error is yielded and stops the iteration. If EOF happens in the middle
// of a message, [io.ErrUnexpectedEOF] is yielded.
//
// The iterator is closed when the consumer breaks the loop.
//
// Example:
//
//	for msg, err := range sip.ReadMessages(conn, nil) {
//		if err != nil {
//			var perr *sip.ParseError
//			if errors.As(err, &perr) {
//				// malformed message, perr.Msg can hold an incomplete message
//				continue
//			}
//			break
//		}
//		// everything ok, message is valid
//	}
func ReadMessages(r io.Reader, opts *ReaderOptions) iter.Seq2[Message, error] {
	return func(yield func(Message, error) bool) {
		sp := NewStreamParser(&StreamParserOptions{
			Logger:        opts.logger(),
			MaxBufferSize: opts.maxBufSize(),
		})
		buf := make([]byte, opts.chunkSize())
		for {
			n, rerr := r.Read(buf)
			if n > 0 && !yieldChunk(sp, buf[:n], yield) {
				return
			}
			if rerr == nil {
				continue
			}

			if errors.Is(rerr, io.EOF) {
				if sp.State() != StreamReady {
					yield(nil, errtrace.Wrap(io.ErrUnexpectedEOF))
				}
				return
			}
			yield(nil, errtrace.Wrap(rerr))
			return
		}
	}
}

func yieldChunk(sp *StreamParser, chunk []byte, yield func(Message, error) bool) bool {
	_, msgs, err := sp.Process(chunk)
	for {
		for _, msg := range msgs {
			if !yield(msg, nil) {
				return false
			}
		}
		if err == nil {
			return true
		}

		var (
			msg  Message
			perr *ParseError
		)
		if errors.As(err, &perr) {
			msg = perr.Msg
		}
		if !yield(msg, err) {
			return false
		}
		// the bad section is dropped, continue with what is left in the buffer
		_, msgs, err = sp.Process(nil)
	}
}
