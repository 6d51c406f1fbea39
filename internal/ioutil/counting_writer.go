// Package ioutil provides I/O helpers for rendering wire text.
package ioutil

//go:generate go tool errtrace -w .

import (
	"fmt"
	"io"
	"sync"

	"braces.dev/errtrace"
)

// CRLF is the SIP line terminator.
const CRLF = "\r\n"

// CountingWriter wraps an io.Writer and tracks the total number of bytes written.
// The first error, either from the underlying writer or recorded with [CountingWriter.Fail],
// sticks and turns all further writes into no-ops.
type CountingWriter struct {
	w   io.Writer
	num int
	err error
}

// NewCountingWriter creates a new CountingWriter wrapping the given writer.
func NewCountingWriter(w io.Writer) *CountingWriter {
	return &CountingWriter{w: w}
}

// Write implements io.Writer and tracks bytes written.
func (cw *CountingWriter) Write(p []byte) (n int, err error) {
	if cw.err != nil {
		return 0, errtrace.Wrap(cw.err)
	}
	n, err = cw.w.Write(p)
	return cw.track(n, err)
}

// WriteString writes a string and tracks bytes written.
func (cw *CountingWriter) WriteString(s string) (n int, err error) {
	if cw.err != nil {
		return 0, errtrace.Wrap(cw.err)
	}
	n, err = io.WriteString(cw.w, s)
	return cw.track(n, err)
}

// Fprint writes args with [fmt.Fprint] semantics and tracks bytes written.
func (cw *CountingWriter) Fprint(args ...any) (n int, err error) {
	if cw.err != nil {
		return 0, errtrace.Wrap(cw.err)
	}
	n, err = fmt.Fprint(cw.w, args...)
	return cw.track(n, err)
}

// Line writes args followed by CRLF.
func (cw *CountingWriter) Line(args ...any) *CountingWriter {
	cw.Fprint(args...)   //nolint:errcheck
	cw.WriteString(CRLF) //nolint:errcheck
	return cw
}

// Call executes a RenderTo-style function and tracks bytes written.
func (cw *CountingWriter) Call(fn func(io.Writer) (int, error)) *CountingWriter {
	if cw.err != nil {
		return cw
	}
	cw.track(fn(cw.w)) //nolint:errcheck
	return cw
}

// Fail records err unless an error is already recorded.
// It is used by renderers to stop on an invalid value.
func (cw *CountingWriter) Fail(err error) *CountingWriter {
	if cw.err == nil && err != nil {
		cw.err = err
	}
	return cw
}

func (cw *CountingWriter) track(n int, err error) (int, error) {
	cw.num += n
	if err != nil {
		cw.err = errtrace.Wrap(err)
		return n, errtrace.Wrap(cw.err)
	}
	return n, nil
}

// Result returns the total number of bytes written and any error encountered.
func (cw *CountingWriter) Result() (num int, err error) {
	return cw.num, errtrace.Wrap(cw.err)
}

// Err returns any error that occurred during writing.
func (cw *CountingWriter) Err() error {
	return errtrace.Wrap(cw.err)
}

// Count returns the total number of bytes written.
func (cw *CountingWriter) Count() int {
	return cw.num
}

var cntWrtPool = &sync.Pool{
	New: func() any { return &CountingWriter{} },
}

func GetCountingWriter(w io.Writer) *CountingWriter {
	cw := cntWrtPool.Get().(*CountingWriter) //nolint:forcetypeassert
	cw.w = w
	return cw
}

func FreeCountingWriter(cw *CountingWriter) {
	cw.w = nil
	cw.num = 0
	cw.err = nil
	cntWrtPool.Put(cw)
}
