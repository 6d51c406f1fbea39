package ioutil_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ghettovoice/sipmsg/internal/ioutil"
)

var errWriteFailed = errors.New("write failed")

type limitWriter struct {
	limit   int
	written int
}

func (lw *limitWriter) Write(p []byte) (int, error) {
	if lw.written >= lw.limit {
		return 0, errWriteFailed
	}
	n := min(len(p), lw.limit-lw.written)
	lw.written += n
	if n < len(p) {
		return n, errWriteFailed
	}
	return n, nil
}

func TestCountingWriter(t *testing.T) {
	t.Parallel()

	errInvalid := errors.New("invalid value")

	cases := []struct {
		name    string
		w       func() (io.Writer, *bytes.Buffer)
		write   func(cw *ioutil.CountingWriter)
		wantNum int
		wantOut string
		wantErr error
	}{
		{
			name: "mixed writes",
			write: func(cw *ioutil.CountingWriter) {
				cw.Write([]byte("INVITE"))
				cw.WriteString(" ")
				cw.Fprint("sip:", "alice@atlanta.com")
			},
			wantNum: 28,
			wantOut: "INVITE sip:alice@atlanta.com",
		},
		{
			name: "lines",
			write: func(cw *ioutil.CountingWriter) {
				cw.Line("Max-Forwards: ", 70).Line()
			},
			wantNum: 20,
			wantOut: "Max-Forwards: 70\r\n\r\n",
		},
		{
			name: "call chain",
			write: func(cw *ioutil.CountingWriter) {
				cw.Call(func(w io.Writer) (int, error) { return io.WriteString(w, "a") }).
					Call(func(w io.Writer) (int, error) { return io.WriteString(w, "bc") })
			},
			wantNum: 3,
			wantOut: "abc",
		},
		{
			name: "call error stops chain",
			write: func(cw *ioutil.CountingWriter) {
				cw.Call(func(w io.Writer) (int, error) { return io.WriteString(w, "a") }).
					Call(func(io.Writer) (int, error) { return 0, errInvalid }).
					Call(func(w io.Writer) (int, error) { return io.WriteString(w, "b") })
			},
			wantNum: 1,
			wantOut: "a",
			wantErr: errInvalid,
		},
		{
			name: "fail stops writes",
			write: func(cw *ioutil.CountingWriter) {
				cw.WriteString("CSeq: ")
				cw.Fail(errInvalid).Fail(errWriteFailed)
				cw.WriteString("1 INVITE")
			},
			wantNum: 6,
			wantOut: "CSeq: ",
			wantErr: errInvalid,
		},
		{
			name: "underlying error sticks",
			w: func() (io.Writer, *bytes.Buffer) {
				return &limitWriter{limit: 5}, nil
			},
			write: func(cw *ioutil.CountingWriter) {
				cw.WriteString("hello")
				cw.WriteString(" world")
				cw.WriteString("!")
			},
			wantNum: 5,
			wantErr: errWriteFailed,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			var (
				w   io.Writer
				buf *bytes.Buffer
			)
			if c.w != nil {
				w, buf = c.w()
			} else {
				buf = new(bytes.Buffer)
				w = buf
			}

			cw := ioutil.GetCountingWriter(w)
			defer ioutil.FreeCountingWriter(cw)

			c.write(cw)
			num, err := cw.Result()
			if num != c.wantNum {
				t.Errorf("cw.Result() num = %d, want %d", num, c.wantNum)
			}
			if diff := cmp.Diff(err, c.wantErr, cmpopts.EquateErrors()); diff != "" {
				t.Errorf("cw.Result() error = %v, want %v\ndiff (-got +want):\n%v", err, c.wantErr, diff)
			}
			if buf != nil {
				if got := buf.String(); got != c.wantOut {
					t.Errorf("written = %q, want %q", got, c.wantOut)
				}
			}
		})
	}
}
