package sip_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ghettovoice/sipmsg/internal/util"
	"github.com/ghettovoice/sipmsg/sip"
)

var streamMsgs = []string{
	"INVITE sip:bob@biloxi.com SIP/2.0\r\n" +
		"Via: SIP/2.0/UDP pc33.atlanta.com;branch=z9hG4bK776asdhds\r\n" +
		"CSeq: 1 INVITE\r\n" +
		"Content-Type: application/sdp\r\n" +
		"Content-Length: 14\r\n" +
		"\r\n" +
		"v=0\r\no=- 0 0\r\n",
	"SIP/2.0 200 OK\r\n" +
		"CSeq: 1 INVITE\r\n" +
		"l: 0\r\n" +
		"\r\n",
	"MESSAGE sip:bob@biloxi.com SIP/2.0\r\n" +
		"Subject: hello,\r\n" +
		" world\r\n" +
		"CSeq: 2 MESSAGE\r\n" +
		"Content-Length: 12\r\n" +
		"\r\n" +
		"hello\r\n\r\nbob",
	"BYE sip:alice@atlanta.com SIP/2.0\r\n" +
		"CSeq: 3 BYE\r\n" +
		"\r\n",
}

func newStreamParser() *sip.StreamParser {
	return sip.NewStreamParser(&sip.StreamParserOptions{Logger: testLogger()})
}

func TestStreamParser_Chunks(t *testing.T) {
	t.Parallel()

	// keep-alive CRLFs between messages are skipped
	stream := strings.Join(streamMsgs, "\r\n\r\n")

	want := make([]sip.Message, 0, len(streamMsgs))
	for _, s := range streamMsgs {
		want = append(want, util.Must(sip.ParseMessage(s, nil)))
	}

	for _, size := range []int{1, 2, 7, 64, 65536} {
		t.Run(fmt.Sprintf("chunk_%d", size), func(t *testing.T) {
			t.Parallel()

			p := newStreamParser()
			var got []sip.Message
			for chunk := range slicesChunk([]byte(stream), size) {
				sts, msgs, err := p.Process(chunk)
				if err != nil {
					t.Fatalf("p.Process(%q) error = %v, want nil", chunk, err)
				}
				if len(msgs) > 0 && sts != sip.StreamSuccess {
					t.Errorf("p.Process(%q) status = %v, want %v", chunk, sts, sip.StreamSuccess)
				}
				got = append(got, msgs...)
			}

			if diff := cmp.Diff(got, want); diff != "" {
				t.Errorf("parsed messages mismatch\ndiff (-got +want):\n%v", diff)
			}
			if p.State() != sip.StreamReady {
				t.Errorf("p.State() = %v, want %v", p.State(), sip.StreamReady)
			}
			if p.Buffered() != 0 {
				t.Errorf("p.Buffered() = %d, want 0", p.Buffered())
			}
		})
	}
}

func slicesChunk(b []byte, n int) func(func([]byte) bool) {
	return func(yield func([]byte) bool) {
		for len(b) > 0 {
			m := min(n, len(b))
			if !yield(b[:m]) {
				return
			}
			b = b[m:]
		}
	}
}

func TestStreamParser_Status(t *testing.T) {
	t.Parallel()

	p := newStreamParser()

	steps := []struct {
		chunk     string
		wantSts   sip.StreamStatus
		wantState sip.StreamStatus
		wantMsgs  int
	}{
		{"", sip.StreamReady, sip.StreamReady, 0},
		{"\r\n", sip.StreamReady, sip.StreamReady, 0},
		{"INVITE sip:bob@biloxi.com SIP/2.0\r\n", sip.StreamWaitingForHeaders, sip.StreamWaitingForHeaders, 0},
		{"CSeq: 1 INVITE\r\nContent-Length: 4\r\n", sip.StreamWaitingForHeaders, sip.StreamWaitingForHeaders, 0},
		{"\r\nv=", sip.StreamWaitingForBody, sip.StreamWaitingForBody, 0},
		{"0", sip.StreamWaitingForBody, sip.StreamWaitingForBody, 0},
		{"\nSIP/2.0 100 Trying\r\n\r\nSIP/2.0 180", sip.StreamSuccess, sip.StreamWaitingForHeaders, 2},
		{" Ringing\r\n\r\n", sip.StreamSuccess, sip.StreamReady, 1},
		{"\r\n \t", sip.StreamReady, sip.StreamReady, 0},
	}

	for i, s := range steps {
		sts, msgs, err := p.Process([]byte(s.chunk))
		if err != nil {
			t.Fatalf("#%d p.Process(%q) error = %v, want nil", i, s.chunk, err)
		}
		if sts != s.wantSts {
			t.Errorf("#%d p.Process(%q) status = %v, want %v", i, s.chunk, sts, s.wantSts)
		}
		if len(msgs) != s.wantMsgs {
			t.Errorf("#%d p.Process(%q) returned %d messages, want %d", i, s.chunk, len(msgs), s.wantMsgs)
		}
		if st := p.State(); st != s.wantState {
			t.Errorf("#%d p.State() = %v, want %v", i, st, s.wantState)
		}
	}
}

func TestStreamParser_BodyLeadingSpace(t *testing.T) {
	t.Parallel()

	msgs := []string{
		"MESSAGE sip:bob@biloxi.com SIP/2.0\r\n" +
			"CSeq: 1 MESSAGE\r\n" +
			"Content-Length: 6\r\n" +
			"\r\n" +
			"  hi\r\n",
		"MESSAGE sip:bob@biloxi.com SIP/2.0\r\n" +
			"CSeq: 2 MESSAGE\r\n" +
			"Content-Length: 4\r\n" +
			"\r\n" +
			"\r\nhi",
		streamMsgs[3],
	}
	stream := strings.Join(msgs, "")

	want := make([]sip.Message, 0, len(msgs))
	for _, s := range msgs {
		want = append(want, util.Must(sip.ParseMessage(s, nil)))
	}
	if got := string(want[0].MessageBody()); got != "  hi\r\n" {
		t.Fatalf("sip.ParseMessage() body = %q, want %q", got, "  hi\r\n")
	}

	for _, size := range []int{1, 5, len(stream)} {
		t.Run(fmt.Sprintf("chunk_%d", size), func(t *testing.T) {
			t.Parallel()

			p := newStreamParser()
			var got []sip.Message
			for chunk := range slicesChunk([]byte(stream), size) {
				_, ms, err := p.Process(chunk)
				if err != nil {
					t.Fatalf("p.Process(%q) error = %v, want nil", chunk, err)
				}
				got = append(got, ms...)
			}
			if diff := cmp.Diff(got, want); diff != "" {
				t.Errorf("parsed messages mismatch\ndiff (-got +want):\n%v", diff)
			}
		})
	}
}

func TestStreamParser_MalformedSection(t *testing.T) {
	t.Parallel()

	p := newStreamParser()
	in := "INVITE sip:bob@biloxi.com HTTP/1.1\r\nCSeq: 1 INVITE\r\n\r\n" +
		"OPTIONS sip:bob@biloxi.com SIP/2.0\r\nCSeq: 2 OPTIONS\r\nMax-Forwards: 256\r\n\r\n" +
		streamMsgs[3]

	sts, msgs, err := p.Process([]byte(in))
	if diff := cmp.Diff(err, sip.ErrMalformedStartLine, cmpopts.EquateErrors()); diff != "" {
		t.Fatalf("p.Process() error = %v, want %v\ndiff (-got +want):\n%v", err, sip.ErrMalformedStartLine, diff)
	}
	var perr *sip.ParseError
	if !errors.As(err, &perr) || perr.State != sip.ParseStateStart {
		t.Errorf("p.Process() error = %#v, want *sip.ParseError at start line", err)
	}
	if sts != sip.StreamWaitingForHeaders || len(msgs) != 0 {
		t.Errorf("p.Process() = %v, %v, want %v, []", sts, msgs, sip.StreamWaitingForHeaders)
	}

	_, msgs, err = p.Process(nil)
	if diff := cmp.Diff(err, sip.ErrOutOfBounds, cmpopts.EquateErrors()); diff != "" {
		t.Fatalf("p.Process(nil) error = %v, want %v\ndiff (-got +want):\n%v", err, sip.ErrOutOfBounds, diff)
	}
	if len(msgs) != 0 {
		t.Errorf("p.Process(nil) returned %d messages, want 0", len(msgs))
	}

	sts, msgs, err = p.Process(nil)
	if err != nil {
		t.Fatalf("p.Process(nil) error = %v, want nil", err)
	}
	want := []sip.Message{util.Must(sip.ParseMessage(streamMsgs[3], nil))}
	if diff := cmp.Diff(msgs, want); diff != "" {
		t.Errorf("p.Process(nil) messages mismatch\ndiff (-got +want):\n%v", diff)
	}
	if sts != sip.StreamSuccess || p.State() != sip.StreamReady {
		t.Errorf("p.Process(nil) status = %v, state = %v, want %v, %v", sts, p.State(), sip.StreamSuccess, sip.StreamReady)
	}
}

func TestStreamParser_MaxBufferSize(t *testing.T) {
	t.Parallel()

	t.Run("header section", func(t *testing.T) {
		t.Parallel()

		p := sip.NewStreamParser(&sip.StreamParserOptions{Logger: testLogger(), MaxBufferSize: 40})
		if _, _, err := p.Process([]byte("OPTIONS sip:bob@biloxi.com SIP/2.0\r\n")); err != nil {
			t.Fatalf("p.Process() error = %v, want nil", err)
		}
		_, _, err := p.Process([]byte("CSeq: 1 OPTIONS\r\n"))
		if diff := cmp.Diff(err, sip.ErrMessageTooLarge, cmpopts.EquateErrors()); diff != "" {
			t.Errorf("p.Process() error = %v, want %v\ndiff (-got +want):\n%v", err, sip.ErrMessageTooLarge, diff)
		}
		if p.State() != sip.StreamReady || p.Buffered() != 0 {
			t.Errorf("p.State(), p.Buffered() = %v, %d, want %v, 0", p.State(), p.Buffered(), sip.StreamReady)
		}
	})

	t.Run("body", func(t *testing.T) {
		t.Parallel()

		p := sip.NewStreamParser(&sip.StreamParserOptions{Logger: testLogger(), MaxBufferSize: 64})
		_, _, err := p.Process([]byte("SIP/2.0 200 OK\r\nContent-Length: 100\r\n\r\nv=0"))
		if diff := cmp.Diff(err, sip.ErrMessageTooLarge, cmpopts.EquateErrors()); diff != "" {
			t.Errorf("p.Process() error = %v, want %v\ndiff (-got +want):\n%v", err, sip.ErrMessageTooLarge, diff)
		}
		var perr *sip.ParseError
		if !errors.As(err, &perr) || perr.State != sip.ParseStateBody || perr.Msg == nil {
			t.Errorf("p.Process() error = %#v, want *sip.ParseError with message", err)
		}
		if p.State() != sip.StreamReady || p.Buffered() != 0 {
			t.Errorf("p.State(), p.Buffered() = %v, %d, want %v, 0", p.State(), p.Buffered(), sip.StreamReady)
		}
	})
}

func TestStreamParser_Reset(t *testing.T) {
	t.Parallel()

	p := newStreamParser()
	if _, _, err := p.Process([]byte("SIP/2.0 200 OK\r\nContent-Length: 10\r\n\r\n01234")); err != nil {
		t.Fatalf("p.Process() error = %v, want nil", err)
	}
	if p.State() != sip.StreamWaitingForBody || p.Buffered() != 5 {
		t.Fatalf("p.State(), p.Buffered() = %v, %d, want %v, 5", p.State(), p.Buffered(), sip.StreamWaitingForBody)
	}

	p.Reset()
	if p.State() != sip.StreamReady || p.Buffered() != 0 {
		t.Errorf("p.State(), p.Buffered() after reset = %v, %d, want %v, 0", p.State(), p.Buffered(), sip.StreamReady)
	}

	sts, msgs, err := p.Process([]byte(streamMsgs[1]))
	if err != nil {
		t.Fatalf("p.Process() error = %v, want nil", err)
	}
	want := []sip.Message{util.Must(sip.ParseMessage(streamMsgs[1], nil))}
	if diff := cmp.Diff(msgs, want); diff != "" || sts != sip.StreamSuccess {
		t.Errorf("p.Process() = %v, %v, want %v\ndiff (-got +want):\n%v", sts, msgs, sip.StreamSuccess, diff)
	}
}

func TestStreamStatus_String(t *testing.T) {
	t.Parallel()

	cases := map[sip.StreamStatus]string{
		sip.StreamReady:             "ready",
		sip.StreamWaitingForHeaders: "waiting for headers",
		sip.StreamWaitingForBody:    "waiting for body",
		sip.StreamSuccess:           "success",
		sip.StreamStatus(42):        "unknown",
	}
	for sts, want := range cases {
		if got := sts.String(); got != want {
			t.Errorf("StreamStatus(%d).String() = %q, want %q", int(sts), got, want)
		}
	}
}
