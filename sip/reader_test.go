package sip_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/mock/gomock"

	"github.com/ghettovoice/sipmsg/header"
	"github.com/ghettovoice/sipmsg/internal/testutil/iomock"
	"github.com/ghettovoice/sipmsg/internal/util"
	"github.com/ghettovoice/sipmsg/sip"
)

type readResult struct {
	msg sip.Message
	err error
}

func collect(r io.Reader, opts *sip.ReaderOptions) []readResult {
	var res []readResult
	for msg, err := range sip.ReadMessages(r, opts) {
		res = append(res, readResult{msg, err})
	}
	return res
}

func readResultsDiff(got, want []readResult) string {
	return cmp.Diff(got, want,
		cmp.AllowUnexported(readResult{}),
		cmp.Comparer(func(a, b error) bool {
			if a == nil || b == nil {
				return a == b
			}
			return errors.Is(a, b) || errors.Is(b, a)
		}),
	)
}

func scriptReads(r *iomock.MockReader, reads ...any) {
	calls := make([]any, 0, len(reads))
	for _, rd := range reads {
		var call *gomock.Call
		switch v := rd.(type) {
		case string:
			call = r.EXPECT().Read(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
				return copy(p, v), nil
			})
		case error:
			call = r.EXPECT().Read(gomock.Any()).Return(0, v)
		}
		calls = append(calls, call)
	}
	gomock.InOrder(calls...)
}

func TestReadMessages(t *testing.T) {
	t.Parallel()

	errRead := errors.New("connection reset")
	bye := util.Must(sip.ParseMessage(streamMsgs[3], nil))
	ok := util.Must(sip.ParseMessage(streamMsgs[1], nil))

	cases := []struct {
		name  string
		reads []any
		want  []readResult
	}{
		{
			"empty",
			[]any{io.EOF},
			nil,
		},
		{
			"keep-alive only",
			[]any{"\r\n\r\n", "\r\n", io.EOF},
			nil,
		},
		{
			"short reads",
			[]any{"SIP/2.0 200 OK\r\n", "CSeq: 1 INVITE\r\nl: 0", "\r\n\r\nBYE sip:alice@atlanta.com SIP/2.0\r\n", "CSeq: 3 BYE\r\n\r\n", io.EOF},
			[]readResult{{ok, nil}, {bye, nil}},
		},
		{
			"unexpected eof",
			[]any{streamMsgs[1] + "SIP/2.0 180", io.EOF},
			[]readResult{{ok, nil}, {nil, io.ErrUnexpectedEOF}},
		},
		{
			"read error",
			[]any{streamMsgs[1], errRead},
			[]readResult{{ok, nil}, {nil, errRead}},
		},
		{
			"malformed message is skipped",
			[]any{"OPTIONS sip:bob@biloxi.com SIP/3.0\r\n\r\n" + streamMsgs[3], io.EOF},
			[]readResult{{nil, sip.ErrUnsupportedProtocolVersion}, {bye, nil}},
		},
		{
			"malformed headers",
			[]any{"BYE sip:alice@atlanta.com SIP/2.0\r\nCSeq: 3 INVITE\r\n\r\n" + streamMsgs[1], io.EOF},
			[]readResult{
				{
					&sip.Request{
						Method:  sip.RequestMethodBye,
						URI:     mustURI("sip:alice@atlanta.com"),
						Headers: sip.NewHeaders(&header.CSeq{Seq: 3, Method: sip.RequestMethodInvite}),
					},
					sip.ErrCSeqMethodMismatch,
				},
				{ok, nil},
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			r := iomock.NewMockReader(ctrl)
			scriptReads(r, c.reads...)

			got := collect(r, &sip.ReaderOptions{Logger: testLogger(), ChunkSize: 1024})
			if diff := readResultsDiff(got, c.want); diff != "" {
				t.Errorf("sip.ReadMessages() results mismatch\ndiff (-got +want):\n%v", diff)
			}
		})
	}
}

func TestReadMessages_Reader(t *testing.T) {
	t.Parallel()

	stream := strings.Join(streamMsgs, "\r\n")
	want := make([]readResult, 0, len(streamMsgs))
	for _, s := range streamMsgs {
		want = append(want, readResult{util.Must(sip.ParseMessage(s, nil)), nil})
	}

	for _, opts := range []*sip.ReaderOptions{
		nil,
		{Logger: testLogger(), ChunkSize: 3},
	} {
		got := collect(strings.NewReader(stream), opts)
		if diff := readResultsDiff(got, want); diff != "" {
			t.Errorf("sip.ReadMessages(r, %+v) results mismatch\ndiff (-got +want):\n%v", opts, diff)
		}
	}
}

func TestReadMessages_Break(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	r := iomock.NewMockReader(ctrl)
	scriptReads(r, streamMsgs[1]+streamMsgs[3])

	var n int
	for msg, err := range sip.ReadMessages(r, &sip.ReaderOptions{Logger: testLogger()}) {
		if err != nil {
			t.Fatalf("sip.ReadMessages() error = %v, want nil", err)
		}
		if !msg.Equal(util.Must(sip.ParseMessage(streamMsgs[1], nil))) {
			t.Errorf("sip.ReadMessages() = %v, want %q", msg, streamMsgs[1])
		}
		n++
		break
	}
	if n != 1 {
		t.Errorf("sip.ReadMessages() yielded %d messages, want 1", n)
	}
}

func TestReadMessages_MaxBufferSize(t *testing.T) {
	t.Parallel()

	in := "OPTIONS sip:bob@biloxi.com SIP/2.0\r\nX-Pad: " + strings.Repeat("a", 100) + "\r\n\r\n" + streamMsgs[3]
	got := collect(strings.NewReader(in), &sip.ReaderOptions{Logger: testLogger(), ChunkSize: 16, MaxBufferSize: 64})

	if len(got) == 0 {
		t.Fatal("sip.ReadMessages() yielded nothing, want an error")
	}
	if diff := cmp.Diff(got[0].err, sip.ErrMessageTooLarge, cmpopts.EquateErrors()); diff != "" {
		t.Errorf("sip.ReadMessages() first error = %v, want %v\ndiff (-got +want):\n%v", got[0].err, sip.ErrMessageTooLarge, diff)
	}
}
