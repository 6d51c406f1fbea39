// Package log provides logging utilities.
package log

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/golang-cz/devslog"
	"github.com/phsym/console-slog"
	slogformatter "github.com/samber/slog-formatter"

	"github.com/ghettovoice/sipmsg/internal/constraints"
	"github.com/ghettovoice/sipmsg/internal/util"
)

// MaxChunkLen is the number of leading bytes of a wire chunk kept in log records.
const MaxChunkLen = 64

var newHandler = slogformatter.NewFormatterHandler(
	slogformatter.ErrorFormatter("error"),
	slogformatter.FormatByType(func(b []byte) slog.Value {
		return slog.GroupValue(
			slog.Int("len", len(b)),
			slog.String("data", strconv.Quote(util.Ellipsis(string(b), MaxChunkLen))),
		)
	}),
)

// Def is a default logger.
var Def = slog.New(newHandler(
	console.NewHandler(os.Stdout, &console.HandlerOptions{
		AddSource:  true,
		Level:      slog.LevelDebug,
		TimeFormat: time.RFC3339Nano,
	}),
))

// Dev is a developer logger.
var Dev = slog.New(newHandler(
	devslog.NewHandler(os.Stdout, &devslog.Options{
		HandlerOptions: &slog.HandlerOptions{
			AddSource: true,
			Level:     slog.LevelDebug,
		},
		SortKeys:   true,
		TimeFormat: time.RFC3339Nano,
	}),
))

// Default returns the process-wide [slog.Default] logger.
// Components fall back to it when no logger is configured.
func Default() *slog.Logger { return slog.Default() }

type noopHandler struct{}

func (noopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (noopHandler) Handle(context.Context, slog.Record) error { return nil }

func (h noopHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h noopHandler) WithGroup(string) slog.Handler { return h }

// Noop is a noop logger.
var Noop = slog.New(noopHandler{})

type stringValue[T constraints.Byteseq] struct {
	v      T
	maxLen int
}

func (v stringValue[T]) LogValue() slog.Value {
	s := string(v.v)
	if v.maxLen > 0 {
		s = util.Ellipsis(s, v.maxLen)
	}
	return slog.StringValue(s)
}

// StringValue returns a value logger that formats v as string.
func StringValue[T constraints.Byteseq](v T) slog.LogValuer { return stringValue[T]{v: v} }

// ChunkValue returns a value logger that formats v as string cut to [MaxChunkLen] runes.
func ChunkValue[T constraints.Byteseq](v T) slog.LogValuer {
	return stringValue[T]{v: v, maxLen: MaxChunkLen}
}
