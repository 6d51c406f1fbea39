package sip

import (
	"github.com/ghettovoice/sipmsg/digest"
	"github.com/ghettovoice/sipmsg/header"
	"github.com/ghettovoice/sipmsg/internal/errorutil"
	"github.com/ghettovoice/sipmsg/uri"
)

// Error represents a sentinel error.
// See [errorutil.Error].
type Error = errorutil.Error

// Envelope errors.
const (
	ErrMalformedStartLine   Error = "malformed start line"
	ErrInvalidStatusCode    Error = "invalid status code"
	ErrInvalidRequestMethod Error = "invalid request method"
	ErrInvalidRequestURI    Error = "invalid request URI"
	ErrMalformedHeaderLine  Error = "malformed header line"
	ErrMissingHeaderSection Error = "missing header section"
	ErrBodyLengthMismatch   Error = "body length mismatch"
	ErrCSeqMethodMismatch   Error = "CSeq method mismatch"
	// ErrMessageTooLarge is returned by [StreamParser] when a message outgrows the buffer limit.
	ErrMessageTooLarge Error = "message too large"
)

// Errors of the underlying packages, re-exported to test everything against one package.
const (
	ErrUnsupportedProtocolVersion = header.ErrUnsupportedProtocolVersion
	ErrDuplicateHeader            = header.ErrDuplicateHeader
	ErrMalformedValue             = errorutil.ErrMalformedValue
	ErrInvalidParameter           = errorutil.ErrInvalidParameter
	ErrMissingValue               = errorutil.ErrMissingValue
	ErrOutOfBounds                = errorutil.ErrOutOfBounds
	ErrInvalidURI                 = uri.ErrInvalidURI
	ErrAuth                       = digest.ErrAuth
	ErrInvalidArgument            = errorutil.ErrInvalidArgument
)

var (
	ErrUnsupportedAlgorithm = digest.ErrUnsupportedAlgorithm
	ErrUnsupportedQoP       = digest.ErrUnsupportedQoP
)

// NewInvalidArgumentError creates a new error with [ErrInvalidArgument] or
// wraps provided error with [ErrInvalidArgument].
func NewInvalidArgumentError(args ...any) error {
	return errorutil.NewInvalidArgumentError(args...) //errtrace:skip
}
