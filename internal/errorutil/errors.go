// Package errorutil provides the sentinel error type and wrapping helpers shared by all packages.
package errorutil

//go:generate go tool errtrace -w .

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ghettovoice/sipmsg/internal/util"
)

// Error is a string type that implements the error interface.
// All sentinel errors of the module are declared as constants of this type.
type Error string

func (s Error) Error() string { return string(s) }

func Errorf(format string, args ...any) error {
	return Error(fmt.Sprintf(format, args...)) //errtrace:skip
}

// NewWrapperError creates or wraps an error with a sentinel error.
// It supports multiple argument patterns:
//   - No args: returns sentinel
//   - error arg: wraps with sentinel (unless already wrapped)
//   - string arg: formats as message with sentinel
//   - string + args: formats with Sprintf then wraps with sentinel
func NewWrapperError(sentinel error, args ...any) error {
	if len(args) == 0 {
		return sentinel //errtrace:skip
	}
	switch v := args[0].(type) {
	case error:
		if errors.Is(v, sentinel) {
			return v //errtrace:skip
		}
		return fmt.Errorf("%w: %w", sentinel, v) //errtrace:skip
	case string:
		if len(args) == 1 {
			return fmt.Errorf("%w: %s", sentinel, v) //errtrace:skip
		}
		return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(v, args[1:]...)) //errtrace:skip
	default:
		return sentinel //errtrace:skip
	}
}

// Value errors shared by the uri, header, digest and sip packages.
// Each of them re-exports the sentinels it returns.
const (
	ErrMalformedValue   Error = "malformed value"
	ErrInvalidParameter Error = "invalid parameter"
	ErrMissingValue     Error = "missing value"
	ErrOutOfBounds      Error = "value out of bounds"
)

// ErrInvalidArgument is an error returned when an invalid argument is provided.
const ErrInvalidArgument Error = "invalid argument"

// NewInvalidArgumentError creates a new error with [ErrInvalidArgument] or
// wraps provided error with [ErrInvalidArgument].
func NewInvalidArgumentError(args ...any) error {
	return NewWrapperError(ErrInvalidArgument, args...) //errtrace:skip
}

// Join joins errs into a single error, skipping nil values.
// It returns nil if there is nothing to join.
func Join(errs ...error) error {
	errs = util.Compact(errs)
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0] //errtrace:skip
	}
	return &multiError{errs: errs} //errtrace:skip
}

type multiError struct {
	errs []error
}

func (e *multiError) Error() string {
	sb := util.GetStringBuilder()
	defer util.FreeStringBuilder(sb)

	for i, err := range e.errs {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(strings.TrimSpace(err.Error()))
	}
	return sb.String()
}

func (e *multiError) Unwrap() []error { return e.errs }
