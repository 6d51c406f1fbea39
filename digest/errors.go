package digest

//go:generate go tool errtrace -w .

import "github.com/ghettovoice/sipmsg/internal/errorutil"

// ErrAuth is the base error of hash computation failures.
const ErrAuth errorutil.Error = "digest authentication failed"

var (
	// ErrUnsupportedAlgorithm is returned when the algorithm parameter names an unknown hash.
	ErrUnsupportedAlgorithm = errorutil.NewWrapperError(ErrAuth, "unsupported algorithm")
	// ErrUnsupportedQoP is returned when the qop parameter is neither "auth" nor "auth-int".
	ErrUnsupportedQoP = errorutil.NewWrapperError(ErrAuth, "unsupported quality of protection")
)

const (
	// ErrMalformedValue is returned when the parameter list can not be tokenized.
	ErrMalformedValue = errorutil.ErrMalformedValue
	// ErrInvalidParameter is returned when a parameter value violates its syntax.
	ErrInvalidParameter = errorutil.ErrInvalidParameter
)
