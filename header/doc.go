// Package header implements parsing and rendering of SIP header fields (RFC 3261 Section 20).
//
// Header fields are not modelled one type per header. Instead a small closed set of value
// shapes is shared by all header names:
//
//   - [Scalar]: a bounded unsigned integer (Content-Length, Max-Forwards, Expires, ...)
//   - [Text]: free text, one value per line (Subject, User-Agent, Date, ...)
//   - [List]: comma-separated tokens (Allow, Supported, Require, ...)
//   - [ParamValue] and [ParamValueList]: a value followed by ;params (Content-Type, Accept, ...)
//   - [NameAddr]: "display name" <uri>;params (From, To, Reply-To, Refer-To)
//   - [Contact], [Via], [CSeq], [CallID], [RAck]: dedicated shapes
//   - [Challenge] and [Credentials]: authentication headers
//
// [Parse] picks the shape by the header name using a static table. Unknown names are
// parsed as [List] and keep the name as written.
//
// # Names
//
// Header names are case-insensitive. [CanonicName] converts any spelling, including
// compact one-letter aliases, to the canonical form ("i" -> "Call-ID"), and [Expand]
// returns the lower-case full name used as a lookup key ("i" -> "call-id").
//
// # Rendering
//
// Every header renders as one or more "Name: value" lines separated by CRLF, without a
// trailing CRLF:
//
//	str, err := hdr.Render(nil)               // "Name: value"
//	val := hdr.RenderValue()                  // "value"
//	num, err := hdr.RenderTo(writer, opts)    // writes to io.Writer
//
// [RenderOptions] can be nil for default formatting. With [RenderOptions.Compact] set,
// headers that have a compact alias are rendered with the one-letter name.
// Rendering fails with [ErrMissingValue] when a mandatory component is absent.
package header
