// Package sip implements the SIP message envelope described in RFC 3261 Section 7.
//
// [ParseMessage] turns a complete datagram into a [*Request] or a [*Response]:
//
//	msg, err := sip.ParseMessage(data, nil)
//	if err != nil {
//		var perr *sip.ParseError
//		if errors.As(err, &perr) {
//			// perr.Msg holds the partially built message
//		}
//	}
//
// Header fields are kept in [Headers], one slot per header name. Repeated lines of the
// same header are merged into a single value before parsing, so a message with two Via
// lines has one [header.Via] with two hops.
//
// [StreamParser] reassembles messages from a byte stream (TCP, TLS, WebSocket) where
// message boundaries do not match read boundaries. [ReadMessages] drives a [StreamParser]
// from an [io.Reader].
//
// Rendering never recomputes Content-Length: the caller is responsible for keeping the
// header in sync with the body.
package sip

//go:generate go tool errtrace -w .
