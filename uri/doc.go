// Package uri implements the URI model of RFC 3261 Section 19.1.
//
// A single [URI] type holds sip, sips and any other scheme. For sip and sips
// the host must be a hostname or an IP literal, other schemes keep the host
// component verbatim:
//
//	u, err := uri.Parse("sip:+15551001:secret@example.com:5080;transport=udp")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(u.User, u.Addr, u.Transport) // +15551001 example.com:5080 udp
//
// User, password, parameter and header components are percent-unescaped
// while parsing and escaped again on rendering. Unlike form decoding, "+" is
// never treated as a space.
//
// The well-known parameters (transport, maddr, ttl, user, method, lr) are
// lifted into dedicated fields and rendered first in that order, followed by
// extension parameters and then URI headers, both in the order they were added.
//
// [URI.IsEquivalent] implements the comparison rules of RFC 3261 Section 19.1.4.
// Extension parameters are compared only when present in both URIs, so the
// relation is not transitive.
//
// URI values are not safe for concurrent modification; use [URI.Clone] to
// share copies between goroutines.
package uri
