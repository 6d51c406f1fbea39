package types

import (
	"fmt"
	"strconv"
	"strings"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipmsg/internal/errorutil"
	"github.com/ghettovoice/sipmsg/internal/grammar"
	"github.com/ghettovoice/sipmsg/internal/util"
)

// ErrInvalidAddr is returned when a host[:port] pair cannot be parsed.
const ErrInvalidAddr errorutil.Error = "invalid address"

// Addr is a container for a host and an optional port.
// IPv6 literals are stored without brackets and flagged.
type Addr struct {
	host    string
	ipv6    bool
	port    uint16
	hasPort bool
}

// Host returns an [Addr] containing the provided host and no port.
func Host(host string) Addr {
	host, ipv6 := trimBrackets(host)
	return Addr{host: host, ipv6: ipv6}
}

// HostPort returns an [Addr] containing the provided host and port.
func HostPort(host string, port uint16) Addr {
	host, ipv6 := trimBrackets(host)
	return Addr{host: host, ipv6: ipv6, port: port, hasPort: true}
}

// RawHost returns an [Addr] holding host verbatim, without IPv6 detection.
// It is used for hosts of schemes other than sip and sips.
func RawHost(host string) Addr { return Addr{host: host} }

func trimBrackets(host string) (string, bool) {
	if len(host) > 1 && host[0] == '[' && host[len(host)-1] == ']' {
		return host[1 : len(host)-1], true
	}
	return host, strings.Contains(host, ":")
}

// ParseAddr parses a "host[:port]" string into an [Addr].
// A leading "[" marks an IPv6 reference and must be closed by "]".
// The port must be all digits and fit 0-65535.
// The host is lower-cased but not validated, see [Addr.IsValid].
func ParseAddr(s string) (Addr, error) {
	var (
		addr Addr
		rest string
	)
	if strings.HasPrefix(s, "[") {
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return Addr{}, errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidAddr, "unmatched '[' in %q", s))
		}
		addr.host, addr.ipv6 = s[1:end], true
		rest = s[end+1:]
		if rest != "" && rest[0] != ':' {
			return Addr{}, errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidAddr, "unexpected %q after IPv6 reference", rest))
		}
	} else if i := strings.LastIndexByte(s, ':'); i >= 0 {
		addr.host, rest = s[:i], s[i:]
	} else {
		addr.host = s
	}

	if addr.host == "" {
		return Addr{}, errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidAddr, "empty host in %q", s))
	}
	addr.host = util.LCase(addr.host)

	if rest != "" {
		port := rest[1:]
		if !grammar.IsDigits(port) {
			return Addr{}, errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidAddr, "invalid port %q", port))
		}
		n, err := strconv.ParseUint(port, 10, 16)
		if err != nil {
			return Addr{}, errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidAddr, "port %s out of range", port))
		}
		addr.port, addr.hasPort = uint16(n), true
	}
	return addr, nil
}

// Host returns the hostname portion of the address without IPv6 brackets.
func (addr Addr) Host() string { return addr.host }

// IsIPv6 reports whether the host is an IPv6 reference.
func (addr Addr) IsIPv6() bool { return addr.ipv6 }

// Port returns the port, in case it is set, and bool flag indicating whether it is set.
func (addr Addr) Port() (uint16, bool) { return addr.port, addr.hasPort }

// String formats the address as host[:port], adding brackets for IPv6 references.
func (addr Addr) String() string {
	host := addr.host
	if addr.ipv6 {
		host = "[" + host + "]"
	}
	if !addr.hasPort {
		return host
	}
	return host + ":" + strconv.Itoa(int(addr.port))
}

// Format implements fmt.Formatter to support custom formatting verbs for Addr values.
func (addr Addr) Format(f fmt.State, verb rune) {
	switch verb {
	case 's':
		fmt.Fprint(f, addr.String())
		return
	case 'q':
		fmt.Fprint(f, strconv.Quote(addr.String()))
		return
	default:
		if !f.Flag('+') && !f.Flag('#') {
			fmt.Fprint(f, addr.String())
			return
		}

		type hideMethods Addr
		type Addr hideMethods
		fmt.Fprintf(f, fmt.FormatString(f, verb), Addr(addr))
		return
	}
}

// Equal reports whether the address equals the provided value, accepting Addr and *Addr.
// Hosts are compared case-insensitively.
func (addr Addr) Equal(val any) bool {
	var other Addr
	switch v := val.(type) {
	case Addr:
		other = v
	case *Addr:
		if v == nil {
			return false
		}
		other = *v
	default:
		return false
	}

	return util.EqFold(addr.host, other.host) &&
		addr.ipv6 == other.ipv6 &&
		addr.port == other.port &&
		addr.hasPort == other.hasPort
}

// IsValid reports whether the host is a hostname or an IP literal.
func (addr Addr) IsValid() bool {
	if addr.ipv6 {
		return grammar.IsIP("[" + addr.host + "]")
	}
	return grammar.IsHost(addr.host) && !strings.Contains(addr.host, ":")
}

// IsZero reports whether the address has zero host and port information.
func (addr Addr) IsZero() bool { return addr.host == "" && !addr.hasPort }
