package header

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipmsg/internal/errorutil"
	"github.com/ghettovoice/sipmsg/internal/grammar"
	"github.com/ghettovoice/sipmsg/internal/ioutil"
	"github.com/ghettovoice/sipmsg/internal/types"
	"github.com/ghettovoice/sipmsg/internal/util"
)

// ViaProto is the only sent-protocol this package speaks.
const ViaProto = "SIP/2.0"

// Via represents the Via header field.
// The Via header field indicates the transport used for the transaction and identifies the location
// where the response is to be sent.
type Via []ViaHop

// ViaHop represents a single hop in the Via header.
type ViaHop struct {
	Transport TransportProto
	Addr      Addr
	Branch    string
	Received  string
	// RPort is the rport parameter; zero means the value-less form.
	RPort  *uint16
	Params Params
}

func parseVia(_ Name, lines []string) (Header, error) {
	var hdr Via
	for _, l := range lines {
		items, err := grammar.Split(l, ',')
		if err != nil {
			return nil, errtrace.Wrap(wrapMalformed(err))
		}
		for _, item := range items {
			if item = util.TrimLWS(item); item == "" {
				continue
			}
			hop, err := parseViaHop(item)
			if err != nil {
				return nil, errtrace.Wrap(err)
			}
			hdr = append(hdr, hop)
		}
	}
	if len(hdr) == 0 {
		return nil, errtrace.Wrap(newMissingError("via hop"))
	}
	return hdr, nil
}

// parseViaHop parses sent-protocol LWS sent-by *( SEMI via-params ).
func parseViaHop(s string) (ViaHop, error) {
	var hop ViaHop

	proto, rest, _ := strings.Cut(s, "/")
	ver, rest, _ := strings.Cut(rest, "/")
	if !util.EqFold(util.TrimLWS(proto), "SIP") || util.TrimLWS(ver) != "2.0" {
		return hop, errtrace.Wrap(errorutil.NewWrapperError(ErrUnsupportedProtocolVersion,
			"%s/%s", util.TrimLWS(proto), util.TrimLWS(ver)))
	}

	transp, sentBy, ok := util.CutLWS(util.TrimLWS(rest))
	if !ok {
		return hop, errtrace.Wrap(newMalformedError("missing sent-by in %q", s))
	}
	hop.Transport = TransportProto(transp)
	if !hop.Transport.IsValid() {
		return hop, errtrace.Wrap(newMalformedError("invalid transport %q", transp))
	}

	segs, err := grammar.Split(sentBy, ';')
	if err != nil {
		return hop, errtrace.Wrap(wrapMalformed(err))
	}
	if hop.Addr, err = types.ParseAddr(util.TrimLWS(segs[0])); err != nil {
		return hop, errtrace.Wrap(wrapMalformed(err))
	}
	if !hop.Addr.IsValid() {
		return hop, errtrace.Wrap(newMalformedError("invalid sent-by %q", segs[0]))
	}

	ps, err := parseParams(segs[1:], true)
	if err != nil {
		return hop, errtrace.Wrap(err)
	}
	for _, p := range ps {
		switch util.LCase(p.Name) {
		case "branch":
			if p.Value == "" {
				return hop, errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidParameter, "empty branch"))
			}
			hop.Branch = p.Value
		case "received":
			if !grammar.IsIP(p.Value) {
				return hop, errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidParameter, "invalid received %q", p.Value))
			}
			hop.Received = p.Value
		case "rport":
			var port uint64
			if p.Value != "" {
				if port, err = parseUint(p.Value, 1<<16-1); err != nil {
					return hop, errtrace.Wrap(errorutil.NewWrapperError(ErrInvalidParameter, err))
				}
			}
			hop.RPort = util.Ptr(uint16(port))
		default:
			hop.Params = append(hop.Params, p)
		}
	}
	return hop, nil
}

func (hop ViaHop) renderTo(w io.Writer) (int, error) {
	if hop.Transport == "" {
		return 0, errtrace.Wrap(newMissingError("via transport"))
	}
	if hop.Addr.Host() == "" {
		return 0, errtrace.Wrap(newMissingError("via sent-by"))
	}

	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	cw.Fprint(ViaProto, "/", hop.Transport, " ", hop.Addr.String())
	if hop.Branch != "" {
		cw.Fprint(";branch=", hop.Branch)
	}
	if hop.Received != "" {
		cw.Fprint(";received=", hop.Received)
	}
	if hop.RPort != nil {
		cw.WriteString(";rport")
		if *hop.RPort != 0 {
			cw.Fprint("=", strconv.FormatUint(uint64(*hop.RPort), 10))
		}
	}
	cw.Call(func(w io.Writer) (int, error) { return renderParams(w, hop.Params) })
	return errtrace.Wrap2(cw.Result())
}

// String returns the string representation of the ViaHop.
func (hop ViaHop) String() string { return renderValue(hop.renderTo) }

func (hop ViaHop) Clone() ViaHop {
	hop2 := hop
	if hop.RPort != nil {
		hop2.RPort = util.Ptr(*hop.RPort)
	}
	hop2.Params = hop.Params.Clone()
	return hop2
}

// Equal compares this ViaHop with another for equality.
// Transport and host are compared case-insensitively, branch exactly.
func (hop ViaHop) Equal(val any) bool {
	var other ViaHop
	switch v := val.(type) {
	case ViaHop:
		other = v
	case *ViaHop:
		if v == nil {
			return false
		}
		other = *v
	default:
		return false
	}

	return hop.Transport.Equal(other.Transport) &&
		hop.Addr.Equal(other.Addr) &&
		hop.Branch == other.Branch &&
		hop.Received == other.Received &&
		ptrEqual(hop.RPort, other.RPort) &&
		hop.Params.Equal(other.Params)
}

func (Via) Name() Name { return "Via" }

func (Via) CompactName() Name { return "v" }

// RenderTo writes the header to the provided writer.
// Hops are joined by a comma on a single line.
func (hdr Via) RenderTo(w io.Writer, opts *RenderOptions) (int, error) {
	if hdr == nil {
		return 0, nil
	}
	if len(hdr) == 0 {
		return 0, errtrace.Wrap(newMissingError("via hop"))
	}
	return errtrace.Wrap2(renderLine(w, hdr, opts, hdr.renderValueTo))
}

func (hdr Via) renderValueTo(w io.Writer) (int, error) {
	return errtrace.Wrap2(joinValues(w, hdr, func(w io.Writer, hop ViaHop) (int, error) {
		return errtrace.Wrap2(hop.renderTo(w))
	}))
}

func (hdr Via) Render(opts *RenderOptions) (string, error) {
	return errtrace.Wrap2(renderString(hdr, opts))
}

func (hdr Via) RenderValue() string { return renderValue(hdr.renderValueTo) }

func (hdr Via) String() string { return hdr.RenderValue() }

func (hdr Via) Format(f fmt.State, verb rune) {
	type hideMethods Via
	type Via hideMethods
	formatHeader(f, verb, hdr, Via(hdr))
}

// Clone returns a copy of the header.
func (hdr Via) Clone() Header {
	if hdr == nil {
		return Via(nil)
	}
	hdr2 := make(Via, len(hdr))
	for i := range hdr {
		hdr2[i] = hdr[i].Clone()
	}
	return hdr2
}

// Equal compares this header with another for equality.
func (hdr Via) Equal(val any) bool {
	var other Via
	switch v := val.(type) {
	case Via:
		other = v
	case *Via:
		if v == nil {
			return false
		}
		other = *v
	default:
		return false
	}
	return slices.EqualFunc(hdr, other, func(hop1, hop2 ViaHop) bool { return hop1.Equal(hop2) })
}
