package header

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipmsg/internal/util"
)

// Scalar is a header holding one unsigned integer in range 0..2^32-1,
// e.g. Content-Length, Expires, Max-Forwards, RSeq.
type Scalar struct {
	name  Name
	Value uint32
}

// NewScalar returns a scalar header with the given name and value.
func NewScalar(name string, val uint32) *Scalar {
	return &Scalar{name: CanonicName(name), Value: val}
}

func scalarParser(maxVal uint64) parseFunc {
	return func(name Name, lines []string) (Header, error) {
		s, err := singleLine(lines)
		if err != nil {
			return nil, errtrace.Wrap(err)
		}
		v, err := parseUint(s, maxVal)
		if err != nil {
			return nil, errtrace.Wrap(err)
		}
		return &Scalar{name: name, Value: uint32(v)}, nil
	}
}

func (hdr *Scalar) Name() Name {
	if hdr == nil {
		return ""
	}
	return hdr.name
}

func (hdr *Scalar) CompactName() Name { return compactName(hdr.Name()) }

// RenderTo writes the header to the provided writer.
func (hdr *Scalar) RenderTo(w io.Writer, opts *RenderOptions) (int, error) {
	if hdr == nil {
		return 0, nil
	}
	return errtrace.Wrap2(renderLine(w, hdr, opts, hdr.renderValueTo))
}

func (hdr *Scalar) renderValueTo(w io.Writer) (int, error) {
	return errtrace.Wrap2(io.WriteString(w, strconv.FormatUint(uint64(hdr.Value), 10)))
}

// Render returns the string representation of the header.
func (hdr *Scalar) Render(opts *RenderOptions) (string, error) {
	return errtrace.Wrap2(renderString(hdr, opts))
}

// RenderValue returns the header value without the name prefix.
func (hdr *Scalar) RenderValue() string {
	if hdr == nil {
		return ""
	}
	return renderValue(hdr.renderValueTo)
}

func (hdr *Scalar) String() string { return hdr.RenderValue() }

func (hdr *Scalar) Format(f fmt.State, verb rune) {
	type hideMethods Scalar
	type Scalar hideMethods
	formatHeader(f, verb, hdr, (*Scalar)(hdr))
}

func (hdr *Scalar) Clone() Header {
	if hdr == nil {
		return nil
	}
	hdr2 := *hdr
	return &hdr2
}

func (hdr *Scalar) Equal(val any) bool {
	var other *Scalar
	switch v := val.(type) {
	case Scalar:
		other = &v
	case *Scalar:
		other = v
	default:
		return false
	}

	if hdr == other {
		return true
	} else if hdr == nil || other == nil {
		return false
	}
	return hdr.name.Equal(other.name) && hdr.Value == other.Value
}

// CSeq represents the CSeq header field.
// The CSeq header field serves as a way to identify and order transactions.
type CSeq struct {
	Seq    uint32
	Method RequestMethod
}

func parseCSeq(_ Name, lines []string) (Header, error) {
	s, err := singleLine(lines)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	seq, mtd, ok := util.CutLWS(s)
	if !ok {
		return nil, errtrace.Wrap(newMalformedError("expected sequence number and method, got %q", s))
	}
	n, err := parseUint(seq, maxScalar)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	if m := RequestMethod(mtd); !m.IsValid() {
		return nil, errtrace.Wrap(newMalformedError("invalid method %q", mtd))
	}
	return &CSeq{Seq: uint32(n), Method: RequestMethod(mtd)}, nil
}

func (*CSeq) Name() Name { return "CSeq" }

func (*CSeq) CompactName() Name { return "CSeq" }

// RenderTo writes the header to the provided writer.
func (hdr *CSeq) RenderTo(w io.Writer, opts *RenderOptions) (int, error) {
	if hdr == nil {
		return 0, nil
	}
	if hdr.Method == "" {
		return 0, errtrace.Wrap(newMissingError("CSeq method"))
	}
	return errtrace.Wrap2(renderLine(w, hdr, opts, hdr.renderValueTo))
}

func (hdr *CSeq) renderValueTo(w io.Writer) (int, error) {
	return errtrace.Wrap2(fmt.Fprint(w, hdr.Seq, " ", hdr.Method))
}

func (hdr *CSeq) Render(opts *RenderOptions) (string, error) {
	return errtrace.Wrap2(renderString(hdr, opts))
}

func (hdr *CSeq) RenderValue() string {
	if hdr == nil {
		return ""
	}
	return renderValue(hdr.renderValueTo)
}

func (hdr *CSeq) String() string { return hdr.RenderValue() }

func (hdr *CSeq) Format(f fmt.State, verb rune) {
	type hideMethods CSeq
	type CSeq hideMethods
	formatHeader(f, verb, hdr, (*CSeq)(hdr))
}

func (hdr *CSeq) Clone() Header {
	if hdr == nil {
		return nil
	}
	hdr2 := *hdr
	return &hdr2
}

// Equal compares this header with another for equality.
// Methods are compared case-sensitively.
func (hdr *CSeq) Equal(val any) bool {
	var other *CSeq
	switch v := val.(type) {
	case CSeq:
		other = &v
	case *CSeq:
		other = v
	default:
		return false
	}

	if hdr == other {
		return true
	} else if hdr == nil || other == nil {
		return false
	}
	return hdr.Seq == other.Seq && hdr.Method.Equal(other.Method)
}

// CallID represents the Call-ID header field.
// The Call-ID header field uniquely identifies a particular invitation or all registrations of a particular client.
type CallID string

func parseCallID(_ Name, lines []string) (Header, error) {
	s, err := singleLine(lines)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	return CallID(s), nil
}

func (CallID) Name() Name { return "Call-ID" }

func (CallID) CompactName() Name { return "i" }

// RenderTo writes the header to the provided writer.
func (hdr CallID) RenderTo(w io.Writer, opts *RenderOptions) (int, error) {
	if hdr == "" {
		return 0, errtrace.Wrap(newMissingError("Call-ID value"))
	}
	return errtrace.Wrap2(renderLine(w, hdr, opts, hdr.renderValueTo))
}

func (hdr CallID) renderValueTo(w io.Writer) (int, error) {
	return errtrace.Wrap2(io.WriteString(w, string(hdr)))
}

func (hdr CallID) Render(opts *RenderOptions) (string, error) {
	return errtrace.Wrap2(renderString(hdr, opts))
}

func (hdr CallID) RenderValue() string { return string(hdr) }

func (hdr CallID) String() string { return string(hdr) }

func (hdr CallID) Format(f fmt.State, verb rune) {
	type hideMethods CallID
	type CallID hideMethods
	formatHeader(f, verb, hdr, CallID(hdr))
}

func (hdr CallID) Clone() Header { return hdr }

// Equal compares this header with another for equality.
// Call-IDs are compared case-sensitively (RFC 3261 Section 20.8).
func (hdr CallID) Equal(val any) bool {
	var other CallID
	switch v := val.(type) {
	case CallID:
		other = v
	case *CallID:
		if v == nil {
			return false
		}
		other = *v
	default:
		return false
	}
	return hdr == other
}

// RAck represents the RAck header field (RFC 3262 Section 7.2).
type RAck struct {
	RSeq   uint32
	CSeq   uint32
	Method RequestMethod
}

func parseRAck(_ Name, lines []string) (Header, error) {
	s, err := singleLine(lines)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return nil, errtrace.Wrap(newMalformedError("expected response number, sequence number and method, got %q", s))
	}
	rseq, err := parseUint(fields[0], maxScalar)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	cseq, err := parseUint(fields[1], maxScalar)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	if m := RequestMethod(fields[2]); !m.IsValid() {
		return nil, errtrace.Wrap(newMalformedError("invalid method %q", fields[2]))
	}
	return &RAck{RSeq: uint32(rseq), CSeq: uint32(cseq), Method: RequestMethod(fields[2])}, nil
}

func (*RAck) Name() Name { return "RAck" }

func (*RAck) CompactName() Name { return "RAck" }

// RenderTo writes the header to the provided writer.
func (hdr *RAck) RenderTo(w io.Writer, opts *RenderOptions) (int, error) {
	if hdr == nil {
		return 0, nil
	}
	if hdr.Method == "" {
		return 0, errtrace.Wrap(newMissingError("RAck method"))
	}
	return errtrace.Wrap2(renderLine(w, hdr, opts, hdr.renderValueTo))
}

func (hdr *RAck) renderValueTo(w io.Writer) (int, error) {
	return errtrace.Wrap2(fmt.Fprint(w, hdr.RSeq, " ", hdr.CSeq, " ", hdr.Method))
}

func (hdr *RAck) Render(opts *RenderOptions) (string, error) {
	return errtrace.Wrap2(renderString(hdr, opts))
}

func (hdr *RAck) RenderValue() string {
	if hdr == nil {
		return ""
	}
	return renderValue(hdr.renderValueTo)
}

func (hdr *RAck) String() string { return hdr.RenderValue() }

func (hdr *RAck) Format(f fmt.State, verb rune) {
	type hideMethods RAck
	type RAck hideMethods
	formatHeader(f, verb, hdr, (*RAck)(hdr))
}

func (hdr *RAck) Clone() Header {
	if hdr == nil {
		return nil
	}
	hdr2 := *hdr
	return &hdr2
}

func (hdr *RAck) Equal(val any) bool {
	var other *RAck
	switch v := val.(type) {
	case RAck:
		other = &v
	case *RAck:
		other = v
	default:
		return false
	}

	if hdr == other {
		return true
	} else if hdr == nil || other == nil {
		return false
	}
	return hdr.RSeq == other.RSeq && hdr.CSeq == other.CSeq && hdr.Method.Equal(other.Method)
}
