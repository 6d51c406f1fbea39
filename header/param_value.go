package header

import (
	"fmt"
	"io"
	"slices"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipmsg/internal/grammar"
	"github.com/ghettovoice/sipmsg/internal/ioutil"
	"github.com/ghettovoice/sipmsg/internal/util"
)

// ValueParams is a value followed by ;key[=value] parameters,
// e.g. "application/sdp;charset=utf-8".
type ValueParams struct {
	Value  string
	Params Params
}

func parseValueParams(s string) (ValueParams, error) {
	segs, err := grammar.Split(s, ';')
	if err != nil {
		return ValueParams{}, errtrace.Wrap(wrapMalformed(err))
	}
	vp := ValueParams{Value: util.TrimLWS(segs[0])}
	if vp.Value == "" {
		return ValueParams{}, errtrace.Wrap(newMissingError("value before parameters"))
	}
	if vp.Params, err = parseParams(segs[1:], false); err != nil {
		return ValueParams{}, errtrace.Wrap(err)
	}
	return vp, nil
}

func (vp ValueParams) renderTo(w io.Writer) (int, error) {
	if vp.Value == "" {
		return 0, errtrace.Wrap(newMissingError("value"))
	}
	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	cw.WriteString(vp.Value)
	cw.Call(func(w io.Writer) (int, error) { return renderParams(w, vp.Params) })
	return errtrace.Wrap2(cw.Result())
}

func (vp ValueParams) String() string { return renderValue(vp.renderTo) }

func (vp ValueParams) Clone() ValueParams {
	return ValueParams{Value: vp.Value, Params: vp.Params.Clone()}
}

// Equal compares values case-insensitively and parameters regardless of order.
func (vp ValueParams) Equal(val any) bool {
	var other ValueParams
	switch v := val.(type) {
	case ValueParams:
		other = v
	case *ValueParams:
		if v == nil {
			return false
		}
		other = *v
	default:
		return false
	}
	return util.EqFold(vp.Value, other.Value) && vp.Params.Equal(other.Params)
}

// ParamValue is a header with a single value with parameters,
// e.g. Content-Type, Event, Subscription-State, Retry-After.
type ParamValue struct {
	name Name
	ValueParams
}

// NewParamValue returns a header with the given name, value and parameters.
func NewParamValue(name, val string, params Params) *ParamValue {
	return &ParamValue{name: CanonicName(name), ValueParams: ValueParams{Value: val, Params: params}}
}

func parseParamValue(name Name, lines []string) (Header, error) {
	s, err := singleLine(lines)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	vp, err := parseValueParams(s)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	return &ParamValue{name: name, ValueParams: vp}, nil
}

func (hdr *ParamValue) Name() Name {
	if hdr == nil {
		return ""
	}
	return hdr.name
}

func (hdr *ParamValue) CompactName() Name { return compactName(hdr.Name()) }

// RenderTo writes the header to the provided writer.
func (hdr *ParamValue) RenderTo(w io.Writer, opts *RenderOptions) (int, error) {
	if hdr == nil {
		return 0, nil
	}
	if hdr.Value == "" {
		return 0, errtrace.Wrap(newMissingError(string(hdr.name) + " value"))
	}
	return errtrace.Wrap2(renderLine(w, hdr, opts, hdr.renderTo))
}

func (hdr *ParamValue) Render(opts *RenderOptions) (string, error) {
	return errtrace.Wrap2(renderString(hdr, opts))
}

func (hdr *ParamValue) RenderValue() string {
	if hdr == nil {
		return ""
	}
	return renderValue(hdr.renderTo)
}

func (hdr *ParamValue) String() string { return hdr.RenderValue() }

func (hdr *ParamValue) Format(f fmt.State, verb rune) {
	type hideMethods ParamValue
	type ParamValue hideMethods
	formatHeader(f, verb, hdr, (*ParamValue)(hdr))
}

func (hdr *ParamValue) Clone() Header {
	if hdr == nil {
		return nil
	}
	return &ParamValue{name: hdr.name, ValueParams: hdr.ValueParams.Clone()}
}

func (hdr *ParamValue) Equal(val any) bool {
	var other *ParamValue
	switch v := val.(type) {
	case ParamValue:
		other = &v
	case *ParamValue:
		other = v
	default:
		return false
	}

	if hdr == other {
		return true
	} else if hdr == nil || other == nil {
		return false
	}
	return hdr.name.Equal(other.name) && hdr.ValueParams.Equal(other.ValueParams)
}

// ParamValueList is a header with a comma-separated list of values with parameters,
// e.g. Accept, Accept-Language, Call-Info.
type ParamValueList struct {
	name   Name
	Values []ValueParams
}

// NewParamValueList returns a header with the given name and values.
func NewParamValueList(name string, vals ...ValueParams) *ParamValueList {
	return &ParamValueList{name: CanonicName(name), Values: vals}
}

func parseParamValueList(name Name, lines []string) (Header, error) {
	hdr := &ParamValueList{name: name}
	for _, l := range lines {
		items, err := grammar.Split(l, ',')
		if err != nil {
			return nil, errtrace.Wrap(wrapMalformed(err))
		}
		for _, item := range items {
			if util.TrimLWS(item) == "" {
				continue
			}
			vp, err := parseValueParams(item)
			if err != nil {
				return nil, errtrace.Wrap(err)
			}
			hdr.Values = append(hdr.Values, vp)
		}
	}
	if len(hdr.Values) == 0 {
		return nil, errtrace.Wrap(newMissingError("list value"))
	}
	return hdr, nil
}

func (hdr *ParamValueList) Name() Name {
	if hdr == nil {
		return ""
	}
	return hdr.name
}

func (hdr *ParamValueList) CompactName() Name { return compactName(hdr.Name()) }

// RenderTo writes the header with values joined by a comma on a single line.
func (hdr *ParamValueList) RenderTo(w io.Writer, opts *RenderOptions) (int, error) {
	if hdr == nil {
		return 0, nil
	}
	if len(hdr.Values) == 0 {
		return 0, errtrace.Wrap(newMissingError(string(hdr.name) + " value"))
	}
	return errtrace.Wrap2(renderLine(w, hdr, opts, hdr.renderValueTo))
}

func (hdr *ParamValueList) renderValueTo(w io.Writer) (int, error) {
	return errtrace.Wrap2(joinValues(w, hdr.Values, func(w io.Writer, vp ValueParams) (int, error) {
		return errtrace.Wrap2(vp.renderTo(w))
	}))
}

func (hdr *ParamValueList) Render(opts *RenderOptions) (string, error) {
	return errtrace.Wrap2(renderString(hdr, opts))
}

func (hdr *ParamValueList) RenderValue() string {
	if hdr == nil {
		return ""
	}
	return renderValue(hdr.renderValueTo)
}

func (hdr *ParamValueList) String() string { return hdr.RenderValue() }

func (hdr *ParamValueList) Format(f fmt.State, verb rune) {
	type hideMethods ParamValueList
	type ParamValueList hideMethods
	formatHeader(f, verb, hdr, (*ParamValueList)(hdr))
}

func (hdr *ParamValueList) Clone() Header {
	if hdr == nil {
		return nil
	}
	vals := make([]ValueParams, len(hdr.Values))
	for i := range hdr.Values {
		vals[i] = hdr.Values[i].Clone()
	}
	return &ParamValueList{name: hdr.name, Values: vals}
}

func (hdr *ParamValueList) Equal(val any) bool {
	var other *ParamValueList
	switch v := val.(type) {
	case ParamValueList:
		other = &v
	case *ParamValueList:
		other = v
	default:
		return false
	}

	if hdr == other {
		return true
	} else if hdr == nil || other == nil {
		return false
	}
	return hdr.name.Equal(other.name) &&
		slices.EqualFunc(hdr.Values, other.Values, func(a, b ValueParams) bool { return a.Equal(b) })
}
