package types

import (
	"io"
	"slices"

	"braces.dev/errtrace"

	"github.com/ghettovoice/sipmsg/internal/ioutil"
	"github.com/ghettovoice/sipmsg/internal/util"
)

// Param is a single name[=value] parameter.
// An empty Value renders as a bare name.
type Param struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// Params is an ordered list of parameters with unique case-insensitive names.
// It keeps the order in which parameters were added so rendering is stable.
// It is used for URI parameters, URI headers, header parameters and digest extensions.
type Params []Param

func (ps Params) index(name string) int {
	return slices.IndexFunc(ps, func(p Param) bool { return util.EqFold(p.Name, name) })
}

// Get returns the value of the named parameter.
func (ps Params) Get(name string) (string, bool) {
	if i := ps.index(name); i >= 0 {
		return ps[i].Value, true
	}
	return "", false
}

// Has checks whether the named parameter is present.
func (ps Params) Has(name string) bool { return ps.index(name) >= 0 }

// Set replaces the value of the named parameter or appends a new one.
func (ps Params) Set(name, value string) Params {
	if i := ps.index(name); i >= 0 {
		ps[i].Value = value
		return ps
	}
	return append(ps, Param{name, value})
}

// Add appends a new parameter. It reports false without modifying ps if the name is already present.
func (ps Params) Add(name, value string) (Params, bool) {
	if ps.Has(name) {
		return ps, false
	}
	return append(ps, Param{name, value}), true
}

// Del removes the named parameter.
func (ps Params) Del(name string) Params {
	if i := ps.index(name); i >= 0 {
		return slices.Delete(ps, i, i+1)
	}
	return ps
}

// Clone returns a copy of the list.
func (ps Params) Clone() Params { return slices.Clone(ps) }

// Equal reports whether ps and val contain the same name/value pairs regardless of order.
// Names are compared case-insensitively, values exactly.
// Nil and empty lists are equal.
func (ps Params) Equal(val any) bool {
	var other Params
	switch v := val.(type) {
	case Params:
		other = v
	case *Params:
		if v == nil {
			return false
		}
		other = *v
	default:
		return false
	}

	if len(ps) != len(other) {
		return false
	}
	for _, p := range ps {
		if v, ok := other.Get(p.Name); !ok || v != p.Value {
			return false
		}
	}
	return true
}

// RenderTo writes the list as lead name[=value] *(sep name[=value]).
// Names and values are passed through esc if it is not nil.
func (ps Params) RenderTo(w io.Writer, lead, sep string, esc func(string) string) (int, error) {
	if len(ps) == 0 {
		return 0, nil
	}
	if esc == nil {
		esc = func(s string) string { return s }
	}

	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	for i, p := range ps {
		if i == 0 {
			cw.WriteString(lead)
		} else {
			cw.WriteString(sep)
		}
		cw.WriteString(esc(p.Name))
		if p.Value != "" {
			cw.Fprint("=", esc(p.Value))
		}
	}
	return errtrace.Wrap2(cw.Result())
}
