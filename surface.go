package libzmx

import (
	"fmt"

	"github.com/google/uuid"
)

// Surface is an ordered bag of named parameters with a stable identity
// label. Its position in the sequence shifts as surfaces are inserted or
// removed before it; pickup references therefore hold the Surface object,
// never a raw index. A surface detached by deletion or a pull fails fast on
// further access.
type Surface struct {
	seq   *SurfaceSequence // nil once detached
	label uuid.UUID
	stype SurfaceType

	params map[string]*Parameter
	order  []string
}

func newSurface(seq *SurfaceSequence, t SurfaceType) *Surface {
	s := &Surface{
		seq:    seq,
		label:  uuid.New(),
		stype:  t,
		params: make(map[string]*Parameter),
	}
	for _, spec := range schemaFor(t) {
		spec := spec
		s.params[spec.name] = &Parameter{surface: s, spec: &spec}
		s.order = append(s.order, spec.name)
	}
	return s
}

// Type returns the surface type. It is immutable after creation: the server
// models a type change as replace, not edit, so changing type means delete
// and re-insert.
func (s *Surface) Type() SurfaceType { return s.stype }

// Label returns the surface's stable identity label.
func (s *Surface) Label() uuid.UUID { return s.label }

// Attached reports whether the surface still belongs to a sequence.
func (s *Surface) Attached() bool { return s.seq != nil }

// Index returns the surface's current position in its sequence.
func (s *Surface) Index() (int, error) {
	if s.seq == nil {
		return 0, fmt.Errorf("%w: surface %s", ErrStaleReference, s.label)
	}
	return s.seq.indexOf(s)
}

// Param returns the named parameter. The valid name set is fixed by the
// surface type at construction.
func (s *Surface) Param(name string) (*Parameter, error) {
	if s.seq == nil {
		return nil, fmt.Errorf("%w: surface %s", ErrStaleReference, s.label)
	}
	p, ok := s.params[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q on %s surface", ErrUnknownParameter, name, s.stype)
	}
	return p, nil
}

// ParamNames returns the parameter names valid for this surface type, in
// schema order.
func (s *Surface) ParamNames() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// param returns a named parameter without the detached check, for the
// convenience accessors below. Accessing a parameter of a detached surface
// still fails on use: every Parameter operation re-checks attachment.
func (s *Surface) param(name string) *Parameter {
	return s.params[name]
}

// Comment returns the comment parameter.
func (s *Surface) Comment() *Parameter { return s.param("comment") }

// Thickness returns the thickness parameter.
func (s *Surface) Thickness() *Parameter { return s.param("thickness") }

// Curvature returns the curvature parameter. Nil on surface types without
// one.
func (s *Surface) Curvature() *Parameter { return s.param("curvature") }

// Glass returns the glass parameter. Nil on surface types without one.
func (s *Surface) Glass() *Parameter { return s.param("glass") }

// SemiDiameter returns the semi-diameter parameter. Nil on surface types
// without one.
func (s *Surface) SemiDiameter() *Parameter { return s.param("semidia") }

// Conic returns the conic constant parameter. Nil on surface types without
// one.
func (s *Surface) Conic() *Parameter { return s.param("conic") }

// detach invalidates the surface for further attribute access.
func (s *Surface) detach() { s.seq = nil }

// dirtyParams returns the surface's dirty parameters in schema order.
func (s *Surface) dirtyParams() []*Parameter {
	var out []*Parameter
	for _, name := range s.order {
		if p := s.params[name]; p.dirty {
			out = append(out, p)
		}
	}
	return out
}
