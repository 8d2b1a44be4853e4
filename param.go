package libzmx

import (
	"context"
	"fmt"
)

// Parameter is one addressable quantity on a surface. It holds a cached
// value gated by the sequence generation, a dirty flag and an optional
// solve. Remote reads happen lazily on first Get per generation; remote
// writes happen only on an explicit sequence push.
type Parameter struct {
	surface *Surface
	spec    *paramSpec

	cached   Value
	hasCache bool
	cacheGen uint64

	dirty bool
	solve Solve
}

// Name returns the parameter's name within its surface.
func (p *Parameter) Name() string { return p.spec.name }

// Kind returns the parameter's declared value kind.
func (p *Parameter) Kind() ValueKind { return p.spec.addr.Kind }

// Surface returns the owning surface.
func (p *Parameter) Surface() *Surface { return p.surface }

// Solve returns the currently attached solve.
func (p *Parameter) Solve() Solve { return p.solve }

// Dirty reports whether the parameter has local changes not yet pushed.
func (p *Parameter) Dirty() bool { return p.dirty }

// id names the parameter for error reporting, using the current index when
// the surface is still attached.
func (p *Parameter) id() string {
	if seq := p.surface.seq; seq != nil {
		if i, err := seq.indexOf(p.surface); err == nil {
			return fmt.Sprintf("surface[%d].%s", i, p.spec.name)
		}
	}
	return fmt.Sprintf("surface(%s).%s", p.surface.label, p.spec.name)
}

// owner returns the attached sequence, or a stale-reference error naming the
// parameter if the surface has been detached.
func (p *Parameter) owner() (*SurfaceSequence, error) {
	seq := p.surface.seq
	if seq == nil {
		return nil, fmt.Errorf("%w: %s", ErrStaleReference, p.id())
	}
	return seq, nil
}

// Get returns the parameter's value, reading from the design server on
// first access per sequence generation and caching afterwards. A pending
// local assignment is authoritative until pushed: while the parameter is
// dirty, Get never consults the server, so a structural change between Set
// and Push cannot clobber the assigned value with remote state.
func (p *Parameter) Get(ctx context.Context) (Value, error) {
	seq, err := p.owner()
	if err != nil {
		return Value{}, err
	}
	if p.hasCache && (p.dirty || p.cacheGen == seq.generation) {
		return p.cached, nil
	}
	idx, err := seq.indexOf(p.surface)
	if err != nil {
		return Value{}, err
	}
	v, err := seq.conn.GetParameter(ctx, idx, p.spec.addr)
	if err != nil {
		return Value{}, fmt.Errorf("get %s: %w", p.id(), err)
	}
	p.cached = v
	p.hasCache = true
	p.cacheGen = seq.generation
	return v, nil
}

// GetNumber returns the value of a numeric parameter.
func (p *Parameter) GetNumber(ctx context.Context) (float64, error) {
	if p.Kind() != Number {
		return 0, fmt.Errorf("%w: %s is %s", ErrTypeMismatch, p.id(), p.Kind())
	}
	v, err := p.Get(ctx)
	if err != nil {
		return 0, err
	}
	return v.Number(), nil
}

// GetText returns the value of a text parameter.
func (p *Parameter) GetText(ctx context.Context) (string, error) {
	if p.Kind() != Text {
		return "", fmt.Errorf("%w: %s is %s", ErrTypeMismatch, p.id(), p.Kind())
	}
	v, err := p.Get(ctx)
	if err != nil {
		return "", err
	}
	return v.Text(), nil
}

// Set records a new value locally and marks the parameter dirty. Assigning
// wins over constraining: any attached solve is replaced by Fixed. Nothing
// is written remotely until the sequence is pushed.
func (p *Parameter) Set(v Value) error {
	seq, err := p.owner()
	if err != nil {
		return err
	}
	if v.Kind() != p.Kind() {
		return fmt.Errorf("%w: %s expects %s, got %s", ErrTypeMismatch, p.id(), p.Kind(), v.Kind())
	}
	p.solve = Solve{Kind: SolveFixed}
	p.cached = v
	p.hasCache = true
	p.cacheGen = seq.generation
	p.dirty = true
	return nil
}

// SetNumber sets a numeric parameter.
func (p *Parameter) SetNumber(v float64) error { return p.Set(Num(v)) }

// SetText sets a text parameter.
func (p *Parameter) SetText(s string) error { return p.Set(Str(s)) }

// AttachSolve replaces the current solve and marks the parameter dirty.
// Dependencies are not resolved here: a pickup source may live on a surface
// that does not exist yet. Resolution is deferred to push time.
func (p *Parameter) AttachSolve(s Solve) error {
	if _, err := p.owner(); err != nil {
		return err
	}
	if err := p.checkSolve(s); err != nil {
		return err
	}
	p.solve = s
	p.dirty = true
	return nil
}

// checkSolve validates a solve against the parameter's schema capabilities.
func (p *Parameter) checkSolve(s Solve) error {
	switch s.Kind {
	case SolveFixed:
		return nil
	case SolvePickup:
		f := p.spec.pickup
		if f == nil {
			return fmt.Errorf("%w: %s accepts no pickup", ErrSolveNotSupported, p.id())
		}
		if s.Pickup == nil || s.Pickup.source == nil {
			return fmt.Errorf("%w: pickup on %s has no source", ErrSolveNotSupported, p.id())
		}
		if s.Pickup.scale != 1 && !f.hasScale {
			return fmt.Errorf("%w: pickup on %s cannot scale", ErrSolveNotSupported, p.id())
		}
		if s.Pickup.offset != 0 && !f.hasOffset {
			return fmt.Errorf("%w: pickup on %s cannot offset", ErrSolveNotSupported, p.id())
		}
		src := s.Pickup.source
		if !f.hasColRef && src.spec.addr != p.spec.addr {
			return fmt.Errorf("%w: pickup on %s cannot reference column %q", ErrSolveNotSupported, p.id(), src.Name())
		}
		return nil
	case SolveVariable:
		if !p.spec.canVary {
			return fmt.Errorf("%w: %s cannot vary", ErrSolveNotSupported, p.id())
		}
	case SolveFNumber:
		if !p.spec.canFNumber {
			return fmt.Errorf("%w: f/# solve requires a curvature", ErrSolveNotSupported)
		}
	case SolveMarginalRay:
		if !p.spec.canMarginal {
			return fmt.Errorf("%w: marginal-ray solve requires a thickness", ErrSolveNotSupported)
		}
	case SolveMaximum:
		if !p.spec.canMaximum {
			return fmt.Errorf("%w: maximum solve requires a semi-diameter", ErrSolveNotSupported)
		}
	}
	return nil
}

// Linked returns a pickup expression referencing this parameter, usable as
// a solve source elsewhere. The reference carries the surface object itself,
// so it stays valid across index renumbering and may be created before the
// referencing surface has been pushed.
func (p *Parameter) Linked() *PickupExpr {
	return &PickupExpr{source: p, scale: 1}
}

// Link attaches a pickup solve deriving this parameter from expr.
func (p *Parameter) Link(expr *PickupExpr) error {
	return p.AttachSolve(Solve{Kind: SolvePickup, Pickup: expr})
}

// Fix clears any attached solve, returning the parameter to plain assigned
// behaviour.
func (p *Parameter) Fix() error {
	return p.AttachSolve(Solve{Kind: SolveFixed})
}

// Vary marks the parameter adjustable by the server's optimizer.
func (p *Parameter) Vary() error {
	return p.AttachSolve(Solve{Kind: SolveVariable})
}

// SetFNumber constrains the curvature so the system reaches the target f/#.
func (p *Parameter) SetFNumber(target float64) error {
	return p.AttachSolve(Solve{Kind: SolveFNumber, Target: target})
}

// FocusOnNext constrains the thickness so the next surface lies on the
// focal plane, via a marginal-ray-height solve with height 0 at pupil zone
// 0.2.
func (p *Parameter) FocusOnNext() error {
	return p.MarginalRayHeight(0, 0.2)
}

// MarginalRayHeight constrains the thickness so the marginal ray traced at
// the given pupil zone reaches the target height on the next surface. Zone 0
// selects paraxial focus.
func (p *Parameter) MarginalRayHeight(target, zone float64) error {
	return p.AttachSolve(Solve{Kind: SolveMarginalRay, Target: target, Zone: zone})
}

// Maximize sets a semi-diameter to the maximum over all configurations.
func (p *Parameter) Maximize() error {
	return p.AttachSolve(Solve{Kind: SolveMaximum})
}
