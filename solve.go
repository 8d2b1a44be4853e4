package libzmx

// SolveKind tags the constraint variants a parameter can carry. Resolution
// logic switches on the tag.
type SolveKind int

const (
	// SolveFixed means no constraint: the value is whatever was set.
	SolveFixed SolveKind = iota

	// SolvePickup derives the value from another parameter via a linear
	// scale/offset relationship, resolved at push time.
	SolvePickup

	// SolveVariable marks the parameter adjustable by the server's own
	// optimizer. No local resolution.
	SolveVariable

	// SolveFNumber constrains a curvature so the system reaches a target
	// f/#. Resolved by the server.
	SolveFNumber

	// SolveMarginalRay constrains a thickness so the marginal ray reaches a
	// target height on the next surface. Resolved by the server.
	SolveMarginalRay

	// SolveMaximum sets a semi-diameter to the maximum over all
	// configurations. Resolved by the server.
	SolveMaximum
)

func (k SolveKind) String() string {
	switch k {
	case SolveFixed:
		return "fixed"
	case SolvePickup:
		return "pickup"
	case SolveVariable:
		return "variable"
	case SolveFNumber:
		return "f-number"
	case SolveMarginalRay:
		return "marginal-ray"
	case SolveMaximum:
		return "maximum"
	}
	return "unknown"
}

// Solve is the tagged constraint attached to a parameter. Fields beyond Kind
// are meaningful only for the kinds that use them.
type Solve struct {
	Kind   SolveKind
	Pickup *PickupExpr // SolvePickup

	Target float64 // SolveFNumber: target f/#; SolveMarginalRay: ray height
	Zone   float64 // SolveMarginalRay: normalized entrance pupil y-coordinate
}

// targetCode maps a server-resolved solve kind to its remote solve type code
// and argument list.
func (s Solve) targetCode() (code int, args []float64) {
	switch s.Kind {
	case SolveVariable:
		return solveCodeVariable, nil
	case SolveFNumber:
		return solveCodeFNumber, []float64{s.Target}
	case SolveMarginalRay:
		return solveCodeMarginalRay, []float64{s.Target, s.Zone}
	case SolveMaximum:
		return solveCodeMaximum, nil
	}
	return solveCodeFixed, nil
}

// PickupExpr is a linear expression over another surface's parameter. It
// carries the source parameter by object identity, not by index, so it
// survives intervening insert and delete operations; the concrete surface
// number is bound only when the referencing solve is pushed.
type PickupExpr struct {
	source *Parameter
	scale  float64
	offset float64
}

func (x *PickupExpr) copy() *PickupExpr {
	c := *x
	return &c
}

// Source returns the referenced parameter.
func (x *PickupExpr) Source() *Parameter { return x.source }

// Scale returns the multiplier applied to the source value.
func (x *PickupExpr) Scale() float64 { return x.scale }

// Offset returns the constant added to the scaled source value.
func (x *PickupExpr) Offset() float64 { return x.offset }

// Times returns a new expression with the scale and offset multiplied by k.
func (x *PickupExpr) Times(k float64) *PickupExpr {
	c := x.copy()
	c.scale *= k
	c.offset *= k
	return c
}

// Plus returns a new expression with v added to the offset.
func (x *PickupExpr) Plus(v float64) *PickupExpr {
	c := x.copy()
	c.offset += v
	return c
}

// Minus returns a new expression with v subtracted from the offset.
func (x *PickupExpr) Minus(v float64) *PickupExpr {
	return x.Plus(-v)
}

// Neg returns the negated expression.
func (x *PickupExpr) Neg() *PickupExpr {
	return x.Times(-1)
}
