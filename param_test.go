package libzmx

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestSetRejectsWrongKind(t *testing.T) {
	seq, _ := buildModel(t, 1)
	s, _ := seq.At(1)

	if err := s.Comment().SetNumber(3); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("numeric set on text parameter: expected ErrTypeMismatch, got %v", err)
	}
	if err := s.Thickness().SetText("thick"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("text set on numeric parameter: expected ErrTypeMismatch, got %v", err)
	}
	if _, err := s.Comment().GetNumber(context.Background()); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("GetNumber on text parameter: expected ErrTypeMismatch, got %v", err)
	}
}

func TestSetReplacesSolve(t *testing.T) {
	seq, _ := buildModel(t, 2)
	s, _ := seq.At(1)

	kinds := []struct {
		name   string
		attach func(p *Parameter) error
	}{
		{"variable", (*Parameter).Vary},
		{"marginal-ray", (*Parameter).FocusOnNext},
		{"pickup", func(p *Parameter) error {
			other, _ := seq.At(2)
			return p.Link(other.Thickness().Linked())
		}},
	}
	for _, tc := range kinds {
		t.Run(tc.name, func(t *testing.T) {
			p := s.Thickness()
			if err := tc.attach(p); err != nil {
				t.Fatalf("attach failed: %v", err)
			}
			if err := p.SetNumber(1.5); err != nil {
				t.Fatalf("set failed: %v", err)
			}
			if got := p.Solve().Kind; got != SolveFixed {
				t.Errorf("solve after set = %s, want fixed", got)
			}
		})
	}
}

func TestSolveCapabilityChecks(t *testing.T) {
	seq, _ := buildModel(t, 2)
	s, _ := seq.At(1)
	other, _ := seq.At(2)

	cases := []struct {
		name string
		err  error
	}{
		{"vary comment", s.Comment().Vary()},
		{"f-number on thickness", s.Thickness().SetFNumber(8)},
		{"marginal ray on curvature", s.Curvature().MarginalRayHeight(0, 0.2)},
		{"maximum on thickness", s.Thickness().Maximize()},
		{"offset pickup on curvature", s.Curvature().Link(other.Curvature().Linked().Plus(0.1))},
		{"cross-column pickup on glass", s.Glass().Link(other.Comment().Linked())},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !errors.Is(tc.err, ErrSolveNotSupported) {
				t.Errorf("expected ErrSolveNotSupported, got %v", tc.err)
			}
		})
	}

	// The same attachments are fine where the schema allows them.
	if err := s.Thickness().Vary(); err != nil {
		t.Errorf("vary thickness: %v", err)
	}
	if err := s.Curvature().SetFNumber(8); err != nil {
		t.Errorf("f-number on curvature: %v", err)
	}
	if err := s.SemiDiameter().Maximize(); err != nil {
		t.Errorf("maximum on semi-diameter: %v", err)
	}
	if err := s.Thickness().Link(other.Thickness().Linked().Times(2).Plus(1)); err != nil {
		t.Errorf("scaled offset pickup on thickness: %v", err)
	}
}

func TestPickupExprArithmetic(t *testing.T) {
	seq, _ := buildModel(t, 1)
	s, _ := seq.At(1)
	p := s.Thickness()

	x := p.Linked().Times(3).Plus(5).Minus(2).Neg()
	if x.Source() != p {
		t.Error("arithmetic must preserve the source reference")
	}
	if x.Scale() != -3 || x.Offset() != -3 {
		t.Errorf("got scale %v offset %v, want -3 and -3", x.Scale(), x.Offset())
	}

	// Expressions are immutable; the original is untouched.
	base := p.Linked()
	_ = base.Times(10)
	if base.Scale() != 1 || base.Offset() != 0 {
		t.Errorf("base expression mutated: scale %v offset %v", base.Scale(), base.Offset())
	}
}

func TestPickupResolvesLinearExpression(t *testing.T) {
	seq, f := buildModel(t, 2)
	ctx := context.Background()

	front, _ := seq.At(1)
	back, _ := seq.At(2)
	if err := front.Thickness().SetNumber(4); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := back.Thickness().Link(front.Thickness().Linked().Times(2).Plus(1)); err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := seq.Push(ctx); err != nil {
		t.Fatalf("Push failed: %v", err)
	}

	got, err := back.Thickness().GetNumber(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != 9 {
		t.Errorf("resolved value = %v, want 9", got)
	}
	found := false
	for _, w := range f.setSolves() {
		if strings.HasPrefix(w, "SetSolve(2,1,5)[1 2 1]") {
			found = true
		}
	}
	if !found {
		t.Errorf("native pickup args should carry scale 2 offset 1: %v", f.setSolves())
	}
}

func TestSurfaceAccessorsFollowType(t *testing.T) {
	seq, _ := buildModel(t, 1)
	cb, err := seq.InsertNew(1, TypeCoordinateBreak)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	if cb.Curvature() != nil {
		t.Error("coordinate break has no curvature")
	}
	if cb.Thickness() == nil {
		t.Error("coordinate break keeps its thickness")
	}
	if _, err := cb.Param("offset_x"); err != nil {
		t.Errorf("offset_x should exist on a coordinate break: %v", err)
	}
	if _, err := cb.Param("no_such"); !errors.Is(err, ErrUnknownParameter) {
		t.Errorf("expected ErrUnknownParameter, got %v", err)
	}
}

func TestValueJSONRoundTrip(t *testing.T) {
	in := map[string]Value{"thickness": Num(2.5), "glass": Str("BK7")}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]Value
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["thickness"].Number() != 2.5 || out["glass"].Text() != "BK7" {
		t.Errorf("round trip lost payloads: %v", out)
	}
	if out["glass"].Kind() != Text {
		t.Errorf("string should decode as text, got %s", out["glass"].Kind())
	}
}
