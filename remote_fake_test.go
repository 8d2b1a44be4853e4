package libzmx

import (
	"context"
	"fmt"
)

// fakeHandle records every remote write for ordering assertions and can
// fail scripted calls.
type fakeHandle struct {
	pushEnabled bool
	native      bool

	count  int
	types  map[int]SurfaceType
	values map[string]Value

	writes []string // every mutating call, in order
	reads  int      // GetParameter calls

	failSetParamAt int // 1-based ordinal of SetParameter call to fail, 0 = never
	failStructure  bool
	setParamCalls  int
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{
		pushEnabled: true,
		native:      true,
		types:       make(map[int]SurfaceType),
		values:      make(map[string]Value),
	}
}

func key(surf int, addr ParamAddr) string {
	return fmt.Sprintf("%d/%d/%d", surf, addr.Class, addr.Column)
}

func (f *fakeHandle) GetSurfaceCount(ctx context.Context) (int, error) {
	return f.count, nil
}

func (f *fakeHandle) SetSurfaceCount(ctx context.Context, n int) error {
	if f.failStructure {
		return fmt.Errorf("scripted structure failure")
	}
	f.count = n
	f.writes = append(f.writes, fmt.Sprintf("SetSurfaceCount(%d)", n))
	return nil
}

func (f *fakeHandle) GetSurfaceType(ctx context.Context, surf int) (SurfaceType, error) {
	if t, ok := f.types[surf]; ok {
		return t, nil
	}
	return TypeStandard, nil
}

func (f *fakeHandle) SetSurfaceType(ctx context.Context, surf int, t SurfaceType) error {
	f.types[surf] = t
	f.writes = append(f.writes, fmt.Sprintf("SetSurfaceType(%d,%s)", surf, t))
	return nil
}

func (f *fakeHandle) GetParameter(ctx context.Context, surf int, addr ParamAddr) (Value, error) {
	f.reads++
	if v, ok := f.values[key(surf, addr)]; ok {
		return v, nil
	}
	if addr.Kind == Text {
		return Str(""), nil
	}
	return Num(0), nil
}

func (f *fakeHandle) SetParameter(ctx context.Context, surf int, addr ParamAddr, v Value) error {
	f.setParamCalls++
	if f.failSetParamAt != 0 && f.setParamCalls == f.failSetParamAt {
		return fmt.Errorf("scripted parameter failure")
	}
	f.values[key(surf, addr)] = v
	f.writes = append(f.writes, fmt.Sprintf("SetParameter(%d,%d,%d)=%s", surf, addr.Class, addr.Column, v))
	return nil
}

func (f *fakeHandle) SetSolve(ctx context.Context, surf int, target int, code int, args ...float64) error {
	f.writes = append(f.writes, fmt.Sprintf("SetSolve(%d,%d,%d)%v", surf, target, code, args))
	return nil
}

func (f *fakeHandle) PushToFrontend(ctx context.Context) error   { return nil }
func (f *fakeHandle) PullFromFrontend(ctx context.Context) error { return nil }

func (f *fakeHandle) PushEnabled(ctx context.Context) (bool, error) {
	return f.pushEnabled, nil
}

func (f *fakeHandle) SupportsNativePickup() bool { return f.native }

// setParams filters the write log down to SetParameter calls.
func (f *fakeHandle) setParams() []string {
	var out []string
	for _, w := range f.writes {
		if len(w) > 12 && w[:12] == "SetParameter" {
			out = append(out, w)
		}
	}
	return out
}

// setSolves filters the write log down to SetSolve calls.
func (f *fakeHandle) setSolves() []string {
	var out []string
	for _, w := range f.writes {
		if len(w) > 8 && w[:8] == "SetSolve" {
			out = append(out, w)
		}
	}
	return out
}
