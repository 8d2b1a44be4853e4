package libzmx

import (
	"context"
	"fmt"
)

// SnapshotSurface is one surface's record in a read-only snapshot.
type SnapshotSurface struct {
	Type   SurfaceType      `json:"type"`
	Params map[string]Value `json:"params"`
}

// Snapshot is a read-only view of the current prescription, exposed to
// analysis and ray-trace collaborators: parameter values by (surface index,
// name) and the total surface count. It is decoupled from the live
// sequence; later mutations do not show through.
type Snapshot struct {
	Surfaces []SnapshotSurface `json:"surfaces"`
}

// Count returns the total surface count.
func (s *Snapshot) Count() int { return len(s.Surfaces) }

// Value returns the value of (surface index, name), if present.
func (s *Snapshot) Value(i int, name string) (Value, bool) {
	if i < 0 || i >= len(s.Surfaces) {
		return Value{}, false
	}
	v, ok := s.Surfaces[i].Params[name]
	return v, ok
}

// Snapshot materializes every parameter value of every surface into a
// read-only snapshot, going through the per-parameter caches so unchanged
// values cost no remote calls.
func (q *SurfaceSequence) Snapshot(ctx context.Context) (*Snapshot, error) {
	out := &Snapshot{Surfaces: make([]SnapshotSurface, 0, len(q.surfaces))}
	for _, s := range q.surfaces {
		rec := SnapshotSurface{Type: s.stype, Params: make(map[string]Value, len(s.order))}
		for _, name := range s.order {
			v, err := s.params[name].Get(ctx)
			if err != nil {
				return nil, err
			}
			rec.Params[name] = v
		}
		out.Surfaces = append(out.Surfaces, rec)
	}
	return out, nil
}

// LoadSnapshot rebuilds the local model from a snapshot. Every surface and
// parameter value is recreated dirty, so the next push writes the whole
// prescription to the design server.
func (q *SurfaceSequence) LoadSnapshot(snap *Snapshot) error {
	if len(snap.Surfaces) < 2 {
		return fmt.Errorf("snapshot needs at least object and image surfaces, has %d", len(snap.Surfaces))
	}
	fresh := make([]*Surface, 0, len(snap.Surfaces))
	for _, rec := range snap.Surfaces {
		s := newSurface(q, rec.Type)
		for name, v := range rec.Params {
			p, ok := s.params[name]
			if !ok {
				return fmt.Errorf("%w: %q on %s surface", ErrUnknownParameter, name, rec.Type)
			}
			if err := p.Set(v); err != nil {
				return err
			}
		}
		fresh = append(fresh, s)
	}
	for _, s := range q.surfaces {
		s.detach()
	}
	q.surfaces = fresh
	q.structDirty = true
	q.generation++
	return nil
}
