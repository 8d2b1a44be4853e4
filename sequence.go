package libzmx

import (
	"context"
	"fmt"
	"log/slog"
)

// SurfaceSequence is the ordered collection of surfaces, object plane first
// and image plane last. It owns insert/delete and the index renumbering they
// imply, and mediates all batched traffic to the design server. A
// monotonically increasing generation counter, bumped on every structural
// change, push and pull, invalidates parameter caches.
//
// The sequence assumes a single-threaded caller: the external process is
// fragile under concurrent or rapid-fire calls, so at most one push or pull
// may be in flight and the library deliberately provides no internal
// locking.
type SurfaceSequence struct {
	conn     RemoteHandle
	surfaces []*Surface

	generation  uint64
	structDirty bool
	busy        bool
}

// NewSequence creates a fresh local model holding only the object and image
// planes. Nothing is sent to the design server until the first push.
func NewSequence(conn RemoteHandle) *SurfaceSequence {
	seq := &SurfaceSequence{conn: conn, structDirty: true}
	seq.surfaces = []*Surface{
		newSurface(seq, TypeObject),
		newSurface(seq, TypeImage),
	}
	return seq
}

// Attach connects to the design server and builds the local model from its
// current prescription.
func Attach(ctx context.Context, conn RemoteHandle) (*SurfaceSequence, error) {
	seq := &SurfaceSequence{conn: conn}
	if err := seq.Pull(ctx); err != nil {
		return nil, err
	}
	return seq, nil
}

// Len returns the number of surfaces, endpoints included.
func (q *SurfaceSequence) Len() int { return len(q.surfaces) }

// Generation returns the current cache generation.
func (q *SurfaceSequence) Generation() uint64 { return q.generation }

// At returns the surface at index i.
func (q *SurfaceSequence) At(i int) (*Surface, error) {
	if i < 0 || i >= len(q.surfaces) {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(q.surfaces))
	}
	return q.surfaces[i], nil
}

// Surfaces returns the surfaces in order. The slice is a copy; the surfaces
// are not.
func (q *SurfaceSequence) Surfaces() []*Surface {
	out := make([]*Surface, len(q.surfaces))
	copy(out, q.surfaces)
	return out
}

// indexOf returns the current index of a surface, or a stale-reference
// error if it no longer belongs to the sequence.
func (q *SurfaceSequence) indexOf(s *Surface) (int, error) {
	for i, cur := range q.surfaces {
		if cur == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: surface %s", ErrStaleReference, s.label)
}

// AppendNew creates a surface of the given type immediately before the
// image plane and returns it. All parameters start Fixed and unset. The
// server is not contacted until the next push.
func (q *SurfaceSequence) AppendNew(t SurfaceType) (*Surface, error) {
	return q.InsertNew(len(q.surfaces)-1, t)
}

// InsertNew creates a surface of the given type at index i, shifting the
// surfaces from i onwards by one. Inserting at 0 (before the object plane)
// or past the image plane is rejected.
func (q *SurfaceSequence) InsertNew(i int, t SurfaceType) (*Surface, error) {
	if i < 1 || i > len(q.surfaces)-1 {
		return nil, fmt.Errorf("%w: cannot insert at %d", ErrIndexOutOfRange, i)
	}
	if t == TypeObject || t == TypeImage {
		return nil, fmt.Errorf("%w: cannot insert an endpoint surface", ErrIndexOutOfRange)
	}
	s := newSurface(q, t)
	q.surfaces = append(q.surfaces, nil)
	copy(q.surfaces[i+1:], q.surfaces[i:])
	q.surfaces[i] = s
	q.structDirty = true
	q.generation++
	return s, nil
}

// Delete detaches the surface at index i and shifts the following indices
// down by one. The detached surface and all parameters obtained from it fail
// fast on further access. The endpoints cannot be deleted.
func (q *SurfaceSequence) Delete(i int) error {
	if i < 0 || i >= len(q.surfaces) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(q.surfaces))
	}
	if i == 0 || i == len(q.surfaces)-1 {
		return fmt.Errorf("%w: cannot delete an endpoint surface", ErrIndexOutOfRange)
	}
	s := q.surfaces[i]
	q.surfaces = append(q.surfaces[:i], q.surfaces[i+1:]...)
	s.detach()
	q.structDirty = true
	q.generation++
	return nil
}

// begin takes the single-flight guard for a push or pull.
func (q *SurfaceSequence) begin() error {
	if q.busy {
		return ErrBusy
	}
	q.busy = true
	return nil
}

// Push synchronizes local changes to the design server:
//
//  1. verify the push capability, fail with ErrPushDisabled if off
//  2. resolve solve dependencies, fail-fast on cycles and dangling pickup
//     sources before any remote write
//  3. if the structure changed, write surface count and types in order
//  4. write dirty parameters dependency-first; an assigned parameter first
//     clears its server-side solve, then writes its value
//  5. copy the lens to the frontend, clear dirty state, bump the generation
//
// On a structural write failure the push aborts before any parameter write.
// On a parameter write failure the already-written parameters stay applied
// remotely and clean locally (the server has no rollback primitive); the
// rest stay dirty for an explicit retry, and the returned *PushError names
// the failing parameter.
func (q *SurfaceSequence) Push(ctx context.Context) error {
	if err := q.begin(); err != nil {
		return err
	}
	defer func() { q.busy = false }()

	enabled, err := q.conn.PushEnabled(ctx)
	if err != nil {
		return fmt.Errorf("query push capability: %w", err)
	}
	if !enabled {
		return ErrPushDisabled
	}

	b := binder{seq: q}
	order, err := b.resolveOrder()
	if err != nil {
		return err
	}

	if q.structDirty {
		if err := q.pushStructure(ctx); err != nil {
			return err
		}
	}

	for _, p := range order {
		if err := q.pushParameter(ctx, p); err != nil {
			return err
		}
		p.dirty = false
	}

	if err := q.conn.PushToFrontend(ctx); err != nil {
		return fmt.Errorf("push to frontend: %w", err)
	}

	q.structDirty = false
	q.generation++
	slog.Debug("Pushed sequence", "surfaces", len(q.surfaces), "writes", len(order), "generation", q.generation)
	return nil
}

// pushStructure writes the surface count and every surface type, in order.
// Structure must match before per-parameter addressing is meaningful, so
// any failure here aborts the push before the first parameter write.
func (q *SurfaceSequence) pushStructure(ctx context.Context) error {
	if err := q.conn.SetSurfaceCount(ctx, len(q.surfaces)); err != nil {
		return fmt.Errorf("set surface count: %w", err)
	}
	for i, s := range q.surfaces {
		if err := q.conn.SetSurfaceType(ctx, i, s.stype); err != nil {
			return fmt.Errorf("set surface %d type: %w", i, err)
		}
	}
	return nil
}

// pushParameter issues the remote write(s) for one dirty parameter
// according to its solve kind.
func (q *SurfaceSequence) pushParameter(ctx context.Context, p *Parameter) error {
	idx, err := q.indexOf(p.surface)
	if err != nil {
		return err
	}

	switch p.solve.Kind {
	case SolveFixed:
		// Assignment wins over constraining: clear any solve the server may
		// still hold from an earlier push before writing the value.
		if p.spec.solveTarget >= 0 {
			if err := q.conn.SetSolve(ctx, idx, p.spec.solveTarget, p.spec.fixCode); err != nil {
				return &PushError{Param: p.id(), Err: err}
			}
		}
		if !p.hasCache {
			// Nothing was ever assigned; only the solve reset to write.
			return nil
		}
		if err := q.conn.SetParameter(ctx, idx, p.spec.addr, p.cached); err != nil {
			return &PushError{Param: p.id(), Err: err}
		}
		// The server now agrees with the cache; revalidate it so pickup
		// resolution in this push reads no round-trip.
		p.cacheGen = q.generation

	case SolvePickup:
		if err := q.pushPickup(ctx, p, idx); err != nil {
			return err
		}

	default:
		// Server-resolved target solves are leaves: one set-solve call,
		// no plain value write.
		code, args := p.solve.targetCode()
		if err := q.conn.SetSolve(ctx, idx, p.spec.solveTarget, code, args...); err != nil {
			return &PushError{Param: p.id(), Err: err}
		}
	}
	return nil
}

// pushPickup computes the pickup locally (source * scale + offset), writes
// the result as a plain value, then registers the native pickup best-effort
// so the server's own re-solve behaviour matches. A failed registration
// degrades to the one-shot computed write.
func (q *SurfaceSequence) pushPickup(ctx context.Context, p *Parameter, idx int) error {
	expr := p.solve.Pickup
	src := expr.source

	srcVal, err := src.Get(ctx)
	if err != nil {
		return &PushError{Param: p.id(), Err: err}
	}
	var resolved Value
	if p.Kind() == Text {
		resolved = srcVal
	} else {
		resolved = Num(srcVal.Number()*expr.scale + expr.offset)
	}

	if err := q.conn.SetParameter(ctx, idx, p.spec.addr, resolved); err != nil {
		return &PushError{Param: p.id(), Err: err}
	}
	p.cached = resolved
	p.hasCache = true
	p.cacheGen = q.generation

	if !q.conn.SupportsNativePickup() {
		return nil
	}
	srcIdx, err := q.indexOf(src.surface)
	if err != nil {
		return &UnresolvedReferenceError{Param: p.id(), Source: src.id()}
	}
	f := p.spec.pickup
	args := []float64{float64(srcIdx)}
	mods := make([]float64, 0, 2)
	if f.hasScale {
		mods = append(mods, expr.scale)
	}
	if f.hasOffset {
		mods = append(mods, expr.offset)
	}
	if f.reverseTerms {
		for l, r := 0, len(mods)-1; l < r; l, r = l+1, r-1 {
			mods[l], mods[r] = mods[r], mods[l]
		}
	}
	args = append(args, mods...)
	if f.hasColRef {
		args = append(args, float64(src.spec.solveTarget+1))
	}
	if err := q.conn.SetSolve(ctx, idx, p.spec.solveTarget, f.code, args...); err != nil {
		slog.Warn("Native pickup registration failed, keeping one-shot value", "param", p.id(), "error", err)
	}
	return nil
}

// Pull replaces the entire local model with the design server's current
// prescription: the frontend lens is copied into the server, then surface
// count and types are queried and fresh surfaces built. Every previously
// held surface is detached, local solves not mirrored server-side are lost,
// and the generation is bumped so parameter values re-read lazily. Pull is
// authoritative: it reflects ground truth.
func (q *SurfaceSequence) Pull(ctx context.Context) error {
	if err := q.begin(); err != nil {
		return err
	}
	defer func() { q.busy = false }()

	enabled, err := q.conn.PushEnabled(ctx)
	if err != nil {
		return fmt.Errorf("query push capability: %w", err)
	}
	if !enabled {
		return ErrPushDisabled
	}

	if err := q.conn.PullFromFrontend(ctx); err != nil {
		return fmt.Errorf("pull from frontend: %w", err)
	}
	n, err := q.conn.GetSurfaceCount(ctx)
	if err != nil {
		return fmt.Errorf("get surface count: %w", err)
	}

	fresh := make([]*Surface, 0, n)
	for i := 0; i < n; i++ {
		t, err := q.conn.GetSurfaceType(ctx, i)
		if err != nil {
			return fmt.Errorf("get surface %d type: %w", i, err)
		}
		// The wire has no endpoint tags; the ends of the sequence are the
		// object and image planes.
		if t == TypeStandard {
			if i == 0 {
				t = TypeObject
			} else if i == n-1 {
				t = TypeImage
			}
		}
		fresh = append(fresh, newSurface(q, t))
	}

	for _, s := range q.surfaces {
		s.detach()
	}
	q.surfaces = fresh
	q.structDirty = false
	q.generation++
	slog.Debug("Pulled sequence", "surfaces", n, "generation", q.generation)
	return nil
}
