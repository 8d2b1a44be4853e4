package libzmx

// binder resolves pickup references into concrete surface numbers and
// orders dirty parameters so that every pickup source is written before its
// dependents. References are bound at push time, not when they were created,
// so a source surface appended after the reference still resolves.
type binder struct {
	seq *SurfaceSequence
}

// resolveOrder validates every dirty parameter's solve and returns the
// dirty set in dependency-first order. It fails with *SolveCycleError on a
// pickup cycle and *UnresolvedReferenceError on a source whose surface has
// been deleted; in both cases before any remote write is attempted.
func (b *binder) resolveOrder() ([]*Parameter, error) {
	var dirty []*Parameter
	for _, s := range b.seq.surfaces {
		dirty = append(dirty, s.dirtyParams()...)
	}

	index := make(map[*Parameter]int, len(dirty))
	for i, p := range dirty {
		index[p] = i
	}

	const (
		white = iota // unvisited
		grey         // on the current DFS path
		black        // done
	)
	state := make([]int, len(dirty))
	order := make([]*Parameter, 0, len(dirty))

	var visit func(i int, path []int) error
	visit = func(i int, path []int) error {
		state[i] = grey
		path = append(path, i)

		p := dirty[i]
		if p.solve.Kind == SolvePickup {
			src := p.solve.Pickup.source
			if src.surface.seq != b.seq {
				return &UnresolvedReferenceError{Param: p.id(), Source: src.id()}
			}
			if j, ok := index[src]; ok {
				switch state[j] {
				case grey:
					return cycleError(dirty, path, j)
				case white:
					if err := visit(j, path); err != nil {
						return err
					}
				}
			}
		}

		state[i] = black
		order = append(order, p)
		return nil
	}

	for i := range dirty {
		if state[i] == white {
			if err := visit(i, nil); err != nil {
				return nil, err
			}
		}
	}
	return order, nil
}

// cycleError names the cycle found on the DFS path, closing it on the
// parameter that was revisited.
func cycleError(dirty []*Parameter, path []int, start int) error {
	var names []string
	seen := false
	for _, i := range path {
		if i == start {
			seen = true
		}
		if seen {
			names = append(names, dirty[i].id())
		}
	}
	names = append(names, dirty[start].id())
	return &SolveCycleError{Cycle: names}
}
