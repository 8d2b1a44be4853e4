package main

import (
	"context"
	"fmt"
	"sort"

	libzmx "github.com/dariussullivan/libzmx"
	"github.com/dariussullivan/libzmx/internal/store"
	"github.com/dariussullivan/libzmx/zdde"
	"github.com/dariussullivan/libzmx/zsim"
)

// newSimConn wires a fresh simulator behind an instrumented codec.
func newSimConn() (*zsim.Server, *zdde.Conn, *zdde.Metrics) {
	sim := zsim.New()
	metrics := zdde.NewMetrics()
	opts := []zdde.Option{zdde.WithMetrics(metrics)}
	if !cfg.Server.NativePickup {
		opts = append(opts, zdde.WithoutNativePickup())
	}
	return sim, zdde.New(sim, opts...), metrics
}

func openStore() (*store.FSStore, error) {
	return store.NewFSStore(cfg.Store.DataDir)
}

// printSequence renders the live model the way the lens data editor would.
func printSequence(ctx context.Context, seq *libzmx.SurfaceSequence) error {
	fmt.Printf("%-4s %-10s %-14s %-12s %-8s\n", "#", "Type", "Radius", "Thickness", "Glass")
	for i, surf := range seq.Surfaces() {
		radius := "Infinity"
		if c := surf.Curvature(); c != nil {
			curv, err := c.GetNumber(ctx)
			if err != nil {
				return err
			}
			if curv != 0 {
				radius = fmt.Sprintf("%.6g", 1/curv)
			}
		}
		thickness, err := surf.Thickness().GetNumber(ctx)
		if err != nil {
			return err
		}
		glass := ""
		if g := surf.Glass(); g != nil {
			glass, err = g.GetText(ctx)
			if err != nil {
				return err
			}
		}
		fmt.Printf("%-4d %-10s %-14s %-12.6g %-8s\n", i, surf.Type(), radius, thickness, glass)
	}
	return nil
}

// printSnapshot renders a stored prescription.
func printSnapshot(snap *libzmx.Snapshot) {
	fmt.Printf("%-4s %-10s %-14s %-12s %-8s\n", "#", "Type", "Radius", "Thickness", "Glass")
	for i, surf := range snap.Surfaces {
		radius := "Infinity"
		if v, ok := snap.Value(i, "curvature"); ok && v.Number() != 0 {
			radius = fmt.Sprintf("%.6g", 1/v.Number())
		}
		thickness, _ := snap.Value(i, "thickness")
		glass, _ := snap.Value(i, "glass")
		fmt.Printf("%-4d %-10s %-14s %-12.6g %-8s\n", i, surf.Type, radius, thickness.Number(), glass.Text())
	}
}

// printCallCounts reports how many data items each operation sent to the
// design server during the command.
func printCallCounts(m *zdde.Metrics) {
	counts, err := m.CallCounts()
	if err != nil {
		return
	}
	ops := make([]string, 0, len(counts))
	total := 0.0
	for op, n := range counts {
		ops = append(ops, op)
		total += n
	}
	sort.Strings(ops)
	fmt.Printf("\nRemote calls (%d total):\n", int(total))
	for _, op := range ops {
		fmt.Printf("  %-22s %d\n", op, int(counts[op]))
	}
}
