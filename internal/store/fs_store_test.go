package store

import (
	"errors"
	"testing"

	libzmx "github.com/dariussullivan/libzmx"
)

func testSnapshot(thickness float64) *libzmx.Snapshot {
	return &libzmx.Snapshot{Surfaces: []libzmx.SnapshotSurface{
		{Type: libzmx.TypeObject, Params: map[string]libzmx.Value{}},
		{Type: libzmx.TypeStandard, Params: map[string]libzmx.Value{
			"thickness": libzmx.Num(thickness),
			"glass":     libzmx.Str("BK7"),
		}},
		{Type: libzmx.TypeImage, Params: map[string]libzmx.Value{}},
	}}
}

func newTestStore(t *testing.T) *FSStore {
	t.Helper()
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}
	return s
}

func TestSaveAndLoad(t *testing.T) {
	s := newTestStore(t)

	if err := s.SavePrescription("singlet", testSnapshot(2.5)); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	snap, err := s.LoadPrescription("singlet")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if snap.Count() != 3 {
		t.Errorf("expected 3 surfaces, got %d", snap.Count())
	}
	v, ok := snap.Value(1, "thickness")
	if !ok || v.Number() != 2.5 {
		t.Errorf("thickness = %v (present %v), want 2.5", v, ok)
	}
	if v, _ := snap.Value(1, "glass"); v.Text() != "BK7" {
		t.Errorf("glass = %v, want BK7", v)
	}
}

func TestOverwrite(t *testing.T) {
	s := newTestStore(t)

	if err := s.SavePrescription("lens", testSnapshot(1)); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.SavePrescription("lens", testSnapshot(9)); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	snap, err := s.LoadPrescription("lens")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if v, _ := snap.Value(1, "thickness"); v.Number() != 9 {
		t.Errorf("expected the second save to win, got %v", v)
	}
}

func TestLoadMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.LoadPrescription("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Name != "nope" {
		t.Errorf("expected NotFoundError naming the prescription, got %v", err)
	}
}

func TestListAndDelete(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"a", "b"} {
		if err := s.SavePrescription(name, testSnapshot(1)); err != nil {
			t.Fatalf("save %s failed: %v", name, err)
		}
	}
	infos, err := s.ListPrescriptions()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 prescriptions, got %d", len(infos))
	}
	for _, info := range infos {
		if info.Surfaces != 3 {
			t.Errorf("%s: expected 3 surfaces, got %d", info.Name, info.Surfaces)
		}
	}

	if err := s.DeletePrescription("a"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := s.DeletePrescription("a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
	infos, _ = s.ListPrescriptions()
	if len(infos) != 1 || infos[0].Name != "b" {
		t.Errorf("expected only b to remain, got %v", infos)
	}
}

func TestInvalidNames(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"", "../escape", "a/b", `a\b`} {
		if err := s.SavePrescription(name, testSnapshot(1)); err == nil {
			t.Errorf("name %q should be rejected", name)
		}
	}
}
