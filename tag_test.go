package libzmx

import (
	"context"
	"testing"
)

func TestSplitJoinTag(t *testing.T) {
	cases := []struct {
		comment string
		text    string
		tag     string
	}{
		{"", "", ""},
		{"front lens", "front lens", ""},
		{"#front#", "", "front"},
		{"front lens #front#", "front lens", "front"},
		{"trailing hash#", "trailing hash#", ""},
	}
	for _, tc := range cases {
		t.Run(tc.comment, func(t *testing.T) {
			text, tag := splitTag(tc.comment)
			if text != tc.text || tag != tc.tag {
				t.Errorf("splitTag(%q) = (%q, %q), want (%q, %q)", tc.comment, text, tag, tc.text, tc.tag)
			}
			if tc.tag != "" {
				if got := joinTag(tc.text, tc.tag); got != tc.comment {
					t.Errorf("joinTag(%q, %q) = %q, want %q", tc.text, tc.tag, got, tc.comment)
				}
			}
		})
	}
}

func TestTagSurvivesPushAndPull(t *testing.T) {
	seq, _ := buildModel(t, 2)
	ctx := context.Background()

	front, _ := seq.At(1)
	if err := front.Comment().SetText("front lens"); err != nil {
		t.Fatalf("set comment: %v", err)
	}
	if err := front.SetTag(ctx, "front"); err != nil {
		t.Fatalf("set tag: %v", err)
	}
	if err := seq.Push(ctx); err != nil {
		t.Fatalf("Push failed: %v", err)
	}

	// A pull rebuilds every surface; only the tag identifies the old one.
	if err := seq.Pull(ctx); err != nil {
		t.Fatalf("Pull failed: %v", err)
	}
	found, err := seq.FindTag(ctx, "front")
	if err != nil {
		t.Fatalf("FindTag failed: %v", err)
	}
	idx, err := found.Index()
	if err != nil {
		t.Fatalf("Index failed: %v", err)
	}
	if idx != 1 {
		t.Errorf("expected the tagged surface at index 1, got %d", idx)
	}
	tag, err := found.Tag(ctx)
	if err != nil {
		t.Fatalf("Tag failed: %v", err)
	}
	if tag != "front" {
		t.Errorf("tag = %q, want front", tag)
	}
	comment, err := found.Comment().GetText(ctx)
	if err != nil {
		t.Fatalf("get comment: %v", err)
	}
	if text, _ := splitTag(comment); text != "front lens" {
		t.Errorf("visible comment text lost: %q", comment)
	}

	if _, err := seq.FindTag(ctx, "missing"); err == nil {
		t.Error("FindTag on an unknown tag must fail")
	}
}

func TestSetTagReplacesExistingTag(t *testing.T) {
	seq, _ := buildModel(t, 1)
	ctx := context.Background()

	s, _ := seq.At(1)
	if err := s.Comment().SetText("lens #old#"); err != nil {
		t.Fatalf("set comment: %v", err)
	}
	if err := s.SetTag(ctx, "new"); err != nil {
		t.Fatalf("set tag: %v", err)
	}
	v, err := s.Comment().GetText(ctx)
	if err != nil {
		t.Fatalf("get comment: %v", err)
	}
	if v != "lens #new#" {
		t.Errorf("comment = %q, want %q", v, "lens #new#")
	}
}
