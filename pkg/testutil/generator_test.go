package testutil

import (
	"reflect"
	"testing"

	"github.com/vanderheijden86/oasftree/pkg/model"
)

func slugs(f model.Forest) []string {
	var out []string
	var walk func(cs []model.Category)
	walk = func(cs []model.Category) {
		for _, c := range cs {
			out = append(out, c.Slug)
			walk(c.Children)
		}
	}
	walk(f)
	return out
}

func TestRandomIsDeterministic(t *testing.T) {
	a := NewDefault().Random()
	b := NewDefault().Random()
	if !reflect.DeepEqual(a, b) {
		t.Error("expected identical forests for identical seeds")
	}
}

func TestRandomSlugsUnique(t *testing.T) {
	f := New(GeneratorConfig{Seed: 7, Roots: 5, MaxChildren: 5, MaxDepth: 4}).Random()
	seen := make(map[string]bool)
	for _, s := range slugs(f) {
		if seen[s] {
			t.Fatalf("duplicate slug %s", s)
		}
		seen[s] = true
	}
	if len(f) != 5 {
		t.Errorf("expected 5 roots, got %d", len(f))
	}
}

func TestShapes(t *testing.T) {
	if got := Chain(6).Count(); got != 6 {
		t.Errorf("expected chain of 6, got %d", got)
	}
	if Chain(0) != nil {
		t.Error("expected nil forest for empty chain")
	}
	// 1 + 3 + 9
	if got := Balanced(2, 3).Count(); got != 13 {
		t.Errorf("expected 13 nodes in balanced(2,3), got %d", got)
	}
	if got := Sample().Count(); got != 4 {
		t.Errorf("expected 4 nodes in sample, got %d", got)
	}
	if got := TenNodes().Count(); got != 10 {
		t.Errorf("expected 10 nodes, got %d", got)
	}
}
