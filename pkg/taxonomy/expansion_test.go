package taxonomy

import (
	"errors"
	"maps"
	"testing"

	"github.com/vanderheijden86/oasftree/pkg/model"
	"github.com/vanderheijden86/oasftree/pkg/testutil"
)

// deepSample is A(B(D(E)), C).
func deepSample() model.Forest {
	return model.Forest{
		{Slug: "a", Name: "A", Children: []model.Category{
			{Slug: "b", Name: "B", Children: []model.Category{
				{Slug: "d", Name: "D", Children: []model.Category{
					{Slug: "e", Name: "E"},
				}},
			}},
			{Slug: "c", Name: "C"},
		}},
	}
}

func rowSlugs(rows []VisibleNode) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Slug
	}
	return out
}

func TestNewExpansionStateCollapsed(t *testing.T) {
	idx := mustBuild(t, testutil.TenNodes())
	s := NewExpansionState()

	rows := VisibleNodes(idx, s, Filter("", idx))
	if got := rowSlugs(rows); len(got) != 2 || got[0] != "nlp" || got[1] != "cv" {
		t.Errorf("expected only roots [nlp cv], got %v", got)
	}

	var zero ExpansionState
	if zero.IsExpanded("nlp") {
		t.Error("zero value should report collapsed")
	}
	if err := zero.Toggle(idx, "nlp"); err != nil || !zero.IsExpanded("nlp") {
		t.Errorf("zero value should be usable, err=%v", err)
	}
}

func TestToggleUnknownSlug(t *testing.T) {
	idx := mustBuild(t, testutil.Sample())
	s := NewExpansionState()

	err := s.Toggle(idx, "ghost")
	var nf *model.NotFoundError
	if !errors.As(err, &nf) || nf.Slug != "ghost" {
		t.Fatalf("expected NotFoundError for ghost, got %v", err)
	}
	if len(s.Snapshot()) != 0 {
		t.Error("failed toggle must not change state")
	}
	if err := s.SetExpanded(idx, "ghost", true); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound from SetExpanded, got %v", err)
	}
}

func TestToggleIsInvolution(t *testing.T) {
	idx := mustBuild(t, testutil.TenNodes())
	s := NewExpansionState()
	_ = s.Toggle(idx, "cv")
	before := s.Snapshot()

	for _, slug := range []string{"cv", "nlp", "cv-det-face"} {
		_ = s.Toggle(idx, slug)
		_ = s.Toggle(idx, slug)
		if !maps.Equal(before, s.Snapshot()) {
			t.Errorf("toggle(%s) twice changed state: %v -> %v", slug, before, s.Snapshot())
		}
	}
}

func TestCollapseKeepsDescendantFlags(t *testing.T) {
	idx := mustBuild(t, deepSample())
	s := NewExpansionState()

	// D manually expanded, B collapsed, A expanded.
	_ = s.SetExpanded(idx, "a", true)
	_ = s.SetExpanded(idx, "d", true)

	rows := VisibleNodes(idx, s, Filter("", idx))
	if got := rowSlugs(rows); len(got) != 3 {
		t.Fatalf("expected [a b c] with b collapsed, got %v", got)
	}

	if err := s.Toggle(idx, "b"); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	rows = VisibleNodes(idx, s, Filter("", idx))
	want := []string{"a", "b", "d", "e", "c"}
	if got := rowSlugs(rows); !equalStrings(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for _, r := range rows {
		if r.Slug == "d" && !r.IsExpanded {
			t.Error("expected d to come back expanded, not reset")
		}
	}

	// Collapsing b again hides d and e but leaves d's flag alone.
	_ = s.Toggle(idx, "b")
	if !s.IsExpanded("d") {
		t.Error("collapsing an ancestor must not clear descendant flags")
	}
}

func TestExpandAllCollapseAllTenNodes(t *testing.T) {
	idx := mustBuild(t, testutil.TenNodes())
	s := NewExpansionState()
	empty := Filter("", idx)

	s.ExpandAll(idx)
	rows := VisibleNodes(idx, s, empty)
	if len(rows) != 10 {
		t.Fatalf("expected 10 rows after ExpandAll, got %d", len(rows))
	}
	for _, r := range rows {
		if !r.IsExpanded {
			t.Errorf("expected %s expanded", r.Slug)
		}
	}

	s.CollapseAll(idx)
	rows = VisibleNodes(idx, s, empty)
	if got := rowSlugs(rows); !equalStrings(got, []string{"nlp", "cv"}) {
		t.Errorf("expected only roots after CollapseAll, got %v", got)
	}
	for n := range idx.All() {
		if s.IsExpanded(n.Slug) {
			t.Errorf("expected %s collapsed", n.Slug)
		}
	}
}

func TestExpandAllCollapseAllIdempotent(t *testing.T) {
	idx := mustBuild(t, testutil.NewDefault().Random())
	s := NewExpansionState()

	s.ExpandAll(idx)
	once := s.Snapshot()
	s.ExpandAll(idx)
	if !maps.Equal(once, s.Snapshot()) {
		t.Error("ExpandAll is not idempotent")
	}

	s.CollapseAll(idx)
	once = s.Snapshot()
	s.CollapseAll(idx)
	if !maps.Equal(once, s.Snapshot()) {
		t.Error("CollapseAll is not idempotent")
	}
	if len(once) != 0 {
		t.Errorf("expected no expanded flags after CollapseAll, got %v", once)
	}
}

func TestExpandToLevel(t *testing.T) {
	idx := mustBuild(t, testutil.TenNodes())
	s := NewExpansionState()

	s.ExpandToLevel(idx, 2)
	rows := VisibleNodes(idx, s, Filter("", idx))
	want := []string{"nlp", "nlp-gen", "nlp-tr", "cv", "cv-det", "cv-seg", "cv-ocr"}
	if got := rowSlugs(rows); !equalStrings(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	s.ExpandToLevel(idx, 1)
	if got := rowSlugs(VisibleNodes(idx, s, Filter("", idx))); !equalStrings(got, []string{"nlp", "cv"}) {
		t.Errorf("expected roots only at level 1, got %v", got)
	}
}

func TestHasCollapsed(t *testing.T) {
	idx := mustBuild(t, testutil.Sample())
	s := NewExpansionState()
	if !s.HasCollapsed(idx) {
		t.Error("fresh state has collapsed parents")
	}
	_ = s.SetExpanded(idx, "a", true)
	_ = s.SetExpanded(idx, "b", true)
	if s.HasCollapsed(idx) {
		t.Error("leaves do not count as collapsed")
	}
}

func TestClearingQueryRestoresManualState(t *testing.T) {
	idx := mustBuild(t, testutil.TenNodes())
	s := NewExpansionState()
	_ = s.Toggle(idx, "cv")

	before := s.Snapshot()
	rowsBefore := VisibleNodes(idx, s, Filter("", idx))

	active := Filter("summarization", idx)
	rows := VisibleNodes(idx, s, active)
	if got := rowSlugs(rows); !equalStrings(got, []string{"nlp", "nlp-gen", "nlp-gen-sum"}) {
		t.Fatalf("expected forced path to summarization, got %v", got)
	}
	if !s.Effective("nlp-gen", active) || s.IsExpanded("nlp-gen") {
		t.Error("forced expansion must be effective but not stored")
	}

	after := VisibleNodes(idx, s, Filter("", idx))
	if !maps.Equal(before, s.Snapshot()) {
		t.Errorf("manual flags changed: %v -> %v", before, s.Snapshot())
	}
	if !equalRows(rowsBefore, after) {
		t.Errorf("rows differ after clearing query:\n%v\n%v", rowsBefore, after)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalRows(a, b []VisibleNode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRestoreDropsUnknownSlugs(t *testing.T) {
	idx := mustBuild(t, testutil.TenNodes())
	s := NewExpansionState()
	_ = s.Toggle(idx, "nlp-tr")

	dropped := s.Restore(idx, []string{"cv", "retired", "cv-det", "gone"})
	if dropped != 2 {
		t.Errorf("expected 2 dropped slugs, got %d", dropped)
	}
	if s.IsExpanded("nlp-tr") {
		t.Error("Restore should replace the previous flags")
	}
	if got := s.Expanded(idx); !equalStrings(got, []string{"cv", "cv-det"}) {
		t.Errorf("expected [cv cv-det], got %v", got)
	}

	var fresh ExpansionState
	fresh.Restore(idx, s.Expanded(idx))
	if !maps.Equal(fresh.Snapshot(), s.Snapshot()) {
		t.Error("round trip through Expanded/Restore should preserve flags")
	}
}
