package taxonomy

import (
	"errors"
	"testing"

	"github.com/vanderheijden86/oasftree/pkg/model"
	"github.com/vanderheijden86/oasftree/pkg/testutil"
)

func newTestBrowser(t *testing.T, opts BrowserOptions) *Browser {
	t.Helper()
	c := NewCatalog(model.Dataset{
		model.TypeSkill:  testutil.TenNodes(),
		model.TypeDomain: testutil.Sample(),
	})
	b, err := NewBrowser(c, model.TypeSkill, opts)
	if err != nil {
		t.Fatalf("NewBrowser: %v", err)
	}
	return b
}

func TestCatalogInvalidType(t *testing.T) {
	c := NewCatalog(model.Dataset{})
	_, err := c.Index(model.TaxonomyType("feature"))
	var it *model.InvalidTypeError
	if !errors.As(err, &it) || it.Type != "feature" {
		t.Fatalf("expected InvalidTypeError, got %v", err)
	}
	if !errors.Is(err, model.ErrInvalidType) {
		t.Error("expected errors.Is ErrInvalidType")
	}

	if _, err := NewBrowser(c, "", BrowserOptions{}); !errors.Is(err, model.ErrInvalidType) {
		t.Errorf("expected ErrInvalidType from NewBrowser, got %v", err)
	}
}

func TestCatalogCachesIndex(t *testing.T) {
	c := NewCatalog(model.Dataset{model.TypeSkill: testutil.Sample()})
	a, err := c.Index(model.TypeSkill)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	b, _ := c.Index(model.TypeSkill)
	if a != b {
		t.Error("expected the same index on second request")
	}

	empty, err := c.Index(model.TypeDomain)
	if err != nil {
		t.Fatalf("Index(domain): %v", err)
	}
	if empty.CountAll() != 0 {
		t.Errorf("expected empty domain index, got %d", empty.CountAll())
	}
}

func TestCatalogPropagatesBuildError(t *testing.T) {
	dup := model.Forest{{Slug: "x", Name: "X"}, {Slug: "x", Name: "X again"}}
	c := NewCatalog(model.Dataset{model.TypeSkill: dup})
	if _, err := c.Index(model.TypeSkill); !errors.Is(err, model.ErrDuplicateSlug) {
		t.Errorf("expected ErrDuplicateSlug, got %v", err)
	}
}

func TestBrowserTypesAreIndependent(t *testing.T) {
	b := newTestBrowser(t, BrowserOptions{})

	b.SetQuery("vision")
	_ = b.Toggle("nlp")

	if err := b.SetType(model.TypeDomain); err != nil {
		t.Fatalf("SetType: %v", err)
	}
	if b.Query() != "" {
		t.Errorf("expected empty domain query, got %q", b.Query())
	}
	if len(b.Session().State.Snapshot()) != 0 {
		t.Error("domain state should start collapsed")
	}
	if err := b.Toggle("nlp"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("skill slug should not resolve in domain, got %v", err)
	}

	_ = b.SetType(model.TypeSkill)
	if b.Query() != "vision" {
		t.Errorf("expected skill query to survive a switch, got %q", b.Query())
	}
	if !b.Session().State.IsExpanded("nlp") {
		t.Error("expected skill flags to survive a switch")
	}
}

func TestBrowserSetTypeInvalidKeepsActive(t *testing.T) {
	b := newTestBrowser(t, BrowserOptions{})
	if err := b.SetType("bogus"); err == nil {
		t.Fatal("expected error")
	}
	if b.Type() != model.TypeSkill {
		t.Errorf("expected active type to stay skill, got %s", b.Type())
	}
}

func TestBrowserExpandDepth(t *testing.T) {
	b := newTestBrowser(t, BrowserOptions{ExpandDepth: 2})
	if got := len(b.Nodes()); got != 7 {
		t.Errorf("expected 7 rows at depth 2, got %d", got)
	}
}

func TestBrowserToggleExpandCollapseAll(t *testing.T) {
	b := newTestBrowser(t, BrowserOptions{})

	b.ToggleExpandCollapseAll()
	if got := len(b.Nodes()); got != 10 {
		t.Fatalf("expected all 10 rows, got %d", got)
	}
	b.ToggleExpandCollapseAll()
	if got := len(b.Nodes()); got != 2 {
		t.Errorf("expected 2 roots, got %d", got)
	}
}

func TestBrowserMatchSlugOption(t *testing.T) {
	b := newTestBrowser(t, BrowserOptions{Filter: FilterOptions{MatchSlug: true}})
	b.SetQuery("cv-seg")
	if got := b.Result().MatchedSlugs(); !equalStrings(got, []string{"cv-seg"}) {
		t.Errorf("expected [cv-seg], got %v", got)
	}
}

func TestVisibleNodesFlags(t *testing.T) {
	b := newTestBrowser(t, BrowserOptions{})
	b.SetQuery("face")

	rows := b.Nodes()
	want := []VisibleNode{
		{Slug: "cv", Name: "Computer Vision", Depth: 0, IsExpanded: true, HasChildren: true, IsContext: true},
		{Slug: "cv-det", Name: "Object Detection", Depth: 1, IsExpanded: true, HasChildren: true, IsContext: true},
		{Slug: "cv-det-face", Name: "Face Detection", Depth: 2, IsMatched: true},
	}
	if !equalRows(rows, want) {
		t.Errorf("expected\n%+v\ngot\n%+v", want, rows)
	}
}

func TestVisibleNodesNoQueryMarksNothingMatched(t *testing.T) {
	b := newTestBrowser(t, BrowserOptions{})
	b.ExpandAll()
	for _, r := range b.Nodes() {
		if r.IsMatched || r.IsContext {
			t.Errorf("row %s should not be highlighted without a query", r.Slug)
		}
	}
}

func TestVisibleNodesManualFlagUnderForcedPath(t *testing.T) {
	b := newTestBrowser(t, BrowserOptions{})
	// Children of a manually expanded match stay hidden unless they match.
	_ = b.SetExpanded("nlp-gen", true)
	b.SetQuery("generation")

	got := make([]string, 0)
	for _, r := range b.Nodes() {
		got = append(got, r.Slug)
	}
	want := []string{"nlp", "nlp-gen"}
	if !equalStrings(got, want) {
		t.Errorf("expected %v (non-matching children stay hidden), got %v", want, got)
	}
}

func TestSummary(t *testing.T) {
	b := newTestBrowser(t, BrowserOptions{})

	s := b.Summary()
	if s.String() != "10 categories" {
		t.Errorf("expected \"10 categories\", got %q", s.String())
	}
	if s.Type != "skill" || s.Visible != 2 || s.NoResults {
		t.Errorf("unexpected summary %+v", s)
	}

	b.SetQuery("tion")
	s = b.Summary()
	if s.String() != "7 of 10 categories" {
		t.Errorf("expected \"7 of 10 categories\", got %q", s.String())
	}

	b.SetQuery("zzznomatch")
	s = b.Summary()
	if !s.NoResults || s.Visible != 0 || s.Matched != 0 {
		t.Errorf("expected empty no-results summary, got %+v", s)
	}
}
