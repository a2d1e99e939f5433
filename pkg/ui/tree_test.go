package ui

import (
	"slices"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/vanderheijden86/oasftree/pkg/model"
	"github.com/vanderheijden86/oasftree/pkg/taxonomy"
	"github.com/vanderheijden86/oasftree/pkg/testutil"
)

func newTestTree(t *testing.T) (TreeModel, *taxonomy.Browser) {
	t.Helper()
	b, err := taxonomy.NewBrowser(taxonomy.NewCatalog(testDataset()), model.TypeSkill, taxonomy.BrowserOptions{})
	if err != nil {
		t.Fatal(err)
	}
	return NewTreeModel(b, TestTheme()), b
}

func TestBuildGuides(t *testing.T) {
	tree, _ := newTestTree(t)
	tree.ExpandAll()

	want := []string{
		"",         // nlp
		"├── ",     // nlp-gen
		"│   ├── ", // nlp-gen-sum
		"│   └── ", // nlp-gen-dialog
		"└── ",     // nlp-tr
		"",         // cv
		"├── ",     // cv-det
		"│   └── ", // cv-det-face
		"├── ",     // cv-seg
		"└── ",     // cv-ocr
	}
	if !slices.Equal(tree.guides, want) {
		t.Errorf("guides mismatch:\n got %q\nwant %q", tree.guides, want)
	}
}

func TestBuildGuidesFiltered(t *testing.T) {
	tree, b := newTestTree(t)
	b.SetQuery("detection")
	tree.Refresh()

	// cv, cv-det, cv-det-face: the matched path has no siblings left.
	want := []string{"", "└── ", "    └── "}
	if !slices.Equal(tree.guides, want) {
		t.Errorf("got %q, want %q", tree.guides, want)
	}
}

func TestRefreshKeepsCursorOnSlug(t *testing.T) {
	tree, b := newTestTree(t)
	tree.ExpandAll()
	if !tree.SelectBySlug("cv-seg") {
		t.Fatal("cv-seg should be visible")
	}

	b.SetQuery("seg")
	tree.Refresh()
	if row, _ := tree.SelectedNode(); row.Slug != "cv-seg" {
		t.Errorf("expected cursor to stay on cv-seg, got %s", row.Slug)
	}

	b.SetQuery("face")
	tree.Refresh()
	if row, _ := tree.SelectedNode(); row.Slug != "cv" {
		t.Errorf("expected cursor on visible ancestor cv, got %s", row.Slug)
	}
}

func TestJumpToParentAndPaging(t *testing.T) {
	tree, _ := newTestTree(t)
	tree.ExpandAll()
	tree.SetSize(80, 6)

	tree.SelectBySlug("cv-det-face")
	tree.JumpToParent()
	if row, _ := tree.SelectedNode(); row.Slug != "cv-det" {
		t.Errorf("expected cv-det, got %s", row.Slug)
	}

	tree.JumpToTop()
	tree.PageDown()
	if tree.Cursor() != 3 {
		t.Errorf("expected half page of 3, got %d", tree.Cursor())
	}
	tree.JumpToBottom()
	start, end := tree.visibleRange()
	if end != 10 || start != 10-tree.effectiveVisibleCount() {
		t.Errorf("unexpected window [%d,%d)", start, end)
	}
	tree.PageUp()
	if tree.Cursor() != 6 {
		t.Errorf("expected 6 after page up, got %d", tree.Cursor())
	}
}

func TestCollapseHeldOpenByQueryJumpsToParent(t *testing.T) {
	tree, b := newTestTree(t)
	b.SetQuery("face")
	tree.Refresh()

	tree.SelectBySlug("cv-det")
	if err := tree.CollapseOrJumpToParent(); err != nil {
		t.Fatal(err)
	}
	if row, _ := tree.SelectedNode(); row.Slug != "cv" {
		t.Errorf("expected jump to cv, got %s", row.Slug)
	}
	if len(tree.Rows()) != 3 {
		t.Errorf("forced path should stay visible, got %d rows", len(tree.Rows()))
	}
}

func TestEmptyTaxonomyView(t *testing.T) {
	b, err := taxonomy.NewBrowser(taxonomy.NewCatalog(model.Dataset{}), model.TypeDomain, taxonomy.BrowserOptions{})
	if err != nil {
		t.Fatal(err)
	}
	tree := NewTreeModel(b, TestTheme())
	if out := tree.View(); !containsAll(out, "Empty taxonomy", "No domains are loaded.") {
		t.Errorf("unexpected empty view %q", out)
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

func TestTruncate_UTF8Safe(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{name: "zero max", input: "hello", max: 0, want: ""},
		{name: "fits", input: "hello", max: 10, want: "hello"},
		{name: "ellipsis", input: "Optical Character Recognition", max: 10, want: "Optical C…"},
		{name: "wide runes", input: "日本語テキスト", max: 5, want: "日本…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.max)
			if got != tt.want {
				t.Fatalf("truncate(%q, %d) = %q; want %q", tt.input, tt.max, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Fatalf("output is not valid UTF-8: %q", got)
			}
		})
	}
}

func TestGeneratedForestRenders(t *testing.T) {
	forest := testutil.New(testutil.GeneratorConfig{Seed: 7, Roots: 4, MaxDepth: 4}).Random()
	b, err := taxonomy.NewBrowser(taxonomy.NewCatalog(model.Dataset{model.TypeSkill: forest}), model.TypeSkill, taxonomy.BrowserOptions{})
	if err != nil {
		t.Fatal(err)
	}
	tree := NewTreeModel(b, TestTheme())
	tree.SetSize(100, 20)
	tree.ExpandAll()
	if len(tree.guides) != len(tree.Rows()) {
		t.Fatalf("guides and rows out of step: %d vs %d", len(tree.guides), len(tree.Rows()))
	}
	if tree.View() == "" {
		t.Error("expected output")
	}
}
