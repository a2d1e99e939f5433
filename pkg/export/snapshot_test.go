package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/oasftree/pkg/model"
	"github.com/vanderheijden86/oasftree/pkg/taxonomy"
	"github.com/vanderheijden86/oasftree/pkg/testutil"
)

func snapshotOptions(t *testing.T, query string) SnapshotOptions {
	t.Helper()
	c := taxonomy.NewCatalog(model.Dataset{model.TypeSkill: testutil.TenNodes()})
	b, err := taxonomy.NewBrowser(c, model.TypeSkill, taxonomy.BrowserOptions{})
	if err != nil {
		t.Fatal(err)
	}
	b.SetQuery(query)
	return SnapshotOptions{Rows: b.Nodes(), Summary: b.Summary()}
}

func TestRenderSVG_Outline(t *testing.T) {
	opts := snapshotOptions(t, "face")
	var buf bytes.Buffer
	if err := renderSVGToWriter(&buf, buildOutline(opts)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"<svg", "Computer Vision", "Object Detection", "Face Detection", "1 of 10 categories", "OASF skill taxonomy"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in SVG output", want)
		}
	}
	if strings.Contains(out, "Segmentation") {
		t.Error("non-matching category should not be drawn")
	}
}

func TestBuildOutline_Indentation(t *testing.T) {
	l := buildOutline(snapshotOptions(t, "face"))
	if len(l.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(l.Rows))
	}
	if !(l.Rows[0].X < l.Rows[1].X && l.Rows[1].X < l.Rows[2].X) {
		t.Errorf("expected increasing indentation, got %v %v %v", l.Rows[0].X, l.Rows[1].X, l.Rows[2].X)
	}
	if l.Width <= 0 || l.Height <= int(headerHeight) {
		t.Errorf("unexpected canvas %dx%d", l.Width, l.Height)
	}
}

func TestSaveSnapshot_Formats(t *testing.T) {
	dir := t.TempDir()

	svgOpts := snapshotOptions(t, "")
	svgOpts.Path = filepath.Join(dir, "outline")
	if err := SaveSnapshot(svgOpts); err != nil {
		t.Fatalf("svg: %v", err)
	}
	if _, err := os.Stat(svgOpts.Path + ".svg"); err != nil {
		t.Errorf("expected .svg extension to be added: %v", err)
	}

	pngOpts := snapshotOptions(t, "tion")
	pngOpts.Path = filepath.Join(dir, "nested", "outline.png")
	if err := SaveSnapshot(pngOpts); err != nil {
		t.Fatalf("png: %v", err)
	}
	data, err := os.ReadFile(pngOpts.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("expected PNG signature")
	}
}

func TestSaveSnapshot_Errors(t *testing.T) {
	if err := SaveSnapshot(SnapshotOptions{Path: "x.svg"}); err == nil {
		t.Error("expected error for empty rows")
	}
	opts := snapshotOptions(t, "")
	opts.Path = filepath.Join(t.TempDir(), "x.gif")
	opts.Format = "gif"
	if err := SaveSnapshot(opts); err == nil {
		t.Error("expected error for unsupported format")
	}
	opts.Path, opts.Format = "", "svg"
	if err := SaveSnapshot(opts); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"Optical Character Recognition", 10, "Optical..."},
		{"abc", 2, "ab"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
