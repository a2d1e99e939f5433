package main

import (
	"fmt"
	"io"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/oasftree/pkg/analysis"
	"github.com/vanderheijden86/oasftree/pkg/model"
	"github.com/vanderheijden86/oasftree/pkg/taxonomy"
	"github.com/vanderheijden86/oasftree/pkg/version"
)

// robotEnvelope carries the fields shared by every robot payload.
type robotEnvelope struct {
	GeneratedAt string `json:"generated_at"`
	Version     string `json:"version"`
}

func newEnvelope() robotEnvelope {
	return robotEnvelope{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Version:     version.Version,
	}
}

type robotTreeOutput struct {
	robotEnvelope
	Summary taxonomy.Summary       `json:"summary"`
	Nodes   []taxonomy.VisibleNode `json:"nodes"`
}

type robotSelectOutput struct {
	robotEnvelope
	Type        model.TaxonomyType  `json:"type"`
	Selected    model.CategoryRef   `json:"selected"`
	Description string              `json:"description,omitempty"`
	Depth       int                 `json:"depth"`
	Path        []model.CategoryRef `json:"path"`
	Children    []model.CategoryRef `json:"children"`
}

type robotStatsOutput struct {
	robotEnvelope
	Taxonomies []analysis.Stats `json:"taxonomies"`
}

// buildTreeOutput runs the same browsing pipeline as the TUI: optional full
// expansion, then the query.
func buildTreeOutput(b *taxonomy.Browser, query string, expandAll bool) robotTreeOutput {
	if expandAll {
		b.ExpandAll()
	}
	b.SetQuery(query)
	nodes := b.Nodes()
	if nodes == nil {
		nodes = []taxonomy.VisibleNode{}
	}
	return robotTreeOutput{
		robotEnvelope: newEnvelope(),
		Summary:       b.Summary(),
		Nodes:         nodes,
	}
}

// buildSelectOutput selects slug through the browser so the OnSelect hook
// fires exactly as it does for an interactive pick.
func buildSelectOutput(b *taxonomy.Browser, slug string) (robotSelectOutput, error) {
	cat, err := b.Select(slug)
	if err != nil {
		return robotSelectOutput{}, err
	}
	idx := b.Index()
	n, _ := idx.Node(cat.Slug)

	ancestors, err := idx.Ancestors(cat.Slug)
	if err != nil {
		return robotSelectOutput{}, err
	}
	path := make([]model.CategoryRef, 0, len(ancestors)+1)
	for _, a := range ancestors {
		an, _ := idx.Node(a)
		path = append(path, model.CategoryRef{Slug: an.Slug, Name: an.Name})
	}
	path = append(path, cat.Ref())

	children := make([]model.CategoryRef, 0, len(cat.Children))
	for _, c := range cat.Children {
		children = append(children, c.Ref())
	}

	return robotSelectOutput{
		robotEnvelope: newEnvelope(),
		Type:          b.Type(),
		Selected:      cat.Ref(),
		Description:   cat.Description,
		Depth:         n.Depth,
		Path:          path,
		Children:      children,
	}, nil
}

func buildStatsOutput(c *taxonomy.Catalog) (robotStatsOutput, error) {
	out := robotStatsOutput{robotEnvelope: newEnvelope()}
	for _, typ := range model.AllTypes {
		idx, err := c.Index(typ)
		if err != nil {
			return robotStatsOutput{}, fmt.Errorf("building %s index: %w", typ, err)
		}
		out.Taxonomies = append(out.Taxonomies, analysis.Compute(idx))
	}
	return out, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
