package taxonomy

import (
	"fmt"

	"github.com/vanderheijden86/oasftree/pkg/metrics"
)

// VisibleNode is one row of the rendered tree.
type VisibleNode struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Depth       int    `json:"depth"`
	IsExpanded  bool   `json:"is_expanded"`
	HasChildren bool   `json:"has_children"`
	IsMatched   bool   `json:"is_matched"`
	// IsContext marks an ancestor shown only to reach a match.
	IsContext bool `json:"is_context,omitempty"`
}

// VisibleNodes lists the rows to render, in declaration order. A category is
// listed when the filter result makes it visible and every ancestor is
// effectively expanded (manual flag OR forced by the query).
func VisibleNodes(idx *TreeIndex, state *ExpansionState, r FilterResult) []VisibleNode {
	defer metrics.Timer(metrics.Projection)()

	out := make([]VisibleNode, 0, min(r.VisibleCount(), 64))
	var walk func(e *entry)
	walk = func(e *entry) {
		if !r.IsVisible(e.Slug) {
			return
		}
		expanded := state.Effective(e.Slug, r)
		out = append(out, VisibleNode{
			Slug:        e.Slug,
			Name:        e.Name,
			Depth:       e.Depth,
			IsExpanded:  expanded,
			HasChildren: len(e.children) > 0,
			IsMatched:   r.Active() && r.IsMatched(e.Slug),
			IsContext:   r.IsContext(e.Slug),
		})
		if !expanded {
			return
		}
		for _, c := range e.children {
			walk(c)
		}
	}
	for _, root := range idx.roots {
		walk(root)
	}
	return out
}

// Summary carries the counters shown next to the tree.
type Summary struct {
	Type      string `json:"type"`
	Query     string `json:"query,omitempty"`
	Total     int    `json:"total"`
	Matched   int    `json:"matched"`
	Visible   int    `json:"visible"`
	NoResults bool   `json:"no_results"`
}

// Summarize builds the counters for a filter result and the rows it produced.
func Summarize(idx *TreeIndex, r FilterResult, nodes []VisibleNode) Summary {
	return Summary{
		Type:      string(idx.Type()),
		Query:     r.Query(),
		Total:     r.TotalCount,
		Matched:   r.MatchCount,
		Visible:   len(nodes),
		NoResults: r.NoResults(),
	}
}

// String renders "12 of 340 categories" with a query, "340 categories" without.
func (s Summary) String() string {
	if s.Query == "" {
		return fmt.Sprintf("%d categories", s.Total)
	}
	return fmt.Sprintf("%d of %d categories", s.Matched, s.Total)
}
