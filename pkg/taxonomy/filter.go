package taxonomy

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/vanderheijden86/oasftree/pkg/metrics"
)

// FilterOptions tunes matching. The zero value matches on names only.
type FilterOptions struct {
	// MatchSlug also tests the query against each category's slug.
	MatchSlug bool
}

// FilterResult is the outcome of one Filter call. It is never modified after
// Filter returns; a later call produces a new result.
type FilterResult struct {
	// MatchCount is the number of matched categories.
	MatchCount int
	// TotalCount is the number of categories in the index.
	TotalCount int

	query        string
	idx          *TreeIndex
	matched      map[string]bool
	forced       map[string]bool // ancestors of at least one match
	matchedOrder []string
	visibleCount int
}

// Filter runs a case-insensitive substring match of the trimmed query against
// every category name in idx. Case is compared after Unicode case folding, so
// "ΟΔΟΣ" and "οδος" match each other.
func Filter(query string, idx *TreeIndex) FilterResult {
	return FilterWith(query, idx, FilterOptions{})
}

// FilterWith is Filter with explicit options.
//
// An empty query matches everything and forces nothing. Otherwise the visible
// set is the matches plus the ancestor closure of every match, so the path
// from each root to each hit can always be shown. The pass is linear in the
// number of categories: the ancestor walk stops at the first ancestor that
// an earlier match already marked.
func FilterWith(query string, idx *TreeIndex, opts FilterOptions) FilterResult {
	defer metrics.Timer(metrics.FilterRun)()

	q := strings.TrimSpace(query)
	r := FilterResult{
		query:      q,
		idx:        idx,
		TotalCount: idx.CountAll(),
	}
	if q == "" {
		r.MatchCount = r.TotalCount
		r.visibleCount = r.TotalCount
		return r
	}

	needle := cases.Fold().String(q)
	r.matched = make(map[string]bool)
	r.forced = make(map[string]bool)

	for _, e := range idx.order {
		if !strings.Contains(e.foldedName, needle) &&
			!(opts.MatchSlug && strings.Contains(e.foldedSlug, needle)) {
			continue
		}
		r.matched[e.Slug] = true
		r.matchedOrder = append(r.matchedOrder, e.Slug)
		for p := e.parent; p != nil && !r.forced[p.Slug]; p = p.parent {
			r.forced[p.Slug] = true
		}
	}

	r.MatchCount = len(r.matched)
	r.visibleCount = r.MatchCount
	for slug := range r.forced {
		if !r.matched[slug] {
			r.visibleCount++
		}
	}
	return r
}

// Query returns the trimmed query the result was computed for.
func (r FilterResult) Query() string { return r.query }

// Active reports whether a non-empty query is in effect.
func (r FilterResult) Active() bool { return r.query != "" }

// NoResults reports a non-empty query that matched nothing.
func (r FilterResult) NoResults() bool { return r.Active() && r.MatchCount == 0 }

// VisibleCount is the size of the visible set (matches plus ancestors).
func (r FilterResult) VisibleCount() int { return r.visibleCount }

// IsMatched reports whether slug matched the query.
func (r FilterResult) IsMatched(slug string) bool {
	if !r.Active() {
		return r.idx != nil && r.idx.Has(slug)
	}
	return r.matched[slug]
}

// IsVisible reports whether slug is a match or an ancestor of one.
func (r FilterResult) IsVisible(slug string) bool {
	if !r.Active() {
		return r.idx != nil && r.idx.Has(slug)
	}
	return r.matched[slug] || r.forced[slug]
}

// IsForced reports whether slug must be shown expanded because it lies on the
// path to a match. Always false without an active query.
func (r FilterResult) IsForced(slug string) bool {
	return r.Active() && r.forced[slug]
}

// IsContext reports whether slug is visible only as an ancestor of a match.
func (r FilterResult) IsContext(slug string) bool {
	return r.Active() && r.forced[slug] && !r.matched[slug]
}

// MatchedSlugs returns the matched slugs in declaration order.
func (r FilterResult) MatchedSlugs() []string {
	if !r.Active() {
		return r.allSlugs()
	}
	out := make([]string, len(r.matchedOrder))
	copy(out, r.matchedOrder)
	return out
}

// VisibleSlugs returns the visible slugs in declaration order.
func (r FilterResult) VisibleSlugs() []string {
	if !r.Active() {
		return r.allSlugs()
	}
	out := make([]string, 0, r.visibleCount)
	for _, e := range r.idx.order {
		if r.matched[e.Slug] || r.forced[e.Slug] {
			out = append(out, e.Slug)
		}
	}
	return out
}

func (r FilterResult) allSlugs() []string {
	if r.idx == nil {
		return nil
	}
	out := make([]string, len(r.idx.order))
	for i, e := range r.idx.order {
		out[i] = e.Slug
	}
	return out
}
