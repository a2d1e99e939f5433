package taxonomy

import (
	"maps"
)

// ExpansionState holds the manual expand/collapse flags of one taxonomy type.
// Only expanded slugs are stored; absence means collapsed. The zero value is
// ready to use.
//
// Only Toggle, SetExpanded, ExpandAll, CollapseAll, ExpandToLevel and
// Restore change the flags. Expansion forced by an active query is computed
// at read time by Effective and never stored, so clearing the query restores
// exactly the manual layout.
type ExpansionState struct {
	expanded map[string]bool
}

// NewExpansionState returns an empty state (everything collapsed).
func NewExpansionState() *ExpansionState {
	return &ExpansionState{expanded: make(map[string]bool)}
}

func (s *ExpansionState) ensure() {
	if s.expanded == nil {
		s.expanded = make(map[string]bool)
	}
}

// Toggle flips the stored flag for slug only. Descendant flags are left
// alone, so collapsing a node hides its subtree and expanding it again
// brings the subtree back exactly as it was.
func (s *ExpansionState) Toggle(idx *TreeIndex, slug string) error {
	if _, err := idx.lookup(slug); err != nil {
		return err
	}
	s.set(slug, !s.expanded[slug])
	return nil
}

// SetExpanded stores an explicit flag for slug.
func (s *ExpansionState) SetExpanded(idx *TreeIndex, slug string, expanded bool) error {
	if _, err := idx.lookup(slug); err != nil {
		return err
	}
	s.set(slug, expanded)
	return nil
}

// ExpandAll marks every category in idx expanded.
func (s *ExpansionState) ExpandAll(idx *TreeIndex) {
	s.setAll(idx, true)
}

// CollapseAll marks every category in idx collapsed. Unlike Toggle this is a
// full reset of the subtree flags.
func (s *ExpansionState) CollapseAll(idx *TreeIndex) {
	s.setAll(idx, false)
}

func (s *ExpansionState) setAll(idx *TreeIndex, expanded bool) {
	for _, e := range idx.order {
		s.set(e.Slug, expanded)
	}
}

func (s *ExpansionState) set(slug string, expanded bool) {
	if !expanded {
		delete(s.expanded, slug)
		return
	}
	s.ensure()
	s.expanded[slug] = true
}

// ExpandToLevel shows categories at depths 0..level-1: nodes shallower than
// level-1 are expanded, everything else is collapsed. Level 1 shows only roots.
func (s *ExpansionState) ExpandToLevel(idx *TreeIndex, level int) {
	for _, e := range idx.order {
		s.set(e.Slug, e.Depth < level-1)
	}
}

// IsExpanded returns the stored manual flag for slug.
func (s *ExpansionState) IsExpanded(slug string) bool {
	return s.expanded[slug]
}

// Effective is the flag used for rendering: the manual flag OR'd with the
// expansion the current query forces on ancestors of its matches.
func (s *ExpansionState) Effective(slug string, r FilterResult) bool {
	return s.expanded[slug] || r.IsForced(slug)
}

// HasCollapsed reports whether any category with children is collapsed.
func (s *ExpansionState) HasCollapsed(idx *TreeIndex) bool {
	for _, e := range idx.order {
		if len(e.children) > 0 && !s.expanded[e.Slug] {
			return true
		}
	}
	return false
}

// Restore replaces the stored flags with the expanded slugs that idx knows
// about and returns how many unknown slugs were dropped. Live reload uses it
// to carry a layout over to a rebuilt index whose forest may have changed.
func (s *ExpansionState) Restore(idx *TreeIndex, expanded []string) int {
	s.expanded = make(map[string]bool, len(expanded))
	dropped := 0
	for _, slug := range expanded {
		if !idx.Has(slug) {
			dropped++
			continue
		}
		s.expanded[slug] = true
	}
	return dropped
}

// Expanded returns the expanded slugs in declaration order.
func (s *ExpansionState) Expanded(idx *TreeIndex) []string {
	var out []string
	for _, e := range idx.order {
		if s.expanded[e.Slug] {
			out = append(out, e.Slug)
		}
	}
	return out
}

// Snapshot returns a copy of the stored flags.
func (s *ExpansionState) Snapshot() map[string]bool {
	out := make(map[string]bool, len(s.expanded))
	maps.Copy(out, s.expanded)
	return out
}

// Clone returns an independent copy of the state.
func (s *ExpansionState) Clone() *ExpansionState {
	return &ExpansionState{expanded: s.Snapshot()}
}
