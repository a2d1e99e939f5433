// Package taxonomy is the browsing core for OASF category forests: a flat
// index over each forest, query filtering with ancestor closure, manual
// expansion state and category selection.
//
// Everything here is synchronous and single-threaded. A TreeIndex is
// immutable once built; ExpansionState is the only mutable piece and is
// owned by the caller.
package taxonomy

import (
	"fmt"
	"iter"
	"slices"
	"time"

	"golang.org/x/text/cases"

	"github.com/vanderheijden86/oasftree/pkg/debug"
	"github.com/vanderheijden86/oasftree/pkg/metrics"
	"github.com/vanderheijden86/oasftree/pkg/model"
)

// Node is the flattened view of one category.
// ChildSlugs is shared with the index and must not be modified.
type Node struct {
	Slug        string
	Name        string
	Description string
	Depth       int    // 0 for roots
	ParentSlug  string // empty for roots
	ChildSlugs  []string
	Ordinal     int // position in depth-first declaration order
}

// HasChildren reports whether the node has at least one child.
func (n Node) HasChildren() bool { return len(n.ChildSlugs) > 0 }

// IsRoot reports whether the node is a forest root.
func (n Node) IsRoot() bool { return n.ParentSlug == "" }

type entry struct {
	Node
	parent   *entry
	children []*entry
	cat      *model.Category

	// Case-folded name and slug, matched against the folded query.
	foldedName string
	foldedSlug string
}

// TreeIndex is a read-only slug lookup over one taxonomy forest.
type TreeIndex struct {
	typ    model.TaxonomyType
	roots  []*entry
	order  []*entry // depth-first declaration order; order[i].Ordinal == i
	bySlug map[string]*entry
}

// Build flattens forest into a TreeIndex. A slug that appears twice anywhere
// in the forest fails with *model.DuplicateSlugError.
func Build(typ model.TaxonomyType, forest model.Forest) (*TreeIndex, error) {
	defer metrics.TimerWithCallback(metrics.IndexBuild, func(d time.Duration) {
		debug.LogTiming("taxonomy.Build("+string(typ)+")", d)
	})()

	idx := &TreeIndex{
		typ:    typ,
		bySlug: make(map[string]*entry, forest.Count()),
	}
	fold := cases.Fold()
	for i := range forest {
		root, err := idx.add(&forest[i], nil, fold)
		if err != nil {
			return nil, err
		}
		idx.roots = append(idx.roots, root)
	}

	debug.Log("indexed %d %s categories (%d roots)", len(idx.order), typ, len(idx.roots))
	return idx, nil
}

func (idx *TreeIndex) add(c *model.Category, parent *entry, fold cases.Caser) (*entry, error) {
	if c.Slug == "" {
		where := "root level"
		if parent != nil {
			where = fmt.Sprintf("under %q", parent.Slug)
		}
		return nil, fmt.Errorf("%s taxonomy: category %q at %s: %w", idx.typ, c.Name, where, model.ErrEmptySlug)
	}
	if _, dup := idx.bySlug[c.Slug]; dup {
		return nil, &model.DuplicateSlugError{Type: idx.typ, Slug: c.Slug}
	}

	e := &entry{
		Node: Node{
			Slug:        c.Slug,
			Name:        c.Name,
			Description: c.Description,
			Ordinal:     len(idx.order),
		},
		parent:     parent,
		cat:        c,
		foldedName: fold.String(c.Name),
		foldedSlug: fold.String(c.Slug),
	}
	if parent != nil {
		e.Depth = parent.Depth + 1
		e.ParentSlug = parent.Slug
	}
	idx.bySlug[c.Slug] = e
	idx.order = append(idx.order, e)

	for i := range c.Children {
		child, err := idx.add(&c.Children[i], e, fold)
		if err != nil {
			return nil, err
		}
		e.children = append(e.children, child)
		e.ChildSlugs = append(e.ChildSlugs, child.Slug)
	}
	return e, nil
}

// Type returns the taxonomy type the index was built for.
func (idx *TreeIndex) Type() model.TaxonomyType { return idx.typ }

// CountAll returns the total number of categories in the forest.
func (idx *TreeIndex) CountAll() int { return len(idx.order) }

// Roots returns the root slugs in declaration order.
func (idx *TreeIndex) Roots() []string {
	out := make([]string, len(idx.roots))
	for i, r := range idx.roots {
		out[i] = r.Slug
	}
	return out
}

// Has reports whether slug is indexed.
func (idx *TreeIndex) Has(slug string) bool {
	_, ok := idx.bySlug[slug]
	return ok
}

// Node returns the flattened node for slug.
func (idx *TreeIndex) Node(slug string) (Node, bool) {
	e, ok := idx.bySlug[slug]
	if !ok {
		return Node{}, false
	}
	return e.Node, true
}

// Category returns a deep copy of the category record for slug, children
// included. Changing it affects neither the index nor the source forest.
func (idx *TreeIndex) Category(slug string) (model.Category, error) {
	e, err := idx.lookup(slug)
	if err != nil {
		return model.Category{}, err
	}
	return e.cat.Clone(), nil
}

// Ancestors returns the slugs from the forest root down to slug's parent.
// The result is empty for a root.
func (idx *TreeIndex) Ancestors(slug string) ([]string, error) {
	e, err := idx.lookup(slug)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, e.Depth)
	for p := e.parent; p != nil; p = p.parent {
		out = append(out, p.Slug)
	}
	slices.Reverse(out)
	return out, nil
}

// Descendants returns a lazy depth-first pre-order sequence of the slugs
// below slug. The sequence is finite and can be ranged over repeatedly.
func (idx *TreeIndex) Descendants(slug string) (iter.Seq[string], error) {
	e, err := idx.lookup(slug)
	if err != nil {
		return nil, err
	}
	return func(yield func(string) bool) {
		stack := make([]*entry, 0, len(e.children))
		for i := len(e.children) - 1; i >= 0; i-- {
			stack = append(stack, e.children[i])
		}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(n.Slug) {
				return
			}
			for i := len(n.children) - 1; i >= 0; i-- {
				stack = append(stack, n.children[i])
			}
		}
	}, nil
}

// All yields every node in declaration order.
func (idx *TreeIndex) All() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, e := range idx.order {
			if !yield(e.Node) {
				return
			}
		}
	}
}

func (idx *TreeIndex) lookup(slug string) (*entry, error) {
	e, ok := idx.bySlug[slug]
	if !ok {
		return nil, &model.NotFoundError{Type: idx.typ, Slug: slug}
	}
	return e, nil
}
