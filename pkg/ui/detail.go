package ui

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/oasftree/pkg/model"
	"github.com/vanderheijden86/oasftree/pkg/taxonomy"
)

// categoryPath returns the names from the root down to slug, e.g.
// ["Natural Language Processing", "Text Generation"].
func categoryPath(idx *taxonomy.TreeIndex, slug string) []string {
	ancestors, err := idx.Ancestors(slug)
	if err != nil {
		return nil
	}
	path := make([]string, 0, len(ancestors)+1)
	for _, a := range append(ancestors, slug) {
		if n, ok := idx.Node(a); ok {
			path = append(path, n.Name)
		}
	}
	return path
}

// categoryMarkdown renders the detail pane for one category.
func categoryMarkdown(idx *taxonomy.TreeIndex, slug string, res taxonomy.FilterResult) string {
	n, ok := idx.Node(slug)
	if !ok {
		return "_No category selected._"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", n.Name)

	sb.WriteString("| Slug | Type | Depth |\n|---|---|---|\n")
	fmt.Fprintf(&sb, "| `%s` | %s | %d |\n\n", n.Slug, idx.Type(), n.Depth)

	if path := categoryPath(idx, slug); len(path) > 1 {
		fmt.Fprintf(&sb, "**Path:** %s\n\n", strings.Join(path, " › "))
	}

	if n.Description != "" {
		sb.WriteString("### Description\n")
		sb.WriteString(n.Description + "\n\n")
	}

	if len(n.ChildSlugs) > 0 {
		fmt.Fprintf(&sb, "### Subcategories (%d)\n", len(n.ChildSlugs))
		for _, c := range n.ChildSlugs {
			child, _ := idx.Node(c)
			mark := ""
			if res.Active() && res.IsMatched(c) {
				mark = " ✓"
			}
			fmt.Fprintf(&sb, "- %s `%s`%s\n", child.Name, c, mark)
		}
		sb.WriteString("\n")
	}

	if res.Active() && res.IsContext(slug) {
		sb.WriteString("_Shown because a subcategory matches the search._\n")
	}
	return sb.String()
}

// selectionMarkdown is the clipboard payload for a category.
func selectionMarkdown(typ model.TaxonomyType, cat model.Category, path []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", cat.Name)
	fmt.Fprintf(&sb, "**Slug:** %s  \n", cat.Slug)
	fmt.Fprintf(&sb, "**Type:** %s  \n", typ)
	if len(path) > 1 {
		fmt.Fprintf(&sb, "**Path:** %s  \n", strings.Join(path, " > "))
	}
	if cat.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", cat.Description)
	}
	return sb.String()
}
