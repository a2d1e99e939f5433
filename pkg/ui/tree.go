// tree.go - windowed tree pane over the active taxonomy of a Browser
package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/oasftree/pkg/taxonomy"
)

// TreeModel renders the visible rows of the browser's active taxonomy and
// owns the cursor. Expansion and filtering live in the browser; the tree
// re-reads its rows after every change through Refresh.
type TreeModel struct {
	browser *taxonomy.Browser
	theme   Theme

	rows   []taxonomy.VisibleNode
	guides []string // unstyled branch prefix per row

	cursor         int
	viewportOffset int
	width          int
	height         int
}

// NewTreeModel creates a tree pane for b.
func NewTreeModel(b *taxonomy.Browser, theme Theme) TreeModel {
	t := TreeModel{browser: b, theme: theme}
	t.Refresh()
	return t
}

// SetBrowser swaps the browser, e.g. after a dataset reload, keeping the
// cursor on the same slug when it is still visible.
func (t *TreeModel) SetBrowser(b *taxonomy.Browser) {
	path := t.selectedPath()
	t.browser = b
	t.refresh(path)
}

// SetSize sets the pane dimensions.
func (t *TreeModel) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.ensureCursorVisible()
}

// Refresh recomputes the rows. The cursor stays on the selected slug, or
// moves to its closest visible ancestor when the slug is now hidden.
func (t *TreeModel) Refresh() {
	t.refresh(t.selectedPath())
}

// selectedPath returns the slugs from the root down to the selected row.
func (t *TreeModel) selectedPath() []string {
	row, ok := t.SelectedNode()
	if !ok {
		return nil
	}
	ancestors, err := t.browser.Index().Ancestors(row.Slug)
	if err != nil {
		return []string{row.Slug}
	}
	return append(ancestors, row.Slug)
}

func (t *TreeModel) refresh(path []string) {
	t.rows = t.browser.Nodes()
	t.guides = buildGuides(t.rows)

	for _, slug := range slices.Backward(path) {
		if t.SelectBySlug(slug) {
			break
		}
	}
	t.cursor = max(0, min(t.cursor, len(t.rows)-1))
	t.ensureCursorVisible()
}

// buildGuides computes the "│   ├── " prefixes for rows in display order.
// A row is the last of its siblings when no later row at the same depth
// appears before a shallower one.
func buildGuides(rows []taxonomy.VisibleNode) []string {
	isLast := make([]bool, len(rows))
	var seen []bool
	for i := len(rows) - 1; i >= 0; i-- {
		d := rows[i].Depth
		for len(seen) <= d {
			seen = append(seen, false)
		}
		isLast[i] = !seen[d]
		seen[d] = true
		for k := d + 1; k < len(seen); k++ {
			seen[k] = false
		}
	}

	guides := make([]string, len(rows))
	var lastAt []bool
	var sb strings.Builder
	for i, r := range rows {
		for len(lastAt) <= r.Depth {
			lastAt = append(lastAt, false)
		}
		lastAt[r.Depth] = isLast[i]
		if r.Depth == 0 {
			continue
		}
		sb.Reset()
		for k := 1; k < r.Depth; k++ {
			if lastAt[k] {
				sb.WriteString("    ")
			} else {
				sb.WriteString("│   ")
			}
		}
		if isLast[i] {
			sb.WriteString("└── ")
		} else {
			sb.WriteString("├── ")
		}
		guides[i] = sb.String()
	}
	return guides
}

// Rows returns the rows currently displayed.
func (t *TreeModel) Rows() []taxonomy.VisibleNode { return t.rows }

// Cursor returns the index of the selected row.
func (t *TreeModel) Cursor() int { return t.cursor }

// SelectedNode returns the row under the cursor.
func (t *TreeModel) SelectedNode() (taxonomy.VisibleNode, bool) {
	if t.cursor < 0 || t.cursor >= len(t.rows) {
		return taxonomy.VisibleNode{}, false
	}
	return t.rows[t.cursor], true
}

// SelectBySlug moves the cursor to slug. Returns false when slug is not a
// displayed row.
func (t *TreeModel) SelectBySlug(slug string) bool {
	for i, r := range t.rows {
		if r.Slug == slug {
			t.cursor = i
			t.ensureCursorVisible()
			return true
		}
	}
	return false
}

// ── Navigation ───────────────────────────────────────────────────────────────

func (t *TreeModel) MoveDown() {
	if t.cursor < len(t.rows)-1 {
		t.cursor++
		t.ensureCursorVisible()
	}
}

func (t *TreeModel) MoveUp() {
	if t.cursor > 0 {
		t.cursor--
		t.ensureCursorVisible()
	}
}

func (t *TreeModel) JumpToTop() {
	t.cursor = 0
	t.ensureCursorVisible()
}

func (t *TreeModel) JumpToBottom() {
	t.cursor = max(len(t.rows)-1, 0)
	t.ensureCursorVisible()
}

// PageDown moves cursor down by half a viewport.
func (t *TreeModel) PageDown() {
	t.moveBy(t.halfPage())
}

// PageUp moves cursor up by half a viewport.
func (t *TreeModel) PageUp() {
	t.moveBy(-t.halfPage())
}

func (t *TreeModel) halfPage() int {
	if n := t.height / 2; n >= 1 {
		return n
	}
	return 5
}

func (t *TreeModel) moveBy(n int) {
	if len(t.rows) == 0 {
		return
	}
	t.cursor = max(0, min(t.cursor+n, len(t.rows)-1))
	t.ensureCursorVisible()
}

// JumpToParent moves the cursor to the parent of the selected row.
func (t *TreeModel) JumpToParent() {
	row, ok := t.SelectedNode()
	if !ok {
		return
	}
	node, ok := t.browser.Index().Node(row.Slug)
	if !ok || node.IsRoot() {
		return
	}
	t.SelectBySlug(node.ParentSlug)
}

// ── Expansion ────────────────────────────────────────────────────────────────

// ToggleExpand flips the manual flag of the selected row. Leaves are ignored.
func (t *TreeModel) ToggleExpand() error {
	row, ok := t.SelectedNode()
	if !ok || !row.HasChildren {
		return nil
	}
	if err := t.browser.Toggle(row.Slug); err != nil {
		return err
	}
	t.Refresh()
	return nil
}

// ExpandOrMoveToChild handles l / →: expand a collapsed node, or step onto
// the first child of an expanded one.
func (t *TreeModel) ExpandOrMoveToChild() error {
	row, ok := t.SelectedNode()
	if !ok || !row.HasChildren {
		return nil
	}
	if !row.IsExpanded {
		if err := t.browser.SetExpanded(row.Slug, true); err != nil {
			return err
		}
		t.Refresh()
		return nil
	}
	if next := t.cursor + 1; next < len(t.rows) && t.rows[next].Depth == row.Depth+1 {
		t.cursor = next
		t.ensureCursorVisible()
	}
	return nil
}

// CollapseOrJumpToParent handles h / ←: collapse a manually expanded node,
// otherwise jump to the parent. A node held open by the query cannot be
// collapsed, so the cursor moves up instead.
func (t *TreeModel) CollapseOrJumpToParent() error {
	row, ok := t.SelectedNode()
	if !ok {
		return nil
	}
	if row.HasChildren && row.IsExpanded && t.browser.Session().State.IsExpanded(row.Slug) {
		if err := t.browser.SetExpanded(row.Slug, false); err != nil {
			return err
		}
		t.Refresh()
		return nil
	}
	t.JumpToParent()
	return nil
}

func (t *TreeModel) ExpandAll() {
	t.browser.ExpandAll()
	t.Refresh()
}

func (t *TreeModel) CollapseAll() {
	t.browser.CollapseAll()
	t.Refresh()
}

func (t *TreeModel) ToggleExpandCollapseAll() {
	t.browser.ToggleExpandCollapseAll()
	t.Refresh()
}

func (t *TreeModel) ExpandToLevel(level int) {
	t.browser.ExpandToLevel(level)
	t.Refresh()
}

// ── Viewport ─────────────────────────────────────────────────────────────────

// effectiveVisibleCount is the number of rows that fit below the header,
// minus the position indicator line when scrolling is needed.
func (t *TreeModel) effectiveVisibleCount() int {
	if t.height <= 0 {
		return len(t.rows)
	}
	n := t.height - 1
	if len(t.rows) > n {
		n--
	}
	return max(n, 1)
}

func (t *TreeModel) ensureCursorVisible() {
	visible := t.effectiveVisibleCount()
	if t.cursor < t.viewportOffset {
		t.viewportOffset = t.cursor
	} else if t.cursor >= t.viewportOffset+visible {
		t.viewportOffset = t.cursor - visible + 1
	}
	if maxOffset := max(len(t.rows)-visible, 0); t.viewportOffset > maxOffset {
		t.viewportOffset = maxOffset
	}
	if t.viewportOffset < 0 {
		t.viewportOffset = 0
	}
}

// visibleRange returns the [start, end) slice of rows in the viewport.
func (t *TreeModel) visibleRange() (start, end int) {
	if len(t.rows) == 0 {
		return 0, 0
	}
	start = max(t.viewportOffset, 0)
	end = min(start+t.effectiveVisibleCount(), len(t.rows))
	return start, end
}

// ── Rendering ────────────────────────────────────────────────────────────────

func (t *TreeModel) View() string {
	if len(t.rows) == 0 {
		return t.renderEmptyState()
	}

	var sb strings.Builder
	sb.WriteString(t.RenderHeader())
	sb.WriteString("\n")

	start, end := t.visibleRange()
	for i := start; i < end; i++ {
		line := t.renderNode(i)
		if i == t.cursor {
			line = t.theme.Selected.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	if t.height > 0 && len(t.rows) > t.effectiveVisibleCount() {
		sb.WriteString(t.theme.MutedText.Render(
			fmt.Sprintf(" %d-%d of %d rows", start+1, end, len(t.rows))))
	}
	return sb.String()
}

func (t *TreeModel) paneWidth() int {
	if t.width <= 0 {
		return 80
	}
	return t.width
}

// RenderHeader returns the column header row.
func (t *TreeModel) RenderHeader() string {
	width := t.paneWidth()
	label := "  CATEGORY"
	if width >= 60 {
		label = padRight(label, width-slugColumnWidth-1) + "SLUG"
	}
	return t.theme.Renderer.NewStyle().
		Background(t.theme.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Width(width).
		MaxWidth(width).
		Render(label)
}

const slugColumnWidth = 24

func expandIndicator(r taxonomy.VisibleNode) string {
	switch {
	case !r.HasChildren:
		return "•"
	case r.IsExpanded:
		return "▾"
	default:
		return "▸"
	}
}

// renderNode renders row i: [guides] [indicator] [name] ... [slug]
func (t *TreeModel) renderNode(i int) string {
	r := t.rows[i]
	// One cell narrower than the pane so the selected border never wraps.
	width := t.paneWidth() - 1

	guide := t.guides[i]
	used := lipgloss.Width(guide) + 2

	showSlug := width >= 60
	nameWidth := width - used
	if showSlug {
		nameWidth -= slugColumnWidth + 1
	}
	name := padRight(truncate(r.Name, nameWidth), max(nameWidth, 0))

	nameStyle := t.theme.Base
	switch {
	case r.IsMatched:
		nameStyle = t.theme.MatchText
	case r.IsContext:
		nameStyle = t.theme.ContextText
	}

	var sb strings.Builder
	sb.WriteString(t.theme.MutedText.Render(guide))
	sb.WriteString(t.theme.Indicator.Render(expandIndicator(r)))
	sb.WriteString(" ")
	sb.WriteString(nameStyle.Render(name))
	if showSlug {
		sb.WriteString(" ")
		sb.WriteString(t.theme.MutedText.Render(truncate(r.Slug, slugColumnWidth)))
	}

	return t.theme.Renderer.NewStyle().Width(width).MaxWidth(width).Render(sb.String())
}

// renderEmptyState renders the pane when no rows are visible.
func (t *TreeModel) renderEmptyState() string {
	title := t.theme.PrimaryBold
	muted := t.theme.MutedText

	var sb strings.Builder
	res := t.browser.Result()
	if res.NoResults() {
		sb.WriteString(title.Render("No matches"))
		sb.WriteString("\n\n")
		sb.WriteString(muted.Render(fmt.Sprintf("No %s match %q.", t.browser.Type().Plural(), res.Query())))
		sb.WriteString("\n")
		sb.WriteString(muted.Render("Press esc to clear the search."))
		return sb.String()
	}

	sb.WriteString(title.Render("Empty taxonomy"))
	sb.WriteString("\n\n")
	sb.WriteString(muted.Render(fmt.Sprintf("No %s are loaded.", t.browser.Type().Plural())))
	sb.WriteString("\n")
	sb.WriteString(muted.Render("Press t to switch taxonomy or check the data directory."))
	return sb.String()
}
