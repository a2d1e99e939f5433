package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/oasftree/pkg/debug"
	"github.com/vanderheijden86/oasftree/pkg/metrics"
	"github.com/vanderheijden86/oasftree/pkg/model"
	"github.com/vanderheijden86/oasftree/pkg/taxonomy"
	"github.com/vanderheijden86/oasftree/pkg/watcher"
)

// View width thresholds for adaptive layout
const (
	SplitViewThreshold = 100
	MinDetailPaneWidth = 40 // Auto-hide detail panel below this width
)

// focus represents which UI element has keyboard focus
type focus int

const (
	focusTree focus = iota
	focusSearch
	focusDetail
	focusHelp
)

func (f focus) String() string {
	switch f {
	case focusTree:
		return "tree"
	case focusSearch:
		return "search"
	case focusDetail:
		return "detail"
	case focusHelp:
		return "help"
	default:
		return "unknown"
	}
}

// FileChangedMsg reports a change in the watched data directory.
type FileChangedMsg struct{}

// ReloadedMsg carries the result of reloading the dataset.
type ReloadedMsg struct {
	Dataset model.Dataset
	Err     error
	Took    time.Duration
}

// WatchFileCmd returns a command that waits for file changes and sends FileChangedMsg
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// ReloadFunc loads the dataset again after a change on disk.
type ReloadFunc func(ctx context.Context) (model.Dataset, error)

func reloadCmd(fn ReloadFunc) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		ds, err := fn(context.Background())
		return ReloadedMsg{Dataset: ds, Err: err, Took: time.Since(start)}
	}
}

// Options configures a Model.
type Options struct {
	Type        model.TaxonomyType // empty: skill
	Query       string
	Filter      taxonomy.FilterOptions
	ExpandDepth int
	ShowDetail  bool
	SplitRatio  float64 // tree pane share, 0.2-0.8

	// PickMode quits after the first selection; see Model.Selection.
	PickMode bool

	// Watcher and Reload enable live reload of the data directory.
	Watcher *watcher.Watcher
	Reload  ReloadFunc
}

// selection is shared between Model copies so the OnSelect callback can
// record into it.
type selection struct {
	ref model.CategoryRef
	typ model.TaxonomyType
	ok  bool
}

func (s *selection) record(ref model.CategoryRef, typ model.TaxonomyType) {
	s.ref, s.typ, s.ok = ref, typ, true
}

// Model is the bubbletea model of the taxonomy browser.
type Model struct {
	browser  *taxonomy.Browser
	opts     Options
	selected *selection

	// UI Components
	tree     TreeModel
	search   textinput.Model
	viewport viewport.Model
	renderer *MarkdownRenderer
	theme    Theme

	// Focus and View State
	focused              focus
	focusBeforeHelp      focus
	showDetail           bool
	detailHiddenByNarrow bool
	isSplitView          bool
	splitPaneRatio       float64
	width                int
	height               int

	statusMsg     string
	statusIsError bool
}

// NewModel creates the browser model over ds.
func NewModel(ds model.Dataset, opts Options) (Model, error) {
	if opts.Type == "" {
		opts.Type = model.TypeSkill
	}
	if opts.SplitRatio < 0.2 || opts.SplitRatio > 0.8 {
		opts.SplitRatio = 0.5
	}

	sel := &selection{}
	b, err := newBrowser(ds, opts, sel)
	if err != nil {
		return Model{}, err
	}
	b.SetQuery(opts.Query)

	theme := DefaultTheme(lipgloss.DefaultRenderer())

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search category names"
	search.CharLimit = 128
	search.SetValue(strings.TrimSpace(opts.Query))

	m := Model{
		browser:        b,
		opts:           opts,
		selected:       sel,
		tree:           NewTreeModel(b, theme),
		search:         search,
		viewport:       viewport.New(80, 20),
		renderer:       NewMarkdownRenderer(80),
		theme:          theme,
		focused:        focusTree,
		showDetail:     opts.ShowDetail,
		splitPaneRatio: opts.SplitRatio,
		width:          120,
		height:         40,
	}
	m.layout()
	return m, nil
}

func newBrowser(ds model.Dataset, opts Options, sel *selection) (*taxonomy.Browser, error) {
	return taxonomy.NewBrowser(taxonomy.NewCatalog(ds), opts.Type, taxonomy.BrowserOptions{
		Filter:      opts.Filter,
		ExpandDepth: opts.ExpandDepth,
		OnSelect:    sel.record,
	})
}

func (m Model) Init() tea.Cmd {
	if m.opts.Watcher != nil {
		return WatchFileCmd(m.opts.Watcher)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case FileChangedMsg:
		if m.opts.Reload != nil {
			cmds = append(cmds, reloadCmd(m.opts.Reload))
		}
		if m.opts.Watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.opts.Watcher))
		}
		return m, tea.Batch(cmds...)

	case ReloadedMsg:
		if msg.Err != nil {
			m.setStatus(fmt.Sprintf("Reload failed: %v", msg.Err), true)
			return m, nil
		}
		if err := m.replaceDataset(msg.Dataset); err != nil {
			m.setStatus(fmt.Sprintf("Reload failed: %v", err), true)
			return m, nil
		}
		debug.LogTiming("ui.reload", msg.Took)
		m.setStatus(fmt.Sprintf("Reloaded %s in %s", m.browser.Summary(), formatReloadDuration(msg.Took)), false)
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		m.statusIsError = false

		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.focused {
		case focusHelp:
			m.focused = m.focusBeforeHelp
			return m, nil
		case focusSearch:
			return m.handleSearchKeys(msg)
		case focusDetail:
			return m.handleDetailKeys(msg)
		default:
			return m.handleTreeKeys(msg)
		}
	}

	if m.focused == focusSearch {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) setStatus(msg string, isError bool) {
	m.statusMsg = msg
	m.statusIsError = isError
}

// replaceDataset rebuilds the browser over ds, carrying over the active
// type plus the query and manual expansion of every open session.
func (m *Model) replaceDataset(ds model.Dataset) error {
	b, err := newBrowser(ds, m.opts, m.selected)
	if err != nil {
		return err
	}
	for _, typ := range model.AllTypes {
		old, ok := m.browser.OpenSession(typ)
		if !ok {
			continue
		}
		s, err := b.SessionFor(typ)
		if err != nil {
			return err
		}
		s.State.Restore(s.Index, old.State.Expanded(old.Index))
		s.SetQuery(old.Result().Query())
	}
	if err := b.SetType(m.browser.Type()); err != nil {
		return err
	}
	m.browser = b
	m.tree.SetBrowser(b)
	m.syncTreeToDetail()
	return nil
}

// ── Key handling ─────────────────────────────────────────────────────────────

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.SetValue("")
		m.applyQuery()
		m.search.Blur()
		m.focused = focusTree
		return m, nil
	case "enter", "down":
		m.search.Blur()
		m.focused = focusTree
		return m, nil
	}

	var cmd tea.Cmd
	before := m.search.Value()
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.applyQuery()
	}
	return m, cmd
}

// applyQuery filters the active taxonomy with the search input.
func (m *Model) applyQuery() {
	m.browser.SetQuery(m.search.Value())
	m.tree.Refresh()
	m.syncTreeToDetail()
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "esc":
		m.focused = focusTree
		return m, nil
	case "q":
		return m, tea.Quit
	case "?":
		m.openHelp()
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleTreeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var err error
	key := msg.String()

	switch key {
	case "q":
		return m, tea.Quit
	case "?":
		m.openHelp()
		return m, nil
	case "/":
		m.focused = focusSearch
		return m, m.search.Focus()
	case "esc":
		if m.browser.Result().Active() {
			m.search.SetValue("")
			m.applyQuery()
		}
		return m, nil
	case "tab":
		if m.detailVisible() {
			m.focused = focusDetail
		}
		return m, nil

	case "j", "down":
		m.tree.MoveDown()
	case "k", "up":
		m.tree.MoveUp()
	case "g", "home":
		m.tree.JumpToTop()
	case "G", "end":
		m.tree.JumpToBottom()
	case "ctrl+d", "pgdown":
		m.tree.PageDown()
	case "ctrl+u", "pgup":
		m.tree.PageUp()
	case "p":
		m.tree.JumpToParent()

	case " ", "o":
		err = m.tree.ToggleExpand()
		if err == nil {
			m.noteHeldOpen()
		}
	case "l", "right":
		err = m.tree.ExpandOrMoveToChild()
	case "h", "left":
		err = m.tree.CollapseOrJumpToParent()
	case "X":
		m.tree.ExpandAll()
	case "Z":
		m.tree.CollapseAll()
	case "ctrl+a":
		m.tree.ToggleExpandCollapseAll()
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		level := int(key[0] - '0')
		m.tree.ExpandToLevel(level)
		m.setStatus(fmt.Sprintf("Expanded to level %d", level), false)

	case "t":
		m.switchType()
	case "enter":
		return m.selectCurrent()
	case "y":
		m.copySelected(false)
	case "Y":
		m.copySelected(true)
	case "d":
		m.showDetail = !m.showDetail
		m.detailHiddenByNarrow = false
		m.layout()
		return m, nil
	default:
		return m, nil
	}

	if err != nil {
		m.setStatus(err.Error(), true)
	}
	m.syncTreeToDetail()
	return m, nil
}

// noteHeldOpen explains a toggle that changed nothing on screen: the search
// keeps the row open, so only the layout restored after clearing changes.
func (m *Model) noteHeldOpen() {
	row, ok := m.tree.SelectedNode()
	if !ok || !row.HasChildren || !m.browser.Result().IsForced(row.Slug) {
		return
	}
	after := "collapsed"
	if m.browser.Session().State.IsExpanded(row.Slug) {
		after = "expanded"
	}
	m.setStatus(fmt.Sprintf("%s is held open by the search; it will be %s when the search is cleared", row.Name, after), false)
}

func (m *Model) openHelp() {
	m.focusBeforeHelp = m.focused
	m.focused = focusHelp
}

// switchType cycles to the next taxonomy type. Each type keeps its own
// query and expansion, so the search box follows the new session.
func (m *Model) switchType() {
	next := model.AllTypes[0]
	for i, typ := range model.AllTypes {
		if typ == m.browser.Type() {
			next = model.AllTypes[(i+1)%len(model.AllTypes)]
			break
		}
	}
	if err := m.browser.SetType(next); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.search.SetValue(m.browser.Query())
	m.tree.Refresh()
}

func (m Model) selectCurrent() (tea.Model, tea.Cmd) {
	row, ok := m.tree.SelectedNode()
	if !ok {
		return m, nil
	}
	cat, err := m.browser.Select(row.Slug)
	if err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}
	if m.opts.PickMode {
		return m, tea.Quit
	}
	m.setStatus(fmt.Sprintf("Selected %s (%s)", cat.Name, cat.Slug), false)
	return m, nil
}

// copySelected copies the slug, or a markdown summary when full is set.
func (m *Model) copySelected(full bool) {
	row, ok := m.tree.SelectedNode()
	if !ok {
		m.setStatus("No category selected", true)
		return
	}
	payload := row.Slug
	if full {
		cat, err := m.browser.Index().Category(row.Slug)
		if err != nil {
			m.setStatus(err.Error(), true)
			return
		}
		payload = selectionMarkdown(m.browser.Type(), cat, categoryPath(m.browser.Index(), row.Slug))
	}
	if err := clipboard.WriteAll(payload); err != nil {
		m.setStatus(fmt.Sprintf("Clipboard error: %v", err), true)
		return
	}
	m.setStatus(fmt.Sprintf("Copied %s to clipboard", row.Slug), false)
}

// ── Layout ───────────────────────────────────────────────────────────────────

// bodyHeight is the height left for panes after header, search and footer.
func (m Model) bodyHeight() int {
	return max(m.height-3, 3)
}

func (m Model) detailVisible() bool {
	return m.showDetail && m.isSplitView
}

// layout recomputes pane sizes after a resize or a detail toggle.
func (m *Model) layout() {
	m.isSplitView = m.width >= SplitViewThreshold
	if m.showDetail && m.isSplitView && m.detailPaneWidth() < MinDetailPaneWidth {
		m.showDetail = false
		m.detailHiddenByNarrow = true
	} else if m.detailHiddenByNarrow && m.isSplitView && m.detailPaneWidth() >= MinDetailPaneWidth {
		m.showDetail = true
		m.detailHiddenByNarrow = false
	}
	if !m.detailVisible() && m.focused == focusDetail {
		m.focused = focusTree
	}

	bodyHeight := m.bodyHeight()
	m.search.Width = max(m.width-4, 10)

	if !m.detailVisible() {
		m.tree.SetSize(m.width, bodyHeight)
		return
	}
	// Two bordered panels: 2 cells of border each
	treeWidth := m.treePaneWidth()
	detailWidth := m.detailPaneWidth()
	m.tree.SetSize(treeWidth, bodyHeight-2)
	m.viewport.Width = detailWidth
	m.viewport.Height = bodyHeight - 2
	m.renderer.SetWidth(detailWidth - 2)
	m.syncTreeToDetail()
}

func (m Model) treePaneWidth() int {
	avail := max(m.width-4, 10)
	return int(float64(avail) * m.splitPaneRatio)
}

func (m Model) detailPaneWidth() int {
	avail := max(m.width-4, 10)
	return avail - m.treePaneWidth()
}

// syncTreeToDetail renders the selected category into the detail viewport.
func (m *Model) syncTreeToDetail() {
	if !m.detailVisible() {
		return
	}
	row, ok := m.tree.SelectedNode()
	if !ok {
		m.viewport.SetContent("No category selected")
		return
	}
	md := categoryMarkdown(m.browser.Index(), row.Slug, m.browser.Result())
	rendered, err := m.renderer.Render(md)
	if err != nil {
		m.viewport.SetContent(fmt.Sprintf("Error rendering markdown: %v", err))
	} else {
		m.viewport.SetContent(rendered)
	}
	m.viewport.GotoTop()
}

// ── Rendering ────────────────────────────────────────────────────────────────

func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()

	var body string
	if m.focused == focusHelp {
		body = m.renderHelpOverlay()
	} else if m.detailVisible() {
		body = m.renderSplitView()
	} else {
		body = m.tree.View()
	}

	body = lipgloss.NewStyle().Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).Render(body)
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		MaxHeight(m.height).
		Render(lipgloss.JoinVertical(lipgloss.Left,
			m.renderHeader(), body, m.renderSearchBar(), m.renderFooter()))
}

func (m Model) renderSplitView() string {
	treeStyle, detailStyle := PanelStyle, PanelStyle
	if m.focused == focusDetail {
		detailStyle = FocusedPanelStyle
	} else {
		treeStyle = FocusedPanelStyle
	}
	treePane := treeStyle.Width(m.treePaneWidth()).Height(m.bodyHeight() - 2).Render(m.tree.View())
	detailPane := detailStyle.Width(m.detailPaneWidth()).Height(m.bodyHeight() - 2).Render(m.viewport.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, treePane, detailPane)
}

// renderHeader draws the title, one tab per taxonomy type and the counters.
func (m Model) renderHeader() string {
	parts := []string{m.theme.Header.Render("oasftree")}
	for _, typ := range model.AllTypes {
		count := 0
		if s, err := m.browser.SessionFor(typ); err == nil {
			count = s.Index.CountAll()
		}
		label := strings.ToUpper(typ.Plural()[:1]) + typ.Plural()[1:]
		parts = append(parts, RenderTypeTab(label, count, typ == m.browser.Type(), m.theme.TypeColor(string(typ))))
	}
	left := strings.Join(parts, " ")

	right := m.theme.MutedText.Render(m.browser.Summary().String() + " ")
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderSearchBar() string {
	if m.focused == focusSearch || m.search.Value() != "" {
		return m.search.View()
	}
	return m.theme.MutedText.Render("/ search")
}

func (m Model) renderFooter() string {
	if m.statusMsg != "" {
		return RenderStatus(m.statusMsg, m.statusIsError, m.width)
	}

	type hint struct{ key, label string }
	var hints []hint
	switch m.focused {
	case focusSearch:
		hints = []hint{{"enter", "browse"}, {"esc", "clear"}}
	case focusDetail:
		hints = []hint{{"j/k", "scroll"}, {"tab", "tree"}, {"q", "quit"}}
	default:
		hints = []hint{
			{"j/k", "nav"}, {"space", "fold"}, {"/", "search"}, {"t", "type"},
			{"1-9", "level"}, {"enter", "select"}, {"y", "copy"}, {"?", "help"}, {"q", "quit"},
		}
	}

	var parts []string
	width := 0
	for _, h := range hints {
		s := RenderKeyHint(h.key, h.label)
		if width+lipgloss.Width(s)+2 > m.width {
			break
		}
		parts = append(parts, s)
		width += lipgloss.Width(s) + 2
	}
	return strings.Join(parts, "  ")
}

var helpSections = []struct {
	title string
	keys  [][2]string
}{
	{"Navigation", [][2]string{
		{"j / k", "move down / up"},
		{"g / G", "first / last row"},
		{"ctrl+d / ctrl+u", "half page down / up"},
		{"p", "jump to parent"},
	}},
	{"Expansion", [][2]string{
		{"space / o", "toggle the selected category"},
		{"l / h", "expand or enter / collapse or leave"},
		{"X / Z", "expand all / collapse all"},
		{"ctrl+a", "toggle expand/collapse all"},
		{"1-9", "show that many levels"},
	}},
	{"Search & selection", [][2]string{
		{"/", "search category names"},
		{"esc", "clear the search"},
		{"t", "switch skills / domains"},
		{"enter", "select category"},
		{"y / Y", "copy slug / copy summary"},
	}},
	{"View", [][2]string{
		{"d", "toggle detail pane"},
		{"tab", "focus detail pane"},
		{"q", "quit"},
	}},
}

func (m *Model) renderHelpOverlay() string {
	var sb strings.Builder
	sb.WriteString(m.theme.PrimaryBold.Render("Keyboard shortcuts"))
	sb.WriteString("\n")
	for _, sec := range helpSections {
		sb.WriteString("\n")
		sb.WriteString(m.theme.Base.Bold(true).Render(sec.title))
		sb.WriteString("\n")
		for _, k := range sec.keys {
			sb.WriteString("  ")
			sb.WriteString(m.theme.PrimaryBold.Render(padRight(k[0], 18)))
			sb.WriteString(m.theme.MutedText.Render(k[1]))
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")
	sb.WriteString(m.theme.MutedText.Render("Press any key to close"))
	return FocusedPanelStyle.Padding(0, SpaceSM).Render(sb.String())
}

// ── Accessors ────────────────────────────────────────────────────────────────

// Selection returns the last category chosen with enter.
func (m Model) Selection() (model.CategoryRef, model.TaxonomyType, bool) {
	return m.selected.ref, m.selected.typ, m.selected.ok
}

// Browser exposes the underlying browser.
func (m Model) Browser() *taxonomy.Browser { return m.browser }

// FocusState returns the focused element, for tests and debug output.
func (m Model) FocusState() string { return m.focused.String() }

// TreeSelectedSlug returns the slug under the tree cursor.
func (m Model) TreeSelectedSlug() string {
	row, _ := m.tree.SelectedNode()
	return row.Slug
}

// TreeRows returns the displayed rows.
func (m Model) TreeRows() []taxonomy.VisibleNode { return m.tree.Rows() }

// StatusMessage returns the current status line and whether it is an error.
func (m Model) StatusMessage() (string, bool) { return m.statusMsg, m.statusIsError }

func formatReloadDuration(d time.Duration) string {
	if d < time.Millisecond {
		return "<1ms"
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
