package taxonomy

import (
	"github.com/vanderheijden86/oasftree/pkg/model"
)

// Catalog hands out one TreeIndex per taxonomy type, built on first use and
// cached for the rest of the process. The dataset is never written to.
type Catalog struct {
	dataset model.Dataset
	indexes map[model.TaxonomyType]*TreeIndex
}

// NewCatalog wraps a static dataset.
func NewCatalog(ds model.Dataset) *Catalog {
	return &Catalog{
		dataset: ds,
		indexes: make(map[model.TaxonomyType]*TreeIndex),
	}
}

// Index returns the index for typ, building it on first request. A type
// without a forest in the dataset yields an empty index.
func (c *Catalog) Index(typ model.TaxonomyType) (*TreeIndex, error) {
	if !typ.IsValid() {
		return nil, &model.InvalidTypeError{Type: string(typ)}
	}
	if idx, ok := c.indexes[typ]; ok {
		return idx, nil
	}
	idx, err := Build(typ, c.dataset[typ])
	if err != nil {
		return nil, err
	}
	c.indexes[typ] = idx
	return idx, nil
}

// Session is the browsing state of one taxonomy type: its index, the manual
// expansion flags and the current query result.
type Session struct {
	Index    *TreeIndex
	State    *ExpansionState
	selector *Selector
	opts     FilterOptions
	result   FilterResult
}

func newSession(idx *TreeIndex, opts BrowserOptions) *Session {
	s := &Session{
		Index:    idx,
		State:    NewExpansionState(),
		selector: NewSelector(idx, opts.OnSelect),
		opts:     opts.Filter,
	}
	if opts.ExpandDepth > 0 {
		s.State.ExpandToLevel(idx, opts.ExpandDepth)
	}
	s.result = FilterWith("", idx, s.opts)
	return s
}

// SetQuery recomputes the filter result, replacing the previous one.
func (s *Session) SetQuery(q string) {
	s.result = FilterWith(q, s.Index, s.opts)
}

// Result returns the current filter result.
func (s *Session) Result() FilterResult { return s.result }

// Nodes returns the rows to render for the current state and query.
func (s *Session) Nodes() []VisibleNode {
	return VisibleNodes(s.Index, s.State, s.result)
}

// Summary returns the counters for the current rows.
func (s *Session) Summary() Summary {
	return Summarize(s.Index, s.result, s.Nodes())
}

// BrowserOptions configures new sessions.
type BrowserOptions struct {
	Filter FilterOptions
	// ExpandDepth pre-expands new sessions with ExpandToLevel; 0 leaves
	// everything collapsed.
	ExpandDepth int
	// OnSelect is invoked by Select.
	OnSelect SelectFunc
}

// Browser is the entry point used by the UI and the CLI. It keeps one
// independent Session per taxonomy type and routes every operation to the
// session of the active type.
type Browser struct {
	catalog  *Catalog
	opts     BrowserOptions
	sessions map[model.TaxonomyType]*Session
	active   model.TaxonomyType
}

// NewBrowser opens a browser on typ.
func NewBrowser(c *Catalog, typ model.TaxonomyType, opts BrowserOptions) (*Browser, error) {
	b := &Browser{
		catalog:  c,
		opts:     opts,
		sessions: make(map[model.TaxonomyType]*Session),
	}
	if err := b.SetType(typ); err != nil {
		return nil, err
	}
	return b, nil
}

// SetType switches the active taxonomy type. Each type keeps its own query
// and expansion state across switches.
func (b *Browser) SetType(typ model.TaxonomyType) error {
	if _, err := b.SessionFor(typ); err != nil {
		return err
	}
	b.active = typ
	return nil
}

// SessionFor returns the session of typ, creating it on first use.
func (b *Browser) SessionFor(typ model.TaxonomyType) (*Session, error) {
	if s, ok := b.sessions[typ]; ok {
		return s, nil
	}
	idx, err := b.catalog.Index(typ)
	if err != nil {
		return nil, err
	}
	s := newSession(idx, b.opts)
	b.sessions[typ] = s
	return s, nil
}

// OpenSession returns the session of typ only if it was already created.
func (b *Browser) OpenSession(typ model.TaxonomyType) (*Session, bool) {
	s, ok := b.sessions[typ]
	return s, ok
}

// Type returns the active taxonomy type.
func (b *Browser) Type() model.TaxonomyType { return b.active }

// Session returns the session of the active type.
func (b *Browser) Session() *Session { return b.sessions[b.active] }

// SetQuery filters the active type.
func (b *Browser) SetQuery(q string) { b.Session().SetQuery(q) }

// Query returns the trimmed query of the active type.
func (b *Browser) Query() string { return b.Session().result.Query() }

// Result returns the filter result of the active type.
func (b *Browser) Result() FilterResult { return b.Session().result }

// Toggle flips the manual flag of slug in the active type.
func (b *Browser) Toggle(slug string) error {
	s := b.Session()
	return s.State.Toggle(s.Index, slug)
}

// SetExpanded stores an explicit manual flag for slug in the active type.
func (b *Browser) SetExpanded(slug string, expanded bool) error {
	s := b.Session()
	return s.State.SetExpanded(s.Index, slug, expanded)
}

// ExpandAll expands every category of the active type.
func (b *Browser) ExpandAll() {
	s := b.Session()
	s.State.ExpandAll(s.Index)
}

// CollapseAll collapses every category of the active type.
func (b *Browser) CollapseAll() {
	s := b.Session()
	s.State.CollapseAll(s.Index)
}

// ToggleExpandCollapseAll expands everything if anything is collapsed,
// otherwise collapses everything.
func (b *Browser) ToggleExpandCollapseAll() {
	s := b.Session()
	if s.State.HasCollapsed(s.Index) {
		s.State.ExpandAll(s.Index)
		return
	}
	s.State.CollapseAll(s.Index)
}

// ExpandToLevel applies ExpansionState.ExpandToLevel to the active type.
func (b *Browser) ExpandToLevel(level int) {
	s := b.Session()
	s.State.ExpandToLevel(s.Index, level)
}

// Select resolves slug in the active type and reports it to OnSelect.
func (b *Browser) Select(slug string) (model.Category, error) {
	return b.Session().selector.Select(slug)
}

// Nodes returns the rows of the active type.
func (b *Browser) Nodes() []VisibleNode { return b.Session().Nodes() }

// Summary returns the counters of the active type.
func (b *Browser) Summary() Summary { return b.Session().Summary() }

// Index returns the index of the active type.
func (b *Browser) Index() *TreeIndex { return b.Session().Index }
