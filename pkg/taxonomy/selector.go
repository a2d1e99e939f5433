package taxonomy

import (
	"github.com/vanderheijden86/oasftree/pkg/model"
)

// SelectFunc receives the selected category. It runs synchronously inside
// Select; navigation and other side effects belong to the caller.
type SelectFunc func(ref model.CategoryRef, typ model.TaxonomyType)

// Selector resolves slugs to categories and reports selections.
// It has no access to expansion state, so selecting never changes layout.
type Selector struct {
	idx      *TreeIndex
	onSelect SelectFunc
}

// NewSelector returns a Selector over idx. onSelect may be nil.
func NewSelector(idx *TreeIndex, onSelect SelectFunc) *Selector {
	return &Selector{idx: idx, onSelect: onSelect}
}

// Select resolves slug, invokes the callback and returns the full category.
// An unknown slug returns *model.NotFoundError without calling back.
func (s *Selector) Select(slug string) (model.Category, error) {
	cat, err := s.idx.Category(slug)
	if err != nil {
		return model.Category{}, err
	}
	if s.onSelect != nil {
		s.onSelect(cat.Ref(), s.idx.Type())
	}
	return cat, nil
}
