// Package model defines the OASF taxonomy records shared by the loader, the
// browsing core and the UI.
package model

import (
	"strings"
)

// TaxonomyType names one of the independent category forests.
type TaxonomyType string

const (
	TypeSkill  TaxonomyType = "skill"
	TypeDomain TaxonomyType = "domain"
)

// AllTypes lists the known taxonomy types in display order.
var AllTypes = []TaxonomyType{TypeSkill, TypeDomain}

// IsValid reports whether t is a known taxonomy type.
func (t TaxonomyType) IsValid() bool {
	switch t {
	case TypeSkill, TypeDomain:
		return true
	}
	return false
}

// Plural returns the label used in counters and tabs ("skills", "domains").
func (t TaxonomyType) Plural() string {
	return string(t) + "s"
}

// ParseTaxonomyType normalizes s and returns the matching type.
func ParseTaxonomyType(s string) (TaxonomyType, error) {
	t := TaxonomyType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", &InvalidTypeError{Type: s}
	}
	return t, nil
}

// Category is a node of a taxonomy forest. Children are owned, so a forest
// can never contain a cycle.
type Category struct {
	Slug        string     `json:"slug" yaml:"slug"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Children    []Category `json:"children,omitempty" yaml:"children,omitempty"`
}

// Ref returns the slug/name pair handed to selection callbacks.
func (c Category) Ref() CategoryRef {
	return CategoryRef{Slug: c.Slug, Name: c.Name}
}

// Clone returns a deep copy of c, so edits to the copy's subtree never reach
// the original.
func (c Category) Clone() Category {
	if c.Children != nil {
		children := make([]Category, len(c.Children))
		for i := range c.Children {
			children[i] = c.Children[i].Clone()
		}
		c.Children = children
	}
	return c
}

// CategoryRef identifies a category without its subtree.
type CategoryRef struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Forest is the ordered list of root categories of one taxonomy type.
type Forest []Category

// Count returns the number of categories in the forest by direct traversal.
func (f Forest) Count() int {
	n := 0
	var walk func(cs []Category)
	walk = func(cs []Category) {
		for i := range cs {
			n++
			walk(cs[i].Children)
		}
	}
	walk(f)
	return n
}

// Dataset holds the static forests for every taxonomy type.
type Dataset map[TaxonomyType]Forest
