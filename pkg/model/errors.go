package model

import (
	"errors"
	"fmt"
)

// Sentinel errors. The typed errors below match them through errors.Is.
var (
	ErrDuplicateSlug = errors.New("duplicate slug")
	ErrEmptySlug     = errors.New("empty slug")
	ErrInvalidType   = errors.New("invalid taxonomy type")
	ErrNotFound      = errors.New("category not found")
)

// DuplicateSlugError reports a slug that appears twice within one type.
// It indicates malformed static data and is only raised while building.
type DuplicateSlugError struct {
	Type TaxonomyType
	Slug string
}

func (e *DuplicateSlugError) Error() string {
	return fmt.Sprintf("%s taxonomy: duplicate slug %q", e.Type, e.Slug)
}

func (e *DuplicateSlugError) Is(target error) bool { return target == ErrDuplicateSlug }

// InvalidTypeError reports a request for a taxonomy type that does not exist.
type InvalidTypeError struct {
	Type string
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("invalid taxonomy type %q (expected skill|domain)", e.Type)
}

func (e *InvalidTypeError) Is(target error) bool { return target == ErrInvalidType }

// NotFoundError reports a slug absent from the index of its type.
type NotFoundError struct {
	Type TaxonomyType
	Slug string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s taxonomy: no category with slug %q", e.Type, e.Slug)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
