package validator

import (
	"assetimport/internal/domain"
	"assetimport/internal/schema"
)

// CategorySet answers case-insensitive existence checks for category names.
// It is immutable after construction.
type CategorySet struct {
	names map[string]struct{}
}

// NewCategorySet builds a CategorySet from the inventory's category list.
func NewCategorySet(categories []domain.KnownCategory) *CategorySet {
	names := make(map[string]struct{}, len(categories))
	for i := range categories {
		names[schema.NormalizeValue(categories[i].Category)] = struct{}{}
	}
	return &CategorySet{names: names}
}

// Exists reports whether name matches a known category.
func (c *CategorySet) Exists(name string) bool {
	_, ok := c.names[schema.NormalizeValue(name)]
	return ok
}

// Len returns the number of distinct names.
func (c *CategorySet) Len() int {
	return len(c.names)
}
