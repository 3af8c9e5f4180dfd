// Package schema declares the spreadsheet columns each import flow expects
// and how free-form header text maps onto them.
package schema

import (
	"strings"
	"unicode"

	"assetimport/internal/domain"
)

// DefaultMaxLength is the length limit for text fields.
const DefaultMaxLength = 255

// ForbiddenChars are rejected in every text field.
const ForbiddenChars = `<>"'&`

// FieldKind selects the format rules applied to a field.
type FieldKind int

const (
	KindText FieldKind = iota
	KindProductCode
	KindBoolean
)

// Field describes one logical column.
type Field struct {
	Name      string
	Label     string
	Aliases   []string
	Required  bool
	MaxLength int
	Kind      FieldKind
	Example   string
	Help      string
}

// HeaderRule maps a normalized header onto a field when Match reports true.
type HeaderRule struct {
	Field string
	Match func(header string) bool
}

// Schema is the full column contract of one import flow.
type Schema struct {
	Kind        domain.ImportKind
	Fields      []Field
	HeaderRules []HeaderRule
	// KeyFields form the natural key used for in-batch duplicate detection.
	KeyFields []string
	// ReferenceField must name an existing category, empty when unchecked.
	ReferenceField string
}

// Field returns the field with the given name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldNames returns field names in column order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Key builds the case-insensitive natural key from a value getter.
// Empty components are kept so ("", x) and ("y", x) are distinct keys.
func (s *Schema) Key(get func(field string) string) string {
	parts := make([]string, len(s.KeyFields))
	for i, f := range s.KeyFields {
		parts[i] = NormalizeValue(get(f))
	}
	return strings.Join(parts, "\x1f")
}

// NormalizeValue lowercases and trims a cell value for comparisons.
func NormalizeValue(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// NormalizeHeader lowercases, trims, and drops the trailing required marker.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.TrimSuffix(h, "*")
	return strings.TrimSpace(h)
}

// ForKind returns the schema for an import flow.
func ForKind(kind domain.ImportKind) (*Schema, error) {
	switch kind {
	case domain.ImportKindCategories:
		return Categories(), nil
	case domain.ImportKindAssets:
		return Assets(), nil
	case domain.ImportKindAssetUpdates:
		return AssetUpdates(), nil
	default:
		return nil, domain.ErrUnknownImportKind
	}
}

// ParseBool accepts the spellings people use for an active flag.
func ParseBool(v string) (value, ok bool) {
	switch NormalizeValue(v) {
	case "true", "yes", "y", "1", "active":
		return true, true
	case "false", "no", "n", "0", "inactive":
		return false, true
	default:
		return false, false
	}
}

func words(h string) []string {
	return strings.FieldsFunc(h, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func hasWord(h, w string) bool {
	for _, x := range words(h) {
		if x == w {
			return true
		}
	}
	return false
}

func containsAny(h string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(h, s) {
			return true
		}
	}
	return false
}
