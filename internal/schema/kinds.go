package schema

import (
	"strings"

	"assetimport/internal/domain"
)

// Field names shared by the import flows and the inventory API payloads.
const (
	FieldCategory    = "category"
	FieldSubcategory = "subcategory"
	FieldNameEN      = "name_en"
	FieldNameAR      = "name_ar"
	FieldProductCode = "product_code"
	FieldIsActive    = "is_active"
)

// Categories describes the category import sheet. The subcategory field
// holds the optional main (parent) category.
func Categories() *Schema {
	return &Schema{
		Kind: domain.ImportKindCategories,
		Fields: []Field{
			{
				Name:      FieldSubcategory,
				Label:     "Main Category",
				Aliases:   []string{"main category", "main_category", "parent category", "parent_category"},
				MaxLength: DefaultMaxLength,
				Example:   "Electronics",
				Help:      "Optional parent category. Leave blank for a top-level category.",
			},
			{
				Name:      FieldCategory,
				Label:     "Category",
				Aliases:   []string{"category", "category name", "category_name"},
				Required:  true,
				MaxLength: DefaultMaxLength,
				Example:   "Laptops",
				Help:      "Category name. Must be unique together with its main category.",
			},
		},
		HeaderRules: []HeaderRule{
			{Field: FieldSubcategory, Match: func(h string) bool {
				return strings.Contains(h, "categ") && containsAny(h, "main", "parent")
			}},
			{Field: FieldCategory, Match: func(h string) bool {
				return strings.Contains(h, "categ") && !containsAny(h, "main", "parent")
			}},
		},
		KeyFields: []string{FieldCategory, FieldSubcategory},
	}
}

// Assets describes the asset creation sheet.
func Assets() *Schema {
	return &Schema{
		Kind:           domain.ImportKindAssets,
		Fields:         assetFields(),
		HeaderRules:    assetHeaderRules(),
		KeyFields:      []string{FieldNameEN, FieldNameAR},
		ReferenceField: FieldCategory,
	}
}

// AssetUpdates describes the asset update sheet. Rows are matched to
// existing assets by product code.
func AssetUpdates() *Schema {
	return &Schema{
		Kind:           domain.ImportKindAssetUpdates,
		Fields:         assetFields(),
		HeaderRules:    assetHeaderRules(),
		KeyFields:      []string{FieldProductCode},
		ReferenceField: FieldCategory,
	}
}

func assetFields() []Field {
	return []Field{
		{
			Name:      FieldNameEN,
			Label:     "Name (English)",
			Aliases:   []string{"name_en", "name en", "english name", "name (english)", "name"},
			Required:  true,
			MaxLength: DefaultMaxLength,
			Example:   "Dell Latitude 5440",
			Help:      "Asset name in English.",
		},
		{
			Name:      FieldNameAR,
			Label:     "Name (Arabic)",
			Aliases:   []string{"name_ar", "name ar", "arabic name", "name (arabic)"},
			Required:  true,
			MaxLength: DefaultMaxLength,
			Example:   "ديل لاتيتيود 5440",
			Help:      "Asset name in Arabic.",
		},
		{
			Name:      FieldCategory,
			Label:     "Category",
			Aliases:   []string{"category", "category name", "category_name"},
			Required:  true,
			MaxLength: DefaultMaxLength,
			Example:   "Laptops",
			Help:      "Existing category name. Import categories first.",
		},
		{
			Name:      FieldProductCode,
			Label:     "Product Code",
			Aliases:   []string{"product_code", "product code", "code", "barcode"},
			Required:  true,
			MaxLength: DefaultMaxLength,
			Kind:      KindProductCode,
			Example:   "100200300",
			Help:      "6 to 11 digits. Format the column as text to keep leading zeros.",
		},
		{
			Name:      FieldIsActive,
			Label:     "Active",
			Aliases:   []string{"is_active", "is active", "active", "status"},
			MaxLength: DefaultMaxLength,
			Kind:      KindBoolean,
			Example:   "true",
			Help:      "true/false, yes/no or active/inactive. Defaults to true.",
		},
	}
}

func assetHeaderRules() []HeaderRule {
	return []HeaderRule{
		{Field: FieldNameEN, Match: func(h string) bool {
			return strings.Contains(h, "english") || (hasWord(h, "name") && hasWord(h, "en"))
		}},
		{Field: FieldNameAR, Match: func(h string) bool {
			return strings.Contains(h, "arabic") || (hasWord(h, "name") && hasWord(h, "ar"))
		}},
		{Field: FieldProductCode, Match: func(h string) bool {
			return (strings.Contains(h, "product") && strings.Contains(h, "code")) || strings.Contains(h, "barcode")
		}},
		{Field: FieldCategory, Match: func(h string) bool {
			return strings.Contains(h, "categ")
		}},
		{Field: FieldIsActive, Match: func(h string) bool {
			return strings.Contains(h, "active") || strings.Contains(h, "status")
		}},
	}
}
