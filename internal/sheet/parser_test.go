package sheet_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetimport/internal/domain"
	"assetimport/internal/schema"
	"assetimport/internal/sheet"
	"assetimport/internal/sheet/sheettest"
)

func TestParse_CategoriesTemplateHeaders(t *testing.T) {
	data := sheettest.Workbook(t, [][]any{
		{"Main Category", "Category *"},
		{"Electronics", "Laptops"},
		{"", "Furniture"},
	})

	rows, err := sheet.Parse(data, schema.Categories())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].RowNumber)
	assert.Equal(t, "Electronics", rows[0].Get(schema.FieldSubcategory))
	assert.Equal(t, "Laptops", rows[0].Get(schema.FieldCategory))
	assert.Equal(t, 3, rows[1].RowNumber)
	assert.Equal(t, "", rows[1].Get(schema.FieldSubcategory))
	assert.Equal(t, "Furniture", rows[1].Get(schema.FieldCategory))
}

func TestParse_SkipsBlankRowsKeepsRowNumbers(t *testing.T) {
	data := sheettest.Workbook(t, [][]any{
		{"Main Category", "Category"},
		{"", ""},
		{"  ", "Chairs"},
		{"Electronics", ""},
	})

	rows, err := sheet.Parse(data, schema.Categories())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 3, rows[0].RowNumber)
	assert.Equal(t, "Chairs", rows[0].Get(schema.FieldCategory))
	// only the optional field is filled; kept for the validator to reject
	assert.Equal(t, 4, rows[1].RowNumber)
	assert.Equal(t, "", rows[1].Get(schema.FieldCategory))
}

func TestParse_ErrorCases(t *testing.T) {
	tests := []struct {
		name string
		data func(t *testing.T) []byte
	}{
		{"not a spreadsheet", func(*testing.T) []byte { return []byte("name,category\nx,y\n") }},
		{"no rows", func(t *testing.T) []byte { return sheettest.Workbook(t, nil) }},
		{"header only", func(t *testing.T) []byte {
			return sheettest.Workbook(t, [][]any{{"Main Category", "Category"}})
		}},
		{"single unknown column", func(t *testing.T) []byte {
			return sheettest.Workbook(t, [][]any{{"Description"}, {"something"}})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := sheet.Parse(tt.data(t), schema.Categories())
			require.Error(t, err)
			assert.Nil(t, rows)
			assert.True(t, errors.Is(err, domain.ErrParse))

			var perr *domain.ParseError
			assert.True(t, errors.As(err, &perr))
		})
	}
}

func TestParse_AssetProductCodeKeepsDigits(t *testing.T) {
	data := sheettest.Workbook(t, [][]any{
		{"Name (English) *", "Name (Arabic) *", "Category *", "Product Code *", "Active"},
		{"Desk", "مكتب", "Furniture", 12345678901, true},
	})

	rows, err := sheet.Parse(data, schema.Assets())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "12345678901", rows[0].Get(schema.FieldProductCode))
	assert.Equal(t, "مكتب", rows[0].Get(schema.FieldNameAR))
	_, ok := schema.ParseBool(rows[0].Get(schema.FieldIsActive))
	assert.True(t, ok)
}

func TestResolveColumns(t *testing.T) {
	tests := []struct {
		name    string
		schema  *schema.Schema
		headers []string
		want    map[string]int
		wantErr bool
	}{
		{
			name:    "exact aliases",
			schema:  schema.Categories(),
			headers: []string{"parent_category", "category_name"},
			want:    map[string]int{schema.FieldSubcategory: 0, schema.FieldCategory: 1},
		},
		{
			name:    "keyword heuristics in any order",
			schema:  schema.Categories(),
			headers: []string{"Category Title", "Main Category Group"},
			want:    map[string]int{schema.FieldSubcategory: 1, schema.FieldCategory: 0},
		},
		{
			name:    "positional fallback",
			schema:  schema.Categories(),
			headers: []string{"Parent", "Name"},
			want:    map[string]int{schema.FieldSubcategory: 0, schema.FieldCategory: 1},
		},
		{
			name:    "positional fills only what is missing",
			schema:  schema.Categories(),
			headers: []string{"Main Category", "Label"},
			want:    map[string]int{schema.FieldSubcategory: 0, schema.FieldCategory: 1},
		},
		{
			name:    "optional column absent",
			schema:  schema.Categories(),
			headers: []string{"Category"},
			want:    map[string]int{schema.FieldCategory: 0},
		},
		{
			name:    "asset keywords",
			schema:  schema.Assets(),
			headers: []string{"English Title", "Arabic Title", "Asset Category", "Barcode", "Status"},
			want: map[string]int{
				schema.FieldNameEN:      0,
				schema.FieldNameAR:      1,
				schema.FieldCategory:    2,
				schema.FieldProductCode: 3,
				schema.FieldIsActive:    4,
			},
		},
		{
			name:    "asset required column missing",
			schema:  schema.Assets(),
			headers: []string{"Name (English)"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sheet.ResolveColumns(tt.headers, tt.schema)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrParse))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
