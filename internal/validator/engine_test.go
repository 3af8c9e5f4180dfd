package validator_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"assetimport/internal/domain"
	"assetimport/internal/schema"
	"assetimport/internal/validator"
	"assetimport/mocks"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func categoryRow(n int, main, category string) domain.RawRow {
	return domain.RawRow{RowNumber: n, Cells: map[string]string{
		schema.FieldSubcategory: main,
		schema.FieldCategory:    category,
	}}
}

func assetRow(n int, nameEN, nameAR, category, code, active string) domain.RawRow {
	return domain.RawRow{RowNumber: n, Cells: map[string]string{
		schema.FieldNameEN:      nameEN,
		schema.FieldNameAR:      nameAR,
		schema.FieldCategory:    category,
		schema.FieldProductCode: code,
		schema.FieldIsActive:    active,
	}}
}

func knownCategories(names ...string) []domain.KnownCategory {
	out := make([]domain.KnownCategory, len(names))
	for i, n := range names {
		out[i] = domain.KnownCategory{ID: string(rune('a' + i)), Category: n}
	}
	return out
}

func TestEngine_CategoryRules(t *testing.T) {
	long := strings.Repeat("x", 256)

	tests := []struct {
		name     string
		row      domain.RawRow
		wantCode domain.ErrorCode
		wantMsg  string
	}{
		{"valid with main", categoryRow(2, "Electronics", "Laptops"), "", ""},
		{"valid without main", categoryRow(2, "", "Laptops"), "", ""},
		{"missing category", categoryRow(2, "Electronics", "  "), domain.CodeMissingRequired,
			"Category is required and cannot be empty"},
		{"category too long", categoryRow(2, "", long), domain.CodeTooLong,
			"Category exceeds maximum length of 255 characters"},
		{"main too long", categoryRow(2, long, "Laptops"), domain.CodeTooLong,
			"Main Category exceeds maximum length of 255 characters"},
		{"exactly 255 is fine", categoryRow(2, "", strings.Repeat("y", 255)), "", ""},
		{"invalid characters", categoryRow(2, "", "Tools & Parts"), domain.CodeInvalidCharacters,
			"Category contains invalid characters"},
		{"invalid characters in main", categoryRow(2, `<b>`, "Laptops"), domain.CodeInvalidCharacters,
			"Main Category contains invalid characters"},
		{"required beats length", categoryRow(2, long, ""), domain.CodeMissingRequired,
			"Category is required and cannot be empty"},
		{"length beats characters", categoryRow(2, "", long+"<"), domain.CodeTooLong,
			"Category exceeds maximum length of 255 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := validator.NewEngine(schema.Categories(), nil, testLogger())
			out := engine.Validate(context.Background(), []domain.RawRow{tt.row})

			if tt.wantCode == "" {
				require.Len(t, out.Valid, 1)
				assert.Empty(t, out.Rejected)
				return
			}
			require.Len(t, out.Rejected, 1)
			assert.Empty(t, out.Valid)
			rej := out.Rejected[0]
			assert.Equal(t, tt.wantCode, rej.Code)
			assert.Equal(t, tt.wantMsg, rej.Error)
			assert.Equal(t, domain.SourceLocal, rej.Source)
			assert.Equal(t, tt.row.RowNumber, rej.RowNumber)
		})
	}
}

func TestEngine_ValidRecordPayload(t *testing.T) {
	engine := validator.NewEngine(schema.Categories(), nil, testLogger())
	out := engine.Validate(context.Background(), []domain.RawRow{categoryRow(2, " Electronics ", "Laptops")})

	require.Len(t, out.Valid, 1)
	assert.Equal(t, 2, out.Valid[0].RowNumber)
	assert.Equal(t, map[string]any{"subcategory": "Electronics", "category": "Laptops"}, out.Valid[0].Values)
}

func TestEngine_EmptyMainCategoryIsPartOfKey(t *testing.T) {
	engine := validator.NewEngine(schema.Categories(), nil, testLogger())
	out := engine.Validate(context.Background(), []domain.RawRow{
		categoryRow(2, "Electronics", "Laptops"),
		categoryRow(3, "", "Laptops"),
	})

	require.Len(t, out.Valid, 2)
	assert.Empty(t, out.Rejected)
	assert.Equal(t, "Electronics", out.Valid[0].Values["subcategory"])
	assert.Equal(t, "", out.Valid[1].Values["subcategory"])
}

func TestEngine_FirstSeenWins(t *testing.T) {
	engine := validator.NewEngine(schema.Categories(), nil, testLogger())
	out := engine.Validate(context.Background(), []domain.RawRow{
		categoryRow(2, "", "Laptops"),
		categoryRow(3, "Electronics", "Phones"),
		categoryRow(4, "", "laptops "),
		categoryRow(5, "ELECTRONICS", "phones"),
	})

	require.Len(t, out.Valid, 2)
	assert.Equal(t, 2, out.Valid[0].RowNumber)
	assert.Equal(t, 3, out.Valid[1].RowNumber)

	require.Len(t, out.Rejected, 2)
	for i, want := range []int{4, 5} {
		assert.Equal(t, want, out.Rejected[i].RowNumber)
		assert.Equal(t, domain.CodeDuplicateInBatch, out.Rejected[i].Code)
		assert.Equal(t, "duplicate of an earlier row in this import", out.Rejected[i].Error)
	}
}

func TestEngine_InvalidRowDoesNotClaimKey(t *testing.T) {
	engine := validator.NewEngine(schema.Assets(), nil, testLogger())
	out := engine.Validate(context.Background(), []domain.RawRow{
		assetRow(2, "Desk", "مكتب", "Furniture", "123", ""),
		assetRow(3, "Desk", "مكتب", "Furniture", "123456", ""),
	})

	require.Len(t, out.Rejected, 1)
	assert.Equal(t, 2, out.Rejected[0].RowNumber)
	require.Len(t, out.Valid, 1)
	assert.Equal(t, 3, out.Valid[0].RowNumber)
}

func TestEngine_ProductCodeRules(t *testing.T) {
	tests := []struct {
		code     string
		wantCode domain.ErrorCode
		wantMsg  string
	}{
		{"12345", domain.CodeTooLong, "Product code must be 6-11 digits"},
		{"123456789012", domain.CodeTooLong, "Product code must be 6-11 digits"},
		{"12345A", domain.CodeInvalidCharacters, "Product code must contain only digits"},
		{"-123456", domain.CodeInvalidCharacters, "Product code must contain only digits"},
		{"123456", "", ""},
		{"12345678901", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			engine := validator.NewEngine(schema.Assets(), nil, testLogger())
			out := engine.Validate(context.Background(), []domain.RawRow{
				assetRow(2, "Desk", "مكتب", "Furniture", tt.code, "yes"),
			})
			if tt.wantCode == "" {
				require.Len(t, out.Valid, 1)
				assert.Equal(t, tt.code, out.Valid[0].Values[schema.FieldProductCode])
				return
			}
			require.Len(t, out.Rejected, 1)
			assert.Equal(t, tt.wantCode, out.Rejected[0].Code)
			assert.Equal(t, tt.wantMsg, out.Rejected[0].Error)
		})
	}
}

func TestEngine_ActiveFlag(t *testing.T) {
	engine := validator.NewEngine(schema.Assets(), nil, testLogger())
	out := engine.Validate(context.Background(), []domain.RawRow{
		assetRow(2, "Desk", "مكتب", "Furniture", "100001", ""),
		assetRow(3, "Chair", "كرسي", "Furniture", "100002", "Inactive"),
		assetRow(4, "Lamp", "مصباح", "Furniture", "100003", "maybe"),
	})

	require.Len(t, out.Valid, 2)
	assert.Equal(t, true, out.Valid[0].Values[schema.FieldIsActive])
	assert.Equal(t, false, out.Valid[1].Values[schema.FieldIsActive])

	require.Len(t, out.Rejected, 1)
	assert.Equal(t, domain.CodeInvalidCharacters, out.Rejected[0].Code)
	assert.Equal(t, "Active must be true or false", out.Rejected[0].Error)
}

func TestEngine_UpdatesKeyOnProductCode(t *testing.T) {
	engine := validator.NewEngine(schema.AssetUpdates(), nil, testLogger())
	out := engine.Validate(context.Background(), []domain.RawRow{
		assetRow(2, "Desk", "مكتب", "Furniture", "100001", ""),
		assetRow(3, "Desk v2", "مكتب 2", "Furniture", "100001", ""),
		assetRow(4, "Desk", "مكتب", "Furniture", "100002", ""),
	})

	require.Len(t, out.Rejected, 1)
	assert.Equal(t, 3, out.Rejected[0].RowNumber)
	assert.Equal(t, domain.CodeDuplicateInBatch, out.Rejected[0].Code)
}

func TestEngine_CategoryReference(t *testing.T) {
	lookup := new(mocks.MockCategoryLookup)
	lookup.On("ListCategories", mock.Anything).
		Return(knownCategories("Furniture", "Laptops"), nil).Once()

	engine := validator.NewEngine(schema.Assets(), lookup, testLogger())
	out := engine.Validate(context.Background(), []domain.RawRow{
		assetRow(2, "Desk", "مكتب", "furniture", "100001", ""),
		assetRow(3, "Phone", "هاتف", "Phones", "100002", ""),
		assetRow(4, "Laptop", "حاسوب", "LAPTOPS", "100003", ""),
	})

	require.Len(t, out.Valid, 2)
	require.Len(t, out.Rejected, 1)
	assert.Equal(t, 3, out.Rejected[0].RowNumber)
	assert.Equal(t, domain.CodeReferentialMiss, out.Rejected[0].Code)
	assert.Equal(t, "Category 'Phones' does not exist", out.Rejected[0].Error)
	lookup.AssertNumberOfCalls(t, "ListCategories", 1)
}

func TestEngine_CategoryLookupSkippedWhenNoRowSurvives(t *testing.T) {
	lookup := new(mocks.MockCategoryLookup)

	engine := validator.NewEngine(schema.Assets(), lookup, testLogger())
	out := engine.Validate(context.Background(), []domain.RawRow{
		assetRow(2, "", "مكتب", "Furniture", "100001", ""),
	})

	require.Len(t, out.Rejected, 1)
	lookup.AssertNotCalled(t, "ListCategories", mock.Anything)
}

func TestEngine_CategoryLookupFailureSkipsCheck(t *testing.T) {
	lookup := new(mocks.MockCategoryLookup)
	lookup.On("ListCategories", mock.Anything).Return(nil, errors.New("connection refused")).Once()

	engine := validator.NewEngine(schema.Assets(), lookup, testLogger())
	out := engine.Validate(context.Background(), []domain.RawRow{
		assetRow(2, "Desk", "مكتب", "Unknown", "100001", ""),
		assetRow(3, "Chair", "كرسي", "Unknown", "100002", ""),
	})

	assert.Len(t, out.Valid, 2)
	assert.Empty(t, out.Rejected)
	lookup.AssertNumberOfCalls(t, "ListCategories", 1)
}

func TestEngine_CategoriesNeverLookUpReferences(t *testing.T) {
	lookup := new(mocks.MockCategoryLookup)

	engine := validator.NewEngine(schema.Categories(), lookup, testLogger())
	out := engine.Validate(context.Background(), []domain.RawRow{categoryRow(2, "Nope", "Laptops")})

	assert.Len(t, out.Valid, 1)
	lookup.AssertNotCalled(t, "ListCategories", mock.Anything)
}

func TestEngine_PartitionIsCompleteAndRepeatable(t *testing.T) {
	rows := []domain.RawRow{
		categoryRow(2, "Electronics", "Laptops"),
		categoryRow(3, "", ""),
		categoryRow(4, "Electronics", "laptops"),
		categoryRow(5, "", strings.Repeat("z", 300)),
		categoryRow(6, "", "O'Brien"),
		categoryRow(7, "", "Chairs"),
	}
	engine := validator.NewEngine(schema.Categories(), nil, testLogger())

	first := engine.Validate(context.Background(), rows)
	assert.Equal(t, len(rows), len(first.Valid)+len(first.Rejected))

	second := engine.Validate(context.Background(), rows)
	assert.Equal(t, first, second)

	codes := make([]domain.ErrorCode, len(first.Rejected))
	for i, r := range first.Rejected {
		codes[i] = r.Code
	}
	assert.Equal(t, []domain.ErrorCode{
		domain.CodeMissingRequired,
		domain.CodeDuplicateInBatch,
		domain.CodeTooLong,
		domain.CodeInvalidCharacters,
	}, codes)
}

func TestEngine_EmptyInput(t *testing.T) {
	engine := validator.NewEngine(schema.Categories(), nil, testLogger())
	out := engine.Validate(context.Background(), nil)

	assert.Empty(t, out.Valid)
	assert.Empty(t, out.Rejected)
}

func TestRegistry_Order(t *testing.T) {
	engine := validator.NewEngine(schema.Assets(), nil, testLogger())
	rules := engine.Registry().All()
	require.NotEmpty(t, rules)

	assert.Equal(t, "required.name_en", rules[0].RuleKey())
	assert.Equal(t, "reference.category", rules[len(rules)-1].RuleKey())
	assert.NotNil(t, engine.Registry().Get("batch.duplicate"))
	assert.Nil(t, engine.Registry().Get("missing"))
}
