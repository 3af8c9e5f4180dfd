package reconciler_test

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
	"assetimport/internal/reconciler"
	"assetimport/internal/schema"
	"assetimport/mocks"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func categoryRecord(n int, main, category string) domain.ValidatedRecord {
	return domain.ValidatedRecord{RowNumber: n, Values: map[string]any{
		schema.FieldSubcategory: main,
		schema.FieldCategory:    category,
	}}
}

func assetRecord(n int, nameEN, nameAR, code string) domain.ValidatedRecord {
	return domain.ValidatedRecord{RowNumber: n, Values: map[string]any{
		schema.FieldNameEN:      nameEN,
		schema.FieldNameAR:      nameAR,
		schema.FieldCategory:    "Furniture",
		schema.FieldProductCode: code,
		schema.FieldIsActive:    true,
	}}
}

func newCategoryReconciler(sub *mocks.MockBulkSubmitter, workaround bool) *reconciler.Reconciler {
	return reconciler.New(sub, schema.Categories(),
		reconciler.Options{EmptyMainCategoryWorkaround: workaround}, testLogger())
}

func rowNumbers(out reconciler.Outcome) (accepted, rejected []int) {
	for _, a := range out.Accepted {
		accepted = append(accepted, a.RowNumber)
	}
	for _, r := range out.Rejected {
		rejected = append(rejected, r.RowNumber)
	}
	return accepted, rejected
}

func TestReconcile_EmptyInputMakesNoCall(t *testing.T) {
	sub := new(mocks.MockBulkSubmitter)

	out := newCategoryReconciler(sub, true).Reconcile(context.Background(), nil)

	assert.Empty(t, out.Accepted)
	assert.Empty(t, out.Rejected)
	sub.AssertNotCalled(t, "BulkSubmit", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcile_TransportFailureRejectsWholeBatch(t *testing.T) {
	sub := new(mocks.MockBulkSubmitter)
	sub.On("BulkSubmit", mock.Anything, domain.ImportKindCategories, mock.Anything).
		Return(nil, errors.New("request failed with status 500")).Once()

	records := []domain.ValidatedRecord{
		categoryRecord(2, "", "Laptops"),
		categoryRecord(3, "", "Phones"),
		categoryRecord(4, "Electronics", "Tablets"),
	}
	out := newCategoryReconciler(sub, true).Reconcile(context.Background(), records)

	assert.Empty(t, out.Accepted)
	require.Len(t, out.Rejected, 3)
	for i, r := range out.Rejected {
		assert.Equal(t, records[i].RowNumber, r.RowNumber)
		assert.Equal(t, domain.CodeServerError, r.Code)
		assert.Equal(t, domain.SourceRemote, r.Source)
		assert.Equal(t, "Server error: request failed with status 500", r.Error)
	}
	sub.AssertExpectations(t)
}

func TestReconcile_SendsWholeBatchOnce(t *testing.T) {
	sub := new(mocks.MockBulkSubmitter)
	sub.On("BulkSubmit", mock.Anything, domain.ImportKindCategories, []map[string]any{
		{"subcategory": "", "category": "Laptops"},
		{"subcategory": "Electronics", "category": "Phones"},
	}).Return(`{"added_categories":[]}`, nil).Once()

	newCategoryReconciler(sub, true).Reconcile(context.Background(), []domain.ValidatedRecord{
		categoryRecord(2, "", "Laptops"),
		categoryRecord(3, "Electronics", "Phones"),
	})

	sub.AssertExpectations(t)
}

func TestReconcile_CategoriesShape(t *testing.T) {
	sub := new(mocks.MockBulkSubmitter)
	sub.On("BulkSubmit", mock.Anything, mock.Anything, mock.Anything).Return(`{
		"summary": {"total": 3, "added": 1, "rejected": 2},
		"added_categories": [{"id": 41, "category": "Laptops", "subcategory": "Electronics"}],
		"rejected_categories": [
			{"category_data": {"category": "Chairs", "subcategory": ""}, "errors": ["Category 'Chairs' already exists"]},
			{"category_data": {"category": "Desks", "subcategory": "Office"}, "errors": ["Parent category 'Office' does not exist"]}
		]
	}`, nil)

	out := newCategoryReconciler(sub, true).Reconcile(context.Background(), []domain.ValidatedRecord{
		categoryRecord(2, "Office", "Desks"),
		categoryRecord(3, "Electronics", "Laptops"),
		categoryRecord(4, "", "Chairs"),
	})

	require.Len(t, out.Accepted, 1)
	assert.Equal(t, 3, out.Accepted[0].RowNumber)
	assert.Equal(t, "41", out.Accepted[0].ID)
	assert.False(t, out.Accepted[0].Synthesized)

	require.Len(t, out.Rejected, 2)
	assert.Equal(t, 2, out.Rejected[0].RowNumber)
	assert.Equal(t, domain.CodeReferentialMiss, out.Rejected[0].Code)
	assert.Equal(t, "Parent category 'Office' does not exist", out.Rejected[0].Error)
	assert.Equal(t, 4, out.Rejected[1].RowNumber)
	assert.Equal(t, domain.CodeAlreadyExists, out.Rejected[1].Code)
	assert.Equal(t, domain.SourceRemote, out.Rejected[1].Source)
}

func TestReconcile_EmptyMainCategoryFalsePositive(t *testing.T) {
	body := `{"rejected_categories": [{"category_data": {"category": "X", "subcategory": ""},
		"errors": ["Category '' is duplicated in this batch"]}]}`

	t.Run("reclassified as accepted", func(t *testing.T) {
		sub := new(mocks.MockBulkSubmitter)
		sub.On("BulkSubmit", mock.Anything, mock.Anything, mock.Anything).Return(body, nil)

		out := newCategoryReconciler(sub, true).Reconcile(context.Background(),
			[]domain.ValidatedRecord{categoryRecord(2, "", "X")})

		assert.Empty(t, out.Rejected)
		require.Len(t, out.Accepted, 1)
		assert.Equal(t, 2, out.Accepted[0].RowNumber)
		assert.True(t, out.Accepted[0].Synthesized)
		assert.True(t, strings.HasPrefix(out.Accepted[0].ID, "synthetic-"))
	})

	t.Run("surfaced when workaround disabled", func(t *testing.T) {
		sub := new(mocks.MockBulkSubmitter)
		sub.On("BulkSubmit", mock.Anything, mock.Anything, mock.Anything).Return(body, nil)

		out := newCategoryReconciler(sub, false).Reconcile(context.Background(),
			[]domain.ValidatedRecord{categoryRecord(2, "", "X")})

		require.Len(t, out.Rejected, 1)
		assert.Equal(t, domain.CodeDuplicateInBatch, out.Rejected[0].Code)
	})

	t.Run("not applied when another reason is present", func(t *testing.T) {
		sub := new(mocks.MockBulkSubmitter)
		sub.On("BulkSubmit", mock.Anything, mock.Anything, mock.Anything).Return(`{"rejected_categories": [
			{"category_data": {"category": "X", "subcategory": ""},
			 "errors": ["Category '' is duplicated in this batch", "Category 'X' already exists"]}]}`, nil)

		out := newCategoryReconciler(sub, true).Reconcile(context.Background(),
			[]domain.ValidatedRecord{categoryRecord(2, "", "X")})

		require.Len(t, out.Rejected, 1)
		assert.Equal(t, domain.CodeDuplicateInBatch, out.Rejected[0].Code)
		assert.Equal(t, "Category '' is duplicated in this batch; Category 'X' already exists", out.Rejected[0].Error)
	})
}

func TestReconcile_AssetsShapeMatchesByAssetName(t *testing.T) {
	sub := new(mocks.MockBulkSubmitter)
	sub.On("BulkSubmit", mock.Anything, domain.ImportKindAssets, mock.Anything).Return(`{
		"added_assets": [{"id": "a-1", "name_en": "Desk", "name_ar": "مكتب"}],
		"rejected_assets": [{"asset_name": "Chair", "errors": ["Product code 100002 already exists"]}]
	}`, nil)

	r := reconciler.New(sub, schema.Assets(), reconciler.Options{}, testLogger())
	out := r.Reconcile(context.Background(), []domain.ValidatedRecord{
		assetRecord(2, "Desk", "مكتب", "100001"),
		assetRecord(3, "Chair", "كرسي", "100002"),
	})

	require.Len(t, out.Accepted, 1)
	assert.Equal(t, "a-1", out.Accepted[0].ID)
	require.Len(t, out.Rejected, 1)
	assert.Equal(t, 3, out.Rejected[0].RowNumber)
	assert.Equal(t, domain.CodeAlreadyExists, out.Rejected[0].Code)
	assert.Equal(t, "Chair", out.Rejected[0].Data[schema.FieldNameEN])
}

func TestReconcile_UpdatesShapeMatchesByProductCode(t *testing.T) {
	sub := new(mocks.MockBulkSubmitter)
	sub.On("BulkSubmit", mock.Anything, domain.ImportKindAssetUpdates, mock.Anything).Return(`{
		"updated_assets": [{"id": 7, "product_code": "100001"}],
		"rejected_assets": [{"asset_data": {"product_code": 100009}, "error": "Asset with product code 100009 not found"}]
	}`, nil)

	r := reconciler.New(sub, schema.AssetUpdates(), reconciler.Options{EmptyMainCategoryWorkaround: true}, testLogger())
	out := r.Reconcile(context.Background(), []domain.ValidatedRecord{
		assetRecord(2, "Desk", "مكتب", "100001"),
		assetRecord(3, "Chair", "كرسي", "100009"),
	})

	require.Len(t, out.Accepted, 1)
	assert.Equal(t, "7", out.Accepted[0].ID)
	require.Len(t, out.Rejected, 1)
	assert.Equal(t, 3, out.Rejected[0].RowNumber)
	assert.Equal(t, domain.CodeReferentialMiss, out.Rejected[0].Code)
}

func TestReconcile_FallbackShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare array", `[{"id": 1, "category": "Laptops"}, {"id": 2, "category": "Phones"}]`},
		{"data property", `{"status": "ok", "data": [{"id": 1, "category": "Laptops"}]}`},
		{"no items at all", `{"message": "created"}`},
		{"empty body", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := new(mocks.MockBulkSubmitter)
			sub.On("BulkSubmit", mock.Anything, mock.Anything, mock.Anything).Return(tt.body, nil)

			out := newCategoryReconciler(sub, true).Reconcile(context.Background(), []domain.ValidatedRecord{
				categoryRecord(2, "", "Laptops"),
				categoryRecord(3, "", "Phones"),
			})

			accepted, rejected := rowNumbers(out)
			assert.Equal(t, []int{2, 3}, accepted)
			assert.Empty(t, rejected)
		})
	}
}

func TestReconcile_FailureBodyRejectsWholeBatch(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"errors list", `{"success": false, "errors": ["database unavailable"]}`, "Server error: database unavailable"},
		{"errors string", `{"errors": "quota exceeded"}`, "Server error: quota exceeded"},
		{"success false with message", `{"success": false, "message": "maintenance window"}`, "Server error: maintenance window"},
		{"success false only", `{"success": false}`, "Server error: bulk submit reported failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := new(mocks.MockBulkSubmitter)
			sub.On("BulkSubmit", mock.Anything, mock.Anything, mock.Anything).Return(tt.body, nil)

			out := newCategoryReconciler(sub, true).Reconcile(context.Background(), []domain.ValidatedRecord{
				categoryRecord(2, "", "Laptops"),
				categoryRecord(3, "", "Phones"),
			})

			accepted, rejected := rowNumbers(out)
			assert.Empty(t, accepted)
			assert.Equal(t, []int{2, 3}, rejected)
			for _, r := range out.Rejected {
				assert.Equal(t, domain.CodeServerError, r.Code)
				assert.Equal(t, tt.wantErr, r.Error)
			}
		})
	}
}

func TestReconcile_ArrayOfStringsIsServerError(t *testing.T) {
	sub := new(mocks.MockBulkSubmitter)
	sub.On("BulkSubmit", mock.Anything, mock.Anything, mock.Anything).Return(`{"problems": ["row 2 failed", "row 3 failed"]}`, nil)

	out := newCategoryReconciler(sub, true).Reconcile(context.Background(), []domain.ValidatedRecord{
		categoryRecord(2, "", "Laptops"),
	})

	assert.Empty(t, out.Accepted)
	require.Len(t, out.Rejected, 1)
	assert.Equal(t, domain.CodeServerError, out.Rejected[0].Code)
	assert.Contains(t, out.Rejected[0].Error, "non-object items")
}

func TestReconcile_UndecodableBodyIsServerError(t *testing.T) {
	sub := new(mocks.MockBulkSubmitter)
	sub.On("BulkSubmit", mock.Anything, mock.Anything, mock.Anything).Return(`<html>Bad Gateway</html>`, nil)

	out := newCategoryReconciler(sub, true).Reconcile(context.Background(), []domain.ValidatedRecord{
		categoryRecord(2, "", "Laptops"),
	})

	require.Len(t, out.Rejected, 1)
	assert.Equal(t, domain.CodeServerError, out.Rejected[0].Code)
	assert.True(t, strings.HasPrefix(out.Rejected[0].Error, "Server error: "))
}

func TestReconcile_DuplicateKeysClaimRecordsInOrder(t *testing.T) {
	sub := new(mocks.MockBulkSubmitter)
	sub.On("BulkSubmit", mock.Anything, mock.Anything, mock.Anything).Return(`{
		"added_categories": [{"id": 1, "category": "Laptops"}],
		"rejected_categories": [{"category_data": {"category": "laptops"}, "errors": ["something odd happened"]}]
	}`, nil)

	out := newCategoryReconciler(sub, true).Reconcile(context.Background(), []domain.ValidatedRecord{
		categoryRecord(2, "", "Laptops"),
		categoryRecord(5, "", "Laptops"),
	})

	accepted, rejected := rowNumbers(out)
	assert.Equal(t, []int{2}, accepted)
	assert.Equal(t, []int{5}, rejected)
	assert.Equal(t, domain.CodeUnknown, out.Rejected[0].Code)
	assert.Equal(t, "something odd happened", out.Rejected[0].Error)
}

func TestReconcile_UnmatchedItemsAreIgnored(t *testing.T) {
	sub := new(mocks.MockBulkSubmitter)
	sub.On("BulkSubmit", mock.Anything, mock.Anything, mock.Anything).Return(`{
		"rejected_categories": [{"category_data": {"category": "Ghost"}, "errors": ["Category 'Ghost' already exists"]}, "oops"]
	}`, nil)

	out := newCategoryReconciler(sub, true).Reconcile(context.Background(), []domain.ValidatedRecord{
		categoryRecord(2, "", "Laptops"),
	})

	accepted, rejected := rowNumbers(out)
	assert.Equal(t, []int{2}, accepted)
	assert.Empty(t, rejected)
}

func TestReconcile_EveryRecordClassifiedOnce(t *testing.T) {
	sub := new(mocks.MockBulkSubmitter)
	sub.On("BulkSubmit", mock.Anything, mock.Anything, mock.Anything).Return(`{
		"added_categories": [{"category": "A"}, {"category": "A"}, {"category": "B"}],
		"rejected_categories": [{"category_data": {"category": "B"}, "errors": ["Category 'B' already exists"]}]
	}`, nil)

	records := []domain.ValidatedRecord{
		categoryRecord(2, "", "A"),
		categoryRecord(3, "", "B"),
		categoryRecord(4, "", "C"),
	}
	out := newCategoryReconciler(sub, true).Reconcile(context.Background(), records)

	assert.Equal(t, len(records), len(out.Accepted)+len(out.Rejected))
	seen := map[int]bool{}
	for _, a := range out.Accepted {
		assert.False(t, seen[a.RowNumber])
		seen[a.RowNumber] = true
	}
	for _, r := range out.Rejected {
		assert.False(t, seen[r.RowNumber])
		seen[r.RowNumber] = true
	}
}
