package validator

import (
	"context"
	"fmt"

	"assetimport/internal/domain"
	"assetimport/internal/schema"
)

// DuplicateInBatchRule rejects a row whose natural key was already claimed
// by an earlier row in the same pass. The first occurrence wins.
func DuplicateInBatchRule(s *schema.Schema) Rule {
	return &ruleFunc{
		key:  "batch.duplicate",
		name: "Batch: Duplicate Row Detection",
		fn: func(_ context.Context, pass *Pass, row domain.RawRow) *Violation {
			key := s.Key(row.Get)
			if first, seen := pass.seen[key]; seen && first != row.RowNumber {
				return &Violation{
					Code:    domain.CodeDuplicateInBatch,
					Message: "duplicate of an earlier row in this import",
				}
			}
			pass.seen[key] = row.RowNumber
			return nil
		},
	}
}

// CategoryExistsRule rejects rows referencing a category the inventory does
// not know. When the category list cannot be fetched the check is skipped.
func CategoryExistsRule(s *schema.Schema) Rule {
	field := s.ReferenceField
	return &ruleFunc{
		key:  "reference." + field,
		name: "Reference: Category Exists",
		fn: func(ctx context.Context, pass *Pass, row domain.RawRow) *Violation {
			name := row.Get(field)
			if name == "" {
				return nil
			}
			categories, ok := pass.categories(ctx)
			if !ok {
				return nil
			}
			if categories.Exists(name) {
				return nil
			}
			return &Violation{
				Code:    domain.CodeReferentialMiss,
				Message: fmt.Sprintf("Category '%s' does not exist", name),
			}
		},
	}
}
