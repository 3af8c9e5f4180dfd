// Package validator partitions parsed rows into records ready for submission
// and local rejections.
package validator

import (
	"context"

	"assetimport/internal/domain"
)

// Rule is a single row check. Check returns nil when the row passes.
type Rule interface {
	RuleKey() string
	RuleName() string
	Check(ctx context.Context, pass *Pass, row domain.RawRow) *Violation
}

// Violation is the reason a row failed a rule.
type Violation struct {
	Code    domain.ErrorCode
	Message string
}

// Partition is the output of one validation pass.
// len(Valid)+len(Rejected) always equals the number of input rows.
type Partition struct {
	Valid    []domain.ValidatedRecord
	Rejected []domain.RejectionEntry
}

// ruleFunc adapts a function and its metadata to the Rule interface.
type ruleFunc struct {
	key  string
	name string
	fn   func(context.Context, *Pass, domain.RawRow) *Violation
}

func (r *ruleFunc) RuleKey() string  { return r.key }
func (r *ruleFunc) RuleName() string { return r.name }
func (r *ruleFunc) Check(ctx context.Context, pass *Pass, row domain.RawRow) *Violation {
	return r.fn(ctx, pass, row)
}
