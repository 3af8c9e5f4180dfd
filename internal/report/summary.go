// Package report aggregates pipeline output into an ImportResult and renders
// it as a workbook, a template, or a table view.
package report

import (
	"math"
	"sort"

	"assetimport/internal/domain"
)

// Summarize merges accepted and rejected rows into a result sorted by row number.
// ID, kind, and file metadata are left for the caller.
func Summarize(accepted []domain.AcceptedRecord, rejected []domain.RejectionEntry) *domain.ImportResult {
	added := make([]domain.AcceptedRecord, len(accepted))
	copy(added, accepted)
	sort.SliceStable(added, func(i, j int) bool { return added[i].RowNumber < added[j].RowNumber })

	rej := make([]domain.RejectionEntry, len(rejected))
	copy(rej, rejected)
	sort.SliceStable(rej, func(i, j int) bool { return rej[i].RowNumber < rej[j].RowNumber })

	breakdown := make(map[domain.ErrorCode]int)
	for i := range rej {
		breakdown[rej[i].Code]++
	}

	total := len(added) + len(rej)
	return &domain.ImportResult{
		Summary: domain.ImportSummary{
			Total:       total,
			Added:       len(added),
			Rejected:    len(rej),
			SuccessRate: SuccessRate(len(added), total),
			Breakdown:   breakdown,
		},
		Added:    added,
		Rejected: rej,
	}
}

// SuccessRate returns round(100*added/total), or 0 for an empty import.
func SuccessRate(added, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(added) / float64(total)))
}
