package report

import (
	"fmt"
	"sort"

	"assetimport/internal/domain"
)

// Row statuses in a View.
const (
	StatusAdded    = "added"
	StatusValid    = "valid"
	StatusRejected = "rejected"
)

// View is the presentation model of an ImportResult.
type View struct {
	ID       string               `json:"id"`
	Kind     domain.ImportKind    `json:"kind"`
	FileName string               `json:"file_name"`
	Headline string               `json:"headline"`
	Summary  domain.ImportSummary `json:"summary"`
	Rows     []ViewRow            `json:"rows"`
}

// ViewRow is one spreadsheet row in the results table.
type ViewRow struct {
	RowNumber int              `json:"row_number"`
	Status    string           `json:"status"`
	Code      domain.ErrorCode `json:"code,omitempty"`
	Source    string           `json:"source,omitempty"`
	Message   string           `json:"message"`
	Data      map[string]any   `json:"data"`
}

// Render merges added and rejected rows into one table ordered by row number.
func Render(result *domain.ImportResult) View {
	status := StatusAdded
	if result.ValidateOnly {
		status = StatusValid
	}
	marker := acceptedMarker(result)

	rows := make([]ViewRow, 0, len(result.Added)+len(result.Rejected))
	for _, a := range result.Added {
		rows = append(rows, ViewRow{
			RowNumber: a.RowNumber,
			Status:    status,
			Message:   marker,
			Data:      a.Data,
		})
	}
	for _, r := range result.Rejected {
		rows = append(rows, ViewRow{
			RowNumber: r.RowNumber,
			Status:    StatusRejected,
			Code:      r.Code,
			Source:    string(r.Source),
			Message:   r.Display(),
			Data:      r.Data,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].RowNumber < rows[j].RowNumber })

	sum := result.Summary
	headline := fmt.Sprintf("%d of %d rows added (%d%%), %d rejected", sum.Added, sum.Total, sum.SuccessRate, sum.Rejected)
	if result.ValidateOnly {
		headline = fmt.Sprintf("%d of %d rows passed validation (%d%%), %d rejected", sum.Added, sum.Total, sum.SuccessRate, sum.Rejected)
	}

	return View{
		ID:       result.ID.String(),
		Kind:     result.Kind,
		FileName: result.FileName,
		Headline: headline,
		Summary:  sum,
		Rows:     rows,
	}
}
