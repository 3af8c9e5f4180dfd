package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RawRow is one spreadsheet data row keyed by logical field name.
// RowNumber is 1-based with the header on row 1.
type RawRow struct {
	RowNumber int               `json:"row_number"`
	Cells     map[string]string `json:"cells"`
}

// Get returns the trimmed cell value for a field.
func (r RawRow) Get(field string) string {
	return strings.TrimSpace(r.Cells[field])
}

// Data returns a copy of the row cells as a partial record.
func (r RawRow) Data() map[string]any {
	out := make(map[string]any, len(r.Cells))
	for k, v := range r.Cells {
		out[k] = v
	}
	return out
}

// ValidatedRecord is a row mapped onto the payload shape of the inventory API.
type ValidatedRecord struct {
	RowNumber int            `json:"row_number"`
	Values    map[string]any `json:"values"`
}

// RejectionEntry explains why a row did not make it into the inventory.
type RejectionEntry struct {
	RowNumber int             `json:"row_number"`
	Data      map[string]any  `json:"data"`
	Code      ErrorCode       `json:"code"`
	Error     string          `json:"error"`
	Source    RejectionSource `json:"source"`
}

// Display returns the error prefixed with its category marker.
func (r RejectionEntry) Display() string {
	return r.Code.Marker() + " " + r.Error
}

// AcceptedRecord is a row the inventory API created or updated.
type AcceptedRecord struct {
	RowNumber   int            `json:"row_number"`
	Data        map[string]any `json:"data"`
	ID          string         `json:"id,omitempty"`
	Synthesized bool           `json:"synthesized,omitempty"`
}

// ImportSummary holds the aggregate counts of one import run.
type ImportSummary struct {
	Total       int               `json:"total"`
	Added       int               `json:"added"`
	Rejected    int               `json:"rejected"`
	SuccessRate int               `json:"success_rate"`
	Breakdown   map[ErrorCode]int `json:"breakdown"`
}

// ImportResult is the outcome of one pipeline run.
type ImportResult struct {
	ID           uuid.UUID        `json:"id"`
	Kind         ImportKind       `json:"kind"`
	FileName     string           `json:"file_name"`
	ValidateOnly bool             `json:"validate_only"`
	CreatedAt    time.Time        `json:"created_at"`
	Summary      ImportSummary    `json:"summary"`
	Added        []AcceptedRecord `json:"added"`
	Rejected     []RejectionEntry `json:"rejected"`
}

// KnownCategory is a category already present in the inventory.
type KnownCategory struct {
	ID       string `json:"id"`
	Category string `json:"category"`
}
