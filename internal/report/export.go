package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"assetimport/internal/domain"
	"assetimport/internal/schema"
)

// Sheet names of the results workbook.
const (
	SheetSummary  = "Summary"
	SheetAdded    = "Successfully Added"
	SheetRejected = "Rejected"
)

// Markers written next to every accepted row.
const (
	AddedMarker = "✓ Added"
	// ValidMarker replaces AddedMarker for validate-only runs.
	ValidMarker = "✓ Valid"
)

func acceptedMarker(result *domain.ImportResult) string {
	if result.ValidateOnly {
		return ValidMarker
	}
	return AddedMarker
}

// ContentTypeXLSX is the MIME type of generated workbooks.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Filename returns the download name for a results workbook.
func Filename(kind domain.ImportKind, t time.Time) string {
	return fmt.Sprintf("%s_results_%s_%d.xlsx",
		kind.FileStem(), t.Format("2006-01-02"), t.Unix())
}

// Export writes the Summary, Successfully Added, and Rejected sheets.
func Export(result *domain.ImportResult, s *schema.Schema) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("renaming summary sheet: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	if err := writeSummarySheet(f, result, headerStyle); err != nil {
		return nil, err
	}
	if err := writeAddedSheet(f, result, s, headerStyle); err != nil {
		return nil, err
	}
	if err := writeRejectedSheet(f, result, s, headerStyle); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummarySheet(f *excelize.File, result *domain.ImportResult, headerStyle int) error {
	sum := result.Summary
	rows := [][]any{
		{"Import Summary"},
		{"Import Type", string(result.Kind)},
		{"File", result.FileName},
		{"Generated At", result.CreatedAt.UTC().Format(time.RFC3339)},
		{"Total Rows", sum.Total},
		{"Successfully Added", sum.Added},
		{"Rejected", sum.Rejected},
		{"Success Rate", fmt.Sprintf("%d%%", sum.SuccessRate)},
	}
	if result.ValidateOnly {
		rows = append(rows, []any{"Mode", "Validation only (nothing was submitted)"})
	}
	rows = append(rows, []any{}, []any{"Error Type", "Count"})
	breakdownHeader := len(rows)
	for _, code := range domain.ErrorCodes {
		if n := sum.Breakdown[code]; n > 0 {
			rows = append(rows, []any{code.Marker() + " " + code.Label(), n})
		}
	}

	if err := writeRows(f, SheetSummary, rows); err != nil {
		return err
	}
	if err := styleRow(f, SheetSummary, 1, 1, headerStyle); err != nil {
		return err
	}
	if err := styleRow(f, SheetSummary, breakdownHeader, 2, headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(SheetSummary, "A", "B", 28)
}

func writeAddedSheet(f *excelize.File, result *domain.ImportResult, s *schema.Schema, headerStyle int) error {
	if _, err := f.NewSheet(SheetAdded); err != nil {
		return fmt.Errorf("creating %s sheet: %w", SheetAdded, err)
	}

	header := []any{"Row"}
	for _, fld := range s.Fields {
		header = append(header, fld.Label)
	}
	header = append(header, "ID", "Status")
	rows := [][]any{header}

	marker := acceptedMarker(result)
	for _, a := range result.Added {
		row := []any{a.RowNumber}
		for _, fld := range s.Fields {
			row = append(row, cellValue(a.Data[fld.Name]))
		}
		row = append(row, a.ID, marker)
		rows = append(rows, row)
	}

	if err := writeRows(f, SheetAdded, rows); err != nil {
		return err
	}
	if err := styleRow(f, SheetAdded, 1, len(header), headerStyle); err != nil {
		return err
	}
	return setWidths(f, SheetAdded, len(header))
}

func writeRejectedSheet(f *excelize.File, result *domain.ImportResult, s *schema.Schema, headerStyle int) error {
	if _, err := f.NewSheet(SheetRejected); err != nil {
		return fmt.Errorf("creating %s sheet: %w", SheetRejected, err)
	}

	header := []any{"Row"}
	for _, name := range s.KeyFields {
		fld, _ := s.Field(name)
		header = append(header, fld.Label)
	}
	header = append(header, "Error Type", "Error", "Source")
	rows := [][]any{header}

	for _, r := range result.Rejected {
		row := []any{r.RowNumber}
		for _, name := range s.KeyFields {
			row = append(row, cellValue(r.Data[name]))
		}
		row = append(row, r.Code.Label(), r.Display(), string(r.Source))
		rows = append(rows, row)
	}

	if err := writeRows(f, SheetRejected, rows); err != nil {
		return err
	}
	if err := styleRow(f, SheetRejected, 1, len(header), headerStyle); err != nil {
		return err
	}
	if err := setWidths(f, SheetRejected, len(header)); err != nil {
		return err
	}
	errCol, _ := excelize.ColumnNumberToName(len(header) - 1)
	return f.SetColWidth(SheetRejected, errCol, errCol, 60)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i := range rows {
		if len(rows[i]) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func styleRow(f *excelize.File, sheet string, row, cols, style int) error {
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(cols, row)
	return f.SetCellStyle(sheet, first, last, style)
}

func setWidths(f *excelize.File, sheet string, cols int) error {
	last, _ := excelize.ColumnNumberToName(cols)
	return f.SetColWidth(sheet, "A", last, 20)
}

// cellValue keeps product codes and names as text.
func cellValue(v any) any {
	switch x := v.(type) {
	case nil:
		return ""
	case string, bool:
		return x
	default:
		return fmt.Sprint(x)
	}
}
