// Package sheet reads uploaded workbooks into raw rows keyed by logical field.
package sheet

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"assetimport/internal/domain"
	"assetimport/internal/schema"
)

// Parse decodes an xlsx payload and maps the first sheet onto the schema.
// Row 1 is the header. Rows blank across every resolved column are skipped.
func Parse(data []byte, s *schema.Schema) ([]domain.RawRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, domain.NewParseError("file could not be read as a spreadsheet", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.NewParseError("workbook has no sheets", nil)
	}

	excelRows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, domain.NewParseError("failed to read sheet "+sheets[0], err)
	}
	if len(excelRows) == 0 {
		return nil, domain.NewParseError("spreadsheet is empty", nil)
	}
	if len(excelRows) < 2 {
		return nil, domain.NewParseError("file must have a header row and at least one data row", nil)
	}

	columns, err := ResolveColumns(excelRows[0], s)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.RawRow, 0, len(excelRows)-1)
	for idx, excelRow := range excelRows[1:] {
		cells := make(map[string]string, len(columns))
		blank := true
		for field, col := range columns {
			v := cellVal(excelRow, col)
			cells[field] = v
			if v != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		rows = append(rows, domain.RawRow{RowNumber: idx + 2, Cells: cells})
	}
	return rows, nil
}

// ResolveColumns maps schema fields to column indexes. Exact alias matches
// win, then the schema's ordered header rules, then positional assignment of
// the remaining columns when a required field is still missing.
func ResolveColumns(headerRow []string, s *schema.Schema) (map[string]int, error) {
	headers := make([]string, len(headerRow))
	for i, h := range headerRow {
		headers[i] = schema.NormalizeHeader(h)
	}

	columns := make(map[string]int, len(s.Fields))
	claimed := make(map[int]bool, len(headers))
	assign := func(field string, col int) {
		columns[field] = col
		claimed[col] = true
	}

	// (a) exact
	for _, f := range s.Fields {
		names := append([]string{schema.NormalizeHeader(f.Label)}, f.Aliases...)
		for col, h := range headers {
			if claimed[col] || h == "" {
				continue
			}
			if matchesAny(h, names) {
				assign(f.Name, col)
				break
			}
		}
	}

	// (b) keyword rules
	for _, rule := range s.HeaderRules {
		if _, ok := columns[rule.Field]; ok {
			continue
		}
		for col, h := range headers {
			if claimed[col] || h == "" {
				continue
			}
			if rule.Match(h) {
				assign(rule.Field, col)
				break
			}
		}
	}

	// (c) positional
	if missingRequired(columns, s) != nil && len(headers) >= 2 {
		next := 0
		for _, f := range s.Fields {
			if _, ok := columns[f.Name]; ok {
				continue
			}
			for next < len(headers) && claimed[next] {
				next++
			}
			if next >= len(headers) {
				break
			}
			assign(f.Name, next)
		}
	}

	if missing := missingRequired(columns, s); missing != nil {
		return nil, domain.NewParseError(
			fmt.Sprintf("required column(s) not found: %s", strings.Join(missing, ", ")), nil)
	}
	return columns, nil
}

func matchesAny(h string, names []string) bool {
	for _, n := range names {
		if h == n {
			return true
		}
	}
	return false
}

func missingRequired(columns map[string]int, s *schema.Schema) []string {
	var missing []string
	for _, f := range s.Fields {
		if !f.Required {
			continue
		}
		if _, ok := columns[f.Name]; !ok {
			missing = append(missing, f.Label)
		}
	}
	return missing
}

// cellVal safely returns the trimmed cell value at index i, or "".
func cellVal(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}
