package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"assetimport/internal/domain"
	"assetimport/internal/schema"
)

// SheetInstructions documents the template columns.
const SheetInstructions = "Instructions"

var templateSheetNames = map[domain.ImportKind]string{
	domain.ImportKindCategories:   "Categories",
	domain.ImportKindAssets:       "Assets",
	domain.ImportKindAssetUpdates: "Asset Updates",
}

// TemplateFilename returns the download name for an import template.
func TemplateFilename(kind domain.ImportKind) string {
	return kind.FileStem() + "_import_template.xlsx"
}

// TemplateHeaders returns the header row the parser expects, with required
// columns marked by a trailing " *".
func TemplateHeaders(s *schema.Schema) []string {
	headers := make([]string, len(s.Fields))
	for i, fld := range s.Fields {
		headers[i] = fld.Label
		if fld.Required {
			headers[i] += " *"
		}
	}
	return headers
}

// Template builds a header-only workbook plus an Instructions sheet.
func Template(s *schema.Schema) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheetName := templateSheetNames[s.Kind]
	if sheetName == "" {
		sheetName = "Import"
	}
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("renaming template sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}
	requiredStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("creating required style: %w", err)
	}
	textStyle, err := f.NewStyle(&excelize.Style{NumFmt: 49})
	if err != nil {
		return nil, fmt.Errorf("creating text style: %w", err)
	}

	for i, header := range TemplateHeaders(s) {
		fld := s.Fields[i]
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, err
		}
		style := headerStyle
		if fld.Required {
			style = requiredStyle
		}
		if err := f.SetCellStyle(sheetName, cell, cell, style); err != nil {
			return nil, err
		}

		colName, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheetName, colName, colName, 24); err != nil {
			return nil, err
		}
		// Product codes must stay text so leading zeros survive.
		if fld.Kind == schema.KindProductCode {
			if err := f.SetColStyle(sheetName, colName, textStyle); err != nil {
				return nil, err
			}
			if err := f.SetCellStyle(sheetName, cell, cell, style); err != nil {
				return nil, err
			}
		}
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return nil, err
	}

	if err := writeInstructions(f, s, sheetName, headerStyle); err != nil {
		return nil, err
	}

	idx, _ := f.GetSheetIndex(sheetName)
	f.SetActiveSheet(idx)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing template: %w", err)
	}
	return buf.Bytes(), nil
}

func writeInstructions(f *excelize.File, s *schema.Schema, sheetName string, headerStyle int) error {
	if _, err := f.NewSheet(SheetInstructions); err != nil {
		return err
	}
	rows := [][]any{
		{fmt.Sprintf("%s Import Instructions", sheetName)},
		{fmt.Sprintf("Fill in the %q sheet starting on row 2. Columns marked * are required.", sheetName)},
		{fmt.Sprintf("Text may not exceed %d characters or contain any of %s", schema.DefaultMaxLength, schema.ForbiddenChars)},
		{},
		{"Column", "Description", "Required", "Example"},
	}
	for _, fld := range s.Fields {
		required := "Optional"
		if fld.Required {
			required = "Required"
		}
		rows = append(rows, []any{fld.Label, fld.Help, required, fld.Example})
	}
	if err := writeRows(f, SheetInstructions, rows); err != nil {
		return err
	}
	if err := styleRow(f, SheetInstructions, 5, 4, headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetInstructions, "A", "A", 20); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetInstructions, "B", "B", 60); err != nil {
		return err
	}
	return f.SetColWidth(SheetInstructions, "C", "D", 20)
}
