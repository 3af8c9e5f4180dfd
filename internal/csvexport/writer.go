package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"assetimport/internal/domain"
	"assetimport/internal/schema"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Writer wraps csv.Writer for exporting rejected rows of one import.
type Writer struct {
	csv    *csv.Writer
	schema *schema.Schema
}

// NewWriter creates a Writer that writes CSV to w. Rows carry one column per
// schema field so the file can be corrected and pasted back into a template.
func NewWriter(w io.Writer, s *schema.Schema) *Writer {
	return &Writer{csv: csv.NewWriter(w), schema: s}
}

// Columns returns the header row: Row, every field label, then the error
// columns.
func (w *Writer) Columns() []string {
	cols := make([]string, 0, len(w.schema.Fields)+4)
	cols = append(cols, "Row")
	for _, f := range w.schema.Fields {
		cols = append(cols, f.Label)
	}
	return append(cols, "Error Type", "Error", "Source")
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(w.Columns())
}

// WriteRejections writes one row per rejection entry.
func (w *Writer) WriteRejections(entries []domain.RejectionEntry) error {
	for i := range entries {
		if err := w.csv.Write(w.rejectionToRow(&entries[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func (w *Writer) rejectionToRow(e *domain.RejectionEntry) []string {
	row := make([]string, 0, len(w.schema.Fields)+4)
	row = append(row, strconv.Itoa(e.RowNumber))
	for _, f := range w.schema.Fields {
		row = append(row, formatValue(e.Data[f.Name]))
	}
	return append(row, e.Code.Label(), e.Error, string(e.Source))
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(t)
	}
}

// BuildFilename returns the download name for the rejected rows of an import.
// Format: {kind}_rejected_{YYYY-MM-DD}.csv
func BuildFilename(kind domain.ImportKind, t time.Time) string {
	return fmt.Sprintf("%s_rejected_%s.csv", kind.FileStem(), t.Format("2006-01-02"))
}
