// Package export writes list views as spreadsheet downloads.
package export

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of an XLSX workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Column describes one spreadsheet column.
type Column[T any] struct {
	Header string
	Width  float64
	Value  func(T) any
}

// Workbook renders rows into a single-sheet XLSX document.
type Workbook[T any] struct {
	Sheet   string
	Title   string
	Columns []Column[T]
}

// Write encodes rows to w. Row one holds the title, row two the headers.
func (wb Workbook[T]) Write(w io.Writer, rows []T) error {
	if len(wb.Columns) == 0 {
		return fmt.Errorf("export: workbook %q has no columns", wb.Sheet)
	}
	sheet := wb.Sheet
	if sheet == "" {
		sheet = "Sheet1"
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("export: new sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("export: delete default sheet: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}
	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 13}})
	if err != nil {
		return fmt.Errorf("export: title style: %w", err)
	}

	lastCol := colName(len(wb.Columns) - 1)
	_ = f.SetCellValue(sheet, "A1", wb.Title)
	if len(wb.Columns) > 1 {
		_ = f.MergeCell(sheet, "A1", lastCol+"1")
	}
	_ = f.SetCellStyle(sheet, "A1", "A1", titleStyle)

	for i, col := range wb.Columns {
		name := colName(i)
		_ = f.SetCellValue(sheet, cell(name, 2), col.Header)
		if col.Width > 0 {
			_ = f.SetColWidth(sheet, name, name, col.Width)
		}
	}
	_ = f.SetCellStyle(sheet, "A2", cell(lastCol, 2), headerStyle)

	for r, rec := range rows {
		for i, col := range wb.Columns {
			if err := f.SetCellValue(sheet, cell(colName(i), r+3), normalize(col.Value(rec))); err != nil {
				return fmt.Errorf("export: row %d: %w", r+1, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write: %w", err)
	}
	return nil
}

// Serve writes the workbook as an attachment named filename.
func (wb Workbook[T]) Serve(w http.ResponseWriter, filename string, rows []T) error {
	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return wb.Write(w, rows)
}

// normalize renders civil dates as text so spreadsheets do not shift them
// into the viewer's time zone.
func normalize(v any) any {
	if t, ok := v.(time.Time); ok {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	}
	return v
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
