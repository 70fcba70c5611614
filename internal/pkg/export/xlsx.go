// Package export renders tabular reports as xlsx workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Table is a single sheet with a title row, a header row and data rows.
type Table struct {
	Sheet   string
	Title   string
	Headers []string
	Widths  []float64
	Rows    [][]interface{}
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// WriteXLSX writes t as a workbook to w.
func WriteXLSX(w io.Writer, t Table) error {
	if len(t.Headers) == 0 {
		return fmt.Errorf("export: table %q has no columns", t.Sheet)
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(t.Sheet)
	if err != nil {
		return fmt.Errorf("export: create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if t.Sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("export: drop default sheet: %w", err)
		}
	}

	for i, width := range t.Widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(t.Sheet, col, col, width); err != nil {
			return fmt.Errorf("export: set width: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}

	row := 1
	if t.Title != "" {
		_ = f.SetCellValue(t.Sheet, cellName(1, row), t.Title)
		_ = f.MergeCell(t.Sheet, cellName(1, row), cellName(len(t.Headers), row))
		_ = f.SetCellStyle(t.Sheet, cellName(1, row), cellName(1, row), headerStyle)
		row++
	}

	for i, h := range t.Headers {
		_ = f.SetCellValue(t.Sheet, cellName(i+1, row), h)
	}
	_ = f.SetCellStyle(t.Sheet, cellName(1, row), cellName(len(t.Headers), row), headerStyle)
	row++

	for _, values := range t.Rows {
		for i, v := range values {
			if err := f.SetCellValue(t.Sheet, cellName(i+1, row), v); err != nil {
				return fmt.Errorf("export: write row %d: %w", row, err)
			}
		}
		row++
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}
