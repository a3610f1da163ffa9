package spreadsheet

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row maps header names to cell values for one spreadsheet row.
type Row map[string]string

// ReadSheet parses the first sheet of an xlsx workbook into header-keyed
// rows. The first row is treated as the header row; fully empty rows are
// skipped. Header names are trimmed but otherwise preserved.
func ReadSheet(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(raw) < 1 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	headers := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]Row, 0, len(raw)-1)
	for _, cells := range raw[1:] {
		row := Row{}
		empty := true
		for i, header := range headers {
			if header == "" {
				continue
			}
			var value string
			if i < len(cells) {
				value = strings.TrimSpace(cells[i])
			}
			if value != "" {
				empty = false
			}
			row[header] = value
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// ParseDateCell converts a cell that may carry an Excel date serial into a
// locale date string (MM/DD/YYYY). Values that already look like dates are
// returned unchanged.
func ParseDateCell(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	serial, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return value
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return value
	}
	return t.Format("01/02/2006")
}
