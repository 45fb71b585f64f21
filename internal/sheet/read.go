// Package sheet reads company lists from CSV and XLSX files and writes
// resolution results back out as CSV, XLSX or JSON.
package sheet

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Table is a header row plus data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// ErrUnsupportedFormat is returned for file extensions other than .csv,
// .xlsx and .json.
var ErrUnsupportedFormat = eris.New("sheet: unsupported format")

// ReadFile reads a .csv or .xlsx file.
func ReadFile(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "sheet: open csv")
		}
		defer func() { _ = f.Close() }()
		return ReadCSV(f)
	case ".xlsx":
		return ReadXLSX(path, 0)
	}
	return nil, eris.Wrapf(ErrUnsupportedFormat, "read %s", path)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV parses r. The first non-empty row is the header; ragged rows are
// allowed and fields are trimmed.
func ReadCSV(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "sheet: read csv")
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "sheet: read csv row")
		}
		for i, field := range record {
			record[i] = strings.TrimSpace(field)
		}
		rows = append(rows, record)
	}
	return newTable(rows)
}

// ReadXLSX reads the sheet at index from the workbook at path.
func ReadXLSX(path string, index int) (*Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "sheet: open xlsx")
	}
	if index < 0 || index >= len(f.Sheets) {
		return nil, eris.Errorf("sheet: sheet index %d out of range (file has %d sheets)", index, len(f.Sheets))
	}

	var rows [][]string
	for _, row := range f.Sheets[index].Rows {
		if row == nil {
			continue
		}
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = strings.TrimSpace(cell.String())
		}
		rows = append(rows, cells)
	}
	return newTable(rows)
}

func newTable(rows [][]string) (*Table, error) {
	for len(rows) > 0 && blank(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, eris.New("sheet: no header row")
	}
	t := &Table{Header: rows[0]}
	for _, r := range rows[1:] {
		if !blank(r) {
			t.Rows = append(t.Rows, r)
		}
	}
	return t, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
