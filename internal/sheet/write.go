package sheet

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/contact-finder/internal/model"
)

// Format is an output file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// FormatFromPath picks the output format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")); f {
	case FormatCSV, FormatXLSX, FormatJSON:
		return f, nil
	}
	return "", eris.Wrapf(ErrUnsupportedFormat, "write %s", path)
}

// WriteFile writes results to path in the format its extension names.
func WriteFile(path string, results []model.ResolutionResult) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "sheet: create output")
	}
	if err := Write(f, format, results); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrap(f.Close(), "sheet: close output")
}

// Write encodes results to w.
func Write(w io.Writer, format Format, results []model.ResolutionResult) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, results)
	case FormatXLSX:
		return writeXLSX(w, results)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(results), "sheet: encode json")
	}
	return eris.Wrapf(ErrUnsupportedFormat, "%q", format)
}

// Rows lays results out as a header plus one row per result: company,
// email, source, then passthrough columns in first-seen order.
func Rows(results []model.ResolutionResult) [][]string {
	var extra []string
	seen := make(map[string]struct{})
	for _, r := range results {
		for _, f := range r.Extra {
			if _, ok := seen[f.Column]; ok {
				continue
			}
			seen[f.Column] = struct{}{}
			extra = append(extra, f.Column)
		}
	}

	header := append([]string{"company", "email", "source"}, extra...)
	rows := [][]string{header}
	for _, r := range results {
		row := make([]string, len(header))
		row[0], row[1], row[2] = r.Company, r.Email, r.Evidence
		for _, f := range r.Extra {
			for i, col := range extra {
				if col == f.Column && row[3+i] == "" {
					row[3+i] = f.Value
					break
				}
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func writeCSV(w io.Writer, results []model.ResolutionResult) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(Rows(results)); err != nil {
		return eris.Wrap(err, "sheet: write csv")
	}
	return nil
}

func writeXLSX(w io.Writer, results []model.ResolutionResult) error {
	f := xlsx.NewFile()
	sh, err := f.AddSheet("Results")
	if err != nil {
		return eris.Wrap(err, "sheet: add xlsx sheet")
	}
	for _, r := range Rows(results) {
		row := sh.AddRow()
		for _, v := range r {
			row.AddCell().SetString(v)
		}
	}
	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "sheet: write xlsx")
	}
	return nil
}
