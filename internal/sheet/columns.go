package sheet

import (
	"strings"
	"unicode"

	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-finder/internal/model"
)

// ErrNoCompanyColumn is returned when no header looks like a company name.
var ErrNoCompanyColumn = eris.New("sheet: no company column")

// CompanyAliases are header names for the company column, most specific
// first. Headers are compared lowercased with punctuation and spaces
// removed, so "Company Name" and "companyName" both match "companyname".
var CompanyAliases = []string{
	"company", "companyname", "shiptocompanyname", "businessname",
	"organization", "organisation", "accountname", "customername", "name",
}

var (
	cityAliases    = []string{"city", "town"}
	stateAliases   = []string{"state", "province", "region", "stateprovince"}
	countryAliases = []string{"country", "countrycode"}
)

// Columns maps roles to header indexes; -1 means absent.
type Columns struct {
	Company int
	City    int
	State   int
	Country int
}

// DetectColumns finds the company and location columns in header.
func DetectColumns(header []string) (Columns, error) {
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = headerKey(h)
	}
	cols := Columns{
		Company: find(keys, CompanyAliases),
		City:    find(keys, cityAliases),
		State:   find(keys, stateAliases),
		Country: find(keys, countryAliases),
	}
	if cols.Company < 0 {
		return cols, eris.Wrapf(ErrNoCompanyColumn, "headers %q", header)
	}
	return cols, nil
}

// Records converts t to company records. Every column except the company
// column is carried in Extra, in header order.
func Records(t *Table) ([]model.CompanyRecord, error) {
	cols, err := DetectColumns(t.Header)
	if err != nil {
		return nil, err
	}
	out := make([]model.CompanyRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := model.CompanyRecord{
			RawName: cell(row, cols.Company),
			Location: model.Location{
				City:    cell(row, cols.City),
				State:   cell(row, cols.State),
				Country: cell(row, cols.Country),
			},
		}
		for i, h := range t.Header {
			if i == cols.Company {
				continue
			}
			rec.Extra = append(rec.Extra, model.Field{Column: h, Value: cell(row, i)})
		}
		out = append(out, rec)
	}
	return out, nil
}

func find(keys, aliases []string) int {
	for _, a := range aliases {
		for i, k := range keys {
			if k == a {
				return i
			}
		}
	}
	return -1
}

func headerKey(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
