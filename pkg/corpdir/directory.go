// Package corpdir holds the in-memory reference tables the comparison
// pipeline resolves against: the listed-company directory and the industry
// code table. Both load once at startup from CSV dumps.
package corpdir

import (
	"encoding/csv"
	"fmt"
	"os"
)

// UnknownCompanyError is returned when a requested display name has no
// directory entry. Matching is exact; there is no fuzzy lookup.
type UnknownCompanyError struct {
	Name string
}

func (e *UnknownCompanyError) Error() string {
	return fmt.Sprintf("해당하는 회사명을 찾을 수 없습니다: %s", e.Name)
}

// Entry is one listed company: display name, DART filer code, KRX ticker.
type Entry struct {
	Name      string
	CorpCode  string
	StockCode string
}

type Directory struct {
	entries map[string]Entry
}

// Load reads the listed-company CSV fully into memory. Columns are located
// by header name (the dump carries more columns than the three used here).
// Rows missing a corp_code or stock_code are not listed filers and are
// skipped.
func Load(path string) (*Directory, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening corp list: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading corp list: %w", err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("corp list %s is empty", path)
	}

	cols, err := columnIndex(rows[0], "corp_name", "corp_code", "stock_code")
	if err != nil {
		return nil, fmt.Errorf("corp list %s: %w", path, err)
	}

	entries := make(map[string]Entry, len(rows)-1)
	for _, row := range rows[1:] {
		entry := Entry{
			Name:      field(row, cols["corp_name"]),
			CorpCode:  field(row, cols["corp_code"]),
			StockCode: field(row, cols["stock_code"]),
		}
		if entry.Name == "" || entry.CorpCode == "" || entry.StockCode == "" {
			continue
		}
		entries[entry.Name] = entry
	}

	return &Directory{entries: entries}, nil
}

// Resolve maps an exact display name to its filer code and ticker.
func (d *Directory) Resolve(name string) (string, string, error) {
	entry, ok := d.entries[name]
	if !ok {
		return "", "", &UnknownCompanyError{Name: name}
	}
	return entry.CorpCode, entry.StockCode, nil
}

func (d *Directory) Len() int {
	return len(d.entries)
}

func columnIndex(header []string, names ...string) (map[string]int, error) {
	cols := make(map[string]int, len(names))
	for _, name := range names {
		found := false
		for i, h := range header {
			if h == name {
				cols[name] = i
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return cols, nil
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}
