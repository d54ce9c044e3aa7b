package corpdir

import (
	"encoding/csv"
	"fmt"
	"os"
)

// IndustryNotFound is the display value for an industry code with no entry
// in the reference table. A miss is not an error.
const IndustryNotFound = "업종 정보 없음"

// IndustryTable maps raw induty codes from company profiles to display
// labels.
type IndustryTable struct {
	labels map[string]string
}

// NewIndustryTable wraps an existing code-to-label map; nil is a valid
// empty table (every lookup misses).
func NewIndustryTable(labels map[string]string) *IndustryTable {
	return &IndustryTable{labels: labels}
}

// LoadIndustryTable reads the industry-code CSV (columns induty_code,
// induty_name) fully into memory.
func LoadIndustryTable(path string) (*IndustryTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening industry table: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading industry table: %w", err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("industry table %s is empty", path)
	}

	cols, err := columnIndex(rows[0], "induty_code", "induty_name")
	if err != nil {
		return nil, fmt.Errorf("industry table %s: %w", path, err)
	}

	labels := make(map[string]string, len(rows)-1)
	for _, row := range rows[1:] {
		code := field(row, cols["induty_code"])
		name := field(row, cols["induty_name"])
		if code == "" || name == "" {
			continue
		}
		labels[code] = name
	}

	return &IndustryTable{labels: labels}, nil
}

// Lookup resolves an industry code to its label, or IndustryNotFound.
func (t *IndustryTable) Lookup(code string) string {
	if label, ok := t.labels[code]; ok {
		return label
	}
	return IndustryNotFound
}
