package ingest

import (
	"fmt"

	"github.com/ekaya-inc/manpower-engine/pkg/spreadsheet"
)

// Productivity sheet columns.
const (
	ColumnCategory                = "category"
	ColumnProductivityExperienced = "productivity_experienced_employee"
	ColumnProductivityNew         = "productivity_new_employee"
)

// ProductivityColumns is the exact column set of a productivity sheet.
var ProductivityColumns = []string{ColumnCategory, ColumnProductivityExperienced, ColumnProductivityNew}

// ProductivityRow is one accepted row of a productivity sheet.
type ProductivityRow struct {
	RowNumber   int
	Category    string
	Experienced int64
	New         int64
}

// ProductivityResult holds the accepted rows and the per-row messages for
// rejected ones.
type ProductivityResult struct {
	Rows   []ProductivityRow
	Errors []string
}

// ValidateProductivity checks the column set, then every row. Both
// productivity values must be non-negative integers and the category must
// be non-empty; otherwise the row is rejected with
// "Invalid value(s) for : <category>".
func ValidateProductivity(table *spreadsheet.Table) (*ProductivityResult, error) {
	idx, err := productivityColumns(table.Header)
	if err != nil {
		return nil, err
	}

	result := &ProductivityResult{}
	for _, row := range table.Rows {
		name := row.Cell(idx[ColumnCategory]).Raw
		experienced, okExp := nonNegative(row.Cell(idx[ColumnProductivityExperienced]))
		fresh, okNew := nonNegative(row.Cell(idx[ColumnProductivityNew]))
		if name == "" || !okExp || !okNew {
			result.Errors = append(result.Errors, fmt.Sprintf("Invalid value(s) for : %s", name))
			continue
		}
		result.Rows = append(result.Rows, ProductivityRow{
			RowNumber:   row.Number,
			Category:    name,
			Experienced: experienced,
			New:         fresh,
		})
	}
	return result, nil
}

// CategoryNames returns the distinct categories of the accepted rows in
// sheet order.
func (r *ProductivityResult) CategoryNames() []string {
	seen := make(map[string]struct{}, len(r.Rows))
	var names []string
	for _, row := range r.Rows {
		if _, ok := seen[row.Category]; ok {
			continue
		}
		seen[row.Category] = struct{}{}
		names = append(names, row.Category)
	}
	return names
}

// productivityColumns requires exactly ProductivityColumns. Missing columns
// are reported before extra ones.
func productivityColumns(header []string) (map[string]int, error) {
	required := make(map[string]struct{}, len(ProductivityColumns))
	for _, c := range ProductivityColumns {
		required[c] = struct{}{}
	}

	idx := make(map[string]int, len(header))
	extra := make(map[string]struct{})
	for i, h := range header {
		if _, ok := required[h]; ok {
			if _, dup := idx[h]; !dup {
				idx[h] = i
			}
			continue
		}
		extra[h] = struct{}{}
	}

	missing := make(map[string]struct{})
	for c := range required {
		if _, ok := idx[c]; !ok {
			missing[c] = struct{}{}
		}
	}

	if len(missing) > 0 {
		return nil, fileErrorf("Missing columns: %s", bracketList(sortedKeys(missing)))
	}
	if len(extra) > 0 {
		return nil, fileErrorf("Extra columns: %s", bracketList(sortedKeys(extra)))
	}
	return idx, nil
}

func nonNegative(c spreadsheet.Cell) (int64, bool) {
	v, ok := c.Int64()
	if !ok || v < 0 {
		return 0, false
	}
	return v, true
}
