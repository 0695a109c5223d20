// Package spreadsheet reads the first worksheet of .xlsx and .xls uploads into
// a header plus typed rows, and writes demand templates.
package spreadsheet

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Cell is one spreadsheet value. Numeric cells also carry an exact decimal.
type Cell struct {
	Raw      string
	Number   decimal.Decimal
	IsNumber bool
}

// NewCell classifies raw cell text.
func NewCell(raw string) Cell {
	c := Cell{Raw: strings.TrimSpace(raw)}
	if c.Raw == "" {
		return c
	}
	if d, err := decimal.NewFromString(c.Raw); err == nil {
		c.Number = d
		c.IsNumber = true
	}
	return c
}

// Empty reports whether the cell has no content.
func (c Cell) Empty() bool {
	return c.Raw == ""
}

// Int64 returns the cell as an integer. It fails for text, empty cells and
// numbers with a non-zero fractional part; 5.0 is accepted, 5.5 is not.
func (c Cell) Int64() (int64, bool) {
	if !c.IsNumber || !c.Number.IsInteger() {
		return 0, false
	}
	if !c.Number.GreaterThanOrEqual(minInt64) || !c.Number.LessThanOrEqual(maxInt64) {
		return 0, false
	}
	return c.Number.IntPart(), true
}

// String returns the cell as written in the sheet.
func (c Cell) String() string {
	return c.Raw
}

var (
	minInt64 = decimal.NewFromInt(-1 << 63)
	maxInt64 = decimal.NewFromInt(1<<63 - 1)
)

// Row is one data row. Number is the 1-based row number in the sheet.
type Row struct {
	Number int
	Cells  []Cell
}

// Cell returns the i-th cell, or an empty cell when the row is shorter.
func (r Row) Cell(i int) Cell {
	if i < 0 || i >= len(r.Cells) {
		return Cell{}
	}
	return r.Cells[i]
}

// Table is a worksheet split into its header and data rows. Fully empty rows
// are dropped.
type Table struct {
	Header []string
	Rows   []Row
}

// ColumnIndex returns the position of the named column, matching
// case-insensitively, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

// NewTable builds a Table from raw string rows; the first row is the header.
func NewTable(raw [][]string) *Table {
	t := &Table{}
	if len(raw) == 0 {
		return t
	}

	t.Header = make([]string, len(raw[0]))
	for i, h := range raw[0] {
		t.Header[i] = strings.TrimSpace(h)
	}
	// Trailing blank header cells are formatting residue, not columns.
	for len(t.Header) > 0 && t.Header[len(t.Header)-1] == "" {
		t.Header = t.Header[:len(t.Header)-1]
	}

	for i, values := range raw[1:] {
		row := Row{Number: i + 2, Cells: make([]Cell, len(values))}
		blank := true
		for j, v := range values {
			row.Cells[j] = NewCell(v)
			if !row.Cells[j].Empty() {
				blank = false
			}
		}
		if !blank {
			t.Rows = append(t.Rows, row)
		}
	}
	return t
}
