package spreadsheet

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// maxExcelSerial is 9999-12-31 in the 1900 date system. Larger numbers in a
// date column are taken as Unix epoch milliseconds.
const maxExcelSerial = 2958465

// dateLayouts are the textual date forms accepted in a date column. The .xls
// reader renders date cells through their number format, so the common
// Excel display formats are included.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"1/2/2006",
	"1/2/06",
	"01-02-06",
}

// EpochMillis normalises a date cell to Unix epoch milliseconds (UTC).
// Excel serial numbers, epoch milliseconds and the textual layouts above are
// accepted. Returns false when the cell cannot be read as a date.
func EpochMillis(c Cell) (int64, bool) {
	if c.Empty() {
		return 0, false
	}

	if c.IsNumber {
		if !c.Number.IsPositive() {
			return 0, false
		}
		if c.Number.GreaterThan(decimal.NewFromInt(maxExcelSerial)) {
			if !c.Number.IsInteger() {
				return 0, false
			}
			return c.Number.IntPart(), true
		}
		serial, _ := c.Number.Float64()
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return 0, false
		}
		return t.UTC().UnixMilli(), true
	}

	raw := strings.TrimSpace(c.Raw)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}
