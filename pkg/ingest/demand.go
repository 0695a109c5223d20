package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/ekaya-inc/manpower-engine/pkg/models"
	"github.com/ekaya-inc/manpower-engine/pkg/spreadsheet"
)

// ColumnDate is the mandatory first column of a demand sheet.
const ColumnDate = "date"

// MsgMissingRange is returned when the upload omits its planning window.
const MsgMissingRange = "start_date and end_date should be present in form data of requests"

// DemandCell is one accepted (date, category) demand value.
type DemandCell struct {
	RowNumber  int
	Date       models.Date
	Category   string
	CategoryID int64
	Demand     int64
}

// DemandResult holds the accepted cells and the messages for rejected rows,
// rejected cells and dates of the range that never appeared.
type DemandResult struct {
	Cells  []DemandCell
	Errors []string
}

// ParseRange reads the start_date and end_date values. Both are required,
// must be YYYY-MM-DD (month and day may drop the leading zero) and start must
// not be after end.
func ParseRange(rawStart, rawEnd string) (models.Date, models.Date, error) {
	rawStart, rawEnd = strings.TrimSpace(rawStart), strings.TrimSpace(rawEnd)
	if rawStart == "" || rawEnd == "" {
		return models.Date{}, models.Date{}, &ValidationError{Messages: []string{MsgMissingRange}}
	}
	start, err := parseRangeDate(rawStart)
	if err != nil {
		return models.Date{}, models.Date{}, fileErrorf("Invalid start_date : %s", rawStart)
	}
	end, err := parseRangeDate(rawEnd)
	if err != nil {
		return models.Date{}, models.Date{}, fileErrorf("Invalid end_date : %s", rawEnd)
	}
	if start.After(end) {
		return models.Date{}, models.Date{}, fileErrorf("start_date %s is after end_date %s", start, end)
	}
	return start, end, nil
}

// rangeDateLayout accepts both 2023-05-24 and 2023-5-24.
const rangeDateLayout = "2006-1-2"

func parseRangeDate(raw string) (models.Date, error) {
	t, err := time.ParseInLocation(rangeDateLayout, raw, time.UTC)
	if err != nil {
		return models.Date{}, err
	}
	return models.DateOf(t), nil
}

// CheckDemandColumns verifies that the first column is "date" and every other
// column a known category, and returns the category columns in sheet order.
func CheckDemandColumns(table *spreadsheet.Table, categories map[string]int64) ([]string, error) {
	if len(table.Header) == 0 || !strings.EqualFold(table.Header[0], ColumnDate) {
		return nil, fileErrorf("Date column is missing")
	}

	columns := table.Header[1:]
	unknown := make([]string, 0)
	seenColumns := make(map[string]struct{}, len(columns))
	duplicate := make(map[string]struct{})
	for _, name := range columns {
		if _, ok := categories[name]; !ok {
			unknown = append(unknown, name)
			continue
		}
		if _, ok := seenColumns[name]; ok {
			duplicate[name] = struct{}{}
		}
		seenColumns[name] = struct{}{}
	}
	if len(unknown) > 0 {
		return nil, fileErrorf("Invalid categories : %s", bracketList(unknown))
	}
	if len(duplicate) > 0 {
		return nil, fileErrorf("Duplicate columns: %s", bracketList(sortedKeys(duplicate)))
	}
	return columns, nil
}

// ValidateDemand checks a demand sheet against the known categories
// (name to id) and the inclusive [start, end] window.
//
// The first column must be "date" and every other column a known category.
// Rows whose date is unreadable, outside the window or repeated are skipped.
// Each remaining cell must hold a positive integer. Dates of the window that
// no row covered are reported in a single "Data not found" message.
func ValidateDemand(table *spreadsheet.Table, categories map[string]int64, start, end models.Date) (*DemandResult, error) {
	columns, err := CheckDemandColumns(table, categories)
	if err != nil {
		return nil, err
	}

	pending := make(map[models.Date]struct{})
	for _, d := range models.DateRange(start, end) {
		pending[d] = struct{}{}
	}

	result := &DemandResult{}
	for _, row := range table.Rows {
		dateCell := row.Cell(0)
		ms, ok := spreadsheet.EpochMillis(dateCell)
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("Invalid format for date : %s", dateCell.Raw))
			continue
		}
		date := models.DateOf(time.UnixMilli(ms).UTC())
		if _, ok := pending[date]; !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("Invalid Date : %s", date))
			continue
		}
		delete(pending, date)

		for i, name := range columns {
			cell := row.Cell(i + 1)
			demand, ok := cell.Int64()
			if !ok {
				result.Errors = append(result.Errors,
					fmt.Sprintf("Invalid Demand (%s) for date : %s category : %s", cell.Raw, date, name))
				continue
			}
			if demand <= 0 {
				result.Errors = append(result.Errors,
					fmt.Sprintf("Demand (%s) should be greater then 0 for date : %s category : %s", cell.Raw, date, name))
				continue
			}
			result.Cells = append(result.Cells, DemandCell{
				RowNumber:  row.Number,
				Date:       date,
				Category:   name,
				CategoryID: categories[name],
				Demand:     demand,
			})
		}
	}

	if len(pending) > 0 {
		missing := make([]string, 0, len(pending))
		for _, d := range models.DateRange(start, end) {
			if _, ok := pending[d]; ok {
				missing = append(missing, d.String())
			}
		}
		result.Errors = append(result.Errors, fmt.Sprintf("Data not found for : %s", bracketList(missing)))
	}
	return result, nil
}
