package ingest

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/manpower-engine/pkg/apperrors"
	"github.com/ekaya-inc/manpower-engine/pkg/models"
	"github.com/ekaya-inc/manpower-engine/pkg/spreadsheet"
)

var testCategories = map[string]int64{"cat1": 1, "cat2": 2}

func may(day int) models.Date {
	return models.NewDate(2026, time.May, day)
}

func TestValidateDemand_AllValid(t *testing.T) {
	table := spreadsheet.NewTable([][]string{
		{"Date", "cat1", "cat2"},
		{"2026-05-24", "100", "50"},
		{"2026-05-25", "80", "10.0"},
	})

	result, err := ValidateDemand(table, testCategories, may(24), may(25))
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Equal(t, []DemandCell{
		{RowNumber: 2, Date: may(24), Category: "cat1", CategoryID: 1, Demand: 100},
		{RowNumber: 2, Date: may(24), Category: "cat2", CategoryID: 2, Demand: 50},
		{RowNumber: 3, Date: may(25), Category: "cat1", CategoryID: 1, Demand: 80},
		{RowNumber: 3, Date: may(25), Category: "cat2", CategoryID: 2, Demand: 10},
	}, result.Cells)
}

func TestValidateDemand_FractionalDemandRejectsOnlyThatCell(t *testing.T) {
	table := spreadsheet.NewTable([][]string{
		{"date", "cat1", "cat2"},
		{"2026-05-24", "12.5", "50"},
	})

	result, err := ValidateDemand(table, testCategories, may(24), may(24))
	require.NoError(t, err)
	assert.Equal(t, []string{"Invalid Demand (12.5) for date : 2026-05-24 category : cat1"}, result.Errors)
	require.Len(t, result.Cells, 1)
	assert.Equal(t, "cat2", result.Cells[0].Category)
}

func TestValidateDemand_NonPositiveAndEmptyCells(t *testing.T) {
	table := spreadsheet.NewTable([][]string{
		{"date", "cat1", "cat2"},
		{"2026-05-24", "0", ""},
		{"2026-05-25", "-3", "abc"},
	})

	result, err := ValidateDemand(table, testCategories, may(24), may(25))
	require.NoError(t, err)
	assert.Empty(t, result.Cells)
	assert.Equal(t, []string{
		"Demand (0) should be greater then 0 for date : 2026-05-24 category : cat1",
		"Invalid Demand () for date : 2026-05-24 category : cat2",
		"Demand (-3) should be greater then 0 for date : 2026-05-25 category : cat1",
		"Invalid Demand (abc) for date : 2026-05-25 category : cat2",
	}, result.Errors)
}

func TestValidateDemand_MissingDatesListedExactly(t *testing.T) {
	table := spreadsheet.NewTable([][]string{
		{"date", "cat1"},
		{"2026-05-25", "5"},
		{"2026-05-27", "5"},
	})

	result, err := ValidateDemand(table, testCategories, may(24), may(28))
	require.NoError(t, err)
	assert.Len(t, result.Cells, 2)
	assert.Equal(t, []string{"Data not found for : [2026-05-24, 2026-05-26, 2026-05-28]"}, result.Errors)
}

func TestValidateDemand_DateOutsideRangeOrRepeated(t *testing.T) {
	table := spreadsheet.NewTable([][]string{
		{"date", "cat1"},
		{"2026-05-24", "5"},
		{"2026-05-24", "7"},
		{"2026-06-01", "5"},
		{"someday", "5"},
	})

	result, err := ValidateDemand(table, testCategories, may(24), may(24))
	require.NoError(t, err)
	require.Len(t, result.Cells, 1)
	assert.Equal(t, int64(5), result.Cells[0].Demand)
	assert.Equal(t, []string{
		"Invalid Date : 2026-05-24",
		"Invalid Date : 2026-06-01",
		"Invalid format for date : someday",
	}, result.Errors)
}

func TestValidateDemand_AcceptsSerialAndEpochDates(t *testing.T) {
	epoch := time.Date(2024, time.May, 25, 0, 0, 0, 0, time.UTC).UnixMilli()
	table := spreadsheet.NewTable([][]string{
		{"date", "cat1"},
		{"45436", "1"},
		{strconv.FormatInt(epoch, 10), "2"},
	})

	start := models.NewDate(2024, time.May, 24)
	result, err := ValidateDemand(table, testCategories, start, start.AddDays(1))
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Cells, 2)
	assert.Equal(t, start, result.Cells[0].Date)
	assert.Equal(t, start.AddDays(1), result.Cells[1].Date)
}

func TestValidateDemand_StructuralErrors(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   string
	}{
		{"first column not date", []string{"day", "cat1"}, "Date column is missing"},
		{"date not first", []string{"cat1", "date"}, "Date column is missing"},
		{"empty header", nil, "Date column is missing"},
		{"unknown categories", []string{"date", "cat1", "bogus", "Cat2"}, "Invalid categories : [bogus, Cat2]"},
		{"duplicate category", []string{"date", "cat1", "cat1"}, "Duplicate columns: [cat1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := [][]string{tt.header, {"2026-05-24", "1", "1", "1"}}
			if tt.header == nil {
				raw = nil
			}

			_, err := ValidateDemand(spreadsheet.NewTable(raw), testCategories, may(24), may(24))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, []string{tt.want}, verr.Messages)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
		})
	}
}

func TestParseRange(t *testing.T) {
	start, end, err := ParseRange(" 2026-05-24", "2026-05-30 ")
	require.NoError(t, err)
	assert.Equal(t, may(24), start)
	assert.Equal(t, may(30), end)

	_, _, err = ParseRange("", "2026-05-30")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{MsgMissingRange}, verr.Messages)

	_, _, err = ParseRange("24/05/2026", "2026-05-30")
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"Invalid start_date : 24/05/2026"}, verr.Messages)

	_, _, err = ParseRange("2026-05-24", "2026-13-01")
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"Invalid end_date : 2026-13-01"}, verr.Messages)

	_, _, err = ParseRange("2026-05-30", "2026-05-24")
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"start_date 2026-05-30 is after end_date 2026-05-24"}, verr.Messages)
}

func TestParseRange_AcceptsUnpaddedMonthAndDay(t *testing.T) {
	tests := []struct {
		start, end string
	}{
		{"2026-5-24", "2026-5-30"},
		{"2026-05-24", "2026-5-30"},
		{"2026-5-24", "2026-05-30"},
	}

	for _, tt := range tests {
		start, end, err := ParseRange(tt.start, tt.end)
		require.NoError(t, err, "%s..%s", tt.start, tt.end)
		assert.Equal(t, may(24), start)
		assert.Equal(t, may(30), end)
	}

	_, _, err := ParseRange("26-05-24", "2026-05-30")
	assert.Error(t, err, "the year needs four digits")
}

func TestCheckDemandColumns_ReturnsCategoryColumnsInSheetOrder(t *testing.T) {
	table := spreadsheet.NewTable([][]string{{"DATE", "cat2", "cat1"}})

	columns, err := CheckDemandColumns(table, testCategories)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat2", "cat1"}, columns)
}
