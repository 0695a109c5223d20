package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/manpower-engine/pkg/models"
)

func TestAggregate_Totals(t *testing.T) {
	d1 := models.NewDate(2024, time.May, 24)
	d2 := models.NewDate(2024, time.May, 25)

	summary := Aggregate([]models.DemandRow{
		{ID: 1, Date: d1, CategoryID: 1, CategoryName: "cat1", Demand: 100},
		{ID: 2, Date: d1, CategoryID: 2, CategoryName: "cat2", Demand: 50},
		{ID: 3, Date: d2, CategoryID: 1, CategoryName: "cat1", Demand: 80},
	})

	assert.Equal(t, int64(180), summary.CategoryTotals["cat1"])
	assert.Equal(t, int64(50), summary.CategoryTotals["cat2"])
	assert.Equal(t, int64(230), summary.GrandTotal)
	assert.Equal(t, int64(150), summary.Day(d1).Total)
	assert.Equal(t, int64(80), summary.Day(d2).Total)
	assert.Equal(t, []models.Date{d1, d2}, summary.Dates())

	entry := summary.Day(d1).Categories["cat2"]
	assert.Equal(t, int64(2), entry.ID)
	assert.Equal(t, int64(2), entry.CategoryID)
}

func TestAggregate_Empty(t *testing.T) {
	summary := Aggregate(nil)

	data, err := json.Marshal(summary)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total": {"total": 0}}`, string(data))
}
