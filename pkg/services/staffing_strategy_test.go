package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/manpower-engine/pkg/models"
)

func sampleDemand() (*models.DemandSummary, []models.Date) {
	d1 := models.NewDate(2030, time.January, 1)
	d2 := models.NewDate(2030, time.January, 2)
	d3 := models.NewDate(2030, time.January, 3)
	summary := Aggregate([]models.DemandRow{
		{ID: 1, Date: d1, CategoryID: 1, CategoryName: "Picking", Demand: 100},
		{ID: 2, Date: d1, CategoryID: 2, CategoryName: "Packing", Demand: 50},
		{ID: 3, Date: d3, CategoryID: 1, CategoryName: "Picking", Demand: 80},
	})
	return summary, []models.Date{d1, d2, d3}
}

func TestRandomStrategy_PlanCoversEveryDate(t *testing.T) {
	demand, dates := sampleDemand()
	strategy := NewRandomStrategy(42)

	plan := strategy.Plan(&models.PlanningInput{ExpectedDemand: demand}, dates)

	require.Len(t, plan, 3)
	assert.Empty(t, plan[dates[1]], "dates without demand map to no categories")
	assert.Len(t, plan[dates[0]], 2)

	for _, entries := range plan {
		for name, entry := range entries {
			assert.GreaterOrEqual(t, entry.Existing, int64(2), name)
			assert.LessOrEqual(t, entry.Existing, int64(7), name)
			assert.GreaterOrEqual(t, entry.New, int64(2), name)
			assert.LessOrEqual(t, entry.New, int64(7), name)
			assert.Equal(t, entry.Existing+entry.New, entry.Total)
		}
	}
	assert.Equal(t, int64(2), plan[dates[0]]["Packing"].CategoryID)
}

func TestRandomStrategy_Fulfillment(t *testing.T) {
	demand, dates := sampleDemand()
	report := NewRandomStrategy(7).Fulfillment(demand)

	require.Len(t, report, 2, "only dates with demand are reported")
	day := report[dates[0]]
	require.Contains(t, day, models.TotalKey)

	picking := day["Picking"]
	assert.Equal(t, int64(100), picking.ExpectedDemand)
	assert.GreaterOrEqual(t, picking.FulfillmentWithCurrent, int64(0))
	assert.Less(t, picking.FulfillmentWithCurrent, int64(100))
	assert.GreaterOrEqual(t, picking.FulfillmentWithTotal, int64(50))
	assert.LessOrEqual(t, picking.FulfillmentWithTotal, int64(160))

	total := day[models.TotalKey]
	assert.Equal(t, int64(150), total.ExpectedDemand)
	assert.GreaterOrEqual(t, total.FulfillmentWithTotal, int64(-100))
	assert.LessOrEqual(t, total.FulfillmentWithTotal, int64(400))
}

func TestRandomStrategy_Additional(t *testing.T) {
	strategy := NewRandomStrategy(99)
	for i := 0; i < 50; i++ {
		data := strategy.Additional(&models.InputRequirement{TotalHiringBudget: 5000})
		assert.GreaterOrEqual(t, data.ProjectFulfillment, int64(80))
		assert.LessOrEqual(t, data.ProjectFulfillment, int64(96))
		assert.GreaterOrEqual(t, data.TotalHiringBudget, int64(4000))
		assert.LessOrEqual(t, data.TotalHiringBudget, int64(4900))
	}
}

func TestRandomStrategy_SeedIsDeterministic(t *testing.T) {
	demand, dates := sampleDemand()
	input := &models.PlanningInput{ExpectedDemand: demand}

	a := NewRandomStrategy(1234).Plan(input, dates)
	b := NewRandomStrategy(1234).Plan(input, dates)
	assert.Equal(t, a, b)
}
