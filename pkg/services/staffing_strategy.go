package services

import (
	"math/rand/v2"
	"sync"

	"github.com/ekaya-inc/manpower-engine/pkg/models"
)

// StaffingStrategy turns expected demand and productivity into a staffing
// plan and the figures reported next to it.
type StaffingStrategy interface {
	// Plan returns headcount for every date in dates. A date without demand
	// maps to an empty category map.
	Plan(input *models.PlanningInput, dates []models.Date) models.StaffingPlan
	// Fulfillment compares expected demand with what can be fulfilled, per
	// date with demand and per category, plus a per-date total.
	Fulfillment(demand *models.DemandSummary) models.FulfillmentReport
	// Additional returns plan-wide figures.
	Additional(req *models.InputRequirement) models.AdditionalData
}

// RandomStrategy is a placeholder that draws every figure at random within
// fixed ranges. It ignores productivity and headcount entirely.
type RandomStrategy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomStrategy creates a RandomStrategy. A zero seed draws a random one.
func NewRandomStrategy(seed uint64) *RandomStrategy {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &RandomStrategy{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

var _ StaffingStrategy = (*RandomStrategy)(nil)

// Plan draws existing and new headcount uniformly from [2, 7].
func (s *RandomStrategy) Plan(input *models.PlanningInput, dates []models.Date) models.StaffingPlan {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan := make(models.StaffingPlan, len(dates))
	for _, date := range dates {
		entries := make(map[string]models.StaffingEntry)
		if day := input.ExpectedDemand.Day(date); day != nil {
			for _, name := range day.CategoryNames() {
				existing, fresh := s.intn(2, 7), s.intn(2, 7)
				entries[name] = models.StaffingEntry{
					Existing:   existing,
					New:        fresh,
					CategoryID: day.Categories[name].CategoryID,
					Total:      existing + fresh,
				}
			}
		}
		plan[date] = entries
	}
	return plan
}

// Fulfillment reports floor(demand * U[0,1)) with current staff and demand
// shifted by U{-50..60} per category or U{-250..250} for the total.
func (s *RandomStrategy) Fulfillment(demand *models.DemandSummary) models.FulfillmentReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := make(models.FulfillmentReport, len(demand.Days))
	for _, date := range demand.Dates() {
		day := demand.Day(date)
		entries := make(map[string]models.FulfillmentEntry, len(day.Categories)+1)
		for _, name := range day.CategoryNames() {
			entry := day.Categories[name]
			entries[name] = models.FulfillmentEntry{
				ExpectedDemand:         entry.Demand,
				FulfillmentWithCurrent: s.fraction(entry.Demand),
				FulfillmentWithTotal:   entry.Demand + s.intn(-50, 60),
				CategoryID:             entry.CategoryID,
			}
		}
		entries[models.TotalKey] = models.FulfillmentEntry{
			ExpectedDemand:         day.Total,
			FulfillmentWithCurrent: s.fraction(day.Total),
			FulfillmentWithTotal:   day.Total + s.intn(-250, 250),
		}
		report[date] = entries
	}
	return report
}

// Additional draws project fulfillment from [80, 96] and reduces the hiring
// budget by U{100..1000}.
func (s *RandomStrategy) Additional(req *models.InputRequirement) models.AdditionalData {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.AdditionalData{
		ProjectFulfillment: s.intn(80, 96),
		TotalHiringBudget:  req.TotalHiringBudget - s.intn(100, 1000),
	}
}

// intn returns a uniform integer in [lo, hi].
func (s *RandomStrategy) intn(lo, hi int64) int64 {
	return lo + s.rng.Int64N(hi-lo+1)
}

func (s *RandomStrategy) fraction(v int64) int64 {
	return int64(float64(v) * s.rng.Float64())
}
