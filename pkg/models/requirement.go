package models

import "time"

// InputRequirement is one planning request for a warehouse. It is immutable
// once stored.
type InputRequirement struct {
	ID                       int64     `json:"id"`
	WarehouseID              int64     `json:"warehouse_id"`
	NumCurrentEmployees      int64     `json:"num_current_employees"`
	PlanFromDate             Date      `json:"plan_from_date"`
	PlanToDate               Date      `json:"plan_to_date"`
	PercentageAbsentExpected float64   `json:"percentage_absent_expected"`
	DayWorkingHours          int64     `json:"day_working_hours"`
	CostPerEmployeePerMonth  int64     `json:"cost_per_employee_per_month"`
	TotalHiringBudget        int64     `json:"total_hiring_budget"`
	CreatedBy                string    `json:"created_by,omitempty"`
	CreatedAt                time.Time `json:"created_on"`
}

// RequirementRequest is the body of a planning request.
type RequirementRequest struct {
	WarehouseID              int64   `json:"warehouse_id"`
	NumCurrentEmployees      int64   `json:"num_current_employees"`
	PlanFromDate             Date    `json:"plan_from_date"`
	PlanToDate               Date    `json:"plan_to_date"`
	PercentageAbsentExpected float64 `json:"percentage_absent_expected"`
	DayWorkingHours          int64   `json:"day_working_hours"`
	CostPerEmployeePerMonth  int64   `json:"cost_per_employee_per_month"`
	TotalHiringBudget        int64   `json:"total_hiring_budget"`
}

// Requirement converts the request into a storable requirement.
func (r RequirementRequest) Requirement(createdBy string) *InputRequirement {
	return &InputRequirement{
		WarehouseID:              r.WarehouseID,
		NumCurrentEmployees:      r.NumCurrentEmployees,
		PlanFromDate:             r.PlanFromDate,
		PlanToDate:               r.PlanToDate,
		PercentageAbsentExpected: r.PercentageAbsentExpected,
		DayWorkingHours:          r.DayWorkingHours,
		CostPerEmployeePerMonth:  r.CostPerEmployeePerMonth,
		TotalHiringBudget:        r.TotalHiringBudget,
		CreatedBy:                createdBy,
	}
}
