package models

import "time"

// PlanningResult is one persisted line of a staffing plan.
type PlanningResult struct {
	ID                      int64     `json:"id"`
	RequirementID           int64     `json:"requirement_id"`
	CategoryID              int64     `json:"category_id"`
	CategoryName            string    `json:"category_name,omitempty"`
	Date                    Date      `json:"date"`
	NumExistingToBeDeployed int64     `json:"num_existing_to_be_deployed"`
	NumNewToBeDeployed      int64     `json:"num_new_to_be_deployed"`
	CreatedBy               string    `json:"created_by,omitempty"`
	CreatedAt               time.Time `json:"created_on"`
}

// StaffingEntry is the recommended headcount for one category on one date.
type StaffingEntry struct {
	Existing   int64 `json:"num_of_existing_to_deploy"`
	New        int64 `json:"num_of_new_to_deploy"`
	CategoryID int64 `json:"category_id"`
	Total      int64 `json:"total"`
}

// StaffingPlan maps each date of a planning range to per-category headcount.
// Every date of the range is present, possibly with an empty map.
type StaffingPlan map[Date]map[string]StaffingEntry

// FulfillmentEntry compares expected demand with what the plan can fulfill.
// CategoryID is omitted on the per-date total entry.
type FulfillmentEntry struct {
	ExpectedDemand         int64 `json:"expected_demand"`
	FulfillmentWithCurrent int64 `json:"fulfillment_with_current"`
	FulfillmentWithTotal   int64 `json:"fulfillment_with_total"`
	CategoryID             int64 `json:"category_id,omitempty"`
}

// FulfillmentReport maps dates with demand to per-category fulfillment, with
// the per-date sum under the "total" key.
type FulfillmentReport map[Date]map[string]FulfillmentEntry

// AdditionalData carries plan-wide figures.
type AdditionalData struct {
	ProjectFulfillment int64 `json:"project_fulfillment"`
	TotalHiringBudget  int64 `json:"total_hiring_budget"`
}

// PlanningInput echoes the requirement together with the data the plan was
// built from.
type PlanningInput struct {
	InputRequirement
	ExpectedDemand *DemandSummary           `json:"expected_demand"`
	Productivity   []*BenchmarkProductivity `json:"productivity"`
}

// PlanningResponse is the outcome of one planning run.
type PlanningResponse struct {
	InputData               *PlanningInput    `json:"input_data"`
	RequirementID           int64             `json:"requirement_id"`
	Output                  StaffingPlan      `json:"output"`
	DemandVsFulfillmentData FulfillmentReport `json:"demand_vs_fulfillment_data"`
	AdditionalData          AdditionalData    `json:"additional_data"`
	WarehouseName           string            `json:"warehouse_name"`
}
