package models

import "time"

// BenchmarkProductivity is the expected output per worker for one category of
// work in one warehouse. Unique per (WarehouseID, CategoryID).
type BenchmarkProductivity struct {
	ID                      int64     `json:"id"`
	WarehouseID             int64     `json:"warehouse_id"`
	CategoryID              int64     `json:"category_id"`
	CategoryName            string    `json:"category_name,omitempty"`
	ProductivityExperienced float64   `json:"productivity_experienced_employee"`
	ProductivityNew         float64   `json:"productivity_new_employee"`
	CreatedBy               string    `json:"created_by,omitempty"`
	UpdatedBy               string    `json:"updated_by,omitempty"`
	CreatedAt               time.Time `json:"created_on"`
	UpdatedAt               time.Time `json:"updated_on"`
}

// BenchmarkProductivityUpdate lists the fields of a BenchmarkProductivity that
// may change after creation. Nil fields are left untouched.
type BenchmarkProductivityUpdate struct {
	ID                      int64    `json:"id"`
	ProductivityExperienced *float64 `json:"productivity_experienced_employee,omitempty"`
	ProductivityNew         *float64 `json:"productivity_new_employee,omitempty"`
}
