package models

import "time"

// InputDemand is the forecast volume of one category of work in one warehouse
// on one day. Unique per (WarehouseID, CategoryID, Date).
type InputDemand struct {
	ID          int64     `json:"id"`
	WarehouseID int64     `json:"warehouse_id"`
	CategoryID  int64     `json:"category_id"`
	Date        Date      `json:"date"`
	Demand      int64     `json:"demand"`
	CreatedBy   string    `json:"created_by,omitempty"`
	UpdatedBy   string    `json:"updated_by,omitempty"`
	CreatedAt   time.Time `json:"created_on"`
	UpdatedAt   time.Time `json:"updated_on"`
}

// InputDemandUpdate lists the fields of an InputDemand that may change after
// creation. Nil fields are left untouched.
type InputDemandUpdate struct {
	ID     int64  `json:"id"`
	Demand *int64 `json:"demand,omitempty"`
}

// DemandRow is one demand record joined with its category, as read for
// aggregation.
type DemandRow struct {
	ID           int64
	Date         Date
	CategoryID   int64
	CategoryName string
	Demand       int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
