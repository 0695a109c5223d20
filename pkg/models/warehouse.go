package models

import "time"

// Warehouse is a physical site whose workforce is planned.
type Warehouse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Category is a kind of warehouse work with its own productivity and demand.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TotalKey is the key used for sums in demand summaries and planning output.
// No category may use it as a name.
const TotalKey = "total"

// NamedRecord is the input shape for bulk-adding warehouses and categories.
type NamedRecord struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description"`
}
