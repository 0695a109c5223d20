package models

import (
	"encoding/json"
	"sort"
	"time"
)

// DemandEntry is the stored demand for one category on one date.
type DemandEntry struct {
	ID         int64     `json:"id"`
	CategoryID int64     `json:"category_id"`
	Demand     int64     `json:"demand"`
	CreatedOn  time.Time `json:"created_on"`
	UpdatedOn  time.Time `json:"updated_on"`
}

// DayDemand holds the demand of every category with data on one date.
type DayDemand struct {
	Date       Date
	Categories map[string]DemandEntry
	Total      int64
}

// DemandSummary is demand for one warehouse over a date range, nested by date
// then category name, with per-date, per-category and grand totals.
type DemandSummary struct {
	Days           map[Date]*DayDemand
	CategoryTotals map[string]int64
	GrandTotal     int64
}

// NewDemandSummary returns an empty summary.
func NewDemandSummary() *DemandSummary {
	return &DemandSummary{
		Days:           make(map[Date]*DayDemand),
		CategoryTotals: make(map[string]int64),
	}
}

// Add records one demand entry and updates every total it contributes to.
func (s *DemandSummary) Add(date Date, category string, entry DemandEntry) {
	day, ok := s.Days[date]
	if !ok {
		day = &DayDemand{Date: date, Categories: make(map[string]DemandEntry)}
		s.Days[date] = day
	}
	if prev, exists := day.Categories[category]; exists {
		day.Total -= prev.Demand
		s.CategoryTotals[category] -= prev.Demand
		s.GrandTotal -= prev.Demand
	}
	day.Categories[category] = entry
	day.Total += entry.Demand
	s.CategoryTotals[category] += entry.Demand
	s.GrandTotal += entry.Demand
}

// Dates returns the dates with demand in ascending order.
func (s *DemandSummary) Dates() []Date {
	dates := make([]Date, 0, len(s.Days))
	for d := range s.Days {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// Day returns the demand for a date, or nil when nothing is recorded.
func (s *DemandSummary) Day(date Date) *DayDemand {
	return s.Days[date]
}

// CategoryNames returns the categories of a day sorted by name.
func (d *DayDemand) CategoryNames() []string {
	names := make([]string, 0, len(d.Categories))
	for name := range d.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarshalJSON renders the summary as
//
//	{"<date>": {"<category>": {...}, "total": n}, "total": {"<category>": n, "total": n}}
func (s *DemandSummary) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Days)+1)
	for date, day := range s.Days {
		entries := make(map[string]any, len(day.Categories)+1)
		for name, entry := range day.Categories {
			entries[name] = entry
		}
		entries[TotalKey] = day.Total
		out[date.String()] = entries
	}
	totals := make(map[string]int64, len(s.CategoryTotals)+1)
	for name, total := range s.CategoryTotals {
		totals[name] = total
	}
	totals[TotalKey] = s.GrandTotal
	out[TotalKey] = totals
	return json.Marshal(out)
}
