package services

import "github.com/ekaya-inc/manpower-engine/pkg/models"

// Aggregate nests demand rows by date then category name and computes the
// per-date, per-category and grand totals.
//
//	{05-24: {cat1: 100, cat2: 50}, 05-25: {cat1: 80}}
//	-> total.cat1 = 180, total.cat2 = 50, total.total = 230, 05-24.total = 150
func Aggregate(rows []models.DemandRow) *models.DemandSummary {
	summary := models.NewDemandSummary()
	for _, row := range rows {
		summary.Add(row.Date, row.CategoryName, models.DemandEntry{
			ID:         row.ID,
			CategoryID: row.CategoryID,
			Demand:     row.Demand,
			CreatedOn:  row.CreatedAt,
			UpdatedOn:  row.UpdatedAt,
		})
	}
	return summary
}
