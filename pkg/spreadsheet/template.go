package spreadsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ekaya-inc/manpower-engine/pkg/models"
)

// DemandTemplateSheet is the worksheet name of generated demand templates.
const DemandTemplateSheet = "demand"

// WriteDemandTemplate writes an .xlsx workbook whose header is "date"
// followed by the given categories, with one row per date left blank for
// the demand figures.
func WriteDemandTemplate(w io.Writer, categories []string, dates []models.Date) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), DemandTemplateSheet); err != nil {
		return fmt.Errorf("failed to name template sheet: %w", err)
	}

	header := make([]any, 0, len(categories)+1)
	header = append(header, "date")
	for _, c := range categories {
		header = append(header, c)
	}
	if err := f.SetSheetRow(DemandTemplateSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write template header: %w", err)
	}

	dateFormat := "yyyy-mm-dd"
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFormat})
	if err != nil {
		return fmt.Errorf("failed to create date style: %w", err)
	}

	for i, d := range dates {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		if err := f.SetCellValue(DemandTemplateSheet, cell, d.Time); err != nil {
			return fmt.Errorf("failed to write date %s: %w", d, err)
		}
		if err := f.SetCellStyle(DemandTemplateSheet, cell, cell, style); err != nil {
			return fmt.Errorf("failed to style date %s: %w", d, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write template: %w", err)
	}
	return nil
}
