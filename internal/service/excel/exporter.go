package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"frachtrechner/internal/service/tariff"
)

const resultSheet = "Ergebnis"

// Exporter 计算结果导出器
type Exporter struct {
	currency string
}

// NewExporter 创建导出器
func NewExporter(currency string) *Exporter {
	return &Exporter{currency: currency}
}

// Export 将一次计算（两段明细 + Job 费用）写入新工作簿
func (e *Exporter) Export(calc *tariff.Calculation) (*excelize.File, error) {
	if calc == nil {
		return nil, fmt.Errorf("calculation is nil")
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", resultSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headers := []interface{}{
		"Richtung", "Land", "Tarif", "Gewicht (kg)", "Zone", "GK",
		"Frachtrate (" + e.currency + ")", "Zuschlag (" + e.currency + ")", "Gesamt (" + e.currency + ")", "Fehler",
	}
	if err := f.SetSheetRow(resultSheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	_ = f.SetRowStyle(resultSheet, 1, 1, headerStyle)

	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	for i, leg := range []tariff.LegOutcome{calc.Import, calc.Export} {
		row := []interface{}{string(leg.Leg), leg.Input.Country, leg.Input.Tariff, leg.Input.Weight}
		if leg.OK() {
			row = append(row, leg.Result.Zone, leg.Result.WeightClass,
				leg.Result.BaseRate, leg.Result.Surcharge, leg.Result.Total, "")
		} else {
			row = append(row, "", "", nil, nil, nil, leg.Error)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(resultSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write %s row: %w", leg.Leg, err)
		}
	}
	_ = f.SetCellStyle(resultSheet, "G2", "I3", moneyStyle)

	if calc.Job != nil {
		summary := [][]interface{}{
			{"Gesamtkosten (Import + Export)", calc.Job.CombinedTotal},
			{"Anteilige Importkosten", calc.Job.ApportionedImport},
			{"Vollständige Exportkosten", calc.Job.ExportTotal},
			{"Jobkosten", calc.Job.JobCost},
		}
		for i, row := range summary {
			cell, _ := excelize.CoordinatesToCellName(1, i+5)
			row := row
			if err := f.SetSheetRow(resultSheet, cell, &row); err != nil {
				return nil, fmt.Errorf("failed to write summary: %w", err)
			}
		}
		_ = f.SetCellStyle(resultSheet, "B5", "B8", moneyStyle)
		_ = f.SetCellStyle(resultSheet, "A8", "B8", headerStyle)
	}

	_ = f.SetColWidth(resultSheet, "A", "A", 30)
	_ = f.SetColWidth(resultSheet, "B", "C", 18)
	_ = f.SetColWidth(resultSheet, "D", "I", 15)
	_ = f.SetColWidth(resultSheet, "J", "J", 50)

	return f, nil
}
