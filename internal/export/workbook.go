// Package export writes the assembled report to an xlsx workbook, one sheet
// per view, with a stable column order. It is the publishing collaborator:
// presentation only, no computation.
package export

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"mkts-backend/internal/market"
)

const (
	sheetStats     = "Market Stats"
	sheetReadiness = "Doctrine Readiness"
	sheetLowStock  = "Low Stock"
)

// WriteWorkbook renders the report into an xlsx file at path.
func WriteWorkbook(rep *market.Report, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeStatsSheet(f, sheetStats, rep.Stats); err != nil {
		return err
	}
	if err := writeReadinessSheet(f, rep); err != nil {
		return err
	}
	if err := writeStatsSheet(f, sheetLowStock, rep.LowStock); err != nil {
		return err
	}

	// The workbook is created with a default "Sheet1"; replace it.
	f.DeleteSheet("Sheet1")
	if idx, err := f.GetSheetIndex(sheetStats); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

var statsHeader = []interface{}{
	"Type ID", "Item", "Group", "Category",
	"Min Sell", "Max Buy", "Sell Volume", "Avg Daily Volume", "Days Remaining",
}

func writeStatsSheet(f *excelize.File, sheet string, rows []market.StatRow) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("sheet %s: %w", sheet, err)
	}
	if err := f.SetSheetRow(sheet, "A1", &statsHeader); err != nil {
		return fmt.Errorf("sheet %s: %w", sheet, err)
	}
	for i, row := range rows {
		cell := "A" + strconv.Itoa(i+2)
		values := []interface{}{
			row.TypeID, row.TypeName, row.GroupName, row.CategoryName,
			market.FormatPrice(row.MinSell),
			market.FormatPrice(row.MaxBuy),
			row.SellVolume,
			market.FormatFloat(row.AvgDailyVolume),
			market.FormatFloat(row.DaysRemaining),
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

var readinessHeader = []interface{}{
	"Doctrine ID", "Doctrine", "Fits on Market", "Target", "Target %", "Bottleneck Items",
}

func writeReadinessSheet(f *excelize.File, rep *market.Report) error {
	if _, err := f.NewSheet(sheetReadiness); err != nil {
		return fmt.Errorf("sheet %s: %w", sheetReadiness, err)
	}
	if err := f.SetSheetRow(sheetReadiness, "A1", &readinessHeader); err != nil {
		return fmt.Errorf("sheet %s: %w", sheetReadiness, err)
	}

	names := make(map[int32]string, len(rep.Stats))
	for _, s := range rep.Stats {
		names[s.TypeID] = s.TypeName
	}

	for i, row := range rep.Readiness {
		bottleneck := ""
		for _, item := range row.Items {
			if !item.Limiting {
				continue
			}
			name := names[item.TypeID]
			if name == "" {
				name = fmt.Sprintf("Type %d", item.TypeID)
			}
			if bottleneck != "" {
				bottleneck += ", "
			}
			bottleneck += name
		}
		cell := "A" + strconv.Itoa(i+2)
		values := []interface{}{
			row.DoctrineID, row.DoctrineName, row.FitCount,
			row.Target, row.TargetPercent, bottleneck,
		}
		if err := f.SetSheetRow(sheetReadiness, cell, &values); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheetReadiness, i+2, err)
		}
	}
	return nil
}
