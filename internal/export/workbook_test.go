package export

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"mkts-backend/internal/market"
)

func testReport() *market.Report {
	harpy := market.StatRow{
		ItemStat: market.ItemStat{
			TypeID:         100,
			LocationID:     60014068,
			MinSell:        decimal.NewNullDecimal(decimal.RequireFromString("30000000")),
			MaxBuy:         decimal.NewNullDecimal(decimal.RequireFromString("25000000")),
			SellVolume:     6,
			AvgDailyVolume: sql.NullFloat64{Float64: 2.5, Valid: true},
			DaysRemaining:  sql.NullFloat64{Float64: 2.4, Valid: true},
		},
		TypeName: "Harpy", GroupName: "Frigate", CategoryName: "Ship",
	}
	launcher := market.StatRow{
		ItemStat: market.ItemStat{TypeID: 101, LocationID: 60014068},
		TypeName: "Light Missile Launcher",
	}
	return &market.Report{
		LocationID:   60014068,
		LocationName: "nakah",
		GeneratedAt:  time.Date(2025, 11, 20, 12, 0, 0, 0, time.UTC),
		Stats:        []market.StatRow{harpy, launcher},
		Readiness: []market.ReadinessRow{
			{
				DoctrineReadiness: market.DoctrineReadiness{
					DoctrineID: 10,
					LocationID: 60014068,
					FitCount:   6,
					Items: []market.ItemReadiness{
						{TypeID: 100, Required: 1, Available: 6, Fits: 6, Limiting: true},
						{TypeID: 101, Required: 4, Available: 25, Fits: 6, Limiting: true},
					},
				},
				DoctrineName: "Harpy Fleet", Target: 10, TargetPercent: 60,
			},
		},
		LowStock: []market.StatRow{harpy},
	}
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := WriteWorkbook(testReport(), path); err != nil {
		t.Fatalf("WriteWorkbook: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := map[string]bool{sheetStats: true, sheetReadiness: true, sheetLowStock: true}
	for _, s := range sheets {
		if !want[s] {
			t.Errorf("unexpected sheet %q", s)
		}
		delete(want, s)
	}
	for s := range want {
		t.Errorf("missing sheet %q", s)
	}

	// Header and one populated row on the stats sheet.
	if got, _ := f.GetCellValue(sheetStats, "A1"); got != "Type ID" {
		t.Errorf("stats A1 = %q", got)
	}
	if got, _ := f.GetCellValue(sheetStats, "B2"); got != "Harpy" {
		t.Errorf("stats B2 = %q", got)
	}
	if got, _ := f.GetCellValue(sheetStats, "E2"); got != "30000000.00" {
		t.Errorf("stats E2 = %q", got)
	}

	// The absent item renders the display sentinel, never a zero.
	if got, _ := f.GetCellValue(sheetStats, "E3"); got != market.NullDisplay {
		t.Errorf("stats E3 = %q, want %q", got, market.NullDisplay)
	}
	if got, _ := f.GetCellValue(sheetStats, "I3"); got != market.NullDisplay {
		t.Errorf("stats I3 = %q, want %q", got, market.NullDisplay)
	}

	if got, _ := f.GetCellValue(sheetReadiness, "B2"); got != "Harpy Fleet" {
		t.Errorf("readiness B2 = %q", got)
	}
	if got, _ := f.GetCellValue(sheetReadiness, "C2"); got != "6" {
		t.Errorf("readiness C2 = %q", got)
	}
	if got, _ := f.GetCellValue(sheetReadiness, "F2"); got != "Harpy, Light Missile Launcher" {
		t.Errorf("readiness F2 = %q", got)
	}

	if got, _ := f.GetCellValue(sheetLowStock, "B2"); got != "Harpy" {
		t.Errorf("low stock B2 = %q", got)
	}
	if got, _ := f.GetCellValue(sheetLowStock, "B3"); got != "" {
		t.Errorf("low stock B3 = %q, want empty", got)
	}
}

func TestWriteWorkbookEmptyReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	rep := &market.Report{LocationID: 60014068, LocationName: "nakah"}
	if err := WriteWorkbook(rep, path); err != nil {
		t.Fatalf("WriteWorkbook: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()
	if got, _ := f.GetCellValue(sheetStats, "A1"); got != "Type ID" {
		t.Errorf("stats A1 = %q, want header even with no rows", got)
	}
}
