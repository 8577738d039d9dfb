package market

import (
	"database/sql"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"mkts-backend/internal/refdata"
)

// NullDisplay is the presentation sentinel for undefined values. It exists
// only at the reporting boundary; the numeric core never uses it.
const NullDisplay = "n/a"

// StatRow is an ItemStat joined with its watchlist names, ready for
// persistence and publishing.
type StatRow struct {
	ItemStat
	TypeName     string
	GroupName    string
	CategoryName string
}

// ReadinessRow is a DoctrineReadiness joined with its doctrine name and
// stock target.
type ReadinessRow struct {
	DoctrineReadiness
	DoctrineName  string
	Target        int
	TargetPercent int
}

// Report is the complete output record set of one pipeline run. It is
// handed as a whole to the persistence and publishing collaborators; no
// partial report is ever emitted.
type Report struct {
	LocationID   int64
	LocationName string
	GeneratedAt  time.Time

	Stats     []StatRow
	Readiness []ReadinessRow
	LowStock  []StatRow
}

// AssembleReport merges per-item statistics and per-doctrine readiness into
// the final report. Pure structural merge: joins names and targets, sorts
// by natural key, and filters the low-stock view. All numeric derivation
// happened upstream.
func AssembleReport(
	stats map[int32]ItemStat,
	readiness []*DoctrineReadiness,
	ref *refdata.Set,
	locationID int64,
	locationName string,
	lowStockDays float64,
	defaultTarget int,
	asOf time.Time,
) *Report {
	rep := &Report{
		LocationID:   locationID,
		LocationName: locationName,
		GeneratedAt:  asOf,
	}

	for typeID, stat := range stats {
		info := ref.Watchlist[typeID]
		row := StatRow{
			ItemStat:     stat,
			TypeName:     ref.TypeName(typeID),
			GroupName:    info.GroupName,
			CategoryName: info.CategoryName,
		}
		rep.Stats = append(rep.Stats, row)
		if row.DaysRemaining.Valid && row.DaysRemaining.Float64 < lowStockDays {
			rep.LowStock = append(rep.LowStock, row)
		}
	}
	sort.Slice(rep.Stats, func(i, j int) bool { return rep.Stats[i].TypeID < rep.Stats[j].TypeID })
	sort.Slice(rep.LowStock, func(i, j int) bool {
		a, b := rep.LowStock[i], rep.LowStock[j]
		if a.DaysRemaining.Float64 != b.DaysRemaining.Float64 {
			return a.DaysRemaining.Float64 < b.DaysRemaining.Float64
		}
		return a.TypeID < b.TypeID
	})

	names := make(map[int32]string, len(ref.Doctrines))
	for _, d := range ref.Doctrines {
		names[d.DoctrineID] = d.Name
	}
	for _, r := range readiness {
		target := defaultTarget
		if t, ok := ref.Targets[r.DoctrineID]; ok && t > 0 {
			target = t
		}
		row := ReadinessRow{
			DoctrineReadiness: *r,
			DoctrineName:      names[r.DoctrineID],
			Target:            target,
			TargetPercent:     targetPercent(r.FitCount, target),
		}
		rep.Readiness = append(rep.Readiness, row)
	}
	sort.Slice(rep.Readiness, func(i, j int) bool {
		return rep.Readiness[i].DoctrineID < rep.Readiness[j].DoctrineID
	})
	return rep
}

// targetPercent is how far fit-count covers the stock target, capped at 100.
func targetPercent(fitCount int64, target int) int {
	if target <= 0 {
		return 0
	}
	pct := int(fitCount * 100 / int64(target))
	if pct > 100 {
		pct = 100
	}
	return pct
}

// FormatPrice renders a nullable price for publishing.
func FormatPrice(p decimal.NullDecimal) string {
	if !p.Valid {
		return NullDisplay
	}
	return p.Decimal.StringFixed(2)
}

// FormatFloat renders a nullable float with one decimal for publishing.
func FormatFloat(f sql.NullFloat64) string {
	if !f.Valid {
		return NullDisplay
	}
	return strconv.FormatFloat(f.Float64, 'f', 1, 64)
}
