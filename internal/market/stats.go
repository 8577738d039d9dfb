package market

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"mkts-backend/internal/esi"
)

// StatsWindow parameterizes the trailing-history statistics.
// AsOf is passed explicitly so a run is a pure function of its inputs.
type StatsWindow struct {
	Days      int
	MinPoints int
	AsOf      time.Time
}

// ItemStat is the derived per-item market summary. Price fields and the
// volume averages are null, not zero, when the underlying data does not
// exist: an empty order book side or too few history points is "unknown",
// which must never be conflated with a legitimate zero.
type ItemStat struct {
	TypeID     int32
	LocationID int64

	MinSell decimal.NullDecimal
	MaxBuy  decimal.NullDecimal

	SellVolume     int64
	AvgDailyVolume sql.NullFloat64
	DaysRemaining  sql.NullFloat64
}

// ComputeItemStats derives the summary statistics for one item from its
// normalized order book and trailing history window. Pure and
// deterministic: identical inputs yield identical output.
// A nil book means the item has no market presence: zero sell volume and
// null prices.
func ComputeItemStats(typeID int32, book *OrderBook, history []esi.HistoryEntry, w StatsWindow, locationID int64) ItemStat {
	stat := ItemStat{TypeID: typeID, LocationID: locationID}
	if book != nil {
		for _, o := range book.Sells {
			stat.SellVolume += o.VolumeRemain
			if !stat.MinSell.Valid || o.Price.LessThan(stat.MinSell.Decimal) {
				stat.MinSell = decimal.NewNullDecimal(o.Price)
			}
		}
		for _, o := range book.Buys {
			if !stat.MaxBuy.Valid || o.Price.GreaterThan(stat.MaxBuy.Decimal) {
				stat.MaxBuy = decimal.NewNullDecimal(o.Price)
			}
		}
	}

	stat.AvgDailyVolume = averageDailyVolume(history, w)
	stat.DaysRemaining = daysRemaining(stat.SellVolume, stat.AvgDailyVolume)
	return stat
}

// averageDailyVolume is the arithmetic mean of traded volume over the
// window. Missing days are absent records, not zeros, so the mean is over
// the days that actually traded. Below MinPoints the average is null
// rather than extrapolated.
func averageDailyVolume(history []esi.HistoryEntry, w StatsWindow) sql.NullFloat64 {
	cutoff := w.AsOf.AddDate(0, 0, -w.Days).Format("2006-01-02")
	var total int64
	var points int
	for _, h := range history {
		if h.Date >= cutoff {
			total += h.Volume
			points++
		}
	}
	if points < w.MinPoints || points == 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: float64(total) / float64(points), Valid: true}
}

// daysRemaining estimates days until current sell supply is exhausted at
// the average trade velocity. Null when the average itself is undefined or
// zero; a defined zero (no supply, positive velocity) stays zero.
func daysRemaining(sellVolume int64, avg sql.NullFloat64) sql.NullFloat64 {
	if !avg.Valid || avg.Float64 <= 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: float64(sellVolume) / avg.Float64, Valid: true}
}
