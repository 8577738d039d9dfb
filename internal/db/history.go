package db

import (
	"time"

	"mkts-backend/internal/esi"
	"mkts-backend/internal/logger"
)

// GetMarketHistory retrieves cached market history for a region/type pair.
// Returns nil, false if not cached or if the cache is older than 24 hours.
func (d *DB) GetMarketHistory(regionID, typeID int32) ([]esi.HistoryEntry, bool) {
	var updatedAt string
	err := d.sql.QueryRow(
		"SELECT updated_at FROM market_history_meta WHERE region_id=? AND type_id=?",
		regionID, typeID,
	).Scan(&updatedAt)
	if err != nil {
		return nil, false
	}

	t, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil || time.Since(t) > 24*time.Hour {
		return nil, false
	}

	rows, err := d.sql.Query(
		"SELECT date, average, highest, lowest, volume, order_count FROM market_history WHERE region_id=? AND type_id=? ORDER BY date",
		regionID, typeID,
	)
	if err != nil {
		return nil, false
	}
	defer rows.Close()

	var entries []esi.HistoryEntry
	for rows.Next() {
		var e esi.HistoryEntry
		if err := rows.Scan(&e.Date, &e.Average, &e.Highest, &e.Lowest, &e.Volume, &e.OrderCount); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil, false
	}
	return entries, true
}

// SetMarketHistory stores history entries for a region/type pair. Dates are
// unique per item and region; re-storing the same day replaces the row.
// Only entries within retentionDays are kept to bound database growth.
func (d *DB) SetMarketHistory(regionID, typeID int32, entries []esi.HistoryEntry, retentionDays int) {
	tx, err := d.sql.Begin()
	if err != nil {
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO market_history (region_id, type_id, date, average, highest, lowest, volume, order_count)
		VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT(region_id, type_id, date) DO UPDATE SET
		  average=excluded.average, highest=excluded.highest, lowest=excluded.lowest,
		  volume=excluded.volume, order_count=excluded.order_count`)
	if err != nil {
		return
	}
	defer stmt.Close()

	cutoff := time.Now().AddDate(0, 0, -retentionDays).Format("2006-01-02")
	for _, e := range entries {
		if e.Date >= cutoff {
			stmt.Exec(regionID, typeID, e.Date, e.Average, e.Highest, e.Lowest, e.Volume, e.OrderCount)
		}
	}

	tx.Exec(
		"INSERT OR REPLACE INTO market_history_meta (region_id, type_id, updated_at) VALUES (?,?,?)",
		regionID, typeID, time.Now().UTC().Format(time.RFC3339),
	)

	tx.Commit()
}

// CleanupOldHistory removes history rows past the retention window and meta
// entries that have gone stale. Called on startup to keep the database
// bounded.
func (d *DB) CleanupOldHistory(retentionDays int) {
	cutoffDate := time.Now().AddDate(0, 0, -retentionDays).Format("2006-01-02")
	cutoffMeta := time.Now().AddDate(0, 0, -30).Format(time.RFC3339)

	res, err := d.sql.Exec("DELETE FROM market_history WHERE date < ?", cutoffDate)
	if err != nil {
		logger.Warn("DB", "CleanupOldHistory: history delete failed: "+err.Error())
	} else if n, _ := res.RowsAffected(); n > 0 {
		logger.Info("DB", "CleanupOldHistory: removed old history rows")
	}

	res, err = d.sql.Exec("DELETE FROM market_history_meta WHERE updated_at < ?", cutoffMeta)
	if err != nil {
		logger.Warn("DB", "CleanupOldHistory: meta delete failed: "+err.Error())
	} else if n, _ := res.RowsAffected(); n > 0 {
		logger.Info("DB", "CleanupOldHistory: removed stale meta entries")
	}
}
