package db

import (
	"database/sql"
	"fmt"
	"time"

	"mkts-backend/internal/market"
)

// UpsertReport persists one run's complete report: market_stats and
// doctrine_report rows upserted by natural key. Re-running with identical
// inputs rewrites identical rows, so publication is idempotent. The write
// is a single transaction: a failed run commits nothing.
func (d *DB) UpsertReport(rep *market.Report) error {
	tx, err := d.sql.Begin()
	if err != nil {
		return fmt.Errorf("upsert report: %w", err)
	}
	defer tx.Rollback()

	updatedAt := rep.GeneratedAt.UTC().Format(time.RFC3339)

	statStmt, err := tx.Prepare(`
		INSERT INTO market_stats
		  (location_id, type_id, type_name, group_name, category_name,
		   min_sell, max_buy, sell_volume, avg_daily_volume, days_remaining, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(location_id, type_id) DO UPDATE SET
		  type_name=excluded.type_name, group_name=excluded.group_name,
		  category_name=excluded.category_name, min_sell=excluded.min_sell,
		  max_buy=excluded.max_buy, sell_volume=excluded.sell_volume,
		  avg_daily_volume=excluded.avg_daily_volume,
		  days_remaining=excluded.days_remaining, updated_at=excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("upsert report: %w", err)
	}
	defer statStmt.Close()

	for _, row := range rep.Stats {
		_, err := statStmt.Exec(row.LocationID, row.TypeID, row.TypeName, row.GroupName,
			row.CategoryName, row.MinSell, row.MaxBuy, row.SellVolume,
			row.AvgDailyVolume, row.DaysRemaining, updatedAt)
		if err != nil {
			return fmt.Errorf("upsert stats row type %d: %w", row.TypeID, err)
		}
	}

	docStmt, err := tx.Prepare(`
		INSERT INTO doctrine_report
		  (location_id, doctrine_id, doctrine_name, fit_count, target, target_percent, updated_at)
		VALUES (?,?,?,?,?,?,?)
		ON CONFLICT(location_id, doctrine_id) DO UPDATE SET
		  doctrine_name=excluded.doctrine_name, fit_count=excluded.fit_count,
		  target=excluded.target, target_percent=excluded.target_percent,
		  updated_at=excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("upsert report: %w", err)
	}
	defer docStmt.Close()

	itemStmt, err := tx.Prepare(`
		INSERT INTO doctrine_report_items
		  (location_id, doctrine_id, type_id, required, available, fits, optional, limiting)
		VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT(location_id, doctrine_id, type_id) DO UPDATE SET
		  required=excluded.required, available=excluded.available,
		  fits=excluded.fits, optional=excluded.optional, limiting=excluded.limiting`)
	if err != nil {
		return fmt.Errorf("upsert report: %w", err)
	}
	defer itemStmt.Close()

	for _, row := range rep.Readiness {
		_, err := docStmt.Exec(row.LocationID, row.DoctrineID, row.DoctrineName,
			row.FitCount, row.Target, row.TargetPercent, updatedAt)
		if err != nil {
			return fmt.Errorf("upsert doctrine %d: %w", row.DoctrineID, err)
		}
		// Drop item rows for doctrines whose BOM shrank since last run.
		if _, err := tx.Exec(
			"DELETE FROM doctrine_report_items WHERE location_id=? AND doctrine_id=?",
			row.LocationID, row.DoctrineID); err != nil {
			return fmt.Errorf("upsert doctrine %d items: %w", row.DoctrineID, err)
		}
		for _, item := range row.Items {
			_, err := itemStmt.Exec(row.LocationID, row.DoctrineID, item.TypeID,
				item.Required, item.Available, item.Fits, item.Optional, item.Limiting)
			if err != nil {
				return fmt.Errorf("upsert doctrine %d item %d: %w", row.DoctrineID, item.TypeID, err)
			}
		}
	}

	for _, table := range []string{"market_stats", "doctrine_report"} {
		if err := logUpdate(tx, table); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LastUpdate returns the recorded refresh time for a table, or zero time.
func (d *DB) LastUpdate(table string) time.Time {
	var raw string
	err := d.sql.QueryRow("SELECT updated_at FROM update_log WHERE table_name=?", table).Scan(&raw)
	if err != nil {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339, raw)
	return t
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func logUpdate(tx execer, table string) error {
	_, err := tx.Exec(
		"INSERT OR REPLACE INTO update_log (table_name, updated_at) VALUES (?,?)",
		table, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("log update %s: %w", table, err)
	}
	return nil
}
