package db

import (
	"database/sql"
	"fmt"

	"mkts-backend/internal/logger"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite market database.
type DB struct {
	sql *sql.DB
}

// Open opens (or creates) the SQLite database at path and runs migrations.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	// Try to read current version
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS watchlist (
				type_id       INTEGER PRIMARY KEY,
				type_name     TEXT NOT NULL,
				group_id      INTEGER NOT NULL DEFAULT 0,
				group_name    TEXT NOT NULL DEFAULT '',
				category_id   INTEGER NOT NULL DEFAULT 0,
				category_name TEXT NOT NULL DEFAULT ''
			);

			CREATE TABLE IF NOT EXISTS fit_items (
				id       INTEGER PRIMARY KEY AUTOINCREMENT,
				fit_id   INTEGER NOT NULL,
				type_id  INTEGER NOT NULL,
				quantity INTEGER NOT NULL,
				optional INTEGER NOT NULL DEFAULT 0
			);
			CREATE INDEX IF NOT EXISTS idx_fit_items_fit ON fit_items(fit_id);

			CREATE TABLE IF NOT EXISTS doctrines (
				doctrine_id INTEGER PRIMARY KEY,
				name        TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS doctrine_map (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				doctrine_id INTEGER NOT NULL REFERENCES doctrines(doctrine_id),
				fit_id      INTEGER NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_doctrine_map ON doctrine_map(doctrine_id);

			CREATE TABLE IF NOT EXISTS ship_targets (
				doctrine_id INTEGER PRIMARY KEY,
				target      INTEGER NOT NULL
			);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		logger.Info("DB", "Applied migration v1 (reference data)")
	}

	if version < 2 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS market_orders (
				order_id      INTEGER NOT NULL,
				location_id   INTEGER NOT NULL,
				type_id       INTEGER NOT NULL,
				is_buy_order  INTEGER NOT NULL,
				price         NUMERIC NOT NULL,
				volume_remain INTEGER NOT NULL,
				issued        TEXT NOT NULL,
				duration      INTEGER NOT NULL,
				PRIMARY KEY (location_id, order_id)
			);
			CREATE INDEX IF NOT EXISTS idx_orders_type ON market_orders(location_id, type_id);

			CREATE TABLE IF NOT EXISTS market_history (
				region_id   INTEGER NOT NULL,
				type_id     INTEGER NOT NULL,
				date        TEXT NOT NULL,
				average     REAL,
				highest     REAL,
				lowest      REAL,
				volume      INTEGER,
				order_count INTEGER,
				PRIMARY KEY (region_id, type_id, date)
			);

			CREATE TABLE IF NOT EXISTS market_history_meta (
				region_id  INTEGER NOT NULL,
				type_id    INTEGER NOT NULL,
				updated_at TEXT NOT NULL,
				PRIMARY KEY (region_id, type_id)
			);

			INSERT OR IGNORE INTO schema_version (version) VALUES (2);
		`)
		if err != nil {
			return fmt.Errorf("migration v2: %w", err)
		}
		logger.Info("DB", "Applied migration v2 (orders and history)")
	}

	if version < 3 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS market_stats (
				location_id     INTEGER NOT NULL,
				type_id         INTEGER NOT NULL,
				type_name       TEXT NOT NULL DEFAULT '',
				group_name      TEXT NOT NULL DEFAULT '',
				category_name   TEXT NOT NULL DEFAULT '',
				min_sell        NUMERIC,
				max_buy         NUMERIC,
				sell_volume     INTEGER NOT NULL DEFAULT 0,
				avg_daily_volume REAL,
				days_remaining  REAL,
				updated_at      TEXT NOT NULL,
				PRIMARY KEY (location_id, type_id)
			);

			CREATE TABLE IF NOT EXISTS doctrine_report (
				location_id    INTEGER NOT NULL,
				doctrine_id    INTEGER NOT NULL,
				doctrine_name  TEXT NOT NULL DEFAULT '',
				fit_count      INTEGER NOT NULL,
				target         INTEGER NOT NULL DEFAULT 0,
				target_percent INTEGER NOT NULL DEFAULT 0,
				updated_at     TEXT NOT NULL,
				PRIMARY KEY (location_id, doctrine_id)
			);

			CREATE TABLE IF NOT EXISTS doctrine_report_items (
				location_id INTEGER NOT NULL,
				doctrine_id INTEGER NOT NULL,
				type_id     INTEGER NOT NULL,
				required    INTEGER NOT NULL,
				available   INTEGER NOT NULL,
				fits        INTEGER NOT NULL,
				optional    INTEGER NOT NULL DEFAULT 0,
				limiting    INTEGER NOT NULL DEFAULT 0,
				PRIMARY KEY (location_id, doctrine_id, type_id)
			);

			CREATE TABLE IF NOT EXISTS update_log (
				table_name TEXT PRIMARY KEY,
				updated_at TEXT NOT NULL
			);

			INSERT OR IGNORE INTO schema_version (version) VALUES (3);
		`)
		if err != nil {
			return fmt.Errorf("migration v3: %w", err)
		}
		logger.Info("DB", "Applied migration v3 (derived stats)")
	}

	return nil
}

// SqlDB returns the underlying *sql.DB for use by other packages.
func (d *DB) SqlDB() *sql.DB {
	return d.sql
}
