package db

import (
	"fmt"
	"time"

	"mkts-backend/internal/esi"
)

// ReplaceOrders replaces the stored order snapshot for one location.
// Superseded orders are replaced, not accumulated: at most one live record
// per order id per snapshot.
func (d *DB) ReplaceOrders(locationID int64, orders []esi.MarketOrder) error {
	tx, err := d.sql.Begin()
	if err != nil {
		return fmt.Errorf("replace orders: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM market_orders WHERE location_id=?", locationID); err != nil {
		return fmt.Errorf("replace orders: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO market_orders
		  (order_id, location_id, type_id, is_buy_order, price, volume_remain, issued, duration)
		VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("replace orders: %w", err)
	}
	defer stmt.Close()

	for _, o := range orders {
		if o.LocationID != locationID {
			continue
		}
		_, err := stmt.Exec(o.OrderID, o.LocationID, o.TypeID, o.IsBuyOrder,
			o.Price, o.VolumeRemain, o.Issued.UTC().Format(time.RFC3339), o.Duration)
		if err != nil {
			return fmt.Errorf("replace orders: %w", err)
		}
	}

	if err := logUpdate(tx, "market_orders"); err != nil {
		return err
	}
	return tx.Commit()
}

// GetOrders loads the stored order snapshot for one location.
func (d *DB) GetOrders(locationID int64) ([]esi.MarketOrder, error) {
	rows, err := d.sql.Query(`
		SELECT order_id, location_id, type_id, is_buy_order, price, volume_remain, issued, duration
		  FROM market_orders
		 WHERE location_id=?
		 ORDER BY type_id, order_id`, locationID)
	if err != nil {
		return nil, fmt.Errorf("get orders: %w", err)
	}
	defer rows.Close()

	var orders []esi.MarketOrder
	for rows.Next() {
		var o esi.MarketOrder
		var issued string
		if err := rows.Scan(&o.OrderID, &o.LocationID, &o.TypeID, &o.IsBuyOrder,
			&o.Price, &o.VolumeRemain, &issued, &o.Duration); err != nil {
			return nil, fmt.Errorf("get orders: %w", err)
		}
		o.Issued, _ = time.Parse(time.RFC3339, issued)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
