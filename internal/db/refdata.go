package db

import (
	"fmt"

	"mkts-backend/internal/refdata"
)

// LoadReference loads the full immutable reference snapshot for one run:
// watchlist, fitting requirements, doctrine definitions and stock targets.
func (d *DB) LoadReference() (*refdata.Set, error) {
	set := &refdata.Set{
		Watchlist: make(map[int32]refdata.ItemInfo),
		Fittings:  make(map[int32][]refdata.FittingRequirement),
		Targets:   make(map[int32]int),
	}

	rows, err := d.sql.Query(`
		SELECT type_id, type_name, group_id, group_name, category_id, category_name
		  FROM watchlist`)
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}
	for rows.Next() {
		var info refdata.ItemInfo
		if err := rows.Scan(&info.TypeID, &info.TypeName, &info.GroupID,
			&info.GroupName, &info.CategoryID, &info.CategoryName); err != nil {
			rows.Close()
			return nil, fmt.Errorf("load watchlist: %w", err)
		}
		set.Watchlist[info.TypeID] = info
	}
	rows.Close()

	rows, err = d.sql.Query(`
		SELECT fit_id, type_id, quantity, optional FROM fit_items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load fittings: %w", err)
	}
	for rows.Next() {
		var r refdata.FittingRequirement
		if err := rows.Scan(&r.FitID, &r.TypeID, &r.Quantity, &r.Optional); err != nil {
			rows.Close()
			return nil, fmt.Errorf("load fittings: %w", err)
		}
		set.Fittings[r.FitID] = append(set.Fittings[r.FitID], r)
	}
	rows.Close()

	rows, err = d.sql.Query(`SELECT doctrine_id, name FROM doctrines ORDER BY doctrine_id`)
	if err != nil {
		return nil, fmt.Errorf("load doctrines: %w", err)
	}
	for rows.Next() {
		var def refdata.DoctrineDefinition
		if err := rows.Scan(&def.DoctrineID, &def.Name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("load doctrines: %w", err)
		}
		set.Doctrines = append(set.Doctrines, def)
	}
	rows.Close()

	// Doctrine fit lists are ordered and may repeat a fitting; each
	// occurrence adds its full demand.
	for i := range set.Doctrines {
		def := &set.Doctrines[i]
		rows, err = d.sql.Query(`SELECT fit_id FROM doctrine_map WHERE doctrine_id=? ORDER BY id`, def.DoctrineID)
		if err != nil {
			return nil, fmt.Errorf("load doctrine map: %w", err)
		}
		for rows.Next() {
			var fitID int32
			if err := rows.Scan(&fitID); err != nil {
				rows.Close()
				return nil, fmt.Errorf("load doctrine map: %w", err)
			}
			def.FitIDs = append(def.FitIDs, fitID)
		}
		rows.Close()
	}

	rows, err = d.sql.Query(`SELECT doctrine_id, target FROM ship_targets`)
	if err != nil {
		return nil, fmt.Errorf("load targets: %w", err)
	}
	for rows.Next() {
		var doctrineID int32
		var target int
		if err := rows.Scan(&doctrineID, &target); err != nil {
			rows.Close()
			return nil, fmt.Errorf("load targets: %w", err)
		}
		set.Targets[doctrineID] = target
	}
	rows.Close()

	return set, nil
}

// AddWatchlistItem inserts a watchlist item. Returns true if inserted,
// false if the type was already tracked.
func (d *DB) AddWatchlistItem(info refdata.ItemInfo) bool {
	res, err := d.sql.Exec(`
		INSERT OR IGNORE INTO watchlist
		  (type_id, type_name, group_id, group_name, category_id, category_name)
		VALUES (?,?,?,?,?,?)`,
		info.TypeID, info.TypeName, info.GroupID, info.GroupName, info.CategoryID, info.CategoryName)
	if err != nil {
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

// DeleteWatchlistItem removes a watchlist item by type id.
func (d *DB) DeleteWatchlistItem(typeID int32) {
	d.sql.Exec("DELETE FROM watchlist WHERE type_id=?", typeID)
}

// AddFittingRequirement appends one requirement row to a fitting.
func (d *DB) AddFittingRequirement(r refdata.FittingRequirement) error {
	_, err := d.sql.Exec(
		"INSERT INTO fit_items (fit_id, type_id, quantity, optional) VALUES (?,?,?,?)",
		r.FitID, r.TypeID, r.Quantity, r.Optional)
	if err != nil {
		return fmt.Errorf("add fitting requirement: %w", err)
	}
	return nil
}

// AddDoctrine registers a doctrine and its ordered fitting list.
func (d *DB) AddDoctrine(def refdata.DoctrineDefinition) error {
	tx, err := d.sql.Begin()
	if err != nil {
		return fmt.Errorf("add doctrine: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO doctrines (doctrine_id, name) VALUES (?,?)",
		def.DoctrineID, def.Name); err != nil {
		return fmt.Errorf("add doctrine: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM doctrine_map WHERE doctrine_id=?", def.DoctrineID); err != nil {
		return fmt.Errorf("add doctrine: %w", err)
	}
	for _, fitID := range def.FitIDs {
		if _, err := tx.Exec(
			"INSERT INTO doctrine_map (doctrine_id, fit_id) VALUES (?,?)",
			def.DoctrineID, fitID); err != nil {
			return fmt.Errorf("add doctrine: %w", err)
		}
	}
	return tx.Commit()
}

// SetShipTarget sets the stocked-fits target for a doctrine.
func (d *DB) SetShipTarget(doctrineID int32, target int) error {
	_, err := d.sql.Exec(
		"INSERT OR REPLACE INTO ship_targets (doctrine_id, target) VALUES (?,?)",
		doctrineID, target)
	if err != nil {
		return fmt.Errorf("set ship target: %w", err)
	}
	return nil
}
