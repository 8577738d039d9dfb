package market

import (
	"sort"

	"mkts-backend/internal/esi"
	"mkts-backend/internal/refdata"
)

// OrderBook holds the normalized live orders for one watchlist item at one
// location. Sells are sorted by ascending price, buys by descending price.
type OrderBook struct {
	TypeID int32
	Sells  []esi.MarketOrder
	Buys   []esi.MarketOrder
}

// Normalize converts a raw order snapshot into per-item order books for one
// location. It filters to watchlist items at the given location, drops
// orders with non-positive price or remaining volume, and keeps only the
// newest record per order id. Items with no surviving orders are simply
// absent from the result; empty input is not an error.
func Normalize(raw []esi.MarketOrder, watchlist map[int32]refdata.ItemInfo, locationID int64) map[int32]*OrderBook {
	// Dedupe by order id, newest issued record wins. Snapshots stitched
	// together from multiple pages can carry stale duplicates.
	latest := make(map[int64]esi.MarketOrder, len(raw))
	for _, o := range raw {
		if o.LocationID != locationID {
			continue
		}
		if _, watched := watchlist[o.TypeID]; !watched {
			continue
		}
		if o.VolumeRemain <= 0 || !o.Price.IsPositive() {
			continue
		}
		prev, seen := latest[o.OrderID]
		if !seen || o.Issued.After(prev.Issued) {
			latest[o.OrderID] = o
		}
	}

	books := make(map[int32]*OrderBook)
	for _, o := range latest {
		book, ok := books[o.TypeID]
		if !ok {
			book = &OrderBook{TypeID: o.TypeID}
			books[o.TypeID] = book
		}
		if o.IsBuyOrder {
			book.Buys = append(book.Buys, o)
		} else {
			book.Sells = append(book.Sells, o)
		}
	}

	for _, book := range books {
		sortOrders(book.Sells, true)
		sortOrders(book.Buys, false)
	}
	return books
}

// sortOrders orders sells cheapest-first and buys highest-first, breaking
// price ties by order id so output is stable across runs.
func sortOrders(orders []esi.MarketOrder, ascending bool) {
	sort.Slice(orders, func(i, j int) bool {
		cmp := orders[i].Price.Cmp(orders[j].Price)
		if cmp == 0 {
			return orders[i].OrderID < orders[j].OrderID
		}
		if ascending {
			return cmp < 0
		}
		return cmp > 0
	})
}
