package esi

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// HistoryEntry represents a single day of market history for a type in a region.
type HistoryEntry struct {
	Date       string  `json:"date"`
	Average    float64 `json:"average"`
	Highest    float64 `json:"highest"`
	Lowest     float64 `json:"lowest"`
	Volume     int64   `json:"volume"`
	OrderCount int64   `json:"order_count"`
}

// FetchMarketHistory fetches daily market history for a type in a region.
// ESI returns up to ~400 days; callers window it as needed.
func (c *Client) FetchMarketHistory(ctx context.Context, regionID, typeID int32) ([]HistoryEntry, error) {
	path := fmt.Sprintf("/markets/%d/history/", regionID)
	query := map[string]string{"type_id": fmt.Sprint(typeID)}

	var entries []HistoryEntry
	if err := c.getJSON(ctx, path, query, &entries); err != nil {
		return nil, fmt.Errorf("fetch history region %d type %d: %w", regionID, typeID, err)
	}
	return entries, nil
}

// FetchHistoryForTypes fetches history for many types concurrently.
// Types whose fetch fails are logged by the caller and simply absent from
// the result; a missing series degrades to a null average downstream, it
// does not abort the batch.
func (c *Client) FetchHistoryForTypes(ctx context.Context, regionID int32, typeIDs []int32) (map[int32][]HistoryEntry, error) {
	out := make(map[int32][]HistoryEntry, len(typeIDs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConns)
	for _, typeID := range typeIDs {
		typeID := typeID
		g.Go(func() error {
			entries, err := c.FetchMarketHistory(gctx, regionID, typeID)
			if err != nil {
				// Tolerated: item keeps a null average downstream.
				return nil
			}
			mu.Lock()
			out[typeID] = entries
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
