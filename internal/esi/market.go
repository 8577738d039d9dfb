package esi

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MarketOrder mirrors the ESI market order response.
type MarketOrder struct {
	OrderID      int64           `json:"order_id"`
	TypeID       int32           `json:"type_id"`
	LocationID   int64           `json:"location_id"`
	SystemID     int32           `json:"system_id"`
	Price        decimal.Decimal `json:"price"`
	VolumeRemain int64           `json:"volume_remain"`
	IsBuyOrder   bool            `json:"is_buy_order"`
	Issued       time.Time       `json:"issued"`
	Duration     int32           `json:"duration"`
}

// FetchRegionOrders fetches all live market orders for a region, both sides.
func (c *Client) FetchRegionOrders(ctx context.Context, regionID int32) ([]MarketOrder, error) {
	path := fmt.Sprintf("/markets/%d/orders/", regionID)
	query := map[string]string{"order_type": "all"}
	orders, err := getPaginated[MarketOrder](ctx, c, path, query)
	if err != nil {
		return nil, fmt.Errorf("fetch region %d orders: %w", regionID, err)
	}
	return orders, nil
}

// FetchRegionOrdersByType fetches all orders for one type in a region.
func (c *Client) FetchRegionOrdersByType(ctx context.Context, regionID, typeID int32) ([]MarketOrder, error) {
	path := fmt.Sprintf("/markets/%d/orders/", regionID)
	query := map[string]string{
		"order_type": "all",
		"type_id":    fmt.Sprint(typeID),
	}
	orders, err := getPaginated[MarketOrder](ctx, c, path, query)
	if err != nil {
		return nil, fmt.Errorf("fetch region %d type %d orders: %w", regionID, typeID, err)
	}
	return orders, nil
}
