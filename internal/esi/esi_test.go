package esi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMarketOrder_UnmarshalJSON(t *testing.T) {
	raw := `{"order_id":1,"type_id":34,"location_id":60003760,"system_id":30000142,"price":4.5,"volume_remain":100000,"is_buy_order":false,"issued":"2025-01-15T12:00:00Z","duration":90}`
	var o MarketOrder
	if err := json.Unmarshal([]byte(raw), &o); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if o.OrderID != 1 || o.TypeID != 34 || o.LocationID != 60003760 || o.SystemID != 30000142 {
		t.Errorf("MarketOrder = %+v", o)
	}
	if !o.Price.Equal(decimal.RequireFromString("4.5")) || o.VolumeRemain != 100000 {
		t.Errorf("Price/VolumeRemain = %v/%v", o.Price, o.VolumeRemain)
	}
	if o.IsBuyOrder != false {
		t.Error("IsBuyOrder want false")
	}
	if o.Duration != 90 || o.Issued.IsZero() {
		t.Errorf("Duration/Issued = %v/%v", o.Duration, o.Issued)
	}
}

func TestHistoryEntry_UnmarshalJSON(t *testing.T) {
	raw := `{"date":"2025-01-15","average":100.5,"highest":105,"lowest":98,"volume":50000,"order_count":12}`
	var h HistoryEntry
	if err := json.Unmarshal([]byte(raw), &h); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if h.Date != "2025-01-15" || h.Average != 100.5 || h.Highest != 105 || h.Lowest != 98 {
		t.Errorf("HistoryEntry = %+v", h)
	}
	if h.Volume != 50000 || h.OrderCount != 12 {
		t.Errorf("Volume/OrderCount = %v/%v", h.Volume, h.OrderCount)
	}
}

func TestFetchRegionOrders_Paginated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets/10000001/orders/" {
			http.NotFound(w, r)
			return
		}
		page := r.URL.Query().Get("page")
		w.Header().Set("X-Pages", "2")
		w.Header().Set("Content-Type", "application/json")
		switch page {
		case "1":
			fmt.Fprint(w, `[{"order_id":1,"type_id":34,"price":5.0,"volume_remain":10,"is_buy_order":false}]`)
		case "2":
			fmt.Fprint(w, `[{"order_id":2,"type_id":35,"price":6.0,"volume_remain":20,"is_buy_order":true}]`)
		default:
			fmt.Fprint(w, `[]`)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "mkts-backend-test/1.0", 5)
	orders, err := c.FetchRegionOrders(context.Background(), 10000001)
	if err != nil {
		t.Fatalf("FetchRegionOrders: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("len(orders) = %d, want 2", len(orders))
	}
	ids := map[int64]bool{orders[0].OrderID: true, orders[1].OrderID: true}
	if !ids[1] || !ids[2] {
		t.Errorf("order ids = %v", ids)
	}
}

func TestFetchHistoryForTypes_ToleratesPerTypeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type_id") == "35" {
			http.Error(w, `{"error":"type not found"}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"date":"2025-01-15","average":100,"highest":101,"lowest":99,"volume":500,"order_count":3}]`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "mkts-backend-test/1.0", 5)
	got, err := c.FetchHistoryForTypes(context.Background(), 10000001, []int32{34, 35})
	if err != nil {
		t.Fatalf("FetchHistoryForTypes: %v", err)
	}
	if _, ok := got[34]; !ok {
		t.Error("type 34 missing from result")
	}
	if _, ok := got[35]; ok {
		t.Error("type 35 should be absent (fetch failed)")
	}
	if len(got[34]) != 1 || got[34][0].Volume != 500 {
		t.Errorf("history[34] = %+v", got[34])
	}
}

func TestNewClient_DefaultsMaxConns(t *testing.T) {
	c := NewClient("http://localhost", "ua", 0)
	if c.maxConns != 20 {
		t.Errorf("maxConns = %d, want 20", c.maxConns)
	}
}
