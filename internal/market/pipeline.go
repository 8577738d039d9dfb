package market

import (
	"fmt"

	"mkts-backend/internal/esi"
	"mkts-backend/internal/logger"
	"mkts-backend/internal/refdata"
)

// RunConfig is the immutable per-run configuration. Each pipeline
// invocation gets its own copy, so concurrent per-location runs share no
// state.
type RunConfig struct {
	LocationID   int64
	LocationName string
	RegionID     int32

	Window            StatsWindow
	Policy            ReadinessPolicy
	LowStockDays      float64
	DefaultShipTarget int
}

// Inputs is the bounded snapshot a run operates on. Everything has been
// fetched before Run is called; the pipeline itself never blocks.
type Inputs struct {
	Orders    []esi.MarketOrder
	History   map[int32][]esi.HistoryEntry
	Reference *refdata.Set
}

// Run executes the full derivation pipeline over one input snapshot:
// normalize orders, derive per-item statistics, resolve each doctrine's
// bill of materials and its market readiness, and assemble the report.
//
// A run either completes and returns a full report or fails and returns
// nothing. Structural faults (no reference data) abort; per-doctrine
// reference faults are logged and drop only that doctrine.
func Run(cfg RunConfig, in Inputs) (*Report, error) {
	if err := in.Reference.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline run: %w", err)
	}
	ref := in.Reference

	books := Normalize(in.Orders, ref.Watchlist, cfg.LocationID)

	// One stats row per watchlist item, present on the market or not. An
	// absent book yields zero availability and null prices.
	stats := make(map[int32]ItemStat, len(ref.Watchlist))
	for _, typeID := range ref.WatchedTypeIDs() {
		stats[typeID] = ComputeItemStats(typeID, books[typeID], in.History[typeID], cfg.Window, cfg.LocationID)
	}

	var readiness []*DoctrineReadiness
	for _, def := range ref.Doctrines {
		// Reference-integrity faults fail this doctrine only.
		bom, err := ResolveDoctrine(def, ref.Fittings)
		if err != nil {
			logger.Warn("Pipeline", fmt.Sprintf("Skipping doctrine %d (%s): %v", def.DoctrineID, def.Name, err))
			continue
		}
		r, err := ComputeReadiness(bom, stats, cfg.LocationID, cfg.Policy)
		if err != nil {
			logger.Warn("Pipeline", fmt.Sprintf("Skipping doctrine %d (%s): %v", def.DoctrineID, def.Name, err))
			continue
		}
		readiness = append(readiness, r)
	}

	rep := AssembleReport(stats, readiness, ref, cfg.LocationID, cfg.LocationName,
		cfg.LowStockDays, cfg.DefaultShipTarget, cfg.Window.AsOf)
	logger.Info("Pipeline", fmt.Sprintf("Run complete: %d items, %d doctrines, %d low stock",
		len(rep.Stats), len(rep.Readiness), len(rep.LowStock)))
	return rep, nil
}
