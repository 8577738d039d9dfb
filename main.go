package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"mkts-backend/internal/config"
	"mkts-backend/internal/db"
	"mkts-backend/internal/esi"
	"mkts-backend/internal/export"
	"mkts-backend/internal/logger"
	"mkts-backend/internal/market"
	"mkts-backend/internal/refdata"
)

var version = "dev"

func main() {
	withHistory := flag.Bool("history", false, "refresh market history from ESI before the run")
	skipExport := flag.Bool("no-export", false, "skip writing the xlsx report")
	addWatchlist := flag.String("add-watchlist", "", "comma-separated type ids to add to the watchlist, then exit")
	setTarget := flag.String("set-target", "", "doctrine stock target as doctrine_id=target, then exit")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.LogLevel, cfg.LogEncoding); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Banner(version)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Failed to open database: %v", err))
		os.Exit(1)
	}
	defer database.Close()

	ctx := context.Background()
	client := esi.NewClient(cfg.ESIBaseURL, cfg.ESIUserAgent, cfg.ESIMaxConns)

	if *addWatchlist != "" {
		if err := runAddWatchlist(ctx, database, client, *addWatchlist); err != nil {
			logger.Error("Watchlist", err.Error())
			os.Exit(1)
		}
		return
	}
	if *setTarget != "" {
		if err := runSetTarget(database, *setTarget); err != nil {
			logger.Error("Targets", err.Error())
			os.Exit(1)
		}
		return
	}

	if err := runPipeline(ctx, cfg, database, client, *withHistory, !*skipExport); err != nil {
		logger.Error("Run", err.Error())
		os.Exit(1)
	}
}

// runPipeline executes one full collect-derive-publish cycle for the
// configured deployment.
func runPipeline(ctx context.Context, cfg *config.Config, database *db.DB, client *esi.Client, refreshHistory, doExport bool) error {
	dep := cfg.Deployment()
	database.CleanupOldHistory(cfg.HistoryRetention)

	ref, err := database.LoadReference()
	if err != nil {
		return fmt.Errorf("load reference data: %w", err)
	}
	// Fail before any fetch if the reference snapshot cannot support a run.
	if err := ref.Validate(); err != nil {
		return err
	}

	if !client.HealthCheck(ctx) {
		logger.Warn("ESI", "Health check failed, proceeding anyway")
	}

	logger.Info("ESI", fmt.Sprintf("Fetching orders for region %d...", dep.RegionID))
	orders, err := client.FetchRegionOrders(ctx, dep.RegionID)
	if err != nil {
		return fmt.Errorf("fetch orders: %w", err)
	}
	logger.Success("ESI", fmt.Sprintf("Fetched %d orders", len(orders)))
	if err := database.ReplaceOrders(dep.LocationID, orders); err != nil {
		return err
	}

	history, err := gatherHistory(ctx, cfg, database, client, ref.WatchedTypeIDs(), refreshHistory)
	if err != nil {
		return err
	}

	runCfg := market.RunConfig{
		LocationID:   dep.LocationID,
		LocationName: dep.Name,
		RegionID:     dep.RegionID,
		Window: market.StatsWindow{
			Days:      cfg.HistoryWindowDays,
			MinPoints: cfg.MinHistoryPoints,
			AsOf:      time.Now().UTC(),
		},
		Policy:            market.ReadinessPolicy{ExcludeOptional: cfg.ExcludeOptionalItems},
		LowStockDays:      cfg.LowStockDays,
		DefaultShipTarget: cfg.DefaultShipTarget,
	}

	report, err := market.Run(runCfg, market.Inputs{
		Orders:    orders,
		History:   history,
		Reference: ref,
	})
	if err != nil {
		return err
	}

	if err := database.UpsertReport(report); err != nil {
		return err
	}
	logger.Success("DB", "Report persisted")

	if doExport {
		if err := export.WriteWorkbook(report, cfg.ExportPath); err != nil {
			return fmt.Errorf("export report: %w", err)
		}
		logger.Success("Export", fmt.Sprintf("Wrote %s", cfg.ExportPath))
	}
	return nil
}

// gatherHistory assembles the trailing history window per watchlist type,
// serving from the local cache and fetching the rest from ESI. With
// refresh set, every type is re-fetched.
func gatherHistory(ctx context.Context, cfg *config.Config, database *db.DB, client *esi.Client, typeIDs []int32, refresh bool) (map[int32][]esi.HistoryEntry, error) {
	history := make(map[int32][]esi.HistoryEntry, len(typeIDs))
	var missing []int32
	for _, typeID := range typeIDs {
		if !refresh {
			if entries, ok := database.GetMarketHistory(cfg.RegionID, typeID); ok {
				history[typeID] = entries
				continue
			}
		}
		missing = append(missing, typeID)
	}
	if len(missing) == 0 {
		return history, nil
	}

	logger.Info("ESI", fmt.Sprintf("Fetching history for %d types...", len(missing)))
	fetched, err := client.FetchHistoryForTypes(ctx, cfg.RegionID, missing)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	for typeID, entries := range fetched {
		history[typeID] = entries
		database.SetMarketHistory(cfg.RegionID, typeID, entries, cfg.HistoryRetention)
	}
	if len(fetched) < len(missing) {
		logger.Warn("ESI", fmt.Sprintf("History missing for %d of %d types", len(missing)-len(fetched), len(missing)))
	}
	return history, nil
}

// runAddWatchlist resolves the given type ids against ESI and adds them to
// the watchlist.
func runAddWatchlist(ctx context.Context, database *db.DB, client *esi.Client, raw string) error {
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		id, err := strconv.ParseInt(field, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid type id %q: %w", field, err)
		}
		info, err := lookupItemInfo(ctx, client, int32(id))
		if err != nil {
			return err
		}
		if database.AddWatchlistItem(*info) {
			logger.Success("Watchlist", fmt.Sprintf("Added %s (%d)", info.TypeName, info.TypeID))
		} else {
			logger.Info("Watchlist", fmt.Sprintf("Already tracked: %d", info.TypeID))
		}
	}
	return nil
}

func lookupItemInfo(ctx context.Context, client *esi.Client, typeID int32) (*refdata.ItemInfo, error) {
	t, err := client.FetchType(ctx, typeID)
	if err != nil {
		return nil, err
	}
	g, err := client.FetchGroup(ctx, t.GroupID)
	if err != nil {
		return nil, err
	}
	c, err := client.FetchCategory(ctx, g.CategoryID)
	if err != nil {
		return nil, err
	}
	return &refdata.ItemInfo{
		TypeID:       typeID,
		TypeName:     t.Name,
		GroupID:      g.GroupID,
		GroupName:    g.Name,
		CategoryID:   c.CategoryID,
		CategoryName: c.Name,
	}, nil
}

// runSetTarget parses "doctrine_id=target" and stores it.
func runSetTarget(database *db.DB, raw string) error {
	parts := strings.SplitN(raw, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("expected doctrine_id=target, got %q", raw)
	}
	doctrineID, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 32)
	if err != nil {
		return fmt.Errorf("invalid doctrine id %q: %w", parts[0], err)
	}
	target, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || target <= 0 {
		return fmt.Errorf("invalid target %q", parts[1])
	}
	if err := database.SetShipTarget(int32(doctrineID), target); err != nil {
		return err
	}
	logger.Success("Targets", fmt.Sprintf("Doctrine %d target set to %d", doctrineID, target))
	return nil
}
