package market

import (
	"errors"
	"testing"

	"mkts-backend/internal/esi"
	"mkts-backend/internal/refdata"
)

func pipelineRunConfig() RunConfig {
	return RunConfig{
		LocationID:        testLocation,
		LocationName:      "nakah",
		RegionID:          10000001,
		Window:            testWindow(),
		Policy:            ReadinessPolicy{ExcludeOptional: true},
		LowStockDays:      3,
		DefaultShipTarget: 20,
	}
}

func pipelineRefSet() *refdata.Set {
	return &refdata.Set{
		Watchlist: map[int32]refdata.ItemInfo{
			100: {TypeID: 100, TypeName: "Harpy"},
			101: {TypeID: 101, TypeName: "Light Missile Launcher"},
		},
		Fittings: map[int32][]refdata.FittingRequirement{
			1: {
				{FitID: 1, TypeID: 100, Quantity: 1},
				{FitID: 1, TypeID: 101, Quantity: 4},
			},
		},
		Doctrines: []refdata.DoctrineDefinition{
			{DoctrineID: 10, Name: "Harpy Fleet", FitIDs: []int32{1}},
		},
		Targets: map[int32]int{10: 10},
	}
}

func TestRun_EndToEnd(t *testing.T) {
	orders := []esi.MarketOrder{
		sellOrder(1, 100, "30000000", 6),
		sellOrder(2, 101, "900000", 25),
		buyOrder(3, 100, "25000000", 2),
	}
	history := map[int32][]esi.HistoryEntry{
		100: {historyDay(1, 2), historyDay(2, 4)},
	}

	rep, err := Run(pipelineRunConfig(), Inputs{Orders: orders, History: history, Reference: pipelineRefSet()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(rep.Stats) != 2 {
		t.Fatalf("len(Stats) = %d, want 2 (one per watchlist item)", len(rep.Stats))
	}
	if rep.Stats[0].TypeID != 100 || rep.Stats[0].SellVolume != 6 {
		t.Errorf("stats[0] = %+v", rep.Stats[0])
	}

	if len(rep.Readiness) != 1 {
		t.Fatalf("len(Readiness) = %d, want 1", len(rep.Readiness))
	}
	r := rep.Readiness[0]
	// Hulls allow 6 fits, launchers 25/4 = 6 fits.
	if r.FitCount != 6 {
		t.Errorf("FitCount = %d, want 6", r.FitCount)
	}
	if r.Target != 10 || r.TargetPercent != 60 {
		t.Errorf("Target/Percent = %d/%d, want 10/60", r.Target, r.TargetPercent)
	}
}

func TestRun_MissingReferenceDataIsFatal(t *testing.T) {
	_, err := Run(pipelineRunConfig(), Inputs{Reference: nil})
	if !errors.Is(err, refdata.ErrNoReferenceData) {
		t.Errorf("err = %v, want ErrNoReferenceData", err)
	}

	empty := pipelineRefSet()
	empty.Watchlist = map[int32]refdata.ItemInfo{}
	_, err = Run(pipelineRunConfig(), Inputs{Reference: empty})
	if !errors.Is(err, refdata.ErrNoReferenceData) {
		t.Errorf("empty watchlist err = %v, want ErrNoReferenceData", err)
	}
}

func TestRun_UnknownFittingDropsOnlyThatDoctrine(t *testing.T) {
	ref := pipelineRefSet()
	ref.Doctrines = append(ref.Doctrines, refdata.DoctrineDefinition{
		DoctrineID: 11, Name: "Broken", FitIDs: []int32{999},
	})

	rep, err := Run(pipelineRunConfig(), Inputs{Orders: nil, History: nil, Reference: ref})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rep.Readiness) != 1 || rep.Readiness[0].DoctrineID != 10 {
		t.Errorf("Readiness = %+v, want only doctrine 10", rep.Readiness)
	}
}

func TestRun_NoOrdersStillProducesReport(t *testing.T) {
	rep, err := Run(pipelineRunConfig(), Inputs{Reference: pipelineRefSet()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rep.Stats) != 2 {
		t.Fatalf("len(Stats) = %d, want 2", len(rep.Stats))
	}
	for _, s := range rep.Stats {
		if s.SellVolume != 0 || s.MinSell.Valid {
			t.Errorf("stat %d = %+v, want zero volume and null prices", s.TypeID, s)
		}
	}
	if rep.Readiness[0].FitCount != 0 {
		t.Errorf("FitCount = %d, want 0 with empty market", rep.Readiness[0].FitCount)
	}
}
