package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HistoryWindowDays != 30 {
		t.Errorf("HistoryWindowDays = %d, want 30", cfg.HistoryWindowDays)
	}
	if cfg.MinHistoryPoints != 1 {
		t.Errorf("MinHistoryPoints = %d, want 1", cfg.MinHistoryPoints)
	}
	if !cfg.ExcludeOptionalItems {
		t.Error("ExcludeOptionalItems default should be true")
	}
	if cfg.LocationID != 60014068 {
		t.Errorf("LocationID = %d, want 60014068", cfg.LocationID)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MKTS_REGION_ID", "10000002")
	t.Setenv("MKTS_DEPLOYMENT_NAME", "jita")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	dep := cfg.Deployment()
	if dep.RegionID != 10000002 || dep.Name != "jita" {
		t.Errorf("Deployment = %+v", dep)
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	t.Setenv("MKTS_HISTORY_WINDOW_DAYS", "0")
	if _, err := Load(); err == nil {
		t.Error("Load should fail with zero history window")
	}
}
