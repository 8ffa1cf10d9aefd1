package store

import (
	"testing"

	"github.com/fernwick/ember/internal/database"
	"github.com/fernwick/ember/internal/model"
)

func setupSettingsTestDB(t *testing.T) *SettingsStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSettingsStore(db)
}

func TestSettingsDefaults(t *testing.T) {
	ss := setupSettingsTestDB(t)

	cfg, err := ss.GetSettings()
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	want := model.DefaultSettings()
	if cfg != want {
		t.Errorf("settings = %+v, want defaults %+v", cfg, want)
	}
	if cfg.DailyEnergyLimit != 20 {
		t.Errorf("daily energy limit = %d, want 20", cfg.DailyEnergyLimit)
	}
	if !cfg.Notifications {
		t.Error("notifications should default on")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	ss := setupSettingsTestDB(t)

	in := model.Settings{
		DarkMode:         true,
		Notifications:    false,
		UserName:         "Avery",
		DailyEnergyLimit: 15,
		WakeUpTime:       "05:45",
		BedTime:          "21:30",
	}
	if err := ss.SetSettings(in); err != nil {
		t.Fatalf("set settings: %v", err)
	}

	got, err := ss.GetSettings()
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if got != in {
		t.Errorf("settings = %+v, want %+v", got, in)
	}
}

func TestSettingsSetOverwrites(t *testing.T) {
	ss := setupSettingsTestDB(t)

	if err := ss.Set(SettingUserName, "first"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := ss.Set(SettingUserName, "second"); err != nil {
		t.Fatalf("set again: %v", err)
	}

	value, ok, err := ss.Get(SettingUserName)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || value != "second" {
		t.Errorf("value = %q, %v; want %q", value, ok, "second")
	}
}

func TestSettingsGetMissing(t *testing.T) {
	ss := setupSettingsTestDB(t)

	_, ok, err := ss.Get("nonexistent")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Error("expected ok=false for missing key")
	}
}

func TestSettingsIgnoresUnparsableEnergyLimit(t *testing.T) {
	ss := setupSettingsTestDB(t)

	if err := ss.Set(SettingDailyEnergyLimit, "not-a-number"); err != nil {
		t.Fatalf("set: %v", err)
	}
	cfg, err := ss.GetSettings()
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if cfg.DailyEnergyLimit != 20 {
		t.Errorf("limit = %d, want default 20 when stored value unparsable", cfg.DailyEnergyLimit)
	}
}
