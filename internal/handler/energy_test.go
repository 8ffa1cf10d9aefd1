package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"

	"github.com/fernwick/ember/internal/database"
	"github.com/fernwick/ember/internal/store"
)

func setupEnergyHandlerTest(t *testing.T) (*http.ServeMux, *store.TaskStore, *store.SettingsStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ts := store.NewTaskStore(db)
	ss := store.NewSettingsStore(db)
	h := NewEnergyHandler(ts, ss, slog.New(slog.DiscardHandler))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/energy/today", h.Today)
	mux.HandleFunc("GET /api/energy/day/{day}", h.ForDay)
	return mux, ts, ss
}

func TestEnergyForDay(t *testing.T) {
	mux, ts, ss := setupEnergyHandlerTest(t)

	if err := ss.Set(store.SettingDailyEnergyLimit, "10"); err != nil {
		t.Fatalf("set limit: %v", err)
	}

	seed := []store.TaskData{
		{Title: "Run", RepeatDays: []string{"Mon", "Wed"}, Time: "06:30", EnergyPoints: 5},
		{Title: "Gym", RepeatDays: []string{"Mon"}, Time: "18:00", EnergyPoints: 4},
		{Title: "Wake Up", RepeatDays: []string{"Mon", "Tue"}, Time: "06:00", EnergyPoints: 0},
		{Title: "Piano", RepeatDays: []string{"Tue"}, Time: "17:00", EnergyPoints: 8},
	}
	for _, data := range seed {
		if _, err := ts.Add(data); err != nil {
			t.Fatalf("add %s: %v", data.Title, err)
		}
	}

	rec := doJSON(t, mux, "GET", "/api/energy/day/Mon", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got energyReport
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Weekday != "Mon" {
		t.Errorf("expected weekday Mon, got %q", got.Weekday)
	}
	if got.Load != 9 {
		t.Errorf("expected load 9 (zero-point tasks excluded), got %d", got.Load)
	}
	if got.Limit != 10 {
		t.Errorf("expected limit 10, got %d", got.Limit)
	}
	if got.Percent != 90 {
		t.Errorf("expected 90 percent, got %d", got.Percent)
	}
	if got.Status != "high" {
		t.Errorf("expected high status, got %q", got.Status)
	}
}

func TestEnergyForDayOverload(t *testing.T) {
	mux, ts, _ := setupEnergyHandlerTest(t)

	// Default limit is 20; schedule 30 points on Friday.
	for _, pts := range []int{10, 10, 10} {
		if _, err := ts.Add(store.TaskData{Title: "Big", RepeatDays: []string{"Fri"}, Time: "09:00", EnergyPoints: pts}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	rec := doJSON(t, mux, "GET", "/api/energy/day/Fri", "")
	var got energyReport
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Percent != 100 {
		t.Errorf("expected percent clamped to 100, got %d", got.Percent)
	}
	if got.Load != 30 {
		t.Errorf("expected raw load 30, got %d", got.Load)
	}
}

func TestEnergyUnknownDay(t *testing.T) {
	mux, _, _ := setupEnergyHandlerTest(t)
	rec := doJSON(t, mux, "GET", "/api/energy/day/Someday", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestEnergyToday(t *testing.T) {
	mux, _, _ := setupEnergyHandlerTest(t)

	rec := doJSON(t, mux, "GET", "/api/energy/today", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got energyReport
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Date == "" || got.Weekday == "" {
		t.Errorf("expected date and weekday set, got %+v", got)
	}
	if got.Load != 0 || got.Status != "balanced" {
		t.Errorf("expected empty balanced day, got %+v", got)
	}
}
