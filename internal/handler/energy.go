package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fernwick/ember/internal/dateutil"
	"github.com/fernwick/ember/internal/energy"
	"github.com/fernwick/ember/internal/repeat"
	"github.com/fernwick/ember/internal/store"
)

type EnergyHandler struct {
	taskStore     *store.TaskStore
	settingsStore *store.SettingsStore
	logger        *slog.Logger
}

func NewEnergyHandler(ts *store.TaskStore, ss *store.SettingsStore, logger *slog.Logger) *EnergyHandler {
	return &EnergyHandler{taskStore: ts, settingsStore: ss, logger: logger}
}

type energyReport struct {
	Date    string        `json:"date,omitempty"`
	Weekday string        `json:"weekday"`
	Load    int           `json:"load"`
	Limit   int           `json:"limit"`
	Percent int           `json:"percent"`
	Status  energy.Status `json:"status"`
}

func (h *EnergyHandler) report(w http.ResponseWriter, weekdayTag, dateKey string) {
	tasks, err := h.taskStore.List()
	if err != nil {
		h.logger.Error("list tasks for energy report", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute energy")
		return
	}
	cfg, err := h.settingsStore.GetSettings()
	if err != nil {
		h.logger.Error("load settings for energy report", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute energy")
		return
	}

	load := energy.DayLoad(tasks, weekdayTag)
	percent := energy.Percent(load, cfg.DailyEnergyLimit)

	writeJSON(w, http.StatusOK, energyReport{
		Date:    dateKey,
		Weekday: weekdayTag,
		Load:    load,
		Limit:   cfg.DailyEnergyLimit,
		Percent: percent,
		Status:  energy.Classify(percent),
	})
}

// Today reports the energy load for the current local weekday.
func (h *EnergyHandler) Today(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	h.report(w, dateutil.WeekdayTag(now), dateutil.Key(now))
}

// ForDay reports the energy load for an arbitrary weekday tag.
func (h *EnergyHandler) ForDay(w http.ResponseWriter, r *http.Request) {
	day := r.PathValue("day")
	if !repeat.Valid(day) {
		writeError(w, http.StatusBadRequest, "unknown weekday tag")
		return
	}
	h.report(w, day, "")
}
