package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/fernwick/ember/internal/model"
	"github.com/fernwick/ember/internal/schedule"
	"github.com/fernwick/ember/internal/store"
	"github.com/fernwick/ember/internal/websocket"
)

type SettingsHandler struct {
	settingsStore *store.SettingsStore
	taskStore     *store.TaskStore
	resolver      *schedule.Resolver
	hub           *websocket.Hub
	logger        *slog.Logger
}

func NewSettingsHandler(ss *store.SettingsStore, ts *store.TaskStore, resolver *schedule.Resolver, hub *websocket.Hub, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settingsStore: ss, taskStore: ts, resolver: resolver, hub: hub, logger: logger}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.settingsStore.GetSettings()
	if err != nil {
		h.logger.Error("get settings", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get settings")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var cfg model.Settings
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !validClock(cfg.WakeUpTime) || !validClock(cfg.BedTime) {
		writeError(w, http.StatusBadRequest, "wake up and bed times must be HH:MM")
		return
	}
	if cfg.DailyEnergyLimit <= 0 {
		writeError(w, http.StatusBadRequest, "daily energy limit must be positive")
		return
	}

	prev, err := h.settingsStore.GetSettings()
	if err != nil {
		h.logger.Error("get settings", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get settings")
		return
	}

	if err := h.settingsStore.SetSettings(cfg); err != nil {
		h.logger.Error("save settings", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	if cfg.WakeUpTime != prev.WakeUpTime {
		h.updateSystemTaskTime(model.SystemTaskWakeUp, cfg.WakeUpTime, cfg.Notifications)
	}
	if cfg.BedTime != prev.BedTime {
		h.updateSystemTaskTime(model.SystemTaskBedtime, cfg.BedTime, cfg.Notifications)
	}
	if cfg.Notifications != prev.Notifications {
		h.resyncAll(cfg.Notifications)
	}

	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage("settings", "updated", "", nil))
	}

	writeJSON(w, http.StatusOK, cfg)
}

// updateSystemTaskTime moves the named system task to the new time-of-day and
// reconciles its reminders. Missing system tasks are skipped silently; they
// are reseeded at startup.
func (h *SettingsHandler) updateSystemTaskTime(title, clock string, notifications bool) {
	tasks, err := h.taskStore.List()
	if err != nil {
		h.logger.Error("list tasks for system task update", "error", err)
		return
	}
	for _, t := range tasks {
		if t.Title != title {
			continue
		}
		updated, err := h.taskStore.Update(t.ID, store.TaskUpdate{Time: &clock})
		if err != nil || updated == nil {
			h.logger.Error("update system task time", "title", title, "error", err)
			return
		}
		if h.resolver != nil && notifications {
			h.resolver.Sync(updated, time.Now())
		}
		return
	}
}

// resyncAll re-registers or cancels reminders for every task after the
// notifications toggle flips.
func (h *SettingsHandler) resyncAll(enabled bool) {
	if h.resolver == nil {
		return
	}
	tasks, err := h.taskStore.List()
	if err != nil {
		h.logger.Error("list tasks for reminder resync", "error", err)
		return
	}
	now := time.Now()
	for i := range tasks {
		if enabled {
			h.resolver.Sync(&tasks[i], now)
		} else {
			h.resolver.Cancel(tasks[i].ID)
		}
	}
}
