package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fernwick/ember/internal/dateutil"
	"github.com/fernwick/ember/internal/model"
	"github.com/fernwick/ember/internal/repeat"
	"github.com/fernwick/ember/internal/schedule"
	"github.com/fernwick/ember/internal/store"
	"github.com/fernwick/ember/internal/streak"
	"github.com/fernwick/ember/internal/websocket"
)

type TaskHandler struct {
	taskStore     *store.TaskStore
	settingsStore *store.SettingsStore
	resolver      *schedule.Resolver
	hub           *websocket.Hub
	logger        *slog.Logger
}

func NewTaskHandler(ts *store.TaskStore, ss *store.SettingsStore, resolver *schedule.Resolver, hub *websocket.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{taskStore: ts, settingsStore: ss, resolver: resolver, hub: hub, logger: logger}
}

func (h *TaskHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// syncReminders reconciles the task's notification triggers. Best-effort:
// reminder bookkeeping must never fail the task mutation that preceded it.
func (h *TaskHandler) syncReminders(task *model.Task) {
	if h.resolver == nil {
		return
	}
	cfg, err := h.settingsStore.GetSettings()
	if err != nil {
		h.logger.Error("load settings for reminder sync", "task_id", task.ID, "error", err)
		return
	}
	if !cfg.Notifications {
		h.resolver.Cancel(task.ID)
		return
	}
	h.resolver.Sync(task, time.Now())
}

func (h *TaskHandler) cancelReminders(taskID string) {
	if h.resolver != nil {
		h.resolver.Cancel(taskID)
	}
}

type taskRequest struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Icon          *string  `json:"icon"`
	RepeatDays    []string `json:"repeat_days"`
	Time          *string  `json:"time"`
	EnergyPoints  *int     `json:"energy_points"`
	DailyReward   *string  `json:"daily_reward"`
	WeeklyReward  *string  `json:"weekly_reward"`
	MonthlyReward *string  `json:"monthly_reward"`
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	data := store.TaskData{}
	if req.Title != nil {
		data.Title = strings.TrimSpace(*req.Title)
	}
	if data.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Time == nil || !validClock(*req.Time) {
		writeError(w, http.StatusBadRequest, "time must be HH:MM")
		return
	}
	data.Time = *req.Time
	if len(repeat.Normalize(req.RepeatDays)) == 0 {
		writeError(w, http.StatusBadRequest, "repeat days are required")
		return
	}
	data.RepeatDays = req.RepeatDays
	if req.Description != nil {
		data.Description = *req.Description
	}
	if req.Icon != nil {
		data.Icon = *req.Icon
	}
	if req.EnergyPoints != nil {
		if *req.EnergyPoints < 0 {
			writeError(w, http.StatusBadRequest, "energy points must be non-negative")
			return
		}
		data.EnergyPoints = *req.EnergyPoints
	}
	if req.DailyReward != nil {
		data.DailyReward = *req.DailyReward
	}
	if req.WeeklyReward != nil {
		data.WeeklyReward = *req.WeeklyReward
	}
	if req.MonthlyReward != nil {
		data.MonthlyReward = *req.MonthlyReward
	}

	task, err := h.taskStore.Add(data)
	if err != nil {
		h.logger.Error("create task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	h.syncReminders(task)
	h.broadcast(websocket.NewMessage("task", "created", task.ID, nil))

	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskStore.List()
	if err != nil {
		h.logger.Error("list tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.taskStore.GetByID(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		if trimmed == "" {
			writeError(w, http.StatusBadRequest, "title is required")
			return
		}
		req.Title = &trimmed
	}
	if req.Time != nil && !validClock(*req.Time) {
		writeError(w, http.StatusBadRequest, "time must be HH:MM")
		return
	}
	if req.RepeatDays != nil && len(repeat.Normalize(req.RepeatDays)) == 0 {
		writeError(w, http.StatusBadRequest, "repeat days are required")
		return
	}
	if req.EnergyPoints != nil && *req.EnergyPoints < 0 {
		writeError(w, http.StatusBadRequest, "energy points must be non-negative")
		return
	}

	task, err := h.taskStore.Update(id, store.TaskUpdate{
		Title:         req.Title,
		Description:   req.Description,
		Icon:          req.Icon,
		RepeatDays:    req.RepeatDays,
		Time:          req.Time,
		EnergyPoints:  req.EnergyPoints,
		DailyReward:   req.DailyReward,
		WeeklyReward:  req.WeeklyReward,
		MonthlyReward: req.MonthlyReward,
	})
	if err != nil {
		h.logger.Error("update task", "task_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	// Conservatively resync on every edit save, not just schedule changes.
	h.syncReminders(task)
	h.broadcast(websocket.NewMessage("task", "updated", task.ID, nil))

	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	task, err := h.taskStore.GetByID(id)
	if err != nil {
		h.logger.Error("get task", "task_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	if err := h.taskStore.Delete(id); err != nil {
		h.logger.Error("delete task", "task_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}

	// Cancel-only, never re-register: the task is gone.
	h.cancelReminders(id)
	h.broadcast(websocket.NewMessage("task", "deleted", id, nil))

	w.WriteHeader(http.StatusNoContent)
}

type toggleRequest struct {
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

func (h *TaskHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if _, err := time.Parse(dateutil.KeyLayout, req.Date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	task, err := h.taskStore.ToggleCompletion(id, req.Date, req.Completed)
	if err != nil {
		h.logger.Error("toggle completion", "task_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to toggle completion")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	h.broadcast(websocket.NewMessage("task", "toggled", task.ID, map[string]any{
		"date":      req.Date,
		"completed": req.Completed,
	}))

	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Today(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskStore.ListToday()
	if err != nil {
		h.logger.Error("list today", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) ForDay(w http.ResponseWriter, r *http.Request) {
	day := r.PathValue("day")
	if !repeat.Valid(day) {
		writeError(w, http.StatusBadRequest, "unknown weekday tag")
		return
	}

	tasks, err := h.taskStore.ListForDay(day)
	if err != nil {
		h.logger.Error("list for day", "day", day, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

type taskStats struct {
	Streak         int    `json:"streak"`
	LongestStreak  int    `json:"longest_streak"`
	CompletionRate int    `json:"completion_rate"`
	Schedule       string `json:"schedule"`
}

// Stats reports the derived statistics for a task. Longest streak and
// completion rate are recomputed from history on every call, never cached.
func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	task, err := h.taskStore.GetByID(r.PathValue("id"))
	if err != nil {
		h.logger.Error("get task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	writeJSON(w, http.StatusOK, taskStats{
		Streak:         task.Streak,
		LongestStreak:  streak.Longest(task.CompletionHistory),
		CompletionRate: streak.CompletionRate(task.CompletionHistory),
		Schedule:       repeat.Describe(task.RepeatDays, task.Time),
	})
}
