package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fernwick/ember/internal/dateutil"
	"github.com/fernwick/ember/internal/model"
	"github.com/fernwick/ember/internal/repeat"
	"github.com/fernwick/ember/internal/streak"
)

// TaskStore owns the task collection. Every mutation is written through to
// SQLite before the call returns; reads always reflect the durable state.
type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

// TaskData carries the caller-supplied fields for a new task. The store
// assigns id, streak, history, and timestamps itself.
type TaskData struct {
	Title         string
	Description   string
	Icon          string
	RepeatDays    []string
	Time          string
	EnergyPoints  int
	DailyReward   string
	WeeklyReward  string
	MonthlyReward string
}

// TaskUpdate is a partial update; nil fields are left untouched.
type TaskUpdate struct {
	Title         *string
	Description   *string
	Icon          *string
	RepeatDays    []string
	Time          *string
	EnergyPoints  *int
	DailyReward   *string
	WeeklyReward  *string
	MonthlyReward *string
}

const taskCols = `id, title, description, icon, repeat_days, time, energy_points,
	daily_reward, weekly_reward, monthly_reward, streak, completion_history,
	created_at, updated_at`

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var days, history string

	err := scanner.Scan(
		&t.ID, &t.Title, &t.Description, &t.Icon, &days, &t.Time, &t.EnergyPoints,
		&t.DailyReward, &t.WeeklyReward, &t.MonthlyReward, &t.Streak, &history,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(days), &t.RepeatDays); err != nil {
		return nil, fmt.Errorf("decode repeat days: %w", err)
	}
	if err := json.Unmarshal([]byte(history), &t.CompletionHistory); err != nil {
		return nil, fmt.Errorf("decode completion history: %w", err)
	}
	if t.CompletionHistory == nil {
		t.CompletionHistory = model.CompletionHistory{}
	}
	return &t, nil
}

func encodeDays(days []string) (string, error) {
	if days == nil {
		days = []string{}
	}
	b, err := json.Marshal(days)
	if err != nil {
		return "", fmt.Errorf("encode repeat days: %w", err)
	}
	return string(b), nil
}

func encodeHistory(h model.CompletionHistory) (string, error) {
	if h == nil {
		h = model.CompletionHistory{}
	}
	b, err := json.Marshal(h)
	if err != nil {
		return "", fmt.Errorf("encode completion history: %w", err)
	}
	return string(b), nil
}

// Add creates a task with a fresh id, zero streak, empty history, and both
// timestamps set to now. The created task is returned.
func (s *TaskStore) Add(data TaskData) (*model.Task, error) {
	days, err := encodeDays(repeat.Normalize(data.RepeatDays))
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	now := time.Now().UTC()

	_, err = s.db.Exec(
		`INSERT INTO tasks (`+taskCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, '{}', ?, ?)`,
		id, data.Title, data.Description, data.Icon, days, data.Time, data.EnergyPoints,
		data.DailyReward, data.WeeklyReward, data.MonthlyReward, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return s.GetByID(id)
}

// GetByID returns the task, or (nil, nil) when the id is unknown.
func (s *TaskStore) GetByID(id string) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// List returns all tasks ordered by time-of-day, Wake Up first and Bedtime
// last, matching the home-screen ordering.
func (s *TaskStore) List() ([]model.Task, error) {
	rows, err := s.db.Query(`SELECT ` + taskCols + ` FROM tasks ORDER BY
		CASE title WHEN '` + model.SystemTaskWakeUp + `' THEN 0 WHEN '` + model.SystemTaskBedtime + `' THEN 2 ELSE 1 END,
		time ASC, title ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// ListForDay returns tasks whose repeat days include the given weekday tag.
func (s *TaskStore) ListForDay(weekdayTag string) ([]model.Task, error) {
	tasks, err := s.List()
	if err != nil {
		return nil, err
	}
	var out []model.Task
	for _, t := range tasks {
		if repeat.Contains(t.RepeatDays, weekdayTag) {
			out = append(out, t)
		}
	}
	return out, nil
}

// ListToday returns tasks scheduled for the current local weekday.
func (s *TaskStore) ListToday() ([]model.Task, error) {
	return s.ListForDay(dateutil.WeekdayTag(time.Now()))
}

// Update merges the provided fields into the task and bumps updated_at.
// Returns (nil, nil) when the id is unknown.
func (s *TaskStore) Update(id string, upd TaskUpdate) (*model.Task, error) {
	t, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, nil
	}

	if upd.Title != nil {
		t.Title = *upd.Title
	}
	if upd.Description != nil {
		t.Description = *upd.Description
	}
	if upd.Icon != nil {
		t.Icon = *upd.Icon
	}
	if upd.RepeatDays != nil {
		t.RepeatDays = repeat.Normalize(upd.RepeatDays)
	}
	if upd.Time != nil {
		t.Time = *upd.Time
	}
	if upd.EnergyPoints != nil {
		t.EnergyPoints = *upd.EnergyPoints
	}
	if upd.DailyReward != nil {
		t.DailyReward = *upd.DailyReward
	}
	if upd.WeeklyReward != nil {
		t.WeeklyReward = *upd.WeeklyReward
	}
	if upd.MonthlyReward != nil {
		t.MonthlyReward = *upd.MonthlyReward
	}

	days, err := encodeDays(t.RepeatDays)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(
		`UPDATE tasks SET title = ?, description = ?, icon = ?, repeat_days = ?, time = ?,
			energy_points = ?, daily_reward = ?, weekly_reward = ?, monthly_reward = ?,
			updated_at = ? WHERE id = ?`,
		t.Title, t.Description, t.Icon, days, t.Time,
		t.EnergyPoints, t.DailyReward, t.WeeklyReward, t.MonthlyReward,
		time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(id)
}

// Delete removes the task. Cancelling its notification triggers is the
// caller's responsibility; the task store knows nothing about notifications.
func (s *TaskStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// ToggleCompletion records history[date] = completed and applies the
// incremental streak policy, then persists. The task's updated_at is left
// alone; toggles mutate tracking state only. Returns (nil, nil) when the id
// is unknown.
func (s *TaskStore) ToggleCompletion(id, date string, completed bool) (*model.Task, error) {
	t, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, nil
	}

	t.Streak = streak.Apply(t.CompletionHistory, t.Streak, date, completed, time.Now())

	history, err := encodeHistory(t.CompletionHistory)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(
		`UPDATE tasks SET streak = ?, completion_history = ? WHERE id = ?`,
		t.Streak, history, id,
	)
	if err != nil {
		return nil, fmt.Errorf("toggle completion: %w", err)
	}
	return t, nil
}

// ReplaceAll swaps the entire task collection for the given records,
// preserving ids, streaks, and history. Used by backup restore. The swap is
// transactional; on error the existing collection is untouched.
func (s *TaskStore) ReplaceAll(tasks []model.Task) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}

	for _, t := range tasks {
		days, err := encodeDays(repeat.Normalize(t.RepeatDays))
		if err != nil {
			return err
		}
		history, err := encodeHistory(t.CompletionHistory)
		if err != nil {
			return err
		}
		_, err = tx.Exec(
			`INSERT INTO tasks (`+taskCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Title, t.Description, t.Icon, days, t.Time, t.EnergyPoints,
			t.DailyReward, t.WeeklyReward, t.MonthlyReward, t.Streak, history,
			t.CreatedAt, t.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert task %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

// EnsureSystemTasks seeds the Wake Up and Bedtime tasks if they are missing.
// Idempotent; existing system tasks are never touched.
func (s *TaskStore) EnsureSystemTasks(wakeUpTime, bedTime string) error {
	tasks, err := s.List()
	if err != nil {
		return err
	}

	var hasWakeUp, hasBedtime bool
	for _, t := range tasks {
		switch t.Title {
		case model.SystemTaskWakeUp:
			hasWakeUp = true
		case model.SystemTaskBedtime:
			hasBedtime = true
		}
	}

	allDays := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	if !hasWakeUp {
		if _, err := s.Add(TaskData{
			Title:      model.SystemTaskWakeUp,
			Icon:       "☀️",
			RepeatDays: allDays,
			Time:       wakeUpTime,
		}); err != nil {
			return fmt.Errorf("seed wake up task: %w", err)
		}
	}
	if !hasBedtime {
		if _, err := s.Add(TaskData{
			Title:      model.SystemTaskBedtime,
			Icon:       "🛌",
			RepeatDays: allDays,
			Time:       bedTime,
		}); err != nil {
			return fmt.Errorf("seed bedtime task: %w", err)
		}
	}
	return nil
}
