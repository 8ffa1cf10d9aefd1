package store

import (
	"testing"
	"time"

	"github.com/fernwick/ember/internal/database"
	"github.com/fernwick/ember/internal/dateutil"
	"github.com/fernwick/ember/internal/model"
)

func setupTaskTestDB(t *testing.T) *TaskStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewTaskStore(db)
}

func userTask() TaskData {
	return TaskData{
		Title:        "Morning Run",
		Description:  "5k around the park",
		Icon:         "🏃",
		RepeatDays:   []string{"Mon", "Wed", "Fri"},
		Time:         "07:00",
		EnergyPoints: 5,
		DailyReward:  "Smoothie",
	}
}

func TestTaskAdd(t *testing.T) {
	ts := setupTaskTestDB(t)

	task, err := ts.Add(userTask())
	if err != nil {
		t.Fatalf("add task: %v", err)
	}
	if task.ID == "" {
		t.Error("expected assigned id")
	}
	if task.Streak != 0 {
		t.Errorf("streak = %d, want 0", task.Streak)
	}
	if len(task.CompletionHistory) != 0 {
		t.Errorf("history has %d entries, want 0", len(task.CompletionHistory))
	}
	if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
		t.Error("timestamps not stamped")
	}
	if task.Title != "Morning Run" || task.EnergyPoints != 5 {
		t.Errorf("fields not persisted: %+v", task)
	}

	// Created entity must be retrievable immediately.
	got, err := ts.GetByID(task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got == nil || got.ID != task.ID {
		t.Fatal("task not retrievable after add")
	}
}

func TestTaskAddAssignsUniqueIDs(t *testing.T) {
	ts := setupTaskTestDB(t)

	a, err := ts.Add(userTask())
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	b, err := ts.Add(userTask())
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if a.ID == b.ID {
		t.Errorf("duplicate ids: %q", a.ID)
	}
}

func TestTaskGetByIDNotFound(t *testing.T) {
	ts := setupTaskTestDB(t)

	got, err := ts.GetByID("no-such-id")
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got != nil {
		t.Error("expected nil for unknown id")
	}
}

func TestTaskUpdateMergesPartialFields(t *testing.T) {
	ts := setupTaskTestDB(t)

	task, err := ts.Add(userTask())
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	title := "Evening Run"
	points := 8
	updated, err := ts.Update(task.ID, TaskUpdate{Title: &title, EnergyPoints: &points})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Evening Run" {
		t.Errorf("title = %q, want %q", updated.Title, "Evening Run")
	}
	if updated.EnergyPoints != 8 {
		t.Errorf("energy = %d, want 8", updated.EnergyPoints)
	}
	// Untouched fields survive the merge.
	if updated.Description != task.Description {
		t.Errorf("description changed: %q", updated.Description)
	}
	if updated.Time != "07:00" {
		t.Errorf("time changed: %q", updated.Time)
	}
	if !updated.UpdatedAt.After(task.UpdatedAt) && !updated.UpdatedAt.Equal(task.UpdatedAt) {
		t.Error("updated_at not bumped")
	}
}

func TestTaskUpdateNormalizesRepeatDays(t *testing.T) {
	ts := setupTaskTestDB(t)

	task, err := ts.Add(userTask())
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	updated, err := ts.Update(task.ID, TaskUpdate{RepeatDays: []string{"Sun", "Mon", "Mon"}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.RepeatDays) != 2 || updated.RepeatDays[0] != "Mon" || updated.RepeatDays[1] != "Sun" {
		t.Errorf("repeat days = %v, want [Mon Sun]", updated.RepeatDays)
	}
}

func TestTaskUpdateUnknownID(t *testing.T) {
	ts := setupTaskTestDB(t)

	title := "x"
	got, err := ts.Update("no-such-id", TaskUpdate{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got != nil {
		t.Error("expected nil for unknown id")
	}
}

func TestTaskDelete(t *testing.T) {
	ts := setupTaskTestDB(t)

	task, err := ts.Add(userTask())
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := ts.Delete(task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := ts.GetByID(task.ID)
	if err != nil {
		t.Fatalf("get deleted task: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestToggleCompletion(t *testing.T) {
	ts := setupTaskTestDB(t)

	task, err := ts.Add(userTask())
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	today := dateutil.Today()
	toggled, err := ts.ToggleCompletion(task.ID, today, true)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if toggled.Streak != 1 {
		t.Errorf("streak = %d, want 1", toggled.Streak)
	}
	if !toggled.CompletionHistory[today] {
		t.Error("today not recorded complete")
	}

	// Persisted, not just in-memory.
	got, err := ts.GetByID(task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Streak != 1 || !got.CompletionHistory[today] {
		t.Errorf("toggle not persisted: streak=%d history=%v", got.Streak, got.CompletionHistory)
	}
}

func TestToggleCompletionStreakContinuation(t *testing.T) {
	ts := setupTaskTestDB(t)

	task, err := ts.Add(userTask())
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	today := dateutil.Today()
	yesterday := dateutil.AddDays(today, -1)

	if _, err := ts.ToggleCompletion(task.ID, yesterday, true); err != nil {
		t.Fatalf("toggle yesterday: %v", err)
	}
	got, err := ts.ToggleCompletion(task.ID, today, true)
	if err != nil {
		t.Fatalf("toggle today: %v", err)
	}
	if got.Streak != 2 {
		t.Errorf("streak = %d, want 2", got.Streak)
	}
}

func TestToggleCompletionIncompleteTodayResets(t *testing.T) {
	ts := setupTaskTestDB(t)

	task, err := ts.Add(userTask())
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	today := dateutil.Today()
	if _, err := ts.ToggleCompletion(task.ID, today, true); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	got, err := ts.ToggleCompletion(task.ID, today, false)
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if got.Streak != 0 {
		t.Errorf("streak = %d, want 0", got.Streak)
	}
	if len(got.CompletionHistory) != 1 {
		t.Errorf("history has %d entries for one date, want 1", len(got.CompletionHistory))
	}
}

func TestToggleCompletionUnknownID(t *testing.T) {
	ts := setupTaskTestDB(t)

	got, err := ts.ToggleCompletion("no-such-id", dateutil.Today(), true)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if got != nil {
		t.Error("expected nil for unknown id")
	}
}

func TestListForDay(t *testing.T) {
	ts := setupTaskTestDB(t)

	if _, err := ts.Add(TaskData{Title: "Gym", RepeatDays: []string{"Mon", "Wed"}, Time: "18:00", EnergyPoints: 3}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := ts.Add(TaskData{Title: "Journal", RepeatDays: []string{"Sun"}, Time: "21:00", EnergyPoints: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}

	wed, err := ts.ListForDay("Wed")
	if err != nil {
		t.Fatalf("list for day: %v", err)
	}
	if len(wed) != 1 || wed[0].Title != "Gym" {
		t.Errorf("ListForDay(Wed) = %v, want only Gym", wed)
	}
}

func TestListToday(t *testing.T) {
	ts := setupTaskTestDB(t)

	allDays := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	if _, err := ts.Add(TaskData{Title: "Hydrate", RepeatDays: allDays, Time: "09:00", EnergyPoints: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}

	todayTag := dateutil.WeekdayTag(time.Now())
	got, err := ts.ListToday()
	if err != nil {
		t.Fatalf("list today: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ListToday returned %d tasks, want 1", len(got))
	}
	found := false
	for _, d := range got[0].RepeatDays {
		if d == todayTag {
			found = true
		}
	}
	if !found {
		t.Errorf("returned task not scheduled for %s", todayTag)
	}
}

func TestListOrdering(t *testing.T) {
	ts := setupTaskTestDB(t)

	if err := ts.EnsureSystemTasks("06:00", "22:00"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := ts.Add(TaskData{Title: "Lunch Walk", RepeatDays: []string{"Mon"}, Time: "12:30", EnergyPoints: 2}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := ts.Add(TaskData{Title: "Stretch", RepeatDays: []string{"Mon"}, Time: "08:00", EnergyPoints: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}

	tasks, err := ts.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 4 {
		t.Fatalf("expected 4 tasks, got %d", len(tasks))
	}
	if tasks[0].Title != model.SystemTaskWakeUp {
		t.Errorf("first task = %q, want Wake Up", tasks[0].Title)
	}
	if tasks[1].Title != "Stretch" || tasks[2].Title != "Lunch Walk" {
		t.Errorf("user tasks not time-ordered: %q, %q", tasks[1].Title, tasks[2].Title)
	}
	if tasks[3].Title != model.SystemTaskBedtime {
		t.Errorf("last task = %q, want Bedtime", tasks[3].Title)
	}
}

func TestEnsureSystemTasksIdempotent(t *testing.T) {
	ts := setupTaskTestDB(t)

	if err := ts.EnsureSystemTasks("06:00", "22:00"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := ts.EnsureSystemTasks("07:00", "23:00"); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	tasks, err := ts.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 system tasks, got %d", len(tasks))
	}
	// Existing system tasks keep their original times.
	if tasks[0].Time != "06:00" || tasks[1].Time != "22:00" {
		t.Errorf("reseed modified system tasks: %q, %q", tasks[0].Time, tasks[1].Time)
	}
	for _, task := range tasks {
		if task.EnergyPoints != 0 {
			t.Errorf("%s has %d energy points, want 0", task.Title, task.EnergyPoints)
		}
		if len(task.RepeatDays) != 7 {
			t.Errorf("%s repeats on %d days, want 7", task.Title, len(task.RepeatDays))
		}
	}
}
