package energy

import (
	"testing"

	"github.com/fernwick/ember/internal/model"
)

func task(title string, points int, days ...string) model.Task {
	return model.Task{Title: title, EnergyPoints: points, RepeatDays: days}
}

func TestDayLoad(t *testing.T) {
	tasks := []model.Task{
		task("Gym", 3, "Mon", "Wed"),
		task("Read", 5, "Wed"),
		task(model.SystemTaskWakeUp, 0, "Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"),
	}

	if got := DayLoad(tasks, "Wed"); got != 8 {
		t.Errorf("DayLoad(Wed) = %d, want 8", got)
	}
	if got := DayLoad(tasks, "Mon"); got != 3 {
		t.Errorf("DayLoad(Mon) = %d, want 3", got)
	}
	if got := DayLoad(tasks, "Sun"); got != 0 {
		t.Errorf("DayLoad(Sun) = %d, want 0", got)
	}
}

func TestDayLoadFiltersByPointsNotTitle(t *testing.T) {
	// A zero-cost user task is excluded by the points filter, and a task
	// that happens to share a system title but carries points is included.
	tasks := []model.Task{
		task("Stretch", 0, "Mon"),
		task(model.SystemTaskBedtime, 2, "Mon"),
	}
	if got := DayLoad(tasks, "Mon"); got != 2 {
		t.Errorf("DayLoad = %d, want 2", got)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		load, limit, want int
	}{
		{0, 20, 0},
		{10, 20, 50},
		{16, 20, 80},
		{30, 20, 100}, // clamped
		{5, 0, 0},     // no limit configured
	}
	for _, tt := range tests {
		if got := Percent(tt.load, tt.limit); got != tt.want {
			t.Errorf("Percent(%d, %d) = %d, want %d", tt.load, tt.limit, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		percent int
		want    Status
	}{
		{0, StatusBalanced},
		{50, StatusBalanced},
		{51, StatusModerate},
		{80, StatusModerate},
		{81, StatusHigh},
		{100, StatusHigh},
	}
	for _, tt := range tests {
		if got := Classify(tt.percent); got != tt.want {
			t.Errorf("Classify(%d) = %q, want %q", tt.percent, got, tt.want)
		}
	}
}
