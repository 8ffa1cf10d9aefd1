package model

import "time"

// System task titles. The two system tasks are seeded at startup, carry zero
// energy points, and are excluded from energy accounting and the manage UI.
const (
	SystemTaskWakeUp  = "Wake Up"
	SystemTaskBedtime = "Bedtime"
)

// EnergyLevels is the fixed set of energy point values selectable for user
// tasks. System tasks use 0.
var EnergyLevels = []int{1, 2, 3, 5, 8, 10}

// CompletionHistory maps canonical YYYY-MM-DD date keys to completion state.
// true = completed, false = explicitly marked incomplete, absent = no record.
type CompletionHistory map[string]bool

// Task is a recurring activity definition plus its tracking state.
type Task struct {
	ID                string            `json:"id"`
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	Icon              string            `json:"icon"`
	RepeatDays        []string          `json:"repeat_days"`
	Time              string            `json:"time"` // "HH:MM", 24-hour
	EnergyPoints      int               `json:"energy_points"`
	DailyReward       string            `json:"daily_reward,omitempty"`
	WeeklyReward      string            `json:"weekly_reward,omitempty"`
	MonthlyReward     string            `json:"monthly_reward,omitempty"`
	Streak            int               `json:"streak"`
	CompletionHistory CompletionHistory `json:"completion_history"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// IsSystem reports whether the task is one of the two seeded system tasks.
func (t *Task) IsSystem() bool {
	return t.Title == SystemTaskWakeUp || t.Title == SystemTaskBedtime
}
