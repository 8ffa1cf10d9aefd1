// Package energy computes the daily energy budget: the summed cost of tasks
// scheduled on a given weekday compared against the configured limit.
package energy

import (
	"github.com/fernwick/ember/internal/model"
	"github.com/fernwick/ember/internal/repeat"
)

// Status classifies energy usage relative to the daily limit.
type Status string

const (
	StatusBalanced Status = "balanced" // <= 50%
	StatusModerate Status = "moderate" // <= 80%
	StatusHigh     Status = "high"     // > 80%
)

// DayLoad sums energy points over tasks scheduled on the given weekday tag.
// The filter is energy_points > 0, not title-based: system tasks fall out
// because they cost 0, while a legitimate zero-cost user task would too.
func DayLoad(tasks []model.Task, weekdayTag string) int {
	var total int
	for _, t := range tasks {
		if t.EnergyPoints > 0 && repeat.Contains(t.RepeatDays, weekdayTag) {
			total += t.EnergyPoints
		}
	}
	return total
}

// Percent returns load as a percentage of limit, clamped to [0,100].
// A non-positive limit reports 0.
func Percent(load, limit int) int {
	if limit <= 0 {
		return 0
	}
	pct := load * 100 / limit
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// Classify maps a usage percentage to its status band.
func Classify(percent int) Status {
	switch {
	case percent <= 50:
		return StatusBalanced
	case percent <= 80:
		return StatusModerate
	default:
		return StatusHigh
	}
}
