// Package streak implements the completion-history engine: the incremental
// current-streak counter mutated on each toggle, and the derived statistics
// (longest streak, completion rate) recomputed on demand from history.
package streak

import (
	"math"
	"sort"
	"time"

	"github.com/fernwick/ember/internal/dateutil"
	"github.com/fernwick/ember/internal/model"
)

// Apply records history[date] = completed and returns the updated current
// streak. The counter is a simple accumulator, not a recomputation:
//
//   - completed: streak increments iff yesterday relative to now (not
//     relative to date) is marked true in history, or the streak was 0.
//   - not completed: streak resets to 0 only when date is today.
//
// Marking arbitrary past dates out of chronological order can therefore
// drift the counter away from the true consecutive-day count. That is the
// shipped behavior; Recompute exists as an explicit opt-in fallback.
func Apply(history model.CompletionHistory, streak int, date string, completed bool, now time.Time) int {
	history[date] = completed

	if completed {
		yesterday := dateutil.Key(now.AddDate(0, 0, -1))
		if history[yesterday] || streak == 0 {
			streak++
		}
		return streak
	}

	if date == dateutil.Key(now) {
		return 0
	}
	return streak
}

// Longest returns the longest run of true entries over the history's date
// keys in ascending order. Only explicit false entries break a run; dates
// absent from history are skipped, so two completions separated by
// unrecorded days count as contiguous.
func Longest(history model.CompletionHistory) int {
	keys := make([]string, 0, len(history))
	for k := range history {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var longest, run int
	for _, k := range keys {
		if history[k] {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return longest
}

// CompletionRate returns the percentage of history entries marked true,
// rounded to the nearest integer. Empty history reports 0.
func CompletionRate(history model.CompletionHistory) int {
	if len(history) == 0 {
		return 0
	}
	var completed int
	for _, v := range history {
		if v {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(len(history))))
}

// Recompute derives the current streak from scratch: the number of
// consecutive days marked true in history ending today, or ending yesterday
// when today has no entry yet. It is never applied automatically; callers
// opt in when they want the drift-free value instead of the accumulator.
func Recompute(history model.CompletionHistory, now time.Time) int {
	day := dateutil.Key(now)
	if _, ok := history[day]; !ok {
		day = dateutil.AddDays(day, -1)
	}

	var run int
	for history[day] {
		run++
		day = dateutil.AddDays(day, -1)
	}
	return run
}
