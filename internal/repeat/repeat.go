// Package repeat handles the weekday repeat rules attached to tasks. A rule
// is a set of three-letter weekday tags (Mon..Sun); an empty set means the
// task runs once at the next occurrence of its time.
package repeat

import (
	"strings"
	"time"
)

var tagToWeekday = map[string]time.Weekday{
	"Sun": time.Sunday,
	"Mon": time.Monday,
	"Tue": time.Tuesday,
	"Wed": time.Wednesday,
	"Thu": time.Thursday,
	"Fri": time.Friday,
	"Sat": time.Saturday,
}

var weekdayToTag = map[time.Weekday]string{
	time.Sunday:    "Sun",
	time.Monday:    "Mon",
	time.Tuesday:   "Tue",
	time.Wednesday: "Wed",
	time.Thursday:  "Thu",
	time.Friday:    "Fri",
	time.Saturday:  "Sat",
}

// canonicalOrder is the display order for repeat day sets (week starts Monday
// in the rule editor even though calendar weeks start Sunday).
var canonicalOrder = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Valid reports whether tag is one of the seven weekday tags.
func Valid(tag string) bool {
	_, ok := tagToWeekday[tag]
	return ok
}

// Weekday maps a tag to its time.Weekday. The second return is false for
// unknown tags.
func Weekday(tag string) (time.Weekday, bool) {
	wd, ok := tagToWeekday[tag]
	return wd, ok
}

// Tag returns the tag for a time.Weekday.
func Tag(wd time.Weekday) string {
	return weekdayToTag[wd]
}

// Normalize deduplicates days, drops unknown tags, and returns them in
// canonical Mon..Sun order.
func Normalize(days []string) []string {
	seen := make(map[string]bool, len(days))
	for _, d := range days {
		if Valid(d) {
			seen[d] = true
		}
	}
	var out []string
	for _, d := range canonicalOrder {
		if seen[d] {
			out = append(out, d)
		}
	}
	return out
}

// Contains reports whether days includes tag.
func Contains(days []string, tag string) bool {
	for _, d := range days {
		if d == tag {
			return true
		}
	}
	return false
}

// Describe returns a human-readable summary of a repeat rule, e.g.
// "Repeats daily at 07:00" or "Repeats weekly on Mon, Wed at 18:30".
func Describe(days []string, clock string) string {
	switch {
	case len(days) == 0:
		return "One time at " + clock
	case len(Normalize(days)) == 7:
		return "Repeats daily at " + clock
	default:
		return "Repeats weekly on " + strings.Join(Normalize(days), ", ") + " at " + clock
	}
}
