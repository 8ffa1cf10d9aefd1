// Package dateutil provides the canonical date-key helpers used throughout
// Ember. A date key is the local calendar date formatted as YYYY-MM-DD; the
// local wall clock is authoritative and no timezone normalization happens.
package dateutil

import "time"

// KeyLayout is the canonical date key format.
const KeyLayout = "2006-01-02"

// Key returns the date key for t's local calendar date.
func Key(t time.Time) string {
	return t.Format(KeyLayout)
}

// Today returns the date key for the current local date.
func Today() string {
	return Key(time.Now())
}

// WeekdayTag returns the fixed three-letter weekday tag (Sun..Sat) for t.
func WeekdayTag(t time.Time) string {
	return t.Weekday().String()[:3]
}

// AddDays returns the date key n days after key. Negative n goes backward.
// A malformed key is a caller contract violation and panics.
func AddDays(key string, n int) string {
	t, err := time.ParseInLocation(KeyLayout, key, time.Local)
	if err != nil {
		panic("dateutil: malformed date key: " + key)
	}
	return Key(t.AddDate(0, 0, n))
}

// WeekDates returns the seven date keys of the week containing t,
// starting on Sunday.
func WeekDates(t time.Time) []string {
	start := t.AddDate(0, 0, -int(t.Weekday()))
	keys := make([]string, 7)
	for i := range keys {
		keys[i] = Key(start.AddDate(0, 0, i))
	}
	return keys
}

// ParseClock splits an "HH:MM" 24-hour time-of-day string into hour and
// minute. Well-formed input is a caller contract; malformed input panics.
func ParseClock(clock string) (hour, minute int) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		panic("dateutil: malformed clock time: " + clock)
	}
	return t.Hour(), t.Minute()
}
