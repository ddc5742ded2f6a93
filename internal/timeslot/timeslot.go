// Package timeslot provides wall-clock arithmetic for "HH:MM" lesson slots.
// All operations are clock-face only: no timezone or date-boundary semantics.
package timeslot

import (
	"fmt"
	"time"
)

const minutesPerDay = 24 * 60

// Lesson durations are restricted to two fixed products.
const (
	DurationShort = 20
	DurationLong  = 40
)

// Cost returns the subscription units consumed by a lesson of the given
// duration: 1 unit for 20 minutes, 2 units for 40. The duration must have
// been validated with IsValidDuration first.
func Cost(duration int) int {
	if duration == DurationShort {
		return 1
	}
	return 2
}

// IsValidDuration reports whether the duration is one of the permitted values.
func IsValidDuration(duration int) bool {
	return duration == DurationShort || duration == DurationLong
}

// IsValidClock reports whether t is a well-formed zero-padded 24h "HH:MM".
func IsValidClock(t string) bool {
	if len(t) != 5 || t[2] != ':' {
		return false
	}
	h, m, ok := splitClock(t)
	if !ok {
		return false
	}
	return h >= 0 && h < 24 && m >= 0 && m < 60
}

// AddMinutes adds a signed minute offset to an "HH:MM" value, wrapping within
// a 24-hour day. Callers validate t with IsValidClock at the boundary; a
// malformed input is returned unchanged.
func AddMinutes(t string, mins int) string {
	h, m, ok := splitClock(t)
	if !ok {
		return t
	}
	total := (h*60 + m + mins) % minutesPerDay
	if total < 0 {
		total += minutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// InRange reports whether start <= t < end. The start is inclusive and the
// end exclusive, so a lesson may begin exactly at a working-hour boundary but
// the closing instant itself is outside the window.
func InRange(t, start, end string) bool {
	return clockValue(t) >= clockValue(start) && clockValue(t) < clockValue(end)
}

// Overlaps reports whether two half-open intervals intersect. Back-to-back
// intervals, where one ends exactly when the other starts, do not overlap.
func Overlaps(start1 string, dur1 int, start2 string, dur2 int) bool {
	s1 := clockValue(start1)
	e1 := clockValue(AddMinutes(start1, dur1))
	s2 := clockValue(start2)
	e2 := clockValue(AddMinutes(start2, dur2))
	return s1 < e2 && s2 < e1
}

// After reports whether clock a is strictly later than clock b.
func After(a, b string) bool {
	return clockValue(a) > clockValue(b)
}

// Minutes converts an "HH:MM" clock into minutes since midnight, or -1 for a
// malformed value.
func Minutes(t string) int {
	h, m, ok := splitClock(t)
	if !ok {
		return -1
	}
	return h*60 + m
}

// DayName returns the day-of-week name ("Sunday".."Saturday") for an ISO date.
func DayName(date string) (string, error) {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", date, err)
	}
	return d.Weekday().String(), nil
}

// Instant combines an ISO date and an "HH:MM" clock into a single local-time
// instant, used for the cancellation notice computation.
func Instant(date, t string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	instant, err := time.ParseInLocation("2006-01-02 15:04", date+" "+t, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse instant %q %q: %w", date, t, err)
	}
	return instant, nil
}

// clockValue maps "HH:MM" onto the integer HHMM used for ordering; the digits
// compare identically to lexicographic order on well-formed clocks.
func clockValue(t string) int {
	h, m, ok := splitClock(t)
	if !ok {
		return -1
	}
	return h*100 + m
}

func splitClock(t string) (hour, minute int, ok bool) {
	if len(t) != 5 || t[2] != ':' {
		return 0, 0, false
	}
	for _, i := range []int{0, 1, 3, 4} {
		if t[i] < '0' || t[i] > '9' {
			return 0, 0, false
		}
	}
	hour = int(t[0]-'0')*10 + int(t[1]-'0')
	minute = int(t[3]-'0')*10 + int(t[4]-'0')
	return hour, minute, true
}
