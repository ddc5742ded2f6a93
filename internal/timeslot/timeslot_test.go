package timeslot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMinutes(t *testing.T) {
	cases := []struct {
		name string
		in   string
		mins int
		want string
	}{
		{"simple", "09:00", 20, "09:20"},
		{"hour boundary", "09:50", 20, "10:10"},
		{"negative", "10:10", -20, "09:50"},
		{"midnight wrap forward", "23:50", 20, "00:10"},
		{"midnight wrap backward", "00:10", -20, "23:50"},
		{"zero", "14:00", 0, "14:00"},
		{"full day", "08:30", 24 * 60, "08:30"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AddMinutes(tc.in, tc.mins))
		})
	}
}

func TestAddMinutesRoundTrip(t *testing.T) {
	times := []string{"00:00", "08:15", "12:30", "23:59"}
	offsets := []int{1, 20, 40, 75, 600}
	for _, tm := range times {
		for _, d := range offsets {
			assert.Equal(t, tm, AddMinutes(AddMinutes(tm, d), -d), "time=%s offset=%d", tm, d)
		}
	}
}

func TestInRangeBoundaries(t *testing.T) {
	assert.True(t, InRange("09:00", "09:00", "17:00"), "start is inclusive")
	assert.False(t, InRange("17:00", "09:00", "17:00"), "end is exclusive")
	assert.True(t, InRange("16:59", "09:00", "17:00"))
	assert.False(t, InRange("08:59", "09:00", "17:00"))
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name           string
		s1             string
		d1             int
		s2             string
		d2             int
		want           bool
	}{
		{"identical", "09:00", 20, "09:00", 20, true},
		{"contained", "09:00", 40, "09:10", 20, true},
		{"partial", "09:00", 40, "09:30", 20, true},
		{"back to back", "09:00", 40, "09:40", 20, false},
		{"disjoint", "09:00", 20, "11:00", 40, false},
		{"touching before", "09:40", 20, "09:00", 40, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(tc.s1, tc.d1, tc.s2, tc.d2))
			assert.Equal(t, tc.want, Overlaps(tc.s2, tc.d2, tc.s1, tc.d1), "overlap must be symmetric")
		})
	}
}

func TestOverlapsBackToBackNeverIntersects(t *testing.T) {
	for _, tm := range []string{"08:00", "09:20", "13:40", "16:00"} {
		for _, d := range []int{DurationShort, DurationLong} {
			assert.False(t, Overlaps(tm, d, AddMinutes(tm, d), DurationShort), "time=%s dur=%d", tm, d)
		}
	}
}

func TestIsValidClock(t *testing.T) {
	valid := []string{"00:00", "09:05", "23:59"}
	for _, v := range valid {
		assert.True(t, IsValidClock(v), v)
	}
	invalid := []string{"24:00", "9:00", "09:60", "0900", "ab:cd", "", "09:0"}
	for _, v := range invalid {
		assert.False(t, IsValidClock(v), v)
	}
}

func TestIsValidDurationAndCost(t *testing.T) {
	assert.True(t, IsValidDuration(20))
	assert.True(t, IsValidDuration(40))
	assert.False(t, IsValidDuration(30))
	assert.False(t, IsValidDuration(0))

	assert.Equal(t, 1, Cost(DurationShort))
	assert.Equal(t, 2, Cost(DurationLong))
}

func TestMinutes(t *testing.T) {
	assert.Equal(t, 0, Minutes("00:00"))
	assert.Equal(t, 9*60+30, Minutes("09:30"))
	assert.Equal(t, 23*60+59, Minutes("23:59"))
	assert.Equal(t, -1, Minutes("9:30"))
	assert.Equal(t, -1, Minutes(""))
}

func TestDayName(t *testing.T) {
	day, err := DayName("2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, "Monday", day)

	day, err = DayName("2024-01-07")
	require.NoError(t, err)
	assert.Equal(t, "Sunday", day)

	_, err = DayName("01-01-2024")
	require.Error(t, err)
}

func TestInstant(t *testing.T) {
	instant, err := Instant("2024-03-15", "14:30", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC), instant)

	_, err = Instant("2024-03-15", "25:00", time.UTC)
	require.Error(t, err)
}
