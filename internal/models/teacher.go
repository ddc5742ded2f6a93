package models

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// WorkingHour is a recurring weekly availability block for a teacher, keyed
// by day name. The roster assumes at most one block per day of week.
type WorkingHour struct {
	DayOfWeek string `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Teacher represents an instructor record. Taught levels and the weekly
// working-hour blocks are stored as JSONB documents.
type Teacher struct {
	ID           string         `db:"id" json:"id"`
	FullName     string         `db:"full_name" json:"full_name"`
	Email        string         `db:"email" json:"email"`
	Phone        *string        `db:"phone" json:"phone,omitempty"`
	Levels       types.JSONText `db:"levels" json:"levels"`
	WorkingHours types.JSONText `db:"working_hours" json:"working_hours"`
	Active       bool           `db:"active" json:"active"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// LevelSet decodes the taught levels document.
func (t *Teacher) LevelSet() ([]Level, error) {
	if len(t.Levels) == 0 {
		return nil, nil
	}
	var levels []Level
	if err := json.Unmarshal(t.Levels, &levels); err != nil {
		return nil, err
	}
	return levels, nil
}

// Schedule decodes the weekly working-hour blocks.
func (t *Teacher) Schedule() ([]WorkingHour, error) {
	if len(t.WorkingHours) == 0 {
		return nil, nil
	}
	var blocks []WorkingHour
	if err := json.Unmarshal(t.WorkingHours, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// Teaches reports whether the teacher covers the given level.
func (t *Teacher) Teaches(level Level) bool {
	levels, err := t.LevelSet()
	if err != nil {
		return false
	}
	for _, l := range levels {
		if l == level {
			return true
		}
	}
	return false
}

// BlockFor returns the first working-hour block matching the day name, or nil
// when the teacher does not work that day. Extra blocks on the same day are
// ignored; the roster editor enforces one block per day.
func (t *Teacher) BlockFor(dayName string) *WorkingHour {
	blocks, err := t.Schedule()
	if err != nil {
		return nil
	}
	for i := range blocks {
		if blocks[i].DayOfWeek == dayName {
			return &blocks[i]
		}
	}
	return nil
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search    string
	Active    *bool
	Level     Level
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
