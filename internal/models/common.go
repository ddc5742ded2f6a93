package models

// Pagination describes paging metadata returned alongside list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// Level is a language proficiency tier shared by students, teachers and
// lessons.
type Level string

const (
	LevelKids     Level = "Kids"
	LevelYoung    Level = "Young"
	LevelBasic    Level = "Basic"
	LevelAdvanced Level = "Advanced"
	LevelBusiness Level = "Business"
)

// Levels lists every known proficiency tier.
var Levels = []Level{LevelKids, LevelYoung, LevelBasic, LevelAdvanced, LevelBusiness}

// IsValid reports whether the level is one of the known tiers.
func (l Level) IsValid() bool {
	for _, known := range Levels {
		if l == known {
			return true
		}
	}
	return false
}
