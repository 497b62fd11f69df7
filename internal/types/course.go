package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Course struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Code           string         `gorm:"column:code;uniqueIndex;not null" json:"code"`
	Title          string         `gorm:"column:title;not null" json:"title"`
	Subject        string         `gorm:"column:subject;index" json:"subject"`
	Credits        int            `gorm:"column:credits;not null;default:3" json:"credits"`
	Level          string         `gorm:"column:level" json:"level"`
	Schedule       datatypes.JSON `gorm:"column:schedule;type:jsonb" json:"schedule"`
	TimePreference string         `gorm:"column:time_preference" json:"time_preference"`
	Prerequisites  datatypes.JSON `gorm:"column:prerequisites;type:jsonb" json:"prerequisites"`
	CareerPaths    datatypes.JSON `gorm:"column:career_paths;type:jsonb" json:"career_paths"`
	WeeklyHours    *int           `gorm:"column:weekly_hours" json:"weekly_hours,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Course) TableName() string { return "course" }

// CourseLevel returns the course level on the shared ordinal scale,
// defaulting to intermediate when unset.
func (c *Course) CourseLevel() Level {
	lvl := ParseLevel(c.Level)
	if lvl == LevelUnknown {
		return LevelIntermediate
	}
	return lvl
}
