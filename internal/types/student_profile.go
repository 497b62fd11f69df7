package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type StudentProfile struct {
	ID                uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CareerGoal        string         `gorm:"column:career_goal" json:"career_goal"`
	Proficiency       string         `gorm:"column:proficiency" json:"proficiency"`
	PreferredSubjects datatypes.JSON `gorm:"column:preferred_subjects;type:jsonb" json:"preferred_subjects"`
	PreferredTimeSlot string         `gorm:"column:preferred_time_slot" json:"preferred_time_slot"`
	CompletedCourses  datatypes.JSON `gorm:"column:completed_courses;type:jsonb" json:"completed_courses"`
	CompletedCredits  int            `gorm:"column:completed_credits;not null;default:0" json:"completed_credits"`
	CreatedAt         time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (StudentProfile) TableName() string { return "student_profile" }

// ProficiencyLevel returns the profile's proficiency on the shared
// ordinal scale, defaulting to beginner when unset.
func (p *StudentProfile) ProficiencyLevel() Level {
	lvl := ParseLevel(p.Proficiency)
	if lvl == LevelUnknown {
		return LevelBeginner
	}
	return lvl
}
