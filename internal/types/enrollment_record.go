package types

import (
	"time"

	"github.com/google/uuid"
)

// EnrollmentRecord is one historical per-semester enrollment snapshot
// for a course section.
type EnrollmentRecord struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourseCode string    `gorm:"column:course_code;index;not null" json:"course_code"`
	Semester   string    `gorm:"column:semester;not null" json:"semester"`
	Filled     int       `gorm:"column:filled;not null;default:0" json:"filled"`
	Capacity   int       `gorm:"column:capacity;not null;default:0" json:"capacity"`
	CreatedAt  time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (EnrollmentRecord) TableName() string { return "enrollment_record" }
