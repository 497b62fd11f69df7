package recommend

import (
	"fmt"
	"strings"

	"github.com/campusworks/advisor-backend/internal/types"
)

// Weighted match criteria, summed out of 100.
const (
	weightCareerPath   = 30
	weightLevelExact   = 25
	weightLevelStretch = 15
	weightSubject      = 20
	weightTimeSlot     = 15
	weightPrereqs      = 10
)

// Score computes the weighted-criteria match between a course and a
// student, normalized to [0,1], plus one reason per satisfied
// criterion in fixed order: career path, level fit, subject
// preference, time preference, prerequisites.
func Score(course *types.Course, student *types.StudentProfile) (float64, []string) {
	var total int
	var reasons []string

	careerTitle := CareerTitle(student.CareerGoal)
	if containsFold(types.StringList(course.CareerPaths), careerTitle) {
		total += weightCareerPath
		reasons = append(reasons, fmt.Sprintf("Aligned with your %s career path", careerTitle))
	}

	courseLevel := course.CourseLevel()
	studentLevel := student.ProficiencyLevel()
	switch {
	case courseLevel == studentLevel:
		total += weightLevelExact
		reasons = append(reasons, fmt.Sprintf("Matches your %s level", studentLevel))
	case courseLevel == studentLevel+1:
		total += weightLevelStretch
		reasons = append(reasons, "A step up from your current level to stretch your skills")
	}

	if containsFold(types.StringList(student.PreferredSubjects), course.Subject) {
		total += weightSubject
		reasons = append(reasons, fmt.Sprintf("Covers %s, one of your preferred subjects", course.Subject))
	}

	if student.PreferredTimeSlot != "" &&
		student.PreferredTimeSlot != types.TimePrefNoPreference &&
		strings.EqualFold(course.TimePreference, student.PreferredTimeSlot) {
		total += weightTimeSlot
		reasons = append(reasons, fmt.Sprintf("Meets during your preferred %s time", student.PreferredTimeSlot))
	}

	if meetsAllPrerequisites(course, student) {
		total += weightPrereqs
		reasons = append(reasons, "You meet all prerequisites")
	}

	return float64(total) / 100.0, reasons
}

func meetsAllPrerequisites(course *types.Course, student *types.StudentProfile) bool {
	completed := types.StringSet(student.CompletedCourses)
	for _, prereq := range types.StringList(course.Prerequisites) {
		if !completed[prereq] {
			return false
		}
	}
	return true
}

func containsFold(list []string, target string) bool {
	for _, s := range list {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(target)) {
			return true
		}
	}
	return false
}
