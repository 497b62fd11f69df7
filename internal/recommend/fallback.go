package recommend

import (
	"sort"
	"strings"

	"github.com/campusworks/advisor-backend/internal/logger"
	"github.com/campusworks/advisor-backend/internal/schedule"
	"github.com/campusworks/advisor-backend/internal/types"
)

// Candidate is one course prepared for selection: its canonical slots
// and its already-fixed availability score. Availability jitter is
// applied upstream by the estimator, so selection itself is
// deterministic given its inputs.
type Candidate struct {
	Course       *types.Course
	Slots        []*schedule.TimeSlot
	Availability float64
}

// NewCandidate normalizes a course's raw schedule into a candidate.
func NewCandidate(course *types.Course, availability float64) Candidate {
	return Candidate{
		Course:       course,
		Slots:        schedule.ParseRaw(course.Schedule),
		Availability: availability,
	}
}

// ScoredFromCandidate assembles the externally visible entry. The
// difficulty and occupancy fields are always derived locally here,
// regardless of where the reasons came from.
func ScoredFromCandidate(c Candidate, matchScore float64, reasons []string) types.ScoredCourse {
	var scheduleStr string
	if len(c.Slots) > 0 {
		parts := make([]string, 0, len(c.Slots))
		for _, s := range c.Slots {
			parts = append(parts, s.Compact())
		}
		scheduleStr = strings.Join(parts, ", ")
	}
	return types.ScoredCourse{
		CourseCode:   c.Course.Code,
		Title:        c.Course.Title,
		Subject:      c.Course.Subject,
		Credits:      c.Course.Credits,
		MatchScore:   matchScore,
		Reasons:      reasons,
		Difficulty:   DifficultyFromHours(c.Course.WeeklyHours).String(),
		Availability: c.Availability,
		Occupancy:    OccupancyLabel(c.Availability),
		Schedule:     scheduleStr,
	}
}

// FallbackSelect produces a recommendation set without any external
// call. Candidates are ranked by (on career path, preferred subject,
// availability) and accepted greedily while conflict-free. If fewer
// than MaxRecommendations conflict-free courses exist, the remainder
// is filled from the ranked list ignoring conflicts; that relaxation
// is the only point where the non-overlap guarantee may be violated,
// and it is reported through the degraded flag.
func FallbackSelect(student *types.StudentProfile, candidates []Candidate, log *logger.Logger) ([]types.ScoredCourse, bool) {
	careerTitle := CareerTitle(student.CareerGoal)
	preferredSubjects := types.StringList(student.PreferredSubjects)

	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		ci, cj := ranked[i], ranked[j]
		onPathI := containsFold(types.StringList(ci.Course.CareerPaths), careerTitle)
		onPathJ := containsFold(types.StringList(cj.Course.CareerPaths), careerTitle)
		if onPathI != onPathJ {
			return onPathI
		}
		subjI := containsFold(preferredSubjects, ci.Course.Subject)
		subjJ := containsFold(preferredSubjects, cj.Course.Subject)
		if subjI != subjJ {
			return subjI
		}
		return ci.Availability > cj.Availability
	})

	var picked []Candidate
	var accepted []*schedule.TimeSlot
	taken := make(map[string]bool)
	for _, c := range ranked {
		if len(picked) == types.MaxRecommendations {
			break
		}
		if schedule.ConflictsAny(accepted, c.Slots) {
			continue
		}
		picked = append(picked, c)
		accepted = append(accepted, c.Slots...)
		taken[c.Course.Code] = true
	}

	degraded := false
	if len(picked) < types.MaxRecommendations {
		for _, c := range ranked {
			if len(picked) == types.MaxRecommendations {
				break
			}
			if taken[c.Course.Code] {
				continue
			}
			degraded = true
			log.Warn("Relaxing schedule-conflict constraint to fill recommendations",
				"course_code", c.Course.Code)
			picked = append(picked, c)
			taken[c.Course.Code] = true
		}
	}

	out := make([]types.ScoredCourse, 0, len(picked))
	for _, c := range picked {
		matchScore, _ := Score(c.Course, student)
		reasons := SynthesizeReasons(c.Course, student, c.Availability)
		out = append(out, ScoredFromCandidate(c, matchScore, reasons))
	}
	return out, degraded
}
