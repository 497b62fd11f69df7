package recommend

import (
	"context"
	"math/rand"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/campusworks/advisor-backend/internal/logger"
	"github.com/campusworks/advisor-backend/internal/repos"
	"github.com/campusworks/advisor-backend/internal/types"
)

const (
	availabilityFloor   = 0.10
	availabilityCeiling = 0.95
	availabilityDefault = 0.80
	availabilityJitter  = 0.05
)

// Estimator converts historical enrollment records into a per-course
// availability score in [0.10, 0.95]; higher means easier to enroll.
type Estimator struct {
	enrollmentRepo repos.EnrollmentRepo
	log            *logger.Logger
	jitter         float64
}

func NewEstimator(enrollmentRepo repos.EnrollmentRepo, baseLog *logger.Logger) *Estimator {
	return &Estimator{
		enrollmentRepo: enrollmentRepo,
		log:            baseLog.With("component", "AvailabilityEstimator"),
		jitter:         availabilityJitter,
	}
}

// NewEstimatorWithoutJitter returns an estimator with tie-breaking
// perturbation disabled, for deterministic use.
func NewEstimatorWithoutJitter(enrollmentRepo repos.EnrollmentRepo, baseLog *logger.Logger) *Estimator {
	e := NewEstimator(enrollmentRepo, baseLog)
	e.jitter = 0
	return e
}

// Estimate fetches the enrollment history for all requested courses in
// one batched read and scores each. Courses with no history default to
// 0.80 (assume available).
func (e *Estimator) Estimate(ctx context.Context, tx *gorm.DB, courseCodes []string) (map[string]float64, error) {
	out := make(map[string]float64, len(courseCodes))
	if len(courseCodes) == 0 {
		return out, nil
	}

	records, err := e.enrollmentRepo.GetByCourseCodes(ctx, tx, courseCodes)
	if err != nil {
		return nil, err
	}
	e.log.Debug("Scoring availability from enrollment history", "courses", len(courseCodes), "records", len(records))

	byCourse := make(map[string][]*types.EnrollmentRecord)
	for _, rec := range records {
		byCourse[rec.CourseCode] = append(byCourse[rec.CourseCode], rec)
	}

	for _, code := range courseCodes {
		out[code] = e.scoreHistory(byCourse[code])
	}
	return out, nil
}

func (e *Estimator) scoreHistory(records []*types.EnrollmentRecord) float64 {
	avail := availabilityDefault
	if len(records) > 0 {
		sortRecentFirst(records)

		var weightedFill, totalWeight float64
		for rank, rec := range records {
			if rec.Capacity <= 0 {
				continue
			}
			fill := float64(rec.Filled) / float64(rec.Capacity)
			if fill > 1 {
				fill = 1
			}
			w := 1.0 / float64(rank+1)
			weightedFill += fill * w
			totalWeight += w
		}
		if totalWeight > 0 {
			avail = 1 - weightedFill/totalWeight
		}
	}

	if e.jitter > 0 {
		avail += (rand.Float64()*2 - 1) * e.jitter
	}
	if avail < availabilityFloor {
		avail = availabilityFloor
	}
	if avail > availabilityCeiling {
		avail = availabilityCeiling
	}
	return avail
}

// OccupancyLabel maps an availability score to the three-tier
// occupancy label shown to students.
func OccupancyLabel(availability float64) string {
	occupancy := 1 - availability
	switch {
	case occupancy <= 0.5:
		return types.OccupancyLow
	case occupancy <= 0.7:
		return types.OccupancyMedium
	default:
		return types.OccupancyHigh
	}
}

var semesterYearRe = regexp.MustCompile(`(\d{4})\s*$`)

// semesterKey orders semester labels like "Fall 2024" chronologically:
// trailing 4-digit year first, then Spring < Summer < Fall < Winter.
func semesterKey(label string) (year, term int) {
	if m := semesterYearRe.FindStringSubmatch(label); m != nil {
		year, _ = strconv.Atoi(m[1])
	}
	lower := strings.ToLower(label)
	switch {
	case strings.Contains(lower, "spring"):
		term = 1
	case strings.Contains(lower, "summer"):
		term = 2
	case strings.Contains(lower, "fall"):
		term = 3
	case strings.Contains(lower, "winter"):
		term = 4
	}
	return year, term
}

func sortRecentFirst(records []*types.EnrollmentRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		yi, ti := semesterKey(records[i].Semester)
		yj, tj := semesterKey(records[j].Semester)
		if yi != yj {
			return yi > yj
		}
		return ti > tj
	})
}
