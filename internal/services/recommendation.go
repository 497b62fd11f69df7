package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/campusworks/advisor-backend/internal/clients/openai"
	"github.com/campusworks/advisor-backend/internal/logger"
	"github.com/campusworks/advisor-backend/internal/recommend"
	"github.com/campusworks/advisor-backend/internal/recstore"
	"github.com/campusworks/advisor-backend/internal/repos"
	"github.com/campusworks/advisor-backend/internal/schedule"
	"github.com/campusworks/advisor-backend/internal/types"
)

var (
	// ErrInsufficientData means the profile or catalog needed for a
	// recommendation does not exist; the engine declines to answer.
	ErrInsufficientData = errors.New("insufficient data for recommendation")

	// ErrConflictingProposal rejects a proposed update whose courses
	// overlap in time; pending sets must satisfy the same invariant
	// the engine guarantees.
	ErrConflictingProposal = errors.New("proposed courses have conflicting schedules")

	// ErrInvalidProposal rejects a proposed update that is malformed:
	// wrong count, or a course the student cannot take.
	ErrInvalidProposal = errors.New("invalid proposed recommendation set")
)

type RecommendationService interface {
	Get(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (*types.RecommendationSet, error)
	// Refresh recomputes and persists the authoritative set.
	// Concurrent refreshes for the same student share one computation.
	Refresh(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (*types.RecommendationSet, error)
	// ProposeCourses validates and stores a pending update built from
	// externally suggested course codes (e.g. a chat reply).
	ProposeCourses(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, codes []string) (*types.RecommendationSet, error)
	// ApplyPendingUpdate promotes the pending set to authoritative.
	ApplyPendingUpdate(ctx context.Context, studentID uuid.UUID) (*types.RecommendationSet, error)
}

type recommendationService struct {
	db            *gorm.DB
	log           *logger.Logger
	studentRepo   repos.StudentRepo
	courseRepo    repos.CourseRepo
	estimator     *recommend.Estimator
	oracle        openai.Client
	store         recstore.Store
	oracleTimeout time.Duration
	refreshGroup  singleflight.Group
}

func NewRecommendationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	studentRepo repos.StudentRepo,
	courseRepo repos.CourseRepo,
	estimator *recommend.Estimator,
	oracle openai.Client,
	store recstore.Store,
	oracleTimeout time.Duration,
) RecommendationService {
	serviceLog := baseLog.With("service", "RecommendationService")
	return &recommendationService{
		db:            db,
		log:           serviceLog,
		studentRepo:   studentRepo,
		courseRepo:    courseRepo,
		estimator:     estimator,
		oracle:        oracle,
		store:         store,
		oracleTimeout: oracleTimeout,
	}
}

func (rs *recommendationService) Get(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (*types.RecommendationSet, error) {
	return rs.store.Get(ctx, studentID)
}

func (rs *recommendationService) Refresh(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (*types.RecommendationSet, error) {
	// A refresh issued while one is already in flight for the same
	// student adopts that computation instead of racing it.
	result, err, _ := rs.refreshGroup.Do(studentID.String(), func() (interface{}, error) {
		return rs.computeAndStore(ctx, tx, studentID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*types.RecommendationSet), nil
}

func (rs *recommendationService) computeAndStore(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (*types.RecommendationSet, error) {
	student, candidates, err := rs.loadInputs(ctx, tx, studentID)
	if err != nil {
		return nil, err
	}

	courses, degraded, source := rs.selectCourses(ctx, student, candidates)

	set := &types.RecommendationSet{
		StudentID:   studentID.String(),
		Courses:     courses,
		Source:      source,
		Degraded:    degraded,
		GeneratedAt: time.Now().UTC(),
	}
	if err := rs.store.Set(ctx, studentID, set); err != nil {
		rs.log.Error("Failed to persist recommendation set", "error", err, "student_id", studentID)
		return nil, fmt.Errorf("persist recommendation set: %w", err)
	}

	rs.log.Info("Recommendation set refreshed",
		"student_id", studentID,
		"source", source,
		"courses", len(courses),
		"degraded", degraded)
	return set, nil
}

// loadInputs resolves the profile and prepares scored candidates with
// availability already fixed, excluding courses the student completed.
func (rs *recommendationService) loadInputs(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (*types.StudentProfile, []recommend.Candidate, error) {
	students, err := rs.studentRepo.GetByIDs(ctx, tx, []uuid.UUID{studentID})
	if err != nil {
		return nil, nil, fmt.Errorf("load student profile: %w", err)
	}
	if len(students) == 0 || students[0] == nil {
		return nil, nil, fmt.Errorf("student %s: %w", studentID, ErrInsufficientData)
	}
	student := students[0]

	catalog, err := rs.courseRepo.GetAll(ctx, tx)
	if err != nil {
		return nil, nil, fmt.Errorf("load course catalog: %w", err)
	}

	completed := types.StringSet(student.CompletedCourses)
	remaining := make([]*types.Course, 0, len(catalog))
	codes := make([]string, 0, len(catalog))
	for _, course := range catalog {
		if completed[course.Code] {
			continue
		}
		remaining = append(remaining, course)
		codes = append(codes, course.Code)
	}
	if len(remaining) == 0 {
		return nil, nil, fmt.Errorf("course catalog empty: %w", ErrInsufficientData)
	}

	availability, err := rs.estimator.Estimate(ctx, tx, codes)
	if err != nil {
		return nil, nil, fmt.Errorf("estimate availability: %w", err)
	}

	candidates := make([]recommend.Candidate, 0, len(remaining))
	for _, course := range remaining {
		candidates = append(candidates, recommend.NewCandidate(course, availability[course.Code]))
	}
	return student, candidates, nil
}

// selectCourses tries the oracle once and falls back to the
// deterministic selector on any failure or invalid output.
func (rs *recommendationService) selectCourses(ctx context.Context, student *types.StudentProfile, candidates []recommend.Candidate) ([]types.ScoredCourse, bool, string) {
	if rs.oracle != nil {
		courses, err := rs.oracleSelect(ctx, student, candidates)
		if err == nil {
			return courses, false, types.SourceOracle
		}
		rs.log.Warn("Oracle selection unusable, using deterministic fallback", "error", err)
	}

	courses, degraded := recommend.FallbackSelect(student, candidates, rs.log)
	return courses, degraded, types.SourceFallback
}

type oracleRecommendation struct {
	CourseID   string   `json:"course_id"`
	MatchScore float64  `json:"match_score"`
	Reasons    []string `json:"reasons"`
}

type oracleResult struct {
	Recommendations []oracleRecommendation `json:"recommendations"`
}

var oracleSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"recommendations": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"course_id":   map[string]any{"type": "string"},
					"match_score": map[string]any{"type": "number"},
					"reasons": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
				},
				"required":             []string{"course_id", "match_score", "reasons"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"recommendations"},
	"additionalProperties": false,
}

func (rs *recommendationService) oracleSelect(ctx context.Context, student *types.StudentProfile, candidates []recommend.Candidate) ([]types.ScoredCourse, error) {
	oracleCtx, cancel := context.WithTimeout(ctx, rs.oracleTimeout)
	defer cancel()

	obj, err := rs.oracle.GenerateJSON(oracleCtx,
		oracleSystemPrompt,
		buildOraclePrompt(student, candidates),
		"course_recommendations",
		oracleSchema)
	if err != nil {
		return nil, fmt.Errorf("oracle call: %w", err)
	}

	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("re-encode oracle output: %w", err)
	}
	var result oracleResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode oracle output: %w", err)
	}

	want := types.MaxRecommendations
	if len(candidates) < want {
		want = len(candidates)
	}
	if len(result.Recommendations) != want {
		return nil, fmt.Errorf("oracle returned %d recommendations, want %d", len(result.Recommendations), want)
	}

	byCode := make(map[string]recommend.Candidate, len(candidates))
	for _, c := range candidates {
		byCode[c.Course.Code] = c
	}

	// Assemble, recomputing difficulty and availability locally. The
	// oracle's match_score and reasons are accepted, clamped.
	courses := make([]types.ScoredCourse, 0, want)
	var slots [][]*schedule.TimeSlot
	seen := make(map[string]bool, want)
	for _, rec := range result.Recommendations {
		candidate, ok := byCode[rec.CourseID]
		if !ok {
			return nil, fmt.Errorf("oracle proposed unknown course %q", rec.CourseID)
		}
		if seen[rec.CourseID] {
			return nil, fmt.Errorf("oracle proposed course %q twice", rec.CourseID)
		}
		seen[rec.CourseID] = true

		score := rec.MatchScore
		if score < 0 {
			score = 0
		}
		if score > 1 {
			score = 1
		}
		courses = append(courses, recommend.ScoredFromCandidate(candidate, score, rec.Reasons))
		slots = append(slots, candidate.Slots)
	}

	// The hard constraint the oracle was asked to honor. One conflict
	// invalidates the whole set; a partial set is never returned.
	for i := 0; i < len(slots); i++ {
		for j := i + 1; j < len(slots); j++ {
			if schedule.ConflictsAny(slots[i], slots[j]) {
				return nil, fmt.Errorf("oracle set has conflicting schedules (%s vs %s)",
					courses[i].CourseCode, courses[j].CourseCode)
			}
		}
	}

	return courses, nil
}

const oracleSystemPrompt = `You are an academic advisor. Recommend courses for the student described by the user.
Hard requirement: no two recommended courses may have overlapping meeting times.
Recommend exactly the requested number of courses, chosen from the candidate list only, and explain each choice briefly.`

func buildOraclePrompt(student *types.StudentProfile, candidates []recommend.Candidate) string {
	// Preferred-subject courses first so the oracle sees them early.
	preferred := types.StringList(student.PreferredSubjects)
	ordered := make([]recommend.Candidate, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		pi := containsSubject(preferred, ordered[i].Course.Subject)
		pj := containsSubject(preferred, ordered[j].Course.Subject)
		return pi && !pj
	})

	want := types.MaxRecommendations
	if len(ordered) < want {
		want = len(ordered)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Student profile:\n")
	fmt.Fprintf(&b, "- Career goal: %s\n", recommend.CareerTitle(student.CareerGoal))
	fmt.Fprintf(&b, "- Technical level: %s\n", student.ProficiencyLevel())
	fmt.Fprintf(&b, "- Preferred subjects: %s\n", strings.Join(preferred, ", "))
	fmt.Fprintf(&b, "- Preferred time of day: %s\n", student.PreferredTimeSlot)
	fmt.Fprintf(&b, "- Completed courses: %s\n", strings.Join(types.StringList(student.CompletedCourses), ", "))
	fmt.Fprintf(&b, "\nCandidate courses:\n")
	for _, c := range ordered {
		var slotParts []string
		for _, s := range c.Slots {
			slotParts = append(slotParts, s.Compact())
		}
		fmt.Fprintf(&b, "- %s: %s | subject=%s | level=%s | meets=%s | availability=%.2f\n",
			c.Course.Code, c.Course.Title, c.Course.Subject, c.Course.CourseLevel(),
			strings.Join(slotParts, ", "), c.Availability)
	}
	fmt.Fprintf(&b, "\nRecommend exactly %d courses by course code. No two may overlap in meeting time.\n", want)
	return b.String()
}

func containsSubject(list []string, subject string) bool {
	for _, s := range list {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(subject)) {
			return true
		}
	}
	return false
}

func (rs *recommendationService) ProposeCourses(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, codes []string) (*types.RecommendationSet, error) {
	if len(codes) == 0 || len(codes) > types.MaxRecommendations {
		return nil, fmt.Errorf("proposal must contain 1 to %d course codes: %w", types.MaxRecommendations, ErrInvalidProposal)
	}

	student, candidates, err := rs.loadInputs(ctx, tx, studentID)
	if err != nil {
		return nil, err
	}

	byCode := make(map[string]recommend.Candidate, len(candidates))
	for _, c := range candidates {
		byCode[c.Course.Code] = c
	}

	var picked []recommend.Candidate
	var slots []*schedule.TimeSlot
	for _, code := range codes {
		candidate, ok := byCode[code]
		if !ok {
			return nil, fmt.Errorf("course %q not available for this student: %w", code, ErrInvalidProposal)
		}
		if schedule.ConflictsAny(slots, candidate.Slots) {
			return nil, fmt.Errorf("course %q overlaps another proposed course: %w", code, ErrConflictingProposal)
		}
		picked = append(picked, candidate)
		slots = append(slots, candidate.Slots...)
	}

	courses := make([]types.ScoredCourse, 0, len(picked))
	for _, c := range picked {
		matchScore, _ := recommend.Score(c.Course, student)
		reasons := recommend.SynthesizeReasons(c.Course, student, c.Availability)
		courses = append(courses, recommend.ScoredFromCandidate(c, matchScore, reasons))
	}

	set := &types.RecommendationSet{
		StudentID:   studentID.String(),
		Courses:     courses,
		Source:      types.SourceProposed,
		GeneratedAt: time.Now().UTC(),
	}
	if err := rs.store.ProposeUpdate(ctx, studentID, set); err != nil {
		return nil, fmt.Errorf("store pending update: %w", err)
	}

	rs.log.Info("Pending recommendation update stored", "student_id", studentID, "courses", len(courses))
	return set, nil
}

func (rs *recommendationService) ApplyPendingUpdate(ctx context.Context, studentID uuid.UUID) (*types.RecommendationSet, error) {
	return rs.store.ApplyPendingUpdate(ctx, studentID)
}
