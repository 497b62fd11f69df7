package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/campusworks/advisor-backend/internal/clients/openai"
	"github.com/campusworks/advisor-backend/internal/logger"
	"github.com/campusworks/advisor-backend/internal/recommend"
	"github.com/campusworks/advisor-backend/internal/recstore"
	"github.com/campusworks/advisor-backend/internal/types"
)

type fakeStudentRepo struct {
	students map[uuid.UUID]*types.StudentProfile
}

func (f *fakeStudentRepo) Create(ctx context.Context, tx *gorm.DB, students []*types.StudentProfile) ([]*types.StudentProfile, error) {
	for _, s := range students {
		f.students[s.ID] = s
	}
	return students, nil
}

func (f *fakeStudentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.StudentProfile, error) {
	var out []*types.StudentProfile
	for _, id := range ids {
		if s, ok := f.students[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeCourseRepo struct {
	courses []*types.Course
}

func (f *fakeCourseRepo) Create(ctx context.Context, tx *gorm.DB, courses []*types.Course) ([]*types.Course, error) {
	f.courses = append(f.courses, courses...)
	return courses, nil
}

func (f *fakeCourseRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Course, error) {
	return f.courses, nil
}

func (f *fakeCourseRepo) GetByCodes(ctx context.Context, tx *gorm.DB, codes []string) ([]*types.Course, error) {
	want := make(map[string]bool, len(codes))
	for _, c := range codes {
		want[c] = true
	}
	var out []*types.Course
	for _, c := range f.courses {
		if want[c.Code] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCourseRepo) GetBySubjects(ctx context.Context, tx *gorm.DB, subjects []string) ([]*types.Course, error) {
	want := make(map[string]bool, len(subjects))
	for _, s := range subjects {
		want[s] = true
	}
	var out []*types.Course
	for _, c := range f.courses {
		if want[c.Subject] {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeEnrollmentRepo struct{}

func (f *fakeEnrollmentRepo) Create(ctx context.Context, tx *gorm.DB, records []*types.EnrollmentRecord) ([]*types.EnrollmentRecord, error) {
	return records, nil
}

func (f *fakeEnrollmentRepo) GetByCourseCodes(ctx context.Context, tx *gorm.DB, codes []string) ([]*types.EnrollmentRecord, error) {
	return nil, nil
}

// fakeOracle returns a canned structured payload, or an error.
type fakeOracle struct {
	payload string
	err     error
	calls   int
}

func (f *fakeOracle) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(f.payload), &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func (f *fakeOracle) GenerateText(ctx context.Context, system, user string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.payload, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func jsonList(s string) datatypes.JSON { return datatypes.JSON([]byte(s)) }

func testCourse(code, subject, slot string) *types.Course {
	return &types.Course{
		Code:     code,
		Title:    code + " title",
		Subject:  subject,
		Credits:  3,
		Level:    "beginner",
		Schedule: jsonList(`"` + slot + `"`),
	}
}

func testFixture(t *testing.T, oracle *fakeOracle) (RecommendationService, uuid.UUID, recstore.Store) {
	t.Helper()
	studentID := uuid.New()
	students := &fakeStudentRepo{students: map[uuid.UUID]*types.StudentProfile{
		studentID: {
			ID:                studentID,
			CareerGoal:        "software_engineer",
			Proficiency:       "beginner",
			PreferredSubjects: jsonList(`["Programming"]`),
			PreferredTimeSlot: types.TimePrefMorning,
		},
	}}
	courses := &fakeCourseRepo{courses: []*types.Course{
		testCourse("A", "Programming", "MWF 10:00-11:15"),
		testCourse("B", "Programming", "MR 10:30-11:30"),
		testCourse("C", "Databases", "TR 13:00-14:00"),
		testCourse("D", "Design", "F 15:00-16:00"),
	}}
	log := testLogger(t)
	estimator := recommend.NewEstimatorWithoutJitter(&fakeEnrollmentRepo{}, log)
	store := recstore.NewMemoryStore()

	// Avoid a non-nil interface wrapping a nil pointer.
	var client openai.Client
	if oracle != nil {
		client = oracle
	}

	svc := NewRecommendationService(nil, log, students, courses, estimator, client, store, time.Second)
	return svc, studentID, store
}

func oraclePayload(codes ...string) string {
	type rec struct {
		CourseID   string   `json:"course_id"`
		MatchScore float64  `json:"match_score"`
		Reasons    []string `json:"reasons"`
	}
	var recs []rec
	for _, c := range codes {
		recs = append(recs, rec{CourseID: c, MatchScore: 0.9, Reasons: []string{"fits your goals"}})
	}
	raw, _ := json.Marshal(map[string]any{"recommendations": recs})
	return string(raw)
}

func TestRefreshAdoptsValidOracleSet(t *testing.T) {
	oracle := &fakeOracle{payload: oraclePayload("A", "C", "D")}
	svc, studentID, store := testFixture(t, oracle)

	set, err := svc.Refresh(context.Background(), nil, studentID)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if set.Source != types.SourceOracle {
		t.Fatalf("source=%q, want oracle", set.Source)
	}
	if len(set.Courses) != 3 {
		t.Fatalf("got %d courses, want 3", len(set.Courses))
	}
	if set.Degraded {
		t.Fatal("valid oracle set must not be degraded")
	}

	persisted, err := store.Get(context.Background(), studentID)
	if err != nil || persisted == nil {
		t.Fatalf("set not persisted: (%v, %v)", persisted, err)
	}
	if persisted.Source != types.SourceOracle {
		t.Fatalf("persisted source=%q, want oracle", persisted.Source)
	}
}

func TestRefreshDiscardsConflictingOracleSet(t *testing.T) {
	// A and B overlap on Monday: the whole oracle set must be
	// discarded, not trimmed to the two non-conflicting courses.
	oracle := &fakeOracle{payload: oraclePayload("A", "B", "C")}
	svc, studentID, _ := testFixture(t, oracle)

	set, err := svc.Refresh(context.Background(), nil, studentID)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if set.Source != types.SourceFallback {
		t.Fatalf("source=%q, want fallback after conflicting oracle output", set.Source)
	}
	got := map[string]bool{}
	for _, sc := range set.Courses {
		got[sc.CourseCode] = true
	}
	if got["A"] && got["B"] {
		t.Fatalf("conflicting pair present in final set: %v", got)
	}
	if len(set.Courses) != 3 {
		t.Fatalf("fallback returned %d courses, want 3", len(set.Courses))
	}
}

func TestRefreshFallsBackOnOracleError(t *testing.T) {
	oracle := &fakeOracle{err: fmt.Errorf("connection refused")}
	svc, studentID, _ := testFixture(t, oracle)

	set, err := svc.Refresh(context.Background(), nil, studentID)
	if err != nil {
		t.Fatalf("Refresh must not fail when the oracle is down: %v", err)
	}
	if set.Source != types.SourceFallback {
		t.Fatalf("source=%q, want fallback", set.Source)
	}
	if oracle.calls != 1 {
		t.Fatalf("oracle called %d times, want exactly 1 (no retries)", oracle.calls)
	}
}

func TestRefreshRejectsUnknownOracleCourse(t *testing.T) {
	oracle := &fakeOracle{payload: oraclePayload("A", "C", "GHOST999")}
	svc, studentID, _ := testFixture(t, oracle)

	set, err := svc.Refresh(context.Background(), nil, studentID)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if set.Source != types.SourceFallback {
		t.Fatalf("source=%q, want fallback for unknown course id", set.Source)
	}
}

func TestRefreshWithoutOracleUsesFallback(t *testing.T) {
	svc, studentID, _ := testFixture(t, nil)

	set, err := svc.Refresh(context.Background(), nil, studentID)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if set.Source != types.SourceFallback {
		t.Fatalf("source=%q, want fallback", set.Source)
	}
}

func TestRefreshUnknownStudent(t *testing.T) {
	svc, _, _ := testFixture(t, nil)

	_, err := svc.Refresh(context.Background(), nil, uuid.New())
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("err=%v, want ErrInsufficientData", err)
	}
}

func TestProposeCoursesLifecycle(t *testing.T) {
	svc, studentID, store := testFixture(t, nil)
	ctx := context.Background()

	proposed, err := svc.ProposeCourses(ctx, nil, studentID, []string{"A", "C"})
	if err != nil {
		t.Fatalf("ProposeCourses: %v", err)
	}
	if proposed.Source != types.SourceProposed {
		t.Fatalf("source=%q, want proposed", proposed.Source)
	}

	// Proposal does not change the authoritative set.
	if got, _ := store.Get(ctx, studentID); got != nil {
		t.Fatalf("authoritative set appeared without apply: %+v", got)
	}

	applied, err := svc.ApplyPendingUpdate(ctx, studentID)
	if err != nil {
		t.Fatalf("ApplyPendingUpdate: %v", err)
	}
	if len(applied.Courses) != 2 {
		t.Fatalf("applied %d courses, want 2", len(applied.Courses))
	}

	if _, err := svc.ApplyPendingUpdate(ctx, studentID); !errors.Is(err, recstore.ErrNoPendingUpdate) {
		t.Fatalf("second apply err=%v, want ErrNoPendingUpdate", err)
	}
}

func TestProposeCoursesRejectsConflicts(t *testing.T) {
	svc, studentID, _ := testFixture(t, nil)

	_, err := svc.ProposeCourses(context.Background(), nil, studentID, []string{"A", "B"})
	if !errors.Is(err, ErrConflictingProposal) {
		t.Fatalf("err=%v, want ErrConflictingProposal", err)
	}
}

func TestProposeCoursesRejectsInvalidInput(t *testing.T) {
	svc, studentID, _ := testFixture(t, nil)
	ctx := context.Background()

	if _, err := svc.ProposeCourses(ctx, nil, studentID, nil); !errors.Is(err, ErrInvalidProposal) {
		t.Fatalf("empty proposal err=%v, want ErrInvalidProposal", err)
	}
	if _, err := svc.ProposeCourses(ctx, nil, studentID, []string{"ZZ999"}); !errors.Is(err, ErrInvalidProposal) {
		t.Fatalf("unknown course err=%v, want ErrInvalidProposal", err)
	}
}

func TestExtractCourseCodes(t *testing.T) {
	catalog := []*types.Course{
		testCourse("CS101", "Programming", "M 10:00-11:00"),
		testCourse("DS200", "Data Science", "T 10:00-11:00"),
		testCourse("DB150", "Databases", "W 10:00-11:00"),
		testCourse("NET300", "Networking", "R 10:00-11:00"),
	}

	cases := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "mention_order_preserved",
			text: "I'd start with DS200, then DB150, and CS101 if you have room.",
			want: []string{"DS200", "DB150", "CS101"},
		},
		{
			name: "limit_applies",
			text: "Consider CS101, DS200, DB150 and NET300.",
			want: []string{"CS101", "DS200", "DB150"},
		},
		{
			name: "no_codes",
			text: "Tell me more about your interests first.",
			want: nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := extractCourseCodes(tc.text, catalog, types.MaxRecommendations)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}
