package recstore

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campusworks/advisor-backend/internal/types"
)

func sampleSet(studentID uuid.UUID, source string, codes ...string) *types.RecommendationSet {
	set := &types.RecommendationSet{
		StudentID:   studentID.String(),
		Source:      source,
		GeneratedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	for _, code := range codes {
		set.Courses = append(set.Courses, types.ScoredCourse{CourseCode: code, MatchScore: 0.5})
	}
	return set
}

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	studentID := uuid.New()

	loaded, err := store.IsLoaded(ctx, studentID)
	if err != nil || loaded {
		t.Fatalf("IsLoaded on empty store = (%v, %v), want (false, nil)", loaded, err)
	}
	got, err := store.Get(ctx, studentID)
	if err != nil || got != nil {
		t.Fatalf("Get on empty store = (%v, %v), want (nil, nil)", got, err)
	}

	authoritative := sampleSet(studentID, types.SourceOracle, "A", "B", "C")
	if err := store.Set(ctx, studentID, authoritative); err != nil {
		t.Fatalf("Set: %v", err)
	}

	loaded, err = store.IsLoaded(ctx, studentID)
	if err != nil || !loaded {
		t.Fatalf("IsLoaded after Set = (%v, %v), want (true, nil)", loaded, err)
	}
	got, err = store.Get(ctx, studentID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(got, authoritative) {
		t.Fatalf("Get=%+v, want %+v", got, authoritative)
	}

	// Propose without apply leaves the authoritative set untouched.
	proposed := sampleSet(studentID, types.SourceProposed, "X", "Y", "Z")
	if err := store.ProposeUpdate(ctx, studentID, proposed); err != nil {
		t.Fatalf("ProposeUpdate: %v", err)
	}
	got, _ = store.Get(ctx, studentID)
	if !reflect.DeepEqual(got, authoritative) {
		t.Fatalf("proposal overwrote authoritative set: %+v", got)
	}

	// Apply promotes the whole pending set and clears it.
	applied, err := store.ApplyPendingUpdate(ctx, studentID)
	if err != nil {
		t.Fatalf("ApplyPendingUpdate: %v", err)
	}
	if !reflect.DeepEqual(applied, proposed) {
		t.Fatalf("applied=%+v, want %+v", applied, proposed)
	}
	got, _ = store.Get(ctx, studentID)
	if !reflect.DeepEqual(got, proposed) {
		t.Fatalf("authoritative after apply=%+v, want %+v", got, proposed)
	}

	// Second apply has nothing pending.
	if _, err := store.ApplyPendingUpdate(ctx, studentID); !errors.Is(err, ErrNoPendingUpdate) {
		t.Fatalf("second apply err=%v, want ErrNoPendingUpdate", err)
	}
	got, _ = store.Get(ctx, studentID)
	if !reflect.DeepEqual(got, proposed) {
		t.Fatalf("no-op apply changed authoritative set: %+v", got)
	}
}

func TestApplyWithoutPendingIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	studentID := uuid.New()

	authoritative := sampleSet(studentID, types.SourceFallback, "A")
	if err := store.Set(ctx, studentID, authoritative); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if _, err := store.ApplyPendingUpdate(ctx, studentID); !errors.Is(err, ErrNoPendingUpdate) {
		t.Fatalf("err=%v, want ErrNoPendingUpdate", err)
	}

	got, err := store.Get(ctx, studentID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(got, authoritative) {
		t.Fatalf("authoritative set changed by no-op apply: %+v", got)
	}
}

func TestProposalsReplaceEachOther(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	studentID := uuid.New()

	_ = store.ProposeUpdate(ctx, studentID, sampleSet(studentID, types.SourceProposed, "OLD"))
	newer := sampleSet(studentID, types.SourceProposed, "NEW")
	_ = store.ProposeUpdate(ctx, studentID, newer)

	applied, err := store.ApplyPendingUpdate(ctx, studentID)
	if err != nil {
		t.Fatalf("ApplyPendingUpdate: %v", err)
	}
	if !reflect.DeepEqual(applied, newer) {
		t.Fatalf("applied=%+v, want latest proposal %+v", applied, newer)
	}
}

func TestStoresAreIndependentPerStudent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	alice, bob := uuid.New(), uuid.New()

	_ = store.Set(ctx, alice, sampleSet(alice, types.SourceOracle, "A"))

	loaded, _ := store.IsLoaded(ctx, bob)
	if loaded {
		t.Fatal("bob must not see alice's recommendation set")
	}
}
