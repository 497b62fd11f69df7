// Package recstore holds the authoritative recommendation set per
// student, plus at most one pending proposed update. Every transition
// replaces the whole set; there is no partial merge.
package recstore

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/campusworks/advisor-backend/internal/types"
)

// ErrNoPendingUpdate is returned by ApplyPendingUpdate when nothing
// is pending. Callers treat it as a benign no-op.
var ErrNoPendingUpdate = errors.New("no pending update")

// Store is the recommendation state store. Get returns (nil, nil)
// when nothing has been computed yet; IsLoaded distinguishes "never
// computed" from "computed but empty" so views can skip redundant
// refreshes.
type Store interface {
	Get(ctx context.Context, studentID uuid.UUID) (*types.RecommendationSet, error)
	Set(ctx context.Context, studentID uuid.UUID, set *types.RecommendationSet) error
	ProposeUpdate(ctx context.Context, studentID uuid.UUID, set *types.RecommendationSet) error
	ApplyPendingUpdate(ctx context.Context, studentID uuid.UUID) (*types.RecommendationSet, error)
	IsLoaded(ctx context.Context, studentID uuid.UUID) (bool, error)
}
