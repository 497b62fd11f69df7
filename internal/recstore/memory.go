package recstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/campusworks/advisor-backend/internal/types"
)

// memoryStore is a process-local Store used for tests and for
// STATE_STORE=memory deployments. Values round-trip through JSON so
// the behavior matches the Redis store byte for byte.
type memoryStore struct {
	mu            sync.Mutex
	authoritative map[uuid.UUID][]byte
	pending       map[uuid.UUID][]byte
}

func NewMemoryStore() Store {
	return &memoryStore{
		authoritative: make(map[uuid.UUID][]byte),
		pending:       make(map[uuid.UUID][]byte),
	}
}

func (s *memoryStore) Get(ctx context.Context, studentID uuid.UUID) (*types.RecommendationSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.authoritative[studentID]
	if !ok {
		return nil, nil
	}
	var set types.RecommendationSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("decode recommendation set: %w", err)
	}
	return &set, nil
}

func (s *memoryStore) Set(ctx context.Context, studentID uuid.UUID, set *types.RecommendationSet) error {
	raw, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("encode recommendation set: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authoritative[studentID] = raw
	return nil
}

func (s *memoryStore) ProposeUpdate(ctx context.Context, studentID uuid.UUID, set *types.RecommendationSet) error {
	raw, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("encode pending update: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[studentID] = raw
	return nil
}

func (s *memoryStore) ApplyPendingUpdate(ctx context.Context, studentID uuid.UUID) (*types.RecommendationSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.pending[studentID]
	if !ok {
		return nil, ErrNoPendingUpdate
	}
	var set types.RecommendationSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("decode pending update: %w", err)
	}
	s.authoritative[studentID] = raw
	delete(s.pending, studentID)
	return &set, nil
}

func (s *memoryStore) IsLoaded(ctx context.Context, studentID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.authoritative[studentID]
	return ok, nil
}
