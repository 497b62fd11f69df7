package recstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/campusworks/advisor-backend/internal/logger"
	"github.com/campusworks/advisor-backend/internal/types"
)

type redisStore struct {
	log *logger.Logger
	rdb *goredis.Client
}

// NewRedisStore connects to REDIS_ADDR and persists sets as JSON under
// per-student keys. Values carry no TTL; the set survives restarts and
// is only replaced by an explicit refresh or apply.
func NewRedisStore(log *logger.Logger) (Store, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisStore{
		log: log.With("service", "RecommendationStore"),
		rdb: rdb,
	}, nil
}

func authoritativeKey(studentID uuid.UUID) string { return "rec:" + studentID.String() }
func pendingKey(studentID uuid.UUID) string       { return "rec:pending:" + studentID.String() }

func (s *redisStore) Get(ctx context.Context, studentID uuid.UUID) (*types.RecommendationSet, error) {
	raw, err := s.rdb.Get(ctx, authoritativeKey(studentID)).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recommendation set: %w", err)
	}
	var set types.RecommendationSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("decode recommendation set: %w", err)
	}
	return &set, nil
}

func (s *redisStore) Set(ctx context.Context, studentID uuid.UUID, set *types.RecommendationSet) error {
	raw, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("encode recommendation set: %w", err)
	}
	if err := s.rdb.Set(ctx, authoritativeKey(studentID), raw, 0).Err(); err != nil {
		return fmt.Errorf("store recommendation set: %w", err)
	}
	return nil
}

func (s *redisStore) ProposeUpdate(ctx context.Context, studentID uuid.UUID, set *types.RecommendationSet) error {
	raw, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("encode pending update: %w", err)
	}
	if err := s.rdb.Set(ctx, pendingKey(studentID), raw, 0).Err(); err != nil {
		return fmt.Errorf("store pending update: %w", err)
	}
	return nil
}

func (s *redisStore) ApplyPendingUpdate(ctx context.Context, studentID uuid.UUID) (*types.RecommendationSet, error) {
	raw, err := s.rdb.Get(ctx, pendingKey(studentID)).Bytes()
	if err == goredis.Nil {
		return nil, ErrNoPendingUpdate
	}
	if err != nil {
		return nil, fmt.Errorf("get pending update: %w", err)
	}
	var set types.RecommendationSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("decode pending update: %w", err)
	}

	// Promote and clear in one transaction so readers never observe a
	// half-applied state.
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, authoritativeKey(studentID), raw, 0)
	pipe.Del(ctx, pendingKey(studentID))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("apply pending update: %w", err)
	}

	s.log.Info("Applied pending recommendation update", "student_id", studentID)
	return &set, nil
}

func (s *redisStore) IsLoaded(ctx context.Context, studentID uuid.UUID) (bool, error) {
	n, err := s.rdb.Exists(ctx, authoritativeKey(studentID)).Result()
	if err != nil {
		return false, fmt.Errorf("check recommendation set: %w", err)
	}
	return n > 0, nil
}
