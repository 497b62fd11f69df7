package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/campusworks/advisor-backend/internal/logger"
	"github.com/campusworks/advisor-backend/internal/types"
)

type EnrollmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, records []*types.EnrollmentRecord) ([]*types.EnrollmentRecord, error)
	// GetByCourseCodes fetches the full history for all requested
	// courses in one query so a refresh issues a single batched read.
	GetByCourseCodes(ctx context.Context, tx *gorm.DB, codes []string) ([]*types.EnrollmentRecord, error)
}

type enrollmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRepo {
	repoLog := baseLog.With("repo", "EnrollmentRepo")
	return &enrollmentRepo{db: db, log: repoLog}
}

func (er *enrollmentRepo) Create(ctx context.Context, tx *gorm.DB, records []*types.EnrollmentRecord) ([]*types.EnrollmentRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	if len(records) == 0 {
		return []*types.EnrollmentRecord{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (er *enrollmentRepo) GetByCourseCodes(ctx context.Context, tx *gorm.DB, codes []string) ([]*types.EnrollmentRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	var results []*types.EnrollmentRecord
	if len(codes) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("course_code IN ?", codes).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
