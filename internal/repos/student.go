package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusworks/advisor-backend/internal/logger"
	"github.com/campusworks/advisor-backend/internal/types"
)

type StudentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, students []*types.StudentProfile) ([]*types.StudentProfile, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, studentIDs []uuid.UUID) ([]*types.StudentProfile, error)
}

type studentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudentRepo(db *gorm.DB, baseLog *logger.Logger) StudentRepo {
	repoLog := baseLog.With("repo", "StudentRepo")
	return &studentRepo{db: db, log: repoLog}
}

func (sr *studentRepo) Create(ctx context.Context, tx *gorm.DB, students []*types.StudentProfile) ([]*types.StudentProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if len(students) == 0 {
		return []*types.StudentProfile{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (sr *studentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, studentIDs []uuid.UUID) ([]*types.StudentProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.StudentProfile
	if len(studentIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", studentIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
