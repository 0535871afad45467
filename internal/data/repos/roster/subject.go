package roster

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/educator-assistant-backend/internal/domain"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
)

type SubjectRepo interface {
	Create(ctx context.Context, tx *gorm.DB, s *types.Subject) (*types.Subject, error)
	GetByID(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID) (*types.Subject, error)
	ListByEducator(ctx context.Context, tx *gorm.DB, educatorID uuid.UUID) ([]*types.Subject, error)
	Delete(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID) (bool, error)
}

type subjectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubjectRepo(db *gorm.DB, baseLog *logger.Logger) SubjectRepo {
	return &subjectRepo{db: db, log: baseLog.With("repo", "SubjectRepo")}
}

func (sr *subjectRepo) Create(ctx context.Context, tx *gorm.DB, s *types.Subject) (*types.Subject, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if err := transaction.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

func (sr *subjectRepo) GetByID(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID) (*types.Subject, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var rows []*types.Subject
	if err := transaction.WithContext(ctx).
		Where("id = ? AND educator_id = ?", id, educatorID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (sr *subjectRepo) ListByEducator(ctx context.Context, tx *gorm.DB, educatorID uuid.UUID) ([]*types.Subject, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var rows []*types.Subject
	if err := transaction.WithContext(ctx).
		Where("educator_id = ?", educatorID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (sr *subjectRepo) Delete(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	res := transaction.WithContext(ctx).
		Where("id = ? AND educator_id = ?", id, educatorID).
		Delete(&types.Subject{})
	return res.RowsAffected > 0, res.Error
}
