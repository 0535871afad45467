package educator

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/educator-assistant-backend/internal/domain"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
)

type EducatorRepo interface {
	Create(ctx context.Context, tx *gorm.DB, e *types.Educator) (*types.Educator, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Educator, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Educator, error)
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	UpdateAssistantMode(ctx context.Context, tx *gorm.DB, id uuid.UUID, mode string) error
}

type educatorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEducatorRepo(db *gorm.DB, baseLog *logger.Logger) EducatorRepo {
	return &educatorRepo{db: db, log: baseLog.With("repo", "EducatorRepo")}
}

func (er *educatorRepo) Create(ctx context.Context, tx *gorm.DB, e *types.Educator) (*types.Educator, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	e.Email = strings.ToLower(strings.TrimSpace(e.Email))
	if err := transaction.WithContext(ctx).Create(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

func (er *educatorRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Educator, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var rows []*types.Educator
	if err := transaction.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (er *educatorRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Educator, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var rows []*types.Educator
	if err := transaction.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (er *educatorRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Educator{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (er *educatorRepo) UpdateAssistantMode(ctx context.Context, tx *gorm.DB, id uuid.UUID, mode string) error {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Educator{}).
		Where("id = ?", id).
		Update("assistant_mode", mode).Error
}
