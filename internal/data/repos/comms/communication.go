package comms

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/educator-assistant-backend/internal/domain"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
)

type CommunicationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, c *types.Communication) (*types.Communication, error)
	GetByID(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID) (*types.Communication, error)
	List(ctx context.Context, tx *gorm.DB, educatorID uuid.UUID) ([]*types.Communication, error)
	UpdateCounts(ctx context.Context, tx *gorm.DB, c *types.Communication) error
}

type communicationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCommunicationRepo(db *gorm.DB, baseLog *logger.Logger) CommunicationRepo {
	return &communicationRepo{db: db, log: baseLog.With("repo", "CommunicationRepo")}
}

func (cr *communicationRepo) Create(ctx context.Context, tx *gorm.DB, c *types.Communication) (*types.Communication, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if err := transaction.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (cr *communicationRepo) GetByID(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID) (*types.Communication, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var rows []*types.Communication
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

func (cr *communicationRepo) List(ctx context.Context, tx *gorm.DB, educatorID uuid.UUID) ([]*types.Communication, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var rows []*types.Communication
	if err := transaction.WithContext(ctx).
		Where("educator_id = ?", educatorID).
		Order("created_at DESC").
		Limit(100).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (cr *communicationRepo) UpdateCounts(ctx context.Context, tx *gorm.DB, c *types.Communication) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Communication{}).
		Where("id = ?", c.ID).
		Updates(map[string]any{
			"recipient_count": c.RecipientCount,
			"sent_count":      c.SentCount,
			"failed_count":    c.FailedCount,
			"status":          c.Status,
		}).Error
}
