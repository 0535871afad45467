package comms

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/educator-assistant-backend/internal/domain"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
)

type NotificationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, n *types.Notification) (*types.Notification, error)
	List(ctx context.Context, tx *gorm.DB, educatorID uuid.UUID, unreadOnly bool) ([]*types.Notification, error)
	MarkRead(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID, at time.Time) (bool, error)
}

type notificationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNotificationRepo(db *gorm.DB, baseLog *logger.Logger) NotificationRepo {
	return &notificationRepo{db: db, log: baseLog.With("repo", "NotificationRepo")}
}

func (nr *notificationRepo) Create(ctx context.Context, tx *gorm.DB, n *types.Notification) (*types.Notification, error) {
	transaction := tx
	if transaction == nil {
		transaction = nr.db
	}
	if err := transaction.WithContext(ctx).Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

func (nr *notificationRepo) List(ctx context.Context, tx *gorm.DB, educatorID uuid.UUID, unreadOnly bool) ([]*types.Notification, error) {
	transaction := tx
	if transaction == nil {
		transaction = nr.db
	}
	q := transaction.WithContext(ctx).Where("educator_id = ?", educatorID)
	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}
	var rows []*types.Notification
	if err := q.Order("created_at DESC").Limit(200).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (nr *notificationRepo) MarkRead(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID, at time.Time) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = nr.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.Notification{}).
		Where("id = ? AND educator_id = ?", id, educatorID).
		Update("read_at", at.UTC())
	return res.RowsAffected > 0, res.Error
}
