package comms

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/educator-assistant-backend/internal/domain"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
)

type MessageFilter struct {
	StudentID       *uuid.UUID
	CommunicationID *uuid.UUID
	Limit           int
}

type MessageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, msgs []*types.Message) ([]*types.Message, error)
	GetByID(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID) (*types.Message, error)
	List(ctx context.Context, tx *gorm.DB, educatorID uuid.UUID, f MessageFilter) ([]*types.Message, error)
	UpdateDelivery(ctx context.Context, tx *gorm.DB, id uuid.UUID, status, errMsg string, sentAt *time.Time) error
	MarkRead(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID, at time.Time) (bool, error)
}

type messageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
	return &messageRepo{db: db, log: baseLog.With("repo", "MessageRepo")}
}

func (mr *messageRepo) Create(ctx context.Context, tx *gorm.DB, msgs []*types.Message) ([]*types.Message, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	if len(msgs) == 0 {
		return []*types.Message{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (mr *messageRepo) GetByID(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID) (*types.Message, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var rows []*types.Message
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

// List returns newest first.
func (mr *messageRepo) List(ctx context.Context, tx *gorm.DB, educatorID uuid.UUID, f MessageFilter) ([]*types.Message, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	q := transaction.WithContext(ctx).Where("educator_id = ?", educatorID)
	if f.StudentID != nil {
		q = q.Where("student_id = ?", *f.StudentID)
	}
	if f.CommunicationID != nil {
		q = q.Where("communication_id = ?", *f.CommunicationID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var rows []*types.Message
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (mr *messageRepo) UpdateDelivery(ctx context.Context, tx *gorm.DB, id uuid.UUID, status, errMsg string, sentAt *time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Message{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":  status,
			"error":   errMsg,
			"sent_at": sentAt,
		}).Error
}

func (mr *messageRepo) MarkRead(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID, at time.Time) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.Message{}).
		Where("id = ? AND educator_id = ?", id, educatorID).
		Update("read_at", at.UTC())
	return res.RowsAffected > 0, res.Error
}
