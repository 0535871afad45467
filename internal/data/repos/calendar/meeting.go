package calendar

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/educator-assistant-backend/internal/domain"
	"github.com/yungbote/educator-assistant-backend/internal/domain/calendar"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
)

type MeetingRepo interface {
	Create(ctx context.Context, tx *gorm.DB, m *types.Meeting) (*types.Meeting, error)
	GetByID(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID) (*types.Meeting, error)
	List(ctx context.Context, tx *gorm.DB, educatorID uuid.UUID, after *time.Time) ([]*types.Meeting, error)
	// ListActiveBetween returns scheduled meetings starting in [from, to).
	ListActiveBetween(ctx context.Context, tx *gorm.DB, educatorID uuid.UUID, from, to time.Time) ([]*types.Meeting, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID, status string) error
}

type meetingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMeetingRepo(db *gorm.DB, baseLog *logger.Logger) MeetingRepo {
	return &meetingRepo{db: db, log: baseLog.With("repo", "MeetingRepo")}
}

func (mr *meetingRepo) Create(ctx context.Context, tx *gorm.DB, m *types.Meeting) (*types.Meeting, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	m.StartsAt = m.StartsAt.UTC()
	if err := transaction.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

func (mr *meetingRepo) GetByID(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID) (*types.Meeting, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var rows []*types.Meeting
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

func (mr *meetingRepo) List(ctx context.Context, tx *gorm.DB, educatorID uuid.UUID, after *time.Time) ([]*types.Meeting, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	q := transaction.WithContext(ctx).Where("educator_id = ?", educatorID)
	if after != nil {
		q = q.Where("starts_at >= ? AND status = ?", after.UTC(), calendar.MeetingScheduled)
	}
	var rows []*types.Meeting
	if err := q.Order("starts_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (mr *meetingRepo) ListActiveBetween(ctx context.Context, tx *gorm.DB, educatorID uuid.UUID, from, to time.Time) ([]*types.Meeting, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var rows []*types.Meeting
	if err := transaction.WithContext(ctx).
		Where("educator_id = ? AND status = ? AND starts_at >= ? AND starts_at < ?",
			educatorID, calendar.MeetingScheduled, from.UTC(), to.UTC()).
		Order("starts_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (mr *meetingRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID, status string) error {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Meeting{}).
		Where("id = ? AND educator_id = ?", id, educatorID).
		Update("status", status).Error
}
