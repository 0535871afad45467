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

type ScheduleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, s *types.Schedule) (*types.Schedule, error)
	GetByID(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID) (*types.Schedule, error)
	// ListRange returns one-off entries starting in [from, to) plus every weekly
	// entry whose first occurrence is before to.
	ListRange(ctx context.Context, tx *gorm.DB, educatorID uuid.UUID, from, to time.Time) ([]*types.Schedule, error)
	Update(ctx context.Context, tx *gorm.DB, s *types.Schedule) error
	Delete(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID) (bool, error)
}

type scheduleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScheduleRepo(db *gorm.DB, baseLog *logger.Logger) ScheduleRepo {
	return &scheduleRepo{db: db, log: baseLog.With("repo", "ScheduleRepo")}
}

func (sr *scheduleRepo) Create(ctx context.Context, tx *gorm.DB, s *types.Schedule) (*types.Schedule, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	s.StartsAt, s.EndsAt = s.StartsAt.UTC(), s.EndsAt.UTC()
	if err := transaction.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

func (sr *scheduleRepo) GetByID(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID) (*types.Schedule, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var rows []*types.Schedule
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

func (sr *scheduleRepo) ListRange(ctx context.Context, tx *gorm.DB, educatorID uuid.UUID, from, to time.Time) ([]*types.Schedule, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var rows []*types.Schedule
	if err := transaction.WithContext(ctx).
		Where("educator_id = ?", educatorID).
		Where(
			"(recurrence = ? AND starts_at >= ? AND starts_at < ?) OR (recurrence = ? AND starts_at < ?)",
			calendar.RecurrenceNone, from.UTC(), to.UTC(),
			calendar.RecurrenceWeekly, to.UTC(),
		).
		Order("starts_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (sr *scheduleRepo) Update(ctx context.Context, tx *gorm.DB, s *types.Schedule) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Schedule{}).
		Where("id = ? AND educator_id = ?", s.ID, s.EducatorID).
		Updates(map[string]any{
			"section_id": s.SectionID,
			"subject_id": s.SubjectID,
			"title":      s.Title,
			"location":   s.Location,
			"starts_at":  s.StartsAt.UTC(),
			"ends_at":    s.EndsAt.UTC(),
			"recurrence": s.Recurrence,
		}).Error
}

func (sr *scheduleRepo) Delete(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	res := transaction.WithContext(ctx).
		Where("id = ? AND educator_id = ?", id, educatorID).
		Delete(&types.Schedule{})
	return res.RowsAffected > 0, res.Error
}
