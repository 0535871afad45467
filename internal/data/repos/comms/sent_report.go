package comms

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/educator-assistant-backend/internal/domain"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
)

type SentReportRepo interface {
	Create(ctx context.Context, tx *gorm.DB, r *types.SentReport) (*types.SentReport, error)
	List(ctx context.Context, tx *gorm.DB, educatorID uuid.UUID, studentID *uuid.UUID) ([]*types.SentReport, error)
}

type sentReportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSentReportRepo(db *gorm.DB, baseLog *logger.Logger) SentReportRepo {
	return &sentReportRepo{db: db, log: baseLog.With("repo", "SentReportRepo")}
}

func (rr *sentReportRepo) Create(ctx context.Context, tx *gorm.DB, r *types.SentReport) (*types.SentReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	if err := transaction.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

func (rr *sentReportRepo) List(ctx context.Context, tx *gorm.DB, educatorID uuid.UUID, studentID *uuid.UUID) ([]*types.SentReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	q := transaction.WithContext(ctx).Where("educator_id = ?", educatorID)
	if studentID != nil {
		q = q.Where("student_id = ?", *studentID)
	}
	var rows []*types.SentReport
	if err := q.Order("sent_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
