package assistant

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/educator-assistant-backend/internal/domain"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
)

type TurnRepo interface {
	Create(ctx context.Context, tx *gorm.DB, turns []*types.AssistantTurn) ([]*types.AssistantTurn, error)
	// ListRecent returns up to limit turns in chronological order.
	ListRecent(ctx context.Context, tx *gorm.DB, educatorID uuid.UUID, limit int) ([]*types.AssistantTurn, error)
}

type turnRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTurnRepo(db *gorm.DB, baseLog *logger.Logger) TurnRepo {
	return &turnRepo{db: db, log: baseLog.With("repo", "AssistantTurnRepo")}
}

func (tr *turnRepo) Create(ctx context.Context, tx *gorm.DB, turns []*types.AssistantTurn) ([]*types.AssistantTurn, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	if len(turns) == 0 {
		return []*types.AssistantTurn{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&turns).Error; err != nil {
		return nil, err
	}
	return turns, nil
}

func (tr *turnRepo) ListRecent(ctx context.Context, tx *gorm.DB, educatorID uuid.UUID, limit int) ([]*types.AssistantTurn, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	if limit <= 0 {
		limit = 50
	}
	var rows []*types.AssistantTurn
	if err := transaction.WithContext(ctx).
		Where("educator_id = ?", educatorID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}
