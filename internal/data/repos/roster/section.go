package roster

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/educator-assistant-backend/internal/domain"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
)

type SectionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, s *types.Section) (*types.Section, error)
	GetByID(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID) (*types.Section, error)
	FindByName(ctx context.Context, tx *gorm.DB, educatorID uuid.UUID, name string) (*types.Section, error)
	ListByEducator(ctx context.Context, tx *gorm.DB, educatorID uuid.UUID) ([]*types.Section, error)
	Update(ctx context.Context, tx *gorm.DB, s *types.Section) error
	Delete(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID) (bool, error)
}

type sectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSectionRepo(db *gorm.DB, baseLog *logger.Logger) SectionRepo {
	return &sectionRepo{db: db, log: baseLog.With("repo", "SectionRepo")}
}

func (sr *sectionRepo) Create(ctx context.Context, tx *gorm.DB, s *types.Section) (*types.Section, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if err := transaction.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

func (sr *sectionRepo) GetByID(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID) (*types.Section, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var rows []*types.Section
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

// FindByName matches case-insensitively.
func (sr *sectionRepo) FindByName(ctx context.Context, tx *gorm.DB, educatorID uuid.UUID, name string) (*types.Section, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var rows []*types.Section
	if err := transaction.WithContext(ctx).
		Where("educator_id = ? AND LOWER(name) = LOWER(?)", educatorID, name).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (sr *sectionRepo) ListByEducator(ctx context.Context, tx *gorm.DB, educatorID uuid.UUID) ([]*types.Section, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var rows []*types.Section
	if err := transaction.WithContext(ctx).
		Where("educator_id = ?", educatorID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (sr *sectionRepo) Update(ctx context.Context, tx *gorm.DB, s *types.Section) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Section{}).
		Where("id = ? AND educator_id = ?", s.ID, s.EducatorID).
		Updates(map[string]any{
			"name":          s.Name,
			"grade_level":   s.GradeLevel,
			"academic_year": s.AcademicYear,
		}).Error
}

func (sr *sectionRepo) Delete(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	res := transaction.WithContext(ctx).
		Where("id = ? AND educator_id = ?", id, educatorID).
		Delete(&types.Section{})
	return res.RowsAffected > 0, res.Error
}
