package roster

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/educator-assistant-backend/internal/domain"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
)

type StudentFilter struct {
	SectionID *uuid.UUID
	Query     string
	Limit     int
	Offset    int
}

type StudentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, students []*types.Student) ([]*types.Student, error)
	GetByID(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID) (*types.Student, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, educatorID uuid.UUID, ids []uuid.UUID) ([]*types.Student, error)
	List(ctx context.Context, tx *gorm.DB, educatorID uuid.UUID, f StudentFilter) ([]*types.Student, error)
	Update(ctx context.Context, tx *gorm.DB, s *types.Student) error
	Delete(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID) (bool, error)
}

type studentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudentRepo(db *gorm.DB, baseLog *logger.Logger) StudentRepo {
	return &studentRepo{db: db, log: baseLog.With("repo", "StudentRepo")}
}

func (sr *studentRepo) Create(ctx context.Context, tx *gorm.DB, students []*types.Student) ([]*types.Student, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if len(students) == 0 {
		return []*types.Student{}, nil
	}
	if err := transaction.WithContext(ctx).Omit("Section").Create(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (sr *studentRepo) GetByID(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID) (*types.Student, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var rows []*types.Student
	if err := transaction.WithContext(ctx).
		Preload("Section").
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

func (sr *studentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, educatorID uuid.UUID, ids []uuid.UUID) ([]*types.Student, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var rows []*types.Student
	if len(ids) == 0 {
		return rows, nil
	}
	if err := transaction.WithContext(ctx).
		Where("educator_id = ? AND id IN ?", educatorID, ids).
		Order("last_name ASC, first_name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (sr *studentRepo) List(ctx context.Context, tx *gorm.DB, educatorID uuid.UUID, f StudentFilter) ([]*types.Student, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	q := transaction.WithContext(ctx).Where("educator_id = ?", educatorID)
	if f.SectionID != nil {
		q = q.Where("section_id = ?", *f.SectionID)
	}
	if s := strings.ToLower(strings.TrimSpace(f.Query)); s != "" {
		like := "%" + s + "%"
		q = q.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(first_name || ' ' || last_name) LIKE ? OR LOWER(email) LIKE ?",
			like, like, like, like,
		)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var rows []*types.Student
	if err := q.Order("last_name ASC, first_name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (sr *studentRepo) Update(ctx context.Context, tx *gorm.DB, s *types.Student) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Student{}).
		Where("id = ? AND educator_id = ?", s.ID, s.EducatorID).
		Updates(map[string]any{
			"section_id":     s.SectionID,
			"first_name":     s.FirstName,
			"last_name":      s.LastName,
			"email":          s.Email,
			"guardian_name":  s.GuardianName,
			"guardian_email": s.GuardianEmail,
			"student_number": s.StudentNumber,
		}).Error
}

func (sr *studentRepo) Delete(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	res := transaction.WithContext(ctx).
		Where("id = ? AND educator_id = ?", id, educatorID).
		Delete(&types.Student{})
	return res.RowsAffected > 0, res.Error
}
