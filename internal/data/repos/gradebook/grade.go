package gradebook

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/educator-assistant-backend/internal/domain"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
)

// GradeRepo scopes every read and write through the owning student's educator.
type GradeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, grades []*types.Grade) ([]*types.Grade, error)
	GetByID(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID) (*types.Grade, error)
	ListByStudent(ctx context.Context, tx *gorm.DB, educatorID, studentID uuid.UUID) ([]*types.Grade, error)
	ListByStudentIDs(ctx context.Context, tx *gorm.DB, educatorID uuid.UUID, studentIDs []uuid.UUID) ([]*types.Grade, error)
	Update(ctx context.Context, tx *gorm.DB, g *types.Grade) error
	Delete(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID) (bool, error)
}

type gradeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGradeRepo(db *gorm.DB, baseLog *logger.Logger) GradeRepo {
	return &gradeRepo{db: db, log: baseLog.With("repo", "GradeRepo")}
}

func ownedBy(q *gorm.DB, educatorID uuid.UUID) *gorm.DB {
	return q.Where("grade.student_id IN (?)",
		q.Session(&gorm.Session{NewDB: true}).
			Model(&types.Student{}).
			Select("id").
			Where("educator_id = ?", educatorID),
	)
}

func (gr *gradeRepo) Create(ctx context.Context, tx *gorm.DB, grades []*types.Grade) ([]*types.Grade, error) {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}
	if len(grades) == 0 {
		return []*types.Grade{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&grades).Error; err != nil {
		return nil, err
	}
	return grades, nil
}

func (gr *gradeRepo) GetByID(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID) (*types.Grade, error) {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}
	var rows []*types.Grade
	q := transaction.WithContext(ctx).Model(&types.Grade{}).Where("grade.id = ?", id)
	if err := ownedBy(q, educatorID).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (gr *gradeRepo) ListByStudent(ctx context.Context, tx *gorm.DB, educatorID, studentID uuid.UUID) ([]*types.Grade, error) {
	return gr.ListByStudentIDs(ctx, tx, educatorID, []uuid.UUID{studentID})
}

// ListByStudentIDs orders by graded_at ascending.
func (gr *gradeRepo) ListByStudentIDs(ctx context.Context, tx *gorm.DB, educatorID uuid.UUID, studentIDs []uuid.UUID) ([]*types.Grade, error) {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}
	var rows []*types.Grade
	if len(studentIDs) == 0 {
		return rows, nil
	}
	q := transaction.WithContext(ctx).Model(&types.Grade{}).Where("grade.student_id IN ?", studentIDs)
	if err := ownedBy(q, educatorID).Order("grade.graded_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (gr *gradeRepo) Update(ctx context.Context, tx *gorm.DB, g *types.Grade) error {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Grade{}).
		Where("id = ?", g.ID).
		Updates(map[string]any{
			"subject_id": g.SubjectID,
			"title":      g.Title,
			"category":   g.Category,
			"score":      g.Score,
			"max_score":  g.MaxScore,
			"graded_at":  g.GradedAt,
			"comment":    g.Comment,
		}).Error
}

func (gr *gradeRepo) Delete(ctx context.Context, tx *gorm.DB, educatorID, id uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = gr.db
	}
	q := transaction.WithContext(ctx).Where("grade.id = ?", id)
	res := ownedBy(q, educatorID).Delete(&types.Grade{})
	return res.RowsAffected > 0, res.Error
}
