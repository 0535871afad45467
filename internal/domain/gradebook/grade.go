package gradebook

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AtRiskThreshold is the average percentage below which a student is flagged.
const AtRiskThreshold = 60.0

type Grade struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID  `gorm:"type:uuid;not null;index" json:"student_id"`
	SubjectID *uuid.UUID `gorm:"type:uuid;index" json:"subject_id,omitempty"`
	Title     string     `gorm:"not null;column:title" json:"title"`
	Category  string     `gorm:"column:category" json:"category"`
	Score     float64    `gorm:"not null;column:score" json:"score"`
	MaxScore  float64    `gorm:"not null;column:max_score" json:"max_score"`
	GradedAt  time.Time  `gorm:"not null;column:graded_at;index" json:"graded_at"`
	Comment   string     `gorm:"column:comment" json:"comment"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Grade) TableName() string { return "grade" }

func (g *Grade) BeforeCreate(tx *gorm.DB) error {
	ensureID(&g.ID)
	if g.GradedAt.IsZero() {
		g.GradedAt = time.Now().UTC()
	}
	return nil
}

// Percentage is 0 when MaxScore is not positive.
func (g *Grade) Percentage() float64 {
	if g.MaxScore <= 0 {
		return 0
	}
	return g.Score / g.MaxScore * 100
}

func (g *Grade) Letter() string { return LetterFor(g.Percentage()) }

func LetterFor(pct float64) string {
	switch {
	case pct >= 90:
		return "A"
	case pct >= 80:
		return "B"
	case pct >= 70:
		return "C"
	case pct >= 60:
		return "D"
	default:
		return "F"
	}
}
