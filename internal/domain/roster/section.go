package roster

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Section is a class group taught by one educator.
type Section struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EducatorID   uuid.UUID `gorm:"type:uuid;not null;index" json:"educator_id"`
	Name         string    `gorm:"not null;column:name" json:"name"`
	GradeLevel   string    `gorm:"column:grade_level" json:"grade_level"`
	AcademicYear string    `gorm:"column:academic_year" json:"academic_year"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Section) TableName() string { return "section" }

func (s *Section) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

type Subject struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EducatorID uuid.UUID `gorm:"type:uuid;not null;index" json:"educator_id"`
	Name       string    `gorm:"not null;column:name" json:"name"`
	Code       string    `gorm:"column:code" json:"code"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Subject) TableName() string { return "subject" }

func (s *Subject) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
