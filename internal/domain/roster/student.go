package roster

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Student struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	EducatorID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"educator_id"`
	SectionID     *uuid.UUID `gorm:"type:uuid;index" json:"section_id,omitempty"`
	Section       *Section   `gorm:"constraint:OnDelete:SET NULL;foreignKey:SectionID" json:"section,omitempty"`
	FirstName     string     `gorm:"not null;column:first_name" json:"first_name"`
	LastName      string     `gorm:"not null;column:last_name" json:"last_name"`
	Email         string     `gorm:"column:email" json:"email"`
	GuardianName  string     `gorm:"column:guardian_name" json:"guardian_name"`
	GuardianEmail string     `gorm:"column:guardian_email" json:"guardian_email"`
	StudentNumber string     `gorm:"column:student_number;index" json:"student_number"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Student) TableName() string { return "student" }

func (s *Student) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

func (s *Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// ContactEmail prefers the guardian's address.
func (s *Student) ContactEmail() string {
	if e := strings.TrimSpace(s.GuardianEmail); e != "" {
		return e
	}
	return strings.TrimSpace(s.Email)
}
