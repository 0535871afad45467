package educator

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ModeManual     = "manual"
	ModeAssist     = "assist"
	ModeAutonomous = "autonomous"
)

// ValidMode reports whether m is a known assistant mode.
func ValidMode(m string) bool {
	switch m {
	case ModeManual, ModeAssist, ModeAutonomous:
		return true
	}
	return false
}

type Educator struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email         string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password      string    `gorm:"not null;column:password" json:"-"`
	FirstName     string    `gorm:"not null;column:first_name" json:"first_name"`
	LastName      string    `gorm:"not null;column:last_name" json:"last_name"`
	School        string    `gorm:"not null;default:'';column:school;index" json:"school"`
	AssistantMode string    `gorm:"not null;default:'assist';column:assistant_mode" json:"assistant_mode"`

	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Educator) TableName() string { return "educator" }

func (e *Educator) BeforeCreate(tx *gorm.DB) error {
	ensureID(&e.ID)
	if e.AssistantMode == "" {
		e.AssistantMode = ModeAssist
	}
	return nil
}

func (e *Educator) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}
