package assistant

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one persisted line of the assistant conversation.
type Turn struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	EducatorID uuid.UUID      `gorm:"type:uuid;not null;index" json:"educator_id"`
	Role       string         `gorm:"not null;column:role" json:"role"`
	Content    string         `gorm:"type:text;not null;column:content" json:"content"`
	Intent     string         `gorm:"column:intent" json:"intent,omitempty"`
	Status     string         `gorm:"column:status" json:"status,omitempty"`
	Metadata   datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (Turn) TableName() string { return "assistant_turn" }

func (t *Turn) BeforeCreate(tx *gorm.DB) error {
	ensureID(&t.ID)
	return nil
}
