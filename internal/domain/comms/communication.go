package comms

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AudienceAll     = "all"
	AudienceSection = "section"
	AudienceAtRisk  = "at_risk"
)

func ValidAudience(a string) bool {
	switch a {
	case AudienceAll, AudienceSection, AudienceAtRisk:
		return true
	}
	return false
}

// Communication is one bulk send; its per-student deliveries are Messages.
type Communication struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	EducatorID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"educator_id"`
	Audience       string     `gorm:"not null;column:audience" json:"audience"`
	SectionID      *uuid.UUID `gorm:"type:uuid;index" json:"section_id,omitempty"`
	Subject        string     `gorm:"column:subject" json:"subject"`
	Body           string     `gorm:"type:text;not null;column:body" json:"body"`
	Channel        string     `gorm:"not null;column:channel" json:"channel"`
	RecipientCount int        `gorm:"not null;default:0;column:recipient_count" json:"recipient_count"`
	SentCount      int        `gorm:"not null;default:0;column:sent_count" json:"sent_count"`
	FailedCount    int        `gorm:"not null;default:0;column:failed_count" json:"failed_count"`
	Status         string     `gorm:"not null;default:'pending';column:status" json:"status"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Communication) TableName() string { return "communication" }

func (c *Communication) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	if c.Status == "" {
		c.Status = StatusPending
	}
	return nil
}

// Settle derives the terminal status from the delivery counts. Recipients
// never attempted count as failed.
func (c *Communication) Settle() {
	if unreached := c.RecipientCount - c.SentCount - c.FailedCount; unreached > 0 {
		c.FailedCount += unreached
	}
	switch {
	case c.RecipientCount == 0 || c.SentCount == 0:
		c.Status = StatusFailed
	case c.FailedCount == 0:
		c.Status = StatusSent
	default:
		c.Status = StatusPartial
	}
}
