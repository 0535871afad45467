package comms

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationMessageSent      = "message_sent"
	NotificationMeetingScheduled = "meeting_scheduled"
	NotificationMeetingCancelled = "meeting_cancelled"
	NotificationBulkSent         = "bulk_sent"
	NotificationReportSent       = "report_sent"
)

type Notification struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	EducatorID uuid.UUID  `gorm:"type:uuid;not null;index" json:"educator_id"`
	Kind       string     `gorm:"not null;column:kind" json:"kind"`
	Title      string     `gorm:"not null;column:title" json:"title"`
	Body       string     `gorm:"type:text;column:body" json:"body"`
	ReadAt     *time.Time `gorm:"column:read_at;index" json:"read_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Notification) TableName() string { return "notification" }

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	ensureID(&n.ID)
	return nil
}
