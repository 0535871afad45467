package comms

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ChannelInApp = "in_app"
	ChannelEmail = "email"

	StatusSent    = "sent"
	StatusQueued  = "queued"
	StatusFailed  = "failed"
	StatusPartial = "partial"
	StatusPending = "pending"
)

func ValidChannel(c string) bool { return c == ChannelInApp || c == ChannelEmail }

type Message struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	EducatorID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"educator_id"`
	StudentID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"student_id"`
	CommunicationID *uuid.UUID `gorm:"type:uuid;index" json:"communication_id,omitempty"`
	Subject         string     `gorm:"column:subject" json:"subject"`
	Body            string     `gorm:"type:text;not null;column:body" json:"body"`
	Channel         string     `gorm:"not null;default:'in_app';column:channel" json:"channel"`
	Status          string     `gorm:"not null;default:'sent';column:status;index" json:"status"`
	Error           string     `gorm:"column:error" json:"error,omitempty"`
	SentAt          *time.Time `gorm:"column:sent_at" json:"sent_at,omitempty"`
	ReadAt          *time.Time `gorm:"column:read_at" json:"read_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Message) TableName() string { return "message" }

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	if m.Channel == "" {
		m.Channel = ChannelInApp
	}
	return nil
}
