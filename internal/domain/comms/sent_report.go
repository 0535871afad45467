package comms

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const ReportPerformance = "performance"

type SentReport struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EducatorID     uuid.UUID `gorm:"type:uuid;not null;index" json:"educator_id"`
	StudentID      uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	Kind           string    `gorm:"not null;column:kind" json:"kind"`
	RecipientEmail string    `gorm:"column:recipient_email" json:"recipient_email"`
	Summary        string    `gorm:"type:text;column:summary" json:"summary"`
	Status         string    `gorm:"not null;column:status" json:"status"`
	SentAt         time.Time `gorm:"not null;column:sent_at;index" json:"sent_at"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (SentReport) TableName() string { return "sent_report" }

func (r *SentReport) BeforeCreate(tx *gorm.DB) error {
	ensureID(&r.ID)
	if r.SentAt.IsZero() {
		r.SentAt = time.Now().UTC()
	}
	return nil
}
