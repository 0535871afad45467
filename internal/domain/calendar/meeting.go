package calendar

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MeetingScheduled = "scheduled"
	MeetingCancelled = "cancelled"
	MeetingCompleted = "completed"

	DefaultMeetingMinutes = 30
)

type Meeting struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EducatorID      uuid.UUID `gorm:"type:uuid;not null;index" json:"educator_id"`
	StudentID       uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	Title           string    `gorm:"not null;column:title" json:"title"`
	StartsAt        time.Time `gorm:"not null;column:starts_at;index" json:"starts_at"`
	DurationMinutes int       `gorm:"not null;column:duration_minutes" json:"duration_minutes"`
	Location        string    `gorm:"column:location" json:"location"`
	Notes           string    `gorm:"column:notes" json:"notes"`
	Status          string    `gorm:"not null;default:'scheduled';column:status;index" json:"status"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Meeting) TableName() string { return "meeting" }

func (m *Meeting) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	if m.Status == "" {
		m.Status = MeetingScheduled
	}
	if m.DurationMinutes <= 0 {
		m.DurationMinutes = DefaultMeetingMinutes
	}
	return nil
}

func (m *Meeting) EndsAt() time.Time {
	return m.StartsAt.Add(time.Duration(m.DurationMinutes) * time.Minute)
}

// Overlaps reports whether [start, end) intersects this meeting.
func (m *Meeting) Overlaps(start, end time.Time) bool {
	return start.Before(m.EndsAt()) && m.StartsAt.Before(end)
}
