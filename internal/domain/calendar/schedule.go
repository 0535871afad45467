package calendar

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RecurrenceNone   = "none"
	RecurrenceWeekly = "weekly"
)

type Schedule struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	EducatorID uuid.UUID  `gorm:"type:uuid;not null;index" json:"educator_id"`
	SectionID  *uuid.UUID `gorm:"type:uuid;index" json:"section_id,omitempty"`
	SubjectID  *uuid.UUID `gorm:"type:uuid;index" json:"subject_id,omitempty"`
	Title      string     `gorm:"not null;column:title" json:"title"`
	Location   string     `gorm:"column:location" json:"location"`
	StartsAt   time.Time  `gorm:"not null;column:starts_at;index" json:"starts_at"`
	EndsAt     time.Time  `gorm:"not null;column:ends_at" json:"ends_at"`
	Recurrence string     `gorm:"not null;default:'none';column:recurrence" json:"recurrence"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Schedule) TableName() string { return "schedule" }

func (s *Schedule) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	if s.Recurrence == "" {
		s.Recurrence = RecurrenceNone
	}
	return nil
}

// OccursOn reports whether the entry has an occurrence on the calendar day of
// day (in day's location) and returns that occurrence's start and end.
func (s *Schedule) OccursOn(day time.Time) (time.Time, time.Time, bool) {
	loc := day.Location()
	start := s.StartsAt.In(loc)
	dur := s.EndsAt.Sub(s.StartsAt)
	y, m, d := day.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, loc)
	firstDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)

	switch s.Recurrence {
	case RecurrenceWeekly:
		if dayStart.Before(firstDay) || start.Weekday() != day.Weekday() {
			return time.Time{}, time.Time{}, false
		}
		occ := time.Date(y, m, d, start.Hour(), start.Minute(), start.Second(), 0, loc)
		return occ, occ.Add(dur), true
	default:
		if !dayStart.Equal(firstDay) {
			return time.Time{}, time.Time{}, false
		}
		return start, start.Add(dur), true
	}
}
