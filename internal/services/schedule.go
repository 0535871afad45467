package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/educator-assistant-backend/internal/data/repos"
	types "github.com/yungbote/educator-assistant-backend/internal/domain"
	"github.com/yungbote/educator-assistant-backend/internal/domain/calendar"
	"github.com/yungbote/educator-assistant-backend/internal/platform/apierr"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
	"github.com/yungbote/educator-assistant-backend/internal/platform/validate"
)

const maxScheduleRangeDays = 62

type ScheduleInput struct {
	SectionID  *uuid.UUID `json:"section_id"`
	SubjectID  *uuid.UUID `json:"subject_id"`
	Title      string     `json:"title" validate:"required,max=160"`
	Location   string     `json:"location" validate:"max=160"`
	StartsAt   time.Time  `json:"starts_at" validate:"required"`
	EndsAt     time.Time  `json:"ends_at" validate:"required"`
	Recurrence string     `json:"recurrence" validate:"omitempty,oneof=none weekly"`
}

// Occurrence is one concrete calendar slot produced from a Schedule entry.
type Occurrence struct {
	ScheduleID uuid.UUID  `json:"schedule_id"`
	Title      string     `json:"title"`
	Location   string     `json:"location,omitempty"`
	SectionID  *uuid.UUID `json:"section_id,omitempty"`
	SubjectID  *uuid.UUID `json:"subject_id,omitempty"`
	StartsAt   time.Time  `json:"starts_at"`
	EndsAt     time.Time  `json:"ends_at"`
	Recurring  bool       `json:"recurring"`
}

type ScheduleService interface {
	Create(ctx context.Context, in ScheduleInput) (*types.Schedule, error)
	Update(ctx context.Context, id uuid.UUID, in ScheduleInput) (*types.Schedule, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListRange(ctx context.Context, from, to time.Time) ([]Occurrence, error)
	ForDay(ctx context.Context, day time.Time) ([]Occurrence, error)
}

type scheduleService struct {
	db           *gorm.DB
	log          *logger.Logger
	scheduleRepo repos.ScheduleRepo
}

func NewScheduleService(db *gorm.DB, log *logger.Logger, scheduleRepo repos.ScheduleRepo) ScheduleService {
	return &scheduleService{db: db, log: log.With("service", "ScheduleService"), scheduleRepo: scheduleRepo}
}

func (ss *scheduleService) checkInput(in *ScheduleInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Location = strings.TrimSpace(in.Location)
	if in.Recurrence == "" {
		in.Recurrence = calendar.RecurrenceNone
	}
	if err := validate.Struct(in); err != nil {
		return err
	}
	if !in.EndsAt.After(in.StartsAt) {
		return apierr.BadRequest("invalid_time_range", errors.New("ends_at must be after starts_at"))
	}
	return nil
}

func (ss *scheduleService) Create(ctx context.Context, in ScheduleInput) (*types.Schedule, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := ss.checkInput(&in); err != nil {
		return nil, err
	}
	s, err := ss.scheduleRepo.Create(ctx, nil, &types.Schedule{
		EducatorID: educatorID,
		SectionID:  in.SectionID,
		SubjectID:  in.SubjectID,
		Title:      in.Title,
		Location:   in.Location,
		StartsAt:   in.StartsAt,
		EndsAt:     in.EndsAt,
		Recurrence: in.Recurrence,
	})
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return s, nil
}

func (ss *scheduleService) Update(ctx context.Context, id uuid.UUID, in ScheduleInput) (*types.Schedule, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	s, err := ss.scheduleRepo.GetByID(ctx, nil, educatorID, id)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if s == nil {
		return nil, apierr.NotFound("schedule")
	}
	if err := ss.checkInput(&in); err != nil {
		return nil, err
	}
	s.SectionID, s.SubjectID = in.SectionID, in.SubjectID
	s.Title, s.Location = in.Title, in.Location
	s.StartsAt, s.EndsAt = in.StartsAt.UTC(), in.EndsAt.UTC()
	s.Recurrence = in.Recurrence
	if err := ss.scheduleRepo.Update(ctx, nil, s); err != nil {
		return nil, apierr.Internal(err)
	}
	return s, nil
}

func (ss *scheduleService) Delete(ctx context.Context, id uuid.UUID) error {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return err
	}
	ok, err := ss.scheduleRepo.Delete(ctx, nil, educatorID, id)
	if err != nil {
		return apierr.Internal(err)
	}
	if !ok {
		return apierr.NotFound("schedule")
	}
	return nil
}

// ListRange expands weekly entries into one occurrence per matching day in
// [from, to). Days are taken in from's location.
func (ss *scheduleService) ListRange(ctx context.Context, from, to time.Time) ([]Occurrence, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if !to.After(from) {
		return nil, apierr.BadRequest("invalid_time_range", errors.New("to must be after from"))
	}
	if to.Sub(from) > maxScheduleRangeDays*24*time.Hour {
		return nil, apierr.BadRequest("invalid_time_range", errors.New("range too large"))
	}
	entries, err := ss.scheduleRepo.ListRange(ctx, nil, educatorID, from, to)
	if err != nil {
		return nil, apierr.Internal(err)
	}

	loc := from.Location()
	out := []Occurrence{}
	y, m, d := from.Date()
	for day := time.Date(y, m, d, 0, 0, 0, 0, loc); day.Before(to); day = day.AddDate(0, 0, 1) {
		for _, e := range entries {
			start, end, ok := e.OccursOn(day)
			if !ok || start.Before(from) || !start.Before(to) {
				continue
			}
			out = append(out, Occurrence{
				ScheduleID: e.ID,
				Title:      e.Title,
				Location:   e.Location,
				SectionID:  e.SectionID,
				SubjectID:  e.SubjectID,
				StartsAt:   start,
				EndsAt:     end,
				Recurring:  e.Recurrence == calendar.RecurrenceWeekly,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (ss *scheduleService) ForDay(ctx context.Context, day time.Time) ([]Occurrence, error) {
	y, m, d := day.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	return ss.ListRange(ctx, start, start.AddDate(0, 0, 1))
}
