package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/educator-assistant-backend/internal/data/repos"
	types "github.com/yungbote/educator-assistant-backend/internal/domain"
	"github.com/yungbote/educator-assistant-backend/internal/domain/calendar"
	"github.com/yungbote/educator-assistant-backend/internal/domain/comms"
	"github.com/yungbote/educator-assistant-backend/internal/platform/apierr"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
	"github.com/yungbote/educator-assistant-backend/internal/platform/validate"
)

// maxMeetingMinutes bounds how far back the overlap scan looks.
const maxMeetingMinutes = 8 * 60

type MeetingInput struct {
	StudentID       uuid.UUID `json:"student_id" validate:"required"`
	Title           string    `json:"title" validate:"max=160"`
	StartsAt        time.Time `json:"starts_at" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"gte=0,lte=480"`
	Location        string    `json:"location" validate:"max=160"`
	Notes           string    `json:"notes" validate:"max=2000"`
}

type MeetingService interface {
	Schedule(ctx context.Context, in MeetingInput) (*types.Meeting, error)
	List(ctx context.Context, upcomingOnly bool) ([]*types.Meeting, error)
	Cancel(ctx context.Context, id uuid.UUID) (*types.Meeting, error)
}

type meetingService struct {
	db            *gorm.DB
	log           *logger.Logger
	meetingRepo   repos.MeetingRepo
	studentRepo   repos.StudentRepo
	notifications NotificationService
}

func NewMeetingService(
	db *gorm.DB,
	log *logger.Logger,
	meetingRepo repos.MeetingRepo,
	studentRepo repos.StudentRepo,
	notifications NotificationService,
) MeetingService {
	return &meetingService{
		db:            db,
		log:           log.With("service", "MeetingService"),
		meetingRepo:   meetingRepo,
		studentRepo:   studentRepo,
		notifications: notifications,
	}
}

func (ms *meetingService) Schedule(ctx context.Context, in MeetingInput) (*types.Meeting, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if in.DurationMinutes == 0 {
		in.DurationMinutes = calendar.DefaultMeetingMinutes
	}
	start := in.StartsAt.UTC()
	if start.Before(time.Now().UTC()) {
		return nil, apierr.BadRequest("meeting_in_past", errors.New("meeting time is in the past"))
	}
	st, err := ms.studentRepo.GetByID(ctx, nil, educatorID, in.StudentID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if st == nil {
		return nil, apierr.NotFound("student")
	}

	end := start.Add(time.Duration(in.DurationMinutes) * time.Minute)
	nearby, err := ms.meetingRepo.ListActiveBetween(ctx, nil, educatorID, start.Add(-maxMeetingMinutes*time.Minute), end)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	for _, m := range nearby {
		if m.Overlaps(start, end) {
			return nil, apierr.Conflict("meeting_conflict",
				fmt.Errorf("overlaps %q at %s", m.Title, m.StartsAt.UTC().Format(time.RFC3339)))
		}
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = "Meeting with " + st.FullName()
	}
	m, err := ms.meetingRepo.Create(ctx, nil, &types.Meeting{
		EducatorID:      educatorID,
		StudentID:       st.ID,
		Title:           title,
		StartsAt:        start,
		DurationMinutes: in.DurationMinutes,
		Location:        strings.TrimSpace(in.Location),
		Notes:           strings.TrimSpace(in.Notes),
	})
	if err != nil {
		return nil, apierr.Internal(err)
	}
	notify(ctx, ms.log, ms.notifications, comms.NotificationMeetingScheduled, title,
		start.Format("Mon Jan 2 15:04 MST"))
	return m, nil
}

func (ms *meetingService) List(ctx context.Context, upcomingOnly bool) ([]*types.Meeting, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	var after *time.Time
	if upcomingOnly {
		now := time.Now().UTC()
		after = &now
	}
	rows, err := ms.meetingRepo.List(ctx, nil, educatorID, after)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return rows, nil
}

func (ms *meetingService) Cancel(ctx context.Context, id uuid.UUID) (*types.Meeting, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	m, err := ms.meetingRepo.GetByID(ctx, nil, educatorID, id)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if m == nil {
		return nil, apierr.NotFound("meeting")
	}
	if m.Status == calendar.MeetingCancelled {
		return m, nil
	}
	if err := ms.meetingRepo.UpdateStatus(ctx, nil, educatorID, id, calendar.MeetingCancelled); err != nil {
		return nil, apierr.Internal(err)
	}
	m.Status = calendar.MeetingCancelled
	notify(ctx, ms.log, ms.notifications, comms.NotificationMeetingCancelled, m.Title, "Cancelled")
	return m, nil
}
