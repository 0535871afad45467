package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/yungbote/educator-assistant-backend/internal/data/repos"
	types "github.com/yungbote/educator-assistant-backend/internal/domain"
	"github.com/yungbote/educator-assistant-backend/internal/domain/comms"
	"github.com/yungbote/educator-assistant-backend/internal/domain/gradebook"
	"github.com/yungbote/educator-assistant-backend/internal/observability"
	"github.com/yungbote/educator-assistant-backend/internal/platform/apierr"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
	"github.com/yungbote/educator-assistant-backend/internal/platform/validate"
)

type BulkInput struct {
	Audience  string     `json:"audience" validate:"required,oneof=all section at_risk"`
	SectionID *uuid.UUID `json:"section_id"`
	Subject   string     `json:"subject" validate:"max=200"`
	Body      string     `json:"body" validate:"required,max=5000"`
	Channel   string     `json:"channel" validate:"omitempty,oneof=in_app email"`
}

type BulkConfig struct {
	Concurrency   int
	RatePerSecond float64
}

type CommunicationService interface {
	SendBulk(ctx context.Context, in BulkInput) (*types.Communication, error)
	List(ctx context.Context) ([]*types.Communication, error)
}

type communicationService struct {
	db            *gorm.DB
	log           *logger.Logger
	commRepo      repos.CommunicationRepo
	studentRepo   repos.StudentRepo
	sectionRepo   repos.SectionRepo
	grades        GradeService
	messages      MessageService
	notifications NotificationService
	cfg           BulkConfig
}

func NewCommunicationService(
	db *gorm.DB,
	log *logger.Logger,
	commRepo repos.CommunicationRepo,
	studentRepo repos.StudentRepo,
	sectionRepo repos.SectionRepo,
	grades GradeService,
	messages MessageService,
	notifications NotificationService,
	cfg BulkConfig,
) CommunicationService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &communicationService{
		db:            db,
		log:           log.With("service", "CommunicationService"),
		commRepo:      commRepo,
		studentRepo:   studentRepo,
		sectionRepo:   sectionRepo,
		grades:        grades,
		messages:      messages,
		notifications: notifications,
		cfg:           cfg,
	}
}

func (cs *communicationService) recipients(ctx context.Context, educatorID uuid.UUID, in BulkInput) ([]*types.Student, error) {
	switch in.Audience {
	case comms.AudienceSection:
		if in.SectionID == nil {
			return nil, apierr.BadRequest("section_required", errors.New("section_id is required for section audience"))
		}
		sec, err := cs.sectionRepo.GetByID(ctx, nil, educatorID, *in.SectionID)
		if err != nil {
			return nil, apierr.Internal(err)
		}
		if sec == nil {
			return nil, apierr.NotFound("section")
		}
		rows, err := cs.studentRepo.List(ctx, nil, educatorID, repos.StudentFilter{SectionID: in.SectionID})
		if err != nil {
			return nil, apierr.Internal(err)
		}
		return rows, nil
	case comms.AudienceAtRisk:
		atRisk, err := cs.grades.AtRiskStudents(ctx, gradebook.AtRiskThreshold)
		if err != nil {
			return nil, err
		}
		rows := make([]*types.Student, 0, len(atRisk))
		for _, a := range atRisk {
			rows = append(rows, a.Student)
		}
		return rows, nil
	default:
		rows, err := cs.studentRepo.List(ctx, nil, educatorID, repos.StudentFilter{})
		if err != nil {
			return nil, apierr.Internal(err)
		}
		return rows, nil
	}
}

// SendBulk fans out one Message per recipient with bounded concurrency and an
// optional rate limit. Individual delivery failures are counted, not returned.
func (cs *communicationService) SendBulk(ctx context.Context, in BulkInput) (*types.Communication, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	in.Subject = strings.TrimSpace(in.Subject)
	in.Body = strings.TrimSpace(in.Body)
	if in.Channel == "" {
		in.Channel = comms.ChannelInApp
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	students, err := cs.recipients(ctx, educatorID, in)
	if err != nil {
		return nil, err
	}

	comm, err := cs.commRepo.Create(ctx, nil, &types.Communication{
		EducatorID:     educatorID,
		Audience:       in.Audience,
		SectionID:      in.SectionID,
		Subject:        in.Subject,
		Body:           in.Body,
		Channel:        in.Channel,
		RecipientCount: len(students),
	})
	if err != nil {
		return nil, apierr.Internal(err)
	}

	var limiter *rate.Limiter
	if cs.cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cs.cfg.RatePerSecond), 1)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cs.cfg.Concurrency)
	for _, st := range students {
		g.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(gctx); err != nil {
					return err
				}
			}
			msg, err := cs.messages.Deliver(gctx, st, DeliverInput{
				Subject:         in.Subject,
				Body:            in.Body,
				Channel:         in.Channel,
				CommunicationID: &comm.ID,
			})
			ok := err == nil && msg.Status != comms.StatusFailed
			if err != nil {
				cs.log.Warn("bulk delivery failed", "communication_id", comm.ID, "student_id", st.ID, "error", err)
			}
			observability.ObserveBulkMessage(in.Channel, ok)
			mu.Lock()
			if ok {
				comm.SentCount++
			} else {
				comm.FailedCount++
			}
			mu.Unlock()
			return nil
		})
	}
	waitErr := g.Wait()

	comm.Settle()
	// Counts are recorded even when the request was cancelled mid-send.
	if err := cs.commRepo.UpdateCounts(context.WithoutCancel(ctx), nil, comm); err != nil {
		return nil, apierr.Internal(fmt.Errorf("update communication: %w", err))
	}
	if waitErr != nil {
		cs.log.Warn("bulk communication interrupted",
			"communication_id", comm.ID,
			"recipients", comm.RecipientCount,
			"sent", comm.SentCount,
			"error", waitErr,
		)
		return comm, apierr.New(http.StatusServiceUnavailable, "bulk_send_interrupted",
			fmt.Errorf("bulk send stopped after %d of %d messages: %w", comm.SentCount, comm.RecipientCount, waitErr))
	}
	cs.log.Info("bulk communication sent",
		"communication_id", comm.ID,
		"audience", comm.Audience,
		"recipients", comm.RecipientCount,
		"sent", comm.SentCount,
		"failed", comm.FailedCount,
	)
	notify(ctx, cs.log, cs.notifications, comms.NotificationBulkSent,
		fmt.Sprintf("Bulk message to %s", audienceLabel(in.Audience)),
		fmt.Sprintf("%d of %d delivered", comm.SentCount, comm.RecipientCount))
	return comm, nil
}

func audienceLabel(a string) string {
	switch a {
	case comms.AudienceSection:
		return "section"
	case comms.AudienceAtRisk:
		return "at-risk students"
	default:
		return "all students"
	}
}

func (cs *communicationService) List(ctx context.Context) ([]*types.Communication, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := cs.commRepo.List(ctx, nil, educatorID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return rows, nil
}
