package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/educator-assistant-backend/internal/data/repos"
	types "github.com/yungbote/educator-assistant-backend/internal/domain"
	"github.com/yungbote/educator-assistant-backend/internal/domain/comms"
	"github.com/yungbote/educator-assistant-backend/internal/platform/apierr"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
	"github.com/yungbote/educator-assistant-backend/internal/platform/validate"
)

type SendMessageInput struct {
	StudentID uuid.UUID `json:"student_id" validate:"required"`
	Subject   string    `json:"subject" validate:"max=200"`
	Body      string    `json:"body" validate:"required,max=5000"`
	Channel   string    `json:"channel" validate:"omitempty,oneof=in_app email"`
}

type DeliverInput struct {
	Subject         string
	Body            string
	Channel         string
	CommunicationID *uuid.UUID
}

type MessageService interface {
	Send(ctx context.Context, in SendMessageInput) (*types.Message, error)
	// Deliver persists and delivers one message to an already-loaded student
	// without raising a notification.
	Deliver(ctx context.Context, st *types.Student, in DeliverInput) (*types.Message, error)
	List(ctx context.Context, f repos.MessageFilter) ([]*types.Message, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}

type messageService struct {
	db            *gorm.DB
	log           *logger.Logger
	messageRepo   repos.MessageRepo
	studentRepo   repos.StudentRepo
	notifications NotificationService
	mailer        Mailer
}

func NewMessageService(
	db *gorm.DB,
	log *logger.Logger,
	messageRepo repos.MessageRepo,
	studentRepo repos.StudentRepo,
	notifications NotificationService,
	mailer Mailer,
) MessageService {
	if mailer == nil {
		mailer = NopMailer{}
	}
	return &messageService{
		db:            db,
		log:           log.With("service", "MessageService"),
		messageRepo:   messageRepo,
		studentRepo:   studentRepo,
		notifications: notifications,
		mailer:        mailer,
	}
}

func (ms *messageService) Send(ctx context.Context, in SendMessageInput) (*types.Message, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	in.Subject = strings.TrimSpace(in.Subject)
	in.Body = strings.TrimSpace(in.Body)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	st, err := ms.studentRepo.GetByID(ctx, nil, educatorID, in.StudentID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if st == nil {
		return nil, apierr.NotFound("student")
	}
	msg, err := ms.Deliver(ctx, st, DeliverInput{Subject: in.Subject, Body: in.Body, Channel: in.Channel})
	if err != nil {
		return nil, err
	}
	notify(ctx, ms.log, ms.notifications, comms.NotificationMessageSent,
		fmt.Sprintf("Message to %s", st.FullName()),
		fmt.Sprintf("Status: %s", msg.Status))
	return msg, nil
}

func (ms *messageService) Deliver(ctx context.Context, st *types.Student, in DeliverInput) (*types.Message, error) {
	channel := in.Channel
	if channel == "" {
		channel = comms.ChannelInApp
	}
	subject := in.Subject
	if subject == "" {
		subject = "Message from your teacher"
	}
	msg := &types.Message{
		EducatorID:      st.EducatorID,
		StudentID:       st.ID,
		CommunicationID: in.CommunicationID,
		Subject:         subject,
		Body:            in.Body,
		Channel:         channel,
		Status:          comms.StatusQueued,
	}
	if _, err := ms.messageRepo.Create(ctx, nil, []*types.Message{msg}); err != nil {
		return nil, apierr.Internal(fmt.Errorf("create message: %w", err))
	}

	now := time.Now().UTC()
	status, errMsg := comms.StatusSent, ""
	sentAt := &now
	if channel == comms.ChannelEmail {
		switch to := st.ContactEmail(); {
		case !ms.mailer.Enabled():
			status, sentAt = comms.StatusQueued, nil
		case to == "":
			status, errMsg, sentAt = comms.StatusFailed, "student has no contact email", nil
		default:
			if err := ms.mailer.Send(ctx, to, subject, in.Body); err != nil {
				ms.log.Warn("email delivery failed", "student_id", st.ID, "error", err)
				status, errMsg, sentAt = comms.StatusFailed, err.Error(), nil
			}
		}
	}
	if err := ms.messageRepo.UpdateDelivery(ctx, nil, msg.ID, status, errMsg, sentAt); err != nil {
		return nil, apierr.Internal(fmt.Errorf("update message delivery: %w", err))
	}
	msg.Status, msg.Error, msg.SentAt = status, errMsg, sentAt
	return msg, nil
}

func (ms *messageService) List(ctx context.Context, f repos.MessageFilter) ([]*types.Message, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := ms.messageRepo.List(ctx, nil, educatorID, f)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return rows, nil
}

func (ms *messageService) MarkRead(ctx context.Context, id uuid.UUID) error {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return err
	}
	ok, err := ms.messageRepo.MarkRead(ctx, nil, educatorID, id, time.Now())
	if err != nil {
		return apierr.Internal(err)
	}
	if !ok {
		return apierr.NotFound("message")
	}
	return nil
}
