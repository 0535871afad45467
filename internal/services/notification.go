package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/educator-assistant-backend/internal/data/repos"
	types "github.com/yungbote/educator-assistant-backend/internal/domain"
	"github.com/yungbote/educator-assistant-backend/internal/platform/apierr"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
)

type NotificationService interface {
	Create(ctx context.Context, kind, title, body string) (*types.Notification, error)
	List(ctx context.Context, unreadOnly bool) ([]*types.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}

type notificationService struct {
	db               *gorm.DB
	log              *logger.Logger
	notificationRepo repos.NotificationRepo
}

func NewNotificationService(db *gorm.DB, log *logger.Logger, notificationRepo repos.NotificationRepo) NotificationService {
	return &notificationService{
		db:               db,
		log:              log.With("service", "NotificationService"),
		notificationRepo: notificationRepo,
	}
}

func (ns *notificationService) Create(ctx context.Context, kind, title, body string) (*types.Notification, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	n, err := ns.notificationRepo.Create(ctx, nil, &types.Notification{
		EducatorID: educatorID,
		Kind:       kind,
		Title:      title,
		Body:       body,
	})
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return n, nil
}

func (ns *notificationService) List(ctx context.Context, unreadOnly bool) ([]*types.Notification, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := ns.notificationRepo.List(ctx, nil, educatorID, unreadOnly)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return rows, nil
}

func (ns *notificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return err
	}
	ok, err := ns.notificationRepo.MarkRead(ctx, nil, educatorID, id, time.Now())
	if err != nil {
		return apierr.Internal(err)
	}
	if !ok {
		return apierr.NotFound("notification")
	}
	return nil
}

// notify records a notification; failures are logged and never fail the caller.
func notify(ctx context.Context, log *logger.Logger, ns NotificationService, kind, title, body string) {
	if ns == nil {
		return
	}
	if _, err := ns.Create(ctx, kind, title, body); err != nil {
		log.Warn("notification create failed", "kind", kind, "error", err)
	}
}
