package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/educator-assistant-backend/internal/data/repos"
	"github.com/yungbote/educator-assistant-backend/internal/domain/educator"
	"github.com/yungbote/educator-assistant-backend/internal/platform/apierr"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
)

type SettingsService interface {
	GetAssistantMode(ctx context.Context) (string, error)
	SetAssistantMode(ctx context.Context, mode string) error
}

type settingsService struct {
	db           *gorm.DB
	log          *logger.Logger
	educatorRepo repos.EducatorRepo
}

func NewSettingsService(db *gorm.DB, log *logger.Logger, educatorRepo repos.EducatorRepo) SettingsService {
	return &settingsService{
		db:           db,
		log:          log.With("service", "SettingsService"),
		educatorRepo: educatorRepo,
	}
}

func (ss *settingsService) GetAssistantMode(ctx context.Context) (string, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return "", err
	}
	e, err := ss.educatorRepo.GetByID(ctx, nil, educatorID)
	if err != nil {
		return "", apierr.Internal(err)
	}
	if e == nil {
		return "", apierr.NotFound("educator")
	}
	if e.AssistantMode == "" {
		return educator.ModeAssist, nil
	}
	return e.AssistantMode, nil
}

func (ss *settingsService) SetAssistantMode(ctx context.Context, mode string) error {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return err
	}
	if !educator.ValidMode(mode) {
		return apierr.BadRequest("invalid_mode", fmt.Errorf("unknown assistant mode %q", mode))
	}
	if err := ss.educatorRepo.UpdateAssistantMode(ctx, nil, educatorID, mode); err != nil {
		return apierr.Internal(err)
	}
	ss.log.Info("assistant mode updated", "educator_id", educatorID, "mode", mode)
	return nil
}
