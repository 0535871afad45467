package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/educator-assistant-backend/internal/data/repos"
	types "github.com/yungbote/educator-assistant-backend/internal/domain"
	"github.com/yungbote/educator-assistant-backend/internal/platform/apierr"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
	"github.com/yungbote/educator-assistant-backend/internal/platform/validate"
)

type SubjectInput struct {
	Name string `json:"name" validate:"required,max=120"`
	Code string `json:"code" validate:"max=20"`
}

type SubjectService interface {
	Create(ctx context.Context, in SubjectInput) (*types.Subject, error)
	List(ctx context.Context) ([]*types.Subject, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type subjectService struct {
	db          *gorm.DB
	log         *logger.Logger
	subjectRepo repos.SubjectRepo
}

func NewSubjectService(db *gorm.DB, log *logger.Logger, subjectRepo repos.SubjectRepo) SubjectService {
	return &subjectService{db: db, log: log.With("service", "SubjectService"), subjectRepo: subjectRepo}
}

func (ss *subjectService) Create(ctx context.Context, in SubjectInput) (*types.Subject, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	s, err := ss.subjectRepo.Create(ctx, nil, &types.Subject{EducatorID: educatorID, Name: in.Name, Code: in.Code})
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return s, nil
}

func (ss *subjectService) List(ctx context.Context) ([]*types.Subject, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := ss.subjectRepo.ListByEducator(ctx, nil, educatorID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return rows, nil
}

func (ss *subjectService) Delete(ctx context.Context, id uuid.UUID) error {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return err
	}
	ok, err := ss.subjectRepo.Delete(ctx, nil, educatorID, id)
	if err != nil {
		return apierr.Internal(err)
	}
	if !ok {
		return apierr.NotFound("subject")
	}
	return nil
}
