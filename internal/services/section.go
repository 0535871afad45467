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

type SectionInput struct {
	Name         string `json:"name" validate:"required,max=120"`
	GradeLevel   string `json:"grade_level" validate:"max=40"`
	AcademicYear string `json:"academic_year" validate:"max=40"`
}

type SectionService interface {
	Create(ctx context.Context, in SectionInput) (*types.Section, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Section, error)
	FindByName(ctx context.Context, name string) (*types.Section, error)
	List(ctx context.Context) ([]*types.Section, error)
	Update(ctx context.Context, id uuid.UUID, in SectionInput) (*types.Section, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type sectionService struct {
	db          *gorm.DB
	log         *logger.Logger
	sectionRepo repos.SectionRepo
}

func NewSectionService(db *gorm.DB, log *logger.Logger, sectionRepo repos.SectionRepo) SectionService {
	return &sectionService{db: db, log: log.With("service", "SectionService"), sectionRepo: sectionRepo}
}

func (ss *sectionService) Create(ctx context.Context, in SectionInput) (*types.Section, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	s, err := ss.sectionRepo.Create(ctx, nil, &types.Section{
		EducatorID:   educatorID,
		Name:         in.Name,
		GradeLevel:   strings.TrimSpace(in.GradeLevel),
		AcademicYear: strings.TrimSpace(in.AcademicYear),
	})
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return s, nil
}

func (ss *sectionService) Get(ctx context.Context, id uuid.UUID) (*types.Section, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	s, err := ss.sectionRepo.GetByID(ctx, nil, educatorID, id)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if s == nil {
		return nil, apierr.NotFound("section")
	}
	return s, nil
}

func (ss *sectionService) FindByName(ctx context.Context, name string) (*types.Section, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	s, err := ss.sectionRepo.FindByName(ctx, nil, educatorID, strings.TrimSpace(name))
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if s == nil {
		return nil, apierr.NotFound("section")
	}
	return s, nil
}

func (ss *sectionService) List(ctx context.Context) ([]*types.Section, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := ss.sectionRepo.ListByEducator(ctx, nil, educatorID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return rows, nil
}

func (ss *sectionService) Update(ctx context.Context, id uuid.UUID, in SectionInput) (*types.Section, error) {
	s, err := ss.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	s.Name = in.Name
	s.GradeLevel = strings.TrimSpace(in.GradeLevel)
	s.AcademicYear = strings.TrimSpace(in.AcademicYear)
	if err := ss.sectionRepo.Update(ctx, nil, s); err != nil {
		return nil, apierr.Internal(err)
	}
	return s, nil
}

func (ss *sectionService) Delete(ctx context.Context, id uuid.UUID) error {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return err
	}
	ok, err := ss.sectionRepo.Delete(ctx, nil, educatorID, id)
	if err != nil {
		return apierr.Internal(err)
	}
	if !ok {
		return apierr.NotFound("section")
	}
	return nil
}
