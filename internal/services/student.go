package services

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/educator-assistant-backend/internal/data/repos"
	types "github.com/yungbote/educator-assistant-backend/internal/domain"
	"github.com/yungbote/educator-assistant-backend/internal/platform/apierr"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
	"github.com/yungbote/educator-assistant-backend/internal/platform/validate"
)

type StudentInput struct {
	SectionID     *uuid.UUID `json:"section_id"`
	FirstName     string     `json:"first_name" validate:"required,max=80"`
	LastName      string     `json:"last_name" validate:"required,max=80"`
	Email         string     `json:"email" validate:"omitempty,email"`
	GuardianName  string     `json:"guardian_name" validate:"max=160"`
	GuardianEmail string     `json:"guardian_email" validate:"omitempty,email"`
	StudentNumber string     `json:"student_number" validate:"max=40"`
}

func (in *StudentInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.GuardianName = strings.TrimSpace(in.GuardianName)
	in.GuardianEmail = strings.ToLower(strings.TrimSpace(in.GuardianEmail))
	in.StudentNumber = strings.TrimSpace(in.StudentNumber)
}

type StudentService interface {
	Create(ctx context.Context, in StudentInput) (*types.Student, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Student, error)
	List(ctx context.Context, f repos.StudentFilter) ([]*types.Student, error)
	Roster(ctx context.Context) ([]*types.Student, error)
	Update(ctx context.Context, id uuid.UUID, in StudentInput) (*types.Student, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ImportXLSX(ctx context.Context, r io.Reader, sectionID *uuid.UUID) (*ImportResult, error)
}

type studentService struct {
	db          *gorm.DB
	log         *logger.Logger
	studentRepo repos.StudentRepo
	sectionRepo repos.SectionRepo
}

func NewStudentService(db *gorm.DB, log *logger.Logger, studentRepo repos.StudentRepo, sectionRepo repos.SectionRepo) StudentService {
	return &studentService{
		db:          db,
		log:         log.With("service", "StudentService"),
		studentRepo: studentRepo,
		sectionRepo: sectionRepo,
	}
}

func (ss *studentService) checkSection(ctx context.Context, educatorID uuid.UUID, sectionID *uuid.UUID) error {
	if sectionID == nil {
		return nil
	}
	s, err := ss.sectionRepo.GetByID(ctx, nil, educatorID, *sectionID)
	if err != nil {
		return apierr.Internal(err)
	}
	if s == nil {
		return apierr.NotFound("section")
	}
	return nil
}

func (ss *studentService) Create(ctx context.Context, in StudentInput) (*types.Student, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if err := ss.checkSection(ctx, educatorID, in.SectionID); err != nil {
		return nil, err
	}
	created, err := ss.studentRepo.Create(ctx, nil, []*types.Student{{
		EducatorID:    educatorID,
		SectionID:     in.SectionID,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Email:         in.Email,
		GuardianName:  in.GuardianName,
		GuardianEmail: in.GuardianEmail,
		StudentNumber: in.StudentNumber,
	}})
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return created[0], nil
}

func (ss *studentService) Get(ctx context.Context, id uuid.UUID) (*types.Student, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	s, err := ss.studentRepo.GetByID(ctx, nil, educatorID, id)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if s == nil {
		return nil, apierr.NotFound("student")
	}
	return s, nil
}

func (ss *studentService) List(ctx context.Context, f repos.StudentFilter) ([]*types.Student, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := ss.studentRepo.List(ctx, nil, educatorID, f)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return rows, nil
}

func (ss *studentService) Roster(ctx context.Context) ([]*types.Student, error) {
	return ss.List(ctx, repos.StudentFilter{})
}

func (ss *studentService) Update(ctx context.Context, id uuid.UUID, in StudentInput) (*types.Student, error) {
	s, err := ss.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if err := ss.checkSection(ctx, s.EducatorID, in.SectionID); err != nil {
		return nil, err
	}
	s.SectionID = in.SectionID
	s.FirstName = in.FirstName
	s.LastName = in.LastName
	s.Email = in.Email
	s.GuardianName = in.GuardianName
	s.GuardianEmail = in.GuardianEmail
	s.StudentNumber = in.StudentNumber
	s.Section = nil
	if err := ss.studentRepo.Update(ctx, nil, s); err != nil {
		return nil, apierr.Internal(err)
	}
	return s, nil
}

func (ss *studentService) Delete(ctx context.Context, id uuid.UUID) error {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return err
	}
	ok, err := ss.studentRepo.Delete(ctx, nil, educatorID, id)
	if err != nil {
		return apierr.Internal(err)
	}
	if !ok {
		return apierr.NotFound("student")
	}
	return nil
}
