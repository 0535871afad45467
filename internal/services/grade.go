package services

import (
	"context"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/educator-assistant-backend/internal/data/repos"
	types "github.com/yungbote/educator-assistant-backend/internal/domain"
	"github.com/yungbote/educator-assistant-backend/internal/domain/gradebook"
	"github.com/yungbote/educator-assistant-backend/internal/platform/apierr"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
	"github.com/yungbote/educator-assistant-backend/internal/platform/validate"
)

const recentGradeCount = 5

type GradeInput struct {
	StudentID uuid.UUID  `json:"student_id" validate:"required"`
	SubjectID *uuid.UUID `json:"subject_id"`
	Title     string     `json:"title" validate:"required,max=160"`
	Category  string     `json:"category" validate:"max=60"`
	Score     float64    `json:"score" validate:"gte=0"`
	MaxScore  float64    `json:"max_score" validate:"gt=0"`
	GradedAt  *time.Time `json:"graded_at"`
	Comment   string     `json:"comment" validate:"max=2000"`
}

type GradeLine struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Subject    string    `json:"subject,omitempty"`
	Score      float64   `json:"score"`
	MaxScore   float64   `json:"max_score"`
	Percentage float64   `json:"percentage"`
	Letter     string    `json:"letter"`
	GradedAt   time.Time `json:"graded_at"`
}

type SubjectAverage struct {
	SubjectID *uuid.UUID `json:"subject_id,omitempty"`
	Subject   string     `json:"subject"`
	Count     int        `json:"count"`
	Average   float64    `json:"average"`
	Letter    string     `json:"letter"`
}

type GradeSummary struct {
	StudentID   uuid.UUID        `json:"student_id"`
	StudentName string           `json:"student_name"`
	Count       int              `json:"count"`
	Average     float64          `json:"average"`
	Letter      string           `json:"letter"`
	BySubject   []SubjectAverage `json:"by_subject"`
	Recent      []GradeLine      `json:"recent"`
}

type AtRiskStudent struct {
	Student *types.Student `json:"student"`
	Average float64        `json:"average"`
	Letter  string         `json:"letter"`
	Count   int            `json:"count"`
}

type GradeService interface {
	Create(ctx context.Context, in GradeInput) (*types.Grade, error)
	Update(ctx context.Context, id uuid.UUID, in GradeInput) (*types.Grade, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListForStudent(ctx context.Context, studentID uuid.UUID) ([]*types.Grade, error)
	Summary(ctx context.Context, studentID uuid.UUID) (*GradeSummary, error)
	AtRiskStudents(ctx context.Context, threshold float64) ([]AtRiskStudent, error)
	ExportSectionXLSX(ctx context.Context, sectionID uuid.UUID, w io.Writer) error
}

type gradeService struct {
	db          *gorm.DB
	log         *logger.Logger
	gradeRepo   repos.GradeRepo
	studentRepo repos.StudentRepo
	subjectRepo repos.SubjectRepo
	sectionRepo repos.SectionRepo
}

func NewGradeService(
	db *gorm.DB,
	log *logger.Logger,
	gradeRepo repos.GradeRepo,
	studentRepo repos.StudentRepo,
	subjectRepo repos.SubjectRepo,
	sectionRepo repos.SectionRepo,
) GradeService {
	return &gradeService{
		db:          db,
		log:         log.With("service", "GradeService"),
		gradeRepo:   gradeRepo,
		studentRepo: studentRepo,
		subjectRepo: subjectRepo,
		sectionRepo: sectionRepo,
	}
}

func (gs *gradeService) student(ctx context.Context, educatorID, id uuid.UUID) (*types.Student, error) {
	s, err := gs.studentRepo.GetByID(ctx, nil, educatorID, id)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if s == nil {
		return nil, apierr.NotFound("student")
	}
	return s, nil
}

func (gs *gradeService) checkSubject(ctx context.Context, educatorID uuid.UUID, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	s, err := gs.subjectRepo.GetByID(ctx, nil, educatorID, *id)
	if err != nil {
		return apierr.Internal(err)
	}
	if s == nil {
		return apierr.NotFound("subject")
	}
	return nil
}

func (gs *gradeService) Create(ctx context.Context, in GradeInput) (*types.Grade, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if _, err := gs.student(ctx, educatorID, in.StudentID); err != nil {
		return nil, err
	}
	if err := gs.checkSubject(ctx, educatorID, in.SubjectID); err != nil {
		return nil, err
	}
	g := &types.Grade{
		StudentID: in.StudentID,
		SubjectID: in.SubjectID,
		Title:     in.Title,
		Category:  strings.TrimSpace(in.Category),
		Score:     in.Score,
		MaxScore:  in.MaxScore,
		Comment:   strings.TrimSpace(in.Comment),
	}
	if in.GradedAt != nil {
		g.GradedAt = in.GradedAt.UTC()
	}
	created, err := gs.gradeRepo.Create(ctx, nil, []*types.Grade{g})
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return created[0], nil
}

func (gs *gradeService) Update(ctx context.Context, id uuid.UUID, in GradeInput) (*types.Grade, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	g, err := gs.gradeRepo.GetByID(ctx, nil, educatorID, id)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if g == nil {
		return nil, apierr.NotFound("grade")
	}
	in.StudentID = g.StudentID
	in.Title = strings.TrimSpace(in.Title)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if err := gs.checkSubject(ctx, educatorID, in.SubjectID); err != nil {
		return nil, err
	}
	g.SubjectID = in.SubjectID
	g.Title = in.Title
	g.Category = strings.TrimSpace(in.Category)
	g.Score = in.Score
	g.MaxScore = in.MaxScore
	g.Comment = strings.TrimSpace(in.Comment)
	if in.GradedAt != nil {
		g.GradedAt = in.GradedAt.UTC()
	}
	if err := gs.gradeRepo.Update(ctx, nil, g); err != nil {
		return nil, apierr.Internal(err)
	}
	return g, nil
}

func (gs *gradeService) Delete(ctx context.Context, id uuid.UUID) error {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return err
	}
	ok, err := gs.gradeRepo.Delete(ctx, nil, educatorID, id)
	if err != nil {
		return apierr.Internal(err)
	}
	if !ok {
		return apierr.NotFound("grade")
	}
	return nil
}

func (gs *gradeService) ListForStudent(ctx context.Context, studentID uuid.UUID) ([]*types.Grade, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := gs.student(ctx, educatorID, studentID); err != nil {
		return nil, err
	}
	rows, err := gs.gradeRepo.ListByStudent(ctx, nil, educatorID, studentID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return rows, nil
}

func (gs *gradeService) subjectNames(ctx context.Context, educatorID uuid.UUID) (map[uuid.UUID]string, error) {
	subjects, err := gs.subjectRepo.ListByEducator(ctx, nil, educatorID)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]string, len(subjects))
	for _, s := range subjects {
		out[s.ID] = s.Name
	}
	return out, nil
}

func (gs *gradeService) Summary(ctx context.Context, studentID uuid.UUID) (*GradeSummary, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	st, err := gs.student(ctx, educatorID, studentID)
	if err != nil {
		return nil, err
	}
	grades, err := gs.gradeRepo.ListByStudent(ctx, nil, educatorID, studentID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	names, err := gs.subjectNames(ctx, educatorID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return summarize(st, grades, names), nil
}

// summarize expects grades in graded_at ascending order.
func summarize(st *types.Student, grades []*types.Grade, subjectNames map[uuid.UUID]string) *GradeSummary {
	sum := &GradeSummary{
		StudentID:   st.ID,
		StudentName: st.FullName(),
		Count:       len(grades),
		BySubject:   []SubjectAverage{},
		Recent:      []GradeLine{},
	}
	if len(grades) == 0 {
		return sum
	}

	type acc struct {
		id    *uuid.UUID
		total float64
		n     int
	}
	bySubject := map[string]*acc{}
	var order []string
	total := 0.0
	for _, g := range grades {
		pct := g.Percentage()
		total += pct
		key, name := "", "General"
		if g.SubjectID != nil {
			key = g.SubjectID.String()
			if n, ok := subjectNames[*g.SubjectID]; ok {
				name = n
			}
		}
		a, ok := bySubject[name+"|"+key]
		if !ok {
			a = &acc{id: g.SubjectID}
			bySubject[name+"|"+key] = a
			order = append(order, name+"|"+key)
		}
		a.total += pct
		a.n++
	}
	sum.Average = round1(total / float64(len(grades)))
	sum.Letter = gradebook.LetterFor(sum.Average)

	sort.Strings(order)
	for _, k := range order {
		a := bySubject[k]
		avg := round1(a.total / float64(a.n))
		sum.BySubject = append(sum.BySubject, SubjectAverage{
			SubjectID: a.id,
			Subject:   strings.SplitN(k, "|", 2)[0],
			Count:     a.n,
			Average:   avg,
			Letter:    gradebook.LetterFor(avg),
		})
	}

	start := len(grades) - recentGradeCount
	if start < 0 {
		start = 0
	}
	for i := len(grades) - 1; i >= start; i-- {
		sum.Recent = append(sum.Recent, lineFor(grades[i], subjectNames))
	}
	return sum
}

func lineFor(g *types.Grade, subjectNames map[uuid.UUID]string) GradeLine {
	line := GradeLine{
		ID:         g.ID,
		Title:      g.Title,
		Score:      g.Score,
		MaxScore:   g.MaxScore,
		Percentage: round1(g.Percentage()),
		Letter:     g.Letter(),
		GradedAt:   g.GradedAt,
	}
	if g.SubjectID != nil {
		line.Subject = subjectNames[*g.SubjectID]
	}
	return line
}

func (gs *gradeService) AtRiskStudents(ctx context.Context, threshold float64) ([]AtRiskStudent, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	if threshold <= 0 {
		threshold = gradebook.AtRiskThreshold
	}
	students, err := gs.studentRepo.List(ctx, nil, educatorID, repos.StudentFilter{})
	if err != nil {
		return nil, apierr.Internal(err)
	}
	ids := make([]uuid.UUID, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}
	grades, err := gs.gradeRepo.ListByStudentIDs(ctx, nil, educatorID, ids)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	totals := map[uuid.UUID]float64{}
	counts := map[uuid.UUID]int{}
	for _, g := range grades {
		totals[g.StudentID] += g.Percentage()
		counts[g.StudentID]++
	}
	out := []AtRiskStudent{}
	for _, s := range students {
		n := counts[s.ID]
		if n == 0 {
			continue
		}
		avg := round1(totals[s.ID] / float64(n))
		if avg < threshold {
			out = append(out, AtRiskStudent{Student: s, Average: avg, Letter: gradebook.LetterFor(avg), Count: n})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Average < out[j].Average })
	return out, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
