package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
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

const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendSteady    = "steady"

	trendDelta       = 5.0
	trendWindowGrade = 10
)

type PerformanceReport struct {
	Summary     *GradeSummary `json:"summary"`
	Trend       string        `json:"trend"`
	TrendDelta  float64       `json:"trend_delta"`
	Window      []GradeLine   `json:"window"`
	GeneratedAt time.Time     `json:"generated_at"`
}

type ReportService interface {
	StudentPerformance(ctx context.Context, studentID uuid.UUID) (*PerformanceReport, error)
	SendPerformanceReport(ctx context.Context, studentID uuid.UUID, email string) (*types.SentReport, error)
	ListSent(ctx context.Context, studentID *uuid.UUID) ([]*types.SentReport, error)
}

type reportService struct {
	db             *gorm.DB
	log            *logger.Logger
	sentReportRepo repos.SentReportRepo
	studentRepo    repos.StudentRepo
	subjectRepo    repos.SubjectRepo
	gradeRepo      repos.GradeRepo
	notifications  NotificationService
	mailer         Mailer
}

func NewReportService(
	db *gorm.DB,
	log *logger.Logger,
	sentReportRepo repos.SentReportRepo,
	studentRepo repos.StudentRepo,
	subjectRepo repos.SubjectRepo,
	gradeRepo repos.GradeRepo,
	notifications NotificationService,
	mailer Mailer,
) ReportService {
	if mailer == nil {
		mailer = NopMailer{}
	}
	return &reportService{
		db:             db,
		log:            log.With("service", "ReportService"),
		sentReportRepo: sentReportRepo,
		studentRepo:    studentRepo,
		subjectRepo:    subjectRepo,
		gradeRepo:      gradeRepo,
		notifications:  notifications,
		mailer:         mailer,
	}
}

func (rs *reportService) build(ctx context.Context, educatorID uuid.UUID, st *types.Student) (*PerformanceReport, error) {
	grades, err := rs.gradeRepo.ListByStudent(ctx, nil, educatorID, st.ID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	subjects, err := rs.subjectRepo.ListByEducator(ctx, nil, educatorID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	names := make(map[uuid.UUID]string, len(subjects))
	for _, s := range subjects {
		names[s.ID] = s.Name
	}

	sort.SliceStable(grades, func(i, j int) bool { return grades[i].GradedAt.Before(grades[j].GradedAt) })
	window := grades
	if len(window) > trendWindowGrade {
		window = window[len(window)-trendWindowGrade:]
	}
	pcts := make([]float64, 0, len(window))
	lines := make([]GradeLine, 0, len(window))
	for _, g := range window {
		pcts = append(pcts, g.Percentage())
		lines = append(lines, lineFor(g, names))
	}
	trend, delta := gradeTrend(pcts)
	return &PerformanceReport{
		Summary:     summarize(st, grades, names),
		Trend:       trend,
		TrendDelta:  delta,
		Window:      lines,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// gradeTrend compares the mean of the later half of pcts against the earlier
// half. pcts must be in chronological order.
func gradeTrend(pcts []float64) (string, float64) {
	if len(pcts) < 2 {
		return TrendSteady, 0
	}
	mid := len(pcts) / 2
	delta := round1(mean(pcts[len(pcts)-mid:]) - mean(pcts[:mid]))
	switch {
	case delta >= trendDelta:
		return TrendImproving, delta
	case delta <= -trendDelta:
		return TrendDeclining, delta
	default:
		return TrendSteady, delta
	}
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

func (rs *reportService) student(ctx context.Context, educatorID, id uuid.UUID) (*types.Student, error) {
	st, err := rs.studentRepo.GetByID(ctx, nil, educatorID, id)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if st == nil {
		return nil, apierr.NotFound("student")
	}
	return st, nil
}

func (rs *reportService) StudentPerformance(ctx context.Context, studentID uuid.UUID) (*PerformanceReport, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	st, err := rs.student(ctx, educatorID, studentID)
	if err != nil {
		return nil, err
	}
	return rs.build(ctx, educatorID, st)
}

// SendPerformanceReport emails the rendered report to email, or to the
// student's contact address when email is blank. A SentReport row is stored
// whatever the delivery outcome.
func (rs *reportService) SendPerformanceReport(ctx context.Context, studentID uuid.UUID, email string) (*types.SentReport, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	st, err := rs.student(ctx, educatorID, studentID)
	if err != nil {
		return nil, err
	}
	to := strings.TrimSpace(email)
	if to == "" {
		to = st.ContactEmail()
	}
	if to == "" {
		return nil, apierr.BadRequest("no_recipient", errors.New("student has no contact email"))
	}
	if err := validate.Var(to, "email"); err != nil {
		return nil, apierr.BadRequest("invalid_email", err)
	}

	report, err := rs.build(ctx, educatorID, st)
	if err != nil {
		return nil, err
	}
	subject := fmt.Sprintf("Performance report: %s", st.FullName())
	body := RenderPerformanceReport(report)

	status := comms.StatusSent
	switch {
	case !rs.mailer.Enabled():
		status = comms.StatusQueued
	default:
		if err := rs.mailer.Send(ctx, to, subject, body); err != nil {
			rs.log.Warn("performance report delivery failed", "student_id", st.ID, "error", err)
			status = comms.StatusFailed
		}
	}

	sent, err := rs.sentReportRepo.Create(ctx, nil, &types.SentReport{
		EducatorID:     educatorID,
		StudentID:      st.ID,
		Kind:           comms.ReportPerformance,
		RecipientEmail: to,
		Summary:        body,
		Status:         status,
	})
	if err != nil {
		return nil, apierr.Internal(err)
	}
	notify(ctx, rs.log, rs.notifications, comms.NotificationReportSent,
		fmt.Sprintf("Performance report for %s", st.FullName()),
		fmt.Sprintf("Status: %s", status))
	return sent, nil
}

func (rs *reportService) ListSent(ctx context.Context, studentID *uuid.UUID) ([]*types.SentReport, error) {
	educatorID, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := rs.sentReportRepo.List(ctx, nil, educatorID, studentID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return rows, nil
}

// RenderPerformanceReport formats a report as plain text suitable for email.
func RenderPerformanceReport(r *PerformanceReport) string {
	var b strings.Builder
	s := r.Summary
	fmt.Fprintf(&b, "Performance report for %s\n", s.StudentName)
	fmt.Fprintf(&b, "Generated %s\n\n", r.GeneratedAt.Format("January 2, 2006"))
	if s.Count == 0 {
		b.WriteString("No grades have been recorded yet.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "Overall average: %.1f%% (%s) across %d grades\n", s.Average, s.Letter, s.Count)
	fmt.Fprintf(&b, "Recent trend: %s", r.Trend)
	if r.TrendDelta != 0 {
		fmt.Fprintf(&b, " (%+.1f points)", r.TrendDelta)
	}
	b.WriteString("\n")
	if len(s.BySubject) > 0 {
		b.WriteString("\nBy subject:\n")
		for _, sa := range s.BySubject {
			fmt.Fprintf(&b, "  - %s: %.1f%% (%s), %d grades\n", sa.Subject, sa.Average, sa.Letter, sa.Count)
		}
	}
	if len(s.Recent) > 0 {
		b.WriteString("\nRecent work:\n")
		for _, g := range s.Recent {
			fmt.Fprintf(&b, "  - %s %s: %.1f/%.1f (%.1f%%, %s)\n",
				g.GradedAt.Format("2006-01-02"), g.Title, g.Score, g.MaxScore, g.Percentage, g.Letter)
		}
	}
	return b.String()
}
