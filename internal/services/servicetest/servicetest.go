// Package servicetest builds the full service stack over an in-memory
// SQLite database for tests outside the services package.
package servicetest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/educator-assistant-backend/internal/data/repos"
	"github.com/yungbote/educator-assistant-backend/internal/data/repos/testutil"
	types "github.com/yungbote/educator-assistant-backend/internal/domain"
	"github.com/yungbote/educator-assistant-backend/internal/platform/ctxutil"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
	"github.com/yungbote/educator-assistant-backend/internal/services"
)

type Mail struct {
	To, Subject, Body string
}

// Mailer records sends; addresses in FailTo fail.
type Mailer struct {
	mu     sync.Mutex
	Sent   []Mail
	FailTo map[string]bool
}

func (m *Mailer) Enabled() bool { return true }

func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailTo[to] {
		return errors.New("mailbox unavailable")
	}
	m.Sent = append(m.Sent, Mail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *Mailer) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

type Stack struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Educator *types.Educator
	Ctx      context.Context
	Mailer   *Mailer

	EducatorRepo repos.EducatorRepo
	TurnRepo     repos.AssistantTurnRepo

	Auth           services.AuthService
	Sections       services.SectionService
	Subjects       services.SubjectService
	Students       services.StudentService
	Grades         services.GradeService
	Schedules      services.ScheduleService
	Notifications  services.NotificationService
	Messages       services.MessageService
	Meetings       services.MeetingService
	Communications services.CommunicationService
	Reports        services.ReportService
	Settings       services.SettingsService
}

func New(tb testing.TB) *Stack {
	tb.Helper()
	db := testutil.DB(tb)
	log := testutil.Logger(tb)

	sectionRepo := repos.NewSectionRepo(db, log)
	subjectRepo := repos.NewSubjectRepo(db, log)
	studentRepo := repos.NewStudentRepo(db, log)
	gradeRepo := repos.NewGradeRepo(db, log)

	s := &Stack{
		DB:           db,
		Log:          log,
		Mailer:       &Mailer{FailTo: map[string]bool{}},
		EducatorRepo: repos.NewEducatorRepo(db, log),
		TurnRepo:     repos.NewAssistantTurnRepo(db, log),
	}
	s.Educator = testutil.SeedEducator(tb, context.Background(), db, "teacher@school.test")
	s.Ctx = AsEducator(s.Educator)

	s.Auth = services.NewAuthService(db, log, s.EducatorRepo, "test-secret", 0, "demo@educator.test")
	s.Sections = services.NewSectionService(db, log, sectionRepo)
	s.Subjects = services.NewSubjectService(db, log, subjectRepo)
	s.Students = services.NewStudentService(db, log, studentRepo, sectionRepo)
	s.Grades = services.NewGradeService(db, log, gradeRepo, studentRepo, subjectRepo, sectionRepo)
	s.Schedules = services.NewScheduleService(db, log, repos.NewScheduleRepo(db, log))
	s.Notifications = services.NewNotificationService(db, log, repos.NewNotificationRepo(db, log))
	s.Messages = services.NewMessageService(db, log, repos.NewMessageRepo(db, log), studentRepo, s.Notifications, s.Mailer)
	s.Meetings = services.NewMeetingService(db, log, repos.NewMeetingRepo(db, log), studentRepo, s.Notifications)
	s.Communications = services.NewCommunicationService(db, log, repos.NewCommunicationRepo(db, log), studentRepo,
		sectionRepo, s.Grades, s.Messages, s.Notifications, services.BulkConfig{Concurrency: 2})
	s.Reports = services.NewReportService(db, log, repos.NewSentReportRepo(db, log), studentRepo, subjectRepo,
		gradeRepo, s.Notifications, s.Mailer)
	s.Settings = services.NewSettingsService(db, log, s.EducatorRepo)
	return s
}

func AsEducator(e *types.Educator) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{
		EducatorID: e.ID,
		School:     e.School,
	})
}
