package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/educator-assistant-backend/internal/data/repos"
	"github.com/yungbote/educator-assistant-backend/internal/data/repos/testutil"
	types "github.com/yungbote/educator-assistant-backend/internal/domain"
	"github.com/yungbote/educator-assistant-backend/internal/platform/apierr"
	"github.com/yungbote/educator-assistant-backend/internal/platform/ctxutil"
)

type sentMail struct {
	To, Subject, Body string
}

type fakeMailer struct {
	mu     sync.Mutex
	sent   []sentMail
	failTo map[string]bool
}

func (m *fakeMailer) Enabled() bool { return true }

func (m *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failTo[to] {
		return errors.New("mailbox unavailable")
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type harness struct {
	db       *gorm.DB
	educator *types.Educator
	ctx      context.Context
	mailer   *fakeMailer

	auth          AuthService
	sections      SectionService
	subjects      SubjectService
	students      StudentService
	grades        GradeService
	schedules     ScheduleService
	notifications NotificationService
	messages      MessageService
	meetings      MeetingService
	comms         CommunicationService
	reports       ReportService
	settings      SettingsService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	educatorRepo := repos.NewEducatorRepo(db, log)
	sectionRepo := repos.NewSectionRepo(db, log)
	subjectRepo := repos.NewSubjectRepo(db, log)
	studentRepo := repos.NewStudentRepo(db, log)
	gradeRepo := repos.NewGradeRepo(db, log)

	h := &harness{db: db, mailer: &fakeMailer{failTo: map[string]bool{}}}
	h.educator = testutil.SeedEducator(t, context.Background(), db, "teacher@school.test")
	h.ctx = asEducator(h.educator)

	h.auth = NewAuthService(db, log, educatorRepo, "test-secret", 0, "demo@educator.test")
	h.sections = NewSectionService(db, log, sectionRepo)
	h.subjects = NewSubjectService(db, log, subjectRepo)
	h.students = NewStudentService(db, log, studentRepo, sectionRepo)
	h.grades = NewGradeService(db, log, gradeRepo, studentRepo, subjectRepo, sectionRepo)
	h.schedules = NewScheduleService(db, log, repos.NewScheduleRepo(db, log))
	h.notifications = NewNotificationService(db, log, repos.NewNotificationRepo(db, log))
	h.messages = NewMessageService(db, log, repos.NewMessageRepo(db, log), studentRepo, h.notifications, h.mailer)
	h.meetings = NewMeetingService(db, log, repos.NewMeetingRepo(db, log), studentRepo, h.notifications)
	h.comms = NewCommunicationService(db, log, repos.NewCommunicationRepo(db, log), studentRepo, sectionRepo,
		h.grades, h.messages, h.notifications, BulkConfig{Concurrency: 3})
	h.reports = NewReportService(db, log, repos.NewSentReportRepo(db, log), studentRepo, subjectRepo, gradeRepo,
		h.notifications, h.mailer)
	h.settings = NewSettingsService(db, log, educatorRepo)
	return h
}

func asEducator(e *types.Educator) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{
		EducatorID: e.ID,
		School:     e.School,
	})
}

func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	require.Error(t, err)
	ae, ok := apierr.As(err)
	require.True(t, ok, "expected *apierr.Error, got %T: %v", err, err)
	require.Equal(t, status, ae.Status)
	if code != "" {
		require.Equal(t, code, ae.Code)
	}
}
