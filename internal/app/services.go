package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
	"github.com/yungbote/educator-assistant-backend/internal/services"
)

type Services struct {
	Mailer services.Mailer

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

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients) Services {
	log.Info("Wiring services...")
	mailer := services.NewSendGridMailer(c.SendGrid)

	s := Services{Mailer: mailer}
	s.Auth = services.NewAuthService(db, log, r.Educator, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.DemoEducatorEmail)
	s.Sections = services.NewSectionService(db, log, r.Section)
	s.Subjects = services.NewSubjectService(db, log, r.Subject)
	s.Students = services.NewStudentService(db, log, r.Student, r.Section)
	s.Grades = services.NewGradeService(db, log, r.Grade, r.Student, r.Subject, r.Section)
	s.Schedules = services.NewScheduleService(db, log, r.Schedule)
	s.Notifications = services.NewNotificationService(db, log, r.Notification)
	s.Messages = services.NewMessageService(db, log, r.Message, r.Student, s.Notifications, mailer)
	s.Meetings = services.NewMeetingService(db, log, r.Meeting, r.Student, s.Notifications)
	s.Communications = services.NewCommunicationService(db, log, r.Communication, r.Student, r.Section,
		s.Grades, s.Messages, s.Notifications, services.BulkConfig{
			Concurrency:   cfg.BulkSendConcurrency,
			RatePerSecond: cfg.BulkSendRatePerSecond,
		})
	s.Reports = services.NewReportService(db, log, r.SentReport, r.Student, r.Subject, r.Grade, s.Notifications, mailer)
	s.Settings = services.NewSettingsService(db, log, r.Educator)
	return s
}
