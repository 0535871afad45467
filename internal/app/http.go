package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/educator-assistant-backend/internal/http"
	httpH "github.com/yungbote/educator-assistant-backend/internal/http/handlers"
	httpMW "github.com/yungbote/educator-assistant-backend/internal/http/middleware"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
)

const serviceName = "educator-assistant"

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health        *httpH.HealthHandler
	Auth          *httpH.AuthHandler
	Section       *httpH.SectionHandler
	Subject       *httpH.SubjectHandler
	Student       *httpH.StudentHandler
	Grade         *httpH.GradeHandler
	Schedule      *httpH.ScheduleHandler
	Message       *httpH.MessageHandler
	Meeting       *httpH.MeetingHandler
	Notification  *httpH.NotificationHandler
	Communication *httpH.CommunicationHandler
	Report        *httpH.ReportHandler
	Assistant     *httpH.AssistantHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services, asst Assistant) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:        httpH.NewHealthHandler(db),
		Auth:          httpH.NewAuthHandler(services.Auth),
		Section:       httpH.NewSectionHandler(services.Sections, services.Grades),
		Subject:       httpH.NewSubjectHandler(services.Subjects),
		Student:       httpH.NewStudentHandler(services.Students),
		Grade:         httpH.NewGradeHandler(services.Grades),
		Schedule:      httpH.NewScheduleHandler(services.Schedules),
		Message:       httpH.NewMessageHandler(services.Messages),
		Meeting:       httpH.NewMeetingHandler(services.Meetings),
		Notification:  httpH.NewNotificationHandler(services.Notifications),
		Communication: httpH.NewCommunicationHandler(services.Communications),
		Report:        httpH.NewReportHandler(services.Reports),
		Assistant:     httpH.NewAssistantHandler(log, services.Auth, services.Settings, asst.Router),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config, services Services) Middleware {
	log.Info("Wiring middleware...")
	if cfg.Debug {
		log.Warn("DEBUG mode: unauthenticated requests run as the demo educator", "demo_email", cfg.DemoEducatorEmail)
	}
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth, cfg.Debug),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *http.Server {
	otelName := ""
	if cfg.OTelEnabled {
		otelName = serviceName
	}
	return http.NewServer(http.RouterConfig{
		Log:                  log,
		ServiceName:          otelName,
		CORSOrigins:          cfg.CORSOrigins,
		AuthMiddleware:       middleware.Auth,
		HealthHandler:        handlers.Health,
		AuthHandler:          handlers.Auth,
		SectionHandler:       handlers.Section,
		SubjectHandler:       handlers.Subject,
		StudentHandler:       handlers.Student,
		GradeHandler:         handlers.Grade,
		ScheduleHandler:      handlers.Schedule,
		MessageHandler:       handlers.Message,
		MeetingHandler:       handlers.Meeting,
		NotificationHandler:  handlers.Notification,
		CommunicationHandler: handlers.Communication,
		ReportHandler:        handlers.Report,
		AssistantHandler:     handlers.Assistant,
	})
}
