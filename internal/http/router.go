package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/educator-assistant-backend/internal/http/handlers"
	httpMW "github.com/yungbote/educator-assistant-backend/internal/http/middleware"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	CORSOrigins    []string
	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler          *httpH.AuthHandler
	SectionHandler       *httpH.SectionHandler
	SubjectHandler       *httpH.SubjectHandler
	StudentHandler       *httpH.StudentHandler
	GradeHandler         *httpH.GradeHandler
	ScheduleHandler      *httpH.ScheduleHandler
	MessageHandler       *httpH.MessageHandler
	MeetingHandler       *httpH.MeetingHandler
	NotificationHandler  *httpH.NotificationHandler
	CommunicationHandler *httpH.CommunicationHandler
	ReportHandler        *httpH.ReportHandler
	AssistantHandler     *httpH.AssistantHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(httpMW.Recovery(cfg.Log))
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics())
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health + metrics
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/auth/register", cfg.AuthHandler.Register)
			api.POST("/auth/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.GET("/me", cfg.AuthHandler.Me)
		}

		// Roster
		if cfg.SectionHandler != nil {
			protected.GET("/sections", cfg.SectionHandler.List)
			protected.POST("/sections", cfg.SectionHandler.Create)
			protected.GET("/sections/:id", cfg.SectionHandler.Get)
			protected.PUT("/sections/:id", cfg.SectionHandler.Update)
			protected.DELETE("/sections/:id", cfg.SectionHandler.Delete)
			protected.GET("/sections/:id/gradebook.xlsx", cfg.SectionHandler.Gradebook)
		}
		if cfg.SubjectHandler != nil {
			protected.GET("/subjects", cfg.SubjectHandler.List)
			protected.POST("/subjects", cfg.SubjectHandler.Create)
			protected.DELETE("/subjects/:id", cfg.SubjectHandler.Delete)
		}
		if cfg.StudentHandler != nil {
			protected.GET("/students", cfg.StudentHandler.List)
			protected.POST("/students", cfg.StudentHandler.Create)
			protected.POST("/students/import", cfg.StudentHandler.Import)
			protected.GET("/students/:id", cfg.StudentHandler.Get)
			protected.PUT("/students/:id", cfg.StudentHandler.Update)
			protected.DELETE("/students/:id", cfg.StudentHandler.Delete)
		}

		// Grades
		if cfg.GradeHandler != nil {
			protected.GET("/students/:id/grades", cfg.GradeHandler.ListForStudent)
			protected.GET("/students/:id/grades/summary", cfg.GradeHandler.Summary)
			protected.POST("/grades", cfg.GradeHandler.Create)
			protected.PUT("/grades/:id", cfg.GradeHandler.Update)
			protected.DELETE("/grades/:id", cfg.GradeHandler.Delete)
		}

		// Calendar
		if cfg.ScheduleHandler != nil {
			protected.GET("/schedules", cfg.ScheduleHandler.List)
			protected.GET("/schedules/today", cfg.ScheduleHandler.Today)
			protected.POST("/schedules", cfg.ScheduleHandler.Create)
			protected.PUT("/schedules/:id", cfg.ScheduleHandler.Update)
			protected.DELETE("/schedules/:id", cfg.ScheduleHandler.Delete)
		}
		if cfg.MeetingHandler != nil {
			protected.GET("/meetings", cfg.MeetingHandler.List)
			protected.POST("/meetings", cfg.MeetingHandler.Schedule)
			protected.POST("/meetings/:id/cancel", cfg.MeetingHandler.Cancel)
		}

		// Communications
		if cfg.MessageHandler != nil {
			protected.GET("/messages", cfg.MessageHandler.List)
			protected.POST("/messages", cfg.MessageHandler.Send)
			protected.POST("/messages/:id/read", cfg.MessageHandler.MarkRead)
		}
		if cfg.NotificationHandler != nil {
			protected.GET("/notifications", cfg.NotificationHandler.List)
			protected.POST("/notifications/:id/read", cfg.NotificationHandler.MarkRead)
		}
		if cfg.CommunicationHandler != nil {
			protected.GET("/communications/bulk", cfg.CommunicationHandler.List)
			protected.POST("/communications/bulk", cfg.CommunicationHandler.SendBulk)
		}

		// Reports
		if cfg.ReportHandler != nil {
			protected.GET("/reports/students/:id/performance", cfg.ReportHandler.Performance)
			protected.POST("/reports/students/:id/send", cfg.ReportHandler.Send)
			protected.GET("/reports/sent", cfg.ReportHandler.ListSent)
		}

		// Assistant
		if cfg.AssistantHandler != nil {
			protected.POST("/assistant/chat", cfg.AssistantHandler.Chat)
			protected.GET("/assistant/history", cfg.AssistantHandler.History)
			protected.DELETE("/assistant/state", cfg.AssistantHandler.ResetState)
			protected.GET("/assistant/settings", cfg.AssistantHandler.GetSettings)
			protected.PUT("/assistant/settings", cfg.AssistantHandler.PutSettings)
		}
	}

	return r
}
