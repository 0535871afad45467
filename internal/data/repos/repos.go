package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/educator-assistant-backend/internal/data/repos/assistant"
	"github.com/yungbote/educator-assistant-backend/internal/data/repos/calendar"
	"github.com/yungbote/educator-assistant-backend/internal/data/repos/comms"
	"github.com/yungbote/educator-assistant-backend/internal/data/repos/educator"
	"github.com/yungbote/educator-assistant-backend/internal/data/repos/gradebook"
	"github.com/yungbote/educator-assistant-backend/internal/data/repos/roster"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
)

type EducatorRepo = educator.EducatorRepo

type SectionRepo = roster.SectionRepo
type SubjectRepo = roster.SubjectRepo
type StudentRepo = roster.StudentRepo
type StudentFilter = roster.StudentFilter

type GradeRepo = gradebook.GradeRepo

type ScheduleRepo = calendar.ScheduleRepo
type MeetingRepo = calendar.MeetingRepo

type MessageRepo = comms.MessageRepo
type MessageFilter = comms.MessageFilter
type NotificationRepo = comms.NotificationRepo
type CommunicationRepo = comms.CommunicationRepo
type SentReportRepo = comms.SentReportRepo

type AssistantTurnRepo = assistant.TurnRepo

func NewEducatorRepo(db *gorm.DB, log *logger.Logger) EducatorRepo {
	return educator.NewEducatorRepo(db, log)
}

func NewSectionRepo(db *gorm.DB, log *logger.Logger) SectionRepo {
	return roster.NewSectionRepo(db, log)
}

func NewSubjectRepo(db *gorm.DB, log *logger.Logger) SubjectRepo {
	return roster.NewSubjectRepo(db, log)
}

func NewStudentRepo(db *gorm.DB, log *logger.Logger) StudentRepo {
	return roster.NewStudentRepo(db, log)
}

func NewGradeRepo(db *gorm.DB, log *logger.Logger) GradeRepo {
	return gradebook.NewGradeRepo(db, log)
}

func NewScheduleRepo(db *gorm.DB, log *logger.Logger) ScheduleRepo {
	return calendar.NewScheduleRepo(db, log)
}

func NewMeetingRepo(db *gorm.DB, log *logger.Logger) MeetingRepo {
	return calendar.NewMeetingRepo(db, log)
}

func NewMessageRepo(db *gorm.DB, log *logger.Logger) MessageRepo {
	return comms.NewMessageRepo(db, log)
}

func NewNotificationRepo(db *gorm.DB, log *logger.Logger) NotificationRepo {
	return comms.NewNotificationRepo(db, log)
}

func NewCommunicationRepo(db *gorm.DB, log *logger.Logger) CommunicationRepo {
	return comms.NewCommunicationRepo(db, log)
}

func NewSentReportRepo(db *gorm.DB, log *logger.Logger) SentReportRepo {
	return comms.NewSentReportRepo(db, log)
}

func NewAssistantTurnRepo(db *gorm.DB, log *logger.Logger) AssistantTurnRepo {
	return assistant.NewTurnRepo(db, log)
}
