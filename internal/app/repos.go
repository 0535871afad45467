package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/educator-assistant-backend/internal/data/repos"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
)

type Repos struct {
	Educator      repos.EducatorRepo
	Section       repos.SectionRepo
	Subject       repos.SubjectRepo
	Student       repos.StudentRepo
	Grade         repos.GradeRepo
	Schedule      repos.ScheduleRepo
	Meeting       repos.MeetingRepo
	Message       repos.MessageRepo
	Notification  repos.NotificationRepo
	Communication repos.CommunicationRepo
	SentReport    repos.SentReportRepo
	AssistantTurn repos.AssistantTurnRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Educator:      repos.NewEducatorRepo(db, log),
		Section:       repos.NewSectionRepo(db, log),
		Subject:       repos.NewSubjectRepo(db, log),
		Student:       repos.NewStudentRepo(db, log),
		Grade:         repos.NewGradeRepo(db, log),
		Schedule:      repos.NewScheduleRepo(db, log),
		Meeting:       repos.NewMeetingRepo(db, log),
		Message:       repos.NewMessageRepo(db, log),
		Notification:  repos.NewNotificationRepo(db, log),
		Communication: repos.NewCommunicationRepo(db, log),
		SentReport:    repos.NewSentReportRepo(db, log),
		AssistantTurn: repos.NewAssistantTurnRepo(db, log),
	}
}
