package domain

import (
	"github.com/yungbote/educator-assistant-backend/internal/domain/assistant"
	"github.com/yungbote/educator-assistant-backend/internal/domain/calendar"
	"github.com/yungbote/educator-assistant-backend/internal/domain/comms"
	"github.com/yungbote/educator-assistant-backend/internal/domain/educator"
	"github.com/yungbote/educator-assistant-backend/internal/domain/gradebook"
	"github.com/yungbote/educator-assistant-backend/internal/domain/roster"
)

type Educator = educator.Educator

type Section = roster.Section
type Subject = roster.Subject
type Student = roster.Student

type Grade = gradebook.Grade

type Schedule = calendar.Schedule
type Meeting = calendar.Meeting

type Message = comms.Message
type Notification = comms.Notification
type Communication = comms.Communication
type SentReport = comms.SentReport

type AssistantTurn = assistant.Turn

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&Educator{},
		&Section{},
		&Subject{},
		&Student{},
		&Grade{},
		&Schedule{},
		&Meeting{},
		&Message{},
		&Notification{},
		&Communication{},
		&SentReport{},
		&AssistantTurn{},
	}
}
