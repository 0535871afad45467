// Package executor runs resolved assistant actions against the services.
package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/educator-assistant-backend/internal/assistant"
	"github.com/yungbote/educator-assistant-backend/internal/data/repos"
	"github.com/yungbote/educator-assistant-backend/internal/domain/comms"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
	"github.com/yungbote/educator-assistant-backend/internal/services"
)

const (
	DefaultMeetingMinutes = 30
	maxListedStudents     = 50
)

type Result struct {
	Text string `json:"text"`
	Data any    `json:"data,omitempty"`
}

// Services are the in-process dependencies actions run against.
type Services struct {
	Students       services.StudentService
	Sections       services.SectionService
	Grades         services.GradeService
	Messages       services.MessageService
	Meetings       services.MeetingService
	Schedules      services.ScheduleService
	Communications services.CommunicationService
	Reports        services.ReportService
}

type Executor interface {
	Execute(ctx context.Context, a assistant.Action) (*Result, error)
}

type handler func(ctx context.Context, x *executor, a assistant.Action) (*Result, error)

var handlers = map[assistant.Intent]handler{
	assistant.IntentSendMessage:       sendMessage,
	assistant.IntentScheduleMeeting:   scheduleMeeting,
	assistant.IntentGetGrades:         getGrades,
	assistant.IntentListStudents:      listStudents,
	assistant.IntentGetSchedule:       getSchedule,
	assistant.IntentBulkMessage:       bulkMessage,
	assistant.IntentPerformanceReport: performanceReport,
}

type executor struct {
	log *logger.Logger
	svc Services
	now func() time.Time
}

type Option func(*executor)

func WithClock(now func() time.Time) Option {
	return func(x *executor) {
		if now != nil {
			x.now = now
		}
	}
}

func New(log *logger.Logger, svc Services, opts ...Option) Executor {
	x := &executor{log: log.With("service", "AssistantExecutor"), svc: svc, now: time.Now}
	for _, o := range opts {
		o(x)
	}
	return x
}

func (x *executor) Execute(ctx context.Context, a assistant.Action) (*Result, error) {
	h, ok := handlers[a.Intent]
	if !ok {
		return nil, fmt.Errorf("no executor for intent %q", a.Intent)
	}
	if assistant.NeedsStudent(a.Intent) && a.StudentID == uuid.Nil {
		return nil, fmt.Errorf("intent %q requires a resolved student", a.Intent)
	}
	res, err := h(ctx, x, a)
	if err != nil {
		x.log.Warn("Assistant action failed", "intent", a.Intent, "error", err)
		return nil, err
	}
	x.log.Debug("Assistant action executed", "intent", a.Intent, "student_id", a.StudentID)
	return res, nil
}

func sendMessage(ctx context.Context, x *executor, a assistant.Action) (*Result, error) {
	channel := a.Params.Get("channel")
	if !comms.ValidChannel(channel) {
		channel = comms.ChannelInApp
	}
	msg, err := x.svc.Messages.Send(ctx, services.SendMessageInput{
		StudentID: a.StudentID,
		Subject:   a.Params.Get("subject"),
		Body:      a.Params.Get(assistant.SlotContent),
		Channel:   channel,
	})
	if err != nil {
		return nil, err
	}
	text := fmt.Sprintf("Message sent to %s.", a.StudentName)
	switch msg.Status {
	case comms.StatusQueued:
		text = fmt.Sprintf("Message to %s queued for delivery.", a.StudentName)
	case comms.StatusFailed:
		text = fmt.Sprintf("I saved the message to %s but delivery failed.", a.StudentName)
	}
	return &Result{Text: text, Data: msg}, nil
}

func scheduleMeeting(ctx context.Context, x *executor, a assistant.Action) (*Result, error) {
	startsAt, err := time.Parse(time.RFC3339, a.Params.Get(assistant.SlotDatetime))
	if err != nil {
		return nil, fmt.Errorf("invalid meeting time %q: %w", a.Params.Get(assistant.SlotDatetime), err)
	}
	topic := a.Params.Get(assistant.SlotTopic)
	title := "Meeting with " + a.StudentName
	if topic != "" {
		title = fmt.Sprintf("Meeting with %s: %s", a.StudentName, topic)
	}
	m, err := x.svc.Meetings.Schedule(ctx, services.MeetingInput{
		StudentID:       a.StudentID,
		Title:           title,
		StartsAt:        startsAt,
		DurationMinutes: DefaultMeetingMinutes,
		Notes:           topic,
	})
	if err != nil {
		return nil, err
	}
	return &Result{
		Text: fmt.Sprintf("Meeting with %s scheduled for %s.", a.StudentName, m.StartsAt.Format("Mon Jan 2 at 3:04 PM")),
		Data: m,
	}, nil
}

func getGrades(ctx context.Context, x *executor, a assistant.Action) (*Result, error) {
	sum, err := x.svc.Grades.Summary(ctx, a.StudentID)
	if err != nil {
		return nil, err
	}
	if sum.Count == 0 {
		return &Result{Text: fmt.Sprintf("%s has no grades yet.", sum.StudentName), Data: sum}, nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: average %.1f%% (%s) across %d grades.", sum.StudentName, sum.Average, sum.Letter, sum.Count)
	if len(sum.BySubject) > 0 {
		parts := make([]string, 0, len(sum.BySubject))
		for _, s := range sum.BySubject {
			parts = append(parts, fmt.Sprintf("%s %.1f%% (%s)", s.Subject, s.Average, s.Letter))
		}
		b.WriteString(" By subject: " + strings.Join(parts, ", ") + ".")
	}
	return &Result{Text: b.String(), Data: sum}, nil
}

func listStudents(ctx context.Context, x *executor, a assistant.Action) (*Result, error) {
	var filter repos.StudentFilter
	sectionName := ""
	if name := a.Params.Get("section"); name != "" {
		sec, err := x.svc.Sections.FindByName(ctx, name)
		if err != nil {
			return nil, err
		}
		filter.SectionID = &sec.ID
		sectionName = sec.Name
	}
	list, err := x.svc.Students.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		if sectionName != "" {
			return &Result{Text: fmt.Sprintf("Section %s has no students yet.", sectionName), Data: list}, nil
		}
		return &Result{Text: "You have no students yet.", Data: list}, nil
	}
	names := make([]string, 0, len(list))
	for i, st := range list {
		if i == maxListedStudents {
			names = append(names, fmt.Sprintf("and %d more", len(list)-maxListedStudents))
			break
		}
		names = append(names, st.FullName())
	}
	head := fmt.Sprintf("You have %d students", len(list))
	if sectionName != "" {
		head = fmt.Sprintf("Section %s has %d students", sectionName, len(list))
	}
	return &Result{Text: head + ": " + strings.Join(names, ", ") + ".", Data: list}, nil
}

func getSchedule(ctx context.Context, x *executor, a assistant.Action) (*Result, error) {
	now := x.now()
	day := now
	if v := a.Params.Get(assistant.SlotDate); v != "" {
		d, err := time.ParseInLocation(time.DateOnly, v, now.Location())
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", v, err)
		}
		day = d
	}
	occ, err := x.svc.Schedules.ForDay(ctx, day)
	if err != nil {
		return nil, err
	}
	label := day.Format("Mon Jan 2")
	if len(occ) == 0 {
		return &Result{Text: fmt.Sprintf("Nothing on your schedule for %s.", label), Data: occ}, nil
	}
	lines := make([]string, 0, len(occ)+1)
	lines = append(lines, fmt.Sprintf("Your schedule for %s:", label))
	for _, o := range occ {
		line := fmt.Sprintf("- %s-%s %s", o.StartsAt.Format("15:04"), o.EndsAt.Format("15:04"), o.Title)
		if o.Location != "" {
			line += " (" + o.Location + ")"
		}
		lines = append(lines, line)
	}
	return &Result{Text: strings.Join(lines, "\n"), Data: occ}, nil
}

func bulkMessage(ctx context.Context, x *executor, a assistant.Action) (*Result, error) {
	kind, sectionName := assistant.ParseAudience(a.Params.Get(assistant.SlotAudience))
	in := services.BulkInput{
		Audience: kind,
		Subject:  a.Params.Get("subject"),
		Body:     a.Params.Get(assistant.SlotContent),
		Channel:  comms.ChannelInApp,
	}
	label := "all students"
	switch kind {
	case comms.AudienceSection:
		sec, err := x.svc.Sections.FindByName(ctx, sectionName)
		if err != nil {
			return nil, err
		}
		in.SectionID = &sec.ID
		label = "section " + sec.Name
	case comms.AudienceAtRisk:
		label = "at-risk students"
	case comms.AudienceAll:
	default:
		return nil, fmt.Errorf("unknown audience %q", a.Params.Get(assistant.SlotAudience))
	}
	c, err := x.svc.Communications.SendBulk(ctx, in)
	if err != nil {
		return nil, err
	}
	text := fmt.Sprintf("Sent to %d of %d recipients in %s.", c.SentCount, c.RecipientCount, label)
	if c.FailedCount > 0 {
		text += fmt.Sprintf(" %d failed.", c.FailedCount)
	}
	return &Result{Text: text, Data: c}, nil
}

func performanceReport(ctx context.Context, x *executor, a assistant.Action) (*Result, error) {
	if a.Params.Get(assistant.SlotSend) == "true" {
		sr, err := x.svc.Reports.SendPerformanceReport(ctx, a.StudentID, a.Params.Get(assistant.SlotEmail))
		if err != nil {
			return nil, err
		}
		text := fmt.Sprintf("Performance report for %s sent to %s.", a.StudentName, sr.RecipientEmail)
		switch sr.Status {
		case comms.StatusQueued:
			text = fmt.Sprintf("Performance report for %s queued for %s.", a.StudentName, sr.RecipientEmail)
		case comms.StatusFailed:
			text = fmt.Sprintf("I could not email the performance report for %s to %s.", a.StudentName, sr.RecipientEmail)
		}
		return &Result{Text: text, Data: sr}, nil
	}
	rep, err := x.svc.Reports.StudentPerformance(ctx, a.StudentID)
	if err != nil {
		return nil, err
	}
	sum := rep.Summary
	if sum == nil || sum.Count == 0 {
		return &Result{Text: fmt.Sprintf("There are no grades for %s yet, so there is nothing to report.", a.StudentName), Data: rep}, nil
	}
	return &Result{
		Text: fmt.Sprintf("%s: average %.1f%% (%s) across %d grades, trend %s (%+.1f).",
			sum.StudentName, sum.Average, sum.Letter, sum.Count, rep.Trend, rep.TrendDelta),
		Data: rep,
	}, nil
}
