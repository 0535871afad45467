// Package assistant holds the vocabulary shared by the intent-routing
// pipeline: intents, slots, actions and replies.
package assistant

import "github.com/google/uuid"

type Intent string

const (
	IntentSendMessage       Intent = "send_message"
	IntentScheduleMeeting   Intent = "schedule_meeting"
	IntentGetGrades         Intent = "get_grades"
	IntentListStudents      Intent = "list_students"
	IntentGetSchedule       Intent = "get_schedule"
	IntentBulkMessage       Intent = "bulk_message"
	IntentPerformanceReport Intent = "performance_report"
	IntentHelp              Intent = "help"
	IntentUnknown           Intent = "unknown"
)

// ParseIntent maps a free-form name (as returned by the LLM) onto a known
// intent. Unrecognised names yield IntentUnknown.
func ParseIntent(s string) Intent {
	switch Intent(s) {
	case IntentSendMessage, IntentScheduleMeeting, IntentGetGrades, IntentListStudents,
		IntentGetSchedule, IntentBulkMessage, IntentPerformanceReport, IntentHelp:
		return Intent(s)
	}
	switch s {
	case "message", "send", "email":
		return IntentSendMessage
	case "meeting", "schedule":
		return IntentScheduleMeeting
	case "grades", "show_grades":
		return IntentGetGrades
	case "students", "roster":
		return IntentListStudents
	case "bulk", "broadcast", "announcement":
		return IntentBulkMessage
	case "report":
		return IntentPerformanceReport
	}
	return IntentUnknown
}

// Mutating reports whether executing the intent changes state or contacts
// someone.
func (i Intent) Mutating() bool {
	switch i {
	case IntentSendMessage, IntentScheduleMeeting, IntentBulkMessage:
		return true
	}
	return false
}

// Slot names.
const (
	SlotRecipient = "recipient"
	SlotContent   = "content"
	SlotDatetime  = "datetime"
	SlotTopic     = "topic"
	SlotAudience  = "audience"
	SlotDate      = "date"
	SlotEmail     = "email"
	SlotSend      = "send"
)

// SlotOrder is the order in which missing slots are asked for.
var SlotOrder = []string{SlotRecipient, SlotContent, SlotDatetime, SlotAudience}

type Slots map[string]string

func (s Slots) Get(name string) string {
	if s == nil {
		return ""
	}
	return s[name]
}

func (s Slots) Clone() Slots {
	out := make(Slots, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Merge copies non-empty values from other, overwriting existing keys.
func (s Slots) Merge(other Slots) Slots {
	out := s.Clone()
	for k, v := range other {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// RequiredSlots lists the slots an intent needs before it can run.
func RequiredSlots(i Intent) []string {
	switch i {
	case IntentSendMessage:
		return []string{SlotRecipient, SlotContent}
	case IntentScheduleMeeting:
		return []string{SlotRecipient, SlotDatetime}
	case IntentGetGrades, IntentPerformanceReport:
		return []string{SlotRecipient}
	case IntentBulkMessage:
		return []string{SlotContent, SlotAudience}
	}
	return nil
}

// NeedsStudent reports whether the recipient slot names a single student.
func NeedsStudent(i Intent) bool {
	switch i {
	case IntentSendMessage, IntentScheduleMeeting, IntentGetGrades, IntentPerformanceReport:
		return true
	}
	return false
}

// Missing returns the required slots still empty, in SlotOrder.
func Missing(i Intent, slots Slots) []string {
	req := map[string]bool{}
	for _, s := range RequiredSlots(i) {
		req[s] = true
	}
	var out []string
	for _, s := range SlotOrder {
		if req[s] && slots.Get(s) == "" {
			out = append(out, s)
		}
	}
	return out
}

const (
	SourceNLU = "nlu"
	SourceLLM = "llm"
)

type Action struct {
	Intent      Intent    `json:"intent"`
	StudentID   uuid.UUID `json:"student_id,omitempty"`
	StudentName string    `json:"student_name,omitempty"`
	Params      Slots     `json:"params,omitempty"`
	Confidence  float64   `json:"confidence"`
	Source      string    `json:"source"`
}

type Status string

const (
	StatusExecuted           Status = "executed"
	StatusNeedsConfirmation  Status = "needs_confirmation"
	StatusNeedsClarification Status = "needs_clarification"
	StatusAnswered           Status = "answered"
	StatusCancelled          Status = "cancelled"
	StatusError              Status = "error"
)

type Candidate struct {
	StudentID uuid.UUID `json:"student_id"`
	Name      string    `json:"name"`
	Score     float64   `json:"score"`
}

type Reply struct {
	Text       string      `json:"text"`
	Status     Status      `json:"status"`
	Intent     Intent      `json:"intent"`
	Action     *Action     `json:"action,omitempty"`
	Candidates []Candidate `json:"candidates,omitempty"`
	Data       any         `json:"data,omitempty"`
}

// Mutating reports whether running the action has side effects. A
// performance report is read-only unless it is being sent.
func (a Action) Mutating() bool {
	if a.Intent == IntentPerformanceReport {
		return a.Params.Get(SlotSend) == "true"
	}
	return a.Intent.Mutating()
}

// Audience slot values. A section audience is encoded as "section:<name>".
const (
	AudienceAll    = "all"
	AudienceAtRisk = "at_risk"

	audienceSectionPrefix = "section:"
)

func SectionAudience(name string) string { return audienceSectionPrefix + name }

// ParseAudience splits an audience slot into its kind (all, at_risk,
// section) and, for sections, the section name.
func ParseAudience(v string) (kind, section string) {
	switch {
	case v == AudienceAll || v == AudienceAtRisk:
		return v, ""
	case len(v) > len(audienceSectionPrefix) && v[:len(audienceSectionPrefix)] == audienceSectionPrefix:
		return "section", v[len(audienceSectionPrefix):]
	}
	return "", ""
}
