// Package dialog decides whether an action runs, needs a slot or needs the
// educator to confirm it.
package dialog

import (
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/educator-assistant-backend/internal/assistant"
	"github.com/yungbote/educator-assistant-backend/internal/domain/educator"
)

type Kind string

const (
	KindExecute Kind = "execute"
	KindAskSlot Kind = "ask_slot"
	KindConfirm Kind = "confirm"
)

const (
	DefaultAutoExecuteThreshold = 0.7
	DefaultAssistThreshold      = 0.95
)

type Decision struct {
	Kind   Kind
	Slot   string
	Prompt string
	// PersistAutonomous is set when an override phrase should switch the
	// educator to autonomous mode.
	PersistAutonomous bool
}

// Manager holds the confidence gates. The zero value uses the defaults.
type Manager struct {
	AutoExecuteThreshold float64
	AssistThreshold      float64
}

func NewManager(autoExecuteThreshold float64) *Manager {
	return &Manager{AutoExecuteThreshold: autoExecuteThreshold, AssistThreshold: DefaultAssistThreshold}
}

var defaultManager = &Manager{}

// Decide applies the default gates.
func Decide(action assistant.Action, missing []string, mode string, override bool) Decision {
	return defaultManager.Decide(action, missing, mode, override)
}

func (m *Manager) Decide(action assistant.Action, missing []string, mode string, override bool) Decision {
	if slot := firstMissing(missing); slot != "" {
		return Decision{Kind: KindAskSlot, Slot: slot, Prompt: SlotPrompt(action.Intent, slot)}
	}
	if override {
		return Decision{Kind: KindExecute, PersistAutonomous: true}
	}
	if !action.Mutating() {
		return Decision{Kind: KindExecute}
	}

	confirm := Decision{Kind: KindConfirm, Prompt: ConfirmPrompt(action)}
	switch mode {
	case educator.ModeAutonomous:
		if action.Confidence >= m.autoThreshold() {
			return Decision{Kind: KindExecute}
		}
		return confirm
	case educator.ModeManual:
		return confirm
	default:
		if action.Confidence >= m.assistThreshold() {
			return Decision{Kind: KindExecute}
		}
		return confirm
	}
}

func (m *Manager) autoThreshold() float64 {
	if m == nil || m.AutoExecuteThreshold <= 0 {
		return DefaultAutoExecuteThreshold
	}
	return m.AutoExecuteThreshold
}

func (m *Manager) assistThreshold() float64 {
	if m == nil || m.AssistThreshold <= 0 {
		return DefaultAssistThreshold
	}
	return m.AssistThreshold
}

// firstMissing picks the earliest missing slot in SlotOrder, falling back to
// the first listed one for slots outside that order.
func firstMissing(missing []string) string {
	if len(missing) == 0 {
		return ""
	}
	set := map[string]bool{}
	for _, s := range missing {
		set[s] = true
	}
	for _, s := range assistant.SlotOrder {
		if set[s] {
			return s
		}
	}
	return missing[0]
}

func SlotPrompt(intent assistant.Intent, slot string) string {
	switch slot {
	case assistant.SlotRecipient:
		switch intent {
		case assistant.IntentSendMessage:
			return "Who should I send the message to?"
		case assistant.IntentScheduleMeeting:
			return "Who is the meeting with?"
		case assistant.IntentGetGrades:
			return "Which student's grades would you like to see?"
		case assistant.IntentPerformanceReport:
			return "Which student is the report for?"
		}
		return "Which student do you mean?"
	case assistant.SlotContent:
		if intent == assistant.IntentBulkMessage {
			return "What should the announcement say?"
		}
		return "What should the message say?"
	case assistant.SlotDatetime:
		return `When should the meeting be? For example "tomorrow at 3pm".`
	case assistant.SlotAudience:
		return "Who should receive it: all students, at-risk students, or a section (for example \"section 5A\")?"
	}
	return fmt.Sprintf("Please provide the %s.", slot)
}

// ConfirmPrompt describes a mutating action and asks for a yes or no.
func ConfirmPrompt(a assistant.Action) string {
	return Describe(a) + " Reply yes to confirm or no to cancel."
}

// Describe renders an action as a question.
func Describe(a assistant.Action) string {
	who := a.StudentName
	if who == "" {
		who = a.Params.Get(assistant.SlotRecipient)
	}
	switch a.Intent {
	case assistant.IntentSendMessage:
		return fmt.Sprintf("Send %q to %s?", a.Params.Get(assistant.SlotContent), who)
	case assistant.IntentScheduleMeeting:
		s := fmt.Sprintf("Schedule a meeting with %s %s", who, FormatWhen(a.Params.Get(assistant.SlotDatetime)))
		if topic := a.Params.Get(assistant.SlotTopic); topic != "" {
			s += " about " + topic
		}
		return s + "?"
	case assistant.IntentBulkMessage:
		return fmt.Sprintf("Send %q to %s?", a.Params.Get(assistant.SlotContent), AudienceLabel(a.Params.Get(assistant.SlotAudience)))
	case assistant.IntentPerformanceReport:
		to := a.Params.Get(assistant.SlotEmail)
		if to == "" {
			to = "the guardian on file"
		}
		return fmt.Sprintf("Email the performance report for %s to %s?", who, to)
	}
	return fmt.Sprintf("Run %s?", strings.ReplaceAll(string(a.Intent), "_", " "))
}

// FormatWhen renders an RFC3339 slot value for prompts.
func FormatWhen(v string) string {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return v
	}
	return "on " + t.Format("Mon Jan 2 at 3:04 PM")
}

func AudienceLabel(v string) string {
	kind, section := assistant.ParseAudience(v)
	switch kind {
	case assistant.AudienceAll:
		return "all students"
	case assistant.AudienceAtRisk:
		return "at-risk students"
	case "section":
		return "section " + section
	}
	return v
}
