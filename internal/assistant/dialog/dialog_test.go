package dialog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yungbote/educator-assistant-backend/internal/assistant"
	"github.com/yungbote/educator-assistant-backend/internal/domain/educator"
)

func action(intent assistant.Intent, conf float64) assistant.Action {
	return assistant.Action{
		Intent:      intent,
		StudentName: "Nicole Smith",
		Confidence:  conf,
		Params: assistant.Slots{
			assistant.SlotContent:  "Great work today",
			assistant.SlotDatetime: "2030-03-07T15:00:00Z",
		},
	}
}

func TestDecideGating(t *testing.T) {
	send := assistant.IntentSendMessage
	grades := assistant.IntentGetGrades

	cases := []struct {
		name     string
		intent   assistant.Intent
		conf     float64
		missing  []string
		mode     string
		override bool
		want     Kind
		slot     string
	}{
		{"missing_first_in_order", send, 0.9, []string{"content", "recipient"}, educator.ModeAutonomous, false, KindAskSlot, "recipient"},
		{"missing_beats_override", send, 0.9, []string{"content"}, educator.ModeAssist, true, KindAskSlot, "content"},
		{"missing_read_only", grades, 0.9, []string{"recipient"}, educator.ModeAssist, false, KindAskSlot, "recipient"},
		{"read_only_manual", grades, 0.6, nil, educator.ModeManual, false, KindExecute, ""},
		{"read_only_assist", grades, 0.5, nil, educator.ModeAssist, false, KindExecute, ""},
		{"manual_high_conf", send, 0.99, nil, educator.ModeManual, false, KindConfirm, ""},
		{"manual_override", send, 0.5, nil, educator.ModeManual, true, KindExecute, ""},
		{"assist_below", send, 0.9, nil, educator.ModeAssist, false, KindConfirm, ""},
		{"assist_at_gate", send, 0.95, nil, educator.ModeAssist, false, KindExecute, ""},
		{"assist_unset_mode", send, 0.9, nil, "", false, KindConfirm, ""},
		{"autonomous_above", send, 0.9, nil, educator.ModeAutonomous, false, KindExecute, ""},
		{"autonomous_at_gate", send, 0.7, nil, educator.ModeAutonomous, false, KindExecute, ""},
		{"autonomous_below", send, 0.6, nil, educator.ModeAutonomous, false, KindConfirm, ""},
		{"autonomous_llm_inferred", send, 0.5, nil, educator.ModeAutonomous, false, KindConfirm, ""},
		{"meeting_assist", assistant.IntentScheduleMeeting, 0.9, nil, educator.ModeAssist, false, KindConfirm, ""},
		{"bulk_autonomous", assistant.IntentBulkMessage, 0.9, nil, educator.ModeAutonomous, false, KindExecute, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Decide(action(tc.intent, tc.conf), tc.missing, tc.mode, tc.override)
			assert.Equal(t, tc.want, d.Kind)
			assert.Equal(t, tc.slot, d.Slot)
			assert.Equal(t, tc.override && tc.want == KindExecute, d.PersistAutonomous)
			if tc.want != KindExecute {
				assert.NotEmpty(t, d.Prompt)
			}
		})
	}
}

func TestDecidePerformanceReport(t *testing.T) {
	view := action(assistant.IntentPerformanceReport, 0.6)
	assert.Equal(t, KindExecute, Decide(view, nil, educator.ModeManual, false).Kind)

	send := view
	send.Params = assistant.Slots{assistant.SlotSend: "true", assistant.SlotEmail: "parent@example.com"}
	d := Decide(send, nil, educator.ModeAssist, false)
	assert.Equal(t, KindConfirm, d.Kind)
	assert.Contains(t, d.Prompt, "parent@example.com")
}

func TestManagerThreshold(t *testing.T) {
	m := NewManager(0.85)
	a := action(assistant.IntentSendMessage, 0.8)
	assert.Equal(t, KindConfirm, m.Decide(a, nil, educator.ModeAutonomous, false).Kind)
	a.Confidence = 0.85
	assert.Equal(t, KindExecute, m.Decide(a, nil, educator.ModeAutonomous, false).Kind)
}

func TestPrompts(t *testing.T) {
	assert.Equal(t, "Who should I send the message to?", SlotPrompt(assistant.IntentSendMessage, assistant.SlotRecipient))
	assert.Equal(t, "What should the announcement say?", SlotPrompt(assistant.IntentBulkMessage, assistant.SlotContent))

	a := action(assistant.IntentSendMessage, 0.9)
	assert.Equal(t, `Send "Great work today" to Nicole Smith? Reply yes to confirm or no to cancel.`, ConfirmPrompt(a))

	m := action(assistant.IntentScheduleMeeting, 0.9)
	m.Params[assistant.SlotTopic] = "reading progress"
	assert.Equal(t, "Schedule a meeting with Nicole Smith on Thu Mar 7 at 3:00 PM about reading progress?", Describe(m))

	b := assistant.Action{Intent: assistant.IntentBulkMessage, Params: assistant.Slots{
		assistant.SlotContent:  "No school Friday",
		assistant.SlotAudience: assistant.SectionAudience("5A"),
	}}
	assert.Equal(t, `Send "No school Friday" to section 5A?`, Describe(b))
	assert.Equal(t, "at-risk students", AudienceLabel(assistant.AudienceAtRisk))
	assert.Equal(t, "soon", FormatWhen("soon"))
}
