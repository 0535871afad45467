package nlu

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/educator-assistant-backend/internal/assistant"
)

// Wednesday.
var testNow = time.Date(2030, 3, 6, 10, 0, 0, 0, time.UTC)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := New(DefaultLexicon(), WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	return c
}

func TestClassifyPatterns(t *testing.T) {
	c := newTestClassifier(t)
	cases := []struct {
		name   string
		msg    string
		intent assistant.Intent
		slots  assistant.Slots
	}{
		{
			name:   "message_with_content",
			msg:    "Send a message to Nicole Smith saying the field trip is Friday",
			intent: assistant.IntentSendMessage,
			slots:  assistant.Slots{"recipient": "Nicole Smith", "content": "the field trip is Friday"},
		},
		{
			name:   "message_missing_content",
			msg:    "send a message to Nicole",
			intent: assistant.IntentSendMessage,
			slots:  assistant.Slots{"recipient": "Nicole"},
		},
		{
			name:   "message_pronoun",
			msg:    "send him a message saying great job",
			intent: assistant.IntentSendMessage,
			slots:  assistant.Slots{"recipient": "him", "content": "great job"},
		},
		{
			name:   "tell_guardian",
			msg:    "tell Nicole's parents that she did great on the quiz",
			intent: assistant.IntentSendMessage,
			slots:  assistant.Slots{"recipient": "Nicole", "content": "she did great on the quiz"},
		},
		{
			name:   "meeting_with_time",
			msg:    "Schedule a meeting with Nicole tomorrow at 3pm",
			intent: assistant.IntentScheduleMeeting,
			slots:  assistant.Slots{"recipient": "Nicole", "datetime": "2030-03-07T15:00:00Z"},
		},
		{
			name:   "meeting_with_topic",
			msg:    "schedule a meeting with Marcus Lee about his essay next monday",
			intent: assistant.IntentScheduleMeeting,
			slots:  assistant.Slots{"recipient": "Marcus Lee", "topic": "his essay", "datetime": "2030-03-11T09:00:00Z"},
		},
		{
			name:   "meeting_without_time",
			msg:    "schedule a meeting with Nicole",
			intent: assistant.IntentScheduleMeeting,
			slots:  assistant.Slots{"recipient": "Nicole"},
		},
		{
			name:   "grades_possessive",
			msg:    "show me Nicole’s grades",
			intent: assistant.IntentGetGrades,
			slots:  assistant.Slots{"recipient": "Nicole"},
		},
		{
			name:   "grades_pronoun",
			msg:    "show her grades",
			intent: assistant.IntentGetGrades,
			slots:  assistant.Slots{"recipient": "her"},
		},
		{
			name:   "list_students",
			msg:    "list my students",
			intent: assistant.IntentListStudents,
			slots:  assistant.Slots{},
		},
		{
			name:   "schedule_today",
			msg:    "what's my schedule today?",
			intent: assistant.IntentGetSchedule,
			slots:  assistant.Slots{"date": "2030-03-06"},
		},
		{
			name:   "bulk_section",
			msg:    "send to section 7B: bring your permission slips",
			intent: assistant.IntentBulkMessage,
			slots:  assistant.Slots{"audience": "section:7B", "content": "bring your permission slips"},
		},
		{
			name:   "bulk_everyone",
			msg:    "message everyone: no school Monday",
			intent: assistant.IntentBulkMessage,
			slots:  assistant.Slots{"audience": "all", "content": "no school Monday"},
		},
		{
			name:   "bulk_at_risk",
			msg:    "send a message to at-risk students saying tutoring starts Tuesday",
			intent: assistant.IntentBulkMessage,
			slots:  assistant.Slots{"audience": "at_risk", "content": "tutoring starts Tuesday"},
		},
		{
			name:   "bulk_the_class",
			msg:    "send a message to the class saying hi",
			intent: assistant.IntentBulkMessage,
			slots:  assistant.Slots{"audience": "all", "content": "hi"},
		},
		{
			name:   "bulk_tell_my_class",
			msg:    "tell my class that the bus is late",
			intent: assistant.IntentBulkMessage,
			slots:  assistant.Slots{"audience": "all", "content": "the bus is late"},
		},
		{
			name:   "message_with_override",
			msg:    "send a message to Marcus Lee saying see you at practice, don't ask me again",
			intent: assistant.IntentSendMessage,
			slots:  assistant.Slots{"recipient": "Marcus Lee", "content": "see you at practice"},
		},
		{
			name:   "report_view",
			msg:    "performance report for Nicole",
			intent: assistant.IntentPerformanceReport,
			slots:  assistant.Slots{"recipient": "Nicole"},
		},
		{
			name:   "report_send",
			msg:    "send a progress report for Nicole to mom@example.com",
			intent: assistant.IntentPerformanceReport,
			slots:  assistant.Slots{"recipient": "Nicole", "email": "mom@example.com", "send": "true"},
		},
		{
			name:   "help",
			msg:    "help",
			intent: assistant.IntentHelp,
			slots:  assistant.Slots{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Classify(tc.msg)
			assert.Equal(t, tc.intent, got.Intent)
			assert.Equal(t, PatternConfidence, got.Confidence)
			assert.False(t, got.KeywordOnly)
			assert.Equal(t, tc.slots, got.Slots)
		})
	}
}

func TestClassifyKeywordsAndUnknown(t *testing.T) {
	c := newTestClassifier(t)

	kw := c.Classify("I want to talk about grades")
	assert.Equal(t, assistant.IntentGetGrades, kw.Intent)
	assert.Equal(t, KeywordConfidence, kw.Confidence)
	assert.True(t, kw.KeywordOnly)
	assert.Empty(t, kw.Slots)

	meet := c.Classify("can we set up a conference with the Lees on friday")
	assert.Equal(t, assistant.IntentScheduleMeeting, meet.Intent)
	assert.Equal(t, "2030-03-08T09:00:00Z", meet.Slots.Get(assistant.SlotDatetime))

	unknown := c.Classify("what's the weather like")
	assert.Equal(t, assistant.IntentUnknown, unknown.Intent)
	assert.Zero(t, unknown.Confidence)

	empty := c.Classify("   ")
	assert.Equal(t, assistant.IntentUnknown, empty.Intent)
}

func TestParseDateTime(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{in: "at 3", want: time.Date(2030, 3, 6, 15, 0, 0, 0, time.UTC), ok: true},
		{in: "9am", want: time.Date(2030, 3, 7, 9, 0, 0, 0, time.UTC), ok: true},
		{in: "2030-04-01 14:30", want: time.Date(2030, 4, 1, 14, 30, 0, 0, time.UTC), ok: true},
		{in: "friday", want: time.Date(2030, 3, 8, 9, 0, 0, 0, time.UTC), ok: true},
		{in: "next wednesday at 4:15 pm", want: time.Date(2030, 3, 13, 16, 15, 0, 0, time.UTC), ok: true},
		{in: "noon tomorrow", want: time.Date(2030, 3, 7, 12, 0, 0, 0, time.UTC), ok: true},
		{in: "the day after tomorrow at 12am", want: time.Date(2030, 3, 8, 0, 0, 0, 0, time.UTC), ok: true},
		{in: "whenever works", ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseDateTime(tc.in, testNow)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.True(t, tc.want.Equal(got), "got %s want %s", got, tc.want)
			}
		})
	}
}

func TestDialogPhrases(t *testing.T) {
	c := newTestClassifier(t)

	for _, s := range []string{"yes", "Yes!", "ok", "yes please", "go ahead", "yes send it"} {
		assert.True(t, c.IsConfirm(s), s)
	}
	for _, s := range []string{"no", "yes no maybe later", "Nicole", "what?"} {
		assert.False(t, c.IsConfirm(s), s)
	}

	for _, s := range []string{"cancel", "never mind", "No."} {
		assert.True(t, c.IsCancel(s), s)
	}
	assert.False(t, c.IsCancel("no homework tonight"))
	assert.False(t, c.IsCancel("N Smith"))

	assert.True(t, c.HasOverride("Yes, and don't ask me again"))
	assert.True(t, c.HasOverride("just do it"))
	assert.False(t, c.HasOverride("do it"))

	assert.Equal(t, "see you at practice", c.StripOverride("see you at practice, don't ask me again"))
	assert.Equal(t, "Bring your textbook", c.StripOverride("Bring your textbook and just do it."))
	assert.Equal(t, "send it", c.StripOverride("Don’t ask me again - send it"))
	assert.Equal(t, "", c.StripOverride("don't ask me again"))
	assert.Equal(t, "do it tomorrow", c.StripOverride("do it tomorrow"))

	assert.True(t, c.PronounReference("that student"))
	assert.True(t, c.PronounReference("Her"))
	assert.False(t, c.PronounReference("Nicole"))
}

func TestParseChoice(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want int
		ok   bool
	}{
		{in: "1", n: 3, want: 0, ok: true},
		{in: "#2", n: 3, want: 1, ok: true},
		{in: "the second one", n: 3, want: 1, ok: true},
		{in: "3rd", n: 3, want: 2, ok: true},
		{in: "last", n: 4, want: 3, ok: true},
		{in: "one", n: 2, want: 0, ok: true},
		{in: "option 2", n: 2, want: 1, ok: true},
		{in: "4", n: 3, ok: false},
		{in: "Nicole", n: 3, ok: false},
		{in: "", n: 3, ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseChoice(tc.in, tc.n)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestFillSlot(t *testing.T) {
	c := newTestClassifier(t)

	v, ok := c.FillSlot(assistant.SlotDatetime, "tomorrow at 2:30pm")
	require.True(t, ok)
	assert.Equal(t, "2030-03-07T14:30:00Z", v)

	_, ok = c.FillSlot(assistant.SlotDatetime, "sometime soon")
	assert.False(t, ok)

	v, ok = c.FillSlot(assistant.SlotAudience, "section 7B")
	require.True(t, ok)
	assert.Equal(t, "section:7B", v)

	v, ok = c.FillSlot(assistant.SlotAudience, "all my students")
	require.True(t, ok)
	assert.Equal(t, assistant.AudienceAll, v)

	v, ok = c.FillSlot(assistant.SlotContent, `"Please bring your textbook."`)
	require.True(t, ok)
	assert.Equal(t, "Please bring your textbook.", v)

	v, ok = c.FillSlot(assistant.SlotRecipient, "Nicole Smith.")
	require.True(t, ok)
	assert.Equal(t, "Nicole Smith", v)
}

func TestLoadLexiconOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
intents:
  - name: list_students
    patterns:
      - regex: '^roll call$'
    keywords: [kids]
confirm: [aye]
cancel: [nay]
`), 0o600))

	lex, err := LoadLexicon(path)
	require.NoError(t, err)
	c, err := New(lex)
	require.NoError(t, err)
	assert.Equal(t, assistant.IntentListStudents, c.Classify("Roll call").Intent)
	assert.True(t, c.IsConfirm("aye"))
	assert.Equal(t, assistant.IntentUnknown, c.Classify("send a message to Nicole").Intent)

	_, err = ParseLexicon([]byte("intents:\n  - name: teleport\n"))
	assert.Error(t, err)

	_, err = New(&Lexicon{Intents: []IntentSpec{{Name: "help", Patterns: []PatternSpec{{Regex: "("}}}}})
	assert.Error(t, err)

	_, err = LoadLexicon(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
