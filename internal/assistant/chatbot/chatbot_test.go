package chatbot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/educator-assistant-backend/internal/assistant"
	"github.com/yungbote/educator-assistant-backend/internal/platform/gemini"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
)

type fakeLLM struct {
	reply   string
	err     error
	system  string
	history []gemini.Message
}

func (f *fakeLLM) Chat(ctx context.Context, system string, history []gemini.Message) (string, error) {
	f.system = system
	f.history = history
	return f.reply, f.err
}

func TestExtractAction(t *testing.T) {
	reply := "Sure, I'll let Nicole's family know.\n<ACTION_JSON>{\"action\": \"send_message\", \"recipient\": \"Nicole Smith\", \"content\": \"Great job on the quiz\", \"confidence\": 0.85}</ACTION_JSON>"

	visible, action := ExtractAction(reply)
	assert.Equal(t, "Sure, I'll let Nicole's family know.", visible)
	require.NotNil(t, action)
	assert.Equal(t, assistant.IntentSendMessage, action.Intent)
	assert.Equal(t, "Nicole Smith", action.Params.Get(assistant.SlotRecipient))
	assert.Equal(t, "Great job on the quiz", action.Params.Get(assistant.SlotContent))
	assert.InDelta(t, 0.85, action.Confidence, 1e-9)
	assert.Equal(t, assistant.SourceLLM, action.Source)
}

func TestExtractActionDefaultsAndFailures(t *testing.T) {
	_, action := ExtractAction("<ACTION_JSON>\n```json\n{\"intent\": \"meeting\", \"student\": \"Marcus\", \"datetime\": \"2030-03-07T15:00:00Z\"}\n```\n</ACTION_JSON>")
	require.NotNil(t, action)
	assert.Equal(t, assistant.IntentScheduleMeeting, action.Intent)
	assert.Equal(t, "Marcus", action.Params.Get(assistant.SlotRecipient))
	assert.Equal(t, DefaultActionConfidence, action.Confidence)

	visible, action := ExtractAction("Hmm. <ACTION_JSON>{not json}</ACTION_JSON> Anything else?")
	assert.Nil(t, action)
	assert.Equal(t, "Hmm.  Anything else?", visible)

	_, action = ExtractAction(`<ACTION_JSON>{"action": "launch_rocket"}</ACTION_JSON>`)
	assert.Nil(t, action)
}

func TestInferAction(t *testing.T) {
	cases := []struct {
		text      string
		intent    assistant.Intent
		recipient string
	}{
		{text: "Okay! I'll send a message to Nicole about the trip.", intent: assistant.IntentSendMessage, recipient: "Nicole"},
		{text: "I can schedule a meeting with Marcus Lee next week.", intent: assistant.IntentScheduleMeeting, recipient: "Marcus Lee"},
		{text: "Here are Nicole Smith's grades so far.", intent: assistant.IntentGetGrades, recipient: "Nicole Smith"},
	}
	for _, tc := range cases {
		t.Run(string(tc.intent), func(t *testing.T) {
			a := InferAction(tc.text)
			require.NotNil(t, a)
			assert.Equal(t, tc.intent, a.Intent)
			assert.Equal(t, tc.recipient, a.Params.Get(assistant.SlotRecipient))
			assert.Equal(t, InferredConfidence, a.Confidence)
		})
	}
	assert.Nil(t, InferAction("Photosynthesis converts light into chemical energy."))
}

func TestRespond(t *testing.T) {
	llm := &fakeLLM{reply: "I'll send a message to Nicole right away."}
	bot := New(llm, logger.Nop())

	res, err := bot.Respond(context.Background(), Request{
		Message:      "let nicole know she did well",
		EducatorName: "Ms. Teacher",
		Roster:       []string{"Nicole Smith", "Marcus Lee"},
		History:      []gemini.Message{{Role: "user", Text: "hi"}, {Role: "model", Text: "hello"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "I'll send a message to Nicole right away.", res.Text)
	require.NotNil(t, res.Action)
	assert.Equal(t, assistant.IntentSendMessage, res.Action.Intent)

	assert.Contains(t, llm.system, "Nicole Smith, Marcus Lee")
	assert.Contains(t, llm.system, "Ms. Teacher")
	require.Len(t, llm.history, 3)
	assert.Equal(t, "let nicole know she did well", llm.history[2].Text)

	llm.err = errors.New("quota exceeded")
	_, err = bot.Respond(context.Background(), Request{Message: "hello"})
	assert.Error(t, err)

	var nilBot *Chatbot
	_, err = nilBot.Respond(context.Background(), Request{Message: "hello"})
	assert.Error(t, err)
}
