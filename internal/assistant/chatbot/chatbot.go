// Package chatbot forwards messages the fast classifier cannot handle to the
// LLM and recovers a structured action from its reply.
package chatbot

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/educator-assistant-backend/internal/assistant"
	"github.com/yungbote/educator-assistant-backend/internal/platform/gemini"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
)

const (
	maxRosterNames = 200
	maxHistory     = 10
)

type Request struct {
	Message      string
	EducatorName string
	Roster       []string
	History      []gemini.Message
}

type Result struct {
	// Text is the reply with any ACTION_JSON block removed.
	Text   string
	Action *assistant.Action
}

type Chatbot struct {
	llm gemini.Client
	log *logger.Logger
}

func New(llm gemini.Client, log *logger.Logger) *Chatbot {
	return &Chatbot{llm: llm, log: log.With("component", "Chatbot")}
}

func (c *Chatbot) Respond(ctx context.Context, req Request) (*Result, error) {
	if c == nil || c.llm == nil {
		return nil, fmt.Errorf("chatbot not configured")
	}
	history := req.History
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	msgs := make([]gemini.Message, 0, len(history)+1)
	msgs = append(msgs, history...)
	msgs = append(msgs, gemini.Message{Role: "user", Text: strings.TrimSpace(req.Message)})

	raw, err := c.llm.Chat(ctx, systemPrompt(req), msgs)
	if err != nil {
		return nil, err
	}
	visible, action := ExtractAction(raw)
	if action == nil {
		action = InferAction(visible)
	}
	if action != nil {
		c.log.Debug("llm proposed action", "intent", action.Intent, "confidence", action.Confidence)
	}
	return &Result{Text: visible, Action: action}, nil
}

func systemPrompt(req Request) string {
	roster := req.Roster
	if len(roster) > maxRosterNames {
		roster = roster[:maxRosterNames]
	}
	rosterText := "(no students yet)"
	if len(roster) > 0 {
		rosterText = strings.Join(roster, ", ")
	}
	teacher := strings.TrimSpace(req.EducatorName)
	if teacher == "" {
		teacher = "the teacher"
	}
	return strings.TrimSpace(strings.Join([]string{
		"You are a classroom assistant helping " + teacher + " manage students, grades, schedules and parent communication.",
		"Answer briefly and in plain language.",
		"When the teacher asks you to do something, pick ONE action from this list:",
		"- send_message: recipient, content",
		"- schedule_meeting: recipient, datetime (ISO 8601), topic",
		"- get_grades: recipient",
		"- list_students",
		"- get_schedule: date (YYYY-MM-DD)",
		"- bulk_message: audience (all | at_risk | section:<name>), content",
		"- performance_report: recipient",
		"Append the action at the very end of your reply as:",
		`<ACTION_JSON>{"action": "<name>", "recipient": "...", "content": "...", "datetime": "...", "confidence": 0.0}</ACTION_JSON>`,
		"Only use student names from the roster. Omit fields you do not know. Never invent grades.",
		"If no action is needed, do not include the block.",
		"",
		"ROSTER: " + rosterText,
	}, "\n"))
}
