package chatbot

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/yungbote/educator-assistant-backend/internal/assistant"
)

const (
	// DefaultActionConfidence applies when an ACTION_JSON block omits one.
	DefaultActionConfidence = 0.8
	// InferredConfidence applies to actions recovered from prose.
	InferredConfidence = 0.5
)

var actionBlockRe = regexp.MustCompile(`(?s)<ACTION_JSON>\s*(.*?)\s*</ACTION_JSON>`)

type actionJSON struct {
	Action     string   `json:"action"`
	Intent     string   `json:"intent"`
	Recipient  string   `json:"recipient"`
	Student    string   `json:"student"`
	Content    string   `json:"content"`
	Message    string   `json:"message"`
	Datetime   string   `json:"datetime"`
	Date       string   `json:"date"`
	Topic      string   `json:"topic"`
	Audience   string   `json:"audience"`
	Confidence *float64 `json:"confidence"`
}

// ExtractAction removes every ACTION_JSON block from reply and returns the
// first one that parses into a known intent.
func ExtractAction(reply string) (string, *assistant.Action) {
	var action *assistant.Action
	for _, m := range actionBlockRe.FindAllStringSubmatch(reply, -1) {
		if action != nil {
			break
		}
		a, err := parseActionJSON(m[1])
		if err == nil {
			action = a
		}
	}
	visible := strings.TrimSpace(actionBlockRe.ReplaceAllString(reply, ""))
	return visible, action
}

func parseActionJSON(raw string) (*assistant.Action, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	var aj actionJSON
	if err := json.Unmarshal([]byte(raw), &aj); err != nil {
		return nil, fmt.Errorf("decode action json: %w", err)
	}
	name := firstNonEmpty(aj.Action, aj.Intent)
	intent := assistant.ParseIntent(strings.ToLower(strings.TrimSpace(name)))
	if intent == assistant.IntentUnknown {
		return nil, fmt.Errorf("unknown action %q", name)
	}
	slots := assistant.Slots{}
	set := func(k, v string) {
		if v = strings.TrimSpace(v); v != "" {
			slots[k] = v
		}
	}
	set(assistant.SlotRecipient, firstNonEmpty(aj.Recipient, aj.Student))
	set(assistant.SlotContent, firstNonEmpty(aj.Content, aj.Message))
	set(assistant.SlotDatetime, aj.Datetime)
	set(assistant.SlotDate, aj.Date)
	set(assistant.SlotTopic, aj.Topic)
	set(assistant.SlotAudience, aj.Audience)

	conf := DefaultActionConfidence
	if aj.Confidence != nil && *aj.Confidence > 0 {
		conf = *aj.Confidence
	}
	if conf > 1 {
		conf = 1
	}
	return &assistant.Action{
		Intent:     intent,
		Params:     slots,
		Confidence: conf,
		Source:     assistant.SourceLLM,
	}, nil
}

const namePattern = `([A-Z][\w'\-]*(?:\s+[A-Z][\w'\-]*)?)`

var inferRules = []struct {
	re     *regexp.Regexp
	intent assistant.Intent
}{
	{regexp.MustCompile(`(?i:i(?:'ll| will| can)\s+(?:send|write)\s+(?:an?\s+)?(?:message|note|email)\s+to)\s+` + namePattern), assistant.IntentSendMessage},
	{regexp.MustCompile(`(?i:(?:i(?:'ll| will| can)\s+)?schedule\s+(?:an?\s+)?(?:meeting|conference)\s+with)\s+` + namePattern), assistant.IntentScheduleMeeting},
	{regexp.MustCompile(`(?i:(?:here are|pull(?:ing)? up|show(?:ing)?(?: you)?|let me get))\s+` + namePattern + `(?:'s|')\s+(?i:grades)`), assistant.IntentGetGrades},
}

// InferAction derives an action from prose such as "I'll send a message to
// Nicole" when the model omitted the ACTION_JSON block.
func InferAction(text string) *assistant.Action {
	for _, r := range inferRules {
		m := r.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		return &assistant.Action{
			Intent:     r.intent,
			Params:     assistant.Slots{assistant.SlotRecipient: strings.TrimSpace(m[1])},
			Confidence: InferredConfidence,
			Source:     assistant.SourceLLM,
		}
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
