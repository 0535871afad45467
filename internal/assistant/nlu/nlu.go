// Package nlu is the rule-based classifier that runs before any LLM call.
package nlu

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/yungbote/educator-assistant-backend/internal/assistant"
)

const (
	PatternConfidence = 0.9
	KeywordConfidence = 0.6
)

type Classification struct {
	Intent     assistant.Intent `json:"intent"`
	Confidence float64          `json:"confidence"`
	Slots      assistant.Slots  `json:"slots"`
	// KeywordOnly is set when no full pattern matched.
	KeywordOnly bool `json:"keyword_only,omitempty"`
}

type Classifier struct {
	intents    []compiledIntent
	confirm    map[string]bool
	cancel     map[string]bool
	override   []string
	overrideRe []*regexp.Regexp
	pronouns   map[string]bool
	now        func() time.Time
}

type Option func(*Classifier)

// WithClock sets the time source used for relative dates.
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) {
		if now != nil {
			c.now = now
		}
	}
}

func New(lex *Lexicon, opts ...Option) (*Classifier, error) {
	if lex == nil {
		lex = DefaultLexicon()
	}
	intents, err := compile(lex)
	if err != nil {
		return nil, err
	}
	c := &Classifier{
		intents:  intents,
		confirm:  phraseSet(lex.Confirm),
		cancel:   phraseSet(lex.Cancel),
		pronouns: phraseSet(lex.Pronouns),
		now:      time.Now,
	}
	for _, p := range lex.Override {
		if p = normalize(p); p != "" {
			c.override = append(c.override, p)
			c.overrideRe = append(c.overrideRe, overridePattern(p))
		}
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *Classifier) Now() time.Time { return c.now() }

func (c *Classifier) Classify(text string) Classification {
	msg := prepare(text)
	if msg == "" {
		return Classification{Intent: assistant.IntentUnknown, Slots: assistant.Slots{}}
	}
	for _, ci := range c.intents {
		for _, p := range ci.patterns {
			m := p.re.FindStringSubmatch(msg)
			if m == nil {
				continue
			}
			slots := assistant.Slots{}
			for i, name := range p.re.SubexpNames() {
				if name == "" || i >= len(m) {
					continue
				}
				if v := strings.TrimSpace(m[i]); v != "" {
					slots[name] = v
				}
			}
			for k, v := range p.set {
				slots[k] = v
			}
			return Classification{
				Intent:     ci.intent,
				Confidence: PatternConfidence,
				Slots:      c.cleanSlots(ci.intent, slots),
			}
		}
	}

	norm := " " + normalize(msg) + " "
	best, bestHits := assistant.IntentUnknown, 0
	for _, ci := range c.intents {
		hits := 0
		for _, k := range ci.keywords {
			if strings.Contains(norm, " "+k+" ") {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = ci.intent, hits
		}
	}
	if bestHits == 0 {
		return Classification{Intent: assistant.IntentUnknown, Slots: assistant.Slots{}}
	}
	return Classification{
		Intent:      best,
		Confidence:  KeywordConfidence,
		Slots:       c.looseSlots(best, msg),
		KeywordOnly: true,
	}
}

// cleanSlots normalises captured groups into slot values.
func (c *Classifier) cleanSlots(intent assistant.Intent, raw assistant.Slots) assistant.Slots {
	out := assistant.Slots{}
	for k, v := range raw {
		switch k {
		case assistant.SlotRecipient:
			if r := CleanRecipient(c.StripOverride(v)); r != "" {
				out[k] = r
			}
		case assistant.SlotContent, assistant.SlotTopic:
			if s := unquote(c.StripOverride(v)); s != "" {
				out[k] = s
			}
		case assistant.SlotDatetime:
			if t, ok := ParseDateTime(v, c.now()); ok {
				out[k] = t.Format(time.RFC3339)
			}
		case assistant.SlotDate:
			if t, ok := ParseDate(v, c.now()); ok {
				out[k] = t.Format(time.DateOnly)
			}
		case assistant.SlotAudience:
			if a := NormalizeAudience(v); a != "" {
				out[k] = a
			}
		case "section":
			name := strings.TrimSpace(v)
			if intent == assistant.IntentBulkMessage {
				out[assistant.SlotAudience] = assistant.SectionAudience(name)
			} else {
				out[k] = name
			}
		default:
			out[k] = v
		}
	}
	return out
}

// looseSlots pulls what it can from a message that only matched keywords.
func (c *Classifier) looseSlots(intent assistant.Intent, msg string) assistant.Slots {
	out := assistant.Slots{}
	switch intent {
	case assistant.IntentScheduleMeeting:
		if t, ok := ParseDateTime(msg, c.now()); ok {
			out[assistant.SlotDatetime] = t.Format(time.RFC3339)
		}
	case assistant.IntentGetSchedule:
		if t, ok := ParseDate(msg, c.now()); ok {
			out[assistant.SlotDate] = t.Format(time.DateOnly)
		}
	case assistant.IntentBulkMessage:
		if a := NormalizeAudience(msg); a != "" {
			out[assistant.SlotAudience] = a
		}
	}
	return out
}

// FillSlot interprets a follow-up answer for a single slot. ok is false when
// the answer cannot fill it.
func (c *Classifier) FillSlot(slot, answer string) (string, bool) {
	answer = prepare(answer)
	if answer == "" {
		return "", false
	}
	switch slot {
	case assistant.SlotRecipient:
		r := CleanRecipient(answer)
		return r, r != ""
	case assistant.SlotDatetime:
		t, ok := ParseDateTime(answer, c.now())
		if !ok {
			return "", false
		}
		return t.Format(time.RFC3339), true
	case assistant.SlotDate:
		t, ok := ParseDate(answer, c.now())
		if !ok {
			return "", false
		}
		return t.Format(time.DateOnly), true
	case assistant.SlotAudience:
		if a := NormalizeAudience(answer); a != "" {
			return a, true
		}
		name := strings.TrimSpace(sectionPrefixRe.ReplaceAllString(answer, ""))
		if name == "" {
			return "", false
		}
		return assistant.SectionAudience(unquote(name)), true
	default:
		s := unquote(answer)
		return s, s != ""
	}
}

var (
	allAudienceRe    = regexp.MustCompile(`(?i)\b(everyone|everybody|all(?:\s+(?:of\s+)?my)?\s+(?:students|parents|families)|(?:the\s+)?whole\s+class|all)\b`)
	atRiskAudienceRe = regexp.MustCompile(`(?i)\b(at[\s\-]?risk|struggling|failing)\b`)
	classAudienceRe  = regexp.MustCompile(`(?i)^\s*(?:my\s+|the\s+)?class\s*$`)
	sectionPrefixRe  = regexp.MustCompile(`(?i)^(?:the\s+)?(?:section|class)\s+`)
)

// NormalizeAudience maps free text onto AudienceAll or AudienceAtRisk, or ""
// when the text names neither.
func NormalizeAudience(v string) string {
	switch {
	case atRiskAudienceRe.MatchString(v):
		return assistant.AudienceAtRisk
	case allAudienceRe.MatchString(v), classAudienceRe.MatchString(v):
		return assistant.AudienceAll
	}
	return ""
}

var (
	recipientTailRe = regexp.MustCompile(`(?i)(?:'s|')\s+(?:parents?|mom|mum|dad|mother|father|guardian|family)$`)
	recipientHeadRe = regexp.MustCompile(`(?i)^(?:to\s+|the\s+)?(?:parents?\s+of\s+|guardians?\s+of\s+)?`)
)

// CleanRecipient strips quoting, punctuation and guardian phrasing from a
// captured recipient.
func CleanRecipient(v string) string {
	v = unquote(v)
	v = recipientHeadRe.ReplaceAllString(v, "")
	v = strings.TrimRightFunc(v, func(r rune) bool { return unicode.IsPunct(r) && r != '\'' || unicode.IsSpace(r) })
	v = recipientTailRe.ReplaceAllString(v, "")
	return strings.TrimSpace(v)
}

func unquote(v string) string {
	v = strings.TrimSpace(v)
	for len(v) >= 2 {
		first, last := v[0], v[len(v)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			v = strings.TrimSpace(v[1 : len(v)-1])
			continue
		}
		break
	}
	return v
}

// prepare trims and collapses whitespace and folds typographic quotes.
func prepare(text string) string {
	text = strings.NewReplacer("’", "'", "‘", "'", "“", `"`, "”", `"`).Replace(text)
	return strings.Join(strings.Fields(text), " ")
}

// normalize lowercases and reduces text to words separated by single spaces.
func normalize(text string) string {
	text = strings.ToLower(prepare(text))
	var b strings.Builder
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func phraseSet(list []string) map[string]bool {
	out := make(map[string]bool, len(list))
	for _, p := range list {
		if p = normalize(p); p != "" {
			out[p] = true
		}
	}
	return out
}
