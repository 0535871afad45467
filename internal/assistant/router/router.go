// Package router runs one assistant turn: classify, resolve, decide and
// execute, carrying pending clarifications across turns in the state store.
package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/educator-assistant-backend/internal/assistant"
	"github.com/yungbote/educator-assistant-backend/internal/assistant/chatbot"
	"github.com/yungbote/educator-assistant-backend/internal/assistant/dialog"
	"github.com/yungbote/educator-assistant-backend/internal/assistant/executor"
	"github.com/yungbote/educator-assistant-backend/internal/assistant/nlu"
	"github.com/yungbote/educator-assistant-backend/internal/assistant/resolver"
	"github.com/yungbote/educator-assistant-backend/internal/assistant/state"
	"github.com/yungbote/educator-assistant-backend/internal/data/repos"
	types "github.com/yungbote/educator-assistant-backend/internal/domain"
	domainassistant "github.com/yungbote/educator-assistant-backend/internal/domain/assistant"
	"github.com/yungbote/educator-assistant-backend/internal/domain/educator"
	"github.com/yungbote/educator-assistant-backend/internal/observability"
	"github.com/yungbote/educator-assistant-backend/internal/platform/apierr"
	"github.com/yungbote/educator-assistant-backend/internal/platform/ctxutil"
	"github.com/yungbote/educator-assistant-backend/internal/platform/gemini"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
	"github.com/yungbote/educator-assistant-backend/internal/services"
)

const (
	historyTurns = 10
	// studentIDSlot carries a resolved student between turns.
	studentIDSlot = "student_id"
)

const HelpText = "I can help with:\n" +
	"- Messages: \"send a message to Nicole saying great work today\"\n" +
	"- Meetings: \"schedule a meeting with Marcus tomorrow at 3pm\"\n" +
	"- Grades: \"show Nicole's grades\"\n" +
	"- Reports: \"performance report for Marcus\" or \"send a progress report for Marcus\"\n" +
	"- Roster: \"list my students\"\n" +
	"- Schedule: \"what's my schedule today\"\n" +
	"- Announcements: \"send to section 5A: field trip forms are due Friday\""

type Deps struct {
	Classifier *nlu.Classifier
	// Chatbot may be nil when no LLM is configured.
	Chatbot  *chatbot.Chatbot
	Resolver resolver.EntityResolver
	States   state.StateStore
	Dialog   *dialog.Manager
	Executor executor.Executor
	Students services.StudentService
	Settings services.SettingsService
	Turns    repos.AssistantTurnRepo
}

type Router struct {
	log  *logger.Logger
	deps Deps
}

func New(log *logger.Logger, deps Deps) (*Router, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	switch {
	case deps.Classifier == nil:
		return nil, fmt.Errorf("classifier required")
	case deps.States == nil:
		return nil, fmt.Errorf("state store required")
	case deps.Executor == nil:
		return nil, fmt.Errorf("executor required")
	case deps.Students == nil:
		return nil, fmt.Errorf("student service required")
	case deps.Settings == nil:
		return nil, fmt.Errorf("settings service required")
	}
	if deps.Resolver == nil {
		deps.Resolver = resolver.NewFuzzyResolver()
	}
	if deps.Dialog == nil {
		deps.Dialog = dialog.NewManager(dialog.DefaultAutoExecuteThreshold)
	}
	return &Router{log: log.With("service", "AssistantRouter"), deps: deps}, nil
}

func stateKey(e *types.Educator) state.Key {
	return state.Key{Tenant: e.School, User: e.ID.String()}
}

// withEducator makes sure the services see the caller.
func withEducator(ctx context.Context, e *types.Educator) context.Context {
	if rd := ctxutil.GetRequestData(ctx); rd != nil && rd.EducatorID == e.ID {
		return ctx
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{EducatorID: e.ID, School: e.School})
}

// Handle runs one turn. Failures are reported in the reply, never returned.
func (r *Router) Handle(ctx context.Context, e *types.Educator, message string) assistant.Reply {
	start := time.Now()
	ctx = withEducator(ctx, e)
	message = strings.TrimSpace(message)
	key := stateKey(e)

	st, err := r.deps.States.Get(ctx, key)
	if err != nil {
		r.log.Error("Failed to load assistant state", "educator_id", e.ID, "error", err)
		st = state.Idle()
	}

	t := &turn{r: r, ctx: ctx, educator: e, st: st, msg: message, source: assistant.SourceNLU}
	var reply assistant.Reply
	switch {
	case message == "":
		reply = assistant.Reply{Text: "Please type a request. " + HelpText, Status: assistant.StatusAnswered, Intent: assistant.IntentHelp}
	case st.Pending():
		reply = t.continuePending()
	default:
		reply = t.fresh()
	}
	if reply.Intent == "" {
		reply.Intent = assistant.IntentUnknown
	}

	if err := r.deps.States.Put(ctx, key, t.st); err != nil {
		r.log.Error("Failed to save assistant state", "educator_id", e.ID, "error", err)
	}
	observability.ObserveAssistantTurn(string(reply.Intent), t.source, string(reply.Status))
	r.record(ctx, e, message, reply, t.source)
	var slots assistant.Slots
	if reply.Action != nil {
		slots = reply.Action.Params
	}
	r.log.Debug("Assistant turn",
		"educator_id", e.ID,
		"intent", reply.Intent,
		"status", reply.Status,
		"source", t.source,
		"slots", slots,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return reply
}

// Reset drops any conversation state for the educator.
func (r *Router) Reset(ctx context.Context, e *types.Educator) error {
	return r.deps.States.Clear(ctx, stateKey(e))
}

func (r *Router) History(ctx context.Context, e *types.Educator, limit int) ([]*types.AssistantTurn, error) {
	if r.deps.Turns == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return r.deps.Turns.ListRecent(ctx, nil, e.ID, limit)
}

type turnMetadata struct {
	Source     string                `json:"source,omitempty"`
	Action     *assistant.Action     `json:"action,omitempty"`
	Candidates []assistant.Candidate `json:"candidates,omitempty"`
}

func (r *Router) record(ctx context.Context, e *types.Educator, message string, reply assistant.Reply, source string) {
	if r.deps.Turns == nil || message == "" {
		return
	}
	meta, err := json.Marshal(turnMetadata{Source: source, Action: reply.Action, Candidates: reply.Candidates})
	if err != nil {
		meta = []byte("{}")
	}
	// Both rows share one insert; distinct timestamps keep them ordered.
	now := time.Now().UTC()
	_, err = r.deps.Turns.Create(ctx, nil, []*types.AssistantTurn{
		{EducatorID: e.ID, Role: domainassistant.RoleUser, Content: message, Intent: string(reply.Intent), CreatedAt: now},
		{
			EducatorID: e.ID,
			CreatedAt:  now.Add(time.Microsecond),
			Role:       domainassistant.RoleAssistant,
			Content:    reply.Text,
			Intent:     string(reply.Intent),
			Status:     string(reply.Status),
			Metadata:   datatypes.JSON(meta),
		},
	})
	if err != nil {
		r.log.Warn("Failed to persist assistant turns", "educator_id", e.ID, "error", err)
	}
}

// turn is the working state of one Handle call.
type turn struct {
	r         *Router
	ctx       context.Context
	educator  *types.Educator
	st        *state.State
	msg       string
	source    string
	override  bool
	persisted bool
	roster    []resolver.Entry
}

func (t *turn) fresh() assistant.Reply {
	c := t.r.deps.Classifier
	t.override = c.HasOverride(t.msg)
	cls := c.Classify(t.msg)
	switch {
	case cls.Intent == assistant.IntentHelp:
		return assistant.Reply{Text: HelpText, Status: assistant.StatusAnswered, Intent: assistant.IntentHelp}
	case cls.Intent == assistant.IntentUnknown, cls.KeywordOnly && len(cls.Slots) == 0:
		return t.llm(cls)
	}
	return t.proceed(cls.Intent, cls.Slots, cls.Confidence)
}

func (t *turn) llm(cls nlu.Classification) assistant.Reply {
	bot := t.r.deps.Chatbot
	if bot == nil {
		if cls.Intent != assistant.IntentUnknown {
			return t.proceed(cls.Intent, cls.Slots, cls.Confidence)
		}
		return assistant.Reply{
			Text:   "I'm not sure what you mean. " + HelpText,
			Status: assistant.StatusAnswered,
			Intent: assistant.IntentUnknown,
		}
	}
	t.source = assistant.SourceLLM

	names := []string{}
	if roster, err := t.loadRoster(); err == nil {
		for _, en := range roster {
			names = append(names, en.FullName())
		}
	}
	res, err := bot.Respond(t.ctx, chatbot.Request{
		Message:      t.msg,
		EducatorName: t.educator.FullName(),
		Roster:       names,
		History:      t.history(),
	})
	if err != nil {
		t.r.log.Warn("Chatbot call failed", "educator_id", t.educator.ID, "error", err)
		return assistant.Reply{
			Text:   "Sorry, I couldn't reach the assistant service right now. Please try again in a moment.",
			Status: assistant.StatusError,
			Intent: assistant.IntentUnknown,
		}
	}
	a := res.Action
	if a == nil || a.Intent == assistant.IntentHelp || a.Intent == assistant.IntentUnknown {
		text := res.Text
		if text == "" {
			text = HelpText
		}
		return assistant.Reply{Text: text, Status: assistant.StatusAnswered, Intent: assistant.IntentUnknown}
	}
	return t.proceed(a.Intent, t.normalizeSlots(a.Params), a.Confidence)
}

// normalizeSlots maps LLM-proposed values onto the forms the fast classifier
// produces. Values that cannot be interpreted are dropped so they get asked.
func (t *turn) normalizeSlots(in assistant.Slots) assistant.Slots {
	c := t.r.deps.Classifier
	out := assistant.Slots{}
	for k, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		switch k {
		case assistant.SlotDatetime:
			if ts, err := time.Parse(time.RFC3339, v); err == nil {
				out[k] = ts.Format(time.RFC3339)
				continue
			}
			if nv, ok := c.FillSlot(k, v); ok {
				out[k] = nv
			}
		case assistant.SlotAudience:
			if kind, _ := assistant.ParseAudience(v); kind != "" {
				out[k] = v
				continue
			}
			if nv, ok := c.FillSlot(k, v); ok {
				out[k] = nv
			}
		case assistant.SlotContent, assistant.SlotTopic:
			if v = c.StripOverride(v); v != "" {
				out[k] = v
			}
		case assistant.SlotRecipient, assistant.SlotDate:
			if nv, ok := c.FillSlot(k, v); ok {
				out[k] = nv
			}
		default:
			out[k] = v
		}
	}
	return out
}

func (t *turn) history() []gemini.Message {
	if t.r.deps.Turns == nil {
		return nil
	}
	turns, err := t.r.deps.Turns.ListRecent(t.ctx, nil, t.educator.ID, historyTurns)
	if err != nil {
		t.r.log.Warn("Failed to load assistant history", "educator_id", t.educator.ID, "error", err)
		return nil
	}
	out := make([]gemini.Message, 0, len(turns))
	for _, tr := range turns {
		role := "user"
		if tr.Role == domainassistant.RoleAssistant {
			role = "model"
		}
		out = append(out, gemini.Message{Role: role, Text: tr.Content})
	}
	return out
}

func (t *turn) continuePending() assistant.Reply {
	c := t.r.deps.Classifier
	if c.IsCancel(t.msg) {
		intent := t.st.Intent
		t.st.Reset()
		return assistant.Reply{Text: "Okay, cancelled.", Status: assistant.StatusCancelled, Intent: intent}
	}
	t.source = t.st.Source
	if t.source == "" {
		t.source = assistant.SourceNLU
	}

	switch t.st.Kind {
	case state.KindAwaitingSlot:
		slot := t.st.MissingSlot
		answer := t.msg
		if c.HasOverride(answer) {
			t.override = true
			t.persistAutonomous()
			if answer = c.StripOverride(answer); answer == "" {
				return t.clarify(t.st.Intent,
					"Okay, I won't ask for confirmation from now on. "+dialog.SlotPrompt(t.st.Intent, slot), nil)
			}
		}
		v, ok := c.FillSlot(slot, answer)
		if !ok {
			if reply, switched := t.maybeNewRequest(); switched {
				return reply
			}
			return t.clarify(t.st.Intent, "Sorry, I didn't catch that. "+dialog.SlotPrompt(t.st.Intent, slot), nil)
		}
		slots := t.st.Slots.Clone()
		slots[slot] = v
		if slot == assistant.SlotRecipient {
			delete(slots, studentIDSlot)
		}
		return t.proceed(t.st.Intent, slots, t.st.Confidence)

	case state.KindAwaitingDisambiguation:
		cands := t.st.Candidates
		chosen, ok := t.choose(cands)
		if !ok {
			if reply, switched := t.maybeNewRequest(); switched {
				return reply
			}
			return t.clarify(t.st.Intent,
				fmt.Sprintf("Please reply with a number from 1 to %d or the student's name.\n%s", len(cands), listCandidates(cands)),
				cands)
		}
		slots := t.st.Slots.Clone()
		slots[assistant.SlotRecipient] = chosen.Name
		slots[studentIDSlot] = chosen.StudentID.String()
		return t.proceed(t.st.Intent, slots, t.st.Confidence)

	case state.KindAwaitingConfirmation:
		t.override = c.HasOverride(t.msg)
		if t.st.PendingAction == nil {
			t.st.Reset()
			return t.fresh()
		}
		if c.IsConfirm(t.msg) || t.override {
			a := *t.st.PendingAction
			if t.override {
				t.persistAutonomous()
			}
			return t.execute(a)
		}
		if reply, switched := t.maybeNewRequest(); switched {
			return reply
		}
		a := *t.st.PendingAction
		return assistant.Reply{
			Text:   "Please reply yes to confirm or no to cancel. " + dialog.Describe(a),
			Status: assistant.StatusNeedsConfirmation,
			Intent: a.Intent,
			Action: &a,
		}
	}
	t.st.Reset()
	return t.fresh()
}

// maybeNewRequest abandons the pending flow when the message is a complete
// new request on its own.
func (t *turn) maybeNewRequest() (assistant.Reply, bool) {
	cls := t.r.deps.Classifier.Classify(t.msg)
	if cls.Intent == assistant.IntentUnknown || cls.KeywordOnly {
		return assistant.Reply{}, false
	}
	t.st.Reset()
	t.source = assistant.SourceNLU
	return t.fresh(), true
}

// choose picks a candidate by enumeration index or by name.
func (t *turn) choose(cands []assistant.Candidate) (assistant.Candidate, bool) {
	if i, ok := nlu.ParseChoice(t.msg, len(cands)); ok {
		return cands[i], true
	}
	entries := make([]resolver.Entry, 0, len(cands))
	for _, cd := range cands {
		first, last, _ := strings.Cut(cd.Name, " ")
		entries = append(entries, resolver.Entry{ID: cd.StudentID, FirstName: first, LastName: last})
	}
	res := t.r.deps.Resolver.Resolve(nlu.CleanRecipient(t.msg), entries)
	if res.Status != resolver.StatusResolved {
		return assistant.Candidate{}, false
	}
	for _, cd := range cands {
		if cd.StudentID == res.Match.Entry.ID {
			return cd, true
		}
	}
	return assistant.Candidate{}, false
}

// proceed resolves the recipient, then lets the dialog manager decide.
func (t *turn) proceed(intent assistant.Intent, slots assistant.Slots, confidence float64) assistant.Reply {
	if slots == nil {
		slots = assistant.Slots{}
	}
	a := assistant.Action{Intent: intent, Confidence: confidence, Source: t.source}

	if assistant.NeedsStudent(intent) {
		if recipient := slots.Get(assistant.SlotRecipient); recipient != "" {
			id, name, reply, ok := t.resolveStudent(intent, slots, confidence)
			if !ok {
				return reply
			}
			a.StudentID, a.StudentName = id, name
			slots[assistant.SlotRecipient] = name
			slots[studentIDSlot] = id.String()
		}
	}

	params := slots.Clone()
	delete(params, studentIDSlot)
	a.Params = params

	mode := t.mode()
	d := t.r.deps.Dialog.Decide(a, assistant.Missing(intent, slots), mode, t.override)
	switch d.Kind {
	case dialog.KindAskSlot:
		if t.override && !t.persisted {
			t.persistAutonomous()
		}
		t.st.AwaitSlot(intent, slots, d.Slot)
		t.st.Confidence, t.st.Source = confidence, t.source
		return assistant.Reply{Text: d.Prompt, Status: assistant.StatusNeedsClarification, Intent: intent}
	case dialog.KindConfirm:
		t.st.AwaitConfirmation(a)
		t.st.Confidence, t.st.Source = confidence, t.source
		return assistant.Reply{Text: d.Prompt, Status: assistant.StatusNeedsConfirmation, Intent: intent, Action: &a}
	}
	if d.PersistAutonomous {
		t.persistAutonomous()
	}
	return t.execute(a)
}

// resolveStudent turns the recipient slot into a student. When ok is false
// the returned reply asks the educator to clarify.
func (t *turn) resolveStudent(intent assistant.Intent, slots assistant.Slots, confidence float64) (uuid.UUID, string, assistant.Reply, bool) {
	recipient := slots.Get(assistant.SlotRecipient)
	if raw := slots.Get(studentIDSlot); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			return id, recipient, assistant.Reply{}, true
		}
	}

	ask := func(text string) (uuid.UUID, string, assistant.Reply, bool) {
		rest := slots.Clone()
		delete(rest, assistant.SlotRecipient)
		delete(rest, studentIDSlot)
		t.st.AwaitSlot(intent, rest, assistant.SlotRecipient)
		t.st.Confidence, t.st.Source = confidence, t.source
		return uuid.Nil, "", assistant.Reply{Text: text, Status: assistant.StatusNeedsClarification, Intent: intent}, false
	}

	if t.r.deps.Classifier.PronounReference(recipient) {
		if t.st.LastStudentID == uuid.Nil {
			return ask("Which student do you mean?")
		}
		return t.st.LastStudentID, t.st.LastStudentName, assistant.Reply{}, true
	}

	roster, err := t.loadRoster()
	if err != nil {
		t.st.Reset()
		return uuid.Nil, "", t.failure(intent, err), false
	}
	res := t.r.deps.Resolver.Resolve(recipient, roster)
	switch res.Status {
	case resolver.StatusResolved:
		return res.Match.Entry.ID, res.Match.Entry.FullName(), assistant.Reply{}, true
	case resolver.StatusAmbiguous:
		cands := make([]assistant.Candidate, 0, len(res.Candidates))
		for _, m := range res.Candidates {
			cands = append(cands, assistant.Candidate{StudentID: m.Entry.ID, Name: m.Entry.FullName(), Score: m.Score})
		}
		t.st.AwaitChoice(intent, slots, cands)
		t.st.Confidence, t.st.Source = confidence, t.source
		text := fmt.Sprintf("I found more than one student matching %q. Which one do you mean?\n%s", recipient, listCandidates(cands))
		return uuid.Nil, "", assistant.Reply{Text: text, Status: assistant.StatusNeedsClarification, Intent: intent, Candidates: cands}, false
	}
	return ask(fmt.Sprintf("I couldn't find a student named %q. Who do you mean?", recipient))
}

func (t *turn) loadRoster() ([]resolver.Entry, error) {
	if t.roster != nil {
		return t.roster, nil
	}
	students, err := t.r.deps.Students.Roster(t.ctx)
	if err != nil {
		return nil, err
	}
	out := make([]resolver.Entry, 0, len(students))
	for _, s := range students {
		out = append(out, resolver.Entry{ID: s.ID, FirstName: s.FirstName, LastName: s.LastName})
	}
	t.roster = out
	return out, nil
}

func (t *turn) mode() string {
	mode, err := t.r.deps.Settings.GetAssistantMode(t.ctx)
	if err != nil {
		t.r.log.Warn("Failed to load assistant mode", "educator_id", t.educator.ID, "error", err)
		if t.educator.AssistantMode != "" {
			return t.educator.AssistantMode
		}
		return educator.ModeAssist
	}
	return mode
}

func (t *turn) persistAutonomous() {
	if err := t.r.deps.Settings.SetAssistantMode(t.ctx, educator.ModeAutonomous); err != nil {
		t.r.log.Warn("Failed to persist autonomous mode", "educator_id", t.educator.ID, "error", err)
		return
	}
	t.educator.AssistantMode = educator.ModeAutonomous
	t.persisted = true
}

func (t *turn) execute(a assistant.Action) assistant.Reply {
	t.st.Reset()
	res, err := t.r.deps.Executor.Execute(t.ctx, a)
	if err != nil {
		return t.failure(a.Intent, err)
	}
	t.st.Remember(a.StudentID, a.StudentName)
	text := res.Text
	if t.persisted {
		text += " I won't ask for confirmation from now on."
	}
	return assistant.Reply{Text: text, Status: assistant.StatusExecuted, Intent: a.Intent, Action: &a, Data: res.Data}
}

func (t *turn) clarify(intent assistant.Intent, text string, cands []assistant.Candidate) assistant.Reply {
	return assistant.Reply{Text: text, Status: assistant.StatusNeedsClarification, Intent: intent, Candidates: cands}
}

// failure is the templated reply for an action that could not run.
func (t *turn) failure(intent assistant.Intent, err error) assistant.Reply {
	fields := append(ctxutil.LogFields(t.ctx), "intent", intent, "error", err)
	t.r.log.Error("Assistant action failed", fields...)
	reason := "something went wrong on our side"
	if ae, ok := apierr.As(err); ok && ae.Status < http.StatusInternalServerError {
		reason = ae.Error()
	}
	return assistant.Reply{
		Text:   fmt.Sprintf("Sorry, I couldn't %s: %s.", actionPhrase(intent), reason),
		Status: assistant.StatusError,
		Intent: intent,
	}
}

func actionPhrase(i assistant.Intent) string {
	switch i {
	case assistant.IntentSendMessage:
		return "send that message"
	case assistant.IntentScheduleMeeting:
		return "schedule that meeting"
	case assistant.IntentGetGrades:
		return "load those grades"
	case assistant.IntentListStudents:
		return "list your students"
	case assistant.IntentGetSchedule:
		return "load your schedule"
	case assistant.IntentBulkMessage:
		return "send that announcement"
	case assistant.IntentPerformanceReport:
		return "prepare that report"
	}
	return "do that"
}

func listCandidates(cands []assistant.Candidate) string {
	lines := make([]string, 0, len(cands))
	for i, c := range cands {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, c.Name))
	}
	return strings.Join(lines, "\n")
}
