// Package state stores per-conversation dialog state between turns.
package state

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/educator-assistant-backend/internal/assistant"
)

type Kind string

const (
	KindIdle                   Kind = "idle"
	KindAwaitingSlot           Kind = "awaiting_slot"
	KindAwaitingDisambiguation Kind = "awaiting_disambiguation"
	KindAwaitingConfirmation   Kind = "awaiting_confirmation"
)

// Key identifies one conversation. Tenant is the educator's school.
type Key struct {
	Tenant string
	User   string
}

func (k Key) String() string { return k.Tenant + ":" + k.User }

// State is the tagged union of pending clarifications plus the last student
// the conversation referred to. Which pending fields are meaningful depends
// on Kind: MissingSlot for awaiting_slot, Candidates for
// awaiting_disambiguation and PendingAction for awaiting_confirmation.
// Intent and Slots carry the partial request in every pending kind.
type State struct {
	Kind            Kind                  `json:"kind"`
	Intent          assistant.Intent      `json:"intent,omitempty"`
	Slots           assistant.Slots       `json:"slots,omitempty"`
	MissingSlot     string                `json:"missing_slot,omitempty"`
	Candidates      []assistant.Candidate `json:"candidates,omitempty"`
	PendingAction   *assistant.Action     `json:"pending_action,omitempty"`
	Confidence      float64               `json:"confidence,omitempty"`
	Source          string                `json:"source,omitempty"`
	LastStudentID   uuid.UUID             `json:"last_student_id,omitempty"`
	LastStudentName string                `json:"last_student_name,omitempty"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

func Idle() *State { return &State{Kind: KindIdle} }

func (s *State) Pending() bool {
	return s != nil && s.Kind != "" && s.Kind != KindIdle
}

// Reset drops any pending clarification but keeps the last student.
func (s *State) Reset() {
	s.Kind = KindIdle
	s.Intent = ""
	s.Slots = nil
	s.MissingSlot = ""
	s.Candidates = nil
	s.PendingAction = nil
	s.Confidence = 0
	s.Source = ""
}

// AwaitSlot switches to awaiting_slot for the given partial request.
func (s *State) AwaitSlot(intent assistant.Intent, slots assistant.Slots, slot string) {
	s.Reset()
	s.Kind = KindAwaitingSlot
	s.Intent = intent
	s.Slots = slots.Clone()
	s.MissingSlot = slot
}

// AwaitChoice switches to awaiting_disambiguation over candidates.
func (s *State) AwaitChoice(intent assistant.Intent, slots assistant.Slots, candidates []assistant.Candidate) {
	s.Reset()
	s.Kind = KindAwaitingDisambiguation
	s.Intent = intent
	s.Slots = slots.Clone()
	s.Candidates = append([]assistant.Candidate(nil), candidates...)
}

// AwaitConfirmation switches to awaiting_confirmation for action.
func (s *State) AwaitConfirmation(action assistant.Action) {
	s.Reset()
	s.Kind = KindAwaitingConfirmation
	s.Intent = action.Intent
	s.Slots = action.Params.Clone()
	action.Params = action.Params.Clone()
	s.PendingAction = &action
}

func (s *State) Remember(id uuid.UUID, name string) {
	if id == uuid.Nil {
		return
	}
	s.LastStudentID = id
	s.LastStudentName = name
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	if s.Slots != nil {
		out.Slots = s.Slots.Clone()
	}
	if s.Candidates != nil {
		out.Candidates = append([]assistant.Candidate(nil), s.Candidates...)
	}
	if s.PendingAction != nil {
		a := *s.PendingAction
		a.Params = a.Params.Clone()
		out.PendingAction = &a
	}
	return &out
}

// StateStore persists State per Key. Get never returns a nil state: missing
// or expired entries read back as Idle.
type StateStore interface {
	Get(ctx context.Context, key Key) (*State, error)
	Put(ctx context.Context, key Key, st *State) error
	Clear(ctx context.Context, key Key) error
}
