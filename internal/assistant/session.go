package assistant

import (
	"github.com/google/uuid"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleSystem     Role = "system"
	RoleUser       Role = "user"
	RoleAssistant  Role = "assistant"
	RoleToolResult Role = "tool_result"
)

// Turn is one unit of the conversation transcript.
type Turn struct {
	Role    Role
	Content string
	Ordinal int
}

// Session owns the ordered transcript for one conversation. It is
// mutated only by the Agent that holds it, so multiple sessions can
// coexist in one process without interference.
type Session struct {
	ID    string
	turns []Turn
}

// NewSession creates an empty session with a fresh identifier.
func NewSession() *Session {
	return &Session{
		ID:    uuid.NewString(),
		turns: make([]Turn, 0),
	}
}

// Append records a turn at the end of the transcript and returns it.
// Ordinals are assigned sequentially and never reused.
func (s *Session) Append(role Role, content string) Turn {
	t := Turn{Role: role, Content: content, Ordinal: len(s.turns)}
	s.turns = append(s.turns, t)
	return t
}

// Turns returns the transcript in conversation order. The slice is a
// copy; callers cannot mutate session state through it.
func (s *Session) Turns() []Turn {
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Last returns the most recent turn, if any.
func (s *Session) Last() (Turn, bool) {
	if len(s.turns) == 0 {
		return Turn{}, false
	}
	return s.turns[len(s.turns)-1], true
}

// Len reports the number of turns recorded so far.
func (s *Session) Len() int {
	return len(s.turns)
}

// Truncate drops every turn at or after ordinal n. Used to roll back
// a partially dispatched turn on cancellation.
func (s *Session) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(s.turns) {
		s.turns = s.turns[:n]
	}
}

// Reset clears the transcript while keeping the session identity.
func (s *Session) Reset() {
	s.turns = s.turns[:0]
}
