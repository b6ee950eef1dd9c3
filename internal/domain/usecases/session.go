package usecases

import (
	"sync"

	"github.com/google/uuid"

	"github.com/0xcro3dile/catalogchat-go/internal/domain/entities"
)

// SessionContext carries all per-conversation mutable state: the ordered turn
// log and the augmentation engine's active product. It is passed explicitly
// into Augment and Resolve on every call rather than living in package
// globals, so independent sessions never share state.
//
// Appends carry no locking: the design assumes at most one in-flight request
// per session, enforced by the caller.
type SessionContext struct {
	ID            string
	ActiveProduct *entities.Product

	turns []entities.Turn
}

// NewSessionContext creates an empty session with a generated ID.
func NewSessionContext() *SessionContext {
	return &SessionContext{ID: uuid.New().String()}
}

// Append records a turn at the end of the history. O(1), always succeeds; the
// log is never truncated, so growth is linear in turn count for the process
// lifetime.
func (s *SessionContext) Append(role, text string) {
	s.turns = append(s.turns, entities.Turn{Role: role, Text: text})
}

// Snapshot returns a read-only copy of the turn history in append order.
func (s *SessionContext) Snapshot() []entities.Turn {
	out := make([]entities.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len returns the number of recorded turns.
func (s *SessionContext) Len() int { return len(s.turns) }

// Sessions is a registry of live sessions keyed by ID. Only the registry map
// is guarded; individual sessions stay single-writer.
type Sessions struct {
	mu sync.Mutex
	m  map[string]*SessionContext
}

// NewSessions creates an empty registry.
func NewSessions() *Sessions {
	return &Sessions{m: make(map[string]*SessionContext)}
}

// Get returns the session with the given ID, creating it if absent. An empty
// ID creates a fresh session under a generated ID.
func (r *Sessions) Get(id string) *SessionContext {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id == "" {
		s := NewSessionContext()
		r.m[s.ID] = s
		return s
	}
	if s, ok := r.m[id]; ok {
		return s
	}
	s := &SessionContext{ID: id}
	r.m[id] = s
	return s
}
