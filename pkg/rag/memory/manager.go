package memory

import (
	"log"
	"sync"

	"banking-assistant-be/internal/repository/memory"
	"banking-assistant-be/pkg/store"
)

// DefaultWindow is how many exchanges a session retains verbatim
const DefaultWindow = 5

// Manager owns per-session conversation windows. Requests for the same
// session are serialized by a per-session lock; distinct sessions proceed
// fully in parallel.
type Manager struct {
	sessions *memory.SessionRepository
	window   int
	logger   *log.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a window manager retaining the given number of turns
func NewManager(window int, logger *log.Logger) *Manager {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Manager{
		sessions: memory.NewSessionRepository(),
		window:   window,
		logger:   logger,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Lock serializes access to one session. The returned function releases it.
func (m *Manager) Lock(sessionID string) func() {
	m.mu.Lock()
	l, ok := m.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[sessionID] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Window returns a copy of the session's retained turns, oldest first
func (m *Manager) Window(sessionID string) []store.Turn {
	session, ok := m.sessions.Get(sessionID)
	if !ok {
		return nil
	}
	out := make([]store.Turn, len(session.Turns))
	copy(out, session.Turns)
	return out
}

// Depth returns how many exchanges the session currently retains
func (m *Manager) Depth(sessionID string) int {
	session, ok := m.sessions.Get(sessionID)
	if !ok {
		return 0
	}
	return len(session.Turns)
}

// Append records a completed exchange, dropping the oldest turn once the
// window is full
func (m *Manager) Append(sessionID string, turn store.Turn) {
	session, ok := m.sessions.Get(sessionID)
	if !ok {
		session = &store.Session{ID: sessionID}
	}
	session.Turns = ClampWindow(session.Turns, turn, m.window)
	session.LastQuery = turn.Question
	m.sessions.Save(session)

	m.logger.Printf("[DEBUG] Session %s window now holds %d turns", sessionID, len(session.Turns))
}

// Seed replaces a session's window, used to rebuild it from the persisted
// transcript after a cache miss
func (m *Manager) Seed(sessionID string, turns []store.Turn) {
	if len(turns) > m.window {
		turns = turns[len(turns)-m.window:]
	}
	session := &store.Session{
		ID:    sessionID,
		Turns: append([]store.Turn(nil), turns...),
	}
	if len(session.Turns) > 0 {
		session.LastQuery = session.Turns[len(session.Turns)-1].Question
	}
	m.sessions.Save(session)
}

// Reset drops a session's window entirely
func (m *Manager) Reset(sessionID string) {
	m.sessions.Delete(sessionID)
}

// ClampWindow appends turn and keeps only the most recent window turns,
// oldest dropped first. Inputs are never mutated.
func ClampWindow(turns []store.Turn, turn store.Turn, window int) []store.Turn {
	if window <= 0 {
		return nil
	}
	out := make([]store.Turn, 0, len(turns)+1)
	out = append(out, turns...)
	out = append(out, turn)
	if len(out) > window {
		out = out[len(out)-window:]
	}
	return out
}
