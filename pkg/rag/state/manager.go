package state

import (
	"fmt"
	"log"

	"banking-assistant-be/pkg/store"
)

// Manager enforces query lifecycle transitions
type Manager struct {
	logger *log.Logger
}

// NewManager creates a new state manager
func NewManager(logger *log.Logger) *Manager {
	return &Manager{logger: logger}
}

// transitions maps each state to the states reachable from it.
// Fallback, Answered and Unavailable are terminal; escalation reopens
// the routed path from Answered exactly once.
var transitions = map[string][]string{
	store.StateReceived:            {store.StateEmbedded, store.StateUnavailable},
	store.StateEmbedded:            {store.StateRetrieved, store.StateUnavailable},
	store.StateRetrieved:           {store.StateInsufficientContext, store.StateContextReady},
	store.StateInsufficientContext: {store.StateFallback},
	store.StateContextReady:        {store.StateRouted},
	store.StateRouted:              {store.StateAnswered, store.StateUnavailable},
	store.StateAnswered:            {store.StateEscalationNeeded},
	store.StateEscalationNeeded:    {store.StateRouted},
}

// Transition moves the query to next, rejecting jumps the lifecycle does
// not allow
func (m *Manager) Transition(query *store.Query, next string) error {
	if !allowed(query.State, next) {
		return fmt.Errorf("illegal transition %s -> %s", query.State, next)
	}
	if query.State == store.StateEscalationNeeded && next == store.StateRouted {
		if query.Escalated {
			return fmt.Errorf("escalation already used for query %s", query.ID)
		}
		query.Escalated = true
	}
	m.logger.Printf("[STATE] Query %s: %s -> %s", query.ID, query.State, next)
	query.State = next
	return nil
}

func allowed(from, next string) bool {
	for _, s := range transitions[from] {
		if s == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the state emits a response and ends the query
func IsTerminal(state string) bool {
	switch state {
	case store.StateFallback, store.StateAnswered, store.StateUnavailable:
		return true
	}
	return false
}
