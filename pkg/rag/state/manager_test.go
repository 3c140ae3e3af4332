package state

import (
	"io"
	"log"
	"testing"

	"banking-assistant-be/pkg/store"
)

func newTestManager() *Manager {
	return NewManager(log.New(io.Discard, "", 0))
}

func TestTransitionHappyPath(t *testing.T) {
	m := newTestManager()
	q := &store.Query{ID: "q1", State: store.StateReceived}

	path := []string{
		store.StateEmbedded,
		store.StateRetrieved,
		store.StateContextReady,
		store.StateRouted,
		store.StateAnswered,
	}
	for _, next := range path {
		if err := m.Transition(q, next); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}
	if !IsTerminal(q.State) {
		t.Errorf("expected %s to be terminal", q.State)
	}
}

func TestTransitionFallbackPath(t *testing.T) {
	m := newTestManager()
	q := &store.Query{ID: "q1", State: store.StateReceived}

	for _, next := range []string{
		store.StateEmbedded,
		store.StateRetrieved,
		store.StateInsufficientContext,
		store.StateFallback,
	} {
		if err := m.Transition(q, next); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}
	if !IsTerminal(store.StateFallback) {
		t.Error("fallback should be terminal")
	}
}

func TestTransitionRejectsIllegalJump(t *testing.T) {
	m := newTestManager()
	q := &store.Query{ID: "q1", State: store.StateReceived}

	if err := m.Transition(q, store.StateAnswered); err == nil {
		t.Fatal("expected error jumping RECEIVED -> ANSWERED")
	}
	if q.State != store.StateReceived {
		t.Errorf("failed transition must not change state, got %s", q.State)
	}
}

func TestEscalationAllowedOnce(t *testing.T) {
	m := newTestManager()
	q := &store.Query{ID: "q1", State: store.StateAnswered}

	if err := m.Transition(q, store.StateEscalationNeeded); err != nil {
		t.Fatalf("escalation needed: %v", err)
	}
	if err := m.Transition(q, store.StateRouted); err != nil {
		t.Fatalf("first escalation: %v", err)
	}
	if !q.Escalated {
		t.Error("query should be marked escalated")
	}

	if err := m.Transition(q, store.StateAnswered); err != nil {
		t.Fatalf("answer after escalation: %v", err)
	}
	if err := m.Transition(q, store.StateEscalationNeeded); err != nil {
		t.Fatalf("second escalation request: %v", err)
	}
	if err := m.Transition(q, store.StateRouted); err == nil {
		t.Fatal("second escalation must be rejected")
	}
}
