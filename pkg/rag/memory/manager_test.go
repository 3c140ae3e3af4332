package memory

import (
	"fmt"
	"io"
	"log"
	"sync"
	"testing"

	"banking-assistant-be/pkg/store"
)

func newTestManager(window int) *Manager {
	return NewManager(window, log.New(io.Discard, "", 0))
}

func TestClampWindowDropsOldestFirst(t *testing.T) {
	var turns []store.Turn
	for i := 1; i <= 4; i++ {
		turns = ClampWindow(turns, store.Turn{Question: fmt.Sprintf("q%d", i)}, 3)
	}

	if len(turns) != 3 {
		t.Fatalf("window holds %d turns, want 3", len(turns))
	}
	for i, want := range []string{"q2", "q3", "q4"} {
		if turns[i].Question != want {
			t.Errorf("turn %d = %q, want %q", i, turns[i].Question, want)
		}
	}
	for _, turn := range turns {
		if turn.Question == "q1" {
			t.Error("oldest turn q1 must be dropped")
		}
	}
}

func TestClampWindowDoesNotMutateInput(t *testing.T) {
	original := []store.Turn{{Question: "q1"}, {Question: "q2"}}
	ClampWindow(original, store.Turn{Question: "q3"}, 2)

	if len(original) != 2 || original[0].Question != "q1" || original[1].Question != "q2" {
		t.Errorf("input slice mutated: %+v", original)
	}
}

func TestClampWindowZeroSize(t *testing.T) {
	got := ClampWindow(nil, store.Turn{Question: "q"}, 0)
	if len(got) != 0 {
		t.Errorf("zero window retained %d turns", len(got))
	}
}

func TestAppendBoundedWindow(t *testing.T) {
	m := newTestManager(2)
	for i := 1; i <= 3; i++ {
		m.Append("s1", store.Turn{Question: fmt.Sprintf("q%d", i), Answer: "a"})
	}

	window := m.Window("s1")
	if len(window) != 2 {
		t.Fatalf("window holds %d turns, want 2", len(window))
	}
	if window[0].Question != "q2" || window[1].Question != "q3" {
		t.Errorf("window = %+v, want q2,q3", window)
	}
	if m.Depth("s1") != 2 {
		t.Errorf("depth = %d, want 2", m.Depth("s1"))
	}
}

func TestWindowReturnsCopy(t *testing.T) {
	m := newTestManager(3)
	m.Append("s1", store.Turn{Question: "q1", Answer: "a1"})

	window := m.Window("s1")
	window[0].Question = "tampered"

	if got := m.Window("s1"); got[0].Question != "q1" {
		t.Errorf("internal window mutated through returned copy: %q", got[0].Question)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	m := newTestManager(3)
	m.Append("s1", store.Turn{Question: "about loans"})
	m.Append("s2", store.Turn{Question: "about audits"})

	if m.Depth("s1") != 1 || m.Depth("s2") != 1 {
		t.Errorf("depths = %d,%d, want 1,1", m.Depth("s1"), m.Depth("s2"))
	}
	if m.Window("s1")[0].Question != "about loans" {
		t.Error("s1 window leaked another session's turn")
	}
}

func TestSeedClampsToWindow(t *testing.T) {
	m := newTestManager(2)
	m.Seed("s1", []store.Turn{
		{Question: "q1"}, {Question: "q2"}, {Question: "q3"},
	})

	window := m.Window("s1")
	if len(window) != 2 || window[0].Question != "q2" {
		t.Errorf("seeded window = %+v, want most recent 2", window)
	}
}

func TestResetDropsWindow(t *testing.T) {
	m := newTestManager(3)
	m.Append("s1", store.Turn{Question: "q1"})
	m.Reset("s1")

	if m.Depth("s1") != 0 {
		t.Errorf("depth after reset = %d, want 0", m.Depth("s1"))
	}
}

func TestLockSerializesSameSession(t *testing.T) {
	m := newTestManager(100)

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			unlock := m.Lock("s1")
			defer unlock()
			counter++
			m.Append("s1", store.Turn{Question: fmt.Sprintf("q%d", n)})
		}(i)
	}
	wg.Wait()

	if counter != 50 {
		t.Errorf("counter = %d, want 50", counter)
	}
	if m.Depth("s1") != 50 {
		t.Errorf("depth = %d, want 50", m.Depth("s1"))
	}
}
