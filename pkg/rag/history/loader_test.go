package history

import (
	"testing"
	"time"

	"banking-assistant-be/internal/constant"
	"banking-assistant-be/internal/entity"
	"banking-assistant-be/pkg/store"
)

func turnRow(role, content string) *entity.ChatTurn {
	return &entity.ChatTurn{
		Role:      role,
		Content:   content,
		CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestPairTurnsFoldsExchanges(t *testing.T) {
	rows := []*entity.ChatTurn{
		turnRow(constant.ChatTurnRoleUser, "what is the mortgage rate"),
		turnRow(constant.ChatTurnRoleAssistant, "4.25% to 6.75%"),
		turnRow(constant.ChatTurnRoleUser, "and for business loans"),
		turnRow(constant.ChatTurnRoleAssistant, "6.5% to 15%"),
	}

	turns := pairTurns(rows)
	if len(turns) != 2 {
		t.Fatalf("paired %d turns, want 2", len(turns))
	}
	if turns[0].Question != "what is the mortgage rate" || turns[0].Answer != "4.25% to 6.75%" {
		t.Errorf("first exchange = %+v", turns[0])
	}
	if turns[1].Question != "and for business loans" || turns[1].Answer != "6.5% to 15%" {
		t.Errorf("second exchange = %+v", turns[1])
	}
}

func TestPairTurnsDropsUnansweredTrailingQuestion(t *testing.T) {
	rows := []*entity.ChatTurn{
		turnRow(constant.ChatTurnRoleUser, "q1"),
		turnRow(constant.ChatTurnRoleAssistant, "a1"),
		turnRow(constant.ChatTurnRoleUser, "q2 never answered"),
	}

	turns := pairTurns(rows)
	if len(turns) != 1 {
		t.Fatalf("paired %d turns, want 1", len(turns))
	}
}

func TestPairTurnsSkipsOrphanAssistantRow(t *testing.T) {
	rows := []*entity.ChatTurn{
		turnRow(constant.ChatTurnRoleAssistant, "orphan answer"),
		turnRow(constant.ChatTurnRoleUser, "q1"),
		turnRow(constant.ChatTurnRoleAssistant, "a1"),
	}

	turns := pairTurns(rows)
	if len(turns) != 1 || turns[0].Question != "q1" {
		t.Fatalf("paired turns = %+v, want single q1 exchange", turns)
	}
}

func TestToMessagesAlternatesRoles(t *testing.T) {
	turns := []store.Turn{
		{Question: "q1", Answer: "a1"},
		{Question: "q2", Answer: "a2"},
	}

	messages := ToMessages(turns)
	if len(messages) != 4 {
		t.Fatalf("got %d messages, want 4", len(messages))
	}

	wantRoles := []string{
		constant.ChatTurnRoleUser, constant.ChatTurnRoleAssistant,
		constant.ChatTurnRoleUser, constant.ChatTurnRoleAssistant,
	}
	wantContent := []string{"q1", "a1", "q2", "a2"}
	for i, msg := range messages {
		if msg.Role != wantRoles[i] || msg.Content != wantContent[i] {
			t.Errorf("message %d = %+v, want %s %q", i, msg, wantRoles[i], wantContent[i])
		}
	}
}

func TestToMessagesSkipsEmptyAnswer(t *testing.T) {
	messages := ToMessages([]store.Turn{{Question: "pending"}})
	if len(messages) != 1 || messages[0].Role != constant.ChatTurnRoleUser {
		t.Fatalf("messages = %+v, want single user message", messages)
	}
}
