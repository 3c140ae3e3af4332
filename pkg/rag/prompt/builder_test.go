package prompt

import (
	"strings"
	"testing"

	"banking-assistant-be/pkg/store"
)

func TestSelectFlavor(t *testing.T) {
	tests := []struct {
		name     string
		passages []store.Passage
		want     Flavor
	}{
		{
			name:     "plain prose picks banking",
			passages: []store.Passage{{Content: "Personal loans run 8.5% to 12.5%.", Kind: "text"}},
			want:     FlavorBanking,
		},
		{
			name: "table fragment picks table",
			passages: []store.Passage{
				{Content: "| Loan | Rate |\n| Personal | 8.5% |", Kind: "table", TableID: "table_1"},
			},
			want: FlavorTable,
		},
		{
			name:     "compliance wording picks compliance",
			passages: []store.Passage{{Content: "SAR filings must meet the 30 day regulatory deadline.", Kind: "text"}},
			want:     FlavorCompliance,
		},
		{
			name: "table wins over later compliance text",
			passages: []store.Passage{
				{Content: "| Loan | Rate |", Kind: "table", TableID: "table_1"},
				{Content: "audit requirements apply", Kind: "text"},
			},
			want: FlavorTable,
		},
		{
			name:     "empty retrieval picks banking",
			passages: nil,
			want:     FlavorBanking,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectFlavor(tt.passages); got != tt.want {
				t.Errorf("SelectFlavor = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBuildContainsAllSections(t *testing.T) {
	context := "DOCUMENT 1: rates.md\nPersonal loans run 8.5% to 12.5%."
	query := "what is the personal loan rate"

	built := NewBuilder(FlavorBanking, context, query).Build()

	for _, want := range []string{
		"CRITICAL RULES:",
		"Context from uploaded banking documents:",
		context,
		"Question: " + query,
		"CONFIDENCE:",
	} {
		if !strings.Contains(built, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildTableFlavorWording(t *testing.T) {
	built := NewBuilder(FlavorTable, "| Loan | Rate |", "rates?").Build()

	if !strings.Contains(built, "Table Data from uploaded documents:") {
		t.Error("table prompt missing its context heading")
	}
	if !strings.Contains(built, "ONLY use data that appears in the table") {
		t.Error("table prompt missing its grounding rule")
	}
	if strings.Contains(built, "general banking knowledge, industry standards") {
		t.Error("table prompt leaked the banking rules")
	}
}

func TestBuildComplianceFlavorWording(t *testing.T) {
	built := NewBuilder(FlavorCompliance, "SAR policy text", "when is the SAR due?").Build()

	if !strings.Contains(built, "banking compliance expert") {
		t.Error("compliance prompt missing its role line")
	}
	if !strings.Contains(built, "Compliance Context from uploaded documents:") {
		t.Error("compliance prompt missing its context heading")
	}
}

func TestBuildQuestionPrecedesClosing(t *testing.T) {
	built := NewBuilder(FlavorBanking, "ctx", "my question").Build()

	q := strings.Index(built, "Question: my question")
	closing := strings.Index(built, "Remember:")
	if q == -1 || closing == -1 || q > closing {
		t.Errorf("sections out of order: question at %d, closing at %d", q, closing)
	}
}
