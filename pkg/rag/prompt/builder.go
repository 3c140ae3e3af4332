package prompt

import (
	"strings"

	"banking-assistant-be/pkg/rag/router"
	"banking-assistant-be/pkg/store"
)

// Flavor picks the instruction set the answer prompt leads with
type Flavor string

const (
	FlavorBanking    Flavor = "banking"
	FlavorTable      Flavor = "table"
	FlavorCompliance Flavor = "compliance"
)

// SelectFlavor chooses the instruction set from the retrieved material:
// table fragments get the table rules, compliance wording gets the
// compliance rules, everything else the general banking rules
func SelectFlavor(passages []store.Passage) Flavor {
	for _, p := range passages {
		if p.IsTable() {
			return FlavorTable
		}

		content := strings.ToLower(p.Content)
		for _, kw := range router.ComplianceKeywords() {
			if strings.Contains(content, kw) {
				return FlavorCompliance
			}
		}
	}
	return FlavorBanking
}

// Builder composes the grounded answer prompt
type Builder struct {
	flavor  Flavor
	context string
	query   string
}

// NewBuilder creates a new prompt builder
func NewBuilder(flavor Flavor, context, query string) *Builder {
	return &Builder{
		flavor:  flavor,
		context: context,
		query:   query,
	}
}

// Build renders the full prompt: role, grounding rules, retrieved context,
// the question, and the closing reminder with the confidence marker
func (b *Builder) Build() string {
	var prompt strings.Builder

	b.writeRole(&prompt)
	b.writeRules(&prompt)
	b.writeContext(&prompt)
	b.writeQuestion(&prompt)
	b.writeClosing(&prompt)

	return prompt.String()
}

func (b *Builder) writeRole(prompt *strings.Builder) {
	switch b.flavor {
	case FlavorTable:
		prompt.WriteString("You are analyzing banking table data from uploaded documents. You can ONLY use information from the provided table.\n\n")
	case FlavorCompliance:
		prompt.WriteString("You are a banking compliance expert analyzing uploaded compliance documents. You can ONLY use information from the provided documents.\n\n")
	default:
		prompt.WriteString("You are a banking assistant that can ONLY provide information from the uploaded banking documents. You MUST NOT use any external knowledge or general banking information.\n\n")
	}
}

func (b *Builder) writeRules(prompt *strings.Builder) {
	prompt.WriteString("CRITICAL RULES:\n")

	switch b.flavor {
	case FlavorTable:
		prompt.WriteString("1. ONLY use data that appears in the table below\n")
		prompt.WriteString("2. If the question cannot be answered from this table, say \"This information is not available in the uploaded table\"\n")
		prompt.WriteString("3. DO NOT use any external banking knowledge or industry standards\n")
		prompt.WriteString("4. Quote exact values from the table when possible\n")
	case FlavorCompliance:
		prompt.WriteString("1. ONLY use compliance information that is explicitly stated in the provided context\n")
		prompt.WriteString("2. If compliance requirements are not in the documents, say \"This compliance information is not available in the uploaded documents\"\n")
		prompt.WriteString("3. DO NOT use any external compliance knowledge or regulatory standards\n")
		prompt.WriteString("4. Quote specific text from the documents when possible\n")
		prompt.WriteString("5. Always cite the source document\n")
	default:
		prompt.WriteString("1. ONLY use information that is explicitly stated in the provided context/documents\n")
		prompt.WriteString("2. If the information is not in the provided documents, say \"I cannot answer this question based on the uploaded documents\"\n")
		prompt.WriteString("3. DO NOT use any general banking knowledge, industry standards, or external information\n")
		prompt.WriteString("4. Quote specific text from the documents when possible\n")
		prompt.WriteString("5. Always cite the source document when providing information\n")
		prompt.WriteString("6. If asked about rates, terms, or conditions not in the documents, clearly state they are not available\n")
	}

	prompt.WriteString("\n")
}

func (b *Builder) writeContext(prompt *strings.Builder) {
	switch b.flavor {
	case FlavorTable:
		prompt.WriteString("Table Data from uploaded documents:\n")
	case FlavorCompliance:
		prompt.WriteString("Compliance Context from uploaded documents:\n")
	default:
		prompt.WriteString("Context from uploaded banking documents:\n")
	}
	prompt.WriteString(b.context)
	prompt.WriteString("\n\n")
}

func (b *Builder) writeQuestion(prompt *strings.Builder) {
	prompt.WriteString("Question: ")
	prompt.WriteString(b.query)
	prompt.WriteString("\n\n")
}

func (b *Builder) writeClosing(prompt *strings.Builder) {
	if b.flavor == FlavorTable {
		prompt.WriteString("Remember: You can ONLY use information from the above table. If the information is not there, you cannot provide it.\n")
	} else {
		prompt.WriteString("Remember: You can ONLY use information from the above context. If the information is not there, you cannot provide it.\n")
	}
	prompt.WriteString("Finish your reply with a final line of exactly this form: CONFIDENCE: <a number between 0.0 and 1.0 rating how well the context supported your answer>")
}
