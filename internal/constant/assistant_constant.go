package constant

const (
	ChatTurnRoleUser      = "user"
	ChatTurnRoleAssistant = "assistant"

	// InsufficientContextAnswer is the fixed reply when retrieval cannot
	// ground an answer. It is returned verbatim, never generated.
	InsufficientContextAnswer = "I cannot answer this question based on the uploaded documents. The information you're asking about is not available in the documents that have been loaded into the system."
)
