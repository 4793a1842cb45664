package models

// Turn roles, matching the roles the model provider understands.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one role-tagged message in a conversation transcript.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completion is the result of one model call, including token usage
// so callers can estimate cost.
type Completion struct {
	Text         string
	InputTokens  int
	OutputTokens int
}
