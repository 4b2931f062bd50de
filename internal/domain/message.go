package domain

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in a chat session's log. The log is append-only
// within a session and never persisted.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
