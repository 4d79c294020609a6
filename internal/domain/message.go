package domain

import "time"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in a session's chronological history. Immutable once
// appended; history only grows (window maintenance drops whole messages).
type Message struct {
	Role       Role
	Content    string
	Timestamp  time.Time
	TokenCount int
}

// EstimateTokens approximates the token cost of a message body at roughly
// four bytes per token, rounded up.
func EstimateTokens(content string) int {
	if content == "" {
		return 0
	}

	return (len(content) + 3) / 4
}
