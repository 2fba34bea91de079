package model

import "time"

// Conversation stores metadata about one support conversation. It is keyed
// by an opaque, client-generated session token; at most one conversation
// exists per token.
type Conversation struct {
	ID           string    `json:"id"`
	SessionToken string    `json:"session_token"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Message roles as persisted. The store keeps the assistant label as "ai";
// it is normalized to the provider's "model" label only at the LLM boundary.
const (
	RoleUser      = "user"
	RoleAssistant = "ai"
)

// Message stores a single turn in a conversation. Messages are immutable
// once created and totally ordered by CreatedAt within their conversation.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"-"`
	Role           string    `json:"role"`
	Content        string    `json:"text"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ChatResult is what the orchestrator returns for one handled message.
type ChatResult struct {
	Reply      string
	MessageID  string
	TokensUsed *int
	Elapsed    time.Duration
}
