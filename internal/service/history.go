package service

import (
	"helpdesk-ai/backend/internal/llm"
	"helpdesk-ai/backend/internal/model"
)

// FormatHistory maps stored conversation turns to the provider's expected
// turn format. It is a pure structural re-tagging: no reordering, no
// truncation, no deduplication. The store's assistant label ("ai") becomes
// the provider's "model"; the user role passes through unchanged.
func FormatHistory(messages []model.Message) []llm.Content {
	contents := make([]llm.Content, 0, len(messages))
	for _, msg := range messages {
		role := msg.Role
		switch role {
		case model.RoleAssistant, "assistant", "model":
			role = "model"
		}
		contents = append(contents, llm.Content{
			Role:  role,
			Parts: []llm.Part{{Text: msg.Content}},
		})
	}
	return contents
}
