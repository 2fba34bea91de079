package repository

import (
	"context"

	"helpdesk-ai/backend/internal/model"
)

// Repository defines the interface for data storage operations.
// This interface makes it easy to switch database implementations.
type Repository interface {
	CreateConversation(ctx context.Context, conv *model.Conversation) error
	GetConversationBySession(ctx context.Context, sessionToken string) (*model.Conversation, error)

	GetMessages(ctx context.Context, conversationID string) ([]model.Message, error)

	// AddMessagePair persists a user turn and the corresponding assistant
	// turn as a single atomic unit: both become visible or neither does.
	AddMessagePair(ctx context.Context, conversationID string, userMsg, assistantMsg *model.Message) error
}
