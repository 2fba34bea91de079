package interfaces

import (
	"context"

	"helpdesk-ai/backend/internal/model"
)

// This file defines the interfaces for our core services.
// Depending on these interfaces, instead of concrete implementations, allows for
// decoupling (e.g., API layer from Service layer) and easier testing via mocking.

// ChatService defines the contract for the support-chat business logic.
type ChatService interface {
	HandleMessage(ctx context.Context, sessionToken, userText string) (*model.ChatResult, error)
	History(ctx context.Context, sessionToken string) ([]model.Message, error)
}
