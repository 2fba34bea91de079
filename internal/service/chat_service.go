package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"helpdesk-ai/backend/internal/model"
	"helpdesk-ai/backend/internal/repository"
)

// ChatService orchestrates one support-chat turn: resolve the conversation
// for a session token, replay its history to the model, and persist both
// new turns atomically.
//
// Two concurrent requests for the same session are not serialized: both may
// resolve, generate and persist independently, and their pairs commit in
// whichever order the transactions complete.
type ChatService struct {
	repo repository.Repository
	gen  Generator
}

func NewChatService(repo repository.Repository, gen Generator) *ChatService {
	return &ChatService{repo: repo, gen: gen}
}

// HandleMessage processes one user message end to end. Any failure before
// persistence aborts with no partial write; a persistence failure is not
// retried and surfaces as a generic error.
func (s *ChatService) HandleMessage(ctx context.Context, sessionToken, userText string) (*model.ChatResult, error) {
	receivedAt := time.Now().UTC()

	conv, err := s.resolveConversation(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	messages, err := s.repo.GetMessages(ctx, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("could not load conversation history: %w", err)
	}

	reply, err := s.gen.Generate(ctx, FormatHistory(messages), userText)
	if err != nil {
		return nil, err
	}

	userMsg := &model.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		Role:           model.RoleUser,
		Content:        userText,
		CreatedAt:      receivedAt,
	}
	assistantMsg := &model.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		Role:           model.RoleAssistant,
		Content:        reply.Text,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repo.AddMessagePair(ctx, conv.ID, userMsg, assistantMsg); err != nil {
		return nil, fmt.Errorf("could not save conversation turns: %w", err)
	}

	return &model.ChatResult{
		Reply:      reply.Text,
		MessageID:  assistantMsg.ID,
		TokensUsed: reply.TokensUsed,
		Elapsed:    reply.Elapsed,
	}, nil
}

// History returns the ordered messages for a session token. An unseen
// session yields an empty slice, not an error.
func (s *ChatService) History(ctx context.Context, sessionToken string) ([]model.Message, error) {
	conv, err := s.repo.GetConversationBySession(ctx, sessionToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []model.Message{}, nil
		}
		return nil, fmt.Errorf("could not look up conversation: %w", err)
	}

	messages, err := s.repo.GetMessages(ctx, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("could not load messages: %w", err)
	}
	if messages == nil {
		messages = []model.Message{}
	}
	return messages, nil
}

// resolveConversation finds the conversation for a session token, creating
// it on first contact. The store's uniqueness constraint on the token is
// the arbiter when two concurrent creates race: the loser re-fetches the
// winner's row instead of producing a second conversation.
func (s *ChatService) resolveConversation(ctx context.Context, sessionToken string) (*model.Conversation, error) {
	conv, err := s.repo.GetConversationBySession(ctx, sessionToken)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("could not look up conversation: %w", err)
	}

	now := time.Now().UTC()
	conv = &model.Conversation{
		ID:           uuid.NewString(),
		SessionToken: sessionToken,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = s.repo.CreateConversation(ctx, conv)
	if err == nil {
		slog.Info("Created conversation", "conversation_id", conv.ID)
		return conv, nil
	}
	if errors.Is(err, repository.ErrDuplicate) {
		// Lost the create race; the other writer's row is authoritative.
		return s.repo.GetConversationBySession(ctx, sessionToken)
	}
	return nil, fmt.Errorf("could not create conversation: %w", err)
}

var _ Generator = (*ReplyGenerator)(nil)
