package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"helpdesk-ai/backend/internal/llm"
	"helpdesk-ai/backend/internal/model"
	"helpdesk-ai/backend/internal/repository"
	mock_repo "helpdesk-ai/backend/internal/repository/mocks"
	"helpdesk-ai/backend/internal/service"
)

// stubGenerator satisfies service.Generator without the retry machinery.
type stubGenerator struct {
	mock.Mock
}

func (g *stubGenerator) Generate(ctx context.Context, history []llm.Content, userText string) (*service.Reply, error) {
	args := g.Called(ctx, history, userText)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Reply), args.Error(1)
}

func setupChatService(t *testing.T) (*service.ChatService, *mock_repo.MockRepository, *stubGenerator) {
	repo := mock_repo.NewMockRepository(t)
	gen := &stubGenerator{}
	gen.Test(t)
	t.Cleanup(func() { gen.AssertExpectations(t) })
	return service.NewChatService(repo, gen), repo, gen
}

const sessionToken = "4f2c6e6a-8a3d-4f6e-b2c1-0a9d8e7f6a5b"

func TestChatService_HandleMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - existing conversation", func(t *testing.T) {
		chatService, repo, gen := setupChatService(t)

		conv := &model.Conversation{ID: "conv-1", SessionToken: sessionToken}
		history := []model.Message{
			{Role: model.RoleUser, Content: "earlier question"},
			{Role: model.RoleAssistant, Content: "earlier answer"},
		}
		tokens := 21

		repo.On("GetConversationBySession", ctx, sessionToken).Return(conv, nil).Once()
		repo.On("GetMessages", ctx, "conv-1").Return(history, nil).Once()
		gen.On("Generate", ctx, mock.MatchedBy(func(contents []llm.Content) bool {
			return len(contents) == 2 && contents[1].Role == "model"
		}), "Hi").Return(&service.Reply{Text: "Hello!", TokensUsed: &tokens, Elapsed: 120 * time.Millisecond}, nil).Once()
		repo.On("AddMessagePair", ctx, "conv-1",
			mock.MatchedBy(func(m *model.Message) bool { return m.Role == model.RoleUser && m.Content == "Hi" }),
			mock.MatchedBy(func(m *model.Message) bool { return m.Role == model.RoleAssistant && m.Content == "Hello!" }),
		).Return(nil).Once()

		result, err := chatService.HandleMessage(ctx, sessionToken, "Hi")
		require.NoError(t, err)
		assert.Equal(t, "Hello!", result.Reply)
		assert.NotEmpty(t, result.MessageID)
		assert.Equal(t, 21, *result.TokensUsed)
		assert.Equal(t, 120*time.Millisecond, result.Elapsed)
	})

	t.Run("Success - first message creates the conversation", func(t *testing.T) {
		chatService, repo, gen := setupChatService(t)

		repo.On("GetConversationBySession", ctx, sessionToken).Return(nil, repository.ErrNotFound).Once()
		repo.On("CreateConversation", ctx, mock.MatchedBy(func(c *model.Conversation) bool {
			return c.SessionToken == sessionToken && c.ID != ""
		})).Return(nil).Once()
		repo.On("GetMessages", ctx, mock.AnythingOfType("string")).Return([]model.Message{}, nil).Once()
		gen.On("Generate", ctx, mock.Anything, "Hi").Return(&service.Reply{Text: "Hello!"}, nil).Once()
		repo.On("AddMessagePair", ctx, mock.AnythingOfType("string"), mock.Anything, mock.Anything).Return(nil).Once()

		result, err := chatService.HandleMessage(ctx, sessionToken, "Hi")
		require.NoError(t, err)
		assert.Equal(t, "Hello!", result.Reply)
		assert.Nil(t, result.TokensUsed)
	})

	t.Run("Lost create race re-fetches the winner", func(t *testing.T) {
		chatService, repo, gen := setupChatService(t)

		winner := &model.Conversation{ID: "conv-winner", SessionToken: sessionToken}
		repo.On("GetConversationBySession", ctx, sessionToken).Return(nil, repository.ErrNotFound).Once()
		repo.On("CreateConversation", ctx, mock.Anything).Return(repository.ErrDuplicate).Once()
		repo.On("GetConversationBySession", ctx, sessionToken).Return(winner, nil).Once()
		repo.On("GetMessages", ctx, "conv-winner").Return([]model.Message{}, nil).Once()
		gen.On("Generate", ctx, mock.Anything, "Hi").Return(&service.Reply{Text: "Hello!"}, nil).Once()
		repo.On("AddMessagePair", ctx, "conv-winner", mock.Anything, mock.Anything).Return(nil).Once()

		_, err := chatService.HandleMessage(ctx, sessionToken, "Hi")
		assert.NoError(t, err)
	})

	t.Run("Generator failure aborts before persistence", func(t *testing.T) {
		chatService, repo, gen := setupChatService(t)

		conv := &model.Conversation{ID: "conv-1", SessionToken: sessionToken}
		repo.On("GetConversationBySession", ctx, sessionToken).Return(conv, nil).Once()
		repo.On("GetMessages", ctx, "conv-1").Return([]model.Message{}, nil).Once()
		gen.On("Generate", ctx, mock.Anything, "Hi").Return(nil, errors.New("upstream down")).Once()

		_, err := chatService.HandleMessage(ctx, sessionToken, "Hi")
		assert.Error(t, err)
		repo.AssertNotCalled(t, "AddMessagePair", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Persistence failure surfaces as a generic error", func(t *testing.T) {
		chatService, repo, gen := setupChatService(t)

		conv := &model.Conversation{ID: "conv-1", SessionToken: sessionToken}
		repo.On("GetConversationBySession", ctx, sessionToken).Return(conv, nil).Once()
		repo.On("GetMessages", ctx, "conv-1").Return([]model.Message{}, nil).Once()
		gen.On("Generate", ctx, mock.Anything, "Hi").Return(&service.Reply{Text: "Hello!"}, nil).Once()
		repo.On("AddMessagePair", ctx, "conv-1", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

		_, err := chatService.HandleMessage(ctx, sessionToken, "Hi")
		assert.ErrorContains(t, err, "could not save conversation turns")
	})
}

func TestChatService_History(t *testing.T) {
	ctx := context.Background()

	t.Run("Unseen session yields an empty slice", func(t *testing.T) {
		chatService, repo, _ := setupChatService(t)
		repo.On("GetConversationBySession", ctx, sessionToken).Return(nil, repository.ErrNotFound).Once()

		messages, err := chatService.History(ctx, sessionToken)
		require.NoError(t, err)
		assert.NotNil(t, messages)
		assert.Empty(t, messages)
	})

	t.Run("Messages come back in creation order", func(t *testing.T) {
		chatService, repo, _ := setupChatService(t)
		conv := &model.Conversation{ID: "conv-1", SessionToken: sessionToken}
		stored := []model.Message{
			{ID: "m1", Role: model.RoleUser, Content: "Hi"},
			{ID: "m2", Role: model.RoleAssistant, Content: "Hello!"},
		}
		repo.On("GetConversationBySession", ctx, sessionToken).Return(conv, nil).Once()
		repo.On("GetMessages", ctx, "conv-1").Return(stored, nil).Once()

		messages, err := chatService.History(ctx, sessionToken)
		require.NoError(t, err)
		assert.Equal(t, stored, messages)
	})

	t.Run("Store failure propagates", func(t *testing.T) {
		chatService, repo, _ := setupChatService(t)
		repo.On("GetConversationBySession", ctx, sessionToken).Return(nil, errors.New("db error")).Once()

		_, err := chatService.History(ctx, sessionToken)
		assert.Error(t, err)
	})
}

// Resolving the same unseen token twice in sequence must reuse one
// conversation, never create a second.
func TestChatService_ResolveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	chatService, repo, gen := setupChatService(t)

	conv := &model.Conversation{ID: "conv-1", SessionToken: sessionToken}
	repo.On("GetConversationBySession", ctx, sessionToken).Return(nil, repository.ErrNotFound).Once()
	repo.On("CreateConversation", ctx, mock.Anything).Return(nil).Once()
	repo.On("GetConversationBySession", ctx, sessionToken).Return(conv, nil).Once()
	repo.On("GetMessages", ctx, mock.AnythingOfType("string")).Return([]model.Message{}, nil).Twice()
	gen.On("Generate", ctx, mock.Anything, mock.AnythingOfType("string")).Return(&service.Reply{Text: "Hello!"}, nil).Twice()
	repo.On("AddMessagePair", ctx, mock.AnythingOfType("string"), mock.Anything, mock.Anything).Return(nil).Twice()

	_, err := chatService.HandleMessage(ctx, sessionToken, "first")
	require.NoError(t, err)
	_, err = chatService.HandleMessage(ctx, sessionToken, "second")
	require.NoError(t, err)

	repo.AssertNumberOfCalls(t, "CreateConversation", 1)
}
