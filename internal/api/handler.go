package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	app_errors "helpdesk-ai/backend/internal/errors"
	"helpdesk-ai/backend/internal/interfaces"
)

// ChatHandler handles the HTTP surface of the support chat.
type ChatHandler struct {
	service interfaces.ChatService
}

func NewChatHandler(svc interfaces.ChatService) *ChatHandler {
	return &ChatHandler{service: svc}
}

// SendMessageRequest is the DTO for the message endpoint. The message is
// trimmed before validation; max counts runes.
type SendMessageRequest struct {
	Message   string `json:"message" validate:"required,min=1,max=2000" example:"My order hasn't arrived yet."`
	SessionID string `json:"sessionId" validate:"required,uuid" example:"4f2c6e6a-8a3d-4f6e-b2c1-0a9d8e7f6a5b"`
}

// HandleSendMessage godoc
// @Summary      Send a chat message
// @Description  Submits a user message for a session and returns the assistant's reply with performance metadata.
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        messageRequest  body  SendMessageRequest  true  "User message and session id"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      429  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse
// @Failure      504  {object}  ErrorResponse
// @Router       /chat/message [post]
func (h *ChatHandler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request body", app_errors.ErrValidation))
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}

	result, err := h.service.HandleMessage(r.Context(), req.SessionID, req.Message)
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, MessageResponse{
		Reply:     result.Reply,
		SessionID: req.SessionID,
		MessageID: result.MessageID,
		Metadata: MessageMetadata{
			TokensUsed:   result.TokensUsed,
			ResponseTime: result.Elapsed.Milliseconds(),
		},
	})
}

// sessionIDParam is validated separately because it arrives as a URL
// parameter, not a JSON body.
type sessionIDParam struct {
	SessionID string `validate:"required,uuid"`
}

// HandleGetHistory godoc
// @Summary      Get conversation history
// @Description  Returns all messages for a session in creation order. An unseen session yields an empty list.
// @Tags         Chat
// @Produce      json
// @Param        sessionID  path  string  true  "Session id (UUID)"
// @Success      200  {object}  HistoryResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /chat/history/{sessionID} [get]
func (h *ChatHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := validateRequest(&sessionIDParam{SessionID: sessionID}); err != nil {
		respondWithError(w, err)
		return
	}

	messages, err := h.service.History(r.Context(), sessionID)
	if err != nil {
		respondWithError(w, err)
		return
	}

	resp := HistoryResponse{Messages: make([]HistoryMessage, 0, len(messages))}
	for _, msg := range messages {
		resp.Messages = append(resp.Messages, HistoryMessage{
			ID:        msg.ID,
			Role:      msg.Role,
			Text:      msg.Content,
			CreatedAt: msg.CreatedAt.Format(time.RFC3339),
		})
	}
	respondWithJSON(w, http.StatusOK, resp)
}
