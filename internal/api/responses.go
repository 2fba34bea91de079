package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	app_errors "helpdesk-ai/backend/internal/errors"
)

// This file contains shared DTOs for API responses and helpers for sending
// consistent HTTP responses. Every error carries a stable, machine-readable
// errorCode so clients can react programmatically (localized messages,
// client-side retry with backoff, and so on).

// Machine-readable error codes exposed to clients.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeRateLimit          = "RATE_LIMIT"
	CodeTimeout            = "TIMEOUT"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeNotFound           = "NOT_FOUND"
	CodeUnknown            = "UNKNOWN"
)

// ErrorResponse defines the standard JSON structure for error messages.
type ErrorResponse struct {
	Error      string `json:"error"`
	ErrorCode  string `json:"errorCode"`
	Details    string `json:"details,omitempty"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

// MessageResponse is the success payload for POST /api/chat/message.
type MessageResponse struct {
	Reply     string          `json:"reply"`
	SessionID string          `json:"sessionId"`
	MessageID string          `json:"messageId"`
	Metadata  MessageMetadata `json:"metadata"`
}

type MessageMetadata struct {
	TokensUsed   *int  `json:"tokensUsed,omitempty"`
	ResponseTime int64 `json:"responseTime"`
}

// HistoryResponse is the success payload for GET /api/chat/history/{sessionID}.
type HistoryResponse struct {
	Messages []HistoryMessage `json:"messages"`
}

type HistoryMessage struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

// respondWithError is the centralized error handler for the API layer. It
// maps business-layer sentinel errors to HTTP status codes and error codes.
func respondWithError(w http.ResponseWriter, err error) {
	var statusCode int
	resp := ErrorResponse{}

	switch {
	case errors.Is(err, app_errors.ErrValidation):
		statusCode = http.StatusBadRequest
		resp.Error = "Invalid request."
		resp.ErrorCode = CodeValidation
		// The validation message is already descriptive and safe to show.
		resp.Details = err.Error()
	case errors.Is(err, app_errors.ErrRateLimited):
		statusCode = http.StatusTooManyRequests
		resp.Error = "Too many requests. Please slow down and try again."
		resp.ErrorCode = CodeRateLimit
	case errors.Is(err, app_errors.ErrTimeout):
		statusCode = http.StatusGatewayTimeout
		resp.Error = "The assistant took too long to respond. Please try again."
		resp.ErrorCode = CodeTimeout
	case errors.Is(err, app_errors.ErrRateLimitExceeded),
		errors.Is(err, app_errors.ErrModelNotFound),
		errors.Is(err, app_errors.ErrUpstream):
		statusCode = http.StatusServiceUnavailable
		resp.Error = "The assistant is temporarily unavailable. Please try again shortly."
		resp.ErrorCode = CodeServiceUnavailable
	case errors.Is(err, app_errors.ErrNotFound):
		statusCode = http.StatusNotFound
		resp.Error = "The requested resource was not found."
		resp.ErrorCode = CodeNotFound
	default:
		// Any unhandled error is an internal one; don't leak details.
		statusCode = http.StatusInternalServerError
		resp.Error = "An unexpected internal server error occurred."
		resp.ErrorCode = CodeUnknown
	}

	slog.Warn("Responding with error", "status_code", statusCode, "error_code", resp.ErrorCode, "internal_error", err)

	respondWithJSON(w, statusCode, resp)
}

// respondWithJSON marshals a payload and writes it with a status code.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal JSON response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}
