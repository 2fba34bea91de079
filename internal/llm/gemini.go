package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DefaultModel is the model every deployment can fall back to when the
// configured one is rejected by the upstream.
const DefaultModel = "gemini-2.5-flash"

// Provider defines the interface for interacting with a hosted language
// model. One concrete implementation exists per upstream provider, selected
// at construction time.
type Provider interface {
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
}

// Content is one conversation turn in the provider's wire format.
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

type Part struct {
	Text string `json:"text"`
}

type GenerateRequest struct {
	Model             string
	Contents          []Content
	SystemInstruction string
}

// GenerateResponse carries the generated text and, when the upstream
// reports it, the total token usage for the call.
type GenerateResponse struct {
	Text       string
	TokensUsed *int
}

// APIError is returned for any non-200 upstream response. The status code
// is what the retry and fallback policies discriminate on (429 = rate
// limit, 404 = model unavailable).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream api error (status %d): %s", e.StatusCode, e.Message)
}

type geminiProvider struct {
	client *http.Client
	url    string
	apiKey string
}

// NewGeminiProvider creates a Provider backed by the Gemini generateContent
// REST endpoint. url is the API base (overridable for tests).
func NewGeminiProvider(url, apiKey string) Provider {
	return &geminiProvider{
		client: &http.Client{},
		url:    url,
		apiKey: apiKey,
	}
}

// Wire types for the generateContent endpoint.
type geminiRequest struct {
	Contents          []Content         `json:"contents"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content Content `json:"content"`
	} `json:"candidates"`
	UsageMetadata *struct {
		TotalTokenCount int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generation parameters are fixed: output length is capped and the sampling
// temperature balances determinism and variety.
const (
	temperature     = 0.7
	maxOutputTokens = 1024
)

func (p *geminiProvider) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	payload := geminiRequest{
		Contents: req.Contents,
		GenerationConfig: &generationConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxOutputTokens,
		},
	}
	if req.SystemInstruction != "" {
		payload.SystemInstruction = &Content{Parts: []Part{{Text: req.SystemInstruction}}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", p.url, req.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("could not create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(bodyBytes)}
		var errResp geminiErrorResponse
		if err := json.Unmarshal(bodyBytes, &errResp); err == nil && errResp.Error.Message != "" {
			apiErr.Message = errResp.Error.Message
		}
		return nil, apiErr
	}

	var genResp geminiResponse
	if err := json.Unmarshal(bodyBytes, &genResp); err != nil {
		return nil, fmt.Errorf("could not decode response: %s", string(bodyBytes))
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("upstream returned no candidates")
	}

	result := &GenerateResponse{Text: genResp.Candidates[0].Content.Parts[0].Text}
	if genResp.UsageMetadata != nil {
		tokens := genResp.UsageMetadata.TotalTokenCount
		result.TokensUsed = &tokens
	}
	return result, nil
}
