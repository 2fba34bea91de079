package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	app_errors "helpdesk-ai/backend/internal/errors"
	"helpdesk-ai/backend/internal/llm"
)

const (
	defaultMaxAttempts = 3
	defaultCallTimeout = 30 * time.Second

	// fallbackRetryDelay is used when the schedule runs out of entries.
	fallbackRetryDelay = 10 * time.Second
)

// defaultRetryDelays is the escalating backoff schedule for upstream rate
// limits. The steps are tuned to cross the upstream's one-minute quota
// window, which is why the last one is just past 60s.
var defaultRetryDelays = []time.Duration{10 * time.Second, 30 * time.Second, 65 * time.Second}

// Reply is the outcome of one successful generation.
type Reply struct {
	Text       string
	TokensUsed *int
	Elapsed    time.Duration
}

// Generator produces a model reply for a conversation history plus one new
// user turn.
type Generator interface {
	Generate(ctx context.Context, history []llm.Content, userText string) (*Reply, error)
}

type GeneratorConfig struct {
	Model        string
	SystemPrompt string
	MaxAttempts  int
	RetryDelays  []time.Duration
	CallTimeout  time.Duration
}

// ReplyGenerator wraps a provider with the retry, fallback and timeout
// policies. The active model is process-wide mutable state: once a fallback
// happens it sticks for every subsequent call until restart.
type ReplyGenerator struct {
	llm llm.Provider

	systemPrompt string
	maxAttempts  int
	retryDelays  []time.Duration
	callTimeout  time.Duration

	mu    sync.Mutex
	model string

	// sleep is context-aware and replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewReplyGenerator(provider llm.Provider, cfg GeneratorConfig) *ReplyGenerator {
	if cfg.Model == "" {
		cfg.Model = llm.DefaultModel
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.RetryDelays == nil {
		cfg.RetryDelays = defaultRetryDelays
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	return &ReplyGenerator{
		llm:          provider,
		systemPrompt: cfg.SystemPrompt,
		maxAttempts:  cfg.MaxAttempts,
		retryDelays:  cfg.RetryDelays,
		callTimeout:  cfg.CallTimeout,
		model:        cfg.Model,
		sleep:        sleepCtx,
	}
}

// ActiveModel reports the model currently in use. It changes only through
// the not-found fallback.
func (g *ReplyGenerator) ActiveModel() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.model
}

func (g *ReplyGenerator) setModel(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.model = name
}

// Generate submits the history plus the new user turn and applies the
// recovery policies, expressed as a bounded attempt loop:
//   - upstream 429: sleep through the escalating schedule and retry, up to
//     maxAttempts calls in total, then fail with ErrRateLimitExceeded;
//   - upstream 404: switch to the default model and retry immediately
//     without consuming an attempt, unless the default itself was rejected
//     (ErrModelNotFound);
//   - deadline exhaustion: ErrTimeout, the in-flight result is abandoned;
//   - anything else: ErrUpstream, no retry.
func (g *ReplyGenerator) Generate(ctx context.Context, history []llm.Content, userText string) (*Reply, error) {
	contents := append(append([]llm.Content{}, history...), llm.Content{
		Role:  "user",
		Parts: []llm.Part{{Text: userText}},
	})

	start := time.Now()
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		activeModel := g.ActiveModel()
		req := &llm.GenerateRequest{
			Model:             activeModel,
			Contents:          contents,
			SystemInstruction: g.systemPrompt,
		}

		callCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
		resp, err := g.llm.Generate(callCtx, req)
		cancel()

		if err == nil {
			elapsed := time.Since(start)
			reply := &Reply{Text: resp.Text, TokensUsed: resp.TokensUsed, Elapsed: elapsed}
			logArgs := []any{"attempt", attempt, "model", activeModel, "latency_ms", elapsed.Milliseconds()}
			if resp.TokensUsed != nil {
				logArgs = append(logArgs, "tokens_used", *resp.TokensUsed)
			}
			slog.Info("Generated reply", logArgs...)
			return reply, nil
		}

		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			slog.Warn("Upstream call timed out", "attempt", attempt, "model", activeModel, "timeout", g.callTimeout)
			return nil, fmt.Errorf("%w after %s", app_errors.ErrTimeout, g.callTimeout)
		}

		var apiErr *llm.APIError
		if !errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%w: %s", app_errors.ErrUpstream, err.Error())
		}

		switch apiErr.StatusCode {
		case http.StatusTooManyRequests:
			if attempt == g.maxAttempts {
				slog.Warn("Upstream rate limit persisted through all attempts", "attempts", g.maxAttempts)
				return nil, fmt.Errorf("%w: %s", app_errors.ErrRateLimitExceeded, apiErr.Message)
			}
			delay := fallbackRetryDelay
			if attempt-1 < len(g.retryDelays) {
				delay = g.retryDelays[attempt-1]
			}
			slog.Warn("Upstream rate limited, backing off", "attempt", attempt, "delay", delay)
			if err := g.sleep(ctx, delay); err != nil {
				return nil, fmt.Errorf("%w: %s", app_errors.ErrUpstream, err.Error())
			}
		case http.StatusNotFound:
			if activeModel != llm.DefaultModel {
				slog.Warn("Model unavailable, falling back to default", "model", activeModel, "default", llm.DefaultModel)
				g.setModel(llm.DefaultModel)
				// The fallback call does not consume a retry attempt.
				attempt--
				continue
			}
			return nil, fmt.Errorf("%w: %s", app_errors.ErrModelNotFound, apiErr.Message)
		default:
			return nil, fmt.Errorf("%w: %s", app_errors.ErrUpstream, apiErr.Message)
		}
	}

	return nil, fmt.Errorf("%w: retry budget exhausted", app_errors.ErrRateLimitExceeded)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
