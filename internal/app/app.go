package app

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"helpdesk-ai/backend/internal/api"
	"helpdesk-ai/backend/internal/config"
	"helpdesk-ai/backend/internal/database"
	"helpdesk-ai/backend/internal/llm"
	"helpdesk-ai/backend/internal/ratelimit"
	"helpdesk-ai/backend/internal/repository"
	"helpdesk-ai/backend/internal/service"
)

// App holds the wired application: the open database, the rate limiter and
// the configured HTTP server.
type App struct {
	DB      *sql.DB
	Limiter *ratelimit.Limiter
	Server  *http.Server
}

// NewApp wires all dependencies in order: store, provider, generator,
// orchestrator, limiter, router.
func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	repo := repository.NewSQLiteRepository(db)
	provider := llm.NewGeminiProvider(cfg.GeminiAPIURL, cfg.GeminiAPIKey)
	generator := service.NewReplyGenerator(provider, service.GeneratorConfig{
		Model:        cfg.GeminiModel,
		SystemPrompt: cfg.SystemPrompt,
	})
	chatService := service.NewChatService(repo, generator)

	limiter := ratelimit.New(ratelimit.Config{
		Window:      time.Duration(cfg.RateLimitWindowMS) * time.Millisecond,
		MaxRequests: cfg.RateLimitMaxRequests,
	})

	chatHandler := api.NewChatHandler(chatService)
	router := api.NewRouter(chatHandler, limiter)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		// The message route's retry schedule can legitimately exceed two
		// minutes, so write timeouts are handled per-route instead.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	return &App{DB: db, Limiter: limiter, Server: server}, nil
}

func Run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		// slog is not yet configured, so use the default logger for this critical error.
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	setupLogger(cfg.LogLevel)

	logConfigSource()

	if cfg.GeminiAPIKey == "" {
		slog.Warn("GEMINI_API_KEY is empty; upstream calls will be rejected.")
	}

	app, err := NewApp(cfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		return 1
	}
	defer func() {
		app.Limiter.Stop()
		if err := app.DB.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}()
	slog.Info("Successfully connected to SQLite database.")

	slog.Info("Starting server", "port", cfg.AppPort, "model", cfg.GeminiModel)
	if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		return 1
	}

	return 0
}

func logConfigSource() {
	configFileUsed := viper.ConfigFileUsed()
	if configFileUsed != "" {
		slog.Info("Successfully loaded configuration from file.", "file", configFileUsed)
	} else {
		slog.Info("Configuration file not found. Using environment variables and defaults.")
	}
}

func setupLogger(logLevel string) {
	var level slog.Level
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
