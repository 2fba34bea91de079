package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	AppPort              int    `mapstructure:"APP_PORT"`
	DatabasePath         string `mapstructure:"DATABASE_PATH"`
	GeminiAPIURL         string `mapstructure:"GEMINI_API_URL"`
	GeminiAPIKey         string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel          string `mapstructure:"GEMINI_MODEL"`
	SystemPrompt         string `mapstructure:"SYSTEM_PROMPT"`
	LogLevel             string `mapstructure:"LOG_LEVEL"`
	RateLimitWindowMS    int    `mapstructure:"RATE_LIMIT_WINDOW_MS"`
	RateLimitMaxRequests int    `mapstructure:"RATE_LIMIT_MAX_REQUESTS"`
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("APP_PORT", 8000)
	viper.SetDefault("DATABASE_PATH", "/data/helpdesk.db")
	viper.SetDefault("GEMINI_API_URL", "https://generativelanguage.googleapis.com")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	viper.SetDefault("SYSTEM_PROMPT", "You are a friendly customer support assistant. Answer concisely and politely, and ask a clarifying question when the request is ambiguous.")
	viper.SetDefault("LOG_LEVEL", "INFO")
	viper.SetDefault("RATE_LIMIT_WINDOW_MS", 60000)
	viper.SetDefault("RATE_LIMIT_MAX_REQUESTS", 20)

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./backend")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
