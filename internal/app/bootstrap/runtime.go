// Package bootstrap wires external runtime dependencies (Redis, Postgres,
// LLM providers) from configuration. Each builder degrades gracefully:
// missing optional backends return nil instead of failing startup.
package bootstrap

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/sitechat/widget-ai-platform/internal/chat"
	appconfig "github.com/sitechat/widget-ai-platform/internal/config"
	"github.com/sitechat/widget-ai-platform/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}

// BuildDB opens the Postgres pool via the pgx stdlib driver, or returns nil
// when no DATABASE_URL is configured.
func BuildDB(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *sql.DB {
	if cfg == nil || strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Warn("failed to open database", "error", err)
		return nil
	}
	if err := db.PingContext(ctx); err != nil {
		logger.Warn("database not available", "error", err)
		_ = db.Close()
		return nil
	}
	return db
}

// BuildLLMClient assembles the completion chain: OpenAI primary with an
// optional Gemini fallback. At least one provider key is required.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (chat.LLMClient, error) {
	var primary, fallback chat.LLMClient

	if cfg.OpenAIAPIKey != "" {
		client, err := chat.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: openai client: %w", err)
		}
		primary = client
	}
	if cfg.GeminiAPIKey != "" {
		client, err := chat.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: gemini client: %w", err)
		}
		if primary == nil {
			primary = client
		} else {
			fallback = client
		}
	}
	if primary == nil {
		return nil, fmt.Errorf("bootstrap: no LLM provider configured (set OPENAI_API_KEY or GEMINI_API_KEY)")
	}
	return chat.NewFallbackClient(primary, fallback, logger), nil
}
