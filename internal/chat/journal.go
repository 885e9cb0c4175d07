package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	journalTTL = 24 * time.Hour

	// Older turns are dropped so the prompt stays bounded.
	journalMaxTurns = 20
)

// journal keeps the recent conversation turns for one tenant/visitor pair in
// Redis. The stored turns exclude the seed; they are appended after it on
// every model call, and the last assistant turn doubles as the dedupe
// reference.
type journal struct {
	redis  *redis.Client
	tracer trace.Tracer
}

func newJournal(redisClient *redis.Client, tracer trace.Tracer) *journal {
	if redisClient == nil {
		panic("chat: redis client cannot be nil")
	}
	if tracer == nil {
		tracer = otel.Tracer("sitechat.internal.chat.journal")
	}
	return &journal{redis: redisClient, tracer: tracer}
}

func journalKey(tenantID, visitorID string) string {
	return fmt.Sprintf("chat:journal:%s:%s", tenantID, visitorID)
}

func (j *journal) Save(ctx context.Context, tenantID, visitorID string, turns []Message) error {
	ctx, span := j.tracer.Start(ctx, "chat.save_journal")
	defer span.End()

	if len(turns) > journalMaxTurns {
		turns = turns[len(turns)-journalMaxTurns:]
	}
	data, err := json.Marshal(turns)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("chat: failed to marshal journal: %w", err)
	}
	if err := j.redis.Set(ctx, journalKey(tenantID, visitorID), data, journalTTL).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("chat: failed to persist journal: %w", err)
	}
	return nil
}

// Load returns the stored turns, or nil when the visitor has no journal yet.
func (j *journal) Load(ctx context.Context, tenantID, visitorID string) ([]Message, error) {
	ctx, span := j.tracer.Start(ctx, "chat.load_journal")
	defer span.End()

	data, err := j.redis.Get(ctx, journalKey(tenantID, visitorID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("chat: failed to load journal: %w", err)
	}

	var turns []Message
	if err := json.Unmarshal(data, &turns); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("chat: failed to decode journal: %w", err)
	}
	return turns, nil
}

// lastAssistantReply returns the most recent assistant turn, or "".
func lastAssistantReply(turns []Message) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == RoleAssistant {
			return turns[i].Content
		}
	}
	return ""
}
