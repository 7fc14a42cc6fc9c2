package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"appointment-system/internal/domain/entity"
	domainRepo "appointment-system/internal/domain/repository"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Metadata and history live under distinct prefixes so no id can name another id's key.
const (
	conversationMetaPrefix    = "conversation:meta:"
	conversationHistoryPrefix = "conversation:history:"
)

// getOrCreateConversationScript stamps the metadata hash and returns
// {created_at, updated_at, history} in one round trip.
var getOrCreateConversationScript = redis.NewScript(`
	redis.call('HSETNX', KEYS[1], 'created_at', ARGV[1])
	redis.call('HSET', KEYS[1], 'updated_at', ARGV[1])
	local meta = redis.call('HMGET', KEYS[1], 'created_at', 'updated_at')
	local history = redis.call('LRANGE', KEYS[2], 0, -1)
	return {meta[1], meta[2], history}
`)

type conversationRepository struct {
	redisClient *redis.Client
	tracer      trace.Tracer
}

func NewConversationRepository(redisClient *redis.Client) domainRepo.ConversationRepository {
	return &conversationRepository{
		redisClient: redisClient,
		tracer:      otel.Tracer("appointment-system/internal/repository/conversation"),
	}
}

func (r *conversationRepository) GetOrCreate(ctx context.Context, id string, now time.Time) (*entity.Conversation, error) {
	ctx, span := r.tracer.Start(ctx, "conversation.get_or_create", trace.WithAttributes(attribute.String("conversation.id", id)))
	defer span.End()

	raw, err := getOrCreateConversationScript.Run(ctx, r.redisClient,
		[]string{conversationKey(id), conversationHistoryKey(id)},
		now.UTC().Format(time.RFC3339Nano),
	).Slice()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: get or create %q: %w", id, err)
	}
	if len(raw) != 3 {
		return nil, fmt.Errorf("conversation: unexpected script reply of length %d", len(raw))
	}

	createdAt, _ := raw[0].(string)
	updatedAt, _ := raw[1].(string)
	items, _ := raw[2].([]interface{})

	history := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			history = append(history, s)
		}
	}

	return buildConversation(id, createdAt, updatedAt, history)
}

func (r *conversationRepository) Append(ctx context.Context, id string, messages []entity.ChatMessage, limit int, now time.Time) error {
	ctx, span := r.tracer.Start(ctx, "conversation.append", trace.WithAttributes(
		attribute.String("conversation.id", id),
		attribute.Int("conversation.messages", len(messages)),
	))
	defer span.End()

	if len(messages) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(messages))
	for _, msg := range messages {
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("conversation: marshal message: %w", err)
		}
		values = append(values, data)
	}

	historyKey := conversationHistoryKey(id)
	pipe := r.redisClient.TxPipeline()
	pipe.RPush(ctx, historyKey, values...)
	if limit > 0 {
		pipe.LTrim(ctx, historyKey, int64(-limit), -1)
	}
	pipe.HSet(ctx, conversationKey(id), "updated_at", now.UTC().Format(time.RFC3339Nano))
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: append to %q: %w", id, err)
	}
	return nil
}

func (r *conversationRepository) FindByID(ctx context.Context, id string) (*entity.Conversation, error) {
	ctx, span := r.tracer.Start(ctx, "conversation.find", trace.WithAttributes(attribute.String("conversation.id", id)))
	defer span.End()

	pipe := r.redisClient.Pipeline()
	metaCmd := pipe.HMGet(ctx, conversationKey(id), "created_at", "updated_at")
	historyCmd := pipe.LRange(ctx, conversationHistoryKey(id), 0, -1)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: find %q: %w", id, err)
	}

	meta := metaCmd.Val()
	if len(meta) != 2 || meta[0] == nil {
		return nil, nil
	}
	createdAt, _ := meta[0].(string)
	updatedAt, _ := meta[1].(string)

	return buildConversation(id, createdAt, updatedAt, historyCmd.Val())
}

func buildConversation(id, createdAt, updatedAt string, history []string) (*entity.Conversation, error) {
	conversation := &entity.Conversation{
		ID:      id,
		History: make([]entity.ChatMessage, 0, len(history)),
	}

	var err error
	if conversation.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("conversation: parse created_at: %w", err)
	}
	if conversation.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("conversation: parse updated_at: %w", err)
	}

	for _, item := range history {
		var msg entity.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("conversation: decode message: %w", err)
		}
		conversation.History = append(conversation.History, msg)
	}

	return conversation, nil
}

func conversationKey(id string) string {
	return conversationMetaPrefix + id
}

func conversationHistoryKey(id string) string {
	return conversationHistoryPrefix + id
}
