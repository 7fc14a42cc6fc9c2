package repository

import (
	"context"
	"time"

	"appointment-system/internal/domain/entity"
)

type ConversationRepository interface {
	// GetOrCreate stamps created_at on first sight and updated_at every call,
	// then returns the stored window.
	GetOrCreate(ctx context.Context, id string, now time.Time) (*entity.Conversation, error)
	// Append adds messages in order and keeps only the newest limit entries.
	Append(ctx context.Context, id string, messages []entity.ChatMessage, limit int, now time.Time) error
	// FindByID returns (nil, nil) for an unknown conversation.
	FindByID(ctx context.Context, id string) (*entity.Conversation, error)
}
