package entity

import "time"

// ConversationHistoryLimit caps the stored history window.
const ConversationHistoryLimit = 20

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one entry of a conversation history.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is the stored state of a chat, keyed by a client-supplied id.
type Conversation struct {
	ID        string        `json:"conversation_id"`
	History   []ChatMessage `json:"history"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

