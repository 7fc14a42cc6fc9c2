package dto

import "time"

// Request DTOs

type ChatRequest struct {
	Question       string `json:"question"`
	ConversationID string `json:"conversation_id"`
}

// Response DTOs

type ChatResponse struct {
	Response       string `json:"response"`
	ConversationID string `json:"conversation_id"`
	Intent         string `json:"intent"`
	Transcript     string `json:"transcript,omitempty"`
}

type ChatMessageResponse struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type ConversationResponse struct {
	ConversationID string                `json:"conversation_id"`
	History        []ChatMessageResponse `json:"history"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}
