package dto

import (
	"time"

	"appointment-system/internal/domain/entity"

	"github.com/google/uuid"
)

// Request DTOs

// AuditLogFilterRequest is read from the query string of GET /auditlogs.
type AuditLogFilterRequest struct {
	Entity   string `json:"entity" validate:"omitempty,oneof=doctor appointment user"`
	EntityID string `json:"entity_id" validate:"omitempty,max=64"`
	Action   string `json:"action" validate:"omitempty,max=100"`
	Limit    int    `json:"limit" validate:"omitempty,gte=1,lte=500"`
}

// Response DTOs

type AuditLogResponse struct {
	ID        int64       `json:"id"`
	UserID    *uuid.UUID  `json:"user_id,omitempty"`
	Action    string      `json:"action"`
	Metadata  entity.JSON `json:"metadata"`
	CreatedAt time.Time   `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int                `json:"total"`
}
