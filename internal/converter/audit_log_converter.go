package converter

import (
	"strings"

	"appointment-system/internal/delivery/dto"
	"appointment-system/internal/domain/entity"
)

// AuditLogToResponse converts a AuditLog entity to AuditLogResponse DTO
func AuditLogToResponse(log *entity.AuditLog) *dto.AuditLogResponse {
	if log == nil {
		return nil
	}

	return &dto.AuditLogResponse{
		ID:        log.ID,
		UserID:    log.UserID,
		Action:    log.Action,
		Metadata:  log.Metadata,
		CreatedAt: log.CreatedAt,
	}
}

// AuditLogsToResponses converts a slice of AuditLog entities to slice of AuditLogResponse DTOs
func AuditLogsToResponses(logs []entity.AuditLog) []dto.AuditLogResponse {
	responses := make([]dto.AuditLogResponse, len(logs))
	for i, log := range logs {
		responses[i] = *AuditLogToResponse(&log)
	}
	return responses
}

// AuditLogFilterFromRequest trims the query values into a repository filter.
func AuditLogFilterFromRequest(req *dto.AuditLogFilterRequest) entity.AuditLogFilter {
	if req == nil {
		return entity.AuditLogFilter{}
	}
	return entity.AuditLogFilter{
		Entity:   strings.TrimSpace(req.Entity),
		EntityID: strings.TrimSpace(req.EntityID),
		Action:   strings.TrimSpace(req.Action),
		Limit:    req.Limit,
	}
}
