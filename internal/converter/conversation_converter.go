package converter

import (
	"appointment-system/internal/delivery/dto"
	"appointment-system/internal/domain/entity"
)

func ConversationToResponse(conversation *entity.Conversation) *dto.ConversationResponse {
	if conversation == nil {
		return nil
	}

	history := make([]dto.ChatMessageResponse, len(conversation.History))
	for i, msg := range conversation.History {
		history[i] = dto.ChatMessageResponse{
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		}
	}

	return &dto.ConversationResponse{
		ConversationID: conversation.ID,
		History:        history,
		CreatedAt:      conversation.CreatedAt,
		UpdatedAt:      conversation.UpdatedAt,
	}
}
