package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"appointment-system/internal/delivery/dto"
	"appointment-system/internal/usecase"
	"appointment-system/pkg/response"

	"github.com/gorilla/mux"
)

// multipartOverhead leaves room for the form fields around the audio part.
const multipartOverhead = 1 << 20

type ChatHandler struct {
	chatUsecase   usecase.ChatUsecase
	maxAudioBytes int64
}

func NewChatHandler(chatUsecase usecase.ChatUsecase, maxAudioBytes int64) *ChatHandler {
	return &ChatHandler{
		chatUsecase:   chatUsecase,
		maxAudioBytes: maxAudioBytes,
	}
}

// Chat accepts either a JSON question or a multipart audio upload.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var input *usecase.ChatTurnInput
	switch mediaType {
	case "application/json":
		var req dto.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
			return
		}
		input = &usecase.ChatTurnInput{
			ConversationID: req.ConversationID,
			Question:       req.Question,
		}
	case "multipart/form-data":
		var ok bool
		input, ok = h.readAudioForm(w, r)
		if !ok {
			return
		}
	default:
		response.UnsupportedMediaType(w, "Unsupported content type")
		return
	}

	resp, err := h.chatUsecase.HandleTurn(r.Context(), input)
	if err != nil {
		switch err {
		case usecase.ErrNoAudio, usecase.ErrEmptyAudio, usecase.ErrEmptyTranscript,
			usecase.ErrQuestionRequired, usecase.ErrConversationIDRequired:
			response.BadRequest(w, capitalize(err.Error()))
		case usecase.ErrTranscriptionFailed:
			response.InternalServerError(w, "Error transcribing audio")
		default:
			response.InternalServerError(w, "An unexpected error occurred")
		}
		return
	}

	response.Success(w, http.StatusOK, "", resp)
}

func (h *ChatHandler) readAudioForm(w http.ResponseWriter, r *http.Request) (*usecase.ChatTurnInput, bool) {
	if h.maxAudioBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxAudioBytes+multipartOverhead)
	}

	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, "Audio file too large", nil)
			return nil, false
		}
		response.BadRequest(w, "Could not read audio data")
		return nil, false
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		response.BadRequest(w, capitalize(usecase.ErrNoAudio.Error()))
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(w, "Could not read audio data")
		return nil, false
	}
	if h.maxAudioBytes > 0 && int64(len(data)) > h.maxAudioBytes {
		response.Error(w, http.StatusRequestEntityTooLarge, "Audio file too large", nil)
		return nil, false
	}

	return &usecase.ChatTurnInput{
		ConversationID: r.FormValue("conversation_id"),
		Audio:          &usecase.AudioInput{Data: data, Filename: header.Filename},
	}, true
}

func (h *ChatHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	conversation, err := h.chatUsecase.GetConversation(r.Context(), vars["conversation_id"])
	if err != nil {
		switch err {
		case usecase.ErrConversationIDRequired:
			response.BadRequest(w, "Conversation ID is required")
		case usecase.ErrConversationNotFound:
			response.NotFound(w, "Conversation not found")
		default:
			response.InternalServerError(w, "Failed to get conversation")
		}
		return
	}

	response.Success(w, http.StatusOK, "Conversation retrieved successfully", conversation)
}
