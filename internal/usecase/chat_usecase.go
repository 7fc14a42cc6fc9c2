package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"appointment-system/internal/converter"
	"appointment-system/internal/delivery/dto"
	"appointment-system/internal/domain/entity"
	"appointment-system/internal/domain/gateway"
	"appointment-system/internal/domain/repository"
	"appointment-system/internal/observability/metrics"

	"github.com/sirupsen/logrus"
)

var (
	ErrNoAudio                = errors.New("no audio file provided")
	ErrEmptyAudio             = errors.New("empty audio file")
	ErrEmptyTranscript        = errors.New("audio transcription failed")
	ErrTranscriptionFailed    = errors.New("error transcribing audio")
	ErrQuestionRequired       = errors.New("no question provided")
	ErrConversationIDRequired = errors.New("conversation id is required")
	ErrConversationNotFound   = errors.New("conversation not found")
)

const (
	chatModeText  = "text"
	chatModeAudio = "audio"
)

type AudioInput struct {
	Data     []byte
	Filename string
}

// ChatTurnInput carries either a typed question or an audio clip to transcribe.
type ChatTurnInput struct {
	ConversationID string
	Question       string
	Audio          *AudioInput
}

type ChatUsecase interface {
	HandleTurn(ctx context.Context, input *ChatTurnInput) (*dto.ChatResponse, error)
	GetConversation(ctx context.Context, conversationID string) (*dto.ConversationResponse, error)
}

type chatUsecase struct {
	log              *logrus.Logger
	conversationRepo repository.ConversationRepository
	classifier       IntentClassifier
	generators       *GeneratorRegistry
	transcriber      gateway.Transcriber
	metrics          *metrics.Metrics
	timeout          time.Duration
	now              func() time.Time
}

// NewChatUsecase builds the chat orchestrator. transcriber may be nil, in
// which case audio turns fail as an upstream error.
func NewChatUsecase(
	log *logrus.Logger,
	conversationRepo repository.ConversationRepository,
	classifier IntentClassifier,
	generators *GeneratorRegistry,
	transcriber gateway.Transcriber,
	metrics *metrics.Metrics,
	timeout time.Duration,
) ChatUsecase {
	return &chatUsecase{
		log:              log,
		conversationRepo: conversationRepo,
		classifier:       classifier,
		generators:       generators,
		transcriber:      transcriber,
		metrics:          metrics,
		timeout:          timeout,
		now:              time.Now,
	}
}

func (u *chatUsecase) HandleTurn(ctx context.Context, input *ChatTurnInput) (*dto.ChatResponse, error) {
	conversationID := strings.TrimSpace(input.ConversationID)
	question := input.Question
	mode := chatModeText
	var transcript string

	if input.Audio != nil {
		mode = chatModeAudio
		if len(input.Audio.Data) == 0 {
			return nil, ErrEmptyAudio
		}
		if conversationID == "" {
			return nil, ErrConversationIDRequired
		}

		text, err := u.transcribe(ctx, input.Audio)
		if err != nil {
			return nil, err
		}
		transcript = text
		question = text
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrQuestionRequired
	}
	if conversationID == "" {
		return nil, ErrConversationIDRequired
	}

	askedAt := u.now().UTC()
	conversation, err := u.conversationRepo.GetOrCreate(ctx, conversationID, askedAt)
	if err != nil {
		u.log.Warnf("Failed to load conversation: %+v", err)
		return nil, err
	}

	intent := u.classifier.Classify(ctx, question)
	reply := u.generators.For(intent).Generate(ctx, GenerationInput{
		Question: question,
		History:  conversation.History,
	})

	answeredAt := u.now().UTC()
	messages := []entity.ChatMessage{
		{Role: entity.ChatRoleUser, Content: question, Timestamp: askedAt},
		{Role: entity.ChatRoleAssistant, Content: reply, Timestamp: answeredAt},
	}
	if err := u.conversationRepo.Append(ctx, conversationID, messages, entity.ConversationHistoryLimit, answeredAt); err != nil {
		u.log.Warnf("Failed to append conversation history: %+v", err)
		return nil, err
	}

	u.metrics.ObserveChatTurn(string(intent), mode)

	return &dto.ChatResponse{
		Response:       reply,
		ConversationID: conversationID,
		Intent:         string(intent),
		Transcript:     transcript,
	}, nil
}

func (u *chatUsecase) transcribe(ctx context.Context, audio *AudioInput) (string, error) {
	if u.transcriber == nil {
		u.log.Warn("Audio received but no transcription service is configured")
		return "", ErrTranscriptionFailed
	}

	callCtx, cancel := withOptionalTimeout(ctx, u.timeout)
	defer cancel()

	start := time.Now()
	text, err := u.transcriber.Transcribe(callCtx, audio.Data, audio.Filename)
	u.metrics.ObserveAICall("transcribe", time.Since(start), err)
	if err != nil {
		u.log.Warnf("Failed to transcribe audio: %+v", err)
		return "", ErrTranscriptionFailed
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}

func (u *chatUsecase) GetConversation(ctx context.Context, conversationID string) (*dto.ConversationResponse, error) {
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return nil, ErrConversationIDRequired
	}

	conversation, err := u.conversationRepo.FindByID(ctx, conversationID)
	if err != nil {
		u.log.Warnf("Failed to find conversation: %+v", err)
		return nil, err
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}

	return converter.ConversationToResponse(conversation), nil
}
