package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"appointment-system/internal/domain/gateway"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultGroqBaseURL            = "https://api.groq.com/openai/v1"
	defaultGroqModel              = "llama-3.1-8b-instant"
	defaultGroqTranscriptionModel = "whisper-large-v3-turbo"
	defaultAudioFilename          = "audio.wav"
)

// GroqConfig controls the Groq client. BaseURL points at the OpenAI-compatible API root.
type GroqConfig struct {
	APIKey             string
	BaseURL            string
	Model              string
	TranscriptionModel string
	Timeout            time.Duration
	HTTPClient         *http.Client
}

// GroqClient implements gateway.LLMClient and gateway.Transcriber on top of
// Groq's OpenAI-compatible API.
type GroqClient struct {
	client             *openai.Client
	model              string
	transcriptionModel string
	tracer             trace.Tracer
}

func NewGroqClient(cfg GroqConfig) (*GroqClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("ai: groq api key is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultGroqBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultGroqModel
	}
	transcriptionModel := strings.TrimSpace(cfg.TranscriptionModel)
	if transcriptionModel == "" {
		transcriptionModel = defaultGroqTranscriptionModel
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = baseURL
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	} else {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		clientCfg.HTTPClient = &http.Client{Timeout: timeout}
	}

	return &GroqClient{
		client:             openai.NewClientWithConfig(clientCfg),
		model:              model,
		transcriptionModel: transcriptionModel,
		tracer:             otel.Tracer("appointment-system/internal/infrastructure/ai/groq"),
	}, nil
}

func (c *GroqClient) Complete(ctx context.Context, req gateway.LLMRequest) (gateway.LLMResponse, error) {
	ctx, span := c.tracer.Start(ctx, "ai.groq.complete", trace.WithAttributes(attribute.String("ai.model", c.model)))
	defer span.End()

	if len(req.Messages) == 0 {
		return gateway.LLMResponse{}, errors.New("ai: groq requires at least one message")
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.System)+len(req.Messages))
	for _, system := range req.System {
		if strings.TrimSpace(system) == "" {
			continue
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: msg.Role, Content: msg.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   int(req.MaxTokens),
	})
	if err != nil {
		span.RecordError(err)
		return gateway.LLMResponse{}, fmt.Errorf("ai: groq chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return gateway.LLMResponse{}, errors.New("ai: groq returned no choices")
	}

	return gateway.LLMResponse{
		Text:       strings.TrimSpace(resp.Choices[0].Message.Content),
		StopReason: string(resp.Choices[0].FinishReason),
	}, nil
}

// Transcribe sends the clip to the Whisper endpoint and returns the plain-text transcript.
func (c *GroqClient) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "ai.groq.transcribe", trace.WithAttributes(
		attribute.String("ai.model", c.transcriptionModel),
		attribute.Int("ai.audio_bytes", len(audio)),
	))
	defer span.End()

	if len(audio) == 0 {
		return "", errors.New("ai: audio is empty")
	}
	if strings.TrimSpace(filename) == "" {
		filename = defaultAudioFilename
	}

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.transcriptionModel,
		Reader:   bytes.NewReader(audio),
		FilePath: filename,
		Format:   openai.AudioResponseFormatText,
	})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("ai: groq transcription: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
