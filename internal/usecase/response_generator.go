package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"appointment-system/internal/domain/entity"
	"appointment-system/internal/domain/gateway"
	"appointment-system/internal/observability/metrics"

	"github.com/sirupsen/logrus"
)

const (
	NoDoctorsMessage    = "I couldn't find any doctors matching your query. Please try different search terms."
	HighDemandMessage   = "Sorry, I'm currently experiencing high demand. Try rephrasing your question."
	UnavailableMessage  = "Sorry, I can't respond right now. Please try again shortly."
	doctorContextLimit  = 3
	historyContextLimit = 4
	generationMaxTokens = 100
	generationTemp      = 0.3
)

const doctorPromptTemplate = `You are a helpful healthcare assistant.
Use ONLY the following doctor information to answer the question.
Keep your response short and clear. Do NOT invent details.

User question: %s

Doctor data: %s

Answer directly using the above data.`

const generalPromptTemplate = `You are MediCare AI, a friendly healthcare assistant.
Be polite, professional and empathetic.
Keep responses to 1-2 sentences.
Don't diagnose; suggest seeing a doctor instead.

Conversation history: %s

Current question: %s`

type GenerationInput struct {
	Question string
	History  []entity.ChatMessage
}

// ResponseGenerator produces the assistant reply for one turn. Remote
// failures become fixed fallback messages, never errors.
type ResponseGenerator interface {
	Generate(ctx context.Context, input GenerationInput) string
}

// DoctorSearcher is the directory lookup used to ground doctor answers.
type DoctorSearcher interface {
	SearchDoctors(ctx context.Context, query string) []entity.Doctor
}

type doctorSummary struct {
	Name         string      `json:"name"`
	Speciality   string      `json:"speciality"`
	Hospital     string      `json:"hospital"`
	Availability entity.JSON `json:"availability"`
}

type doctorResponseGenerator struct {
	llm      gateway.LLMClient
	searcher DoctorSearcher
	log      *logrus.Logger
	metrics  *metrics.Metrics
	timeout  time.Duration
}

func NewDoctorResponseGenerator(llm gateway.LLMClient, searcher DoctorSearcher, log *logrus.Logger, metrics *metrics.Metrics, timeout time.Duration) ResponseGenerator {
	return &doctorResponseGenerator{
		llm:      llm,
		searcher: searcher,
		log:      log,
		metrics:  metrics,
		timeout:  timeout,
	}
}

func (g *doctorResponseGenerator) Generate(ctx context.Context, input GenerationInput) string {
	doctors := g.searcher.SearchDoctors(ctx, input.Question)
	if len(doctors) == 0 {
		return NoDoctorsMessage
	}

	if len(doctors) > doctorContextLimit {
		doctors = doctors[:doctorContextLimit]
	}
	summaries := make([]doctorSummary, len(doctors))
	for i, d := range doctors {
		summaries[i] = doctorSummary{
			Name:         d.Name,
			Speciality:   d.Speciality,
			Hospital:     d.Hospital,
			Availability: d.Availability,
		}
	}

	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		g.log.Warnf("Failed to encode doctor data: %+v", err)
		return HighDemandMessage
	}

	text, err := complete(ctx, g.llm, g.metrics, g.timeout, "generate_doctor", fmt.Sprintf(doctorPromptTemplate, input.Question, data))
	if err != nil {
		g.log.Warnf("Failed to generate doctor response: %+v", err)
		return HighDemandMessage
	}
	return text
}

type generalResponseGenerator struct {
	llm     gateway.LLMClient
	log     *logrus.Logger
	metrics *metrics.Metrics
	timeout time.Duration
}

func NewGeneralResponseGenerator(llm gateway.LLMClient, log *logrus.Logger, metrics *metrics.Metrics, timeout time.Duration) ResponseGenerator {
	return &generalResponseGenerator{
		llm:     llm,
		log:     log,
		metrics: metrics,
		timeout: timeout,
	}
}

func (g *generalResponseGenerator) Generate(ctx context.Context, input GenerationInput) string {
	prompt := fmt.Sprintf(generalPromptTemplate, formatHistory(input.History), input.Question)
	text, err := complete(ctx, g.llm, g.metrics, g.timeout, "generate_general", prompt)
	if err != nil {
		g.log.Warnf("Failed to generate general response: %+v", err)
		return UnavailableMessage
	}
	return text
}

// formatHistory renders the last few messages as "role: content" lines, oldest first.
func formatHistory(history []entity.ChatMessage) string {
	if len(history) > historyContextLimit {
		history = history[len(history)-historyContextLimit:]
	}
	lines := make([]string, len(history))
	for i, msg := range history {
		lines[i] = msg.Role + ": " + msg.Content
	}
	return strings.Join(lines, "\n")
}

// GeneratorRegistry dispatches on intent, using the default strategy for
// intents without a dedicated one.
type GeneratorRegistry struct {
	strategies map[entity.Intent]ResponseGenerator
	fallback   ResponseGenerator
}

func NewGeneratorRegistry(fallback ResponseGenerator, strategies map[entity.Intent]ResponseGenerator) *GeneratorRegistry {
	if strategies == nil {
		strategies = map[entity.Intent]ResponseGenerator{}
	}
	return &GeneratorRegistry{strategies: strategies, fallback: fallback}
}

func (r *GeneratorRegistry) For(intent entity.Intent) ResponseGenerator {
	if g, ok := r.strategies[intent]; ok {
		return g
	}
	return r.fallback
}

func complete(ctx context.Context, llm gateway.LLMClient, m *metrics.Metrics, timeout time.Duration, operation, prompt string) (string, error) {
	callCtx, cancel := withOptionalTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := llm.Complete(callCtx, gateway.LLMRequest{
		Messages: []gateway.Message{
			{Role: gateway.MessageRoleUser, Content: prompt},
		},
		MaxTokens:   generationMaxTokens,
		Temperature: generationTemp,
	})
	m.ObserveAICall(operation, time.Since(start), err)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("empty completion from %s", operation)
	}
	return text, nil
}
