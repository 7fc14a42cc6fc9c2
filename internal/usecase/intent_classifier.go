package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"appointment-system/internal/domain/entity"
	"appointment-system/internal/domain/gateway"
	"appointment-system/internal/observability/metrics"

	"github.com/sirupsen/logrus"
)

const classifyPromptTemplate = `Classify the following message into one of these categories:
- greeting: for greetings like hello, hi, etc.
- doctor_query: for questions about doctors, appointments, specialists
- general_query: for all other healthcare-related questions

User message: "%s"

Return only the category name (greeting, doctor_query, or general_query).`

var (
	greetingWords = map[string]struct{}{"hello": {}, "hi": {}, "hey": {}}

	doctorKeywords = []string{
		"doctor", "specialist", "appointment",
		"ologist", "physician", "surgeon", "dentist", "pediatrician",
	}
)

// IntentClassifier labels a chat message. It never fails: remote errors fall
// back to a keyword heuristic.
type IntentClassifier interface {
	Classify(ctx context.Context, text string) entity.Intent
}

type intentClassifier struct {
	llm     gateway.LLMClient
	log     *logrus.Logger
	metrics *metrics.Metrics
	timeout time.Duration
}

func NewIntentClassifier(llm gateway.LLMClient, log *logrus.Logger, metrics *metrics.Metrics, timeout time.Duration) IntentClassifier {
	return &intentClassifier{
		llm:     llm,
		log:     log,
		metrics: metrics,
		timeout: timeout,
	}
}

func (c *intentClassifier) Classify(ctx context.Context, text string) entity.Intent {
	if strings.TrimSpace(text) == "" {
		return entity.IntentGeneralQuery
	}

	callCtx, cancel := withOptionalTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.llm.Complete(callCtx, gateway.LLMRequest{
		Messages: []gateway.Message{
			{Role: gateway.MessageRoleUser, Content: fmt.Sprintf(classifyPromptTemplate, text)},
		},
		MaxTokens:   10,
		Temperature: 0.3,
	})
	c.metrics.ObserveAICall("classify", time.Since(start), err)
	if err != nil {
		c.log.Warnf("Failed to classify intent, using keywords: %+v", err)
		return classifyByKeywords(text)
	}

	intent, ok := entity.ParseIntent(strings.ToLower(strings.TrimSpace(resp.Text)))
	if !ok {
		return entity.IntentGeneralQuery
	}
	return intent
}

// classifyByKeywords matches greeting words as whole words and doctor
// keywords as substrings.
func classifyByKeywords(text string) entity.Intent {
	lower := strings.ToLower(text)

	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, word := range words {
		if _, ok := greetingWords[word]; ok {
			return entity.IntentGreeting
		}
	}

	for _, keyword := range doctorKeywords {
		if strings.Contains(lower, keyword) {
			return entity.IntentDoctorQuery
		}
	}

	return entity.IntentGeneralQuery
}

func withOptionalTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
