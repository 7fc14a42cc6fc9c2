package ai

import (
	"context"
	"errors"
	"io"
	"testing"

	"appointment-system/internal/domain/gateway"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLLM struct {
	text  string
	err   error
	calls int
}

func (s *stubLLM) Complete(ctx context.Context, req gateway.LLMRequest) (gateway.LLMResponse, error) {
	s.calls++
	if s.err != nil {
		return gateway.LLMResponse{}, s.err
	}
	return gateway.LLMResponse{Text: s.text}, nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

var testRequest = gateway.LLMRequest{
	Messages: []gateway.Message{{Role: gateway.MessageRoleUser, Content: "hi"}},
}

func TestFallbackClient_PrimarySucceeds(t *testing.T) {
	primary := &stubLLM{text: "primary"}
	fallback := &stubLLM{text: "fallback"}

	resp, err := NewFallbackClient(primary, fallback, quietLogger()).Complete(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, "primary", resp.Text)
	assert.Equal(t, 0, fallback.calls)
}

func TestFallbackClient_UsesFallbackOnError(t *testing.T) {
	primary := &stubLLM{err: errors.New("quota")}
	fallback := &stubLLM{text: "fallback"}

	resp, err := NewFallbackClient(primary, fallback, quietLogger()).Complete(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Equal(t, "fallback", resp.Text)
	assert.Equal(t, 1, fallback.calls)
}

func TestFallbackClient_WithoutFallbackReturnsPrimaryError(t *testing.T) {
	primaryErr := errors.New("quota")

	_, err := NewFallbackClient(&stubLLM{err: primaryErr}, nil, quietLogger()).Complete(context.Background(), testRequest)
	assert.ErrorIs(t, err, primaryErr)
}

func TestFallbackClient_BothFail(t *testing.T) {
	fallbackErr := errors.New("down")

	_, err := NewFallbackClient(&stubLLM{err: errors.New("quota")}, &stubLLM{err: fallbackErr}, quietLogger()).
		Complete(context.Background(), testRequest)
	assert.ErrorIs(t, err, fallbackErr)
}

func TestFallbackClient_SkipsFallbackWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fallback := &stubLLM{text: "fallback"}

	_, err := NewFallbackClient(&stubLLM{err: context.Canceled}, fallback, quietLogger()).Complete(ctx, testRequest)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, fallback.calls)
}
