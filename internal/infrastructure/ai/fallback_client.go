package ai

import (
	"context"

	"appointment-system/internal/domain/gateway"

	"github.com/sirupsen/logrus"
)

// FallbackClient retries a failed completion on a second provider.
type FallbackClient struct {
	primary  gateway.LLMClient
	fallback gateway.LLMClient
	log      *logrus.Logger
}

// NewFallbackClient wraps primary. A nil fallback leaves primary errors untouched.
func NewFallbackClient(primary, fallback gateway.LLMClient, log *logrus.Logger) *FallbackClient {
	return &FallbackClient{
		primary:  primary,
		fallback: fallback,
		log:      log,
	}
}

func (c *FallbackClient) Complete(ctx context.Context, req gateway.LLMRequest) (gateway.LLMResponse, error) {
	resp, err := c.primary.Complete(ctx, req)
	if err == nil {
		return resp, nil
	}

	c.log.WithFields(logrus.Fields{
		"error":              err.Error(),
		"fallback_available": c.fallback != nil,
	}).Warn("Primary LLM failed, attempting fallback")

	if c.fallback == nil || ctx.Err() != nil {
		return gateway.LLMResponse{}, err
	}

	fallbackResp, fallbackErr := c.fallback.Complete(ctx, req)
	if fallbackErr != nil {
		c.log.WithFields(logrus.Fields{
			"primary_error":  err.Error(),
			"fallback_error": fallbackErr.Error(),
		}).Error("Fallback LLM also failed")
		return gateway.LLMResponse{}, fallbackErr
	}

	c.log.Info("Fallback LLM succeeded after primary failure")
	return fallbackResp, nil
}
