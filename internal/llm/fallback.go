package llm

import (
	"context"

	"github.com/wolfman30/coparent-mediator/pkg/logging"
)

// FallbackClient retries a failed request on a secondary provider.
type FallbackClient struct {
	primary  Client
	fallback Client
	logger   *logging.Logger
}

// NewFallbackClient wraps primary. A nil fallback makes it a pass-through.
func NewFallbackClient(primary, fallback Client, logger *logging.Logger) *FallbackClient {
	return &FallbackClient{
		primary:  primary,
		fallback: fallback,
		logger:   logging.OrDefault(logger),
	}
}

func (c *FallbackClient) Complete(ctx context.Context, req Request) (Response, error) {
	resp, err := c.primary.Complete(ctx, req)
	if err == nil {
		return resp, nil
	}

	c.logger.Warn("primary LLM failed, attempting fallback",
		"error", err.Error(),
		"fallback_available", c.fallback != nil,
	)
	if c.fallback == nil || ctx.Err() != nil {
		return Response{}, err
	}

	fallbackResp, fallbackErr := c.fallback.Complete(ctx, req)
	if fallbackErr != nil {
		c.logger.Error("fallback LLM also failed",
			"primary_error", err.Error(),
			"fallback_error", fallbackErr.Error(),
		)
		return Response{}, fallbackErr
	}
	c.logger.Info("fallback LLM succeeded after primary failure")
	return fallbackResp, nil
}
