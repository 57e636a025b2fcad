package app

import (
	"context"
	"time"

	"github.com/inkwell-ai/inkwell-backend/internal/observability"
	"github.com/inkwell-ai/inkwell-backend/internal/platform/llm"
)

type instrumentedLLMClient struct {
	provider string
	inner    llm.Client
	metrics  *observability.Metrics
}

func instrumentLLMClient(provider string, inner llm.Client) llm.Client {
	if inner == nil {
		return nil
	}
	return &instrumentedLLMClient{
		provider: provider,
		inner:    inner,
		metrics:  observability.Current(),
	}
}

func (c *instrumentedLLMClient) Generate(ctx context.Context, prompt string, params *llm.Params) (string, error) {
	start := time.Now()
	out, err := c.inner.Generate(ctx, prompt, params)
	c.observe(err, time.Since(start))
	return out, err
}

func (c *instrumentedLLMClient) GenerateStream(ctx context.Context, prompt string, params *llm.Params, onDelta func(delta string)) (string, error) {
	start := time.Now()
	out, err := c.inner.GenerateStream(ctx, prompt, params, onDelta)
	c.observe(err, time.Since(start))
	return out, err
}

func (c *instrumentedLLMClient) CountTokens(ctx context.Context, text string) (int, error) {
	return c.inner.CountTokens(ctx, text)
}

func (c *instrumentedLLMClient) ModelInfo(ctx context.Context) (llm.ModelInfo, error) {
	return c.inner.ModelInfo(ctx)
}

func (c *instrumentedLLMClient) observe(err error, dur time.Duration) {
	if c == nil || c.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	c.metrics.ObserveLLMRequest(c.provider, status, dur)
}
