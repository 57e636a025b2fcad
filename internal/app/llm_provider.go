package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/inkwell-ai/inkwell-backend/internal/logger"
	"github.com/inkwell-ai/inkwell-backend/internal/platform/llm"
	"github.com/inkwell-ai/inkwell-backend/internal/platform/ollama"
	"github.com/inkwell-ai/inkwell-backend/internal/platform/openai"
)

var (
	newOpenAIClient = openai.NewClient
	newOllamaClient = ollama.NewClient
)

const (
	LLMProviderOpenAI = "openai"
	LLMProviderOllama = "ollama"
)

type LLMProviderBootstrapErrorCode string

const (
	LLMProviderBootstrapErrorInvalidProvider LLMProviderBootstrapErrorCode = "invalid_provider"
	LLMProviderBootstrapErrorMissingAPIKey   LLMProviderBootstrapErrorCode = "missing_api_key"
	LLMProviderBootstrapErrorInitFailed      LLMProviderBootstrapErrorCode = "provider_init_failed"
)

type LLMProviderBootstrapError struct {
	Code     LLMProviderBootstrapErrorCode
	Provider string
	Cause    error
}

func (e *LLMProviderBootstrapError) Error() string {
	if e == nil {
		return "llm provider bootstrap failed"
	}
	return fmt.Sprintf("llm provider bootstrap failed (code=%s provider=%q): %v", e.Code, e.Provider, e.Cause)
}

func (e *LLMProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func resolveLLMProvider(log *logger.Logger, cfg Config) (llm.Client, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.LLMProvider))

	switch provider {
	case LLMProviderOpenAI:
		log.Info("Selecting LLM provider", "provider", provider, "model", cfg.OpenAIModel)
		client, err := newOpenAIClient(log, openai.Config{
			APIKey:        strings.TrimSpace(cfg.OpenAIAPIKey),
			BaseURL:       strings.TrimSpace(cfg.OpenAIBaseURL),
			Model:         strings.TrimSpace(cfg.OpenAIModel),
			ContextTokens: cfg.OpenAIContextTokens,
		})
		if err != nil {
			classified := classifyLLMProviderBootstrapError(provider, err)
			log.Error("LLM provider bootstrap failed",
				"provider", provider,
				"error_code", llmProviderBootstrapErrorCode(classified),
				"error", classified,
			)
			return nil, classified
		}
		return instrumentLLMClient(provider, client), nil

	case LLMProviderOllama:
		log.Info("Selecting LLM provider", "provider", provider, "model", cfg.OllamaModel, "url", cfg.OllamaURL)
		client, err := newOllamaClient(log, ollama.Config{
			BaseURL: strings.TrimSpace(cfg.OllamaURL),
			Model:   strings.TrimSpace(cfg.OllamaModel),
		})
		if err != nil {
			classified := classifyLLMProviderBootstrapError(provider, err)
			log.Error("LLM provider bootstrap failed",
				"provider", provider,
				"error_code", llmProviderBootstrapErrorCode(classified),
				"error", classified,
			)
			return nil, classified
		}
		return instrumentLLMClient(provider, client), nil

	default:
		err := &LLMProviderBootstrapError{
			Code:     LLMProviderBootstrapErrorInvalidProvider,
			Provider: provider,
			Cause:    fmt.Errorf("unsupported llm provider %q", provider),
		}
		log.Error("LLM provider selection failed", "provider", provider, "error_code", err.Code, "error", err)
		return nil, err
	}
}

func classifyLLMProviderBootstrapError(provider string, err error) error {
	if strings.Contains(strings.ToLower(err.Error()), "api key") {
		return &LLMProviderBootstrapError{
			Code:     LLMProviderBootstrapErrorMissingAPIKey,
			Provider: provider,
			Cause:    err,
		}
	}
	return &LLMProviderBootstrapError{
		Code:     LLMProviderBootstrapErrorInitFailed,
		Provider: provider,
		Cause:    err,
	}
}

func llmProviderBootstrapErrorCode(err error) LLMProviderBootstrapErrorCode {
	var bootstrapErr *LLMProviderBootstrapError
	if errors.As(err, &bootstrapErr) {
		if bootstrapErr.Code != "" {
			return bootstrapErr.Code
		}
	}
	return LLMProviderBootstrapErrorInitFailed
}
