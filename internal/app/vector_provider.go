package app

import (
	"errors"
	"fmt"
	"net"
	neturl "net/url"
	"strings"

	"github.com/inkwell-ai/inkwell-backend/internal/logger"
	"github.com/inkwell-ai/inkwell-backend/internal/platform/chromemstore"
	"github.com/inkwell-ai/inkwell-backend/internal/platform/vectorstore"
	"github.com/inkwell-ai/inkwell-backend/internal/platform/weaviate"
)

var (
	newWeaviateVectorStore = weaviate.NewVectorStore
	newChromemVectorStore  = chromemstore.NewStore
)

const (
	VectorProviderWeaviate = "weaviate"
	VectorProviderChromem  = "chromem"
)

type VectorProviderBootstrapErrorCode string

const (
	VectorProviderBootstrapErrorInvalidProvider    VectorProviderBootstrapErrorCode = "invalid_provider"
	VectorProviderBootstrapErrorMissingWeaviateURL VectorProviderBootstrapErrorCode = "missing_weaviate_url"
	VectorProviderBootstrapErrorInvalidWeaviateURL VectorProviderBootstrapErrorCode = "invalid_weaviate_url"
	VectorProviderBootstrapErrorChromemConfig      VectorProviderBootstrapErrorCode = "chromem_config_failed"
	VectorProviderBootstrapErrorConnectFailed      VectorProviderBootstrapErrorCode = "connect_failed"
	VectorProviderBootstrapErrorProviderInitFailed VectorProviderBootstrapErrorCode = "provider_init_failed"
)

type VectorProviderBootstrapError struct {
	Code     VectorProviderBootstrapErrorCode
	Provider string
	Cause    error
}

func (e *VectorProviderBootstrapError) Error() string {
	if e == nil {
		return "vector provider bootstrap failed"
	}
	return fmt.Sprintf("vector provider bootstrap failed (code=%s provider=%q): %v", e.Code, e.Provider, e.Cause)
}

func (e *VectorProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func resolveVectorStoreProvider(log *logger.Logger, cfg Config) (vectorstore.Store, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.VectorProvider))

	switch provider {
	case VectorProviderWeaviate:
		log.Info(
			"Selecting vector store provider",
			"provider", provider,
			"weaviate_url", cfg.WeaviateURL,
			"weaviate_vectorizer", cfg.WeaviateVectorizer,
		)
		store, err := newWeaviateVectorStore(log, weaviate.Config{
			URL:        strings.TrimSpace(cfg.WeaviateURL),
			APIKey:     strings.TrimSpace(cfg.WeaviateAPIKey),
			Vectorizer: strings.TrimSpace(cfg.WeaviateVectorizer),
			Timeout:    cfg.WeaviateTimeout,
		})
		if err != nil {
			classified := classifyVectorProviderBootstrapError(provider, err)
			log.Error("Vector store provider bootstrap failed",
				"provider", provider,
				"error_code", vectorProviderBootstrapErrorCode(classified),
				"error", classified,
			)
			return nil, classified
		}
		return instrumentVectorStore(provider, store), nil

	case VectorProviderChromem:
		log.Info(
			"Selecting vector store provider",
			"provider", provider,
			"chromem_path", cfg.ChromemPath,
			"chromem_embedder", cfg.ChromemEmbedder,
		)
		store, err := newChromemVectorStore(log, chromemstore.Config{
			Path:         strings.TrimSpace(cfg.ChromemPath),
			Compress:     cfg.ChromemCompress,
			Embedder:     strings.TrimSpace(cfg.ChromemEmbedder),
			OpenAIAPIKey: strings.TrimSpace(cfg.OpenAIAPIKey),
			OllamaModel:  strings.TrimSpace(cfg.ChromemOllamaModel),
			OllamaURL:    strings.TrimSpace(cfg.ChromemOllamaURL),
		})
		if err != nil {
			classified := classifyVectorProviderBootstrapError(provider, err)
			log.Error("Vector store provider bootstrap failed",
				"provider", provider,
				"error_code", vectorProviderBootstrapErrorCode(classified),
				"error", classified,
			)
			return nil, classified
		}
		return instrumentVectorStore(provider, store), nil

	default:
		err := &VectorProviderBootstrapError{
			Code:     VectorProviderBootstrapErrorInvalidProvider,
			Provider: provider,
			Cause:    fmt.Errorf("unsupported vector provider %q", provider),
		}
		log.Error("Vector store provider selection failed",
			"provider", provider,
			"error_code", err.Code,
			"error", err,
		)
		return nil, err
	}
}

func classifyVectorProviderBootstrapError(provider string, err error) error {
	var urlErr *neturl.Error
	if errors.As(err, &urlErr) {
		return &VectorProviderBootstrapError{
			Code:     VectorProviderBootstrapErrorConnectFailed,
			Provider: provider,
			Cause:    err,
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &VectorProviderBootstrapError{
			Code:     VectorProviderBootstrapErrorConnectFailed,
			Provider: provider,
			Cause:    err,
		}
	}
	errLower := strings.ToLower(err.Error())
	if strings.Contains(errLower, "ready check failed") || strings.Contains(errLower, "connection refused") {
		return &VectorProviderBootstrapError{
			Code:     VectorProviderBootstrapErrorConnectFailed,
			Provider: provider,
			Cause:    err,
		}
	}

	var weaviateCfgErr *weaviate.ConfigError
	if errors.As(err, &weaviateCfgErr) {
		switch weaviateCfgErr.Code {
		case weaviate.ConfigErrorMissingURL:
			return &VectorProviderBootstrapError{
				Code:     VectorProviderBootstrapErrorMissingWeaviateURL,
				Provider: provider,
				Cause:    err,
			}
		case weaviate.ConfigErrorInvalidURL:
			return &VectorProviderBootstrapError{
				Code:     VectorProviderBootstrapErrorInvalidWeaviateURL,
				Provider: provider,
				Cause:    err,
			}
		}
	}

	var chromemCfgErr *chromemstore.ConfigError
	if errors.As(err, &chromemCfgErr) {
		return &VectorProviderBootstrapError{
			Code:     VectorProviderBootstrapErrorChromemConfig,
			Provider: provider,
			Cause:    err,
		}
	}

	return &VectorProviderBootstrapError{
		Code:     VectorProviderBootstrapErrorProviderInitFailed,
		Provider: provider,
		Cause:    err,
	}
}

func vectorProviderBootstrapErrorCode(err error) VectorProviderBootstrapErrorCode {
	var bootstrapErr *VectorProviderBootstrapError
	if errors.As(err, &bootstrapErr) {
		if bootstrapErr.Code != "" {
			return bootstrapErr.Code
		}
	}
	return VectorProviderBootstrapErrorConnectFailed
}
