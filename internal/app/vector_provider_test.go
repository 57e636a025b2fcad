package app

import (
	"errors"
	"testing"

	"github.com/inkwell-ai/inkwell-backend/internal/logger"
	"github.com/inkwell-ai/inkwell-backend/internal/platform/chromemstore"
	"github.com/inkwell-ai/inkwell-backend/internal/platform/weaviate"
)

func TestResolveVectorStoreProviderInvalidProvider(t *testing.T) {
	_, err := resolveVectorStoreProvider(logger.NewNop(), Config{VectorProvider: "faiss"})
	if err == nil {
		t.Fatalf("want error for unsupported provider")
	}
	var bootstrapErr *VectorProviderBootstrapError
	if !errors.As(err, &bootstrapErr) {
		t.Fatalf("want *VectorProviderBootstrapError, got %T", err)
	}
	if bootstrapErr.Code != VectorProviderBootstrapErrorInvalidProvider {
		t.Fatalf("code: want=%s got=%s", VectorProviderBootstrapErrorInvalidProvider, bootstrapErr.Code)
	}
}

func TestResolveVectorStoreProviderWeaviateMissingURL(t *testing.T) {
	_, err := resolveVectorStoreProvider(logger.NewNop(), Config{VectorProvider: "weaviate"})
	if err == nil {
		t.Fatalf("want error for missing weaviate url")
	}
	var bootstrapErr *VectorProviderBootstrapError
	if !errors.As(err, &bootstrapErr) {
		t.Fatalf("want *VectorProviderBootstrapError, got %T", err)
	}
	if bootstrapErr.Code != VectorProviderBootstrapErrorMissingWeaviateURL {
		t.Fatalf("code: want=%s got=%s", VectorProviderBootstrapErrorMissingWeaviateURL, bootstrapErr.Code)
	}
	var cfgErr *weaviate.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("cause should unwrap to *weaviate.ConfigError, got %v", err)
	}
}

func TestResolveVectorStoreProviderChromemMissingAPIKey(t *testing.T) {
	_, err := resolveVectorStoreProvider(logger.NewNop(), Config{
		VectorProvider:  "chromem",
		ChromemEmbedder: "openai",
	})
	if err == nil {
		t.Fatalf("want error for missing openai api key")
	}
	var bootstrapErr *VectorProviderBootstrapError
	if !errors.As(err, &bootstrapErr) {
		t.Fatalf("want *VectorProviderBootstrapError, got %T", err)
	}
	if bootstrapErr.Code != VectorProviderBootstrapErrorChromemConfig {
		t.Fatalf("code: want=%s got=%s", VectorProviderBootstrapErrorChromemConfig, bootstrapErr.Code)
	}
	var cfgErr *chromemstore.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("cause should unwrap to *chromemstore.ConfigError, got %v", err)
	}
}

func TestResolveVectorStoreProviderChromemInMemory(t *testing.T) {
	store, err := resolveVectorStoreProvider(logger.NewNop(), Config{
		VectorProvider:  "chromem",
		ChromemEmbedder: "ollama",
	})
	if err != nil {
		t.Fatalf("resolveVectorStoreProvider: %v", err)
	}
	if store == nil {
		t.Fatalf("want a store, got nil")
	}
	if _, ok := store.(*instrumentedVectorStore); !ok {
		t.Fatalf("store should be instrumented, got %T", store)
	}
}
