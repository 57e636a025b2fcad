package app

import (
	"time"

	"github.com/inkwell-ai/inkwell-backend/internal/logger"
	"github.com/inkwell-ai/inkwell-backend/internal/utils"
)

type Config struct {
	Port        string
	Environment string
	Version     string

	// RAG defaults used when a request omits them.
	CollectionName   string
	DefaultChunkSize int
	DefaultOverlap   int

	VectorProvider string

	WeaviateURL        string
	WeaviateAPIKey     string
	WeaviateVectorizer string
	WeaviateTimeout    time.Duration

	ChromemPath        string
	ChromemCompress    bool
	ChromemEmbedder    string
	ChromemOllamaModel string
	ChromemOllamaURL   string

	LLMProvider string

	OpenAIAPIKey        string
	OpenAIBaseURL       string
	OpenAIModel         string
	OpenAIContextTokens int

	OllamaURL   string
	OllamaModel string
}

func LoadConfig(log *logger.Logger) Config {
	weaviateTimeoutSeconds := utils.GetEnvAsInt("WEAVIATE_TIMEOUT_SECONDS", 30, log)
	return Config{
		Port:        utils.GetEnv("PORT", "8080", log),
		Environment: utils.GetEnv("ENVIRONMENT", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),

		CollectionName:   utils.GetEnv("VECTOR_COLLECTION", "notebook_chunks", log),
		DefaultChunkSize: utils.GetEnvAsInt("CHUNK_SIZE", 1000, log),
		DefaultOverlap:   utils.GetEnvAsInt("CHUNK_OVERLAP", 200, log),

		VectorProvider: utils.GetEnv("VECTOR_PROVIDER", "chromem", log),

		WeaviateURL:        utils.GetEnv("WEAVIATE_URL", "", log),
		WeaviateAPIKey:     utils.GetEnv("WEAVIATE_API_KEY", "", log),
		WeaviateVectorizer: utils.GetEnv("WEAVIATE_VECTORIZER", "text2vec-openai", log),
		WeaviateTimeout:    time.Duration(weaviateTimeoutSeconds) * time.Second,

		ChromemPath:        utils.GetEnv("CHROMEM_PATH", "./data/chromem", log),
		ChromemCompress:    utils.GetEnvAsBool("CHROMEM_COMPRESS", true, log),
		ChromemEmbedder:    utils.GetEnv("CHROMEM_EMBEDDER", "openai", log),
		ChromemOllamaModel: utils.GetEnv("CHROMEM_OLLAMA_MODEL", "nomic-embed-text", log),
		ChromemOllamaURL:   utils.GetEnv("CHROMEM_OLLAMA_URL", "http://localhost:11434/api", log),

		LLMProvider: utils.GetEnv("LLM_PROVIDER", "openai", log),

		OpenAIAPIKey:        utils.GetEnv("OPENAI_API_KEY", "", log),
		OpenAIBaseURL:       utils.GetEnv("OPENAI_BASE_URL", "https://api.openai.com", log),
		OpenAIModel:         utils.GetEnv("OPENAI_MODEL", "gpt-4o-mini", log),
		OpenAIContextTokens: utils.GetEnvAsInt("OPENAI_CONTEXT_TOKENS", 128000, log),

		OllamaURL:   utils.GetEnv("OLLAMA_URL", "http://localhost:11434", log),
		OllamaModel: utils.GetEnv("OLLAMA_MODEL", "llama3.1", log),
	}
}
