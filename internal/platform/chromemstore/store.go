// Package chromemstore implements the vectorstore.Store contract on top of
// chromem-go, an embedded vector database persisted to local disk. It is the
// zero-infrastructure alternative to the Weaviate backend; embedding is done
// by chromem's bundled embedding functions (OpenAI or Ollama, by config).
package chromemstore

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"

	"github.com/inkwell-ai/inkwell-backend/internal/logger"
	"github.com/inkwell-ai/inkwell-backend/internal/platform/vectorstore"
)

const backendName = "chromem"

type ConfigErrorCode string

const (
	ConfigErrorMissingAPIKey   ConfigErrorCode = "missing_openai_api_key"
	ConfigErrorInvalidEmbedder ConfigErrorCode = "invalid_embedder"
)

type ConfigError struct {
	Code    ConfigErrorCode
	Message string
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "chromem config invalid"
	}
	return fmt.Sprintf("chromem config invalid (code=%s): %s", e.Code, e.Message)
}

type Config struct {
	// Path is the on-disk location of the database. Empty means in-memory.
	Path     string
	Compress bool
	// Embedder selects the embedding function: "openai" or "ollama".
	Embedder     string
	OpenAIAPIKey string
	OpenAIModel  string
	OllamaModel  string
	OllamaURL    string
}

type store struct {
	log   *logger.Logger
	db    *chromem.DB
	embed chromem.EmbeddingFunc
}

func NewStore(log *logger.Logger, cfg Config) (vectorstore.Store, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	embed, err := embeddingFunc(cfg)
	if err != nil {
		return nil, err
	}

	var db *chromem.DB
	if strings.TrimSpace(cfg.Path) == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(cfg.Path, cfg.Compress)
		if err != nil {
			return nil, fmt.Errorf("open chromem db at %q: %w", cfg.Path, err)
		}
	}

	log.Info(
		"Chromem vector store selected",
		"provider", backendName,
		"path", cfg.Path,
		"embedder", cfg.Embedder,
	)
	return &store{
		log:   log.With("service", "ChromemVectorStore"),
		db:    db,
		embed: embed,
	}, nil
}

func embeddingFunc(cfg Config) (chromem.EmbeddingFunc, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Embedder)) {
	case "", "openai":
		key := strings.TrimSpace(cfg.OpenAIAPIKey)
		if key == "" {
			return nil, &ConfigError{
				Code:    ConfigErrorMissingAPIKey,
				Message: "openai embedder requires an api key",
			}
		}
		model := chromem.EmbeddingModelOpenAI3Small
		if m := strings.TrimSpace(cfg.OpenAIModel); m != "" {
			model = chromem.EmbeddingModelOpenAI(m)
		}
		return chromem.NewEmbeddingFuncOpenAI(key, model), nil
	case "ollama":
		model := strings.TrimSpace(cfg.OllamaModel)
		if model == "" {
			model = "nomic-embed-text"
		}
		return chromem.NewEmbeddingFuncOllama(model, strings.TrimSpace(cfg.OllamaURL)), nil
	default:
		return nil, &ConfigError{
			Code:    ConfigErrorInvalidEmbedder,
			Message: fmt.Sprintf("unsupported embedder %q", cfg.Embedder),
		}
	}
}

func (s *store) EnsureCollection(ctx context.Context, collection string, properties map[string]string) error {
	const op = "ensure_collection"
	if strings.TrimSpace(collection) == "" {
		return vectorstore.OpErr(backendName, op, vectorstore.OperationErrorValidation, "collection name required", nil)
	}
	if _, err := s.db.GetOrCreateCollection(collection, properties, s.embed); err != nil {
		return vectorstore.OpErr(backendName, op, vectorstore.OperationErrorQueryFailed, "get or create collection failed", err)
	}
	return nil
}

func (s *store) CollectionExists(ctx context.Context, collection string) (bool, error) {
	return s.db.GetCollection(collection, s.embed) != nil, nil
}

func (s *store) UpsertDocuments(ctx context.Context, collection string, docs []vectorstore.Document) ([]string, error) {
	const op = "upsert"
	if len(docs) == 0 {
		return nil, nil
	}
	coll, err := s.collection(op, collection)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(docs))
	converted := make([]chromem.Document, 0, len(docs))
	for i, doc := range docs {
		if strings.TrimSpace(doc.Text) == "" {
			return nil, vectorstore.OpErr(backendName, op, vectorstore.OperationErrorValidation,
				fmt.Sprintf("document %d has empty text", i), nil)
		}
		// IDs must never collide with documents already stored, or chromem's
		// add would silently overwrite another notebook's live chunk.
		id := strings.TrimSpace(doc.ID)
		if id == "" {
			id = uuid.NewString()
		}
		ids[i] = id
		converted = append(converted, chromem.Document{
			ID:       id,
			Content:  doc.Text,
			Metadata: stringifyMetadata(doc.Metadata),
		})
	}

	// Documents are embedded one at a time; ingestion is sequential by design.
	if err := coll.AddDocuments(ctx, converted, 1); err != nil {
		return nil, vectorstore.OpErr(backendName, op, vectorstore.OperationErrorQueryFailed, "add documents failed", err)
	}
	return ids, nil
}

func (s *store) QuerySimilarity(ctx context.Context, collection string, queryText string, limit int, filters map[string]any) ([]vectorstore.SearchResult, error) {
	const op = "query"
	if strings.TrimSpace(queryText) == "" {
		return nil, vectorstore.OpErr(backendName, op, vectorstore.OperationErrorValidation, "query text required", nil)
	}
	if limit <= 0 {
		limit = 10
	}
	coll, err := s.collection(op, collection)
	if err != nil {
		return nil, err
	}

	// chromem rejects nResults greater than the number of stored documents.
	if total := coll.Count(); limit > total {
		limit = total
	}
	if limit == 0 {
		return nil, nil
	}

	where, err := stringifyFilters(op, filters)
	if err != nil {
		return nil, err
	}

	results, err := coll.Query(ctx, queryText, limit, where, nil)
	if err != nil {
		return nil, vectorstore.OpErr(backendName, op, vectorstore.OperationErrorQueryFailed, "query failed", err)
	}

	out := make([]vectorstore.SearchResult, 0, len(results))
	for _, r := range results {
		certainty := certaintyFromSimilarity(r.Similarity)
		out = append(out, vectorstore.SearchResult{
			ID:        r.ID,
			Text:      r.Content,
			Metadata:  parseMetadata(r.Metadata),
			Certainty: &certainty,
		})
	}
	return out, nil
}

func (s *store) DeleteDocuments(ctx context.Context, collection string, filters map[string]any) (int, error) {
	const op = "delete"
	coll, err := s.collection(op, collection)
	if err != nil {
		return 0, err
	}
	where, err := stringifyFilters(op, filters)
	if err != nil {
		return 0, err
	}
	if len(where) == 0 {
		return 0, vectorstore.OpErr(backendName, op, vectorstore.OperationErrorValidation,
			"delete requires at least one filter", nil)
	}

	// chromem's Delete does not report how many documents it removed, so the
	// count is derived from before/after sizes.
	before := coll.Count()
	if err := coll.Delete(ctx, where, nil); err != nil {
		return 0, vectorstore.OpErr(backendName, op, vectorstore.OperationErrorQueryFailed, "delete failed", err)
	}
	return before - coll.Count(), nil
}

func (s *store) DocumentCount(ctx context.Context, collection string, filters map[string]any) (int, error) {
	const op = "count"
	coll, err := s.collection(op, collection)
	if err != nil {
		return 0, err
	}
	if len(filters) > 0 {
		// chromem has no filtered enumeration; callers needing per-notebook
		// counts use the Weaviate backend or an unfiltered total.
		return 0, vectorstore.OpErr(backendName, op, vectorstore.OperationErrorUnsupportedFilter,
			"chromem does not support filtered document counts", nil)
	}
	return coll.Count(), nil
}

func (s *store) collection(op, name string) (*chromem.Collection, error) {
	coll := s.db.GetCollection(name, s.embed)
	if coll == nil {
		return nil, vectorstore.OpErr(backendName, op, vectorstore.OperationErrorQueryFailed,
			fmt.Sprintf("collection %q does not exist", name), nil)
	}
	return coll, nil
}

// certaintyFromSimilarity maps cosine similarity in [-1, 1] onto [0, 1],
// matching the convention semantic stores report as "certainty".
func certaintyFromSimilarity(similarity float32) float64 {
	c := (1 + float64(similarity)) / 2
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

func stringifyMetadata(metadata map[string]any) map[string]string {
	if len(metadata) == 0 {
		return nil
	}
	out := make(map[string]string, len(metadata))
	for k, v := range metadata {
		out[k] = stringifyValue(v)
	}
	return out
}

func stringifyFilters(op string, filters map[string]any) (map[string]string, error) {
	if len(filters) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(filters))
	for k, v := range filters {
		switch v.(type) {
		case string, int, int32, int64, float32, float64, bool, fmt.Stringer:
			out[k] = stringifyValue(v)
		default:
			return nil, vectorstore.OpErr(backendName, op, vectorstore.OperationErrorUnsupportedFilter,
				fmt.Sprintf("filter %q has unsupported value type %T", k, v), nil)
		}
	}
	return out, nil
}

func stringifyValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// parseMetadata restores typed values the write path stringified. Only
// chunk_index is numeric in the chunk schema.
func parseMetadata(metadata map[string]string) map[string]any {
	out := make(map[string]any, len(metadata))
	for k, v := range metadata {
		if k == vectorstore.MetaChunkIndex {
			if n, err := strconv.Atoi(v); err == nil {
				out[k] = n
				continue
			}
		}
		out[k] = v
	}
	return out
}
