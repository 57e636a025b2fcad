// Package weaviate implements the vectorstore.Store contract against a
// Weaviate cluster over its REST and GraphQL APIs. Embedding is delegated to
// the server-side text2vec module configured on each collection.
package weaviate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-ai/inkwell-backend/internal/logger"
	"github.com/inkwell-ai/inkwell-backend/internal/platform/vectorstore"
)

const (
	backendName       = "weaviate"
	defaultVectorizer = "text2vec-openai"
	maxErrorBodyBytes = 1024
)

// chunkProperties is the fixed schema every chunk collection carries.
// Metadata outside this set is not persisted.
var chunkProperties = []map[string]any{
	{"name": "text", "dataType": []string{"text"}},
	{"name": "notebookId", "dataType": []string{"text"}},
	{"name": "sourceId", "dataType": []string{"text"}},
	{"name": "chunkIndex", "dataType": []string{"int"}},
	{"name": "sourceName", "dataType": []string{"text"}},
	{"name": "sourceType", "dataType": []string{"text"}},
}

type vectorStore struct {
	log     *logger.Logger
	cfg     Config
	baseURL string
	http    *http.Client
}

func NewVectorStore(log *logger.Logger, cfg Config) (vectorstore.Store, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.Vectorizer == "" {
		cfg.Vectorizer = defaultVectorizer
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	s := &vectorStore{
		log:     log.With("service", "WeaviateVectorStore"),
		cfg:     cfg,
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.URL), "/"),
		http:    &http.Client{Timeout: timeout},
	}

	if err := s.verifyReady(context.Background()); err != nil {
		return nil, err
	}

	log.Info(
		"Weaviate vector store selected",
		"provider", backendName,
		"url", s.baseURL,
		"vectorizer", cfg.Vectorizer,
		"class_prefix", cfg.ClassPrefix,
	)
	return s, nil
}

func (s *vectorStore) EnsureCollection(ctx context.Context, collection string, properties map[string]string) error {
	const op = "ensure_collection"
	class, err := s.className(op, collection)
	if err != nil {
		return err
	}

	exists, err := s.classExists(ctx, op, class)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	props := make([]map[string]any, 0, len(chunkProperties)+len(properties))
	props = append(props, chunkProperties...)
	for name, dataType := range properties {
		if dataType == "" {
			dataType = "text"
		}
		props = append(props, map[string]any{
			"name":     propertyName(name),
			"dataType": []string{dataType},
		})
	}

	body := map[string]any{
		"class":      class,
		"vectorizer": s.cfg.Vectorizer,
		"properties": props,
	}
	if err := s.doJSON(ctx, op, http.MethodPost, "/v1/schema", body, nil); err != nil {
		// Two callers racing on the same collection is fine; the loser sees
		// an already-exists rejection.
		var opErrTyped *vectorstore.OperationError
		if errors.As(err, &opErrTyped) && opErrTyped.StatusCode == http.StatusUnprocessableEntity {
			if recheck, recheckErr := s.classExists(ctx, op, class); recheckErr == nil && recheck {
				return nil
			}
		}
		return err
	}
	return nil
}

func (s *vectorStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	const op = "collection_exists"
	class, err := s.className(op, collection)
	if err != nil {
		return false, err
	}
	return s.classExists(ctx, op, class)
}

func (s *vectorStore) UpsertDocuments(ctx context.Context, collection string, docs []vectorstore.Document) ([]string, error) {
	const op = "upsert"
	if len(docs) == 0 {
		return nil, nil
	}
	class, err := s.className(op, collection)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(docs))
	objects := make([]map[string]any, 0, len(docs))
	for i, doc := range docs {
		if strings.TrimSpace(doc.Text) == "" {
			return nil, vectorstore.OpErr(backendName, op, vectorstore.OperationErrorValidation,
				fmt.Sprintf("document %d has empty text", i), nil)
		}
		id := strings.TrimSpace(doc.ID)
		if id == "" {
			id = uuid.NewString()
		}
		ids[i] = id
		objects = append(objects, map[string]any{
			"class":      class,
			"id":         id,
			"properties": objectProperties(doc),
		})
	}

	var results []struct {
		ID     string `json:"id"`
		Result struct {
			Status string `json:"status"`
			Errors *struct {
				Error []struct {
					Message string `json:"message"`
				} `json:"error"`
			} `json:"errors"`
		} `json:"result"`
	}
	if err := s.doJSON(ctx, op, http.MethodPost, "/v1/batch/objects", map[string]any{"objects": objects}, &results); err != nil {
		return nil, err
	}
	for _, r := range results {
		if r.Result.Errors != nil && len(r.Result.Errors.Error) > 0 {
			return nil, vectorstore.OpErr(backendName, op, vectorstore.OperationErrorQueryFailed,
				fmt.Sprintf("object %s rejected: %s", r.ID, r.Result.Errors.Error[0].Message), nil)
		}
	}
	return ids, nil
}

func (s *vectorStore) QuerySimilarity(ctx context.Context, collection string, queryText string, limit int, filters map[string]any) ([]vectorstore.SearchResult, error) {
	const op = "query"
	if strings.TrimSpace(queryText) == "" {
		return nil, vectorstore.OpErr(backendName, op, vectorstore.OperationErrorValidation, "query text required", nil)
	}
	if limit <= 0 {
		limit = 10
	}
	class, err := s.className(op, collection)
	if err != nil {
		return nil, err
	}

	where, err := translateFilters(filters)
	if err != nil {
		return nil, err
	}
	whereClause := ""
	if where != nil {
		whereClause = ", where: " + where.renderGraphQL()
	}

	query := fmt.Sprintf(
		"{ Get { %s(limit: %d, nearText: {concepts: [%s]}%s) { text notebookId sourceId chunkIndex sourceName sourceType _additional { id certainty distance } } } }",
		class, limit, strconv.Quote(queryText), whereClause,
	)

	var data struct {
		Get map[string][]graphqlObject `json:"Get"`
	}
	if err := s.doGraphQL(ctx, op, query, &data); err != nil {
		return nil, err
	}

	raw := data.Get[class]
	out := make([]vectorstore.SearchResult, 0, len(raw))
	for _, obj := range raw {
		out = append(out, obj.toSearchResult())
	}
	return out, nil
}

func (s *vectorStore) DeleteDocuments(ctx context.Context, collection string, filters map[string]any) (int, error) {
	const op = "delete"
	class, err := s.className(op, collection)
	if err != nil {
		return 0, err
	}
	where, err := translateFilters(filters)
	if err != nil {
		return 0, err
	}
	if where == nil {
		return 0, vectorstore.OpErr(backendName, op, vectorstore.OperationErrorValidation,
			"delete requires at least one filter", nil)
	}

	body := map[string]any{
		"match": map[string]any{
			"class": class,
			"where": where,
		},
		"output": "minimal",
	}
	var resp struct {
		Results struct {
			Matches    int `json:"matches"`
			Successful int `json:"successful"`
			Failed     int `json:"failed"`
		} `json:"results"`
	}
	if err := s.doJSON(ctx, op, http.MethodDelete, "/v1/batch/objects", body, &resp); err != nil {
		return 0, err
	}
	if resp.Results.Failed > 0 {
		return resp.Results.Successful, vectorstore.OpErr(backendName, op, vectorstore.OperationErrorQueryFailed,
			fmt.Sprintf("%d of %d matched objects failed to delete", resp.Results.Failed, resp.Results.Matches), nil)
	}
	return resp.Results.Successful, nil
}

func (s *vectorStore) DocumentCount(ctx context.Context, collection string, filters map[string]any) (int, error) {
	const op = "count"
	class, err := s.className(op, collection)
	if err != nil {
		return 0, err
	}
	where, err := translateFilters(filters)
	if err != nil {
		return 0, err
	}
	args := ""
	if where != nil {
		args = "(where: " + where.renderGraphQL() + ")"
	}

	query := fmt.Sprintf("{ Aggregate { %s%s { meta { count } } } }", class, args)
	var data struct {
		Aggregate map[string][]struct {
			Meta struct {
				Count int `json:"count"`
			} `json:"meta"`
		} `json:"Aggregate"`
	}
	if err := s.doGraphQL(ctx, op, query, &data); err != nil {
		return 0, err
	}
	rows := data.Aggregate[class]
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Meta.Count, nil
}

// graphqlObject is one Get result with its _additional relevance block.
type graphqlObject struct {
	Text       string   `json:"text"`
	NotebookID string   `json:"notebookId"`
	SourceID   string   `json:"sourceId"`
	ChunkIndex *float64 `json:"chunkIndex"`
	SourceName string   `json:"sourceName"`
	SourceType string   `json:"sourceType"`
	Additional struct {
		ID        string   `json:"id"`
		Certainty *float64 `json:"certainty"`
		Distance  *float64 `json:"distance"`
	} `json:"_additional"`
}

func (o graphqlObject) toSearchResult() vectorstore.SearchResult {
	metadata := map[string]any{
		vectorstore.MetaNotebookID: o.NotebookID,
		vectorstore.MetaSourceID:   o.SourceID,
		vectorstore.MetaSourceName: o.SourceName,
		vectorstore.MetaSourceType: o.SourceType,
	}
	if o.ChunkIndex != nil {
		metadata[vectorstore.MetaChunkIndex] = int(*o.ChunkIndex)
	}
	return vectorstore.SearchResult{
		ID:        o.Additional.ID,
		Text:      o.Text,
		Metadata:  metadata,
		Certainty: o.Additional.Certainty,
		Distance:  o.Additional.Distance,
	}
}

func objectProperties(doc vectorstore.Document) map[string]any {
	props := map[string]any{"text": doc.Text}
	for _, key := range []string{
		vectorstore.MetaNotebookID,
		vectorstore.MetaSourceID,
		vectorstore.MetaChunkIndex,
		vectorstore.MetaSourceName,
		vectorstore.MetaSourceType,
	} {
		if v, ok := doc.Metadata[key]; ok {
			props[propertyName(key)] = v
		}
	}
	return props
}

func (s *vectorStore) verifyReady(ctx context.Context) error {
	const op = "bootstrap_verify"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/.well-known/ready", nil)
	if err != nil {
		return vectorstore.OpErr(backendName, op, vectorstore.OperationErrorTransportFailed, "build ready request failed", err)
	}
	s.authorize(req)
	resp, err := s.http.Do(req)
	if err != nil {
		return classifyHTTPCallError(op, "weaviate ready check failed", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &vectorstore.OperationError{
			Backend:    backendName,
			Code:       vectorstore.OperationErrorQueryFailed,
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("weaviate ready check returned status=%d", resp.StatusCode),
		}
	}
	return nil
}

func (s *vectorStore) classExists(ctx context.Context, op, class string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/schema/"+class, nil)
	if err != nil {
		return false, vectorstore.OpErr(backendName, op, vectorstore.OperationErrorTransportFailed, "build request failed", err)
	}
	s.authorize(req)
	resp, err := s.http.Do(req)
	if err != nil {
		return false, classifyHTTPCallError(op, "weaviate schema lookup failed", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, nil
	default:
		return false, &vectorstore.OperationError{
			Backend:    backendName,
			Code:       vectorstore.OperationErrorQueryFailed,
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("weaviate schema lookup returned status=%d", resp.StatusCode),
		}
	}
}

func (s *vectorStore) doGraphQL(ctx context.Context, op, query string, out any) error {
	var resp struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := s.doJSON(ctx, op, http.MethodPost, "/v1/graphql", map[string]any{"query": query}, &resp); err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		return vectorstore.OpErr(backendName, op, vectorstore.OperationErrorQueryFailed,
			fmt.Sprintf("graphql error: %s", resp.Errors[0].Message), nil)
	}
	if out == nil || len(resp.Data) == 0 || string(resp.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return vectorstore.OpErr(backendName, op, vectorstore.OperationErrorDecodeFailed, "decode graphql data failed", err)
	}
	return nil
}

func (s *vectorStore) doJSON(ctx context.Context, op, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(in); err != nil {
			return vectorstore.OpErr(backendName, op, vectorstore.OperationErrorEncodeFailed, "encode request failed", err)
		}
		body = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return vectorstore.OpErr(backendName, op, vectorstore.OperationErrorTransportFailed, "build request failed", err)
	}
	req.Header.Set("Content-Type", "application/json")
	s.authorize(req)

	resp, err := s.http.Do(req)
	if err != nil {
		return classifyHTTPCallError(op, "weaviate request failed", err)
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 10*maxErrorBodyBytes))
	if readErr != nil {
		return vectorstore.OpErr(backendName, op, vectorstore.OperationErrorDecodeFailed, "read response failed", readErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &vectorstore.OperationError{
			Backend:    backendName,
			Code:       vectorstore.OperationErrorQueryFailed,
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("weaviate http status=%d body=%q", resp.StatusCode, truncateBody(raw)),
		}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return vectorstore.OpErr(backendName, op, vectorstore.OperationErrorDecodeFailed, "decode response failed", err)
	}
	return nil
}

func (s *vectorStore) authorize(req *http.Request) {
	if key := strings.TrimSpace(s.cfg.APIKey); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
}

// className maps a collection name onto a Weaviate class name, which must be
// a capitalized GraphQL identifier.
func (s *vectorStore) className(op, collection string) (string, error) {
	name := classIdentifier(s.cfg.ClassPrefix) + classIdentifier(collection)
	if name == "" {
		return "", vectorstore.OpErr(backendName, op, vectorstore.OperationErrorValidation,
			fmt.Sprintf("collection name %q yields no valid class name", collection), nil)
	}
	return name, nil
}

func classIdentifier(raw string) string {
	var b strings.Builder
	capitalize := true
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			if capitalize && r >= 'a' && r <= 'z' {
				r = r - 'a' + 'A'
			}
			b.WriteRune(r)
			capitalize = false
		default:
			capitalize = true
		}
	}
	return b.String()
}

func classifyHTTPCallError(op, message string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return vectorstore.OpErr(backendName, op, vectorstore.OperationErrorTimeout, message, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return vectorstore.OpErr(backendName, op, vectorstore.OperationErrorTimeout, message, err)
	}
	return vectorstore.OpErr(backendName, op, vectorstore.OperationErrorTransportFailed, message, err)
}

func truncateBody(raw []byte) string {
	if len(raw) <= maxErrorBodyBytes {
		return string(raw)
	}
	return string(raw[:maxErrorBodyBytes]) + "..."
}
