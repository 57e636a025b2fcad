// Package ollama implements the llm.Client contract against a local Ollama
// server. Generation uses /api/generate; model metadata comes from /api/show.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/inkwell-ai/inkwell-backend/internal/logger"
	"github.com/inkwell-ai/inkwell-backend/internal/platform/llm"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3.1"
)

type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

type client struct {
	log  *logger.Logger
	cfg  Config
	http *http.Client
}

func NewClient(log *logger.Logger, cfg Config) (llm.Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		// Local models can be slow on first load.
		timeout = 5 * time.Minute
	}
	return &client{
		log:  log.With("service", "OllamaClient"),
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
	}, nil
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (c *client) Generate(ctx context.Context, prompt string, params *llm.Params) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt required")
	}
	req := generateRequest{
		Model:   c.cfg.Model,
		Prompt:  prompt,
		Stream:  false,
		Options: buildOptions(params),
	}

	var resp generateResponse
	if err := c.doJSON(ctx, "/api/generate", req, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

func (c *client) GenerateStream(ctx context.Context, prompt string, params *llm.Params, onDelta func(delta string)) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt required")
	}
	req := generateRequest{
		Model:   c.cfg.Model,
		Prompt:  prompt,
		Stream:  true,
		Options: buildOptions(params),
	}

	httpResp, err := c.do(ctx, "/api/generate", req)
	if err != nil {
		return "", err
	}
	defer httpResp.Body.Close()

	// Ollama streams newline-delimited JSON objects, one per token batch.
	var full strings.Builder
	scanner := bufio.NewScanner(httpResp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var chunk generateResponse
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			return "", fmt.Errorf("decode stream line: %w", err)
		}
		if chunk.Response != "" {
			full.WriteString(chunk.Response)
			if onDelta != nil {
				onDelta(chunk.Response)
			}
		}
		if chunk.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read stream: %w", err)
	}
	return full.String(), nil
}

func (c *client) CountTokens(_ context.Context, text string) (int, error) {
	return llm.EstimateTokens(text), nil
}

func (c *client) ModelInfo(ctx context.Context) (llm.ModelInfo, error) {
	var resp struct {
		ModelInfo map[string]any `json:"model_info"`
	}
	if err := c.doJSON(ctx, "/api/show", map[string]string{"model": c.cfg.Model}, &resp); err != nil {
		return llm.ModelInfo{}, err
	}
	return llm.ModelInfo{
		Name:      c.cfg.Model,
		Provider:  "ollama",
		MaxTokens: contextLength(resp.ModelInfo),
	}, nil
}

// contextLength digs the context window out of /api/show's model_info map.
// The key is architecture-prefixed, e.g. "llama.context_length".
func contextLength(info map[string]any) int {
	for key, value := range info {
		if !strings.HasSuffix(key, ".context_length") {
			continue
		}
		if n, ok := value.(float64); ok {
			return int(n)
		}
	}
	return 0
}

func buildOptions(params *llm.Params) map[string]any {
	if params == nil {
		return nil
	}
	opts := map[string]any{}
	if params.Temperature != nil {
		opts["temperature"] = *params.Temperature
	}
	if params.MaxTokens != nil {
		opts["num_predict"] = *params.MaxTokens
	}
	if params.TopP != nil {
		opts["top_p"] = *params.TopP
	}
	if params.FrequencyPenalty != nil {
		opts["frequency_penalty"] = *params.FrequencyPenalty
	}
	if params.PresencePenalty != nil {
		opts["presence_penalty"] = *params.PresencePenalty
	}
	if len(params.StopSequences) > 0 {
		opts["stop"] = params.StopSequences
	}
	if len(opts) == 0 {
		return nil
	}
	return opts
}

func (c *client) do(ctx context.Context, path string, in any) (*http.Response, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(in); err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.cfg.BaseURL, "/")+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("ollama http status=%d body=%q", resp.StatusCode, string(raw))
	}
	return resp, nil
}

func (c *client) doJSON(ctx context.Context, path string, in any, out any) error {
	resp, err := c.do(ctx, path, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
