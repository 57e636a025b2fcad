package openai

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/inkwell-ai/inkwell-backend/internal/logger"
	"github.com/inkwell-ai/inkwell-backend/internal/platform/llm"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func newTestClient(rt roundTripFunc) *client {
	return &client{
		log: logger.NewNop(),
		cfg: Config{
			APIKey:        "test-key",
			BaseURL:       "https://api.test",
			Model:         "gpt-4o-mini",
			ContextTokens: 128000,
		},
		http: &http.Client{Transport: rt},
	}
}

func textResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestGenerateSendsParamsAndReturnsContent(t *testing.T) {
	var captured string
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/v1/chat/completions" {
			t.Fatalf("path: want=/v1/chat/completions got=%s", req.URL.Path)
		}
		if got := req.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("authorization header: got=%q", got)
		}
		raw, _ := io.ReadAll(req.Body)
		captured = string(raw)
		return textResponse(200, `{"choices":[{"message":{"content":"The answer."}}]}`), nil
	})

	params := &llm.Params{
		Temperature: llm.Float64(0.2),
		MaxTokens:   llm.Int(512),
	}
	got, err := c.Generate(context.Background(), "What is the answer?", params)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "The answer." {
		t.Fatalf("content: want=%q got=%q", "The answer.", got)
	}
	for _, fragment := range []string{
		`"model":"gpt-4o-mini"`,
		`"temperature":0.2`,
		`"max_tokens":512`,
		`"role":"user"`,
	} {
		if !strings.Contains(captured, fragment) {
			t.Fatalf("request missing %s:\n%s", fragment, captured)
		}
	}
	if strings.Contains(captured, `"stream"`) {
		t.Fatalf("non-streaming request should omit stream flag:\n%s", captured)
	}
}

func TestGenerateRejectsEmptyPrompt(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		t.Fatalf("no request expected")
		return nil, nil
	})
	if _, err := c.Generate(context.Background(), "  ", nil); err == nil {
		t.Fatalf("want error for empty prompt")
	}
}

func TestGenerateHTTPError(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		return textResponse(429, `{"error":{"message":"rate limited"}}`), nil
	})
	_, err := c.Generate(context.Background(), "hello", nil)
	if err == nil {
		t.Fatalf("want error for 429")
	}
	if !IsRateLimited(err) {
		t.Fatalf("IsRateLimited: want=true got=false (%v)", err)
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 429 {
		t.Fatalf("status: want=429 got=%v", err)
	}
}

func TestGenerateStreamConcatenatesDeltas(t *testing.T) {
	body := strings.Join([]string{
		`data: {"choices":[{"delta":{"content":"Hel"}}]}`,
		``,
		`data: {"choices":[{"delta":{"content":"lo"}}]}`,
		``,
		`data: [DONE]`,
		``,
	}, "\n")
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		raw, _ := io.ReadAll(req.Body)
		if !strings.Contains(string(raw), `"stream":true`) {
			t.Fatalf("streaming request missing stream flag:\n%s", raw)
		}
		return textResponse(200, body), nil
	})

	var deltas []string
	got, err := c.GenerateStream(context.Background(), "hi", nil, func(d string) {
		deltas = append(deltas, d)
	})
	if err != nil {
		t.Fatalf("GenerateStream: %v", err)
	}
	if got != "Hello" {
		t.Fatalf("full text: want=Hello got=%q", got)
	}
	if len(deltas) != 2 || deltas[0] != "Hel" || deltas[1] != "lo" {
		t.Fatalf("deltas: want=[Hel lo] got=%v", deltas)
	}
}

func TestModelInfoUsesConfiguredContextWindow(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/v1/models/gpt-4o-mini" {
			t.Fatalf("path: got=%s", req.URL.Path)
		}
		return textResponse(200, `{"id":"gpt-4o-mini","object":"model"}`), nil
	})
	info, err := c.ModelInfo(context.Background())
	if err != nil {
		t.Fatalf("ModelInfo: %v", err)
	}
	if info.Name != "gpt-4o-mini" || info.Provider != "openai" || info.MaxTokens != 128000 {
		t.Fatalf("info: got=%+v", info)
	}
}

func TestCountTokensEstimates(t *testing.T) {
	c := newTestClient(nil)
	n, err := c.CountTokens(context.Background(), strings.Repeat("a", 40))
	if err != nil {
		t.Fatalf("CountTokens: %v", err)
	}
	if n != 10 {
		t.Fatalf("tokens: want=10 got=%d", n)
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(logger.NewNop(), Config{}); err == nil {
		t.Fatalf("want error for missing api key")
	}
	if _, err := NewClient(nil, Config{APIKey: "k"}); err == nil {
		t.Fatalf("want error for nil logger")
	}
}
