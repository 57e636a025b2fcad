package ollama

import (
	"context"
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
			BaseURL: "http://ollama.test",
			Model:   "llama3.1",
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

func TestGenerateMapsParamsToOptions(t *testing.T) {
	var captured string
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/generate" {
			t.Fatalf("path: want=/api/generate got=%s", req.URL.Path)
		}
		raw, _ := io.ReadAll(req.Body)
		captured = string(raw)
		return textResponse(200, `{"response":"Local answer.","done":true}`), nil
	})

	params := &llm.Params{
		Temperature:   llm.Float64(0.7),
		MaxTokens:     llm.Int(256),
		StopSequences: []string{"\n\n"},
	}
	got, err := c.Generate(context.Background(), "What is local?", params)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Local answer." {
		t.Fatalf("response: want=%q got=%q", "Local answer.", got)
	}
	for _, fragment := range []string{
		`"model":"llama3.1"`,
		`"stream":false`,
		`"temperature":0.7`,
		`"num_predict":256`,
		`"stop":["\n\n"]`,
	} {
		if !strings.Contains(captured, fragment) {
			t.Fatalf("request missing %s:\n%s", fragment, captured)
		}
	}
}

func TestGenerateRejectsEmptyPrompt(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		t.Fatalf("no request expected")
		return nil, nil
	})
	if _, err := c.Generate(context.Background(), "", nil); err == nil {
		t.Fatalf("want error for empty prompt")
	}
}

func TestGenerateStreamReadsNDJSON(t *testing.T) {
	body := strings.Join([]string{
		`{"response":"Hel","done":false}`,
		`{"response":"lo","done":false}`,
		`{"response":"","done":true}`,
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
	if len(deltas) != 2 {
		t.Fatalf("deltas: want=2 got=%v", deltas)
	}
}

func TestGenerateHTTPError(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		return textResponse(500, `{"error":"model not found"}`), nil
	})
	if _, err := c.Generate(context.Background(), "hi", nil); err == nil {
		t.Fatalf("want error for 500")
	}
}

func TestModelInfoReadsContextLength(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/show" {
			t.Fatalf("path: want=/api/show got=%s", req.URL.Path)
		}
		raw, _ := io.ReadAll(req.Body)
		if !strings.Contains(string(raw), `"model":"llama3.1"`) {
			t.Fatalf("request missing model name:\n%s", raw)
		}
		return textResponse(200, `{"model_info":{"general.architecture":"llama","llama.context_length":131072}}`), nil
	})
	info, err := c.ModelInfo(context.Background())
	if err != nil {
		t.Fatalf("ModelInfo: %v", err)
	}
	if info.Name != "llama3.1" || info.Provider != "ollama" || info.MaxTokens != 131072 {
		t.Fatalf("info: got=%+v", info)
	}
}

func TestNewClientDefaults(t *testing.T) {
	got, err := NewClient(logger.NewNop(), Config{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	cl, ok := got.(*client)
	if !ok {
		t.Fatalf("unexpected client type %T", got)
	}
	if cl.cfg.BaseURL != defaultBaseURL || cl.cfg.Model != defaultModel {
		t.Fatalf("defaults: got=%+v", cl.cfg)
	}
	if _, err := NewClient(nil, Config{}); err == nil {
		t.Fatalf("want error for nil logger")
	}
}
