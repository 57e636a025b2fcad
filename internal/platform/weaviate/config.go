package weaviate

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

type ConfigErrorCode string

const (
	ConfigErrorMissingURL ConfigErrorCode = "missing_url"
	ConfigErrorInvalidURL ConfigErrorCode = "invalid_url"
)

type ConfigError struct {
	Code    ConfigErrorCode
	Message string
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "weaviate config invalid"
	}
	return fmt.Sprintf("weaviate config invalid (code=%s): %s", e.Code, e.Message)
}

type Config struct {
	// URL is the base URL of the Weaviate instance, e.g. https://my-cluster.weaviate.network.
	URL string
	// APIKey is sent as a bearer token when set.
	APIKey string
	// Vectorizer names the server-side text2vec module used for new
	// collections. The store never embeds text itself.
	Vectorizer string
	// ClassPrefix namespaces collection names, so several deployments can
	// share one cluster.
	ClassPrefix string
	Timeout     time.Duration
}

func ValidateConfig(cfg Config) error {
	raw := strings.TrimSpace(cfg.URL)
	if raw == "" {
		return &ConfigError{Code: ConfigErrorMissingURL, Message: "weaviate url is required"}
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return &ConfigError{Code: ConfigErrorInvalidURL, Message: fmt.Sprintf("weaviate url %q is not a valid absolute url", raw)}
	}
	return nil
}
