// Package llm sends fact sheets to a hosted language model and extracts the
// generated text. One Generator exists per vendor; the vendor is picked once
// at construction time.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"finchat/internal/core"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 30 * time.Second
)

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Provider() string
}

type Config struct {
	Provider string
	APIKey   string
	Model    string
	// Endpoint overrides the vendor URL (OPENAI_URL or GEMINI_URL).
	Endpoint string
	Timeout  time.Duration
	// HTTPClient replaces the pooled default client.
	HTTPClient *http.Client
}

// UpstreamError reports a non-2xx vendor response. Body is the raw response.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

func (e *UpstreamError) Is(target error) bool {
	return target == core.ErrUpstream
}

var errMissingKey = fmt.Errorf("%w: LLM API key not configured on server", core.ErrConfiguration)

// New returns the Generator for cfg.Provider (case-insensitive).
func New(cfg Config) (Generator, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = newHTTPClientWithPooling(cfg.Timeout)
	}
	base := transport{client: hc, apiKey: cfg.APIKey, timeout: cfg.Timeout}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderOpenAI:
		base.provider = ProviderOpenAI
		return newOpenAI(base, cfg), nil
	case ProviderGemini:
		base.provider = ProviderGemini
		return newGemini(base, cfg), nil
	default:
		// A missing key is reported before the provider, as for the
		// supported vendors.
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, errMissingKey
		}
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedProvider, cfg.Provider)
	}
}

// AsUpstream unwraps the vendor error carried by err, if any.
func AsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	ok := errors.As(err, &ue)
	return ue, ok
}

type unavailable struct {
	provider string
	err      error
}

// Unavailable returns a Generator whose every call fails with err. It keeps
// a misconfigured provider from blocking the deterministic answers.
func Unavailable(provider string, err error) Generator {
	return unavailable{provider: provider, err: err}
}

func (u unavailable) Generate(context.Context, string) (string, error) { return "", u.err }

func (u unavailable) Provider() string { return u.provider }
