package llm

import "context"

const geminiURL = "https://api.generativeai.google/v1beta2/models/gemini-1.5/outputs"

type geminiRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

// Gemini posts the prompt to a generative endpoint. Response shapes differ
// between API versions, so several known text locations are tried.
type Gemini struct {
	transport
	model    string
	endpoint string
}

func newGemini(t transport, cfg Config) *Gemini {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = geminiURL
	}
	return &Gemini{transport: t, model: cfg.Model, endpoint: endpoint}
}

func (g *Gemini) Provider() string { return ProviderGemini }

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	raw, err := g.postJSON(ctx, g.endpoint, geminiRequest{Input: prompt, Model: g.model})
	if err != nil {
		return "", err
	}
	return extractText(raw,
		"candidates.0.content",
		"candidates.0.content.parts.0.text",
		"output.0.content.0.text",
	), nil
}
