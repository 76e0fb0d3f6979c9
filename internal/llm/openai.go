package llm

import "context"

const (
	openAIURL          = "https://api.openai.com/v1/chat/completions"
	openAISystemPrompt = "You are a helpful finance assistant."
	openAITemperature  = 0.2
	openAIMaxTokens    = 400
)

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

// OpenAI calls the chat completions API.
type OpenAI struct {
	transport
	model    string
	endpoint string
}

func newOpenAI(t transport, cfg Config) *OpenAI {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = openAIURL
	}
	return &OpenAI{transport: t, model: cfg.Model, endpoint: endpoint}
}

func (o *OpenAI) Provider() string { return ProviderOpenAI }

func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	raw, err := o.postJSON(ctx, o.endpoint, openAIRequest{
		Model: o.model,
		Messages: []openAIMessage{
			{Role: "system", Content: openAISystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: openAITemperature,
		MaxTokens:   openAIMaxTokens,
	})
	if err != nil {
		return "", err
	}
	return extractText(raw, "choices.0.message.content"), nil
}
