package providers

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// GroqProvider supports LLM generation via Groq's OpenAI-compatible API. Groq
// has no embedding endpoint.
type GroqProvider struct {
	keyName string
	apiKey  string
	model   string
	client  *openai.Client
}

func NewGroqProvider(keyName string) *GroqProvider {
	apiKey := resolveKey("GROQ", keyName, "GROQ_API_KEY")
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = envOr("PAPERLENS_GROQ_BASE_URL", groqBaseURL)
	return &GroqProvider{
		keyName: keyName,
		apiKey:  apiKey,
		model:   envOr("PAPERLENS_GROQ_MODEL", "llama-3.1-8b-instant"),
		client:  openai.NewClientWithConfig(cfg),
	}
}

func (g *GroqProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	info := ProviderInfo{Name: "groq", Model: g.model, Key: g.keyName}
	if g.apiKey == "" {
		return GenerateResponse{}, info, fmt.Errorf("groq key missing for alias %q", g.keyName)
	}
	text, err := chatComplete(ctx, g.client, g.model, req)
	if err != nil {
		return GenerateResponse{}, info, fmt.Errorf("groq chat request failed: %w", err)
	}
	return GenerateResponse{Text: text}, info, nil
}
