package providers

import "context"

type ProviderInfo struct {
	Name  string `json:"name"`
	Model string `json:"model"`
	Key   string `json:"key"`
}

// ID names the provider and model pair. Vectors from different IDs live in
// different embedding spaces.
func (p ProviderInfo) ID() string {
	return p.Name + "/" + p.Model
}

type GenerateRequest struct {
	Operation string `json:"operation"`
	System    string `json:"system,omitempty"`
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
}

type GenerateResponse struct {
	Text string `json:"text"`
}

type EmbedRequest struct {
	Operation string   `json:"operation"`
	Inputs    []string `json:"inputs"`
	Dimension int      `json:"dimension"`
}

type LLMProvider interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error)
}

type EmbeddingProvider interface {
	Embed(ctx context.Context, req EmbedRequest) ([][]float32, ProviderInfo, error)
}

const defaultSystemPrompt = "You are a research assistant that explains academic papers clearly and accurately."

func systemPrompt(req GenerateRequest) string {
	if req.System != "" {
		return req.System
	}
	return defaultSystemPrompt
}
