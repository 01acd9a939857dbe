package providers

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider serves chat completions and embeddings from the OpenAI API.
type OpenAIProvider struct {
	keyName    string
	apiKey     string
	chatModel  string
	embedModel string
	client     *openai.Client
}

func NewOpenAIProvider(keyName string) *OpenAIProvider {
	apiKey := resolveKey("OPENAI", keyName, "OPENAI_API_KEY")
	cfg := openai.DefaultConfig(apiKey)
	if base := strings.TrimSpace(os.Getenv("PAPERLENS_OPENAI_BASE_URL")); base != "" {
		cfg.BaseURL = base
	}
	return &OpenAIProvider{
		keyName:    keyName,
		apiKey:     apiKey,
		chatModel:  envOr("PAPERLENS_OPENAI_CHAT_MODEL", "gpt-4o-mini"),
		embedModel: envOr("PAPERLENS_OPENAI_EMBED_MODEL", string(openai.SmallEmbedding3)),
		client:     openai.NewClientWithConfig(cfg),
	}
}

func (o *OpenAIProvider) Embed(ctx context.Context, req EmbedRequest) ([][]float32, ProviderInfo, error) {
	info := ProviderInfo{Name: "openai", Model: o.embedModel, Key: o.keyName}
	if o.apiKey == "" {
		return nil, info, fmt.Errorf("openai key missing for alias %q", o.keyName)
	}
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      req.Inputs,
		Model:      openai.EmbeddingModel(o.embedModel),
		Dimensions: req.Dimension,
	})
	if err != nil {
		return nil, info, fmt.Errorf("openai embedding request failed: %w", err)
	}
	data := resp.Data
	sort.Slice(data, func(i, j int) bool { return data[i].Index < data[j].Index })
	out := make([][]float32, 0, len(data))
	for _, d := range data {
		out = append(out, d.Embedding)
	}
	return out, info, nil
}

func (o *OpenAIProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	info := ProviderInfo{Name: "openai", Model: o.chatModel, Key: o.keyName}
	if o.apiKey == "" {
		return GenerateResponse{}, info, fmt.Errorf("openai key missing for alias %q", o.keyName)
	}
	text, err := chatComplete(ctx, o.client, o.chatModel, req)
	if err != nil {
		return GenerateResponse{}, info, fmt.Errorf("openai chat request failed: %w", err)
	}
	return GenerateResponse{Text: text}, info, nil
}

// chatComplete runs one system+user exchange against any OpenAI-compatible
// endpoint.
func chatComplete(ctx context.Context, client *openai.Client, model string, req GenerateRequest) (string, error) {
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty choices from model %s", model)
	}
	return resp.Choices[0].Message.Content, nil
}

// resolveKey reads PAPERLENS_<VENDOR>_KEY_<ALIAS> and falls back to the
// vendor's usual variable.
func resolveKey(vendor, alias, fallbackVar string) string {
	if alias != "" {
		if v := os.Getenv("PAPERLENS_" + vendor + "_KEY_" + sanitizeEnvToken(alias)); v != "" {
			return v
		}
	}
	return os.Getenv(fallbackVar)
}

func envOr(k, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return fallback
}

func sanitizeEnvToken(s string) string {
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, ".", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return s
}
