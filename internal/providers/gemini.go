package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider serves generation and embeddings from Google's Gemini API.
// The client is created on first use.
type GeminiProvider struct {
	keyName    string
	apiKey     string
	chatModel  string
	embedModel string
	client     lazy[*genai.Client]
}

func NewGeminiProvider(keyName string) *GeminiProvider {
	g := &GeminiProvider{
		keyName:    keyName,
		apiKey:     resolveKey("GEMINI", keyName, "GEMINI_API_KEY"),
		chatModel:  envOr("PAPERLENS_GEMINI_MODEL", "gemini-1.5-flash"),
		embedModel: envOr("PAPERLENS_GEMINI_EMBED_MODEL", "text-embedding-004"),
	}
	g.client.init = func(ctx context.Context) (*genai.Client, error) {
		if g.apiKey == "" {
			return nil, fmt.Errorf("gemini key missing for alias %q", g.keyName)
		}
		return genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	}
	return g
}

func (g *GeminiProvider) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	info := ProviderInfo{Name: "gemini", Model: g.chatModel, Key: g.keyName}
	client, err := g.client.get(ctx)
	if err != nil {
		return GenerateResponse{}, info, err
	}
	model := client.GenerativeModel(g.chatModel)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt(req))}}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return GenerateResponse{}, info, fmt.Errorf("gemini content request failed: %w", err)
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		break
	}
	if b.Len() == 0 {
		return GenerateResponse{}, info, fmt.Errorf("gemini returned no text")
	}
	return GenerateResponse{Text: b.String()}, info, nil
}

func (g *GeminiProvider) Embed(ctx context.Context, req EmbedRequest) ([][]float32, ProviderInfo, error) {
	info := ProviderInfo{Name: "gemini", Model: g.embedModel, Key: g.keyName}
	client, err := g.client.get(ctx)
	if err != nil {
		return nil, info, err
	}
	em := client.EmbeddingModel(g.embedModel)
	batch := em.NewBatch()
	for _, text := range req.Inputs {
		batch.AddContent(genai.Text(text))
	}
	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, info, fmt.Errorf("gemini embedding request failed: %w", err)
	}
	out := make([][]float32, 0, len(resp.Embeddings))
	for _, e := range resp.Embeddings {
		if e == nil {
			out = append(out, nil)
			continue
		}
		out = append(out, e.Values)
	}
	return out, info, nil
}
