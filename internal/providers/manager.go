package providers

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"paperlens/internal/config"
)

type NamedLLMProvider struct {
	Ref      ProviderRef
	Provider LLMProvider
}

type NamedEmbedProvider struct {
	Ref      ProviderRef
	Provider EmbeddingProvider
}

// CallRecord describes one collaborator call for the audit log.
type CallRecord struct {
	Operation string
	Provider  string
	Model     string
	Status    string
	ErrorType string
	Latency   time.Duration
}

type Auditor interface {
	RecordCall(ctx context.Context, rec CallRecord)
}

type NopAuditor struct{}

func (NopAuditor) RecordCall(context.Context, CallRecord) {}

// Manager is both the LanguageModel and the EmbeddingService seen by the rest
// of the module. Providers are constructed on first use. Generation fails over
// across the configured LLM providers; embeddings always come from the first
// preferred embedding provider so every vector shares one space.
type Manager struct {
	llmRefs   []ProviderRef
	embedRefs []ProviderRef
	dim       int
	audit     Auditor

	llms   lazy[[]NamedLLMProvider]
	embeds lazy[[]NamedEmbedProvider]
}

func NewManager(cfg config.Config, audit Auditor) (*Manager, error) {
	if audit == nil {
		audit = NopAuditor{}
	}
	m := &Manager{
		llmRefs:   ParseProviderList(cfg.LLMProviders),
		embedRefs: ParseProviderList(cfg.EmbedProviders),
		dim:       cfg.EmbedDim,
		audit:     audit,
	}
	for _, ref := range m.llmRefs {
		if !supportsLLM(ref.Name) {
			return nil, fmt.Errorf("provider %s does not support llm", ref.Raw)
		}
	}
	for _, ref := range m.embedRefs {
		if !supportsEmbed(ref.Name) {
			return nil, fmt.Errorf("provider %s does not support embeddings", ref.Raw)
		}
	}
	m.llms.init = m.buildLLMs
	m.embeds.init = m.buildEmbedders
	return m, nil
}

func (m *Manager) buildLLMs(context.Context) ([]NamedLLMProvider, error) {
	out := make([]NamedLLMProvider, 0, len(m.llmRefs))
	for _, i := range preferredOrder(len(m.llmRefs), func(i int) string { return m.llmRefs[i].Name }) {
		ref := m.llmRefs[i]
		p, err := buildProvider(ref, m.dim)
		if err != nil {
			return nil, err
		}
		out = append(out, NamedLLMProvider{Ref: ref, Provider: p.(LLMProvider)})
	}
	log.Printf("llm providers ready order=%s", refNames(out, func(p NamedLLMProvider) string { return p.Ref.Raw }))
	return out, nil
}

func (m *Manager) buildEmbedders(context.Context) ([]NamedEmbedProvider, error) {
	out := make([]NamedEmbedProvider, 0, len(m.embedRefs))
	for _, i := range preferredOrder(len(m.embedRefs), func(i int) string { return m.embedRefs[i].Name }) {
		ref := m.embedRefs[i]
		p, err := buildProvider(ref, m.dim)
		if err != nil {
			return nil, err
		}
		out = append(out, NamedEmbedProvider{Ref: ref, Provider: p.(EmbeddingProvider)})
	}
	log.Printf("embedding provider ready ref=%s dim=%d", out[0].Ref.Raw, m.dim)
	return out, nil
}

func (m *Manager) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	llms, err := m.llms.get(ctx)
	if err != nil {
		return GenerateResponse{}, ProviderInfo{}, err
	}
	var lastErr error
	var lastInfo ProviderInfo
	for _, p := range llms {
		start := time.Now()
		resp, info, err := p.Provider.Generate(ctx, req)
		m.record(ctx, req.Operation, info, err, time.Since(start))
		if err == nil {
			return resp, info, nil
		}
		lastErr = fmt.Errorf("llm %s: %w", p.Ref.Raw, err)
		lastInfo = info
		if ClassifyError(err) == ErrorContext || ctx.Err() != nil {
			break
		}
		log.Printf("llm provider failed op=%s provider=%s error_type=%s", req.Operation, p.Ref.Raw, ClassifyError(err))
	}
	return GenerateResponse{}, lastInfo, fmt.Errorf("%w: %w", KindError(lastErr), lastErr)
}

func (m *Manager) Embed(ctx context.Context, req EmbedRequest) ([][]float32, ProviderInfo, error) {
	embeds, err := m.embeds.get(ctx)
	if err != nil {
		return nil, ProviderInfo{}, err
	}
	if req.Dimension <= 0 {
		req.Dimension = m.dim
	}
	p := embeds[0]
	start := time.Now()
	vecs, info, err := p.Provider.Embed(ctx, req)
	m.record(ctx, req.Operation, info, err, time.Since(start))
	if err != nil {
		err = fmt.Errorf("embed %s: %w", p.Ref.Raw, err)
		return nil, info, fmt.Errorf("%w: %w", KindError(err), err)
	}
	return vecs, info, nil
}

func (m *Manager) record(ctx context.Context, op string, info ProviderInfo, err error, latency time.Duration) {
	rec := CallRecord{Operation: op, Provider: info.Name, Model: info.Model, Status: "ok", Latency: latency}
	if err != nil {
		rec.Status = "error"
		rec.ErrorType = string(ClassifyError(err))
	}
	m.audit.RecordCall(ctx, rec)
}

// preferredOrder puts real providers ahead of mock ones.
func preferredOrder(n int, nameAt func(i int) string) []int {
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if nameAt(i) != "mock" {
			out = append(out, i)
		}
	}
	for i := 0; i < n; i++ {
		if nameAt(i) == "mock" {
			out = append(out, i)
		}
	}
	return out
}

func refNames[T any](items []T, name func(T) string) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, name(it))
	}
	return strings.Join(parts, ",")
}

func supportsLLM(name string) bool {
	switch name {
	case "mock", "openai", "groq", "ollama", "gemini":
		return true
	}
	return false
}

func supportsEmbed(name string) bool {
	switch name {
	case "mock", "openai", "ollama", "gemini":
		return true
	}
	return false
}

func buildProvider(ref ProviderRef, dim int) (any, error) {
	switch ref.Name {
	case "mock":
		return NewMockProvider(dim), nil
	case "openai":
		return NewOpenAIProvider(ref.KeyAlias), nil
	case "ollama":
		return NewOllamaProvider(ref.KeyAlias), nil
	case "groq":
		return NewGroqProvider(ref.KeyAlias), nil
	case "gemini":
		return NewGeminiProvider(ref.KeyAlias), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", ref.Name)
	}
}
