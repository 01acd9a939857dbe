package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"paperlens/internal/config"
	"paperlens/internal/index"
	"paperlens/internal/models"
	"paperlens/internal/providers"
	"paperlens/internal/util"
)

const snippetRunes = 280

// Answerer answers questions about one indexed paper by retrieval-augmented
// generation.
type Answerer struct {
	embedder        providers.EmbeddingProvider
	llm             providers.LLMProvider
	topK            int
	maxContextChars int
	maxTokens       int
	policy          string
}

type contextHit struct {
	chunk models.Chunk
	score float64
}

func NewAnswerer(cfg config.Config, embedder providers.EmbeddingProvider, llm providers.LLMProvider) *Answerer {
	return &Answerer{
		embedder:        embedder,
		llm:             llm,
		topK:            cfg.TopK,
		maxContextChars: cfg.MaxContextChars,
		maxTokens:       cfg.AnswerMaxTokens,
		policy:          cfg.AnswerPolicy,
	}
}

func (a *Answerer) Answer(ctx context.Context, question string, idx *index.Index) (models.AnswerResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return models.AnswerResult{}, util.ErrEmptyQuestion
	}
	if idx == nil {
		return models.AnswerResult{}, util.ErrNoIndex
	}

	vecs, info, err := a.embedder.Embed(ctx, providers.EmbedRequest{
		Operation: "query",
		Inputs:    []string{question},
		Dimension: idx.Dim(),
	})
	if err != nil {
		return models.AnswerResult{}, wrap(util.ErrEmbeddingService, fmt.Errorf("embed question: %w", err))
	}
	if len(vecs) != 1 {
		return models.AnswerResult{}, fmt.Errorf("%w: got %d vectors for one question", util.ErrEmbeddingService, len(vecs))
	}
	if info.ID() != idx.Embedder() {
		return models.AnswerResult{}, fmt.Errorf("%w: question embedded by %s, index built by %s", util.ErrEmbeddingService, info.ID(), idx.Embedder())
	}

	hits, err := idx.Search(vecs[0], a.topK)
	if err != nil {
		return models.AnswerResult{}, err
	}
	selected := budget(hits, a.maxContextChars)

	if len(selected) == 0 && a.policy == config.PolicyStrict {
		return models.AnswerResult{Text: NotFoundMarker, Groundedness: models.Grounded, Insufficient: true, Sources: []models.Source{}}, nil
	}

	resp, _, err := a.llm.Generate(ctx, providers.GenerateRequest{
		Operation: "answer",
		System:    systemFor(a.policy),
		Prompt:    buildPrompt(question, selected),
		MaxTokens: a.maxTokens,
	})
	if err != nil {
		return models.AnswerResult{}, wrap(util.ErrLanguageModel, fmt.Errorf("answer: %w", err))
	}

	text := strings.TrimSpace(resp.Text)
	g, insufficient := classify(a.policy, text)
	if len(selected) == 0 {
		g = models.General
	}
	return models.AnswerResult{
		Text:         text,
		Groundedness: g,
		Insufficient: insufficient,
		Sources:      sources(question, selected),
	}, nil
}

// budget keeps hits in rank order until the next one would push the context
// past maxChars; that hit and every lower-ranked one are dropped. Chunks are
// never cut.
func budget(hits []index.Hit, maxChars int) []contextHit {
	out := make([]contextHit, 0, len(hits))
	total := 0
	for _, h := range hits {
		if maxChars > 0 && total+len(h.Chunk.Text) > maxChars {
			break
		}
		total += len(h.Chunk.Text)
		out = append(out, contextHit{chunk: h.Chunk, score: h.Score})
	}
	return out
}

func sources(question string, hits []contextHit) []models.Source {
	out := make([]models.Source, 0, len(hits))
	for _, h := range hits {
		out = append(out, models.Source{
			ChunkID: h.chunk.ID,
			Section: h.chunk.Section,
			Page:    h.chunk.Page,
			Score:   h.score,
			Snippet: util.DisplayEvidenceSnippet(h.chunk.Text, question, snippetRunes),
		})
	}
	return out
}

func wrap(class, err error) error {
	if errors.Is(err, class) {
		return err
	}
	return fmt.Errorf("%w: %w", class, err)
}
