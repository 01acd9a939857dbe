package summary

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"paperlens/internal/config"
	"paperlens/internal/models"
	"paperlens/internal/providers"
	"paperlens/internal/util"
)

const (
	TruncationMarker = "\n\n[Content truncated for length...]"
	EmptySectionText = "This section has no text to summarize."
)

const system = "You are an expert research analyst and technical writer who explains academic papers in plain language."

const promptTemplate = `Read the following section of a research paper and write a structured summary of it.

Cover:
- the main idea of the section;
- the key findings, facts or arguments, including any numbers reported;
- the methodology, if the section describes one;
- why it matters for the paper as a whole.

Explain technical terms simply, as if to someone new to the field. Use short
paragraphs and bullet points under these headings:

## Summary
## Key Points
## Methodology
## Significance
## Explanation in Simple Terms

Leave out the Methodology heading when the section has no method to describe.

Section: %s

Text:
%s`

type Generator struct {
	llm       providers.LLMProvider
	maxInput  int
	maxTokens int
}

func NewGenerator(cfg config.Config, llm providers.LLMProvider) *Generator {
	return &Generator{llm: llm, maxInput: cfg.SummaryInputChars, maxTokens: cfg.SummaryMaxTokens}
}

func (g *Generator) Summarize(ctx context.Context, sec models.Section) (models.SummaryResult, error) {
	body := strings.TrimSpace(sec.Text)
	if body == "" {
		return models.SummaryResult{Section: sec.Name, Text: EmptySectionText}, nil
	}
	input, truncated := Truncate(body, g.maxInput)
	if truncated {
		log.Printf("summary input truncated section=%q bytes=%d limit=%d", sec.Name, len(body), g.maxInput)
	}

	resp, _, err := g.llm.Generate(ctx, providers.GenerateRequest{
		Operation: "summary",
		System:    system,
		Prompt:    fmt.Sprintf(promptTemplate, sec.Name, input),
		MaxTokens: g.maxTokens,
	})
	if err != nil {
		return models.SummaryResult{}, fmt.Errorf("%w: summarize %s: %w", util.ErrLanguageModel, sec.Name, err)
	}
	return models.SummaryResult{Section: sec.Name, Text: strings.TrimSpace(resp.Text), Truncated: truncated}, nil
}

// Truncate keeps the first max bytes of text, backing off to a rune boundary,
// and appends TruncationMarker. Text within the limit is returned unchanged.
func Truncate(text string, max int) (string, bool) {
	if max <= 0 || len(text) <= max {
		return text, false
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + TruncationMarker, true
}
