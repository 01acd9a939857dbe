package rag

import (
	"fmt"
	"strings"

	"paperlens/internal/config"
	"paperlens/internal/models"
)

const (
	NotFoundMarker   = "I couldn't find this specific information in the uploaded research paper."
	FallbackLead     = "However, based on my general knowledge:"
	GeneralKnowledge = "[General knowledge]"
)

const strictSystem = `You are an AI research assistant analyzing an academic paper.

Answer the question using only the context excerpts from the uploaded paper.
- Be clear and concise. Quote short passages when they support the answer.
- Use bullet points or numbered lists when listing several items.
- If the context does not contain the answer, reply with exactly: "` + NotFoundMarker + `"
  and then say briefly what the paper does cover that is closest to the question.
- Never add facts that are not in the context.`

const blendSystem = `You are an AI research assistant analyzing an academic paper.

Answer the question using the context excerpts from the uploaded paper first.
1. If the answer is in the context, answer from it. Quote short passages when they
   support the answer, and use lists when listing several items.
2. If the answer is not in the context, start with:
   "` + NotFoundMarker + `"
   Then add: "` + FallbackLead + `" and answer from general knowledge.
3. If the context only partly answers the question, give what the paper says first,
   then add any general knowledge, starting each such sentence with "` + GeneralKnowledge + `".`

func systemFor(policy string) string {
	if policy == config.PolicyStrict {
		return strictSystem
	}
	return blendSystem
}

func buildPrompt(question string, hits []contextHit) string {
	var b strings.Builder
	b.WriteString("CONTEXT (from the research paper):\n")
	if len(hits) == 0 {
		b.WriteString("(no relevant excerpts)\n")
	}
	for i, h := range hits {
		fmt.Fprintf(&b, "\n[%d] Section: %s", i+1, h.chunk.Section)
		if h.chunk.Page > 0 {
			fmt.Fprintf(&b, ", page %d", h.chunk.Page)
		}
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(h.chunk.Text))
		b.WriteString("\n")
	}
	b.WriteString("\nQUESTION: ")
	b.WriteString(question)
	b.WriteString("\n\nANSWER:")
	return b.String()
}

// classify reads the answer's markers. Under the strict policy answers are
// always grounded and the not-found marker only flags insufficient context.
func classify(policy, answer string) (models.Groundedness, bool) {
	low := strings.ToLower(strings.ReplaceAll(answer, "’", "'"))
	notFound := strings.Contains(low, strings.ToLower(NotFoundMarker))
	if policy == config.PolicyStrict {
		return models.Grounded, notFound
	}
	switch {
	case notFound:
		return models.General, false
	case strings.Contains(low, strings.ToLower(GeneralKnowledge)),
		strings.Contains(low, "however, based on my general knowledge"):
		return models.Blended, false
	default:
		return models.Grounded, false
	}
}
