package util

import (
	"sort"
	"strings"
	"unicode"
)

// DisplaySnippet collapses whitespace, drops unprintable runes and cuts s to
// maxRunes, adding "..." when it had to cut.
func DisplaySnippet(s string, maxRunes int) string {
	return trimClean(s, maxRunes)
}

// DisplayEvidenceSnippet picks the sentence(s) of chunkText that share the most
// terms with question. When two sentences match they are kept in their original
// order.
func DisplayEvidenceSnippet(chunkText, question string, maxRunes int) string {
	chunkText = trimClean(chunkText, 4000)
	if chunkText == "" {
		return ""
	}
	terms := questionTerms(question)
	sentences := splitSentences(chunkText)
	if len(terms) == 0 || len(sentences) < 2 {
		return trimClean(chunkText, maxRunes)
	}

	type scored struct {
		pos   int
		score int
	}
	list := make([]scored, 0, len(sentences))
	for i, s := range sentences {
		low := strings.ToLower(s)
		score := 0
		for _, term := range terms {
			if strings.Contains(low, term) {
				score++
			}
		}
		list = append(list, scored{pos: i, score: score})
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].score > list[j].score
	})
	if list[0].score == 0 {
		return trimClean(sentences[0], maxRunes)
	}
	picked := []int{list[0].pos}
	if list[1].score > 0 {
		picked = append(picked, list[1].pos)
		sort.Ints(picked)
	}
	parts := make([]string, 0, len(picked))
	for _, p := range picked {
		parts = append(parts, sentences[p])
	}
	return trimClean(strings.Join(parts, " "), maxRunes)
}

// splitSentences splits on . ! ? followed by a space and an upper-case letter or
// digit, so "et al. (2020)" and "3.5" stay inside one sentence.
func splitSentences(s string) []string {
	runes := []rune(s)
	out := make([]string, 0, 8)
	start := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+2 < len(runes) && runes[i+1] == ' ' && (unicode.IsUpper(runes[i+2]) || unicode.IsDigit(runes[i+2])) {
			if x := strings.TrimSpace(string(runes[start : i+1])); x != "" {
				out = append(out, x)
			}
			start = i + 2
		}
	}
	if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
		out = append(out, rest)
	}
	return out
}

var questionStopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "was": {}, "were": {}, "what": {}, "how": {},
	"why": {}, "which": {}, "that": {}, "this": {}, "these": {}, "those": {}, "with": {},
	"from": {}, "does": {}, "did": {}, "paper": {}, "about": {}, "they": {}, "their": {},
}

func questionTerms(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	seen := map[string]struct{}{}
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ",.;:!?()[]{}\"'`")
		if len(f) < 3 {
			continue
		}
		if _, ok := questionStopwords[f]; ok {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		terms = append(terms, f)
	}
	return terms
}

func trimClean(s string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = 420
	}
	s = strings.Join(strings.Fields(SanitizeText(s)), " ")
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsPrint(r) {
			out = append(out, r)
		}
	}
	if len(out) > maxRunes {
		return strings.TrimSpace(string(out[:maxRunes])) + "..."
	}
	return string(out)
}
