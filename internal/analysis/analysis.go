package analysis

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"paperlens/internal/models"
)

const (
	DefaultTopKeywords  = 10
	maxCitationExamples = 10
)

var (
	wordRe          = regexp.MustCompile(`\b[a-z]{4,}\b`)
	bracketCitation = regexp.MustCompile(`\[\d+(?:[,\-\s]+\d+)*\]`)
	authorCitation  = regexp.MustCompile(`\([A-Z][a-zA-Z]+(?:\s+et\s+al\.)?,\s+\d{4}\)`)
)

// Only words of four or more letters are counted, so shorter stop words are
// not listed.
var stopWords = map[string]struct{}{
	"that": {}, "with": {}, "this": {}, "were": {}, "what": {}, "when": {},
	"there": {}, "your": {}, "which": {}, "their": {}, "each": {}, "about": {},
	"them": {}, "then": {}, "many": {}, "some": {}, "these": {}, "would": {},
	"other": {}, "into": {}, "more": {}, "using": {}, "from": {}, "also": {},
	"such": {}, "than": {}, "been": {}, "they": {}, "where": {}, "while": {},
	"both": {}, "only": {}, "over": {}, "between": {}, "through": {}, "have": {},
	"does": {}, "most": {}, "same": {}, "those": {}, "thus": {}, "here": {},
	"however": {}, "since": {}, "very": {}, "well": {}, "could": {}, "should": {},
}

// Keywords counts lower-cased words of at least four letters, skipping stop
// words, and returns the topN most frequent. Equal counts are ordered
// alphabetically.
func Keywords(text string, topN int) []models.KeywordCount {
	if topN <= 0 {
		topN = DefaultTopKeywords
	}
	counts := make(map[string]int)
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if _, stop := stopWords[w]; stop {
			continue
		}
		counts[w]++
	}
	out := make([]models.KeywordCount, 0, len(counts))
	for w, n := range counts {
		out = append(out, models.KeywordCount{Word: w, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

// Citations finds numeric ("[3]", "[1, 2]", "[4-6]") and author-year
// ("(Vaswani et al., 2017)") citations. Total counts every occurrence; Examples
// holds the first distinct ones in order of appearance.
func Citations(text string) models.CitationStats {
	locs := append(bracketCitation.FindAllStringIndex(text, -1), authorCitation.FindAllStringIndex(text, -1)...)
	sort.Slice(locs, func(i, j int) bool { return locs[i][0] < locs[j][0] })

	stats := models.CitationStats{Total: len(locs), Examples: []string{}}
	seen := make(map[string]struct{})
	for _, loc := range locs {
		if len(stats.Examples) == maxCitationExamples {
			break
		}
		c := text[loc[0]:loc[1]]
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		stats.Examples = append(stats.Examples, c)
	}
	return stats
}

// TopicDistribution reports each section's share of the body text, largest
// first.
func TopicDistribution(secs []models.Section) []models.TopicShare {
	total := 0
	out := make([]models.TopicShare, 0, len(secs))
	for _, s := range secs {
		n := utf8.RuneCountInString(s.Text)
		total += n
		out = append(out, models.TopicShare{Section: s.Name, Chars: n})
	}
	if total > 0 {
		for i := range out {
			out[i].Percent = math.Round(float64(out[i].Chars)*1000/float64(total)) / 10
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Chars > out[j].Chars })
	return out
}

func Analyze(doc *models.Document, chunkCount int) models.PaperStats {
	return models.PaperStats{
		WordCount:    len(strings.Fields(doc.Text)),
		PageCount:    len(doc.Pages),
		SectionCount: len(doc.Sections),
		ChunkCount:   chunkCount,
		Keywords:     Keywords(doc.Text, DefaultTopKeywords),
		Citations:    Citations(doc.Text),
		Topics:       TopicDistribution(doc.Sections),
	}
}
