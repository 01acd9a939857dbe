package analysis

import (
	"testing"

	"paperlens/internal/models"

	"github.com/stretchr/testify/require"
)

func TestKeywords(t *testing.T) {
	text := "Attention attention ATTENTION. The model uses attention and a decoder; the decoder is small. " +
		"Encoder, encoder. This that with from using."
	got := Keywords(text, 3)
	require.Equal(t, []models.KeywordCount{
		{Word: "attention", Count: 4},
		{Word: "decoder", Count: 2},
		{Word: "encoder", Count: 2},
	}, got)

	require.Len(t, Keywords(text, 0), 6)
	require.Empty(t, Keywords("a an the of to", 10))
}

func TestCitations(t *testing.T) {
	text := "Prior work [1] and [2, 3] extended RNNs (Hochreiter, 1997). " +
		"Transformers (Vaswani et al., 2017) beat [1] and [4-6]. Not a citation: [a] (see, 2017)."
	stats := Citations(text)
	require.Equal(t, 6, stats.Total)
	require.Equal(t, []string{"[1]", "[2, 3]", "(Hochreiter, 1997)", "(Vaswani et al., 2017)", "[4-6]"}, stats.Examples)

	empty := Citations("no references here")
	require.Zero(t, empty.Total)
	require.NotNil(t, empty.Examples)
}

func TestTopicDistribution(t *testing.T) {
	secs := []models.Section{
		{Name: "Abstract", Text: "abcd"},
		{Name: "Methods", Text: "abcdefghijkl"},
		{Name: "Results", Text: "abcd"},
	}
	got := TopicDistribution(secs)
	require.Equal(t, []models.TopicShare{
		{Section: "Methods", Chars: 12, Percent: 60},
		{Section: "Abstract", Chars: 4, Percent: 20},
		{Section: "Results", Chars: 4, Percent: 20},
	}, got)
}

func TestAnalyze(t *testing.T) {
	doc := &models.Document{
		Text:     "Abstract\nSparse attention [1] works.\nResults\nSparse attention wins.",
		Pages:    []models.PageSpan{{Number: 1}, {Number: 2}},
		Sections: []models.Section{{Name: "Abstract", Text: "Sparse attention [1] works.\n"}, {Name: "Results", Text: "Sparse attention wins."}},
	}
	stats := Analyze(doc, 3)
	require.Equal(t, 9, stats.WordCount)
	require.Equal(t, 2, stats.PageCount)
	require.Equal(t, 2, stats.SectionCount)
	require.Equal(t, 3, stats.ChunkCount)
	require.Equal(t, 1, stats.Citations.Total)
	require.Equal(t, "attention", stats.Keywords[0].Word)
	require.Len(t, stats.Topics, 2)
}
