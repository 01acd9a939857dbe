package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitSpansWithoutSeparators(t *testing.T) {
	text := "abcdefghijklmnopqrstuvwxyz"
	spans := SplitSpans(text, 10, 2)
	require.Equal(t, []Span{{0, 10}, {8, 18}, {16, 26}}, spans)
	if text[spans[0].Start:spans[0].End] != "abcdefghij" {
		t.Fatalf("unexpected first chunk: %s", text[spans[0].Start:spans[0].End])
	}
}

func TestSplitSpansPrefersParagraphBreak(t *testing.T) {
	text := "alpha beta gamma.\n\ndelta epsilon zeta eta theta"
	spans := SplitSpans(text, 30, 5)
	require.NotEmpty(t, spans)
	require.Equal(t, "alpha beta gamma.\n\n", text[spans[0].Start:spans[0].End])
	require.Equal(t, len(text), spans[len(spans)-1].End)
}

func TestSplitSpansCoversTextAndOverlaps(t *testing.T) {
	text := strings.Repeat("The encoder maps tokens to vectors. ", 80)
	spans := SplitSpans(text, 200, 40)
	require.Greater(t, len(spans), 1)
	require.Equal(t, 0, spans[0].Start)
	require.Equal(t, len(text), spans[len(spans)-1].End)
	for i := 1; i < len(spans); i++ {
		require.Less(t, spans[i].Start, spans[i-1].End, "chunks %d and %d must overlap", i-1, i)
		require.Greater(t, spans[i].Start, spans[i-1].Start)
		require.LessOrEqual(t, spans[i].End-spans[i].Start, 200)
	}
}

func TestSplitSpansDeterministic(t *testing.T) {
	text := strings.Repeat("Résumé of attention, with ünïcode. ", 50)
	a := SplitSpans(text, 128, 32)
	b := SplitSpans(text, 128, 32)
	require.Equal(t, a, b)
	for _, s := range a {
		require.True(t, strings.ToValidUTF8(text[s.Start:s.End], "?") == text[s.Start:s.End], "span cut inside a rune")
	}
}

func TestSplitSpansSkipsWhitespace(t *testing.T) {
	require.Empty(t, SplitSpans("   \n\n  ", 10, 2))
	require.Empty(t, SplitSpans("", 10, 2))
}
