package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisplaySnippet(t *testing.T) {
	out := DisplaySnippet("Hello\x00   world \n\t again", 100)
	require.Equal(t, "Hello world again", out)

	out = DisplaySnippet(strings.Repeat("a", 50), 10)
	require.Equal(t, "aaaaaaaaaa...", out)
}

func TestDisplayEvidenceSnippet(t *testing.T) {
	chunk := "This paper studies edge computing in cloud schedulers. It evaluates latency reduction for edge workloads. Unrelated appendix text."
	out := DisplayEvidenceSnippet(chunk, "What are edge workload latency results?", 200)
	require.Contains(t, strings.ToLower(out), "latency")
	require.NotContains(t, out, "appendix")
}

func TestSplitSentencesKeepsAbbreviations(t *testing.T) {
	got := splitSentences("As in Vaswani et al. (2017) we use 6 layers. Accuracy rose to 3.5 points. Done")
	require.Equal(t, []string{
		"As in Vaswani et al. (2017) we use 6 layers.",
		"Accuracy rose to 3.5 points.",
		"Done",
	}, got)
}
