package providers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseProviderList(t *testing.T) {
	refs := ParseProviderList("mock| OpenAI:key1 |ollama:nomic-embed-text")
	require.Len(t, refs, 3)
	require.Equal(t, ProviderRef{Raw: "OpenAI:key1", Name: "openai", KeyAlias: "key1"}, refs[1])
	require.Equal(t, "nomic-embed-text", refs[2].KeyAlias)
}

func TestParseProviderListEmptyFallsBackToMock(t *testing.T) {
	refs := ParseProviderList(" | ")
	require.Equal(t, []ProviderRef{{Raw: "mock", Name: "mock"}}, refs)
}
