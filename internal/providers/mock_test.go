package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func dot(a, b []float32) float32 {
	var s float32
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func TestMockEmbedDeterministicAndWordSensitive(t *testing.T) {
	m := NewMockProvider(256)
	vecs, info, err := m.Embed(context.Background(), EmbedRequest{Inputs: []string{
		"transformer attention heads",
		"transformer attention heads",
		"soil moisture irrigation",
	}})
	require.NoError(t, err)
	require.Equal(t, "mock/mock-embed-256", info.ID())
	require.Len(t, vecs, 3)
	require.Equal(t, vecs[0], vecs[1])
	require.InDelta(t, 1.0, dot(vecs[0], vecs[0]), 1e-5)

	q, _, err := m.Embed(context.Background(), EmbedRequest{Inputs: []string{"how many attention heads"}})
	require.NoError(t, err)
	require.Greater(t, dot(q[0], vecs[0]), dot(q[0], vecs[2]))
}

func TestMockEmbedNeverReturnsZeroVector(t *testing.T) {
	m := NewMockProvider(256)
	// "alpha" and "gamma" land in the same bucket with opposite signs at dim 4.
	vecs, _, err := m.Embed(context.Background(), EmbedRequest{Inputs: []string{"alpha gamma"}, Dimension: 4})
	require.NoError(t, err)
	require.Len(t, vecs, 1)
	require.Equal(t, []float32{1, 0, 0, 0}, vecs[0])
}
