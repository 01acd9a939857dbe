package index

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync/atomic"
	"testing"

	"paperlens/internal/config"
	"paperlens/internal/models"
	"paperlens/internal/providers"
	"paperlens/internal/util"

	"github.com/stretchr/testify/require"
)

type embedFunc func(ctx context.Context, req providers.EmbedRequest) ([][]float32, providers.ProviderInfo, error)

func (f embedFunc) Embed(ctx context.Context, req providers.EmbedRequest) ([][]float32, providers.ProviderInfo, error) {
	return f(ctx, req)
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.ChunkSize = 120
	cfg.ChunkOverlap = 20
	cfg.EmbedBatchSize = 3
	cfg.EmbedDim = 64
	return cfg
}

func testDocument() *models.Document {
	intro := strings.Repeat("Transformers replace recurrence with attention over tokens. ", 6)
	methods := strings.Repeat("We train on eight GPUs with label smoothing and dropout. ", 6)
	text := "Introduction\n" + intro + "Methods\n" + methods
	introBody := len("Introduction\n")
	methodsStart := introBody + len(intro)
	methodsBody := methodsStart + len("Methods\n")
	return &models.Document{
		ID:    "doc-1",
		Text:  text,
		Pages: []models.PageSpan{{Number: 1, Start: 0, End: methodsStart}, {Number: 2, Start: methodsStart, End: len(text)}},
		Sections: []models.Section{
			{Name: "Introduction", Heading: "Introduction", Start: 0, BodyStart: introBody, End: methodsStart, Text: intro},
			{Name: "Methods", Heading: "Methods", Start: methodsStart, BodyStart: methodsBody, End: len(text), Text: methods},
		},
	}
}

func TestBuildChunksAndEmbeds(t *testing.T) {
	cfg := testConfig()
	doc := testDocument()
	idx, err := NewBuilder(cfg, providers.NewMockProvider(cfg.EmbedDim)).Build(context.Background(), doc)
	require.NoError(t, err)
	require.Equal(t, 64, idx.Dim())
	require.Equal(t, "mock/mock-embed-64", idx.Embedder())
	require.Greater(t, idx.Len(), 4)

	for _, c := range idx.Chunks() {
		sec := doc.Sections[c.SectionIndex]
		require.Equal(t, sec.Name, c.Section)
		require.Equal(t, sec.Text[c.Offset:c.Offset+len(c.Text)], c.Text)
		require.Equal(t, doc.Text[c.DocOffset:c.DocOffset+len(c.Text)], c.Text)
		require.LessOrEqual(t, len(c.Text), cfg.ChunkSize)
		require.Equal(t, c.SectionIndex+1, c.Page)
	}
	for _, v := range idx.vectors {
		require.InDelta(t, 1.0, math.Sqrt(dot(v, v)), 1e-5)
	}
}

func TestChunkIDsStableAcrossBuilds(t *testing.T) {
	cfg := testConfig()
	b := NewBuilder(cfg, providers.NewMockProvider(cfg.EmbedDim))
	a, err := b.Build(context.Background(), testDocument())
	require.NoError(t, err)
	c, err := b.Build(context.Background(), testDocument())
	require.NoError(t, err)
	require.Equal(t, a.Chunks(), c.Chunks())
	require.Equal(t, "0-0", a.Chunks()[0].ID)
}

func TestSearchFindsExactChunk(t *testing.T) {
	cfg := testConfig()
	mock := providers.NewMockProvider(cfg.EmbedDim)
	idx, err := NewBuilder(cfg, mock).Build(context.Background(), testDocument())
	require.NoError(t, err)

	q, _, err := mock.Embed(context.Background(), providers.EmbedRequest{Inputs: []string{"label smoothing dropout GPUs"}, Dimension: cfg.EmbedDim})
	require.NoError(t, err)
	hits, err := idx.Search(q[0], 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	require.Equal(t, "Methods", hits[0].Chunk.Section)
	require.Equal(t, 1, hits[0].Rank)
	for i := 1; i < len(hits); i++ {
		require.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
	}
}

func TestSearchTiesPreferEarlierOffset(t *testing.T) {
	v := []float32{1, 0, 0}
	idx := &Index{
		chunks: []models.Chunk{
			{ID: "1-0", DocOffset: 500},
			{ID: "0-40", DocOffset: 40},
			{ID: "0-0", DocOffset: 0},
			{ID: "2-0", DocOffset: 900},
		},
		vectors:  [][]float32{v, v, {0, 1, 0}, v},
		dim:      3,
		embedder: "mock/test",
	}
	hits, err := idx.Search([]float32{2, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 4)
	require.Equal(t, []string{"0-40", "1-0", "2-0", "0-0"}, []string{hits[0].Chunk.ID, hits[1].Chunk.ID, hits[2].Chunk.ID, hits[3].Chunk.ID})
	require.InDelta(t, 1.0, hits[0].Score, 1e-9)
}

func TestSearchRejectsWrongDimension(t *testing.T) {
	idx := &Index{chunks: []models.Chunk{{ID: "0-0"}}, vectors: [][]float32{{1, 0}}, dim: 2}
	_, err := idx.Search([]float32{1, 0, 0}, 1)
	require.ErrorIs(t, err, util.ErrEmbeddingService)
	_, err = idx.Search([]float32{0, 0}, 1)
	require.ErrorIs(t, err, util.ErrEmbeddingService)
}

func TestBuildFailsOnEmbedderError(t *testing.T) {
	cfg := testConfig()
	boom := errors.New("connection refused")
	e := embedFunc(func(ctx context.Context, req providers.EmbedRequest) ([][]float32, providers.ProviderInfo, error) {
		return nil, providers.ProviderInfo{Name: "fake"}, boom
	})
	idx, err := NewBuilder(cfg, e).Build(context.Background(), testDocument())
	require.Nil(t, idx)
	require.ErrorIs(t, err, util.ErrEmbeddingService)
	require.ErrorIs(t, err, boom)
}

func TestBuildRejectsMalformedVectors(t *testing.T) {
	cfg := testConfig()
	cases := map[string]func(n int) [][]float32{
		"short batch": func(n int) [][]float32 { return make([][]float32, n-1) },
		"zero vector": func(n int) [][]float32 {
			out := make([][]float32, n)
			for i := range out {
				out[i] = []float32{0, 0, 0}
			}
			return out
		},
		"nan": func(n int) [][]float32 {
			out := make([][]float32, n)
			for i := range out {
				out[i] = []float32{1, float32(math.NaN()), 0}
			}
			return out
		},
		"mixed dimension": func(n int) [][]float32 {
			out := make([][]float32, n)
			for i := range out {
				out[i] = make([]float32, 3+i)
				out[i][0] = 1
			}
			return out
		},
	}
	for name, vecs := range cases {
		t.Run(name, func(t *testing.T) {
			e := embedFunc(func(ctx context.Context, req providers.EmbedRequest) ([][]float32, providers.ProviderInfo, error) {
				return vecs(len(req.Inputs)), providers.ProviderInfo{Name: "fake", Model: "m"}, nil
			})
			idx, err := NewBuilder(cfg, e).Build(context.Background(), testDocument())
			require.Nil(t, idx)
			require.ErrorIs(t, err, util.ErrEmbeddingService)
		})
	}
}

func TestBuildConcurrentBatchesKeepOrder(t *testing.T) {
	cfg := testConfig()
	cfg.EmbedBatchSize = 1
	cfg.EmbedConcurrency = 4
	var calls atomic.Int32
	mock := providers.NewMockProvider(cfg.EmbedDim)
	e := embedFunc(func(ctx context.Context, req providers.EmbedRequest) ([][]float32, providers.ProviderInfo, error) {
		calls.Add(1)
		return mock.Embed(ctx, req)
	})
	idx, err := NewBuilder(cfg, e).Build(context.Background(), testDocument())
	require.NoError(t, err)
	require.Equal(t, int32(idx.Len()), calls.Load())

	sequential, err := NewBuilder(testConfig(), mock).Build(context.Background(), testDocument())
	require.NoError(t, err)
	require.Equal(t, sequential.vectors, idx.vectors)
}

func TestBuildEmptySections(t *testing.T) {
	cfg := testConfig()
	doc := &models.Document{Sections: []models.Section{{Name: "Full Text", Text: "   "}}}
	_, err := NewBuilder(cfg, providers.NewMockProvider(cfg.EmbedDim)).Build(context.Background(), doc)
	require.ErrorIs(t, err, util.ErrEmptyDocument)
}

func TestBuildHeadingOnlySections(t *testing.T) {
	cfg := testConfig()
	text := "Abstract\nIntroduction\n"
	doc := &models.Document{
		Text: text,
		Sections: []models.Section{
			{Name: "Abstract", Heading: "Abstract", Start: 0, BodyStart: 9, End: 9, Text: ""},
			{Name: "Introduction", Heading: "Introduction", Start: 9, BodyStart: len(text), End: len(text), Text: ""},
		},
	}
	idx, err := NewBuilder(cfg, providers.NewMockProvider(cfg.EmbedDim)).Build(context.Background(), doc)
	require.NoError(t, err)
	chunks := idx.Chunks()
	require.Len(t, chunks, 2)
	require.Equal(t, "0-h", chunks[0].ID)
	require.Equal(t, "Abstract", chunks[0].Text)
	require.Equal(t, 9, chunks[1].DocOffset)
	require.Equal(t, "Introduction", chunks[1].Text)
}
