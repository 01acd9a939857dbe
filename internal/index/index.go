package index

import (
	"fmt"
	"math"
	"sort"

	"paperlens/internal/models"
	"paperlens/internal/util"
)

// Index is an immutable in-memory vector index over the chunks of one
// document. Vectors are L2-normalised, so the inner product is the cosine.
type Index struct {
	chunks   []models.Chunk
	vectors  [][]float32
	dim      int
	embedder string
}

type Hit struct {
	Chunk models.Chunk
	Score float64
	Rank  int
}

func (x *Index) Len() int { return len(x.chunks) }

func (x *Index) Dim() int { return x.dim }

// Embedder is the provider/model identity that produced the vectors. Queries
// must be embedded by the same one.
func (x *Index) Embedder() string { return x.embedder }

// Chunks returns a copy of the indexed chunks in document order.
func (x *Index) Chunks() []models.Chunk {
	out := make([]models.Chunk, len(x.chunks))
	copy(out, x.chunks)
	return out
}

// Search returns the k chunks most similar to query, best first. Equal scores
// resolve to the chunk that starts earlier in the document.
func (x *Index) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != x.dim {
		return nil, fmt.Errorf("%w: query dimension %d, index dimension %d", util.ErrEmbeddingService, len(query), x.dim)
	}
	q, err := normalize(query)
	if err != nil {
		return nil, fmt.Errorf("%w: query vector: %v", util.ErrEmbeddingService, err)
	}
	if k <= 0 || len(x.chunks) == 0 {
		return nil, nil
	}

	hits := make([]Hit, len(x.chunks))
	for i, v := range x.vectors {
		hits[i] = Hit{Chunk: x.chunks[i], Score: dot(q, v)}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Chunk.DocOffset < hits[j].Chunk.DocOffset
	})
	if k < len(hits) {
		hits = hits[:k]
	}
	for i := range hits {
		hits[i].Rank = i + 1
	}
	return hits, nil
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

// normalize returns a unit-length copy of v. Non-finite values and the zero
// vector are rejected.
func normalize(v []float32) ([]float32, error) {
	var sum float64
	for _, f := range v {
		x := float64(f)
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("non-finite component")
		}
		sum += x * x
	}
	if sum == 0 {
		return nil, fmt.Errorf("zero vector")
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(float64(f) / norm)
	}
	return out, nil
}
