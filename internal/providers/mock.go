package providers

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"unicode"
)

// MockProvider is an offline provider. Its embeddings hash each word into a
// fixed bucket, so texts sharing words score higher than unrelated texts, and
// the same input always yields the same vector.
type MockProvider struct {
	dim int
}

func NewMockProvider(dim int) *MockProvider {
	if dim <= 0 {
		dim = 768
	}
	return &MockProvider{dim: dim}
}

func (m *MockProvider) Embed(_ context.Context, req EmbedRequest) ([][]float32, ProviderInfo, error) {
	dim := req.Dimension
	if dim <= 0 {
		dim = m.dim
	}
	vectors := make([][]float32, 0, len(req.Inputs))
	for _, input := range req.Inputs {
		vectors = append(vectors, hashedVector(input, dim))
	}
	return vectors, ProviderInfo{Name: "mock", Model: fmt.Sprintf("mock-embed-%d", dim), Key: "mock"}, nil
}

func (m *MockProvider) Generate(_ context.Context, req GenerateRequest) (GenerateResponse, ProviderInfo, error) {
	op := strings.ToLower(req.Operation)
	text := "Mock response."
	switch {
	case strings.Contains(op, "answer"):
		text = "Based on the retrieved excerpts, the paper addresses this question. (mock answer)"
	case strings.Contains(op, "summary"):
		text = "**Main points:** deterministic mock summary.\n**Key findings:** none, this is mock output."
	}
	return GenerateResponse{Text: text}, ProviderInfo{Name: "mock", Model: "mock-llm-v1", Key: "mock"}, nil
}

func hashedVector(input string, dim int) []float32 {
	vec := make([]float32, dim)
	words := strings.FieldsFunc(strings.ToLower(input), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		words = []string{"empty"}
	}
	for _, w := range words {
		h := sha256.Sum256([]byte(w))
		bucket := binary.BigEndian.Uint32(h[:4]) % uint32(dim)
		if h[4]&1 == 0 {
			vec[bucket]++
		} else {
			vec[bucket]--
		}
	}
	var nonzero bool
	for _, x := range vec {
		if x != 0 {
			nonzero = true
			break
		}
	}
	if !nonzero {
		// every word cancelled out
		vec[0] = 1
	}
	return normalize(vec)
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
	return v
}
