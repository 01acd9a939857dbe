package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveOllamaEmbedModel(t *testing.T) {
	t.Setenv("PAPERLENS_OLLAMA_EMBED_MODEL", "")
	require.Equal(t, "nomic-embed-text", resolveOllamaEmbedModel(""))
	require.Equal(t, "bge-small-en-v1.5", resolveOllamaEmbedModel("bge"))
	require.Equal(t, "mxbai-embed-large", resolveOllamaEmbedModel("mxbai-embed-large"))
}

func TestOllamaGenerateAndEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		switch r.URL.Path {
		case "/api/generate":
			require.Equal(t, false, body["stream"])
			_ = json.NewEncoder(w).Encode(map[string]any{"response": "attention is all you need"})
		case "/api/embeddings":
			_ = json.NewEncoder(w).Encode(map[string]any{"embedding": []float32{0.1, 0.2, 0.3}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	t.Setenv("PAPERLENS_OLLAMA_BASE_URL", srv.URL)

	p := NewOllamaProvider("")
	resp, info, err := p.Generate(context.Background(), GenerateRequest{Prompt: "title?", MaxTokens: 16})
	require.NoError(t, err)
	require.Equal(t, "attention is all you need", resp.Text)
	require.Equal(t, "ollama", info.Name)

	vecs, _, err := p.Embed(context.Background(), EmbedRequest{Inputs: []string{"a", "b"}})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	require.Len(t, vecs[1], 3)
}

func TestOllamaErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()
	t.Setenv("PAPERLENS_OLLAMA_BASE_URL", srv.URL)

	_, _, err := NewOllamaProvider("").Generate(context.Background(), GenerateRequest{Prompt: "x"})
	require.ErrorContains(t, err, "status 404")
}
