package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PAPERLENS_CONFIG", "")
	t.Setenv("PAPERLENS_CHUNK_SIZE", "")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 1000, cfg.ChunkSize)
	require.Equal(t, 200, cfg.ChunkOverlap)
	require.Equal(t, 4, cfg.TopK)
	require.Equal(t, PolicyBlend, cfg.AnswerPolicy)
	require.Equal(t, RunnerLocal, cfg.Runner)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paperlens.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunk_size: 800\nchunk_overlap: 100\nanswer_policy: strict\nsession_ttl: 30m\n"), 0o600))
	t.Setenv("PAPERLENS_CHUNK_OVERLAP", "50")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 800, cfg.ChunkSize)
	require.Equal(t, 50, cfg.ChunkOverlap)
	require.Equal(t, PolicyStrict, cfg.AnswerPolicy)
	require.Equal(t, 30*time.Minute, cfg.SessionTTL)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.ChunkOverlap = cfg.ChunkSize
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.AnswerPolicy = "creative"
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.MaxContextChars = cfg.ChunkSize - 1
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Runner = "k8s"
	require.Error(t, cfg.Validate())
}

func TestBadEnvNumberFallsBack(t *testing.T) {
	t.Setenv("PAPERLENS_TOP_K", "many")
	require.Equal(t, 4, getenvInt("PAPERLENS_TOP_K", 4))
}
