package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seo_article_generator/apperr"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.env")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("Should apply defaults for keys missing from the file", func(t *testing.T) {
		path := writeConfig(t, "OPENAI_API_KEY=sk-test\nLLM_MODEL=gpt-4o\n")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "sk-test", cfg.APIKey)
		assert.Equal(t, "gpt-4o", cfg.Model)
		assert.Equal(t, "openai", cfg.Provider)
		assert.Equal(t, 4096, cfg.ChunkTokens)
		assert.Equal(t, 3, cfg.Attempts)
		assert.Equal(t, time.Second, cfg.RetryDelay)
		assert.Equal(t, "input.txt", cfg.InputPath)
	})

	t.Run("Should parse typed values from the file", func(t *testing.T) {
		path := writeConfig(t, `OPENAI_API_KEY=sk-test
RETRY_ATTEMPTS=5
RETRY_BASE_DELAY=250ms
CHUNK_MAX_TOKENS=100
MARKDOWN_FALLBACK=true
PLACEHOLDER="<!-- PLACEHOLDER -->"
`)
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 5, cfg.Attempts)
		assert.Equal(t, 250*time.Millisecond, cfg.RetryDelay)
		assert.Equal(t, 100, cfg.ChunkTokens)
		assert.True(t, cfg.MDFallback)
		assert.Equal(t, "<!-- PLACEHOLDER -->", cfg.Placeholder)
	})

	t.Run("Should let environment variables override the file", func(t *testing.T) {
		path := writeConfig(t, "OPENAI_API_KEY=sk-test\nLLM_MODEL=gpt-4o\n")
		t.Setenv("ARTICLEGEN_LLM_MODEL", "gpt-4.1")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "gpt-4.1", cfg.Model)
	})

	t.Run("Should refuse to start without an API key", func(t *testing.T) {
		path := writeConfig(t, "LLM_MODEL=gpt-4o\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindConfiguration))
		assert.Contains(t, err.Error(), "APIKey")
	})

	t.Run("Should allow the mock provider without an API key", func(t *testing.T) {
		path := writeConfig(t, "LLM_PROVIDER=mock\n")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "mock", cfg.Provider)
	})

	t.Run("Should require a base URL for deepseek", func(t *testing.T) {
		path := writeConfig(t, "OPENAI_API_KEY=sk\nLLM_PROVIDER=deepseek\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "BaseURL")
	})

	t.Run("Should reject a chunk size that cannot make progress", func(t *testing.T) {
		path := writeConfig(t, "OPENAI_API_KEY=sk\nCHUNK_MAX_TOKENS=1\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ChunkTokens")
	})

	t.Run("Should report a missing config file as a configuration error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindConfiguration))
	})
}
