package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "indexer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Len(t, cfg.Indexer.Variants, 2)
	v1, ok := cfg.Variant("version1")
	require.True(t, ok)
	assert.Equal(t, VariantConfig{Name: "Version1", Reducer: "lemma", Scheme: "gamma", Style: "blocked", BlockSize: 4}, v1)
	v2, _ := cfg.Variant("Version2")
	assert.Equal(t, 8, v2.BlockSize)
	assert.Equal(t, "front-coding", v2.Style)
	assert.Len(t, cfg.Indexer.ProbeTerms, 7)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
indexer:
  corpusDir: /data/cranfield
  outputDir: /tmp/out
  variants:
    - name: only
      reducer: stem
      scheme: gamma
      style: front-coding
      blockSize: 3
retry:
  maxAttempts: 5
  initialDelay: 250ms
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/cranfield", cfg.Indexer.CorpusDir)
	require.Len(t, cfg.Indexer.Variants, 1)
	assert.Equal(t, 3, cfg.Indexer.Variants[0].BlockSize)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.InitialDelay)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestShippedConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "indexer.yaml"))
	require.NoError(t, err)
	assert.Len(t, cfg.Indexer.Variants, 2)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CI_CORPUS_DIR", "/env/corpus")
	t.Setenv("CI_REDIS_ADDR", "redis:6379")
	t.Setenv("CI_METRICS_PORT", "9191")
	t.Setenv("CI_PROBE_TERMS", "flow,shock")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/env/corpus", cfg.Indexer.CorpusDir)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 9191, cfg.Metrics.Port)
	assert.Equal(t, []string{"flow", "shock"}, cfg.Indexer.ProbeTerms)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero block size", func(c *Config) { c.Indexer.Variants[0].BlockSize = 0 }},
		{"unknown scheme", func(c *Config) { c.Indexer.Variants[0].Scheme = "golomb" }},
		{"unknown style", func(c *Config) { c.Indexer.Variants[1].Style = "trie" }},
		{"unknown reducer", func(c *Config) { c.Indexer.Variants[1].Reducer = "soundex" }},
		{"duplicate name", func(c *Config) { c.Indexer.Variants[1].Name = "VERSION1" }},
		{"no variants", func(c *Config) { c.Indexer.Variants = nil }},
		{"no corpus", func(c *Config) { c.Indexer.CorpusDir = "" }},
		{"kafka without topic", func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Topics.IndexComplete = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), apperrors.ErrInvalidConfig)
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestDSN(t *testing.T) {
	p := Default().Postgres
	assert.Equal(t, "host=localhost port=5432 user=cranfield password=localdev dbname=cranfield sslmode=disable", p.DSN())
}
