package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	HTTP struct {
		Port string `yaml:"port" env:"SAMPLE_HTTP_PORT"`
	} `yaml:"http"`
	Auth struct {
		Token  string   `yaml:"token"`
		Exempt []string `yaml:"exempt"`
	} `yaml:"auth"`
	Timeout time.Duration `yaml:"timeout"`
	Seed    uint64        `yaml:"seed"`
	Ratio   float64       `yaml:"ratio"`
	Debug   bool          `yaml:"debug"`
	Skipped string        `yaml:"skipped" env:"-"`
}

func TestLoadConfigFromYAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  port: "9000"
auth:
  token: from-file
  exempt: [/health]
timeout: 3s
ratio: 0.5
skipped: file
`), 0o600))

	t.Setenv("SAMPLE_HTTP_PORT", "9100")
	t.Setenv("AUTH_EXEMPT", "/health, /metrics,,")
	t.Setenv("TIMEOUT", "1500ms")
	t.Setenv("SEED", "42")
	t.Setenv("DEBUG", "true")
	t.Setenv("SKIPPED", "env")

	var cfg sample
	require.NoError(t, LoadConfigFrom(path, &cfg))

	assert.Equal(t, "9100", cfg.HTTP.Port)
	assert.Equal(t, "from-file", cfg.Auth.Token)
	assert.Equal(t, []string{"/health", "/metrics"}, cfg.Auth.Exempt)
	assert.Equal(t, 1500*time.Millisecond, cfg.Timeout)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.InDelta(t, 0.5, cfg.Ratio, 1e-9)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "file", cfg.Skipped)
}

func TestLoadConfigUsesPathEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  token: abc\n"), 0o600))
	t.Setenv(PathEnv, path)

	var cfg sample
	require.NoError(t, LoadConfig(&cfg))
	assert.Equal(t, "abc", cfg.Auth.Token)
}

func TestLoadConfigRejectsBadTargets(t *testing.T) {
	require.Error(t, LoadConfigFrom("", nil))

	var notStruct int
	require.Error(t, LoadConfigFrom("", &notStruct))

	require.Error(t, LoadConfigFrom("", sample{}))
}

func TestLoadConfigReportsParseErrors(t *testing.T) {
	t.Setenv("SEED", "not-a-number")

	var cfg sample
	err := LoadConfigFrom("", &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SEED")
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg sample
	err := LoadConfigFrom(filepath.Join(t.TempDir(), "missing.yaml"), &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read file")
}
