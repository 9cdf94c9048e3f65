package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, DefaultAPIVersion, cfg.APIVersion)
	assert.Zero(t, cfg.HTTPTimeout)
	assert.Equal(t, 10.0, cfg.RateLimitRPS)
	assert.Equal(t, 5, cfg.RateLimitBurst)
	assert.Empty(t, cfg.TargetOrg)
	assert.Empty(t, cfg.Warnings)
}

func TestLoad_AllVarsSet(t *testing.T) {
	cfg, err := Load(envMap(map[string]string{
		"FIELDKIT_LOG_LEVEL":        "debug",
		"FIELDKIT_LOG_FORMAT":       "json",
		"FIELDKIT_API_VERSION":      "59.0",
		"FIELDKIT_HTTP_TIMEOUT":     "45s",
		"FIELDKIT_RATE_LIMIT_RPS":   "2.5",
		"FIELDKIT_RATE_LIMIT_BURST": "1",
		"FIELDKIT_TARGET_ORG":       " dev-sandbox ",
	}))
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "59.0", cfg.APIVersion)
	assert.Equal(t, 45*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, 1, cfg.RateLimitBurst)
	assert.Equal(t, "dev-sandbox", cfg.TargetOrg)
}

func TestLoad_BadNumbersBecomeWarnings(t *testing.T) {
	cfg, err := Load(envMap(map[string]string{
		"FIELDKIT_HTTP_TIMEOUT":     "soon",
		"FIELDKIT_RATE_LIMIT_RPS":   "-1",
		"FIELDKIT_RATE_LIMIT_BURST": "zero",
	}))
	require.NoError(t, err)
	assert.Len(t, cfg.Warnings, 3)
	assert.Equal(t, 10.0, cfg.RateLimitRPS)
	assert.Equal(t, 5, cfg.RateLimitBurst)
}

func TestLoad_Rejects(t *testing.T) {
	_, err := Load(envMap(map[string]string{"FIELDKIT_LOG_FORMAT": "xml"}))
	require.Error(t, err)

	_, err = Load(envMap(map[string]string{"FIELDKIT_API_VERSION": "latest"}))
	require.Error(t, err)
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelWarn},
	}
	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.level}
		assert.Equal(t, tt.want, cfg.SlogLevel(), tt.level)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{LogLevel: "info", LogFormat: "json"}
	logger := cfg.NewLogger(&buf)

	logger.Debug("hidden")
	logger.Info("visible", "target_org", "dev")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"visible"`)
	assert.Contains(t, buf.String(), `"target_org":"dev"`)

	buf.Reset()
	(&Config{LogLevel: "info", LogFormat: "text"}).NewLogger(&buf).Info("plain")
	assert.Contains(t, buf.String(), "msg=plain")
}

func TestReadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\n\nFIELDKIT_TARGET_ORG=\"uat\"\nexport FIELDKIT_LOG_LEVEL='debug'\nnot a pair\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	values, err := ReadDotEnv(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"FIELDKIT_TARGET_ORG": "uat",
		"FIELDKIT_LOG_LEVEL":  "debug",
	}, values)

	_, set := os.LookupEnv("FIELDKIT_TARGET_ORG")
	assert.False(t, set, "ReadDotEnv must not touch the process environment")
}

func TestReadDotEnv_Missing(t *testing.T) {
	values, err := ReadDotEnv(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestLookupChain_ProcessEnvWins(t *testing.T) {
	t.Setenv("FIELDKIT_TARGET_ORG", "from-env")
	getenv := LookupChain(map[string]string{
		"FIELDKIT_TARGET_ORG": "from-file",
		"FIELDKIT_LOG_LEVEL":  "info",
	})
	assert.Equal(t, "from-env", getenv("FIELDKIT_TARGET_ORG"))
	assert.Equal(t, "info", getenv("FIELDKIT_LOG_LEVEL"))
	assert.Empty(t, getenv("FIELDKIT_API_VERSION"))
}

func TestStripQuotes(t *testing.T) {
	assert.Equal(t, "a", stripQuotes(`"a"`))
	assert.Equal(t, "a", stripQuotes(`'a'`))
	assert.Equal(t, `"a'`, stripQuotes(`"a'`))
	assert.Equal(t, `"`, stripQuotes(`"`))
}
