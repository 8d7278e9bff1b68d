package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SOURCE_KIND", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("HTTP_ADDR", "9090")

	cfg := Load()
	assert.Equal(t, SourceStatic, cfg.Source.Kind)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 20*time.Second, cfg.Insight.Timeout)
	assert.False(t, cfg.Insight.Configured())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SOURCE_KIND", "csv")
	t.Setenv("REMOTE_TIMEOUT", "7")
	t.Setenv("CACHE_BACKEND", "off")
	t.Setenv("GEMINI_ENABLED", "yes")
	t.Setenv("GEMINI_API_KEY", "key")

	cfg := Load()
	assert.Equal(t, SourceFlatFile, cfg.Source.Kind)
	assert.Equal(t, 7*time.Second, cfg.Source.Remote.Timeout)
	assert.Equal(t, CacheBackendNone, cfg.Cache.Backend)
	assert.True(t, cfg.Insight.Configured())
}

func TestLoadObservability(t *testing.T) {
	t.Setenv("DEPLOYMENT_ENV", "staging")
	t.Setenv("SERVICE_VERSION", "2.0.0")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", "HTTP")
	t.Setenv("OTEL_SAMPLING_RATIO", "0.25")

	cfg := Load()
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "2.0.0", cfg.AppVersion)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
	assert.True(t, cfg.Observability.OtelEnabled)
	assert.Equal(t, "collector:4318", cfg.Observability.OtelEndpoint)
	assert.Equal(t, "http", cfg.Observability.OtelProtocol)
	assert.Equal(t, 0.25, cfg.Observability.SamplingRatio)
}

func TestTopNClamp(t *testing.T) {
	top := DefaultSettings().TopN
	assert.Equal(t, 5, top.Clamp(0))
	assert.Equal(t, 3, top.Clamp(1))
	assert.Equal(t, 20, top.Clamp(50))
	assert.Equal(t, 7, top.Clamp(7))
}

func TestSettingsHolderMissingFileUsesDefaults(t *testing.T) {
	cfg := Config{Dashboard: DashboardConfig{SettingsPath: filepath.Join(t.TempDir(), "missing.yml")}}

	holder, err := NewSettingsHolder(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), holder.Get())
}

func TestSettingsHolderReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.yml")
	content := []byte("dashboard:\n  categoryOptions: [Audio, Home]\n  topN:\n    min: 1\n    max: 10\n    default: 4\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	holder, err := NewSettingsHolder(Config{Dashboard: DashboardConfig{SettingsPath: path}}, nil)
	require.NoError(t, err)

	got := holder.Get()
	assert.Equal(t, []string{"Audio", "Home"}, got.CategoryOptions)
	assert.Equal(t, TopN{Min: 1, Max: 10, Default: 4}, got.TopN)
}

func TestSettingsHolderRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.yml")
	content := []byte("dashboard:\n  topN:\n    min: 5\n    max: 2\n    default: 3\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	_, err := NewSettingsHolder(Config{Dashboard: DashboardConfig{SettingsPath: path}}, nil)
	assert.Error(t, err)
}
