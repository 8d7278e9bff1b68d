package observability

import (
	"testing"

	"github.com/smallbiznis/storepulse/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig(config.Config{AppName: "", Environment: "production"})
	assert.Equal(t, "storepulse", cfg.ServiceName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "grpc", cfg.OtelExporterProtocol)
	assert.False(t, cfg.OtelEnabled)
	assert.False(t, cfg.Debug())
}

func TestLoadConfigMapsObservabilitySettings(t *testing.T) {
	cfg := LoadConfig(config.Config{
		AppName:     "pulse",
		AppVersion:  "1.2.3",
		Environment: "staging",
		Observability: config.ObservabilityConfig{
			LogLevel:      "warn",
			LogFormat:     "console",
			OtelEnabled:   true,
			OtelEndpoint:  "collector:4318",
			OtelProtocol:  "http",
			SamplingRatio: 0.5,
		},
	})
	assert.Equal(t, "pulse", cfg.ServiceName)
	assert.Equal(t, "1.2.3", cfg.Version)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.True(t, cfg.OtelEnabled)
	assert.Equal(t, "collector:4318", cfg.OtelExporterEndpoint)
	assert.Equal(t, "http", cfg.OtelExporterProtocol)
	assert.Equal(t, 0.5, cfg.OtelSamplingRatio)
}

func TestDebugFollowsLevelAndEnvironment(t *testing.T) {
	assert.True(t, Config{LogLevel: "debug", Environment: "production"}.Debug())
	assert.True(t, Config{LogLevel: "info", Environment: "local"}.Debug())
	assert.False(t, Config{LogLevel: "warn", Environment: "staging"}.Debug())
}
