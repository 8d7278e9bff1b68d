package insight

import (
	"context"
	"errors"
	"testing"

	"github.com/smallbiznis/storepulse/internal/config"
	dashboarddomain "github.com/smallbiznis/storepulse/internal/dashboard/domain"
	"github.com/smallbiznis/storepulse/internal/insight/gemini"
	"github.com/smallbiznis/storepulse/internal/insight/service"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func enabledConfig() config.Config {
	return config.Config{Insight: config.InsightConfig{Enabled: true, APIKey: "key"}}
}

func TestBuildGeneratorDisabled(t *testing.T) {
	called := false
	gen := buildGenerator(config.Config{}, zap.NewNop(), func(context.Context, string, string) (*gemini.Client, error) {
		called = true
		return nil, nil
	})
	assert.Nil(t, gen)
	assert.False(t, called)
}

func TestBuildGeneratorFailureIsNotFatal(t *testing.T) {
	cfg := enabledConfig()
	gen := buildGenerator(cfg, zap.NewNop(), func(context.Context, string, string) (*gemini.Client, error) {
		return nil, errors.New("backend unavailable")
	})
	assert.Nil(t, gen)

	requester := service.NewRequester(service.Params{Config: cfg, Generator: gen, Log: zap.NewNop()})
	res := requester.Request(context.Background(), dashboarddomain.KpiSnapshot{}, nil, 0)
	assert.False(t, res.Success)
}
