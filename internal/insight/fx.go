package insight

import (
	"context"

	"github.com/smallbiznis/storepulse/internal/config"
	"github.com/smallbiznis/storepulse/internal/insight/domain"
	"github.com/smallbiznis/storepulse/internal/insight/gemini"
	"github.com/smallbiznis/storepulse/internal/insight/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("insight",
	fx.Provide(provideGenerator),
	fx.Provide(service.NewRequester),
)

type clientFactory func(ctx context.Context, apiKey, model string) (*gemini.Client, error)

func provideGenerator(cfg config.Config, log *zap.Logger) domain.Generator {
	return buildGenerator(cfg, log, gemini.New)
}

// buildGenerator returns a nil generator when Gemini is disabled, has no key
// or cannot be constructed; the requester then answers unsuccessfully.
func buildGenerator(cfg config.Config, log *zap.Logger, newClient clientFactory) domain.Generator {
	if !cfg.Insight.Configured() {
		log.Info("insight generator disabled", zap.Bool("enabled", cfg.Insight.Enabled))
		return nil
	}
	client, err := newClient(context.Background(), cfg.Insight.APIKey, cfg.Insight.Model)
	if err != nil {
		log.Warn("insight generator unavailable, serving suggestions", zap.Error(err))
		return nil
	}
	log.Info("insight generator ready", zap.String("generator", client.Name()))
	return client
}
