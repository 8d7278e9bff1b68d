package source

import (
	"context"

	"github.com/smallbiznis/storepulse/internal/clock"
	"github.com/smallbiznis/storepulse/internal/config"
	"github.com/smallbiznis/storepulse/internal/observability/metrics"
	"github.com/smallbiznis/storepulse/internal/source/domain"
	"github.com/smallbiznis/storepulse/internal/source/flatfile"
	"github.com/smallbiznis/storepulse/internal/source/static"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("source",
	fx.Provide(provideLoader),
	fx.Provide(func(l *Loader) domain.Source { return l }),
	fx.Invoke(registerSeed),
)

type Params struct {
	fx.In

	Config  config.Config
	Clock   clock.Clock
	Log     *zap.Logger
	Metrics *metrics.PipelineMetrics
}

func provideLoader(p Params) (*Loader, error) {
	return NewLoader(p.Config.Source, BuildOptions{
		Clock:    p.Clock,
		Logger:   p.Log,
		Observer: p.Metrics,
	})
}

// registerSeed writes the sample snapshot on first start of a flat-file
// deployment.
func registerSeed(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) {
	if domain.Kind(cfg.Source.Kind) != domain.KindFlatFile || !cfg.Source.SeedOnStart {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			report, err := flatfile.Seed(cfg.Source.DataDir, static.Tables())
			if err != nil {
				return err
			}
			log.Info("flat file snapshot checked",
				zap.String("data_dir", cfg.Source.DataDir),
				zap.Strings("written", report.Written),
				zap.Strings("kept", report.Skipped),
			)
			return nil
		},
	})
}
