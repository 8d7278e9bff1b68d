package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/storepulse/internal/cache"
	"github.com/smallbiznis/storepulse/internal/clock"
	dashboarddomain "github.com/smallbiznis/storepulse/internal/dashboard/domain"
	obscontext "github.com/smallbiznis/storepulse/internal/observability/context"
	"github.com/smallbiznis/storepulse/internal/observability/logger"
	"github.com/smallbiznis/storepulse/internal/observability/metrics"
	sourcedomain "github.com/smallbiznis/storepulse/internal/source/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Source  sourcedomain.Source
	Cache   cache.SnapshotCache `optional:"true"`
	Clock   clock.Clock
	Log     *zap.Logger
	GenID   *snowflake.Node
	Metrics *metrics.PipelineMetrics `optional:"true"`
}

type Service struct {
	source  sourcedomain.Source
	cache   cache.SnapshotCache
	clock   clock.Clock
	log     *zap.Logger
	genID   *snowflake.Node
	metrics *metrics.PipelineMetrics
}

func NewService(p Params) dashboarddomain.Service {
	snapshots := p.Cache
	if snapshots == nil {
		snapshots = cache.None{}
	}
	return &Service{
		source:  p.Source,
		cache:   snapshots,
		clock:   p.Clock,
		log:     p.Log.Named("dashboard.service"),
		genID:   p.GenID,
		metrics: p.Metrics,
	}
}

// Build loads the tables for the filter window and aggregates them. The only
// error it returns is a rejected filter.
func (s *Service) Build(ctx context.Context, filter dashboarddomain.Filter) (dashboarddomain.Result, error) {
	if err := filter.Validate(); err != nil {
		return dashboarddomain.Result{}, err
	}

	start := time.Now()
	runID := s.genID.Generate().String()
	ctx = obscontext.WithRunID(ctx, runID)

	req := sourcedomain.Request{
		Kind:   s.source.Kind(),
		Window: sourcedomain.Window{Start: filter.Start, End: filter.End},
	}
	key := req.CacheKey()

	loaded, hit := s.cache.Get(ctx, key)
	if !hit {
		loaded = s.source.Load(ctx, req)
		s.cache.Set(ctx, key, loaded)
	}

	res := Aggregate(loaded.Tables, filter)
	res.RunID = runID
	res.SourceKind = req.Kind
	res.GeneratedAt = s.clock.Now()
	res.Warnings = loaded.Warnings
	if res.Warnings == nil {
		res.Warnings = []sourcedomain.Warning{}
	}

	elapsed := time.Since(start)
	s.metrics.ObservePipelineRun(string(req.Kind), elapsed)

	log := logger.WithContext(ctx, s.log)
	fields := []zap.Field{
		zap.String("source_kind", string(req.Kind)),
		zap.Bool("cache_hit", hit),
		zap.Int("products", len(res.Products)),
		zap.Int("total_orders", res.KPIs.TotalOrders),
		zap.Int64("total_units", res.KPIs.TotalUnits),
		zap.String("total_revenue", res.KPIs.TotalRevenue.StringFixed(2)),
		zap.Int("warnings", len(res.Warnings)),
		zap.Duration("elapsed", elapsed),
	}
	if err := loaded.Err(); err != nil {
		log.Warn("dashboard run completed with degraded source", append(fields, zap.Error(err))...)
	} else {
		log.Info("dashboard run completed", fields...)
	}

	return res, nil
}
