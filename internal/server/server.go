package server

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/storepulse/internal/clock"
	"github.com/smallbiznis/storepulse/internal/config"
	dashboarddomain "github.com/smallbiznis/storepulse/internal/dashboard/domain"
	insightservice "github.com/smallbiznis/storepulse/internal/insight/service"
	"github.com/smallbiznis/storepulse/internal/observability"
	obsmiddleware "github.com/smallbiznis/storepulse/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/storepulse/internal/observability/metrics"
	obstracing "github.com/smallbiznis/storepulse/internal/observability/tracing"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(RunHTTP),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// RunHTTP serves the engine for the lifetime of the fx app.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, s *Server, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	clock        clock.Clock
	log          *zap.Logger
	dashboardSvc dashboarddomain.Service
	insights     *insightservice.Requester
	settings     *config.SettingsHolder
	rng          *rand.Rand
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Clock        clock.Clock
	Log          *zap.Logger
	DashboardSvc dashboarddomain.Service
	Insights     *insightservice.Requester
	Settings     *config.SettingsHolder

	// Rand samples fallback suggestions. Nil uses the global source.
	Rand *rand.Rand `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	settings := p.Settings
	if settings == nil {
		settings = config.NewStaticSettingsHolder(config.DefaultSettings())
	}
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		clock:        p.Clock,
		log:          p.Log.Named("http"),
		dashboardSvc: p.DashboardSvc,
		insights:     p.Insights,
		settings:     settings,
		rng:          p.Rand,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Dashboard --------
	api.GET("/dashboard", s.GetDashboard)
	api.GET("/dashboard/products.csv", s.ExportProductsCSV)
	api.GET("/dashboard/report.pdf", s.ExportReportPDF)

	// -------- Insights --------
	api.POST("/insights", s.GenerateInsights)

	// -------- Settings --------
	api.GET("/settings", s.GetSettings)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
