package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/smallbiznis/storepulse/internal/config"
	dashboarddomain "github.com/smallbiznis/storepulse/internal/dashboard/domain"
	"github.com/smallbiznis/storepulse/internal/insight/domain"
	"github.com/smallbiznis/storepulse/internal/observability/logger"
	"github.com/smallbiznis/storepulse/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const DefaultTimeout = 20 * time.Second

type Params struct {
	fx.In

	Config    config.Config
	Generator domain.Generator `optional:"true"`
	Log       *zap.Logger
	Metrics   *metrics.PipelineMetrics `optional:"true"`
}

// Requester makes exactly one bounded generator call per request and folds
// every failure into an unsuccessful Result.
type Requester struct {
	generator domain.Generator
	enabled   bool
	timeout   time.Duration
	log       *zap.Logger
	metrics   *metrics.PipelineMetrics
}

func NewRequester(p Params) *Requester {
	timeout := p.Config.Insight.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Requester{
		generator: p.Generator,
		enabled:   p.Config.Insight.Configured(),
		timeout:   timeout,
		log:       p.Log.Named("insight.requester"),
		metrics:   p.Metrics,
	}
}

// Request summarizes kpis and top through the generator. A non-positive
// timeout falls back to the configured one.
func (r *Requester) Request(ctx context.Context, kpis dashboarddomain.KpiSnapshot, top []dashboarddomain.ProductRow, timeout time.Duration) domain.Result {
	if !r.enabled || r.generator == nil {
		r.metrics.ObserveInsight(metrics.InsightOutcomeNotConfigured, 0)
		return domain.Result{Success: false, Text: domain.NotConfiguredMessage}
	}
	if timeout <= 0 {
		timeout = r.timeout
	}

	log := logger.WithContext(ctx, r.log)
	prompt := BuildPrompt(kpis, top)

	start := time.Now()
	text, err := r.generate(ctx, prompt, timeout)
	elapsed := time.Since(start)

	if err != nil {
		r.metrics.ObserveInsight(metrics.InsightOutcomeError, elapsed)
		log.Warn("insight generation failed", zap.Duration("elapsed", elapsed), zap.Error(err))
		return domain.Result{Success: false, Text: fmt.Sprintf("Gemini error: %v", err)}
	}

	r.metrics.ObserveInsight(metrics.InsightOutcomeGenerated, elapsed)
	log.Info("insight generated", zap.Duration("elapsed", elapsed), zap.Int("chars", len(text)))
	return domain.Result{Success: true, Text: text}
}

type completion struct {
	text string
	err  error
}

// generate runs the call in its own goroutine so a generator that ignores
// its context still cannot hold the caller past the deadline.
func (r *Requester) generate(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan completion, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- completion{err: fmt.Errorf("generator panicked: %v", rec)}
			}
		}()
		text, err := r.generator.Generate(ctx, prompt)
		done <- completion{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case c := <-done:
		if c.err != nil {
			return "", c.err
		}
		if strings.TrimSpace(c.text) == "" {
			return "", domain.ErrEmptyCompletion
		}
		return c.text, nil
	}
}
