package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/storepulse/internal/config"
	dashboarddomain "github.com/smallbiznis/storepulse/internal/dashboard/domain"
	"github.com/smallbiznis/storepulse/internal/insight/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeGenerator struct {
	text   string
	err    error
	block  bool
	panics bool

	mu      sync.Mutex
	prompts []string
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.panics {
		panic("boom")
	}
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.text, f.err
}

func newRequester(gen domain.Generator, enabled bool) *Requester {
	cfg := config.Config{Insight: config.InsightConfig{Enabled: enabled, APIKey: "key", Timeout: time.Second}}
	return NewRequester(Params{Config: cfg, Generator: gen, Log: zap.NewNop()})
}

var sampleKPIs = dashboarddomain.KpiSnapshot{
	TotalRevenue: decimal.NewFromInt(26700),
	TotalOrders:  63,
	TotalUnits:   635,
}

var sampleTop = []dashboarddomain.ProductRow{
	{Title: "Wireless Earbuds", UnitsSold: 200},
	{Title: "Bluetooth Speaker", UnitsSold: 150},
}

func TestBuildPrompt(t *testing.T) {
	assert.Equal(t,
		"Revenue=26700, Orders=63, Units=635. Top=[Wireless Earbuds:200, Bluetooth Speaker:150]. Provide 2 quick insights and 2 actions.",
		BuildPrompt(sampleKPIs, sampleTop),
	)
	assert.Equal(t,
		"Revenue=0, Orders=0, Units=0. Top=[]. Provide 2 quick insights and 2 actions.",
		BuildPrompt(dashboarddomain.KpiSnapshot{}, nil),
	)
}

func TestRequestNotConfigured(t *testing.T) {
	gen := &fakeGenerator{text: "unused"}

	res := newRequester(gen, false).Request(context.Background(), sampleKPIs, sampleTop, 0)
	assert.Equal(t, domain.Result{Success: false, Text: "Gemini not configured — showing suggestions."}, res)
	assert.Equal(t, 0, gen.calls())

	res = newRequester(nil, true).Request(context.Background(), sampleKPIs, sampleTop, 0)
	assert.Equal(t, domain.NotConfiguredMessage, res.Text)
	assert.False(t, res.Success)
}

func TestRequestSuccess(t *testing.T) {
	gen := &fakeGenerator{text: "Earbuds lead sales."}
	res := newRequester(gen, true).Request(context.Background(), sampleKPIs, sampleTop, time.Second)

	assert.True(t, res.Success)
	assert.Equal(t, "Earbuds lead sales.", res.Text)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Top=[Wireless Earbuds:200")
}

func TestRequestFailuresNeverRetry(t *testing.T) {
	cases := []struct {
		name string
		gen  *fakeGenerator
		want string
	}{
		{name: "error", gen: &fakeGenerator{err: errors.New("quota exceeded")}, want: "Gemini error: quota exceeded"},
		{name: "empty", gen: &fakeGenerator{text: "   "}, want: "Gemini error: empty completion"},
		{name: "timeout", gen: &fakeGenerator{block: true}, want: "Gemini error: context deadline exceeded"},
		{name: "panic", gen: &fakeGenerator{panics: true}, want: "Gemini error: generator panicked: boom"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := newRequester(tc.gen, true).Request(context.Background(), sampleKPIs, sampleTop, 30*time.Millisecond)
			assert.False(t, res.Success)
			assert.Equal(t, tc.want, res.Text)
			assert.Equal(t, 1, tc.gen.calls())
		})
	}
}

func TestPickSuggestions(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	picked := PickSuggestions(rng, DefaultSuggestionCount)
	require.Len(t, picked, 3)
	seen := map[string]bool{}
	for _, s := range picked {
		assert.Contains(t, Suggestions(), s)
		assert.False(t, seen[s], "duplicate suggestion %q", s)
		seen[s] = true
	}

	assert.Len(t, PickSuggestions(rng, 10), 4)
	assert.Empty(t, PickSuggestions(rng, -1))
	assert.Len(t, PickSuggestions(nil, 2), 2)
}
