package remote

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/smallbiznis/storepulse/internal/clock"
	commerce "github.com/smallbiznis/storepulse/internal/commerce/domain"
	"github.com/smallbiznis/storepulse/internal/source/domain"
	"go.uber.org/zap"
)

const (
	DefaultTimeout  = 20 * time.Second
	DefaultPageSize = 250
)

// fetch carries everything a platform mapping needs for one load.
type fetch struct {
	client   *client
	window   domain.Window
	pageSize int
	now      time.Time
}

// Platform is one storefront shape. Each implementation owns the request
// layout and the field mapping into canonical records.
type Platform interface {
	Name() string
	Products(ctx context.Context, f fetch) ([]commerce.Product, error)
	Orders(ctx context.Context, f fetch) ([]commerce.Order, error)
	Customers(ctx context.Context, f fetch) ([]commerce.Customer, error)
}

type Options struct {
	Timeout    time.Duration
	PageSize   int
	HTTPClient *http.Client
	Clock      clock.Clock
	Logger     *zap.Logger
	Observer   domain.FetchObserver
}

// Source loads the three tables from a storefront API. Each resource is
// fetched concurrently under its own deadline.
type Source struct {
	platform Platform
	client   *client
	timeout  time.Duration
	pageSize int
	clock    clock.Clock
	log      *zap.Logger
	observer domain.FetchObserver
}

func New(platform Platform, opts Options) *Source {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Clock == nil {
		opts.Clock = clock.NewSystem()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Observer == nil {
		opts.Observer = domain.NoopObserver
	}
	return &Source{
		platform: platform,
		client:   newClient(opts.HTTPClient),
		timeout:  opts.Timeout,
		pageSize: opts.PageSize,
		clock:    opts.Clock,
		log:      opts.Logger.Named("source.remote").With(zap.String("platform", platform.Name())),
		observer: opts.Observer,
	}
}

func (s *Source) Kind() domain.Kind {
	return domain.KindRemote
}

// Platform names the storefront shape behind this source.
func (s *Source) Platform() string {
	return s.platform.Name()
}

func (s *Source) Load(ctx context.Context, req domain.Request) domain.Result {
	f := fetch{
		client:   s.client,
		window:   req.Window,
		pageSize: s.pageSize,
		now:      s.clock.Now(),
	}

	var (
		products  []commerce.Product
		orders    []commerce.Order
		customers []commerce.Customer
		errs      [3]error
		wg        sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		products, errs[0] = runFetch(ctx, s, domain.ResourceProducts, func(ctx context.Context) ([]commerce.Product, error) {
			return s.platform.Products(ctx, f)
		})
	}()
	go func() {
		defer wg.Done()
		orders, errs[1] = runFetch(ctx, s, domain.ResourceOrders, func(ctx context.Context) ([]commerce.Order, error) {
			return s.platform.Orders(ctx, f)
		})
	}()
	go func() {
		defer wg.Done()
		customers, errs[2] = runFetch(ctx, s, domain.ResourceCustomers, func(ctx context.Context) ([]commerce.Customer, error) {
			return s.platform.Customers(ctx, f)
		})
	}()
	wg.Wait()

	res := domain.Result{
		Tables:   commerce.Tables{Products: products, Orders: orders, Customers: customers}.Normalize(),
		Warnings: []domain.Warning{},
	}
	resources := [3]domain.Resource{domain.ResourceProducts, domain.ResourceOrders, domain.ResourceCustomers}
	for i, err := range errs {
		if err == nil {
			continue
		}
		res.Warnings = append(res.Warnings, domain.NewWarning(resources[i], err))
		s.log.Warn("remote resource degraded",
			zap.String("resource", string(resources[i])),
			zap.Error(err),
		)
	}
	return res
}

// runFetch bounds one resource fetch by the source timeout and turns a panic
// in a mapping function into an error.
func runFetch[T any](ctx context.Context, s *Source, resource domain.Resource, fn func(context.Context) ([]T, error)) (rows []T, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s mapping panicked: %v", domain.ErrMalformedResource, resource, r)
		}
		if err != nil {
			rows = []T{}
		}
		s.observer.ObserveSourceFetch(string(domain.KindRemote), string(resource), time.Since(start), err)
	}()

	rows, err = fn(ctx)
	return rows, err
}
