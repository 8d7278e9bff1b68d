package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/storepulse/internal/clock"
	"github.com/smallbiznis/storepulse/internal/source/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu    sync.Mutex
	calls map[string]error
}

func (r *recordingObserver) ObserveSourceFetch(kind, resource string, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = map[string]error{}
	}
	r.calls[resource] = err
}

func newShopifyServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for path, h := range handlers {
		mux.HandleFunc(path, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestShopifyMapsAllResources(t *testing.T) {
	var ordersQuery string
	srv := newShopifyServer(t, map[string]http.HandlerFunc{
		"/admin/api/2024-07/products.json": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "tok", r.Header.Get("X-Shopify-Access-Token"))
			w.Write([]byte(`{"products":[{"id":11,"title":"Smart Watch","product_type":"Wearables","variants":[{"price":"49.90"}]},{"id":12,"title":"Bare"}]}`))
		},
		"/admin/api/2024-07/orders.json": func(w http.ResponseWriter, r *http.Request) {
			ordersQuery = r.URL.RawQuery
			w.Write([]byte(`{"orders":[{"id":900,"created_at":"2025-08-02T10:00:00-04:00","line_items":[{"title":"Smart Watch","quantity":2,"price":"49.90"}]}]}`))
		},
		"/admin/api/2024-07/customers.json": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"customers":[{"id":5,"first_name":"Sara","last_name":"K","email":"sara@example.com","orders_count":2}]}`))
		},
	})

	platform, err := NewShopify(srv.URL, "tok", "")
	require.NoError(t, err)

	src := New(platform, Options{PageSize: 50, Clock: clock.NewFakeClock(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))})
	res := src.Load(context.Background(), domain.Request{
		Kind: domain.KindRemote,
		Window: domain.Window{
			Start: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC),
		},
	})

	assert.Empty(t, res.Warnings)
	require.Len(t, res.Tables.Products, 2)
	assert.Equal(t, "11", res.Tables.Products[0].ID)
	assert.Equal(t, "Wearables", res.Tables.Products[0].Category)
	assert.True(t, res.Tables.Products[0].UnitPrice.Equal(decimal.RequireFromString("49.9")))
	assert.True(t, res.Tables.Products[1].UnitPrice.IsZero())
	assert.Equal(t, "", res.Tables.Products[1].Category)

	require.Len(t, res.Tables.Orders, 1)
	order := res.Tables.Orders[0]
	assert.Equal(t, "900", order.OrderID)
	assert.Equal(t, time.Date(2025, 8, 2, 14, 0, 0, 0, time.UTC), order.PlacedAt)
	assert.True(t, order.Total().Equal(decimal.RequireFromString("99.8")))

	require.Len(t, res.Tables.Customers, 1)
	assert.Equal(t, "Sara K", res.Tables.Customers[0].Name)
	assert.Equal(t, int64(2), res.Tables.Customers[0].LifetimeOrderCount)

	assert.Contains(t, ordersQuery, "status=any")
	assert.Contains(t, ordersQuery, "limit=50")
	assert.Contains(t, ordersQuery, "created_at_min=2025-08-01T00%3A00%3A00Z")
	assert.Contains(t, ordersQuery, "created_at_max=2025-08-31T23%3A59%3A59Z")
}

func TestFailingResourceDegradesIndependently(t *testing.T) {
	srv := newShopifyServer(t, map[string]http.HandlerFunc{
		"/admin/api/2024-07/products.json": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"products":[{"id":1,"title":"Mug","variants":[{"price":"10"}]}]}`))
		},
		"/admin/api/2024-07/orders.json": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"orders":[{"id":2,"created_at":"2025-08-02T10:00:00Z","line_items":[{"title":"Mug","quantity":1,"price":"10"}]}]}`))
		},
		"/admin/api/2024-07/customers.json": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"errors":"forbidden"}`, http.StatusForbidden)
		},
	})

	platform, err := NewShopify(srv.URL, "tok", "")
	require.NoError(t, err)
	obs := &recordingObserver{}
	res := New(platform, Options{Observer: obs}).Load(context.Background(), domain.Request{Kind: domain.KindRemote})

	assert.Len(t, res.Tables.Products, 1)
	assert.Len(t, res.Tables.Orders, 1)
	assert.NotNil(t, res.Tables.Customers)
	assert.Empty(t, res.Tables.Customers)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, domain.ResourceCustomers, res.Warnings[0].Resource)
	assert.Contains(t, res.Warnings[0].Message, "403")

	require.Len(t, obs.calls, 3)
	assert.NoError(t, obs.calls["products"])
	var statusErr *StatusError
	assert.ErrorAs(t, obs.calls["customers"], &statusErr)
}

func TestNetworkFailureNeverEscapes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	res := New(NewDemo(base), Options{Timeout: time.Second}).Load(context.Background(), domain.Request{})
	assert.Len(t, res.Warnings, 3)
	assert.NotNil(t, res.Tables.Products)
	assert.NotNil(t, res.Tables.Orders)
	assert.NotNil(t, res.Tables.Customers)
}

func TestSlowResourceHitsTimeout(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"products":[{"id":1,"title":"Mug","price":3}]}`))
	})
	mux.HandleFunc("/carts", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"users":[]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	res := New(NewDemo(srv.URL), Options{Timeout: 50 * time.Millisecond}).Load(context.Background(), domain.Request{})
	assert.Len(t, res.Tables.Products, 1)
	assert.Empty(t, res.Tables.Orders)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, domain.ResourceOrders, res.Warnings[0].Resource)
}

func TestWooCommerceMapping(t *testing.T) {
	var ordersQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("/wp-json/wc/v3/products", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "ck", user)
		assert.Equal(t, "cs", pass)
		w.Write([]byte(`[{"id":7,"name":"Lamp","price":"","regular_price":"25.00","categories":[{"name":"Home"},{"name":"Sale"}]},{"id":8,"name":"Cord","price":"4"}]`))
	})
	mux.HandleFunc("/wp-json/wc/v3/orders", func(w http.ResponseWriter, r *http.Request) {
		ordersQuery = r.URL.RawQuery
		w.Write([]byte(`[{"id":31,"date_created_gmt":"2025-08-03T08:15:00","line_items":[{"name":"Lamp","quantity":3,"price":25}]}]`))
	})
	mux.HandleFunc("/wp-json/wc/v3/customers", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":3,"first_name":"Ali","email":"ali@example.com"}]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	platform, err := NewWooCommerce(srv.URL, "ck", "cs")
	require.NoError(t, err)
	res := New(platform, Options{PageSize: 500}).Load(context.Background(), domain.Request{
		Window: domain.Window{Start: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)},
	})

	assert.Empty(t, res.Warnings)
	require.Len(t, res.Tables.Products, 2)
	assert.True(t, res.Tables.Products[0].UnitPrice.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, "Home", res.Tables.Products[0].Category)
	assert.True(t, res.Tables.Products[1].UnitPrice.Equal(decimal.NewFromInt(4)))

	require.Len(t, res.Tables.Orders, 1)
	assert.Equal(t, time.Date(2025, 8, 3, 8, 15, 0, 0, time.UTC), res.Tables.Orders[0].PlacedAt)
	assert.True(t, res.Tables.Orders[0].Total().Equal(decimal.NewFromInt(75)))

	require.Len(t, res.Tables.Customers, 1)
	assert.Equal(t, "Ali", res.Tables.Customers[0].Name)
	assert.Equal(t, int64(0), res.Tables.Customers[0].LifetimeOrderCount)

	assert.Contains(t, ordersQuery, "per_page=100")
	assert.Contains(t, ordersQuery, "after=2025-07-31T23%3A59%3A59Z")
	assert.Contains(t, ordersQuery, "dates_are_gmt=true")
	assert.Equal(t, "woocommerce", New(platform, Options{}).Platform())
	assert.NotContains(t, ordersQuery, "before=")
}

func TestDemoCartsStampedWithLoadTime(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"products":[{"id":1,"title":"Essence Mascara","category":"beauty","price":9.99}]}`))
	})
	mux.HandleFunc("/carts", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"carts":[{"id":4,"products":[{"title":"Essence Mascara","price":9.99,"quantity":2}]}]}`))
	})
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"users":[{"id":1,"firstName":"Emily","lastName":"Johnson","email":"emily@x.dummyjson.com"}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	now := time.Date(2025, 9, 14, 12, 0, 0, 0, time.UTC)
	res := New(NewDemo(srv.URL+"/"), Options{PageSize: 5, Clock: clock.NewFakeClock(now)}).Load(context.Background(), domain.Request{})

	assert.Empty(t, res.Warnings)
	require.Len(t, res.Tables.Orders, 1)
	assert.Equal(t, "C4", res.Tables.Orders[0].OrderID)
	assert.Equal(t, now, res.Tables.Orders[0].PlacedAt)
	assert.True(t, res.Tables.Orders[0].Total().Equal(decimal.RequireFromString("19.98")))
	assert.Equal(t, "Emily Johnson", res.Tables.Customers[0].Name)
}

func TestPlatformConstructorsRequireCredentials(t *testing.T) {
	_, err := NewShopify("", "tok", "")
	assert.ErrorIs(t, err, domain.ErrMissingCredentials)
	_, err = NewWooCommerce("shop.example", "ck", "")
	assert.ErrorIs(t, err, domain.ErrMissingCredentials)
}

func TestGetJSONBoundsResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"products":[{"id":1,"title":"a very long product title"}]}`))
	}))
	t.Cleanup(srv.Close)

	var out map[string]any
	c := newClient(nil)
	require.NoError(t, c.getJSON(context.Background(), getRequest{resource: "products", url: srv.URL}, &out))

	c.maxBody = 16
	err := c.getJSON(context.Background(), getRequest{resource: "products", url: srv.URL}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode products")
}
