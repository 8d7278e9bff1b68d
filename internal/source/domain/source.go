package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	commerce "github.com/smallbiznis/storepulse/internal/commerce/domain"
)

type Kind string

const (
	KindStatic   Kind = "static"
	KindFlatFile Kind = "flat-file"
	KindRemote   Kind = "remote-api"
)

// Resource names one of the three canonical tables.
type Resource string

const (
	ResourceProducts  Resource = "products"
	ResourceOrders    Resource = "orders"
	ResourceCustomers Resource = "customers"

	// ResourceSource tags warnings about the source as a whole.
	ResourceSource Resource = "source"
)

var (
	ErrUnknownKind        = errors.New("unknown_source_kind")
	ErrUnknownPlatform    = errors.New("unknown_platform")
	ErrMissingCredentials = errors.New("missing_credentials")
	ErrResourceMissing    = errors.New("resource_missing")
	ErrMalformedResource  = errors.New("malformed_resource")
)

// Window bounds the order dates a request is interested in. A zero Start or
// End leaves that side open.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

type Request struct {
	Kind   Kind   `json:"kind"`
	Window Window `json:"window"`
}

// CacheKey identifies a request for snapshot caching.
func (r Request) CacheKey() string {
	return fmt.Sprintf("%s:%s:%s", r.Kind, formatDate(r.Window.Start), formatDate(r.Window.End))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return commerce.DateOf(t).Format(time.DateOnly)
}

// Warning reports a resource that degraded to an empty table.
type Warning struct {
	Resource Resource `json:"resource"`
	Message  string   `json:"message"`
}

func NewWarning(resource Resource, err error) Warning {
	return Warning{Resource: resource, Message: err.Error()}
}

func (w Warning) Error() string {
	return fmt.Sprintf("%s: %s", w.Resource, w.Message)
}

type Result struct {
	Tables   commerce.Tables `json:"tables"`
	Warnings []Warning       `json:"warnings"`
}

// Err joins all warnings into a single error, or nil when the load was clean.
func (r Result) Err() error {
	if len(r.Warnings) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Warnings))
	for _, w := range r.Warnings {
		errs = append(errs, w)
	}
	return errors.Join(errs...)
}

// Source loads the canonical tables. Load never fails outright: a resource
// that cannot be read becomes an empty table plus a warning.
type Source interface {
	Kind() Kind
	Load(ctx context.Context, req Request) Result
}

// FetchObserver receives one callback per resource fetch.
type FetchObserver interface {
	ObserveSourceFetch(sourceKind, resource string, duration time.Duration, err error)
}

type noopObserver struct{}

func (noopObserver) ObserveSourceFetch(string, string, time.Duration, error) {}

// NoopObserver discards fetch observations.
var NoopObserver FetchObserver = noopObserver{}
