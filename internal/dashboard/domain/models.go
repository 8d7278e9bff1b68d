package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	sourcedomain "github.com/smallbiznis/storepulse/internal/source/domain"
)

const DefaultWindowDays = 30

var (
	ErrInvalidDateRange = errors.New("invalid_date_range")
	ErrInvalidTopN      = errors.New("invalid_top_n")
)

// Filter selects the order window, the category set and the top-N cut.
// Start and End are inclusive calendar dates. A zero bound is open.
type Filter struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Categories []string  `json:"categories"`
	TopN       int       `json:"top_n"`
}

func (f Filter) Validate() error {
	if !f.Start.IsZero() && !f.End.IsZero() && f.Start.After(f.End) {
		return ErrInvalidDateRange
	}
	if f.TopN < 0 {
		return ErrInvalidTopN
	}
	return nil
}

// ProductRow is a product joined with its rollup for the window.
type ProductRow struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Category  string          `json:"category"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	UnitsSold int64           `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type DailyRevenue struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
}

type KpiSnapshot struct {
	TotalRevenue           decimal.Decimal `json:"total_revenue"`
	TotalOrders            int             `json:"total_orders"`
	TotalUnits             int64           `json:"total_units"`
	NewCustomerCount       int             `json:"new_customer_count"`
	ReturningCustomerCount int             `json:"returning_customer_count"`
}

type Result struct {
	RunID       string                 `json:"run_id,omitempty"`
	SourceKind  sourcedomain.Kind      `json:"source_kind,omitempty"`
	GeneratedAt time.Time              `json:"generated_at"`
	Filter      Filter                 `json:"filter"`
	Products    []ProductRow           `json:"products"`
	Top         []ProductRow           `json:"top"`
	Daily       []DailyRevenue         `json:"daily"`
	KPIs        KpiSnapshot            `json:"kpis"`
	Warnings    []sourcedomain.Warning `json:"warnings"`
}

type Service interface {
	Build(ctx context.Context, filter Filter) (Result, error)
}
