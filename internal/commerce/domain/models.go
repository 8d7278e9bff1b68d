package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// NewCustomerMaxOrders is the lifetime order count at or below which a
// customer is counted as new.
const NewCustomerMaxOrders = 1

type Segment string

const (
	SegmentNew       Segment = "new"
	SegmentReturning Segment = "returning"
)

type Product struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Category  string          `json:"category,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`

	// RecordedUnits and RecordedRevenue are pre-aggregated values carried by
	// some sources. Rollups never read them.
	RecordedUnits   int64           `json:"recorded_units,omitempty"`
	RecordedRevenue decimal.Decimal `json:"recorded_revenue"`
}

type LineItem struct {
	ProductTitle string          `json:"product_title"`
	Quantity     int64           `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineAmount   decimal.Decimal `json:"line_amount"`
}

// NewLineItem builds a line item whose amount is always quantity * price.
// Negative quantities and prices are clamped to zero.
func NewLineItem(title string, quantity int64, unitPrice decimal.Decimal) LineItem {
	if quantity < 0 {
		quantity = 0
	}
	if unitPrice.IsNegative() {
		unitPrice = decimal.Zero
	}
	return LineItem{
		ProductTitle: title,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		LineAmount:   unitPrice.Mul(decimal.NewFromInt(quantity)),
	}
}

type Order struct {
	OrderID   string     `json:"order_id"`
	PlacedAt  time.Time  `json:"placed_at"`
	LineItems []LineItem `json:"line_items"`
}

// Total is the sum of the order's line amounts.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.LineItems {
		total = total.Add(item.LineAmount)
	}
	return total
}

type Customer struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	LifetimeOrderCount int64  `json:"lifetime_order_count"`

	// FirstOrderAt is zero when the source does not report it.
	FirstOrderAt time.Time `json:"first_order_at"`
}

func (c Customer) Segment() Segment {
	if c.LifetimeOrderCount <= NewCustomerMaxOrders {
		return SegmentNew
	}
	return SegmentReturning
}

// Tables is one full load of the three canonical tables.
type Tables struct {
	Products  []Product  `json:"products"`
	Orders    []Order    `json:"orders"`
	Customers []Customer `json:"customers"`
}

// Normalize replaces nil tables with empty ones without touching the
// receiver's backing arrays.
func (t Tables) Normalize() Tables {
	if t.Products == nil {
		t.Products = []Product{}
	}
	if t.Orders == nil {
		t.Orders = []Order{}
	}
	if t.Customers == nil {
		t.Customers = []Customer{}
	}
	cloned := false
	for i := range t.Orders {
		if t.Orders[i].LineItems != nil {
			continue
		}
		if !cloned {
			t.Orders = slices.Clone(t.Orders)
			cloned = true
		}
		t.Orders[i].LineItems = []LineItem{}
	}
	return t
}

// DateOf truncates a timestamp to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
