package remote

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	commerce "github.com/smallbiznis/storepulse/internal/commerce/domain"
	"github.com/smallbiznis/storepulse/internal/source/domain"
)

// WooCommerce reads the wc/v3 REST API with consumer key basic auth.
type WooCommerce struct {
	baseURL        string
	consumerKey    string
	consumerSecret string
}

func NewWooCommerce(store, consumerKey, consumerSecret string) (*WooCommerce, error) {
	store = strings.TrimSpace(store)
	consumerKey = strings.TrimSpace(consumerKey)
	consumerSecret = strings.TrimSpace(consumerSecret)
	if store == "" || consumerKey == "" || consumerSecret == "" {
		return nil, fmt.Errorf("%w: woocommerce store, consumer key and secret are required", domain.ErrMissingCredentials)
	}
	return &WooCommerce{
		baseURL:        storeBaseURL(store) + "/wp-json/wc/v3",
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
	}, nil
}

func (p *WooCommerce) Name() string { return "woocommerce" }

type wooProduct struct {
	ID           ID      `json:"id"`
	Name         *string `json:"name"`
	Price        Number  `json:"price"`
	RegularPrice Number  `json:"regular_price"`
	Categories   []struct {
		Name *string `json:"name"`
	} `json:"categories"`
	TotalSales Number `json:"total_sales"`
}

type wooLineItem struct {
	Name     *string `json:"name"`
	Quantity Number  `json:"quantity"`
	Price    Number  `json:"price"`
}

type wooOrder struct {
	ID             ID            `json:"id"`
	DateCreatedGMT Timestamp     `json:"date_created_gmt"`
	LineItems      []wooLineItem `json:"line_items"`
}

type wooCustomer struct {
	ID          ID      `json:"id"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Email       *string `json:"email"`
	OrdersCount Number  `json:"orders_count"`
}

func (p *WooCommerce) get(ctx context.Context, f fetch, resource domain.Resource, query url.Values, out any) error {
	return f.client.getJSON(ctx, getRequest{
		resource:  string(resource),
		url:       p.baseURL + "/" + string(resource),
		query:     query,
		basicUser: p.consumerKey,
		basicPass: p.consumerSecret,
	}, out)
}

func (p *WooCommerce) perPage(f fetch) string {
	// wc/v3 rejects per_page above 100
	return strconv.Itoa(min(f.pageSize, 100))
}

func (p *WooCommerce) Products(ctx context.Context, f fetch) ([]commerce.Product, error) {
	var payload []wooProduct
	if err := p.get(ctx, f, domain.ResourceProducts, url.Values{"per_page": {p.perPage(f)}}, &payload); err != nil {
		return nil, err
	}
	out := make([]commerce.Product, 0, len(payload))
	for _, raw := range payload {
		out = append(out, mapWooProduct(raw))
	}
	return out, nil
}

func mapWooProduct(raw wooProduct) commerce.Product {
	category := Defaults.Text
	if len(raw.Categories) > 0 {
		category = Defaults.String(raw.Categories[0].Name)
	}
	return commerce.Product{
		ID:            string(raw.ID),
		Title:         Defaults.String(raw.Name),
		Category:      category,
		UnitPrice:     Defaults.Money(FirstSet(raw.Price, raw.RegularPrice)),
		RecordedUnits: Defaults.Count(raw.TotalSales),
	}
}

func (p *WooCommerce) Orders(ctx context.Context, f fetch) ([]commerce.Order, error) {
	var payload []wooOrder
	query := url.Values{"per_page": {p.perPage(f)}}
	// bounds are UTC like date_created_gmt, not the site's local post date
	query.Set("dates_are_gmt", "true")
	if !f.window.Start.IsZero() {
		// after and before are exclusive
		query.Set("after", commerce.DateOf(f.window.Start).Add(-time.Second).Format(time.RFC3339))
	}
	if !f.window.End.IsZero() {
		query.Set("before", commerce.DateOf(f.window.End).Add(24*time.Hour).Format(time.RFC3339))
	}
	if err := p.get(ctx, f, domain.ResourceOrders, query, &payload); err != nil {
		return nil, err
	}
	out := make([]commerce.Order, 0, len(payload))
	for _, raw := range payload {
		out = append(out, mapWooOrder(raw))
	}
	return out, nil
}

func mapWooOrder(raw wooOrder) commerce.Order {
	items := make([]commerce.LineItem, 0, len(raw.LineItems))
	for _, li := range raw.LineItems {
		items = append(items, commerce.NewLineItem(
			Defaults.String(li.Name),
			Defaults.Count(li.Quantity),
			Defaults.Money(li.Price),
		))
	}
	return commerce.Order{
		OrderID:   string(raw.ID),
		PlacedAt:  Defaults.Timestamp(raw.DateCreatedGMT),
		LineItems: items,
	}
}

func (p *WooCommerce) Customers(ctx context.Context, f fetch) ([]commerce.Customer, error) {
	var payload []wooCustomer
	if err := p.get(ctx, f, domain.ResourceCustomers, url.Values{"per_page": {p.perPage(f)}}, &payload); err != nil {
		return nil, err
	}
	out := make([]commerce.Customer, 0, len(payload))
	for _, raw := range payload {
		out = append(out, commerce.Customer{
			ID:                 string(raw.ID),
			Name:               joinName(raw.FirstName, raw.LastName),
			Email:              Defaults.String(raw.Email),
			LifetimeOrderCount: Defaults.Count(raw.OrdersCount),
		})
	}
	return out, nil
}
