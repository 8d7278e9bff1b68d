package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	commerce "github.com/smallbiznis/storepulse/internal/commerce/domain"
	"github.com/smallbiznis/storepulse/internal/source/domain"
)

const DefaultShopifyAPIVersion = "2024-07"

// Shopify reads the Admin REST API of a single store.
type Shopify struct {
	baseURL     string
	accessToken string
}

// NewShopify builds the platform for store, which is either a bare shop
// domain (mystore.myshopify.com) or a full base URL.
func NewShopify(store, accessToken, apiVersion string) (*Shopify, error) {
	store = strings.TrimSpace(store)
	accessToken = strings.TrimSpace(accessToken)
	if store == "" || accessToken == "" {
		return nil, fmt.Errorf("%w: shopify store and access token are required", domain.ErrMissingCredentials)
	}
	apiVersion = strings.TrimSpace(apiVersion)
	if apiVersion == "" {
		apiVersion = DefaultShopifyAPIVersion
	}
	return &Shopify{
		baseURL:     storeBaseURL(store) + "/admin/api/" + apiVersion,
		accessToken: accessToken,
	}, nil
}

func (p *Shopify) Name() string { return "shopify" }

type shopifyProduct struct {
	ID          ID      `json:"id"`
	Title       *string `json:"title"`
	ProductType *string `json:"product_type"`
	Variants    []struct {
		Price Number `json:"price"`
	} `json:"variants"`
}

type shopifyLineItem struct {
	Title    *string `json:"title"`
	Quantity Number  `json:"quantity"`
	Price    Number  `json:"price"`
}

type shopifyOrder struct {
	ID        ID                `json:"id"`
	CreatedAt Timestamp         `json:"created_at"`
	LineItems []shopifyLineItem `json:"line_items"`
}

type shopifyCustomer struct {
	ID          ID      `json:"id"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Email       *string `json:"email"`
	OrdersCount Number  `json:"orders_count"`
}

func (p *Shopify) get(ctx context.Context, f fetch, resource domain.Resource, query url.Values, out any) error {
	header := http.Header{}
	header.Set("X-Shopify-Access-Token", p.accessToken)
	return f.client.getJSON(ctx, getRequest{
		resource: string(resource),
		url:      p.baseURL + "/" + string(resource) + ".json",
		query:    query,
		header:   header,
	}, out)
}

func (p *Shopify) Products(ctx context.Context, f fetch) ([]commerce.Product, error) {
	var payload struct {
		Products []shopifyProduct `json:"products"`
	}
	query := url.Values{"limit": {strconv.Itoa(f.pageSize)}}
	if err := p.get(ctx, f, domain.ResourceProducts, query, &payload); err != nil {
		return nil, err
	}
	out := make([]commerce.Product, 0, len(payload.Products))
	for _, raw := range payload.Products {
		out = append(out, mapShopifyProduct(raw))
	}
	return out, nil
}

func mapShopifyProduct(raw shopifyProduct) commerce.Product {
	var price Number
	if len(raw.Variants) > 0 {
		price = raw.Variants[0].Price
	}
	return commerce.Product{
		ID:        string(raw.ID),
		Title:     Defaults.String(raw.Title),
		Category:  Defaults.String(raw.ProductType),
		UnitPrice: Defaults.Money(price),
	}
}

func (p *Shopify) Orders(ctx context.Context, f fetch) ([]commerce.Order, error) {
	var payload struct {
		Orders []shopifyOrder `json:"orders"`
	}
	query := url.Values{
		"status": {"any"},
		"limit":  {strconv.Itoa(f.pageSize)},
	}
	if !f.window.Start.IsZero() {
		query.Set("created_at_min", commerce.DateOf(f.window.Start).Format(time.RFC3339))
	}
	if !f.window.End.IsZero() {
		// inclusive end date
		query.Set("created_at_max", commerce.DateOf(f.window.End).Add(24*time.Hour-time.Second).Format(time.RFC3339))
	}
	if err := p.get(ctx, f, domain.ResourceOrders, query, &payload); err != nil {
		return nil, err
	}
	out := make([]commerce.Order, 0, len(payload.Orders))
	for _, raw := range payload.Orders {
		out = append(out, mapShopifyOrder(raw))
	}
	return out, nil
}

func mapShopifyOrder(raw shopifyOrder) commerce.Order {
	items := make([]commerce.LineItem, 0, len(raw.LineItems))
	for _, li := range raw.LineItems {
		items = append(items, commerce.NewLineItem(
			Defaults.String(li.Title),
			Defaults.Count(li.Quantity),
			Defaults.Money(li.Price),
		))
	}
	return commerce.Order{
		OrderID:   string(raw.ID),
		PlacedAt:  Defaults.Timestamp(raw.CreatedAt),
		LineItems: items,
	}
}

func (p *Shopify) Customers(ctx context.Context, f fetch) ([]commerce.Customer, error) {
	var payload struct {
		Customers []shopifyCustomer `json:"customers"`
	}
	query := url.Values{"limit": {strconv.Itoa(f.pageSize)}}
	if err := p.get(ctx, f, domain.ResourceCustomers, query, &payload); err != nil {
		return nil, err
	}
	out := make([]commerce.Customer, 0, len(payload.Customers))
	for _, raw := range payload.Customers {
		out = append(out, commerce.Customer{
			ID:                 string(raw.ID),
			Name:               joinName(raw.FirstName, raw.LastName),
			Email:              Defaults.String(raw.Email),
			LifetimeOrderCount: Defaults.Count(raw.OrdersCount),
		})
	}
	return out, nil
}

func storeBaseURL(store string) string {
	store = strings.TrimRight(strings.TrimSpace(store), "/")
	if strings.HasPrefix(store, "http://") || strings.HasPrefix(store, "https://") {
		return store
	}
	return "https://" + store
}
