package remote

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	commerce "github.com/smallbiznis/storepulse/internal/commerce/domain"
	"github.com/smallbiznis/storepulse/internal/source/domain"
)

const DefaultDemoBaseURL = "https://dummyjson.com"

// Demo reads a public dummyjson-shaped API. Carts stand in for orders and
// carry no dates, so they are stamped with the load time.
type Demo struct {
	baseURL string
}

func NewDemo(baseURL string) *Demo {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultDemoBaseURL
	}
	return &Demo{baseURL: baseURL}
}

func (p *Demo) Name() string { return "demo" }

type demoProduct struct {
	ID       ID      `json:"id"`
	Title    *string `json:"title"`
	Category *string `json:"category"`
	Price    Number  `json:"price"`
}

type demoCart struct {
	ID       ID `json:"id"`
	Products []struct {
		Title    *string `json:"title"`
		Price    Number  `json:"price"`
		Quantity Number  `json:"quantity"`
	} `json:"products"`
}

type demoUser struct {
	ID        ID      `json:"id"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
}

func (p *Demo) get(ctx context.Context, f fetch, resource, path string, out any) error {
	return f.client.getJSON(ctx, getRequest{
		resource: resource,
		url:      p.baseURL + "/" + path,
		query:    url.Values{"limit": {strconv.Itoa(f.pageSize)}},
	}, out)
}

func (p *Demo) Products(ctx context.Context, f fetch) ([]commerce.Product, error) {
	var payload struct {
		Products []demoProduct `json:"products"`
	}
	if err := p.get(ctx, f, string(domain.ResourceProducts), "products", &payload); err != nil {
		return nil, err
	}
	out := make([]commerce.Product, 0, len(payload.Products))
	for _, raw := range payload.Products {
		out = append(out, commerce.Product{
			ID:        string(raw.ID),
			Title:     Defaults.String(raw.Title),
			Category:  Defaults.String(raw.Category),
			UnitPrice: Defaults.Money(raw.Price),
		})
	}
	return out, nil
}

func (p *Demo) Orders(ctx context.Context, f fetch) ([]commerce.Order, error) {
	var payload struct {
		Carts []demoCart `json:"carts"`
	}
	if err := p.get(ctx, f, string(domain.ResourceOrders), "carts", &payload); err != nil {
		return nil, err
	}
	out := make([]commerce.Order, 0, len(payload.Carts))
	for _, cart := range payload.Carts {
		items := make([]commerce.LineItem, 0, len(cart.Products))
		for _, li := range cart.Products {
			items = append(items, commerce.NewLineItem(
				Defaults.String(li.Title),
				Defaults.Count(li.Quantity),
				Defaults.Money(li.Price),
			))
		}
		out = append(out, commerce.Order{
			OrderID:   fmt.Sprintf("C%s", cart.ID),
			PlacedAt:  f.now,
			LineItems: items,
		})
	}
	return out, nil
}

func (p *Demo) Customers(ctx context.Context, f fetch) ([]commerce.Customer, error) {
	var payload struct {
		Users []demoUser `json:"users"`
	}
	if err := p.get(ctx, f, string(domain.ResourceCustomers), "users", &payload); err != nil {
		return nil, err
	}
	out := make([]commerce.Customer, 0, len(payload.Users))
	for _, raw := range payload.Users {
		out = append(out, commerce.Customer{
			ID:    string(raw.ID),
			Name:  joinName(raw.FirstName, raw.LastName),
			Email: Defaults.String(raw.Email),
		})
	}
	return out, nil
}
