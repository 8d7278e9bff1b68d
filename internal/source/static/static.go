package static

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	commerce "github.com/smallbiznis/storepulse/internal/commerce/domain"
	"github.com/smallbiznis/storepulse/internal/source/domain"
)

// OrderQuantity is the quantity of every synthesized sample order.
const OrderQuantity = 10

type sampleProduct struct {
	id       string
	title    string
	category string
	price    int64
	units    int64
	revenue  int64
	date     string
}

var sampleProducts = []sampleProduct{
	{id: "101", title: "Smart Watch", category: "Wearables", price: 50, units: 120, revenue: 6000, date: "2025-08-01"},
	{id: "102", title: "Wireless Earbuds", category: "Audio", price: 50, units: 200, revenue: 10000, date: "2025-08-05"},
	{id: "103", title: "Bluetooth Speaker", category: "Audio", price: 30, units: 150, revenue: 4500, date: "2025-08-10"},
	{id: "104", title: "Fitness Tracker", category: "Wearables", price: 30, units: 90, revenue: 2700, date: "2025-08-20"},
	{id: "105", title: "Gaming Mouse", category: "Gaming", price: 50, units: 75, revenue: 3750, date: "2025-08-25"},
}

type sampleCustomer struct {
	id         string
	name       string
	email      string
	orders     int64
	firstOrder string
}

var sampleCustomers = []sampleCustomer{
	{id: "1", name: "Ali", email: "ali@example.com", orders: 5, firstOrder: "2025-06-01"},
	{id: "2", name: "Sara", email: "sara@example.com", orders: 2, firstOrder: "2025-07-10"},
	{id: "3", name: "Ahmed", email: "ahmed@example.com", orders: 1, firstOrder: "2025-08-12"},
}

// Source serves the built-in sample store.
type Source struct{}

func New() *Source {
	return &Source{}
}

func (s *Source) Kind() domain.Kind {
	return domain.KindStatic
}

// Load returns the sample tables. The window is applied by the aggregator.
func (s *Source) Load(ctx context.Context, _ domain.Request) domain.Result {
	return domain.Result{Tables: Tables(), Warnings: []domain.Warning{}}
}

// Tables builds a fresh copy of the sample tables.
func Tables() commerce.Tables {
	products := make([]commerce.Product, 0, len(sampleProducts))
	orders := make([]commerce.Order, 0)
	for _, p := range sampleProducts {
		price := decimal.NewFromInt(p.price)
		products = append(products, commerce.Product{
			ID:              p.id,
			Title:           p.title,
			Category:        p.category,
			UnitPrice:       price,
			RecordedUnits:   p.units,
			RecordedRevenue: decimal.NewFromInt(p.revenue),
		})

		placedAt := mustDate(p.date)
		for i := int64(0); i < p.units/OrderQuantity; i++ {
			orders = append(orders, commerce.Order{
				OrderID:   fmt.Sprintf("O%s-%d", p.id, i),
				PlacedAt:  placedAt,
				LineItems: []commerce.LineItem{commerce.NewLineItem(p.title, OrderQuantity, price)},
			})
		}
	}

	customers := make([]commerce.Customer, 0, len(sampleCustomers))
	for _, c := range sampleCustomers {
		customers = append(customers, commerce.Customer{
			ID:                 c.id,
			Name:               c.name,
			Email:              c.email,
			LifetimeOrderCount: c.orders,
			FirstOrderAt:       mustDate(c.firstOrder),
		})
	}

	return commerce.Tables{Products: products, Orders: orders, Customers: customers}
}

func mustDate(value string) time.Time {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		panic(err)
	}
	return t
}
