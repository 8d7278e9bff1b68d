package flatfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	commerce "github.com/smallbiznis/storepulse/internal/commerce/domain"
	"github.com/smallbiznis/storepulse/internal/source/domain"
	"go.uber.org/zap"
)

const (
	ProductsFile  = "products.csv"
	OrdersFile    = "orders.csv"
	CustomersFile = "customers.csv"
)

var (
	ProductsHeader  = []string{"id", "title", "category", "price", "units_sold", "revenue"}
	OrdersHeader    = []string{"order_id", "date", "product", "quantity", "price", "amount"}
	CustomersHeader = []string{"id", "name", "email", "orders", "first_order"}
)

// Source reads the three canonical tables from CSV snapshot files in a
// single directory.
type Source struct {
	dir      string
	log      *zap.Logger
	observer domain.FetchObserver
}

func New(dir string, log *zap.Logger, observer domain.FetchObserver) *Source {
	if log == nil {
		log = zap.NewNop()
	}
	if observer == nil {
		observer = domain.NoopObserver
	}
	return &Source{dir: dir, log: log.Named("source.flatfile"), observer: observer}
}

func (s *Source) Kind() domain.Kind {
	return domain.KindFlatFile
}

func (s *Source) Load(ctx context.Context, _ domain.Request) domain.Result {
	res := domain.Result{Warnings: []domain.Warning{}}

	products, err := observe(s, domain.ResourceProducts, func() ([]commerce.Product, error) {
		return readTable(filepath.Join(s.dir, ProductsFile), parseProduct)
	})
	if err != nil {
		res.Warnings = append(res.Warnings, domain.NewWarning(domain.ResourceProducts, err))
	}
	res.Tables.Products = products

	orders, err := observe(s, domain.ResourceOrders, func() ([]commerce.Order, error) {
		return readOrders(filepath.Join(s.dir, OrdersFile))
	})
	if err != nil {
		res.Warnings = append(res.Warnings, domain.NewWarning(domain.ResourceOrders, err))
	}
	res.Tables.Orders = orders

	customers, err := observe(s, domain.ResourceCustomers, func() ([]commerce.Customer, error) {
		return readTable(filepath.Join(s.dir, CustomersFile), parseCustomer)
	})
	if err != nil {
		res.Warnings = append(res.Warnings, domain.NewWarning(domain.ResourceCustomers, err))
	}
	res.Tables.Customers = customers

	for _, w := range res.Warnings {
		s.log.Warn("flat file resource degraded",
			zap.String("resource", string(w.Resource)),
			zap.String("reason", w.Message),
		)
	}

	res.Tables = res.Tables.Normalize()
	return res
}

func observe[T any](s *Source, resource domain.Resource, read func() ([]T, error)) ([]T, error) {
	start := time.Now()
	rows, err := read()
	s.observer.ObserveSourceFetch(string(domain.KindFlatFile), string(resource), time.Since(start), err)
	if err != nil {
		return []T{}, err
	}
	return rows, nil
}

// row looks up columns by header name, case-insensitively.
type row struct {
	index  map[string]int
	values []string
}

func (r row) get(column string) string {
	i, ok := r.index[column]
	if !ok || i >= len(r.values) {
		return ""
	}
	return strings.TrimSpace(r.values[i])
}

func (r row) decimal(column string) decimal.Decimal {
	d, err := decimal.NewFromString(r.get(column))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (r row) int(column string) int64 {
	value := r.get(column)
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n
	}
	// tolerate "10.0" style exports
	if d, err := decimal.NewFromString(value); err == nil {
		return d.IntPart()
	}
	return 0
}

func (r row) date(column string) time.Time {
	return ParseDate(r.get(column))
}

// ParseDate accepts a calendar date or an RFC 3339 timestamp and returns
// zero time for anything else.
func ParseDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

func readRows(path string, fn func(row) error) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", domain.ErrResourceMissing, filepath.Base(path))
		}
		return err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %v", domain.ErrMalformedResource, err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrMalformedResource, err)
		}
		if err := fn(row{index: index, values: record}); err != nil {
			return err
		}
	}
}

func readTable[T any](path string, parse func(row) T) ([]T, error) {
	out := []T{}
	err := readRows(path, func(r row) error {
		out = append(out, parse(r))
		return nil
	})
	return out, err
}

func parseProduct(r row) commerce.Product {
	return commerce.Product{
		ID:              r.get("id"),
		Title:           r.get("title"),
		Category:        r.get("category"),
		UnitPrice:       nonNegative(r.decimal("price")),
		RecordedUnits:   max(r.int("units_sold"), 0),
		RecordedRevenue: r.decimal("revenue"),
	}
}

func parseCustomer(r row) commerce.Customer {
	return commerce.Customer{
		ID:                 r.get("id"),
		Name:               r.get("name"),
		Email:              r.get("email"),
		LifetimeOrderCount: max(r.int("orders"), 0),
		FirstOrderAt:       r.date("first_order"),
	}
}

// readOrders folds line item rows into orders keyed by order_id, keeping
// first-seen order.
func readOrders(path string) ([]commerce.Order, error) {
	orders := []commerce.Order{}
	positions := map[string]int{}
	err := readRows(path, func(r row) error {
		id := r.get("order_id")
		item := commerce.NewLineItem(r.get("product"), r.int("quantity"), r.decimal("price"))
		if pos, ok := positions[id]; ok {
			orders[pos].LineItems = append(orders[pos].LineItems, item)
			return nil
		}
		positions[id] = len(orders)
		orders = append(orders, commerce.Order{
			OrderID:   id,
			PlacedAt:  r.date("date"),
			LineItems: []commerce.LineItem{item},
		})
		return nil
	})
	return orders, err
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
