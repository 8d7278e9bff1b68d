package flatfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	commerce "github.com/smallbiznis/storepulse/internal/commerce/domain"
)

// SeedReport lists which files Seed wrote and which it left alone.
type SeedReport struct {
	Written []string
	Skipped []string
}

// Seed writes the three snapshot files into dir. A file that already exists
// is never overwritten.
func Seed(dir string, tables commerce.Tables) (SeedReport, error) {
	report := SeedReport{}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return report, fmt.Errorf("create data dir: %w", err)
	}

	files := []struct {
		name string
		rows [][]string
	}{
		{name: ProductsFile, rows: productRows(tables.Products)},
		{name: OrdersFile, rows: orderRows(tables.Orders)},
		{name: CustomersFile, rows: customerRows(tables.Customers)},
	}

	for _, file := range files {
		path := filepath.Join(dir, file.name)
		written, err := writeIfAbsent(path, file.rows)
		if err != nil {
			return report, fmt.Errorf("seed %s: %w", file.name, err)
		}
		if written {
			report.Written = append(report.Written, file.name)
		} else {
			report.Skipped = append(report.Skipped, file.name)
		}
	}
	return report, nil
}

func writeIfAbsent(path string, rows [][]string) (bool, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, err
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return false, err
	}
	if err := f.Close(); err != nil {
		return false, err
	}
	return true, nil
}

func productRows(products []commerce.Product) [][]string {
	rows := [][]string{ProductsHeader}
	for _, p := range products {
		rows = append(rows, []string{
			p.ID,
			p.Title,
			p.Category,
			p.UnitPrice.String(),
			strconv.FormatInt(p.RecordedUnits, 10),
			p.RecordedRevenue.String(),
		})
	}
	return rows
}

func orderRows(orders []commerce.Order) [][]string {
	rows := [][]string{OrdersHeader}
	for _, o := range orders {
		for _, item := range o.LineItems {
			rows = append(rows, []string{
				o.OrderID,
				formatDate(o.PlacedAt),
				item.ProductTitle,
				strconv.FormatInt(item.Quantity, 10),
				item.UnitPrice.String(),
				item.LineAmount.String(),
			})
		}
	}
	return rows
}

func customerRows(customers []commerce.Customer) [][]string {
	rows := [][]string{CustomersHeader}
	for _, c := range customers {
		rows = append(rows, []string{
			c.ID,
			c.Name,
			c.Email,
			strconv.FormatInt(c.LifetimeOrderCount, 10),
			formatDate(c.FirstOrderAt),
		})
	}
	return rows
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.DateOnly)
}
