package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	dashboarddomain "github.com/smallbiznis/storepulse/internal/dashboard/domain"
)

var ProductsCSVHeader = []string{"id", "title", "category", "price", "units_sold", "revenue"}

// WriteProductsCSV writes the joined product table in dashboard order.
func WriteProductsCSV(w io.Writer, rows []dashboarddomain.ProductRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ProductsCSVHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write([]string{
			row.ID,
			row.Title,
			row.Category,
			row.UnitPrice.StringFixed(2),
			strconv.FormatInt(row.UnitsSold, 10),
			row.Revenue.StringFixed(2),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileName builds a download name such as "demo-store-products-report.csv".
// An empty label yields "products-report.csv".
func FileName(storeLabel, kind, ext string) string {
	parts := []string{}
	if s := slug.Make(strings.TrimSpace(storeLabel)); s != "" {
		parts = append(parts, s)
	}
	parts = append(parts, slug.Make(kind))
	return strings.Join(parts, "-") + "." + strings.TrimPrefix(ext, ".")
}
