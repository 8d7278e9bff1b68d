package service

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	commerce "github.com/smallbiznis/storepulse/internal/commerce/domain"
	dashboarddomain "github.com/smallbiznis/storepulse/internal/dashboard/domain"
)

// Rollup is the per-title sum over exploded line items.
type Rollup struct {
	Title     string
	UnitsSold int64
	Revenue   decimal.Decimal
}

// Aggregate runs the full pipeline over one load. It never mutates tables.
func Aggregate(tables commerce.Tables, filter dashboarddomain.Filter) dashboarddomain.Result {
	tables = tables.Normalize()

	orders := FilterOrders(tables.Orders, filter.Start, filter.End)
	rows := JoinProducts(tables.Products, RollupByTitle(orders))
	rows = FilterCategories(rows, filter.Categories)
	rows = SortByUnits(rows)

	topN := min(max(filter.TopN, 0), len(rows))
	top := slices.Clone(rows[:topN])

	return dashboarddomain.Result{
		Filter:   filter,
		Products: rows,
		Top:      top,
		Daily:    DailySeries(orders),
		KPIs:     ComputeKPIs(tables, orders, rows),
	}
}

// FilterOrders keeps orders whose UTC calendar date falls in [start, end].
// A zero bound is open; zero PlacedAt is outside every bounded window.
func FilterOrders(orders []commerce.Order, start, end time.Time) []commerce.Order {
	out := make([]commerce.Order, 0, len(orders))
	var startDay, endDay time.Time
	if !start.IsZero() {
		startDay = commerce.DateOf(start)
	}
	if !end.IsZero() {
		endDay = commerce.DateOf(end)
	}
	for _, o := range orders {
		day := commerce.DateOf(o.PlacedAt)
		if (!start.IsZero() || !end.IsZero()) && o.PlacedAt.IsZero() {
			continue
		}
		if !start.IsZero() && day.Before(startDay) {
			continue
		}
		if !end.IsZero() && day.After(endDay) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// RollupByTitle groups exploded line items by product title in first-seen
// order.
func RollupByTitle(orders []commerce.Order) []Rollup {
	out := []Rollup{}
	index := map[string]int{}
	for _, o := range orders {
		for _, item := range o.LineItems {
			i, ok := index[item.ProductTitle]
			if !ok {
				i = len(out)
				index[item.ProductTitle] = i
				out = append(out, Rollup{Title: item.ProductTitle, Revenue: decimal.Zero})
			}
			out[i].UnitsSold += item.Quantity
			out[i].Revenue = out[i].Revenue.Add(item.LineAmount)
		}
	}
	return out
}

// JoinProducts left joins rollups onto products by title. Every product
// appears exactly once and products without sales get zeros.
func JoinProducts(products []commerce.Product, rollups []Rollup) []dashboarddomain.ProductRow {
	byTitle := make(map[string]Rollup, len(rollups))
	for _, r := range rollups {
		byTitle[r.Title] = r
	}
	out := make([]dashboarddomain.ProductRow, 0, len(products))
	for _, p := range products {
		row := dashboarddomain.ProductRow{
			ID:        p.ID,
			Title:     p.Title,
			Category:  p.Category,
			UnitPrice: p.UnitPrice,
			Revenue:   decimal.Zero,
		}
		if r, ok := byTitle[p.Title]; ok {
			row.UnitsSold = r.UnitsSold
			row.Revenue = r.Revenue
		}
		out = append(out, row)
	}
	return out
}

// FilterCategories keeps rows in one of categories. An empty set keeps all.
func FilterCategories(rows []dashboarddomain.ProductRow, categories []string) []dashboarddomain.ProductRow {
	if len(categories) == 0 {
		return slices.Clone(rows)
	}
	allowed := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		allowed[c] = struct{}{}
	}
	out := make([]dashboarddomain.ProductRow, 0, len(rows))
	for _, r := range rows {
		if _, ok := allowed[r.Category]; ok {
			out = append(out, r)
		}
	}
	return out
}

// SortByUnits returns rows stable-sorted by units sold, highest first.
func SortByUnits(rows []dashboarddomain.ProductRow) []dashboarddomain.ProductRow {
	out := slices.Clone(rows)
	if out == nil {
		out = []dashboarddomain.ProductRow{}
	}
	slices.SortStableFunc(out, func(a, b dashboarddomain.ProductRow) int {
		return cmp.Compare(b.UnitsSold, a.UnitsSold)
	})
	return out
}

// DailySeries sums line amounts per UTC calendar date, ascending, for dates
// with at least one order.
func DailySeries(orders []commerce.Order) []dashboarddomain.DailyRevenue {
	totals := map[time.Time]decimal.Decimal{}
	days := []time.Time{}
	for _, o := range orders {
		day := commerce.DateOf(o.PlacedAt)
		total, ok := totals[day]
		if !ok {
			days = append(days, day)
			total = decimal.Zero
		}
		totals[day] = total.Add(o.Total())
	}
	slices.SortFunc(days, func(a, b time.Time) int { return a.Compare(b) })

	out := make([]dashboarddomain.DailyRevenue, 0, len(days))
	for _, day := range days {
		out = append(out, dashboarddomain.DailyRevenue{
			Date:    day.Format(time.DateOnly),
			Revenue: totals[day],
		})
	}
	return out
}

// ComputeKPIs derives the headline numbers. Revenue falls back to the
// products' recorded revenue when no order falls in the window.
func ComputeKPIs(tables commerce.Tables, filtered []commerce.Order, rows []dashboarddomain.ProductRow) dashboarddomain.KpiSnapshot {
	kpis := dashboarddomain.KpiSnapshot{TotalRevenue: decimal.Zero}

	if len(filtered) == 0 {
		for _, p := range tables.Products {
			kpis.TotalRevenue = kpis.TotalRevenue.Add(p.RecordedRevenue)
		}
	} else {
		for _, o := range filtered {
			kpis.TotalRevenue = kpis.TotalRevenue.Add(o.Total())
		}
	}

	ids := make(map[string]struct{}, len(filtered))
	for _, o := range filtered {
		ids[o.OrderID] = struct{}{}
	}
	kpis.TotalOrders = len(ids)

	for _, r := range rows {
		kpis.TotalUnits += r.UnitsSold
	}

	for _, c := range tables.Customers {
		switch c.Segment() {
		case commerce.SegmentNew:
			kpis.NewCustomerCount++
		case commerce.SegmentReturning:
			kpis.ReturningCustomerCount++
		}
	}
	return kpis
}
