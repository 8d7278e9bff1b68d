package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	dashboarddomain "github.com/smallbiznis/storepulse/internal/dashboard/domain"
)

type SummaryData struct {
	StoreLabel string
	Result     dashboarddomain.Result
	// Insight is printed when set. Suggestions are printed otherwise.
	Insight     string
	Suggestions []string
}

// SummaryPDF renders the KPI, top products and daily revenue sections.
func SummaryPDF(data SummaryData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)
	res := data.Result

	title := "Sales summary"
	if data.StoreLabel != "" {
		title = data.StoreLabel + " sales summary"
	}
	m.AddRow(12,
		text.NewCol(12, title, props.Text{Size: 18, Style: fontstyle.Bold, Align: align.Left}),
	)
	m.AddRow(8,
		text.NewCol(8, "Window: "+windowLabel(res.Filter), props.Text{Size: 9}),
		text.NewCol(4, "Generated "+res.GeneratedAt.UTC().Format(time.RFC3339), props.Text{Size: 9, Align: align.Right}),
	)

	m.AddRow(10, text.NewCol(12, "Key metrics", props.Text{Size: 12, Style: fontstyle.Bold, Top: 3}))
	kpis := res.KPIs
	m.AddRow(16,
		col.New(4).Add(
			text.New("Total revenue", props.Text{Size: 9}),
			text.New(kpis.TotalRevenue.StringFixed(2), props.Text{Size: 12, Style: fontstyle.Bold, Top: 5}),
		),
		col.New(4).Add(
			text.New("Orders", props.Text{Size: 9}),
			text.New(strconv.Itoa(kpis.TotalOrders), props.Text{Size: 12, Style: fontstyle.Bold, Top: 5}),
		),
		col.New(4).Add(
			text.New("Units sold", props.Text{Size: 9}),
			text.New(strconv.FormatInt(kpis.TotalUnits, 10), props.Text{Size: 12, Style: fontstyle.Bold, Top: 5}),
		),
	)
	m.AddRow(8,
		text.NewCol(4, fmt.Sprintf("New customers: %d", kpis.NewCustomerCount), props.Text{Size: 9}),
		text.NewCol(4, fmt.Sprintf("Returning customers: %d", kpis.ReturningCustomerCount), props.Text{Size: 9}),
		col.New(4),
	)

	m.AddRow(10, text.NewCol(12, "Top products", props.Text{Size: 12, Style: fontstyle.Bold, Top: 3}))
	m.AddRow(7,
		text.NewCol(6, "Product", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Category", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Units", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Revenue", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	for _, row := range res.Top {
		m.AddRow(6,
			text.NewCol(6, row.Title, props.Text{Size: 9}),
			text.NewCol(2, row.Category, props.Text{Size: 9}),
			text.NewCol(2, strconv.FormatInt(row.UnitsSold, 10), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, row.Revenue.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10, text.NewCol(12, "Daily revenue", props.Text{Size: 12, Style: fontstyle.Bold, Top: 3}))
	if len(res.Daily) == 0 {
		m.AddRow(6, text.NewCol(12, "No orders in this window.", props.Text{Size: 9}))
	}
	for _, point := range res.Daily {
		m.AddRow(6,
			text.NewCol(6, point.Date, props.Text{Size: 9}),
			text.NewCol(6, point.Revenue.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
		)
	}

	if data.Insight != "" || len(data.Suggestions) > 0 {
		m.AddRow(10, text.NewCol(12, "Insights", props.Text{Size: 12, Style: fontstyle.Bold, Top: 3}))
		if data.Insight != "" {
			m.AddRow(30, text.NewCol(12, data.Insight, props.Text{Size: 9}))
		} else {
			for _, s := range data.Suggestions {
				m.AddRow(6, text.NewCol(12, s, props.Text{Size: 9}))
			}
		}
	}

	if len(res.Warnings) > 0 {
		m.AddRow(10, text.NewCol(12, "Data warnings", props.Text{Size: 12, Style: fontstyle.Bold, Top: 3}))
		for _, w := range res.Warnings {
			m.AddRow(6, text.NewCol(12, w.Error(), props.Text{Size: 8}))
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func windowLabel(f dashboarddomain.Filter) string {
	start, end := "open", "open"
	if !f.Start.IsZero() {
		start = f.Start.Format(time.DateOnly)
	}
	if !f.End.IsZero() {
		end = f.End.Format(time.DateOnly)
	}
	return start + " to " + end
}
