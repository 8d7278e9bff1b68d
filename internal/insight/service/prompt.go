package service

import (
	"fmt"
	"strings"

	dashboarddomain "github.com/smallbiznis/storepulse/internal/dashboard/domain"
)

// BuildPrompt renders the compact prompt sent to the generator.
func BuildPrompt(kpis dashboarddomain.KpiSnapshot, top []dashboarddomain.ProductRow) string {
	entries := make([]string, 0, len(top))
	for _, row := range top {
		entries = append(entries, fmt.Sprintf("%s:%d", row.Title, row.UnitsSold))
	}
	return fmt.Sprintf(
		"Revenue=%s, Orders=%d, Units=%d. Top=[%s]. Provide 2 quick insights and 2 actions.",
		kpis.TotalRevenue.String(),
		kpis.TotalOrders,
		kpis.TotalUnits,
		strings.Join(entries, ", "),
	)
}
