package server

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/storepulse/internal/commerce/domain"
	"github.com/smallbiznis/storepulse/internal/config"
	dashboarddomain "github.com/smallbiznis/storepulse/internal/dashboard/domain"
)

const dateOnlyLayout = time.DateOnly

func parseOptionalInt(value string) (*int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseOptionalDate(value string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(dateOnlyLayout, trimmed); err == nil {
		return &parsed, nil
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		day := domain.DateOf(parsed)
		return &day, nil
	}
	return nil, errors.New("invalid_date")
}

// parseCategories accepts repeated and comma separated category values.
func parseCategories(values []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, raw := range values {
		for _, part := range strings.Split(raw, ",") {
			name := strings.TrimSpace(part)
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// parseFilter reads start, end, category and top_n. Missing dates default to
// the windowDays calendar days ending today.
func parseFilter(c *gin.Context, today time.Time, windowDays int, topN config.TopN) (dashboarddomain.Filter, error) {
	if windowDays <= 0 {
		windowDays = dashboarddomain.DefaultWindowDays
	}
	today = domain.DateOf(today)

	start, err := parseOptionalDate(c.Query("start"))
	if err != nil {
		return dashboarddomain.Filter{}, newValidationError("start", "invalid_start", "start must be YYYY-MM-DD")
	}
	end, err := parseOptionalDate(c.Query("end"))
	if err != nil {
		return dashboarddomain.Filter{}, newValidationError("end", "invalid_end", "end must be YYYY-MM-DD")
	}
	n, err := parseOptionalInt(c.Query("top_n"))
	if err != nil {
		return dashboarddomain.Filter{}, newValidationError("top_n", "invalid_top_n", "top_n must be an integer")
	}

	filter := dashboarddomain.Filter{
		End:        today,
		Categories: parseCategories(c.QueryArray("category")),
		TopN:       topN.Clamp(0),
	}
	if end != nil {
		filter.End = *end
	}
	filter.Start = filter.End.AddDate(0, 0, -windowDays)
	if start != nil {
		filter.Start = *start
	}
	if n != nil {
		filter.TopN = topN.Clamp(*n)
	}

	if err := filter.Validate(); err != nil {
		return dashboarddomain.Filter{}, err
	}
	return filter, nil
}
