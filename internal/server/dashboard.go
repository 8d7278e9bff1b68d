package server

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	dashboarddomain "github.com/smallbiznis/storepulse/internal/dashboard/domain"
	insightservice "github.com/smallbiznis/storepulse/internal/insight/service"
	obstracing "github.com/smallbiznis/storepulse/internal/observability/tracing"
	"github.com/smallbiznis/storepulse/internal/report"
)

func (s *Server) buildDashboard(c *gin.Context) (dashboarddomain.Result, bool) {
	settings := s.settings.Get()
	filter, err := parseFilter(c, s.clock.Now(), s.cfg.Dashboard.WindowDays, settings.TopN)
	if err != nil {
		AbortWithError(c, err)
		return dashboarddomain.Result{}, false
	}

	result, err := s.dashboardSvc.Build(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return dashboarddomain.Result{}, false
	}
	if result.RunID != "" {
		c.Header(obstracing.RunIDHeader, result.RunID)
	}
	return result, true
}

func (s *Server) GetDashboard(c *gin.Context) {
	result, ok := s.buildDashboard(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) ExportProductsCSV(c *gin.Context) {
	result, ok := s.buildDashboard(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteProductsCSV(&buf, result.Products); err != nil {
		AbortWithError(c, ErrInternal)
		return
	}

	fileName := report.FileName(s.cfg.StoreLabel, "products-report", "csv")
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportReportPDF renders the summary. insights=true asks the requester for a
// blurb first; otherwise the canned suggestions are printed.
func (s *Server) ExportReportPDF(c *gin.Context) {
	withInsight, err := strconv.ParseBool(strings.TrimSpace(c.DefaultQuery("insights", "false")))
	if err != nil {
		AbortWithError(c, newValidationError("insights", "invalid_insights", "insights must be a boolean"))
		return
	}

	result, ok := s.buildDashboard(c)
	if !ok {
		return
	}

	data := report.SummaryData{
		StoreLabel: s.cfg.StoreLabel,
		Result:     result,
	}
	if withInsight && s.insights != nil {
		insight := s.insights.Request(c.Request.Context(), result.KPIs, result.Top, 0)
		if insight.Success {
			data.Insight = insight.Text
		}
	}
	if data.Insight == "" {
		data.Suggestions = insightservice.PickSuggestions(s.rng, insightservice.DefaultSuggestionCount)
	}

	body, err := report.SummaryPDF(data)
	if err != nil {
		AbortWithError(c, ErrInternal)
		return
	}

	fileName := report.FileName(s.cfg.StoreLabel, "summary-report", "pdf")
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, "application/pdf", body)
}
