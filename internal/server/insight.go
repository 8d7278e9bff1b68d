package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	insightdomain "github.com/smallbiznis/storepulse/internal/insight/domain"
	insightservice "github.com/smallbiznis/storepulse/internal/insight/service"
)

type insightResponse struct {
	Success     bool     `json:"success"`
	Text        string   `json:"text"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func (s *Server) GenerateInsights(c *gin.Context) {
	result, ok := s.buildDashboard(c)
	if !ok {
		return
	}

	insight := insightdomain.Result{Success: false, Text: insightdomain.NotConfiguredMessage}
	if s.insights != nil {
		insight = s.insights.Request(c.Request.Context(), result.KPIs, result.Top, 0)
	}

	resp := insightResponse{Success: insight.Success, Text: insight.Text}
	if !insight.Success {
		resp.Suggestions = insightservice.PickSuggestions(s.rng, insightservice.DefaultSuggestionCount)
	}
	c.JSON(http.StatusOK, resp)
}
