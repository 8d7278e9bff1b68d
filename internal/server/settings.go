package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.settings.Get())
}
