package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"voice-interview/internal/api/dto"
)

// Health handles GET /api/health
//
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Server is up"
// @Router /health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{OK: true})
}
