package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pablozamit/elo-pool/internal/service"
	"github.com/pablozamit/elo-pool/pkg/logger"
)

type RankingHandler struct {
	rankings *service.RankingService
}

func NewRankingHandler(rankings *service.RankingService) *RankingHandler {
	return &RankingHandler{rankings: rankings}
}

// List returns the current standings with trailing window movement.
func (h *RankingHandler) List(c *gin.Context) {
	entries, err := h.rankings.ComputeRankings(c.Request.Context())
	if err != nil {
		logger.Error("Failed to compute rankings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute rankings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rankings": entries,
		"total":    len(entries),
	})
}
