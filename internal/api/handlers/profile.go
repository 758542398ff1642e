package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pablozamit/elo-pool/internal/service"
	"github.com/pablozamit/elo-pool/pkg/logger"
)

// ProfileHandler serves the public view of any player: profile, detailed
// statistics, confirmed match history and ranking position.
type ProfileHandler struct {
	players  *service.PlayerService
	matches  *service.MatchService
	rankings *service.RankingService
}

func NewProfileHandler(players *service.PlayerService, matches *service.MatchService, rankings *service.RankingService) *ProfileHandler {
	return &ProfileHandler{
		players:  players,
		matches:  matches,
		rankings: rankings,
	}
}

// Profile returns a player's public profile.
func (h *ProfileHandler) Profile(c *gin.Context) {
	id := c.Param("id")

	player, err := h.players.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPlayerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Player not found"})
			return
		}
		logger.Error("Failed to load player profile", "playerId", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":            player.ID,
		"username":      player.Username,
		"rating":        player.Rating,
		"matchesPlayed": player.MatchesPlayed,
		"matchesWon":    player.MatchesWon,
		"isAdmin":       player.IsAdmin,
		"createdAt":     player.CreatedAt,
	})
}

// Stats returns a player's detailed statistics: streaks, per-type records,
// trailing-period records and rating progression.
func (h *ProfileHandler) Stats(c *gin.Context) {
	id := c.Param("id")

	stats, err := h.rankings.PlayerStats(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPlayerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Player not found"})
			return
		}
		logger.Error("Failed to compute player stats", "playerId", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Matches returns a player's confirmed match history, newest first.
func (h *ProfileHandler) Matches(c *gin.Context) {
	id := c.Param("id")

	if _, err := h.players.GetByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrPlayerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Player not found"})
			return
		}
		logger.Error("Failed to load player", "playerId", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load match history"})
		return
	}

	matches, err := h.matches.HistoryFor(c.Request.Context(), id, 50)
	if err != nil {
		logger.Error("Failed to list match history", "playerId", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load match history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"matches": matches,
		"total":   len(matches),
	})
}

// RankingInfo returns a player's position inside the current standings.
func (h *ProfileHandler) RankingInfo(c *gin.Context) {
	id := c.Param("id")

	info, err := h.rankings.RankInfo(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPlayerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Player not found"})
			return
		}
		logger.Error("Failed to compute ranking info", "playerId", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute ranking info"})
		return
	}

	c.JSON(http.StatusOK, info)
}
