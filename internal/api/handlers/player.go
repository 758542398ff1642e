package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pablozamit/elo-pool/internal/models"
	"github.com/pablozamit/elo-pool/internal/service"
	"github.com/pablozamit/elo-pool/pkg/logger"
)

type PlayerHandler struct {
	players *service.PlayerService
}

func NewPlayerHandler(players *service.PlayerService) *PlayerHandler {
	return &PlayerHandler{players: players}
}

// Me returns the authenticated player's profile.
func (h *PlayerHandler) Me(c *gin.Context) {
	playerID := c.GetString("playerID")

	player, err := h.players.GetByID(c.Request.Context(), playerID)
	if err != nil {
		if errors.Is(err, service.ErrPlayerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Player not found"})
			return
		}
		logger.Error("Failed to load player", "playerId", playerID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load player"})
		return
	}

	c.JSON(http.StatusOK, player)
}

// Search finds active players by partial username match. Queries shorter
// than two characters return an empty list.
func (h *PlayerHandler) Search(c *gin.Context) {
	query := c.Query("q")
	playerID := c.GetString("playerID")

	players, err := h.players.Search(c.Request.Context(), query, playerID)
	if err != nil {
		logger.Error("Player search failed", "query", query, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"players": players,
		"total":   len(players),
	})
}

type AdminCreatePlayerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6"`
	IsAdmin  bool   `json:"isAdmin"`
	IsActive *bool  `json:"isActive"`
}

// AdminList returns every player including inactive accounts and admins.
func (h *PlayerHandler) AdminList(c *gin.Context) {
	players, err := h.players.ListAll(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list players", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list players"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"players": players,
		"total":   len(players),
	})
}

// AdminCreate creates a player account on behalf of an administrator.
func (h *PlayerHandler) AdminCreate(c *gin.Context) {
	var req AdminCreatePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	player, err := h.players.AdminCreate(c.Request.Context(), req.Username, req.Password, req.IsAdmin, isActive)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlayerAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
		case errors.Is(err, service.ErrInvalidUsername):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username must not contain spaces"})
		default:
			logger.Error("Failed to create player", "username", req.Username, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create player"})
		}
		return
	}

	logger.Info("Player created by admin", "playerId", player.ID, "admin", c.GetString("playerID"))

	c.JSON(http.StatusCreated, player)
}

// AdminDeactivate disables a player's account. The row is kept: matches
// reference it and the rating history must survive.
func (h *PlayerHandler) AdminDeactivate(c *gin.Context) {
	id := c.Param("id")

	inactive := false
	player, err := h.players.AdminUpdate(c.Request.Context(), id, models.AdminPlayerUpdate{IsActive: &inactive})
	if err != nil {
		if errors.Is(err, service.ErrPlayerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Player not found"})
			return
		}
		logger.Error("Failed to deactivate player", "playerId", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate player"})
		return
	}

	logger.Info("Player deactivated by admin", "playerId", id, "admin", c.GetString("playerID"))

	c.JSON(http.StatusOK, player)
}

// AdminUpdate adjusts a player's rating, active flag or admin flag.
func (h *PlayerHandler) AdminUpdate(c *gin.Context) {
	id := c.Param("id")

	var upd models.AdminPlayerUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	player, err := h.players.AdminUpdate(c.Request.Context(), id, upd)
	if err != nil {
		if errors.Is(err, service.ErrPlayerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Player not found"})
			return
		}
		logger.Error("Failed to update player", "playerId", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update player"})
		return
	}

	logger.Info("Player updated by admin", "playerId", id, "admin", c.GetString("playerID"))

	c.JSON(http.StatusOK, player)
}
