package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pablozamit/elo-pool/internal/models"
	"github.com/pablozamit/elo-pool/internal/service"
	"github.com/pablozamit/elo-pool/pkg/logger"
)

type MatchHandler struct {
	matches *service.MatchService
	players *service.PlayerService
}

func NewMatchHandler(matches *service.MatchService, players *service.PlayerService) *MatchHandler {
	return &MatchHandler{
		matches: matches,
		players: players,
	}
}

// Submit records a proposed match result. The opponent must confirm it
// before any rating changes.
func (h *MatchHandler) Submit(c *gin.Context) {
	var req models.SubmitMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	playerID := c.GetString("playerID")

	opponent, err := h.players.GetByUsername(c.Request.Context(), req.OpponentUsername)
	if err != nil {
		if errors.Is(err, service.ErrPlayerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Opponent not found"})
			return
		}
		logger.Error("Failed to resolve opponent", "username", req.OpponentUsername, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit match"})
		return
	}

	match, err := h.matches.Submit(c.Request.Context(), service.SubmitParams{
		Player1ID:   playerID,
		Player2ID:   opponent.ID,
		MatchType:   req.MatchType,
		Score1:      req.OwnScore,
		Score2:      req.OpponentScore,
		SubmittedBy: playerID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfMatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot play against yourself"})
		case errors.Is(err, service.ErrTiedScore):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Matches cannot end in a tie"})
		case errors.Is(err, service.ErrInvalidMatchType):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown match type"})
		case errors.Is(err, service.ErrPlayerInactive):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Opponent account is deactivated"})
		case errors.Is(err, service.ErrPlayerNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Player not found"})
		default:
			logger.Error("Failed to submit match", "playerId", playerID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit match"})
		}
		return
	}

	logger.Info("Match submitted",
		"matchId", match.ID,
		"player1", match.Player1ID,
		"player2", match.Player2ID,
		"type", match.MatchType)

	c.JSON(http.StatusCreated, match)
}

// Confirm applies a pending result: ratings move and both players'
// statistics update exactly once.
func (h *MatchHandler) Confirm(c *gin.Context) {
	h.resolve(c, h.matches.Confirm, "confirm")
}

// Reject discards a pending result without touching ratings.
func (h *MatchHandler) Reject(c *gin.Context) {
	h.resolve(c, h.matches.Reject, "reject")
}

func (h *MatchHandler) resolve(c *gin.Context, op func(ctx context.Context, matchID, actorID string) (*models.Match, error), action string) {
	matchID := c.Param("id")
	playerID := c.GetString("playerID")

	match, err := op(c.Request.Context(), matchID, playerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMatchNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Match not found"})
		case errors.Is(err, service.ErrUnauthorized):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to resolve this match"})
		case errors.Is(err, service.ErrMatchAlreadyResolved):
			c.JSON(http.StatusConflict, gin.H{"error": "Match is already resolved"})
		case errors.Is(err, service.ErrConfirmContended):
			c.JSON(http.StatusConflict, gin.H{"error": "Match is being resolved, try again"})
		default:
			logger.Error("Failed to resolve match", "matchId", matchID, "action", action, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve match"})
		}
		return
	}

	logger.Info("Match resolved", "matchId", matchID, "action", action, "by", playerID)

	c.JSON(http.StatusOK, match)
}

// Get returns a single match by id.
func (h *MatchHandler) Get(c *gin.Context) {
	id := c.Param("id")

	match, err := h.matches.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrMatchNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Match not found"})
			return
		}
		logger.Error("Failed to load match", "matchId", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load match"})
		return
	}

	c.JSON(http.StatusOK, match)
}

// Pending lists matches awaiting the authenticated player's decision.
func (h *MatchHandler) Pending(c *gin.Context) {
	playerID := c.GetString("playerID")

	matches, err := h.matches.PendingFor(c.Request.Context(), playerID)
	if err != nil {
		logger.Error("Failed to list pending matches", "playerId", playerID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list pending matches"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"matches": matches,
		"total":   len(matches),
	})
}

// History lists the authenticated player's confirmed matches, newest first.
func (h *MatchHandler) History(c *gin.Context) {
	playerID := c.GetString("playerID")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	matches, err := h.matches.HistoryFor(c.Request.Context(), playerID, limit)
	if err != nil {
		logger.Error("Failed to list match history", "playerId", playerID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list match history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"matches": matches,
		"total":   len(matches),
	})
}
