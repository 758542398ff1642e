package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pablozamit/elo-pool/internal/models"
	"github.com/pablozamit/elo-pool/internal/service"
	jwtutil "github.com/pablozamit/elo-pool/pkg/jwt"
	"github.com/pablozamit/elo-pool/pkg/logger"
)

type AuthHandler struct {
	players    *service.PlayerService
	jwtManager *jwtutil.Manager
}

func NewAuthHandler(players *service.PlayerService, jwtManager *jwtutil.Manager) *AuthHandler {
	return &AuthHandler{
		players:    players,
		jwtManager: jwtManager,
	}
}

type AuthResponse struct {
	Token  string         `json:"token"`
	Player *models.Player `json:"player"`
}

// Register creates a new player account and returns a session token.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterPlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	player, err := h.players.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlayerAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
		case errors.Is(err, service.ErrInvalidUsername):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username must not contain spaces"})
		default:
			logger.Error("Failed to register player", "username", req.Username, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		}
		return
	}

	token, err := h.jwtManager.Generate(player.ID, player.Username, player.IsAdmin)
	if err != nil {
		logger.Error("Failed to generate token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	logger.Info("Player registered", "playerId", player.ID, "username", player.Username)

	c.JSON(http.StatusCreated, AuthResponse{Token: token, Player: player})
}

// Login authenticates a player and returns a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	player, err := h.players.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		case errors.Is(err, service.ErrPlayerInactive):
			c.JSON(http.StatusForbidden, gin.H{"error": "Account is deactivated"})
		default:
			logger.Error("Failed to login", "username", req.Username, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to login"})
		}
		return
	}

	token, err := h.jwtManager.Generate(player.ID, player.Username, player.IsAdmin)
	if err != nil {
		logger.Error("Failed to generate token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	logger.Info("Player logged in", "playerId", player.ID, "username", player.Username)

	c.JSON(http.StatusOK, AuthResponse{Token: token, Player: player})
}
