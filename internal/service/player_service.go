package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/itbasis/go-clock"

	"github.com/pablozamit/elo-pool/internal/models"
	"github.com/pablozamit/elo-pool/pkg/logger"
)

type PlayerService struct {
	players PlayerStore
	clock   clock.Clock
}

func NewPlayerService(players PlayerStore, clk clock.Clock) *PlayerService {
	return &PlayerService{players: players, clock: clk}
}

// Register creates a new player with the initial rating.
func (s *PlayerService) Register(ctx context.Context, username, password string) (*models.Player, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}
	if strings.Contains(username, " ") {
		return nil, ErrInvalidUsername
	}

	existing, err := s.players.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing username: %w", err)
	}
	if existing != nil {
		return nil, ErrPlayerAlreadyExists
	}

	passwordHash, err := models.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	player := &models.Player{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		Rating:       models.InitialRating,
		IsActive:     true,
		CreatedAt:    s.clock.Now().UTC(),
	}

	if err := s.players.Create(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	logger.Info("Player registered", "playerId", player.ID, "username", player.Username)

	return player, nil
}

// Login checks credentials and returns the player. Inactive players cannot
// log in.
func (s *PlayerService) Login(ctx context.Context, username, password string) (*models.Player, error) {
	player, err := s.players.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to find player: %w", err)
	}
	if player == nil || !player.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	if !player.IsActive {
		return nil, ErrPlayerInactive
	}
	return player, nil
}

// GetByID returns a player by id.
func (s *PlayerService) GetByID(ctx context.Context, id string) (*models.Player, error) {
	player, err := s.players.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil {
		return nil, ErrPlayerNotFound
	}
	return player, nil
}

// GetByUsername returns a player by username, case-insensitively.
func (s *PlayerService) GetByUsername(ctx context.Context, username string) (*models.Player, error) {
	player, err := s.players.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil {
		return nil, ErrPlayerNotFound
	}
	return player, nil
}

// Search finds players whose username contains query, excluding the caller.
// Queries shorter than two characters return nothing.
func (s *PlayerService) Search(ctx context.Context, query, excludeID string) ([]*models.Player, error) {
	if len(query) < 2 {
		return []*models.Player{}, nil
	}
	players, err := s.players.Search(ctx, query, excludeID, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to search players: %w", err)
	}
	return players, nil
}

// ListAll returns every player, for admin screens.
func (s *PlayerService) ListAll(ctx context.Context) ([]*models.Player, error) {
	players, err := s.players.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

// AdminCreate creates a player with explicit flags, for admin screens.
func (s *PlayerService) AdminCreate(ctx context.Context, username, password string, isAdmin, isActive bool) (*models.Player, error) {
	player, err := s.Register(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if !isAdmin && isActive {
		return player, nil
	}
	return s.AdminUpdate(ctx, player.ID, models.AdminPlayerUpdate{
		IsAdmin:  &isAdmin,
		IsActive: &isActive,
	})
}

// AdminUpdate applies an administrator's changes to a player. Rating edits
// through here bypass the match workflow deliberately; they are manual
// corrections, not results.
func (s *PlayerService) AdminUpdate(ctx context.Context, id string, upd models.AdminPlayerUpdate) (*models.Player, error) {
	player, err := s.players.Update(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}
	if player == nil {
		return nil, ErrPlayerNotFound
	}

	logger.Info("Player updated by admin", "playerId", id)

	return player, nil
}

// EnsureAdmin creates the default admin account if no player with that
// username exists yet. Used at startup and by the seed tool.
func (s *PlayerService) EnsureAdmin(ctx context.Context, username, password string) error {
	existing, err := s.players.FindByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to check admin account: %w", err)
	}
	if existing != nil {
		return nil
	}

	_, err = s.AdminCreate(ctx, username, password, true, true)
	if err != nil {
		return err
	}

	logger.Info("Default admin account created", "username", username)
	return nil
}
