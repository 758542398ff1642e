package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pablozamit/elo-pool/internal/models"
	"github.com/pablozamit/elo-pool/pkg/database"
)

const playerColumns = `id, username, password_hash, rating, matches_played, matches_won, is_admin, is_active, created_at`

type PlayerRepository struct {
	db *database.DB
}

func NewPlayerRepository(db *database.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// Create inserts a new player row.
func (r *PlayerRepository) Create(ctx context.Context, p *models.Player) error {
	query := `
		INSERT INTO players (id, username, password_hash, rating, matches_played, matches_won, is_admin, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Username,
		p.PasswordHash,
		p.Rating,
		p.MatchesPlayed,
		p.MatchesWon,
		p.IsAdmin,
		p.IsActive,
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}

	return nil
}

// FindByID looks a player up by id.
func (r *PlayerRepository) FindByID(ctx context.Context, id string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`

	player, err := r.scanPlayer(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find player: %w", err)
	}

	return player, nil
}

// FindByUsername looks a player up by username, case-insensitively.
func (r *PlayerRepository) FindByUsername(ctx context.Context, username string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE LOWER(username) = LOWER($1)`

	player, err := r.scanPlayer(r.db.QueryRowContext(ctx, query, username))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find player by username: %w", err)
	}

	return player, nil
}

// Search returns active players whose username contains query, excluding
// excludeID, ordered by username.
func (r *PlayerRepository) Search(ctx context.Context, query, excludeID string, limit int) ([]*models.Player, error) {
	stmt := `
		SELECT ` + playerColumns + `
		FROM players
		WHERE username ILIKE '%' || $1 || '%'
		  AND id <> $2
		  AND is_active
		ORDER BY username
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, stmt, query, excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search players: %w", err)
	}
	defer rows.Close()

	return r.collectPlayers(rows)
}

// ListRanked returns active non-admin players ordered by rating descending,
// ties broken by id for a deterministic order.
func (r *PlayerRepository) ListRanked(ctx context.Context) ([]*models.Player, error) {
	query := `
		SELECT ` + playerColumns + `
		FROM players
		WHERE is_active AND NOT is_admin
		ORDER BY rating DESC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list ranked players: %w", err)
	}
	defer rows.Close()

	return r.collectPlayers(rows)
}

// ListAll returns every player, newest first.
func (r *PlayerRepository) ListAll(ctx context.Context) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	return r.collectPlayers(rows)
}

// Update applies an admin edit and returns the updated row, or (nil, nil)
// when the player does not exist.
func (r *PlayerRepository) Update(ctx context.Context, id string, upd models.AdminPlayerUpdate) (*models.Player, error) {
	query := `
		UPDATE players
		SET rating    = COALESCE($1, rating),
		    is_active = COALESCE($2, is_active),
		    is_admin  = COALESCE($3, is_admin)
		WHERE id = $4
		RETURNING ` + playerColumns

	player, err := r.scanPlayer(r.db.QueryRowContext(ctx, query, upd.Rating, upd.IsActive, upd.IsAdmin, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	return player, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PlayerRepository) scanPlayer(row rowScanner) (*models.Player, error) {
	player := &models.Player{}
	err := row.Scan(
		&player.ID,
		&player.Username,
		&player.PasswordHash,
		&player.Rating,
		&player.MatchesPlayed,
		&player.MatchesWon,
		&player.IsAdmin,
		&player.IsActive,
		&player.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return player, nil
}

func (r *PlayerRepository) collectPlayers(rows *sql.Rows) ([]*models.Player, error) {
	var players []*models.Player
	for rows.Next() {
		player, err := r.scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read players: %w", err)
	}
	return players, nil
}
