package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pablozamit/elo-pool/internal/models"
	"github.com/pablozamit/elo-pool/pkg/database"
)

const matchColumns = `id, player1_id, player2_id, player1_username, player2_username,
	       match_type, score1, score2, winner_id, status,
	       player1_rating_before, player2_rating_before,
	       player1_rating_after, player2_rating_after,
	       submitted_by, created_at, confirmed_at`

type MatchRepository struct {
	db *database.DB
}

func NewMatchRepository(db *database.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// Create inserts a new pending match.
func (r *MatchRepository) Create(ctx context.Context, m *models.Match) error {
	query := `
		INSERT INTO matches (id, player1_id, player2_id, player1_username, player2_username,
		                     match_type, score1, score2, winner_id, status,
		                     player1_rating_before, player2_rating_before,
		                     submitted_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.ExecContext(ctx, query,
		m.ID,
		m.Player1ID,
		m.Player2ID,
		m.Player1Username,
		m.Player2Username,
		m.MatchType,
		m.Score1,
		m.Score2,
		m.WinnerID,
		m.Status,
		m.Player1RatingBefore,
		m.Player2RatingBefore,
		m.SubmittedBy,
		m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}

	return nil
}

// FindByID looks a match up by id.
func (r *MatchRepository) FindByID(ctx context.Context, id string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	match, err := r.scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find match: %w", err)
	}

	return match, nil
}

// FindPendingFor returns pending matches involving the player that were
// submitted by someone else, oldest first.
func (r *MatchRepository) FindPendingFor(ctx context.Context, playerID string) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE status = 'pending'
		  AND (player1_id = $1 OR player2_id = $1)
		  AND submitted_by <> $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending matches: %w", err)
	}
	defer rows.Close()

	return r.collectMatches(rows)
}

// FindConfirmedFor returns the player's confirmed matches, newest first.
func (r *MatchRepository) FindConfirmedFor(ctx context.Context, playerID string, limit int) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE status = 'confirmed'
		  AND (player1_id = $1 OR player2_id = $1)
		ORDER BY confirmed_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query match history: %w", err)
	}
	defer rows.Close()

	return r.collectMatches(rows)
}

// FindConfirmedSince returns all matches confirmed at or after since.
func (r *MatchRepository) FindConfirmedSince(ctx context.Context, since time.Time) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE status = 'confirmed' AND confirmed_at >= $1
		ORDER BY confirmed_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent matches: %w", err)
	}
	defer rows.Close()

	return r.collectMatches(rows)
}

// ApplyConfirmation resolves a pending match and updates both players in a
// single transaction. The match row update is conditional on the status
// still being pending; when another resolution already won, nothing is
// written and applied is false.
func (r *MatchRepository) ApplyConfirmation(ctx context.Context, conf models.MatchConfirmation) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE matches
		SET status = 'confirmed',
		    confirmed_at = $1,
		    player1_rating_after = $2,
		    player2_rating_after = $3
		WHERE id = $4 AND status = 'pending'
	`, conf.ConfirmedAt, conf.Player1RatingAfter, conf.Player2RatingAfter, conf.MatchID)
	if err != nil {
		return false, fmt.Errorf("failed to update match: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		// Already confirmed or rejected by a concurrent request.
		return false, nil
	}

	playerUpdate := `
		UPDATE players
		SET rating = $1,
		    matches_played = matches_played + 1,
		    matches_won = matches_won + $2
		WHERE id = $3
	`

	won := func(playerID string) int {
		if playerID == conf.WinnerID {
			return 1
		}
		return 0
	}

	if _, err := tx.ExecContext(ctx, playerUpdate, conf.Player1RatingAfter, won(conf.Player1ID), conf.Player1ID); err != nil {
		return false, fmt.Errorf("failed to update player1: %w", err)
	}
	if _, err := tx.ExecContext(ctx, playerUpdate, conf.Player2RatingAfter, won(conf.Player2ID), conf.Player2ID); err != nil {
		return false, fmt.Errorf("failed to update player2: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit confirmation: %w", err)
	}

	return true, nil
}

// MarkRejected flips a pending match to rejected. applied is false when the
// match was no longer pending.
func (r *MatchRepository) MarkRejected(ctx context.Context, matchID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE matches
		SET status = 'rejected'
		WHERE id = $1 AND status = 'pending'
	`, matchID)
	if err != nil {
		return false, fmt.Errorf("failed to reject match: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}

func (r *MatchRepository) scanMatch(row rowScanner) (*models.Match, error) {
	match := &models.Match{}
	err := row.Scan(
		&match.ID,
		&match.Player1ID,
		&match.Player2ID,
		&match.Player1Username,
		&match.Player2Username,
		&match.MatchType,
		&match.Score1,
		&match.Score2,
		&match.WinnerID,
		&match.Status,
		&match.Player1RatingBefore,
		&match.Player2RatingBefore,
		&match.Player1RatingAfter,
		&match.Player2RatingAfter,
		&match.SubmittedBy,
		&match.CreatedAt,
		&match.ConfirmedAt,
	)
	if err != nil {
		return nil, err
	}
	return match, nil
}

func (r *MatchRepository) collectMatches(rows *sql.Rows) ([]*models.Match, error) {
	var matches []*models.Match
	for rows.Next() {
		match, err := r.scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read matches: %w", err)
	}
	return matches, nil
}
