package service

import (
	"context"
	"time"

	"github.com/pablozamit/elo-pool/internal/models"
)

// PlayerStore is the persistence surface the services need for players.
// Implementations return (nil, nil) when a lookup finds nothing.
type PlayerStore interface {
	Create(ctx context.Context, player *models.Player) error
	FindByID(ctx context.Context, id string) (*models.Player, error)
	// FindByUsername matches case-insensitively.
	FindByUsername(ctx context.Context, username string) (*models.Player, error)
	Search(ctx context.Context, query, excludeID string, limit int) ([]*models.Player, error)
	// ListRanked returns active non-admin players ordered by rating
	// descending, ties broken by id ascending.
	ListRanked(ctx context.Context) ([]*models.Player, error)
	ListAll(ctx context.Context) ([]*models.Player, error)
	Update(ctx context.Context, id string, upd models.AdminPlayerUpdate) (*models.Player, error)
}

// MatchStore is the persistence surface of the match workflow.
type MatchStore interface {
	Create(ctx context.Context, match *models.Match) error
	FindByID(ctx context.Context, id string) (*models.Match, error)
	// FindPendingFor returns pending matches awaiting playerID's decision,
	// i.e. pending matches involving the player that someone else submitted.
	FindPendingFor(ctx context.Context, playerID string) ([]*models.Match, error)
	FindConfirmedFor(ctx context.Context, playerID string, limit int) ([]*models.Match, error)
	FindConfirmedSince(ctx context.Context, since time.Time) ([]*models.Match, error)
	// ApplyConfirmation writes the match resolution and both player updates
	// in one transaction. The match row update is conditional on the status
	// still being pending; applied=false means another resolution won.
	ApplyConfirmation(ctx context.Context, conf models.MatchConfirmation) (applied bool, err error)
	// MarkRejected flips a pending match to rejected. applied=false means
	// the match was no longer pending.
	MarkRejected(ctx context.Context, matchID string) (applied bool, err error)
}
