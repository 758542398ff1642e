package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/itbasis/go-clock"

	"github.com/pablozamit/elo-pool/internal/models"
	"github.com/pablozamit/elo-pool/pkg/distributed"
	"github.com/pablozamit/elo-pool/pkg/logger"
)

const (
	resolveLockTTL      = 5 * time.Second
	resolveLockRetries  = 3
	resolveLockInterval = 100 * time.Millisecond
)

// MatchNotifier is told about workflow events so connected clients can be
// pushed updates. Implementations must not block.
type MatchNotifier interface {
	MatchSubmitted(match *models.Match)
	MatchResolved(match *models.Match)
}

// MatchService drives a reported result through its lifecycle:
// pending on submission, then exactly one of confirmed or rejected.
// Rating mutation happens only on confirmation, computed from the ratings
// snapshotted at submission time.
type MatchService struct {
	players  PlayerStore
	matches  MatchStore
	elo      *ELOService
	clock    clock.Clock
	locks    *distributed.RedisLockManager
	notifier MatchNotifier
}

func NewMatchService(players PlayerStore, matches MatchStore, elo *ELOService, clk clock.Clock) *MatchService {
	return &MatchService{
		players: players,
		matches: matches,
		elo:     elo,
		clock:   clk,
	}
}

// SetLockManager enables the Redis per-match lock around confirm/reject.
// Without it the conditional status update alone guards the critical section.
func (s *MatchService) SetLockManager(locks *distributed.RedisLockManager) {
	s.locks = locks
}

// SetNotifier wires push notifications for workflow events.
func (s *MatchService) SetNotifier(notifier MatchNotifier) {
	s.notifier = notifier
}

// SubmitParams describes a proposed result. SubmittedBy must be one of the
// two participants.
type SubmitParams struct {
	Player1ID   string
	Player2ID   string
	MatchType   models.MatchType
	Score1      int
	Score2      int
	SubmittedBy string
}

// Submit validates a proposed result and persists it as pending. Both
// players' current ratings are snapshotted onto the record; no rating
// changes until the opponent confirms.
func (s *MatchService) Submit(ctx context.Context, p SubmitParams) (*models.Match, error) {
	if p.Player1ID == p.Player2ID {
		return nil, ErrSelfMatch
	}
	if p.Score1 == p.Score2 {
		return nil, ErrTiedScore
	}
	if !p.MatchType.Valid() {
		return nil, ErrInvalidMatchType
	}
	if p.SubmittedBy != p.Player1ID && p.SubmittedBy != p.Player2ID {
		return nil, ErrInvalidInput
	}

	player1, err := s.players.FindByID(ctx, p.Player1ID)
	if err != nil {
		return nil, fmt.Errorf("failed to find player1: %w", err)
	}
	if player1 == nil {
		return nil, ErrPlayerNotFound
	}

	player2, err := s.players.FindByID(ctx, p.Player2ID)
	if err != nil {
		return nil, fmt.Errorf("failed to find player2: %w", err)
	}
	if player2 == nil {
		return nil, ErrPlayerNotFound
	}

	if !player1.IsActive || !player2.IsActive {
		return nil, ErrPlayerInactive
	}

	winnerID := p.Player1ID
	if p.Score2 > p.Score1 {
		winnerID = p.Player2ID
	}

	match := &models.Match{
		ID:                  uuid.NewString(),
		Player1ID:           player1.ID,
		Player2ID:           player2.ID,
		Player1Username:     player1.Username,
		Player2Username:     player2.Username,
		MatchType:           p.MatchType,
		Score1:              p.Score1,
		Score2:              p.Score2,
		WinnerID:            winnerID,
		Status:              models.MatchStatusPending,
		Player1RatingBefore: player1.Rating,
		Player2RatingBefore: player2.Rating,
		SubmittedBy:         p.SubmittedBy,
		CreatedAt:           s.clock.Now().UTC(),
	}

	if err := s.matches.Create(ctx, match); err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	logger.Info("Match submitted",
		"matchId", match.ID,
		"player1", player1.Username,
		"player2", player2.Username,
		"matchType", match.MatchType,
		"winnerId", match.WinnerID,
	)

	if s.notifier != nil {
		s.notifier.MatchSubmitted(match)
	}

	return match, nil
}

// Confirm resolves a pending match. The rating deltas are computed from the
// ratings snapshotted at submission, so a rating change from an unrelated
// match between submission and confirmation does not affect the outcome.
// The resolution is one storage transaction: match row, both player rows.
func (s *MatchService) Confirm(ctx context.Context, matchID, confirmerID string) (*models.Match, error) {
	release, err := s.acquireResolveLock(ctx, matchID)
	if err != nil {
		return nil, err
	}
	defer release()

	match, err := s.loadPendingMatch(ctx, matchID, confirmerID)
	if err != nil {
		return nil, err
	}

	winnerRating := match.Player1RatingBefore
	loserRating := match.Player2RatingBefore
	if match.WinnerID == match.Player2ID {
		winnerRating, loserRating = loserRating, winnerRating
	}

	winnerDelta, loserDelta := s.elo.ComputeDelta(winnerRating, loserRating, match.MatchType)

	player1After := match.Player1RatingBefore + loserDelta
	player2After := match.Player2RatingBefore + winnerDelta
	if match.WinnerID == match.Player1ID {
		player1After = match.Player1RatingBefore + winnerDelta
		player2After = match.Player2RatingBefore + loserDelta
	}

	now := s.clock.Now().UTC()
	applied, err := s.matches.ApplyConfirmation(ctx, models.MatchConfirmation{
		MatchID:            match.ID,
		ConfirmedAt:        now,
		Player1ID:          match.Player1ID,
		Player2ID:          match.Player2ID,
		WinnerID:           match.WinnerID,
		Player1RatingAfter: player1After,
		Player2RatingAfter: player2After,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply confirmation: %w", err)
	}
	if !applied {
		// Someone else resolved the match between our read and the write.
		return nil, ErrMatchAlreadyResolved
	}

	match.Status = models.MatchStatusConfirmed
	match.ConfirmedAt = &now
	match.Player1RatingAfter = &player1After
	match.Player2RatingAfter = &player2After

	logger.Info("Match confirmed",
		"matchId", match.ID,
		"winnerId", match.WinnerID,
		"winnerDelta", winnerDelta,
		"loserDelta", loserDelta,
	)

	if s.notifier != nil {
		s.notifier.MatchResolved(match)
	}

	return match, nil
}

// Reject resolves a pending match without any rating change.
func (s *MatchService) Reject(ctx context.Context, matchID, rejecterID string) (*models.Match, error) {
	release, err := s.acquireResolveLock(ctx, matchID)
	if err != nil {
		return nil, err
	}
	defer release()

	match, err := s.loadPendingMatch(ctx, matchID, rejecterID)
	if err != nil {
		return nil, err
	}

	applied, err := s.matches.MarkRejected(ctx, match.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reject match: %w", err)
	}
	if !applied {
		return nil, ErrMatchAlreadyResolved
	}

	match.Status = models.MatchStatusRejected

	logger.Info("Match rejected", "matchId", match.ID, "rejectedBy", rejecterID)

	if s.notifier != nil {
		s.notifier.MatchResolved(match)
	}

	return match, nil
}

// GetByID returns a match by id.
func (s *MatchService) GetByID(ctx context.Context, id string) (*models.Match, error) {
	match, err := s.matches.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	if match == nil {
		return nil, ErrMatchNotFound
	}
	return match, nil
}

// PendingFor lists the matches awaiting playerID's confirmation.
func (s *MatchService) PendingFor(ctx context.Context, playerID string) ([]*models.Match, error) {
	matches, err := s.matches.FindPendingFor(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending matches: %w", err)
	}
	return matches, nil
}

// HistoryFor lists the player's confirmed matches, newest first.
func (s *MatchService) HistoryFor(ctx context.Context, playerID string, limit int) ([]*models.Match, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	matches, err := s.matches.FindConfirmedFor(ctx, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list match history: %w", err)
	}
	return matches, nil
}

// loadPendingMatch fetches the match and checks that it is pending and that
// actorID is entitled to resolve it (non-submitting participant or admin).
func (s *MatchService) loadPendingMatch(ctx context.Context, matchID, actorID string) (*models.Match, error) {
	match, err := s.matches.FindByID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to find match: %w", err)
	}
	if match == nil {
		return nil, ErrMatchNotFound
	}
	if match.Status != models.MatchStatusPending {
		return nil, ErrMatchAlreadyResolved
	}

	actor, err := s.players.FindByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to find resolving player: %w", err)
	}
	if actor == nil {
		return nil, ErrPlayerNotFound
	}

	entitled := actor.IsAdmin || (match.Involves(actor.ID) && match.SubmittedBy != actor.ID)
	if !entitled {
		return nil, ErrUnauthorized
	}

	return match, nil
}

// acquireResolveLock takes the per-match Redis lock when a lock manager is
// configured. The conditional status update in the store remains the source
// of truth; the lock only narrows the race window across instances.
func (s *MatchService) acquireResolveLock(ctx context.Context, matchID string) (func(), error) {
	if s.locks == nil {
		return func() {}, nil
	}

	lock, err := s.locks.TryLockWithRetry(ctx,
		"match:resolve:"+matchID, uuid.NewString(),
		resolveLockTTL, resolveLockRetries, resolveLockInterval)
	if err == distributed.ErrLockNotAcquired {
		return nil, ErrConfirmContended
	}
	if err != nil {
		return nil, fmt.Errorf("failed to acquire match lock: %w", err)
	}

	return func() {
		if err := lock.Release(context.Background()); err != nil {
			logger.Warn("Failed to release match lock", "matchId", matchID, "error", err)
		}
	}, nil
}
