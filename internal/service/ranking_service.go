package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/itbasis/go-clock"

	"github.com/pablozamit/elo-pool/internal/models"
)

// RankingService derives the ordered player table from confirmed matches.
// It is read-only and recomputes on every query; nothing is cached.
type RankingService struct {
	players PlayerStore
	matches MatchStore
	clock   clock.Clock
	window  time.Duration
}

// NewRankingService creates the projection. window is the trailing period
// over which rating and rank movement is reported.
func NewRankingService(players PlayerStore, matches MatchStore, clk clock.Clock, window time.Duration) *RankingService {
	if window <= 0 {
		window = 7 * 24 * time.Hour
	}
	return &RankingService{
		players: players,
		matches: matches,
		clock:   clk,
		window:  window,
	}
}

// ComputeRankings returns the current standings: active non-admin players
// ordered by rating descending, with per-player rating and rank movement
// over the trailing window.
func (s *RankingService) ComputeRankings(ctx context.Context) ([]models.RankingEntry, error) {
	players, err := s.players.ListRanked(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	since := s.clock.Now().UTC().Add(-s.window)
	recent, err := s.matches.FindConfirmedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent matches: %w", err)
	}

	return projectRankings(players, recent), nil
}

// statsHistoryLimit bounds how many confirmed matches feed the detailed
// statistics view.
const statsHistoryLimit = 500

// PlayerStats returns the detailed statistics view for one player: streaks,
// per-type records, trailing-period records and rating progression.
func (s *RankingService) PlayerStats(ctx context.Context, playerID string) (*models.PlayerStats, error) {
	player, err := s.players.FindByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find player: %w", err)
	}
	if player == nil {
		return nil, ErrPlayerNotFound
	}

	matches, err := s.matches.FindConfirmedFor(ctx, playerID, statsHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmed matches: %w", err)
	}

	return computePlayerStats(player, matches, s.clock.Now().UTC()), nil
}

// RankInfo locates the player inside the current standings and reports the
// percentile of players at or below their rank. Admins and deactivated
// accounts are outside the ranking and get rank 0.
func (s *RankingService) RankInfo(ctx context.Context, playerID string) (*models.RankInfo, error) {
	player, err := s.players.FindByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find player: %w", err)
	}
	if player == nil {
		return nil, ErrPlayerNotFound
	}

	ranked, err := s.players.ListRanked(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ranked players: %w", err)
	}

	rank := 0
	for i, p := range ranked {
		if p.ID == playerID {
			rank = i + 1
			break
		}
	}

	percentile := 0.0
	if rank > 0 {
		percentile = round1(float64(len(ranked)-rank+1) / float64(len(ranked)) * 100)
	}

	return &models.RankInfo{
		Rank:         rank,
		TotalPlayers: len(ranked),
		Percentile:   percentile,
		Rating:       round1(player.Rating),
	}, nil
}

// computePlayerStats is the pure core of the statistics view. Streaks are
// runs of wins in confirmation order; the current streak counts back from
// the most recent match and is 0 when that match was lost.
func computePlayerStats(player *models.Player, matches []*models.Match, now time.Time) *models.PlayerStats {
	stats := &models.PlayerStats{
		PlayerID:     player.ID,
		TotalMatches: len(matches),
		ByType:       make(map[models.MatchType]models.TypeRecord),
		Rating:       round1(player.Rating),
		RatingChange: round1(player.Rating - models.InitialRating),
	}

	ordered := make([]*models.Match, len(matches))
	copy(ordered, matches)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ConfirmedAt.Before(*ordered[j].ConfirmedAt)
	})

	opponents := make(map[string]struct{})
	streak := 0
	for _, m := range ordered {
		opponents[m.Opponent(player.ID)] = struct{}{}

		record := stats.ByType[m.MatchType]
		record.Played++

		if m.WinnerID == player.ID {
			stats.TotalWins++
			record.Won++
			streak++
			if streak > stats.BestStreak {
				stats.BestStreak = streak
			}
		} else {
			streak = 0
		}
		stats.ByType[m.MatchType] = record
	}
	stats.UniqueOpponents = len(opponents)

	for i := len(ordered) - 1; i >= 0; i-- {
		if ordered[i].WinnerID != player.ID {
			break
		}
		stats.CurrentStreak++
	}

	if stats.TotalMatches > 0 {
		stats.WinRate = round1(float64(stats.TotalWins) / float64(stats.TotalMatches) * 100)
	}

	stats.ThisWeek = periodStats(ordered, player.ID, now.Add(-7*24*time.Hour))
	stats.ThisMonth = periodStats(ordered, player.ID, now.Add(-30*24*time.Hour))

	return stats
}

func periodStats(matches []*models.Match, playerID string, since time.Time) models.PeriodStats {
	var period models.PeriodStats
	for _, m := range matches {
		if m.ConfirmedAt == nil || m.ConfirmedAt.Before(since) {
			continue
		}
		period.Matches++
		if m.WinnerID == playerID {
			period.Wins++
		}
	}
	if period.Matches > 0 {
		period.WinRate = round1(float64(period.Wins) / float64(period.Matches) * 100)
	}
	return period
}

// projectRankings is the pure core of the projection.
//
// Rank movement is computed by replaying the window backwards: each player's
// rank before the window is their position when sorted by rating minus the
// window's accumulated delta. RankDelta is positive when the player climbed.
func projectRankings(players []*models.Player, recent []*models.Match) []models.RankingEntry {
	deltas := make(map[string]float64, len(players))
	for _, m := range recent {
		deltas[m.Player1ID] += m.RatingChange(m.Player1ID)
		deltas[m.Player2ID] += m.RatingChange(m.Player2ID)
	}

	// Players arrive sorted by current rating; the previous ranking needs
	// its own ordering on the rewound ratings.
	type rewound struct {
		id     string
		rating float64
	}
	previous := make([]rewound, len(players))
	for i, p := range players {
		previous[i] = rewound{id: p.ID, rating: p.Rating - deltas[p.ID]}
	}
	sort.SliceStable(previous, func(i, j int) bool {
		if previous[i].rating != previous[j].rating {
			return previous[i].rating > previous[j].rating
		}
		return previous[i].id < previous[j].id
	})
	previousRank := make(map[string]int, len(previous))
	for i, r := range previous {
		previousRank[r.id] = i + 1
	}

	entries := make([]models.RankingEntry, 0, len(players))
	for i, p := range players {
		rank := i + 1
		entries = append(entries, models.RankingEntry{
			Rank:          rank,
			PlayerID:      p.ID,
			Username:      p.Username,
			Rating:        round1(p.Rating),
			MatchesPlayed: p.MatchesPlayed,
			MatchesWon:    p.MatchesWon,
			WinRate:       round1(p.WinRate()),
			RatingDelta:   round1(deltas[p.ID]),
			RankDelta:     previousRank[p.ID] - rank,
		})
	}
	return entries
}

// round1 rounds to one decimal for display. The stored ratings stay
// unrounded.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
