package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/pablozamit/elo-pool/internal/models"
)

// fakePlayerStore is an in-memory PlayerStore for service tests.
type fakePlayerStore struct {
	players map[string]*models.Player
}

func newFakePlayerStore(players ...*models.Player) *fakePlayerStore {
	s := &fakePlayerStore{players: make(map[string]*models.Player)}
	for _, p := range players {
		copied := *p
		s.players[p.ID] = &copied
	}
	return s
}

func (s *fakePlayerStore) Create(_ context.Context, player *models.Player) error {
	copied := *player
	s.players[player.ID] = &copied
	return nil
}

func (s *fakePlayerStore) FindByID(_ context.Context, id string) (*models.Player, error) {
	p, ok := s.players[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (s *fakePlayerStore) FindByUsername(_ context.Context, username string) (*models.Player, error) {
	for _, p := range s.players {
		if strings.EqualFold(p.Username, username) {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakePlayerStore) Search(_ context.Context, query, excludeID string, limit int) ([]*models.Player, error) {
	var out []*models.Player
	for _, p := range s.players {
		if p.ID == excludeID || !p.IsActive {
			continue
		}
		if strings.Contains(strings.ToLower(p.Username), strings.ToLower(query)) {
			copied := *p
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakePlayerStore) ListRanked(_ context.Context) ([]*models.Player, error) {
	var out []*models.Player
	for _, p := range s.players {
		if !p.IsActive || p.IsAdmin {
			continue
		}
		copied := *p
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *fakePlayerStore) ListAll(_ context.Context) ([]*models.Player, error) {
	var out []*models.Player
	for _, p := range s.players {
		copied := *p
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *fakePlayerStore) Update(_ context.Context, id string, upd models.AdminPlayerUpdate) (*models.Player, error) {
	p, ok := s.players[id]
	if !ok {
		return nil, nil
	}
	if upd.Rating != nil {
		p.Rating = *upd.Rating
	}
	if upd.IsActive != nil {
		p.IsActive = *upd.IsActive
	}
	if upd.IsAdmin != nil {
		p.IsAdmin = *upd.IsAdmin
	}
	copied := *p
	return &copied, nil
}

// fakeMatchStore is an in-memory MatchStore. ApplyConfirmation mirrors the
// real store's conditional update: it only applies while the match is
// pending, and mutates both player rows alongside the match row.
type fakeMatchStore struct {
	players *fakePlayerStore
	matches map[string]*models.Match
}

func newFakeMatchStore(players *fakePlayerStore) *fakeMatchStore {
	return &fakeMatchStore{
		players: players,
		matches: make(map[string]*models.Match),
	}
}

func (s *fakeMatchStore) Create(_ context.Context, match *models.Match) error {
	copied := *match
	s.matches[match.ID] = &copied
	return nil
}

func (s *fakeMatchStore) FindByID(_ context.Context, id string) (*models.Match, error) {
	m, ok := s.matches[id]
	if !ok {
		return nil, nil
	}
	copied := *m
	return &copied, nil
}

func (s *fakeMatchStore) FindPendingFor(_ context.Context, playerID string) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range s.matches {
		if m.Status == models.MatchStatusPending && m.Involves(playerID) && m.SubmittedBy != playerID {
			copied := *m
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeMatchStore) FindConfirmedFor(_ context.Context, playerID string, limit int) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range s.matches {
		if m.Status == models.MatchStatusConfirmed && m.Involves(playerID) {
			copied := *m
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConfirmedAt.After(*out[j].ConfirmedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeMatchStore) FindConfirmedSince(_ context.Context, since time.Time) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range s.matches {
		if m.Status == models.MatchStatusConfirmed && m.ConfirmedAt != nil && !m.ConfirmedAt.Before(since) {
			copied := *m
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConfirmedAt.Before(*out[j].ConfirmedAt) })
	return out, nil
}

func (s *fakeMatchStore) ApplyConfirmation(_ context.Context, conf models.MatchConfirmation) (bool, error) {
	m, ok := s.matches[conf.MatchID]
	if !ok || m.Status != models.MatchStatusPending {
		return false, nil
	}

	confirmedAt := conf.ConfirmedAt
	p1After := conf.Player1RatingAfter
	p2After := conf.Player2RatingAfter
	m.Status = models.MatchStatusConfirmed
	m.ConfirmedAt = &confirmedAt
	m.Player1RatingAfter = &p1After
	m.Player2RatingAfter = &p2After

	s.applyPlayerResult(conf.Player1ID, p1After, conf.WinnerID == conf.Player1ID)
	s.applyPlayerResult(conf.Player2ID, p2After, conf.WinnerID == conf.Player2ID)
	return true, nil
}

func (s *fakeMatchStore) applyPlayerResult(playerID string, rating float64, won bool) {
	p, ok := s.players.players[playerID]
	if !ok {
		return
	}
	p.Rating = rating
	p.MatchesPlayed++
	if won {
		p.MatchesWon++
	}
}

func (s *fakeMatchStore) MarkRejected(_ context.Context, matchID string) (bool, error) {
	m, ok := s.matches[matchID]
	if !ok || m.Status != models.MatchStatusPending {
		return false, nil
	}
	m.Status = models.MatchStatusRejected
	return true, nil
}
