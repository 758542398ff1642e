package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/itbasis/go-clock"

	"github.com/pablozamit/elo-pool/internal/models"
)

func newTestMatchService(players ...*models.Player) (*MatchService, *fakePlayerStore, *fakeMatchStore, *clock.Mock) {
	playerStore := newFakePlayerStore(players...)
	matchStore := newFakeMatchStore(playerStore)
	mock := clock.NewMock()
	mock.Set(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	svc := NewMatchService(playerStore, matchStore, NewELOService(), mock)
	return svc, playerStore, matchStore, mock
}

func activePlayer(id, username string, rating float64) *models.Player {
	return &models.Player{
		ID:       id,
		Username: username,
		Rating:   rating,
		IsActive: true,
	}
}

func TestMatchService_Submit(t *testing.T) {
	ana := activePlayer("p1", "ana", 1250)
	bruno := activePlayer("p2", "bruno", 1180)

	svc, _, matchStore, mock := newTestMatchService(ana, bruno)

	match, err := svc.Submit(context.Background(), SubmitParams{
		Player1ID:   "p1",
		Player2ID:   "p2",
		MatchType:   models.MatchTypeTorneo,
		Score1:      7,
		Score2:      4,
		SubmittedBy: "p1",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if match.Status != models.MatchStatusPending {
		t.Errorf("status = %s, want pending", match.Status)
	}
	if match.WinnerID != "p1" {
		t.Errorf("winnerId = %s, want p1", match.WinnerID)
	}
	if match.Player1RatingBefore != 1250 || match.Player2RatingBefore != 1180 {
		t.Errorf("rating snapshots = %v/%v, want 1250/1180",
			match.Player1RatingBefore, match.Player2RatingBefore)
	}
	if match.Player1RatingAfter != nil || match.Player2RatingAfter != nil {
		t.Error("after ratings must stay unset until confirmation")
	}
	if !match.CreatedAt.Equal(mock.Now().UTC()) {
		t.Errorf("createdAt = %v, want %v", match.CreatedAt, mock.Now().UTC())
	}

	stored, _ := matchStore.FindByID(context.Background(), match.ID)
	if stored == nil {
		t.Fatal("match was not persisted")
	}
}

func TestMatchService_Submit_Validation(t *testing.T) {
	ana := activePlayer("p1", "ana", 1200)
	bruno := activePlayer("p2", "bruno", 1200)
	inactive := &models.Player{ID: "p3", Username: "carla", Rating: 1200, IsActive: false}

	svc, _, matchStore, _ := newTestMatchService(ana, bruno, inactive)

	tests := []struct {
		name        string
		params      SubmitParams
		expectedErr error
	}{
		{
			name: "Self match",
			params: SubmitParams{
				Player1ID: "p1", Player2ID: "p1",
				MatchType: models.MatchTypeReyMesa,
				Score1:    7, Score2: 3, SubmittedBy: "p1",
			},
			expectedErr: ErrSelfMatch,
		},
		{
			name: "Tied score",
			params: SubmitParams{
				Player1ID: "p1", Player2ID: "p2",
				MatchType: models.MatchTypeReyMesa,
				Score1:    5, Score2: 5, SubmittedBy: "p1",
			},
			expectedErr: ErrTiedScore,
		},
		{
			name: "Unknown match type",
			params: SubmitParams{
				Player1ID: "p1", Player2ID: "p2",
				MatchType: models.MatchType("amistoso"),
				Score1:    7, Score2: 3, SubmittedBy: "p1",
			},
			expectedErr: ErrInvalidMatchType,
		},
		{
			name: "Submitter not involved",
			params: SubmitParams{
				Player1ID: "p1", Player2ID: "p2",
				MatchType: models.MatchTypeReyMesa,
				Score1:    7, Score2: 3, SubmittedBy: "p3",
			},
			expectedErr: ErrInvalidInput,
		},
		{
			name: "Unknown opponent",
			params: SubmitParams{
				Player1ID: "p1", Player2ID: "ghost",
				MatchType: models.MatchTypeReyMesa,
				Score1:    7, Score2: 3, SubmittedBy: "p1",
			},
			expectedErr: ErrPlayerNotFound,
		},
		{
			name: "Inactive opponent",
			params: SubmitParams{
				Player1ID: "p1", Player2ID: "p3",
				MatchType: models.MatchTypeReyMesa,
				Score1:    7, Score2: 3, SubmittedBy: "p1",
			},
			expectedErr: ErrPlayerInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tt.params)
			if !errors.Is(err, tt.expectedErr) {
				t.Errorf("Submit() error = %v, want %v", err, tt.expectedErr)
			}
		})
	}

	if len(matchStore.matches) != 0 {
		t.Errorf("rejected submissions must not persist, found %d matches", len(matchStore.matches))
	}
}

func TestMatchService_Confirm(t *testing.T) {
	ana := activePlayer("p1", "ana", 1250)
	bruno := activePlayer("p2", "bruno", 1180)

	svc, playerStore, _, mock := newTestMatchService(ana, bruno)
	ctx := context.Background()

	match, err := svc.Submit(ctx, SubmitParams{
		Player1ID: "p1", Player2ID: "p2",
		MatchType: models.MatchTypeReyMesa,
		Score1:    7, Score2: 5, SubmittedBy: "p1",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	mock.Add(2 * time.Hour)

	confirmed, err := svc.Confirm(ctx, match.ID, "p2")
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	if confirmed.Status != models.MatchStatusConfirmed {
		t.Errorf("status = %s, want confirmed", confirmed.Status)
	}
	if confirmed.ConfirmedAt == nil || !confirmed.ConfirmedAt.Equal(mock.Now().UTC()) {
		t.Errorf("confirmedAt = %v, want %v", confirmed.ConfirmedAt, mock.Now().UTC())
	}

	winnerDelta, loserDelta := NewELOService().ComputeDelta(1250, 1180, models.MatchTypeReyMesa)

	p1, _ := playerStore.FindByID(ctx, "p1")
	p2, _ := playerStore.FindByID(ctx, "p2")

	if math.Abs(p1.Rating-(1250+winnerDelta)) > 1e-9 {
		t.Errorf("winner rating = %v, want %v", p1.Rating, 1250+winnerDelta)
	}
	if math.Abs(p2.Rating-(1180+loserDelta)) > 1e-9 {
		t.Errorf("loser rating = %v, want %v", p2.Rating, 1180+loserDelta)
	}
	if p1.MatchesPlayed != 1 || p1.MatchesWon != 1 {
		t.Errorf("winner stats = %d played / %d won, want 1/1", p1.MatchesPlayed, p1.MatchesWon)
	}
	if p2.MatchesPlayed != 1 || p2.MatchesWon != 0 {
		t.Errorf("loser stats = %d played / %d won, want 1/0", p2.MatchesPlayed, p2.MatchesWon)
	}
}

func TestMatchService_Confirm_UsesRatingSnapshots(t *testing.T) {
	ana := activePlayer("p1", "ana", 1200)
	bruno := activePlayer("p2", "bruno", 1200)

	svc, playerStore, _, _ := newTestMatchService(ana, bruno)
	ctx := context.Background()

	match, err := svc.Submit(ctx, SubmitParams{
		Player1ID: "p1", Player2ID: "p2",
		MatchType: models.MatchTypeReyMesa,
		Score1:    7, Score2: 5, SubmittedBy: "p1",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	// An unrelated rating change between submission and confirmation must
	// not leak into this match's outcome.
	newRating := 1500.0
	if _, err := playerStore.Update(ctx, "p1", models.AdminPlayerUpdate{Rating: &newRating}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	confirmed, err := svc.Confirm(ctx, match.ID, "p2")
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	winnerDelta, _ := NewELOService().ComputeDelta(1200, 1200, models.MatchTypeReyMesa)
	if math.Abs(*confirmed.Player1RatingAfter-(1200+winnerDelta)) > 1e-9 {
		t.Errorf("after rating = %v, want snapshot-based %v",
			*confirmed.Player1RatingAfter, 1200+winnerDelta)
	}
}

func TestMatchService_Confirm_Authorization(t *testing.T) {
	ana := activePlayer("p1", "ana", 1200)
	bruno := activePlayer("p2", "bruno", 1200)
	carla := activePlayer("p3", "carla", 1200)
	admin := &models.Player{ID: "a1", Username: "admin", Rating: 1200, IsAdmin: true, IsActive: true}

	tests := []struct {
		name        string
		confirmerID string
		expectedErr error
	}{
		{
			name:        "Submitter cannot confirm own report",
			confirmerID: "p1",
			expectedErr: ErrUnauthorized,
		},
		{
			name:        "Uninvolved player cannot confirm",
			confirmerID: "p3",
			expectedErr: ErrUnauthorized,
		},
		{
			name:        "Opponent can confirm",
			confirmerID: "p2",
		},
		{
			name:        "Admin can confirm",
			confirmerID: "a1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, _ := newTestMatchService(ana, bruno, carla, admin)
			ctx := context.Background()

			match, err := svc.Submit(ctx, SubmitParams{
				Player1ID: "p1", Player2ID: "p2",
				MatchType: models.MatchTypeReyMesa,
				Score1:    7, Score2: 5, SubmittedBy: "p1",
			})
			if err != nil {
				t.Fatalf("Submit failed: %v", err)
			}

			_, err = svc.Confirm(ctx, match.ID, tt.confirmerID)
			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Errorf("Confirm() error = %v, want %v", err, tt.expectedErr)
				}
				return
			}
			if err != nil {
				t.Errorf("Confirm() unexpected error: %v", err)
			}
		})
	}
}

func TestMatchService_Confirm_AlreadyResolved(t *testing.T) {
	ana := activePlayer("p1", "ana", 1200)
	bruno := activePlayer("p2", "bruno", 1200)

	svc, playerStore, _, _ := newTestMatchService(ana, bruno)
	ctx := context.Background()

	match, err := svc.Submit(ctx, SubmitParams{
		Player1ID: "p1", Player2ID: "p2",
		MatchType: models.MatchTypeLigaFinales,
		Score1:    3, Score2: 7, SubmittedBy: "p1",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if _, err := svc.Confirm(ctx, match.ID, "p2"); err != nil {
		t.Fatalf("first Confirm failed: %v", err)
	}

	if _, err := svc.Confirm(ctx, match.ID, "p2"); !errors.Is(err, ErrMatchAlreadyResolved) {
		t.Errorf("second Confirm error = %v, want %v", err, ErrMatchAlreadyResolved)
	}
	if _, err := svc.Reject(ctx, match.ID, "p2"); !errors.Is(err, ErrMatchAlreadyResolved) {
		t.Errorf("Reject after confirm error = %v, want %v", err, ErrMatchAlreadyResolved)
	}

	// Stats moved exactly once.
	p2, _ := playerStore.FindByID(ctx, "p2")
	if p2.MatchesPlayed != 1 || p2.MatchesWon != 1 {
		t.Errorf("winner stats = %d played / %d won, want 1/1", p2.MatchesPlayed, p2.MatchesWon)
	}
}

func TestMatchService_Reject(t *testing.T) {
	ana := activePlayer("p1", "ana", 1321.5)
	bruno := activePlayer("p2", "bruno", 1187)

	svc, playerStore, _, _ := newTestMatchService(ana, bruno)
	ctx := context.Background()

	match, err := svc.Submit(ctx, SubmitParams{
		Player1ID: "p1", Player2ID: "p2",
		MatchType: models.MatchTypeTorneo,
		Score1:    7, Score2: 6, SubmittedBy: "p1",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	rejected, err := svc.Reject(ctx, match.ID, "p2")
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if rejected.Status != models.MatchStatusRejected {
		t.Errorf("status = %s, want rejected", rejected.Status)
	}

	p1, _ := playerStore.FindByID(ctx, "p1")
	p2, _ := playerStore.FindByID(ctx, "p2")
	if p1.Rating != 1321.5 || p2.Rating != 1187 {
		t.Errorf("rejection must not move ratings, got %v/%v", p1.Rating, p2.Rating)
	}
	if p1.MatchesPlayed != 0 || p2.MatchesPlayed != 0 {
		t.Error("rejection must not count as a played match")
	}

	if _, err := svc.Confirm(ctx, match.ID, "p2"); !errors.Is(err, ErrMatchAlreadyResolved) {
		t.Errorf("Confirm after reject error = %v, want %v", err, ErrMatchAlreadyResolved)
	}
}

func TestMatchService_PendingFor(t *testing.T) {
	ana := activePlayer("p1", "ana", 1200)
	bruno := activePlayer("p2", "bruno", 1200)
	carla := activePlayer("p3", "carla", 1200)

	svc, _, _, mock := newTestMatchService(ana, bruno, carla)
	ctx := context.Background()

	submitted, err := svc.Submit(ctx, SubmitParams{
		Player1ID: "p1", Player2ID: "p2",
		MatchType: models.MatchTypeReyMesa,
		Score1:    7, Score2: 2, SubmittedBy: "p1",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	mock.Add(time.Minute)
	if _, err := svc.Submit(ctx, SubmitParams{
		Player1ID: "p2", Player2ID: "p3",
		MatchType: models.MatchTypeReyMesa,
		Score1:    7, Score2: 1, SubmittedBy: "p2",
	}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	// Bruno only sees the match Ana reported, not his own submission.
	pending, err := svc.PendingFor(ctx, "p2")
	if err != nil {
		t.Fatalf("PendingFor failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending count = %d, want 1", len(pending))
	}
	if pending[0].ID != submitted.ID {
		t.Errorf("pending match = %s, want %s", pending[0].ID, submitted.ID)
	}

	// Ana submitted her only match, so her inbox is empty.
	pending, err = svc.PendingFor(ctx, "p1")
	if err != nil {
		t.Fatalf("PendingFor failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending count = %d, want 0", len(pending))
	}
}

func TestMatchService_HistoryFor(t *testing.T) {
	ana := activePlayer("p1", "ana", 1200)
	bruno := activePlayer("p2", "bruno", 1200)

	svc, _, _, mock := newTestMatchService(ana, bruno)
	ctx := context.Background()

	var lastConfirmed string
	for i := 0; i < 3; i++ {
		match, err := svc.Submit(ctx, SubmitParams{
			Player1ID: "p1", Player2ID: "p2",
			MatchType: models.MatchTypeReyMesa,
			Score1:    7, Score2: 4, SubmittedBy: "p1",
		})
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		mock.Add(time.Hour)
		if _, err := svc.Confirm(ctx, match.ID, "p2"); err != nil {
			t.Fatalf("Confirm failed: %v", err)
		}
		lastConfirmed = match.ID
		mock.Add(time.Hour)
	}

	history, err := svc.HistoryFor(ctx, "p1", 10)
	if err != nil {
		t.Fatalf("HistoryFor failed: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("history count = %d, want 3", len(history))
	}
	if history[0].ID != lastConfirmed {
		t.Errorf("history must be newest first, got %s, want %s", history[0].ID, lastConfirmed)
	}

	limited, err := svc.HistoryFor(ctx, "p1", 2)
	if err != nil {
		t.Fatalf("HistoryFor failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limited history count = %d, want 2", len(limited))
	}
}

type recordingNotifier struct {
	submitted []string
	resolved  []string
}

func (n *recordingNotifier) MatchSubmitted(match *models.Match) {
	n.submitted = append(n.submitted, match.ID)
}

func (n *recordingNotifier) MatchResolved(match *models.Match) {
	n.resolved = append(n.resolved, match.ID)
}

func TestMatchService_Notifications(t *testing.T) {
	ana := activePlayer("p1", "ana", 1200)
	bruno := activePlayer("p2", "bruno", 1200)

	svc, _, _, _ := newTestMatchService(ana, bruno)
	notifier := &recordingNotifier{}
	svc.SetNotifier(notifier)
	ctx := context.Background()

	match, err := svc.Submit(ctx, SubmitParams{
		Player1ID: "p1", Player2ID: "p2",
		MatchType: models.MatchTypeReyMesa,
		Score1:    7, Score2: 0, SubmittedBy: "p1",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, err := svc.Confirm(ctx, match.ID, "p2"); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	if len(notifier.submitted) != 1 || notifier.submitted[0] != match.ID {
		t.Errorf("submitted notifications = %v, want [%s]", notifier.submitted, match.ID)
	}
	if len(notifier.resolved) != 1 || notifier.resolved[0] != match.ID {
		t.Errorf("resolved notifications = %v, want [%s]", notifier.resolved, match.ID)
	}
}
