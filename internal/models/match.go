package models

import "time"

type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusConfirmed MatchStatus = "confirmed"
	MatchStatusRejected  MatchStatus = "rejected"
)

// MatchType identifies the competition a result was played in. The string
// values are wire-stable; clients and the database use them as is.
type MatchType string

const (
	MatchTypeReyMesa     MatchType = "rey_mesa"
	MatchTypeTorneo      MatchType = "torneo"
	MatchTypeLigaGrupos  MatchType = "liga_grupos"
	MatchTypeLigaFinales MatchType = "liga_finales"
)

// Valid reports whether t is one of the four known match types.
func (t MatchType) Valid() bool {
	switch t {
	case MatchTypeReyMesa, MatchTypeTorneo, MatchTypeLigaGrupos, MatchTypeLigaFinales:
		return true
	}
	return false
}

// Match is one reported result. Both players' ratings are snapshotted at
// submission time; the RatingAfter fields stay nil until the match is
// confirmed. Confirmed and rejected matches are immutable and never deleted.
type Match struct {
	ID                  string      `json:"id" db:"id"`
	Player1ID           string      `json:"player1Id" db:"player1_id"`
	Player2ID           string      `json:"player2Id" db:"player2_id"`
	Player1Username     string      `json:"player1Username" db:"player1_username"`
	Player2Username     string      `json:"player2Username" db:"player2_username"`
	MatchType           MatchType   `json:"matchType" db:"match_type"`
	Score1              int         `json:"score1" db:"score1"`
	Score2              int         `json:"score2" db:"score2"`
	WinnerID            string      `json:"winnerId" db:"winner_id"`
	Status              MatchStatus `json:"status" db:"status"`
	Player1RatingBefore float64     `json:"player1RatingBefore" db:"player1_rating_before"`
	Player2RatingBefore float64     `json:"player2RatingBefore" db:"player2_rating_before"`
	Player1RatingAfter  *float64    `json:"player1RatingAfter,omitempty" db:"player1_rating_after"`
	Player2RatingAfter  *float64    `json:"player2RatingAfter,omitempty" db:"player2_rating_after"`
	SubmittedBy         string      `json:"submittedBy" db:"submitted_by"`
	CreatedAt           time.Time   `json:"createdAt" db:"created_at"`
	ConfirmedAt         *time.Time  `json:"confirmedAt,omitempty" db:"confirmed_at"`
}

// Involves reports whether playerID is one of the two participants.
func (m *Match) Involves(playerID string) bool {
	return playerID == m.Player1ID || playerID == m.Player2ID
}

// Opponent returns the other participant's id, or "" if playerID is not
// part of the match.
func (m *Match) Opponent(playerID string) string {
	switch playerID {
	case m.Player1ID:
		return m.Player2ID
	case m.Player2ID:
		return m.Player1ID
	}
	return ""
}

// RatingChange returns the confirmed rating delta for playerID. It is 0 for
// a match that is not confirmed or does not involve the player.
func (m *Match) RatingChange(playerID string) float64 {
	if m.Status != MatchStatusConfirmed {
		return 0
	}
	switch {
	case playerID == m.Player1ID && m.Player1RatingAfter != nil:
		return *m.Player1RatingAfter - m.Player1RatingBefore
	case playerID == m.Player2ID && m.Player2RatingAfter != nil:
		return *m.Player2RatingAfter - m.Player2RatingBefore
	}
	return 0
}

type SubmitMatchRequest struct {
	OpponentUsername string    `json:"opponentUsername" binding:"required"`
	MatchType        MatchType `json:"matchType" binding:"required"`
	OwnScore         int       `json:"ownScore" binding:"min=0"`
	OpponentScore    int       `json:"opponentScore" binding:"min=0"`
}

// MatchConfirmation is everything the store needs to apply a confirmed
// result atomically: the match row update plus both player row updates.
type MatchConfirmation struct {
	MatchID            string
	ConfirmedAt        time.Time
	Player1ID          string
	Player2ID          string
	WinnerID           string
	Player1RatingAfter float64
	Player2RatingAfter float64
}
