package models

// RankingEntry is one row of the computed ranking table. RatingDelta is the
// sum of the player's rating changes over the trailing window; RankDelta is
// positive when the player climbed within that window.
type RankingEntry struct {
	Rank          int     `json:"rank"`
	PlayerID      string  `json:"playerId"`
	Username      string  `json:"username"`
	Rating        float64 `json:"rating"`
	MatchesPlayed int     `json:"matchesPlayed"`
	MatchesWon    int     `json:"matchesWon"`
	WinRate       float64 `json:"winRate"`
	RatingDelta   float64 `json:"ratingDelta"`
	RankDelta     int     `json:"rankDelta"`
}

// TypeRecord is a player's record within one match type.
type TypeRecord struct {
	Played int `json:"played"`
	Won    int `json:"won"`
}

// PeriodStats is a player's record over a trailing period.
type PeriodStats struct {
	Matches int     `json:"matches"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"winRate"`
}

// PlayerStats is the detailed statistics view of one player's confirmed
// matches.
type PlayerStats struct {
	PlayerID        string                   `json:"playerId"`
	TotalMatches    int                      `json:"totalMatches"`
	TotalWins       int                      `json:"totalWins"`
	WinRate         float64                  `json:"winRate"`
	CurrentStreak   int                      `json:"currentStreak"`
	BestStreak      int                      `json:"bestStreak"`
	UniqueOpponents int                      `json:"uniqueOpponents"`
	ByType          map[MatchType]TypeRecord `json:"byType"`
	ThisWeek        PeriodStats              `json:"thisWeek"`
	ThisMonth       PeriodStats              `json:"thisMonth"`
	Rating          float64                  `json:"rating"`
	RatingChange    float64                  `json:"ratingChange"`
}

// RankInfo locates a player inside the current standings. Rank is 0 for
// players outside the ranking (admins, deactivated accounts).
type RankInfo struct {
	Rank         int     `json:"rank"`
	TotalPlayers int     `json:"totalPlayers"`
	Percentile   float64 `json:"percentile"`
	Rating       float64 `json:"rating"`
}
