package service

import (
	"math"

	"github.com/pablozamit/elo-pool/internal/models"
)

// baseKFactor is scaled by the match type weight to form the effective K.
const baseKFactor = 32.0

// matchTypeWeights reflect the stakes of each competition. The values are
// fixed club policy, not tunables.
var matchTypeWeights = map[models.MatchType]float64{
	models.MatchTypeReyMesa:     1.0,
	models.MatchTypeTorneo:      1.5,
	models.MatchTypeLigaGrupos:  2.0,
	models.MatchTypeLigaFinales: 2.5,
}

// ELOService computes rating deltas for confirmed results. It is a pure
// calculator: no storage, no rounding, deterministic given its inputs.
// Callers decide display precision.
type ELOService struct{}

func NewELOService() *ELOService {
	return &ELOService{}
}

// KFactor returns the effective K for a match type (base 32 times weight).
// Unknown types fall back to the rey_mesa weight.
func (s *ELOService) KFactor(matchType models.MatchType) float64 {
	w, ok := matchTypeWeights[matchType]
	if !ok {
		w = 1.0
	}
	return baseKFactor * w
}

// ComputeDelta returns the rating change for the winner and the loser of a
// match. winnerDelta is always positive, loserDelta always negative.
//
// The two expectations are evaluated independently with mirrored exponents
// rather than deriving expectedLoser as 1-expectedWinner; the results are
// mathematically complementary, so the deltas are symmetric up to floating
// point rounding.
func (s *ELOService) ComputeDelta(winnerRating, loserRating float64, matchType models.MatchType) (winnerDelta, loserDelta float64) {
	k := s.KFactor(matchType)

	expectedWinner := expectedScore(winnerRating, loserRating)
	expectedLoser := expectedScore(loserRating, winnerRating)

	winnerDelta = k * (1 - expectedWinner)
	loserDelta = k * (0 - expectedLoser)
	return winnerDelta, loserDelta
}

// expectedScore is the standard Elo win expectation of a against b.
func expectedScore(a, b float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (b-a)/400.0))
}
