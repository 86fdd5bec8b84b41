// Package count computes the card-counting signal from the composition of
// the remaining shoe.
package count

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/lox/shoeaxis/internal/shoe"
	"github.com/samber/lo"
)

// MinDecksRemaining floors the true-count divisor so the count does not
// blow up as the shoe empties.
const MinDecksRemaining = 0.5

// Weights assigns a signed weight to each rank. Negative weights mark ranks
// whose presence favours the player; positive weights favour the banker.
type Weights [shoe.NumRanks]float64

// DefaultWeights is the standard effect-of-removal table.
var DefaultWeights = Weights{
	0: 0.2,
	1: -0.6,
	2: -0.4,
	3: -0.7,
	4: -1.2,
	5: 0.8,
	6: 0.6,
	7: 0.3,
	8: 0.1,
	9: -0.1,
}

// Running sums the weights of every card still in the shoe.
func (w Weights) Running(s *shoe.Shoe) float64 {
	if s == nil {
		return 0
	}
	counts := s.Counts()
	total := 0.0
	for r, n := range counts {
		total += w[r] * float64(n)
	}
	return total
}

// TrueCount normalises the running count by the decks remaining, floored
// at MinDecksRemaining.
func (w Weights) TrueCount(s *shoe.Shoe) float64 {
	if s == nil {
		return 0
	}
	decks := max(float64(s.Len())/shoe.CardsPerDeck, MinDecksRemaining)
	return w.Running(s) / decks
}

// RunningCount uses DefaultWeights.
func RunningCount(s *shoe.Shoe) float64 {
	return DefaultWeights.Running(s)
}

// TrueCount uses DefaultWeights.
func TrueCount(s *shoe.Shoe) float64 {
	return DefaultWeights.TrueCount(s)
}

// WeightsFromMap overlays weights keyed by rank digit ("0".."9") onto
// DefaultWeights.
func WeightsFromMap(m map[string]float64) (Weights, error) {
	w := DefaultWeights
	keys := lo.Keys(m)
	slices.Sort(keys)
	for _, k := range keys {
		r, err := strconv.Atoi(k)
		if err != nil || r < 0 || r >= shoe.NumRanks {
			return Weights{}, fmt.Errorf("%w: weight key %q", shoe.ErrInvalidRank, k)
		}
		w[r] = m[k]
	}
	return w, nil
}
