package count

import (
	"testing"

	"github.com/lox/shoeaxis/internal/randutil"
	"github.com/lox/shoeaxis/internal/shoe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunningCountUsesRemainingCards(t *testing.T) {
	s := shoe.FromRanks(shoe.MustParseRanks("45"))
	assert.InDelta(t, -1.2+0.8, RunningCount(s), 1e-9)

	s = shoe.FromRanks(shoe.MustParseRanks("0000"))
	assert.InDelta(t, 0.8, RunningCount(s), 1e-9)
}

func TestFullShoeCount(t *testing.T) {
	s := shoe.New(8, randutil.New(1))

	// Each deck contributes 4 * (sum of weights for 1..9 + 4 * 0.2).
	perDeck := 4 * (-0.6 - 0.4 - 0.7 - 1.2 + 0.8 + 0.6 + 0.3 + 0.1 - 0.1 + 4*0.2)
	assert.InDelta(t, 8*perDeck, RunningCount(s), 1e-9)
	assert.InDelta(t, perDeck, TrueCount(s), 1e-9)
}

func TestTrueCountNeutralComposition(t *testing.T) {
	var zero Weights
	s := shoe.New(8, randutil.New(3))
	assert.Equal(t, 0.0, zero.TrueCount(s))
	assert.Equal(t, 0.0, TrueCount(shoe.FromRanks(nil)))
	assert.Equal(t, 0.0, TrueCount(nil))
}

func TestTrueCountScalesInverselyWithShoeSize(t *testing.T) {
	fives := func(n int) *shoe.Shoe {
		ranks := make([]shoe.Rank, n)
		for i := range ranks {
			ranks[i] = 5
		}
		return shoe.FromRanks(ranks)
	}

	// With a constant per-card weight the true count is weight*52 until
	// the shoe drops below half a deck.
	assert.InDelta(t, 0.8*52, TrueCount(fives(104)), 1e-9)
	assert.InDelta(t, 0.8*52, TrueCount(fives(52)), 1e-9)
	assert.InDelta(t, 0.8*52, TrueCount(fives(26)), 1e-9)

	// Below 26 cards the divisor is floored at 0.5 decks.
	assert.InDelta(t, 0.8*13/0.5, TrueCount(fives(13)), 1e-9)
	assert.InDelta(t, 0.8/0.5, TrueCount(fives(1)), 1e-9)
}

func TestWeightsFromMap(t *testing.T) {
	w, err := WeightsFromMap(map[string]float64{"4": -2, "0": 0})
	require.NoError(t, err)
	assert.Equal(t, -2.0, w[4])
	assert.Equal(t, 0.0, w[0])
	assert.Equal(t, DefaultWeights[5], w[5])

	_, err = WeightsFromMap(map[string]float64{"10": 1})
	assert.ErrorIs(t, err, shoe.ErrInvalidRank)

	_, err = WeightsFromMap(map[string]float64{"x": 1})
	assert.Error(t, err)
}
