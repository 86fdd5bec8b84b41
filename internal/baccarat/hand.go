// Package baccarat resolves six-card deals under the fixed drawing rules.
package baccarat

import (
	"fmt"

	"github.com/lox/shoeaxis/internal/shoe"
)

// HandSize is the number of cards consumed by a fully drawn hand.
const HandSize = 6

// Positions of each card in a six-card deal.
const (
	playerFirst = iota
	playerSecond
	bankerFirst
	bankerSecond
	playerThird
	bankerThird
)

// Hand describes how a deal played out.
type Hand struct {
	Cards       [HandSize]shoe.Rank
	PlayerTotal int
	BankerTotal int
	PlayerDrew  bool
	BankerDrew  bool
	Natural     bool
	Outcome     Outcome
}

// Resolve returns the outcome of a six-card deal. Cards are consumed in
// positional order: two for the player, two for the banker, then the
// player's and the banker's conditional third cards.
func Resolve(cards [HandSize]shoe.Rank) Outcome {
	return Deal(cards).Outcome
}

// Deal plays out the hand and reports totals and draws. It panics if any
// card is outside the rank alphabet.
func Deal(cards [HandSize]shoe.Rank) Hand {
	for i, c := range cards {
		if !c.Valid() {
			panic(fmt.Sprintf("baccarat: card %d has invalid rank %d", i, c))
		}
	}

	h := Hand{Cards: cards}
	h.PlayerTotal = points(cards[playerFirst], cards[playerSecond])
	h.BankerTotal = points(cards[bankerFirst], cards[bankerSecond])

	if h.PlayerTotal >= 8 || h.BankerTotal >= 8 {
		h.Natural = true
		h.Outcome = compare(h.PlayerTotal, h.BankerTotal)
		return h
	}

	if h.PlayerTotal <= 5 {
		h.PlayerDrew = true
		h.PlayerTotal = points(shoe.Rank(h.PlayerTotal), cards[playerThird])
	}

	if h.PlayerDrew {
		h.BankerDrew = bankerDraws(h.BankerTotal, int(cards[playerThird]))
	} else {
		h.BankerDrew = h.BankerTotal <= 5
	}
	if h.BankerDrew {
		h.BankerTotal = points(shoe.Rank(h.BankerTotal), cards[bankerThird])
	}

	h.Outcome = compare(h.PlayerTotal, h.BankerTotal)
	return h
}

// FromSlice copies the first six ranks into a deal array. It returns false
// when fewer than six ranks are supplied.
func FromSlice(ranks []shoe.Rank) ([HandSize]shoe.Rank, bool) {
	var cards [HandSize]shoe.Rank
	if len(ranks) < HandSize {
		return cards, false
	}
	copy(cards[:], ranks)
	return cards, true
}

// bankerDraws is the banker's third-card table for when the player drew.
func bankerDraws(bankerTotal, playerThird int) bool {
	switch bankerTotal {
	case 0, 1, 2:
		return true
	case 3:
		return playerThird != 8
	case 4:
		return playerThird >= 2 && playerThird <= 7
	case 5:
		return playerThird >= 4 && playerThird <= 7
	case 6:
		return playerThird == 6 || playerThird == 7
	default:
		return false
	}
}

func points(a, b shoe.Rank) int {
	return (int(a) + int(b)) % 10
}

func compare(player, banker int) Outcome {
	switch {
	case player > banker:
		return Player
	case banker > player:
		return Banker
	default:
		return Tie
	}
}

func (h Hand) String() string {
	return fmt.Sprintf("player %d banker %d (%s)", h.PlayerTotal, h.BankerTotal, h.Outcome)
}
