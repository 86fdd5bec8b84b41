package shoe

import (
	rand "math/rand/v2"
)

// CardsPerDeck is the size of a standard deck.
const CardsPerDeck = 52

// deckComposition is one suit's worth of ranks: ace through nine plus the
// four zero-valued cards (ten, jack, queen, king).
var deckComposition = [...]Rank{1, 2, 3, 4, 5, 6, 7, 8, 9, 0, 0, 0, 0}

// Counts holds how many cards of each rank are present.
type Counts [NumRanks]int

// Total returns the number of cards counted.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Shoe is the multiset of cards not yet dealt. Cards are dealt from the
// end of the slice, so the last element is the top of the shoe.
type Shoe struct {
	ranks []Rank
	decks int
}

// New builds a shuffled shoe of the given number of decks.
func New(decks int, rng *rand.Rand) *Shoe {
	if decks < 0 {
		decks = 0
	}
	ranks := make([]Rank, 0, decks*CardsPerDeck)
	for d := 0; d < decks; d++ {
		for suit := 0; suit < 4; suit++ {
			ranks = append(ranks, deckComposition[:]...)
		}
	}
	s := &Shoe{ranks: ranks, decks: decks}
	if rng != nil {
		s.Shuffle(rng)
	}
	return s
}

// FromRanks builds a shoe holding exactly the given ranks, with the last
// element on top. It panics on a rank outside the alphabet.
func FromRanks(ranks []Rank) *Shoe {
	for _, r := range ranks {
		if !r.Valid() {
			panic("shoe: rank out of range: " + r.String())
		}
	}
	cp := make([]Rank, len(ranks))
	copy(cp, ranks)
	return &Shoe{ranks: cp, decks: (len(cp) + CardsPerDeck - 1) / CardsPerDeck}
}

// Shuffle randomises the order of the remaining cards.
func (s *Shoe) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(s.ranks), func(i, j int) {
		s.ranks[i], s.ranks[j] = s.ranks[j], s.ranks[i]
	})
}

// Len returns the number of cards remaining.
func (s *Shoe) Len() int {
	return len(s.ranks)
}

// Decks returns the number of decks the shoe was built from.
func (s *Shoe) Decks() int {
	return s.decks
}

// MaxSize is the size of a freshly built shoe.
func (s *Shoe) MaxSize() int {
	return s.decks * CardsPerDeck
}

// Ranks returns a copy of the remaining cards, bottom first.
func (s *Shoe) Ranks() []Rank {
	out := make([]Rank, len(s.ranks))
	copy(out, s.ranks)
	return out
}

// Peek returns up to n cards from the top in dealing order without
// removing them.
func (s *Shoe) Peek(n int) []Rank {
	n = min(max(n, 0), len(s.ranks))
	out := make([]Rank, n)
	for i := range n {
		out[i] = s.ranks[len(s.ranks)-1-i]
	}
	return out
}

// Remove deals up to n cards off the top and returns them in dealing
// order. It never removes more cards than remain.
func (s *Shoe) Remove(n int) []Rank {
	out := s.Peek(n)
	s.ranks = s.ranks[:len(s.ranks)-len(out)]
	return out
}

// Replenish pushes n uniformly random ranks onto the top of the shoe. The
// cards are synthetic: they do not restore any specific removed cards.
func (s *Shoe) Replenish(n int, rng *rand.Rand) []Rank {
	added := make([]Rank, 0, max(n, 0))
	for range max(n, 0) {
		r := Rank(rng.IntN(NumRanks))
		added = append(added, r)
		s.ranks = append(s.ranks, r)
	}
	return added
}

// Counts tallies the remaining cards by rank.
func (s *Shoe) Counts() Counts {
	var c Counts
	for _, r := range s.ranks {
		c[r]++
	}
	return c
}

// Clone returns an independent copy of the shoe.
func (s *Shoe) Clone() *Shoe {
	return &Shoe{ranks: s.Ranks(), decks: s.decks}
}
