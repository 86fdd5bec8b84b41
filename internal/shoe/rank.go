package shoe

import (
	"errors"
	"fmt"
	"strings"
)

// Rank is the point value of a card. Aces through nines carry their pip
// value; tens and face cards are worth zero. Suits never matter.
type Rank uint8

// NumRanks is the size of the rank alphabet (0-9).
const NumRanks = 10

// ErrInvalidRank is returned when a rank symbol or value is outside 0-9.
var ErrInvalidRank = errors.New("invalid card rank")

// Valid reports whether r is inside the rank alphabet.
func (r Rank) Valid() bool {
	return r < NumRanks
}

// String returns the single character form used on the command line.
func (r Rank) String() string {
	if !r.Valid() {
		return "?"
	}
	return string(rune('0' + r))
}

// ParseRank accepts a pip digit (0-9) or a card letter: A counts 1, and
// T, J, Q, K all count 0.
func ParseRank(c rune) (Rank, error) {
	switch c {
	case 'A', 'a':
		return 1, nil
	case 'T', 't', 'J', 'j', 'Q', 'q', 'K', 'k':
		return 0, nil
	}
	if c >= '0' && c <= '9' {
		return Rank(c - '0'), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidRank, c)
}

// ParseRanks parses a string of rank symbols. Whitespace and commas are
// ignored so "7 1 3 2", "7,1,3,2" and "7132" are equivalent.
func ParseRanks(s string) ([]Rank, error) {
	var ranks []Rank
	for i, c := range s {
		if c == ',' || strings.ContainsRune(" \t\n", c) {
			continue
		}
		r, err := ParseRank(c)
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		ranks = append(ranks, r)
	}
	return ranks, nil
}

// MustParseRanks is like ParseRanks but panics on error. Intended for tests.
func MustParseRanks(s string) []Rank {
	ranks, err := ParseRanks(s)
	if err != nil {
		panic(err)
	}
	return ranks
}

// FormatRanks joins ranks into their compact string form.
func FormatRanks(ranks []Rank) string {
	var b strings.Builder
	b.Grow(len(ranks))
	for _, r := range ranks {
		b.WriteString(r.String())
	}
	return b.String()
}
