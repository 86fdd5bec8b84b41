package baccarat

import (
	"math"
	"testing"

	"github.com/lox/shoeaxis/internal/shoe"
)

func deal(s string) [HandSize]shoe.Rank {
	cards, ok := FromSlice(shoe.MustParseRanks(s))
	if !ok {
		panic("deal needs six ranks: " + s)
	}
	return cards
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		cards      string
		outcome    Outcome
		player     int
		banker     int
		playerDrew bool
		bankerDrew bool
	}{
		{"player natural eight", "713200", Player, 8, 5, false, false},
		{"banker natural nine", "014599", Banker, 1, 9, false, false},
		{"both naturals tie", "449900", Tie, 8, 8, false, false},
		{"player draws banker five draws on six", "234162", Banker, 1, 7, true, true},
		{"player stands banker draws", "331194", Tie, 6, 6, false, true},
		{"both stand", "333312", Tie, 6, 6, false, false},
		{"banker three stands on eight", "111285", Banker, 0, 3, true, false},
		{"banker three draws on nine", "001295", Player, 9, 8, true, true},
		{"banker seven never draws", "003499", Player, 9, 7, true, false},
		{"banker six draws on six", "003363", Banker, 6, 9, true, true},
		{"banker six stands on five", "003353", Banker, 5, 6, true, false},
		{"banker four stands on ace", "002215", Banker, 1, 4, true, false},
		{"banker four draws on two", "002225", Banker, 2, 9, true, true},
		{"banker five stands on three", "004136", Banker, 3, 5, true, false},
		{"banker zero always draws", "000088", Tie, 8, 8, true, true},
		{"totals wrap modulo ten", "559677", Player, 7, 2, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Deal(deal(tt.cards))

			if h.Outcome != tt.outcome {
				t.Errorf("Expected %s, got %s (%s)", tt.outcome, h.Outcome, h)
			}
			if h.PlayerTotal != tt.player || h.BankerTotal != tt.banker {
				t.Errorf("Expected totals %d/%d, got %d/%d", tt.player, tt.banker, h.PlayerTotal, h.BankerTotal)
			}
			if h.PlayerDrew != tt.playerDrew || h.BankerDrew != tt.bankerDrew {
				t.Errorf("Expected draws %v/%v, got %v/%v", tt.playerDrew, tt.bankerDrew, h.PlayerDrew, h.BankerDrew)
			}
			if got := Resolve(deal(tt.cards)); got != h.Outcome {
				t.Errorf("Resolve disagrees with Deal: %s vs %s", got, h.Outcome)
			}
		})
	}
}

func TestNaturalIgnoresThirdCards(t *testing.T) {
	var cards [HandSize]shoe.Rank
	for a := 0; a < 100; a++ {
		for b := 0; b < 100; b++ {
			cards[0], cards[1] = shoe.Rank(a/10), shoe.Rank(a%10)
			cards[2], cards[3] = shoe.Rank(b/10), shoe.Rank(b%10)
			if points(cards[0], cards[1]) < 8 && points(cards[2], cards[3]) < 8 {
				continue
			}

			cards[4], cards[5] = 0, 0
			want := Resolve(cards)
			for extra := 1; extra < 100; extra++ {
				cards[4], cards[5] = shoe.Rank(extra/10), shoe.Rank(extra%10)
				h := Deal(cards)
				if h.Outcome != want || h.PlayerDrew || h.BankerDrew || !h.Natural {
					t.Fatalf("Natural hand %v consulted third cards", cards)
				}
			}
		}
	}
}

func TestPlayerDrawsOnlyOnFiveOrLess(t *testing.T) {
	var cards [HandSize]shoe.Rank
	for p1 := 0; p1 < 10; p1++ {
		for p2 := 0; p2 < 10; p2++ {
			cards[0], cards[1] = shoe.Rank(p1), shoe.Rank(p2)
			cards[2], cards[3] = 0, 1 // banker 1, never a natural
			total := (p1 + p2) % 10
			if total >= 8 {
				continue
			}
			h := Deal(cards)
			if h.PlayerDrew != (total <= 5) {
				t.Errorf("Player total %d: drew=%v", total, h.PlayerDrew)
			}
		}
	}
}

// TestOddsMatchPublishedTable enumerates every deal against an infinite
// deck and checks the familiar house figures.
func TestOddsMatchPublishedTable(t *testing.T) {
	weight := func(r int) float64 {
		if r == 0 {
			return 4.0 / 13.0
		}
		return 1.0 / 13.0
	}

	var totals [4]float64
	var cards [HandSize]shoe.Rank
	var walk func(pos int, p float64)
	walk = func(pos int, p float64) {
		if pos == HandSize {
			totals[Resolve(cards)] += p
			return
		}
		for r := 0; r < shoe.NumRanks; r++ {
			cards[pos] = shoe.Rank(r)
			walk(pos+1, p*weight(r))
		}
	}
	walk(0, 1)

	expect := map[Outcome]float64{Banker: 0.4584, Player: 0.4461, Tie: 0.0954}
	for o, want := range expect {
		if got := totals[o]; math.Abs(got-want) > 0.002 {
			t.Errorf("%s probability %.4f, expected about %.4f", o, got, want)
		}
	}
}

func TestDealPanicsOnInvalidRank(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for invalid rank")
		}
	}()
	Deal([HandSize]shoe.Rank{1, 2, 3, 4, 5, 12})
}

func TestFromSlice(t *testing.T) {
	if _, ok := FromSlice(shoe.MustParseRanks("12345")); ok {
		t.Error("Five ranks should not form a deal")
	}
	cards, ok := FromSlice(shoe.MustParseRanks("1234567"))
	if !ok || cards[5] != 6 {
		t.Errorf("Expected first six ranks, got %v", cards)
	}
}

func BenchmarkResolve(b *testing.B) {
	cards := deal("234162")
	for i := 0; i < b.N; i++ {
		_ = Resolve(cards)
	}
}
