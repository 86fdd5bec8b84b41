package baccarat

import (
	"errors"
	"fmt"
	"strings"
)

// Outcome is the result of a single round.
type Outcome uint8

const (
	// Player means side A had the higher total.
	Player Outcome = iota + 1
	// Banker means side B had the higher total.
	Banker
	// Tie means both totals were equal.
	Tie
)

// ErrInvalidOutcome is returned for any symbol other than P, B or T.
var ErrInvalidOutcome = errors.New("invalid outcome")

// Outcomes lists the valid outcomes in display order.
var Outcomes = []Outcome{Player, Banker, Tie}

// Valid reports whether o is one of the three outcomes.
func (o Outcome) Valid() bool {
	return o >= Player && o <= Tie
}

// Symbol returns the one-letter code used in history strings.
func (o Outcome) Symbol() string {
	switch o {
	case Player:
		return "P"
	case Banker:
		return "B"
	case Tie:
		return "T"
	default:
		return "?"
	}
}

func (o Outcome) String() string {
	switch o {
	case Player:
		return "player"
	case Banker:
		return "banker"
	case Tie:
		return "tie"
	default:
		return fmt.Sprintf("outcome(%d)", uint8(o))
	}
}

// ParseOutcome accepts the one-letter code or the full name, case
// insensitively. Anything else is rejected rather than coerced.
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "p", "player":
		return Player, nil
	case "b", "banker":
		return Banker, nil
	case "t", "tie":
		return Tie, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidOutcome, s)
}

// ParseHistory parses a compact history string such as "PBBTP". Spaces
// and commas are ignored.
func ParseHistory(s string) ([]Outcome, error) {
	var history []Outcome
	for i, c := range s {
		if c == ' ' || c == ',' {
			continue
		}
		o, err := ParseOutcome(string(c))
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		history = append(history, o)
	}
	return history, nil
}

// FormatHistory renders outcomes as their one-letter codes.
func FormatHistory(history []Outcome) string {
	var b strings.Builder
	for _, o := range history {
		b.WriteString(o.Symbol())
	}
	return b.String()
}

// MarshalText implements encoding.TextMarshaler using the one-letter code.
func (o Outcome) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOutcome, uint8(o))
	}
	return []byte(o.Symbol()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(text []byte) error {
	parsed, err := ParseOutcome(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}
