package axis

import (
	"fmt"

	"github.com/lox/shoeaxis/internal/baccarat"
)

// Label buckets an axis value into a lean.
type Label int

const (
	Neutral Label = iota
	MildPlayer
	StrongPlayer
	MildBanker
	StrongBanker
)

func (l Label) String() string {
	switch l {
	case MildPlayer:
		return "mild lean player"
	case StrongPlayer:
		return "strong lean player"
	case MildBanker:
		return "mild lean banker"
	case StrongBanker:
		return "strong lean banker"
	default:
		return "neutral"
	}
}

// Side is the outcome the label leans towards, or zero when neutral.
func (l Label) Side() baccarat.Outcome {
	switch l {
	case MildPlayer, StrongPlayer:
		return baccarat.Player
	case MildBanker, StrongBanker:
		return baccarat.Banker
	default:
		return 0
	}
}

// Strong reports whether the lean is in a strong bucket.
func (l Label) Strong() bool {
	return l == StrongPlayer || l == StrongBanker
}

// MarshalText implements encoding.TextMarshaler.
func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Label) UnmarshalText(text []byte) error {
	parsed, err := ParseLabel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLabel is the inverse of Label.String.
func ParseLabel(s string) (Label, error) {
	for _, l := range []Label{Neutral, MildPlayer, StrongPlayer, MildBanker, StrongBanker} {
		if l.String() == s {
			return l, nil
		}
	}
	return Neutral, fmt.Errorf("unknown label %q", s)
}

// Thresholds are the bucket cut-offs on the 0-10 axis. Banker buckets are
// inclusive lower bounds and player buckets inclusive upper bounds.
type Thresholds struct {
	StrongBanker float64
	MildBanker   float64
	MildPlayer   float64
	StrongPlayer float64
}

// DefaultThresholds returns the standard cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		StrongBanker: 6.5,
		MildBanker:   5.5,
		MildPlayer:   4.5,
		StrongPlayer: 3.5,
	}
}

// Label buckets v.
func (t Thresholds) Label(v float64) Label {
	switch {
	case v >= t.StrongBanker:
		return StrongBanker
	case v >= t.MildBanker:
		return MildBanker
	case v <= t.StrongPlayer:
		return StrongPlayer
	case v <= t.MildPlayer:
		return MildPlayer
	default:
		return Neutral
	}
}
