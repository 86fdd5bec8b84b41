// Package axis blends the Monte Carlo edge and the true count into a single
// 0-10 lean score. Zero leans fully to the player, ten fully to the banker.
package axis

import (
	"math"

	"github.com/lox/shoeaxis/internal/baccarat"
	"github.com/lox/shoeaxis/internal/montecarlo"
	"github.com/samber/lo"
)

const (
	// Min and Max bound every axis value.
	Min = 0.0
	Max = 10.0
)

// Config tunes the scoring pipeline.
type Config struct {
	// DeltaScale divides the banker edge (in percentage points) before
	// squashing.
	DeltaScale float64
	// CountScale divides the true count before squashing.
	CountScale float64

	ProbabilityWeight float64
	CountWeight       float64

	// StreakWindow is how many trailing outcomes the streak scan sees.
	StreakWindow int
	StreakStep   float64
	StreakCap    float64

	Thresholds Thresholds
}

// DefaultConfig returns the standard blend.
func DefaultConfig() Config {
	return Config{
		DeltaScale:        2,
		CountScale:        3,
		ProbabilityWeight: 0.6,
		CountWeight:       0.4,
		StreakWindow:      6,
		StreakStep:        0.1,
		StreakCap:         0.5,
		Thresholds:        DefaultThresholds(),
	}
}

// Streak is the run of identical outcomes at the end of the history.
type Streak struct {
	Outcome    baccarat.Outcome `json:"outcome,omitempty"`
	Length     int              `json:"length"`
	Adjustment float64          `json:"adjustment"`
}

// Result is a scored lean.
type Result struct {
	Value     float64 `json:"value"`
	Label     Label   `json:"label"`
	DeltaNorm float64 `json:"delta_norm"`
	CountNorm float64 `json:"count_norm"`
	Combined  float64 `json:"combined"`
	Streak    Streak  `json:"streak"`
}

// Scorer applies a Config. It is stateless and safe to share.
type Scorer struct {
	cfg Config
}

// NewScorer creates a scorer.
func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Config returns the scorer configuration.
func (s *Scorer) Config() Config {
	return s.cfg
}

// Score combines the probability estimate, the true count and the recent
// history into a bounded lean.
func (s *Scorer) Score(p montecarlo.Probabilities, trueCount float64, recent []baccarat.Outcome) Result {
	res := Result{
		DeltaNorm: Squash(p.Delta(), s.cfg.DeltaScale),
		CountNorm: Squash(trueCount, s.cfg.CountScale),
	}
	res.Combined = res.DeltaNorm*s.cfg.ProbabilityWeight + res.CountNorm*s.cfg.CountWeight
	value := round1((res.Combined + 1) * 5)

	res.Streak = DetectStreak(recent, s.cfg.StreakWindow)
	if res.Streak.Length > 0 {
		adj := math.Min(float64(res.Streak.Length)*s.cfg.StreakStep, s.cfg.StreakCap)
		if res.Streak.Outcome == baccarat.Player {
			adj = -adj
		}
		res.Streak.Adjustment = adj
		value += adj
	}

	res.Value = round1(lo.Clamp(value, Min, Max))
	res.Label = s.cfg.Thresholds.Label(res.Value)
	return res
}

// Score uses DefaultConfig.
func Score(p montecarlo.Probabilities, trueCount float64, recent []baccarat.Outcome) Result {
	return NewScorer(DefaultConfig()).Score(p, trueCount, recent)
}

// Squash maps x onto (-1, 1) with a hyperbolic tangent. A non-positive
// scale leaves x unscaled.
func Squash(x, scale float64) float64 {
	if scale <= 0 {
		scale = 1
	}
	return math.Tanh(x / scale)
}

// DetectStreak measures the run of identical decisive outcomes ending at
// the tail of history, looking at no more than window entries. A tie at
// the tail means no streak, and a tie inside the window ends the run.
func DetectStreak(history []baccarat.Outcome, window int) Streak {
	if window <= 0 || len(history) == 0 {
		return Streak{}
	}
	tail := history[max(len(history)-window, 0):]
	last := tail[len(tail)-1]
	if last == baccarat.Tie || !last.Valid() {
		return Streak{}
	}

	n := 0
	for i := len(tail) - 1; i >= 0 && tail[i] == last; i-- {
		n++
	}
	return Streak{Outcome: last, Length: n}
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
