package statistics

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/lox/shoeaxis/internal/axis"
	"github.com/lox/shoeaxis/internal/baccarat"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// HandResult pairs the lean shown before a hand with the hand's outcome.
type HandResult struct {
	Shoe      int              // Shoe number within the run
	Round     int              // Rounds completed before this hand
	Remaining int              // Cards left before the hand was dealt
	Axis      float64          // Axis value shown before the hand
	Lean      axis.Label       // Label shown before the hand
	Outcome   baccarat.Outcome // What actually happened
}

// Signal scores the lean: +1 when it named the winner, -1 when the other
// side won, 0 for a tie or a neutral lean.
func (r HandResult) Signal() float64 {
	side := r.Lean.Side()
	switch {
	case side == 0 || r.Outcome == baccarat.Tie:
		return 0
	case side == r.Outcome:
		return 1
	default:
		return -1
	}
}

// LabelStats tracks results for one lean bucket.
type LabelStats struct {
	Hands  int `json:"hands"`
	Hits   int `json:"hits"`
	Misses int `json:"misses"`
}

// HitRate is hits over decisive calls.
func (l LabelStats) HitRate() float64 {
	if l.Hits+l.Misses == 0 {
		return 0
	}
	return float64(l.Hits) / float64(l.Hits+l.Misses)
}

// Statistics aggregates simulated hands.
type Statistics struct {
	Hands    int
	Outcomes map[baccarat.Outcome]int

	// Calls are hands with a non-neutral lean.
	Calls   int
	Hits    int
	Misses  int
	Pushes  int // Tie while leaning
	Neutral int

	// Values holds the signal of every call, for spread and quantiles.
	Values []float64

	ByLabel map[axis.Label]*LabelStats

	// LongestRun is the longest run of one outcome seen inside a shoe.
	LongestRun map[baccarat.Outcome]int

	Shoes int
}

// New creates empty statistics.
func New() *Statistics {
	return &Statistics{
		Outcomes:   make(map[baccarat.Outcome]int),
		ByLabel:    make(map[axis.Label]*LabelStats),
		LongestRun: make(map[baccarat.Outcome]int),
	}
}

// Add incorporates one hand.
func (s *Statistics) Add(r HandResult) {
	s.Hands++
	s.Outcomes[r.Outcome]++

	ls := s.ByLabel[r.Lean]
	if ls == nil {
		ls = &LabelStats{}
		s.ByLabel[r.Lean] = ls
	}
	ls.Hands++

	if r.Lean.Side() == 0 {
		s.Neutral++
		return
	}

	s.Calls++
	signal := r.Signal()
	s.Values = append(s.Values, signal)
	switch signal {
	case 1:
		s.Hits++
		ls.Hits++
	case -1:
		s.Misses++
		ls.Misses++
	default:
		s.Pushes++
	}
}

// ObserveShoe records the outcome runs of a finished shoe.
func (s *Statistics) ObserveShoe(history []baccarat.Outcome) {
	s.Shoes++
	run := 0
	for i, o := range history {
		if i > 0 && history[i-1] == o {
			run++
		} else {
			run = 1
		}
		s.LongestRun[o] = max(s.LongestRun[o], run)
	}
}

// Merge folds other into s.
func (s *Statistics) Merge(other *Statistics) {
	s.Hands += other.Hands
	s.Calls += other.Calls
	s.Hits += other.Hits
	s.Misses += other.Misses
	s.Pushes += other.Pushes
	s.Neutral += other.Neutral
	s.Shoes += other.Shoes
	s.Values = append(s.Values, other.Values...)
	for o, n := range other.Outcomes {
		s.Outcomes[o] += n
	}
	for o, n := range other.LongestRun {
		s.LongestRun[o] = max(s.LongestRun[o], n)
	}
	for l, ls := range other.ByLabel {
		mine := s.ByLabel[l]
		if mine == nil {
			mine = &LabelStats{}
			s.ByLabel[l] = mine
		}
		mine.Hands += ls.Hands
		mine.Hits += ls.Hits
		mine.Misses += ls.Misses
	}
}

// Frequency is the share of hands that ended in o.
func (s *Statistics) Frequency(o baccarat.Outcome) float64 {
	if s.Hands == 0 {
		return 0
	}
	return float64(s.Outcomes[o]) / float64(s.Hands)
}

// HitRate is hits over decisive calls.
func (s *Statistics) HitRate() float64 {
	return LabelStats{Hits: s.Hits, Misses: s.Misses}.HitRate()
}

// Mean returns the average signal per call.
func (s *Statistics) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return stat.Mean(s.Values, nil)
}

// Variance returns the sample variance of the call signals.
func (s *Statistics) Variance() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	return stat.Variance(s.Values, nil)
}

// StdDev returns the sample standard deviation.
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean.
func (s *Statistics) StdError() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return stat.StdErr(s.StdDev(), float64(len(s.Values)))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean.
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median call signal.
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the value at p (0.0 to 1.0), interpolating linearly.
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := slices.Clone(s.Values)
	slices.Sort(sorted)
	return stat.Quantile(p, stat.LinInterp, sorted, nil)
}

// Validate checks that the tallies agree with each other.
func (s *Statistics) Validate() error {
	if s.Hits+s.Misses+s.Pushes != s.Calls {
		return fmt.Errorf("call mismatch: hits %d + misses %d + pushes %d != calls %d",
			s.Hits, s.Misses, s.Pushes, s.Calls)
	}
	if s.Calls+s.Neutral != s.Hands {
		return fmt.Errorf("calls %d + neutral %d != hands %d", s.Calls, s.Neutral, s.Hands)
	}
	if len(s.Values) != s.Calls {
		return fmt.Errorf("values length %d does not match calls %d", len(s.Values), s.Calls)
	}
	if total := lo.Sum(lo.Values(s.Outcomes)); total != s.Hands {
		return fmt.Errorf("outcome total %d does not match hands %d", total, s.Hands)
	}
	labelHands := lo.SumBy(lo.Values(s.ByLabel), func(l *LabelStats) int { return l.Hands })
	if labelHands != s.Hands {
		return fmt.Errorf("label total %d does not match hands %d", labelHands, s.Hands)
	}
	return nil
}

// Summary is the computed view of Statistics, suitable for export.
type Summary struct {
	Shoes       int                          `json:"shoes"`
	Hands       int                          `json:"hands"`
	Calls       int                          `json:"calls"`
	Hits        int                          `json:"hits"`
	Misses      int                          `json:"misses"`
	Pushes      int                          `json:"pushes"`
	Neutral     int                          `json:"neutral"`
	HitRate     float64                      `json:"hit_rate"`
	Mean        float64                      `json:"mean"`
	StdDev      float64                      `json:"std_dev"`
	StdError    float64                      `json:"std_error"`
	CI95        [2]float64                   `json:"ci95"`
	Median      float64                      `json:"median"`
	P10         float64                      `json:"p10"`
	P90         float64                      `json:"p90"`
	Frequencies map[baccarat.Outcome]float64 `json:"frequencies"`
	LongestRun  map[baccarat.Outcome]int     `json:"longest_run"`
	ByLabel     map[axis.Label]LabelStats    `json:"by_label"`
}

// Summary computes the derived figures.
func (s *Statistics) Summary() Summary {
	lo95, hi95 := s.ConfidenceInterval95()
	sum := Summary{
		Shoes:       s.Shoes,
		Hands:       s.Hands,
		Calls:       s.Calls,
		Hits:        s.Hits,
		Misses:      s.Misses,
		Pushes:      s.Pushes,
		Neutral:     s.Neutral,
		HitRate:     s.HitRate(),
		Mean:        s.Mean(),
		StdDev:      s.StdDev(),
		StdError:    s.StdError(),
		CI95:        [2]float64{lo95, hi95},
		Median:      s.Median(),
		P10:         s.Percentile(0.1),
		P90:         s.Percentile(0.9),
		Frequencies: make(map[baccarat.Outcome]float64, len(baccarat.Outcomes)),
		LongestRun:  maps.Clone(s.LongestRun),
		ByLabel:     make(map[axis.Label]LabelStats, len(s.ByLabel)),
	}
	for _, o := range baccarat.Outcomes {
		sum.Frequencies[o] = s.Frequency(o)
	}
	for l, ls := range s.ByLabel {
		sum.ByLabel[l] = *ls
	}
	return sum
}
