// Package montecarlo estimates player and banker win probabilities by
// repeatedly dealing six cards from the remaining shoe.
package montecarlo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/shoeaxis/internal/baccarat"
	"github.com/lox/shoeaxis/internal/randutil"
	"github.com/lox/shoeaxis/internal/shoe"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultTrials is the number of simulated hands per estimate.
	DefaultTrials = 10000

	// DefaultWorkers is fixed rather than derived from the CPU count so the
	// same state produces the same estimate on every machine.
	DefaultWorkers = 4

	// MinShoeSize is the smallest shoe that can be sampled.
	MinShoeSize = baccarat.HandSize

	cancelCheckInterval = 1024
)

// ErrInvalidTrials is returned for a negative trial count.
var ErrInvalidTrials = errors.New("trial count must not be negative")

// Fallback is returned when the shoe is too small to deal a hand. The
// figures are the familiar long-run decisive shares.
var Fallback = Probabilities{Player: 0.493, Banker: 0.507}

// Probabilities holds the share of decisive hands won by each side. The
// two values sum to one unless the estimate fell back.
type Probabilities struct {
	Player float64 `json:"player"`
	Banker float64 `json:"banker"`
}

// Delta is the banker edge in percentage points.
func (p Probabilities) Delta() float64 {
	return (p.Banker - p.Player) * 100
}

// Result is a full estimate including raw tallies.
type Result struct {
	Probabilities
	PlayerWins int           `json:"player_wins"`
	BankerWins int           `json:"banker_wins"`
	Ties       int           `json:"ties"`
	Trials     int           `json:"trials"`
	Seed       int64         `json:"seed"`
	Fallback   bool          `json:"fallback"`
	Elapsed    time.Duration `json:"elapsed"`
}

// TieRate is the share of all simulated hands that tied.
func (r Result) TieRate() float64 {
	if r.Trials == 0 {
		return 0
	}
	return float64(r.Ties) / float64(r.Trials)
}

// Config controls an Estimator.
type Config struct {
	Trials   int
	Workers  int
	BaseSeed int64
	// Clock times each estimate. Nil means the real clock.
	Clock quartz.Clock
}

// DefaultConfig returns the standard estimator settings.
func DefaultConfig() Config {
	return Config{Trials: DefaultTrials, Workers: DefaultWorkers}
}

// Estimator runs Monte Carlo estimates against a shoe. It holds no state
// between calls and may be shared between sessions.
type Estimator struct {
	cfg    Config
	clock  quartz.Clock
	logger *log.Logger
}

// New creates an estimator. Zero-valued config fields fall back to the
// defaults.
func New(cfg Config, logger *log.Logger) *Estimator {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Estimator{cfg: cfg, clock: clock, logger: logger.WithPrefix("montecarlo")}
}

// Config returns the estimator configuration.
func (e *Estimator) Config() Config {
	return e.cfg
}

// Estimate samples the configured number of hands from s. The random
// source is derived from the number of completed rounds, so repeated
// calls with unchanged state return identical results.
func (e *Estimator) Estimate(ctx context.Context, s *shoe.Shoe, rounds int) (Result, error) {
	return e.EstimateTrials(ctx, s, rounds, e.cfg.Trials)
}

// EstimateTrials is Estimate with an explicit trial count.
func (e *Estimator) EstimateTrials(ctx context.Context, s *shoe.Shoe, rounds, trials int) (Result, error) {
	if trials < 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidTrials, trials)
	}

	seed := randutil.RoundSeed(e.cfg.BaseSeed, rounds)
	if s == nil || s.Len() < MinShoeSize {
		return Result{Probabilities: Fallback, Seed: seed, Fallback: true}, nil
	}

	start := e.clock.Now()
	workers := min(e.cfg.Workers, max(trials, 1))
	seeds := randutil.Split(randutil.New(seed), workers)
	ranks := s.Ranks()
	tallies := make([]tally, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		n := trials / workers
		if w < trials%workers {
			n++
		}
		g.Go(func() error {
			t, err := runWorker(ctx, ranks, n, randutil.New(seeds[w]))
			tallies[w] = t
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var total tally
	for _, t := range tallies {
		total.player += t.player
		total.banker += t.banker
		total.ties += t.ties
	}

	res := Result{
		PlayerWins: total.player,
		BankerWins: total.banker,
		Ties:       total.ties,
		Trials:     trials,
		Seed:       seed,
		Elapsed:    e.clock.Since(start),
	}
	res.Probabilities = total.probabilities()

	e.logger.Debug("Estimated outcome probabilities",
		"rounds", rounds,
		"shoe", s.Len(),
		"trials", trials,
		"player", res.Player,
		"banker", res.Banker,
		"elapsed", res.Elapsed)

	return res, nil
}

// EstimateProbabilities runs a single-worker estimate with the default
// base seed. It is the plain functional form of Estimator.Estimate.
func EstimateProbabilities(s *shoe.Shoe, rounds, trials int) (Probabilities, error) {
	e := New(Config{Trials: trials, Workers: 1}, nil)
	res, err := e.Estimate(context.Background(), s, rounds)
	if err != nil {
		return Probabilities{}, err
	}
	return res.Probabilities, nil
}

type tally struct {
	player, banker, ties int
}

func (t tally) probabilities() Probabilities {
	decisive := t.player + t.banker
	if decisive == 0 {
		return Probabilities{Player: 0.5, Banker: 0.5}
	}
	return Probabilities{
		Player: float64(t.player) / float64(decisive),
		Banker: float64(t.banker) / float64(decisive),
	}
}

// runWorker deals n hands from its own copy of the shoe. Each hand is a
// partial Fisher-Yates shuffle of the first six positions, which keeps the
// buffer a permutation of the shoe so every draw is without replacement.
func runWorker(ctx context.Context, ranks []shoe.Rank, n int, rng *rand.Rand) (tally, error) {
	buf := make([]shoe.Rank, len(ranks))
	copy(buf, ranks)
	size := len(buf)

	var t tally
	var hand [baccarat.HandSize]shoe.Rank
	for i := 0; i < n; i++ {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return t, err
			}
		}
		for k := 0; k < baccarat.HandSize; k++ {
			j := k + rng.IntN(size-k)
			buf[k], buf[j] = buf[j], buf[k]
			hand[k] = buf[k]
		}
		switch baccarat.Resolve(hand) {
		case baccarat.Player:
			t.player++
		case baccarat.Banker:
			t.banker++
		default:
			t.ties++
		}
	}
	return t, nil
}
