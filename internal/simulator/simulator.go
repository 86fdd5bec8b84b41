package simulator

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/shoeaxis/internal/axis"
	"github.com/lox/shoeaxis/internal/baccarat"
	"github.com/lox/shoeaxis/internal/count"
	"github.com/lox/shoeaxis/internal/montecarlo"
	"github.com/lox/shoeaxis/internal/randutil"
	"github.com/lox/shoeaxis/internal/session"
	"github.com/lox/shoeaxis/internal/statistics"
	"golang.org/x/sync/errgroup"
)

// DefaultCutCard is the number of cards left when the shoe is retired.
const DefaultCutCard = 14

// Config holds configuration for running simulations
type Config struct {
	Shoes    int
	Decks    int
	Seed     int64
	CutCard  int
	Parallel int // Shoes played concurrently

	Estimator montecarlo.Config
	Axis      axis.Config
	Weights   count.Weights

	Clock  quartz.Clock
	Logger *log.Logger
}

// Simulator plays whole shoes through the engine and scores the lean it
// shows before every hand against the hand that follows.
type Simulator struct {
	config    Config
	estimator *montecarlo.Estimator
	scorer    *axis.Scorer
	logger    *log.Logger
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Decks <= 0 {
		config.Decks = session.DefaultDecks
	}
	if config.CutCard <= 0 {
		config.CutCard = DefaultCutCard
	}
	if config.Parallel <= 0 {
		config.Parallel = 1
	}
	if config.Axis == (axis.Config{}) {
		config.Axis = axis.DefaultConfig()
	}
	if config.Weights == (count.Weights{}) {
		config.Weights = count.DefaultWeights
	}
	if config.Clock == nil {
		config.Clock = quartz.NewReal()
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}

	logger := config.Logger.WithPrefix("simulator")
	estimatorConfig := config.Estimator
	if estimatorConfig.Clock == nil {
		estimatorConfig.Clock = config.Clock
	}
	return &Simulator{
		config:    config,
		estimator: montecarlo.New(estimatorConfig, logger),
		scorer:    axis.NewScorer(config.Axis),
		logger:    logger,
	}
}

// Run plays the configured number of shoes and returns the merged
// statistics. Per-shoe seeds are split from the base seed, so results do
// not depend on how shoes are scheduled.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	if s.config.Shoes < 0 {
		return nil, fmt.Errorf("invalid shoe count: %d", s.config.Shoes)
	}
	if s.config.CutCard < baccarat.HandSize {
		return nil, fmt.Errorf("cut card %d leaves fewer than %d cards", s.config.CutCard, baccarat.HandSize)
	}

	seeds := randutil.Split(randutil.New(s.config.Seed), s.config.Shoes)
	results := make([]*statistics.Statistics, s.config.Shoes)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Parallel)
	for i := range s.config.Shoes {
		g.Go(func() error {
			stats, err := s.playShoe(ctx, i+1, seeds[i])
			if err != nil {
				return fmt.Errorf("shoe %d: %w", i+1, err)
			}
			results[i] = stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := statistics.New()
	for _, r := range results {
		total.Merge(r)
	}

	// Validate statistics before returning
	if err := total.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	s.logger.Info("Simulation complete",
		"shoes", total.Shoes,
		"hands", total.Hands,
		"calls", total.Calls,
		"hit_rate", total.HitRate())
	return total, nil
}

// playShoe deals one shoe down to the cut card.
func (s *Simulator) playShoe(ctx context.Context, number int, seed int64) (*statistics.Statistics, error) {
	sess := session.New(fmt.Sprintf("sim-%d", number),
		session.WithDecks(s.config.Decks),
		session.WithSeed(seed),
		session.WithClock(s.config.Clock),
		session.WithLogger(s.logger),
		session.WithEstimator(s.estimator),
		session.WithScorer(s.scorer),
		session.WithWeights(s.config.Weights),
	)

	stats := statistics.New()
	for sess.Remaining() > s.config.CutCard {
		snap, err := sess.Refresh(ctx)
		if err != nil {
			return nil, err
		}

		cards, ok := baccarat.FromSlice(sess.Peek(baccarat.HandSize))
		if !ok {
			break
		}
		hand := baccarat.Deal(cards)
		s.logger.Debug("Dealt hand", "shoe", number, "round", snap.Round+1, "hand", hand, "lean", snap.Axis.Label)

		stats.Add(statistics.HandResult{
			Shoe:      number,
			Round:     snap.Round,
			Remaining: snap.Remaining,
			Axis:      snap.Axis.Value,
			Lean:      snap.Axis.Label,
			Outcome:   hand.Outcome,
		})

		if _, err := sess.Record(hand.Outcome); err != nil {
			return nil, err
		}
	}

	stats.ObserveShoe(sess.History())
	return stats, nil
}
