// Package session owns one table's shoe and outcome history and runs the
// scoring pipeline against them on request.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"sync"
	"time"

	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/shoeaxis/internal/axis"
	"github.com/lox/shoeaxis/internal/baccarat"
	"github.com/lox/shoeaxis/internal/beadroad"
	"github.com/lox/shoeaxis/internal/count"
	"github.com/lox/shoeaxis/internal/montecarlo"
	"github.com/lox/shoeaxis/internal/randutil"
	"github.com/lox/shoeaxis/internal/shoe"
)

const (
	// DefaultDecks is the number of decks in a fresh shoe.
	DefaultDecks = 8

	// CardsPerRound is how many cards each recorded round takes from the
	// shoe and each undo puts back.
	CardsPerRound = baccarat.HandSize
)

// ErrNotInitialized is returned when a reset session is used before Start.
var ErrNotInitialized = errors.New("session not initialized")

// Round is one recorded outcome.
type Round struct {
	Number     int              `json:"number"`
	Outcome    baccarat.Outcome `json:"outcome"`
	Removed    int              `json:"removed"`
	RecordedAt time.Time        `json:"recorded_at"`
}

// Session holds a shoe and its history. All methods are safe for
// concurrent use, but a session is meant to be driven by one collaborator.
type Session struct {
	id        string
	decks     int
	clock     quartz.Clock
	logger    *log.Logger
	estimator *montecarlo.Estimator
	scorer    *axis.Scorer
	weights   count.Weights

	mu     sync.Mutex
	rng    *rand.Rand
	shoe   *shoe.Shoe
	rounds []Round
	ready  bool
}

// Option configures a Session.
type Option func(*Session)

// WithDecks sets the number of decks per shoe.
func WithDecks(decks int) Option {
	return func(s *Session) { s.decks = decks }
}

// WithSeed seeds the shuffle and replenishment source.
func WithSeed(seed int64) Option {
	return func(s *Session) { s.rng = randutil.New(seed) }
}

// WithClock sets the clock used to timestamp rounds.
func WithClock(clock quartz.Clock) Option {
	return func(s *Session) { s.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithEstimator sets the Monte Carlo estimator.
func WithEstimator(e *montecarlo.Estimator) Option {
	return func(s *Session) { s.estimator = e }
}

// WithScorer sets the axis scorer.
func WithScorer(sc *axis.Scorer) Option {
	return func(s *Session) { s.scorer = sc }
}

// WithWeights sets the count weight table.
func WithWeights(w count.Weights) Option {
	return func(s *Session) { s.weights = w }
}

// New creates a session with a freshly shuffled shoe.
func New(id string, opts ...Option) *Session {
	s := &Session{
		id:      id,
		decks:   DefaultDecks,
		weights: count.DefaultWeights,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	s.logger = s.logger.WithPrefix("session").With("session", id)
	if s.clock == nil {
		s.clock = quartz.NewReal()
	}
	if s.rng == nil {
		s.rng = randutil.New(time.Now().UnixNano())
	}
	if s.estimator == nil {
		cfg := montecarlo.DefaultConfig()
		cfg.Clock = s.clock
		s.estimator = montecarlo.New(cfg, s.logger)
	}
	if s.scorer == nil {
		s.scorer = axis.NewScorer(axis.DefaultConfig())
	}
	s.Start()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Start discards any history and loads a freshly shuffled shoe.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shoe = shoe.New(s.decks, s.rng)
	s.rounds = nil
	s.ready = true
	s.logger.Info("Shuffled new shoe", "decks", s.decks, "cards", s.shoe.Len())
}

// Reset discards the shoe and the history. Start must be called before
// the session is used again.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shoe = nil
	s.rounds = nil
	s.ready = false
	s.logger.Info("Session reset")
}

// Initialized reports whether the session has a shoe.
func (s *Session) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Record appends an outcome and deals up to six cards off the shoe.
// Invalid outcomes are rejected and leave the session untouched.
func (s *Session) Record(o baccarat.Outcome) (Round, error) {
	if !o.Valid() {
		return Round{}, fmt.Errorf("%w: %d", baccarat.ErrInvalidOutcome, uint8(o))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return Round{}, ErrNotInitialized
	}

	removed := s.shoe.Remove(CardsPerRound)
	r := Round{
		Number:     len(s.rounds) + 1,
		Outcome:    o,
		Removed:    len(removed),
		RecordedAt: s.clock.Now(),
	}
	s.rounds = append(s.rounds, r)

	s.logger.Debug("Recorded round", "round", r.Number, "outcome", o, "removed", r.Removed, "remaining", s.shoe.Len())
	if r.Removed < CardsPerRound {
		s.logger.Warn("Shoe exhausted", "round", r.Number, "removed", r.Removed)
	}
	return r, nil
}

// Undo drops the last round and pushes six random ranks onto the shoe. The
// replenished cards are synthetic; the removed cards are not restored. It
// reports false when there is nothing to undo.
func (s *Session) Undo() (Round, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready || len(s.rounds) == 0 {
		return Round{}, false
	}

	last := s.rounds[len(s.rounds)-1]
	s.rounds = s.rounds[:len(s.rounds)-1]
	s.shoe.Replenish(CardsPerRound, s.rng)

	s.logger.Debug("Undid round", "round", last.Number, "outcome", last.Outcome, "remaining", s.shoe.Len())
	return last, true
}

// Rounds returns a copy of the recorded rounds.
func (s *Session) Rounds() []Round {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Round, len(s.rounds))
	copy(out, s.rounds)
	return out
}

// History returns the recorded outcomes in order.
func (s *Session) History() []baccarat.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return outcomes(s.rounds)
}

// Len is the number of completed rounds.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rounds)
}

// Remaining is the number of cards left in the shoe.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shoe == nil {
		return 0
	}
	return s.shoe.Len()
}

// Peek returns the next n cards in dealing order without removing them.
func (s *Session) Peek(n int) []shoe.Rank {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shoe == nil {
		return nil
	}
	return s.shoe.Peek(n)
}

// Columns groups the history into bead-plate columns of size outcomes.
func (s *Session) Columns(size int) iter.Seq[[]baccarat.Outcome] {
	return beadroad.Columns(s.History(), size)
}

// Snapshot is the result of one refresh.
type Snapshot struct {
	SessionID    string             `json:"session_id"`
	Round        int                `json:"round"`
	Remaining    int                `json:"remaining"`
	Counts       shoe.Counts        `json:"counts"`
	Estimate     montecarlo.Result  `json:"estimate"`
	RunningCount float64            `json:"running_count"`
	TrueCount    float64            `json:"true_count"`
	Axis         axis.Result        `json:"axis"`
	History      []baccarat.Outcome `json:"history"`
	RefreshedAt  time.Time          `json:"refreshed_at"`
	Elapsed      time.Duration      `json:"elapsed"`
}

// Refresh recomputes every signal from the current state. Nothing is
// cached between refreshes; unchanged state gives an identical snapshot
// apart from the timing fields.
func (s *Session) Refresh(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return Snapshot{}, ErrNotInitialized
	}
	current := s.shoe.Clone()
	history := outcomes(s.rounds)
	s.mu.Unlock()

	start := s.clock.Now()
	est, err := s.estimator.Estimate(ctx, current, len(history))
	if err != nil {
		return Snapshot{}, fmt.Errorf("estimating probabilities: %w", err)
	}

	tc := s.weights.TrueCount(current)
	snap := Snapshot{
		SessionID:    s.id,
		Round:        len(history),
		Remaining:    current.Len(),
		Counts:       current.Counts(),
		Estimate:     est,
		RunningCount: s.weights.Running(current),
		TrueCount:    tc,
		Axis:         s.scorer.Score(est.Probabilities, tc, history),
		History:      history,
		RefreshedAt:  start,
	}
	snap.Elapsed = s.clock.Since(start)

	s.logger.Debug("Refreshed",
		"round", snap.Round,
		"axis", snap.Axis.Value,
		"label", snap.Axis.Label,
		"true_count", snap.TrueCount,
		"elapsed", snap.Elapsed)
	return snap, nil
}

func outcomes(rounds []Round) []baccarat.Outcome {
	out := make([]baccarat.Outcome, len(rounds))
	for i, r := range rounds {
		out[i] = r.Outcome
	}
	return out
}
