package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/shoeaxis/internal/axis"
	"github.com/lox/shoeaxis/internal/config"
	"github.com/lox/shoeaxis/internal/montecarlo"
	"github.com/muesli/termenv"
)

// Globals are flags shared by every command.
type Globals struct {
	Config   string `short:"c" default:"shoeaxis.hcl" type:"path" help:"HCL configuration file"`
	LogLevel string `help:"Log level (debug, info, warn, error); overrides the config file"`
	Trials   *int   `help:"Monte Carlo trials per refresh; overrides the config file"`
	Decks    *int   `help:"Decks per shoe; overrides the config file"`
	Seed     *int64 `help:"Seed for shuffling and estimation (random when unset)"`
	NoColor  bool   `help:"Disable colored output"`
}

// load reads the config file and applies flag overrides.
func (g *Globals) load() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", g.Config, err)
	}

	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.Trials != nil {
		cfg.Engine.Trials = *g.Trials
	}
	if g.Decks != nil {
		cfg.Engine.Decks = *g.Decks
	}
	if g.Seed != nil {
		cfg.Engine.Seed = *g.Seed
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if g.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	return cfg, nil
}

// shuffleSeed is the explicit seed, or the clock when none was given.
func (g *Globals) shuffleSeed() int64 {
	if g.Seed != nil {
		return *g.Seed
	}
	return time.Now().UnixNano()
}

// newLogger builds the process logger writing to w.
func (g *Globals) newLogger(w io.Writer, cfg *config.Config) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Level:           cfg.LogLevel(),
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
	if g.NoColor {
		logger.SetColorProfile(termenv.Ascii)
	}
	return logger
}

// estimator builds the shared Monte Carlo estimator.
func estimator(cfg *config.Config, logger *log.Logger) *montecarlo.Estimator {
	return montecarlo.New(cfg.EstimatorConfig(), logger)
}

func newScorer(cfg *config.Config) *axis.Scorer {
	return axis.NewScorer(cfg.AxisConfig())
}

// signalContext is cancelled on interrupt signals.
func signalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Received signal, shutting down gracefully", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
