package main

import (
	"fmt"
	"os"

	"github.com/lox/shoeaxis/internal/session"
	"github.com/lox/shoeaxis/internal/tui"
)

// PlayCmd runs the interactive bead-road front end.
type PlayCmd struct {
	LogFile string `help:"Log file; the terminal is taken by the UI (default from config)"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	path := cfg.Log.File
	if c.LogFile != "" {
		path = c.LogFile
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	logger := g.newLogger(f, cfg)
	weights, err := cfg.Weights()
	if err != nil {
		return err
	}

	seed := g.shuffleSeed()
	logger.Info("Starting session", "seed", seed, "decks", cfg.Engine.Decks, "trials", cfg.Engine.Trials)

	sess := session.New("local",
		session.WithDecks(cfg.Engine.Decks),
		session.WithSeed(seed),
		session.WithLogger(logger),
		session.WithEstimator(estimator(cfg, logger)),
		session.WithScorer(newScorer(cfg)),
		session.WithWeights(weights),
	)
	return tui.Run(sess, logger)
}
