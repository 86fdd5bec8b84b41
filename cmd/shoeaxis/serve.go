package main

import (
	"context"
	"os"
	"time"

	"github.com/lox/shoeaxis/internal/server"
	"github.com/lox/shoeaxis/internal/session"
	"github.com/lox/shoeaxis/internal/sessionid"
)

// ServeCmd runs the WebSocket server.
type ServeCmd struct {
	Addr string `help:"Listen address; overrides the config file (e.g. ':8080')"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	logger := g.newLogger(os.Stderr, cfg)
	weights, err := cfg.Weights()
	if err != nil {
		return err
	}

	opts := []session.Option{
		session.WithDecks(cfg.Engine.Decks),
		session.WithEstimator(estimator(cfg, logger)),
		session.WithScorer(newScorer(cfg)),
		session.WithWeights(weights),
	}
	if g.Seed != nil {
		// Every session shuffles the same shoe.
		opts = append(opts, session.WithSeed(*g.Seed))
	}
	registry := session.NewRegistry(logger, sessionid.NewGenerator(nil, nil), opts...)

	addr := cfg.ServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}
	srv := server.NewServer(addr, registry, logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
