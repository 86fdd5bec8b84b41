package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/lox/shoeaxis/internal/axis"
	"github.com/lox/shoeaxis/internal/baccarat"
	"github.com/lox/shoeaxis/internal/fileutil"
	"github.com/lox/shoeaxis/internal/simulator"
	"github.com/lox/shoeaxis/internal/statistics"
)

// SimulateCmd measures how well the lean predicts the next hand.
type SimulateCmd struct {
	Shoes    int    `short:"n" default:"100" help:"Number of shoes to play"`
	Parallel int    `short:"p" default:"4" help:"Shoes played concurrently"`
	CutCard  int    `default:"14" help:"Cards left when a shoe is retired"`
	Output   string `short:"o" type:"path" help:"Also write the summary as JSON to this file"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	logger := g.newLogger(os.Stderr, cfg)
	weights, err := cfg.Weights()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	seed := g.shuffleSeed()
	logger.Info("Starting simulation", "shoes", c.Shoes, "seed", seed, "trials", cfg.Engine.Trials)

	start := time.Now()
	stats, err := simulator.New(simulator.Config{
		Shoes:     c.Shoes,
		Decks:     cfg.Engine.Decks,
		Seed:      seed,
		CutCard:   c.CutCard,
		Parallel:  c.Parallel,
		Estimator: cfg.EstimatorConfig(),
		Axis:      cfg.AxisConfig(),
		Weights:   weights,
		Logger:    logger,
	}).Run(ctx)
	if err != nil {
		return err
	}

	if c.Output != "" {
		if err := fileutil.WriteJSONAtomic(c.Output, stats.Summary(), 0o644); err != nil {
			return err
		}
		logger.Info("Wrote summary", "path", c.Output)
	}

	printReport(os.Stdout, stats)
	fmt.Fprintf(os.Stdout, "\n%s\n", mutedStyle.Render(fmt.Sprintf(
		"%d shoes, %d hands, seed %d in %v", stats.Shoes, stats.Hands, seed, time.Since(start).Truncate(time.Millisecond))))
	return nil
}

func printReport(out io.Writer, stats *statistics.Statistics) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "%s\t%s\t%s\n", headerStyle.Render("outcome"), headerStyle.Render("share"), headerStyle.Render("longest run"))
	for _, o := range baccarat.Outcomes {
		fmt.Fprintf(w, "%s\t%.2f%%\t%d\n", o, stats.Frequency(o)*100, stats.LongestRun[o])
	}
	_ = w.Flush()
	fmt.Fprintln(out)

	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("lean"), headerStyle.Render("hands"), headerStyle.Render("hits"),
		headerStyle.Render("misses"), headerStyle.Render("hit rate"))
	for _, l := range []axis.Label{axis.StrongPlayer, axis.MildPlayer, axis.Neutral, axis.MildBanker, axis.StrongBanker} {
		ls, ok := stats.ByLabel[l]
		if !ok {
			continue
		}
		rate := "-"
		if l.Side() != 0 {
			rate = fmt.Sprintf("%.2f%%", ls.HitRate()*100)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n", l, ls.Hands, ls.Hits, ls.Misses, rate)
	}
	_ = w.Flush()
	fmt.Fprintln(out)

	lo, hi := stats.ConfidenceInterval95()
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%d of %d hands (%d pushed on ties)\n", headerStyle.Render("calls"), stats.Calls, stats.Hands, stats.Pushes)
	fmt.Fprintf(w, "%s\t%.2f%%\n", headerStyle.Render("hit rate"), stats.HitRate()*100)
	fmt.Fprintf(w, "%s\t%+.4f ± %.4f\n", headerStyle.Render("signal"), stats.Mean(), stats.StdError())
	fmt.Fprintf(w, "%s\t[%+.4f, %+.4f]\n", headerStyle.Render("95% CI"), lo, hi)
	fmt.Fprintf(w, "%s\t%.4f\n", headerStyle.Render("std dev"), stats.StdDev())
	fmt.Fprintf(w, "%s\t%+.1f / %+.1f / %+.1f\n", headerStyle.Render("p10 / median / p90"),
		stats.Percentile(0.1), stats.Median(), stats.Percentile(0.9))
	_ = w.Flush()
}
