package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/shoeaxis/internal/baccarat"
	"github.com/lox/shoeaxis/internal/beadroad"
	"github.com/lox/shoeaxis/internal/config"
	"github.com/lox/shoeaxis/internal/session"
	"github.com/lox/shoeaxis/internal/shoe"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	playerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	bankerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("9"))

	tieStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)

// OddsCmd scores a recorded history without the interactive UI.
type OddsCmd struct {
	History string `arg:"" optional:"" help:"Outcomes so far, e.g. 'PBBTP'"`
	Explain bool   `short:"e" help:"Show the axis breakdown and the next hand off the shoe"`
	Deal    string `help:"Resolve six explicit cards instead (e.g. 'A9T583')"`
}

func (c *OddsCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	logger := g.newLogger(os.Stderr, cfg)

	if c.Deal != "" {
		return printDeal(os.Stdout, c.Deal)
	}

	history, err := baccarat.ParseHistory(c.History)
	if err != nil {
		return err
	}

	seed := g.shuffleSeed()
	sess, err := replay(cfg, logger, seed, history)
	if err != nil {
		return err
	}
	snap, err := sess.Refresh(context.Background())
	if err != nil {
		return err
	}

	printSnapshot(os.Stdout, snap, seed)
	if c.Explain {
		fmt.Fprintln(os.Stdout)
		printExplain(os.Stdout, snap, sess.Peek(baccarat.HandSize))
	}
	return nil
}

// replay builds a fresh seeded session and records history against it.
func replay(cfg *config.Config, logger *log.Logger, seed int64, history []baccarat.Outcome) (*session.Session, error) {
	weights, err := cfg.Weights()
	if err != nil {
		return nil, err
	}
	sess := session.New("odds",
		session.WithDecks(cfg.Engine.Decks),
		session.WithSeed(seed),
		session.WithLogger(logger),
		session.WithEstimator(estimator(cfg, logger)),
		session.WithScorer(newScorer(cfg)),
		session.WithWeights(weights),
	)
	for _, o := range history {
		if _, err := sess.Record(o); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

func printSnapshot(out io.Writer, snap session.Snapshot, seed int64) {
	est := snap.Estimate
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		headerStyle.Render("player"),
		headerStyle.Render("banker"),
		headerStyle.Render("tie"),
		headerStyle.Render("true count"))
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		playerStyle.Render(fmt.Sprintf("%.1f%%", est.Player*100)),
		bankerStyle.Render(fmt.Sprintf("%.1f%%", est.Banker*100)),
		tieStyle.Render(fmt.Sprintf("%.1f%%", est.TieRate()*100)),
		fmt.Sprintf("%.2f", snap.TrueCount))
	_ = w.Flush()

	fmt.Fprintf(out, "\n%s %s\n",
		headerStyle.Render(fmt.Sprintf("axis %.1f / 10", snap.Axis.Value)),
		labelStyle(snap).Render(snap.Axis.Label.String()))

	if road := beadroad.Render(snap.History, beadroad.DefaultHeight, 1, nil); road != "" {
		fmt.Fprintf(out, "\n%s\n", road)
	}

	source := fmt.Sprintf("%d trials in %v", est.Trials, est.Elapsed.Truncate(time.Microsecond))
	if est.Fallback {
		source = "baseline odds, shoe too small to sample"
	}
	fmt.Fprintf(out, "\n%s\n", mutedStyle.Render(fmt.Sprintf(
		"round %d, %d cards left, seed %d, %s", snap.Round, snap.Remaining, seed, source)))
}

func printExplain(out io.Writer, snap session.Snapshot, next []shoe.Rank) {
	a := snap.Axis
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%.4f\n", headerStyle.Render("banker edge (pp)"), snap.Estimate.Delta())
	fmt.Fprintf(w, "%s\t%+.3f\n", headerStyle.Render("edge squashed"), a.DeltaNorm)
	fmt.Fprintf(w, "%s\t%+.2f\n", headerStyle.Render("running count"), snap.RunningCount)
	fmt.Fprintf(w, "%s\t%+.3f\n", headerStyle.Render("count squashed"), a.CountNorm)
	fmt.Fprintf(w, "%s\t%+.3f\n", headerStyle.Render("combined"), a.Combined)
	if a.Streak.Length > 0 {
		fmt.Fprintf(w, "%s\t%s x%d (%+.1f)\n", headerStyle.Render("streak"), a.Streak.Outcome, a.Streak.Length, a.Streak.Adjustment)
	} else {
		fmt.Fprintf(w, "%s\tnone\n", headerStyle.Render("streak"))
	}

	var counts []string
	for r, n := range snap.Counts {
		counts = append(counts, fmt.Sprintf("%s:%d", shoe.Rank(r), n))
	}
	fmt.Fprintf(w, "%s\t%v\n", headerStyle.Render("shoe"), counts)
	_ = w.Flush()

	if cards, ok := baccarat.FromSlice(next); ok {
		fmt.Fprintf(out, "\n%s %s\n", headerStyle.Render("next hand"), baccarat.Deal(cards))
	}
}

func printDeal(out io.Writer, text string) error {
	ranks, err := shoe.ParseRanks(text)
	if err != nil {
		return err
	}
	cards, ok := baccarat.FromSlice(ranks)
	if !ok || len(ranks) != baccarat.HandSize {
		return fmt.Errorf("need exactly %d cards, got %d", baccarat.HandSize, len(ranks))
	}
	hand := baccarat.Deal(cards)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\n", headerStyle.Render("side"), headerStyle.Render("total"), headerStyle.Render("drew"))
	fmt.Fprintf(w, "%s\t%d\t%t\n", playerStyle.Render("player"), hand.PlayerTotal, hand.PlayerDrew)
	fmt.Fprintf(w, "%s\t%d\t%t\n", bankerStyle.Render("banker"), hand.BankerTotal, hand.BankerDrew)
	_ = w.Flush()

	result := hand.Outcome.String()
	if hand.Natural {
		result += " (natural)"
	}
	fmt.Fprintf(out, "\n%s %s\n", headerStyle.Render("result"), result)
	return nil
}

func labelStyle(snap session.Snapshot) lipgloss.Style {
	switch snap.Axis.Label.Side() {
	case baccarat.Player:
		return playerStyle
	case baccarat.Banker:
		return bankerStyle
	default:
		return mutedStyle
	}
}
