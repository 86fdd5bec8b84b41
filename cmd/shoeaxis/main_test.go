package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/shoeaxis/internal/axis"
	"github.com/lox/shoeaxis/internal/baccarat"
	"github.com/lox/shoeaxis/internal/config"
	"github.com/lox/shoeaxis/internal/statistics"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("shoeaxis"), kong.Vars{"version": "test"})
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, ctx
}

func TestParseCommands(t *testing.T) {
	cli, ctx := parse(t, "--trials", "500", "--seed", "9", "odds", "PBBT", "--explain")
	assert.Equal(t, "odds <history>", ctx.Command())
	assert.Equal(t, "PBBT", cli.Odds.History)
	assert.True(t, cli.Odds.Explain)
	require.NotNil(t, cli.Trials)
	assert.Equal(t, 500, *cli.Trials)
	require.NotNil(t, cli.Seed)
	assert.Equal(t, int64(9), *cli.Seed)

	cli, ctx = parse(t, "simulate", "-n", "3")
	assert.Equal(t, "simulate", ctx.Command())
	assert.Equal(t, 3, cli.Simulate.Shoes)
	assert.Equal(t, 14, cli.Simulate.CutCard)
	assert.Nil(t, cli.Seed)
}

func TestGlobalsOverrideConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shoeaxis.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`engine {
  decks  = 6
  trials = 4000
}`), 0o600))

	trials, seed := 200, int64(3)
	g := &Globals{Config: path, Trials: &trials, Seed: &seed, LogLevel: "debug"}
	cfg, err := g.load()
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Engine.Decks)
	assert.Equal(t, 200, cfg.Engine.Trials)
	assert.Equal(t, int64(3), cfg.Engine.Seed)
	assert.Equal(t, log.DebugLevel, cfg.LogLevel())
	assert.Equal(t, int64(3), g.shuffleSeed())
}

func TestGlobalsRejectInvalidOverride(t *testing.T) {
	decks := 0
	g := &Globals{Config: filepath.Join(t.TempDir(), "missing.hcl"), Decks: &decks}
	_, err := g.load()
	assert.Error(t, err)
}

func TestReplayIsSeeded(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Engine.Trials = 300
	history, err := baccarat.ParseHistory("PBBTP")
	require.NoError(t, err)

	a, err := replay(cfg, quietLogger(), 11, history)
	require.NoError(t, err)
	b, err := replay(cfg, quietLogger(), 11, history)
	require.NoError(t, err)

	snapA, err := a.Refresh(context.Background())
	require.NoError(t, err)
	snapB, err := b.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, snapA.Round)
	assert.Equal(t, 416-30, snapA.Remaining)
	assert.Equal(t, snapA.Estimate.Probabilities, snapB.Estimate.Probabilities)
	assert.Equal(t, snapA.Axis, snapB.Axis)

	var out bytes.Buffer
	printSnapshot(&out, snapA, 11)
	printExplain(&out, snapA, a.Peek(baccarat.HandSize))
	text := out.String()
	assert.Contains(t, text, "axis ")
	assert.Contains(t, text, "round 5, 386 cards left, seed 11")
	assert.Contains(t, text, "next hand")
	assert.Contains(t, text, "streak")
}

func TestPrintDeal(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printDeal(&out, "001295"))
	assert.Contains(t, out.String(), "result player")

	out.Reset()
	require.NoError(t, printDeal(&out, "9,0,0,0,5,5"))
	assert.Contains(t, out.String(), "(natural)")

	assert.Error(t, printDeal(&out, "12345"))
	assert.Error(t, printDeal(&out, "1234567"))
	assert.Error(t, printDeal(&out, "12x456"))
}

func TestPrintReport(t *testing.T) {
	stats := statistics.New()
	stats.Add(statistics.HandResult{Lean: axis.StrongBanker, Outcome: baccarat.Banker})
	stats.Add(statistics.HandResult{Lean: axis.MildPlayer, Outcome: baccarat.Banker})
	stats.Add(statistics.HandResult{Lean: axis.Neutral, Outcome: baccarat.Tie})
	stats.ObserveShoe([]baccarat.Outcome{baccarat.Banker, baccarat.Banker, baccarat.Tie})

	var out bytes.Buffer
	printReport(&out, stats)
	text := out.String()

	assert.Contains(t, text, "strong lean banker")
	assert.Contains(t, text, "2 of 3 hands")
	assert.Contains(t, text, "50.00%")
}
