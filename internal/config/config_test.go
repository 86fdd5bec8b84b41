package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/shoeaxis/internal/axis"
	"github.com/lox/shoeaxis/internal/count"
	"github.com/lox/shoeaxis/internal/montecarlo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shoeaxis.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestDefaultConfigMatchesComponents(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, axis.DefaultConfig(), cfg.AxisConfig())
	assert.Equal(t, montecarlo.DefaultConfig(), cfg.EstimatorConfig())

	w, err := cfg.Weights()
	require.NoError(t, err)
	assert.Equal(t, count.DefaultWeights, w)
	assert.Equal(t, "localhost:8080", cfg.ServerAddress())
	assert.Equal(t, log.InfoLevel, cfg.LogLevel())
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
engine {
  trials = 2000
  seed   = 7
}

axis {
  streak_cap = 0.3
}

count {
  weights = {
    "4" = -1.0
    "0" = 0.25
  }
}

log {
  level = "debug"
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Engine.Decks)
	assert.Equal(t, 2000, cfg.Engine.Trials)
	assert.Equal(t, montecarlo.DefaultWorkers, cfg.Engine.Workers)
	assert.Equal(t, int64(7), cfg.EstimatorConfig().BaseSeed)

	ac := cfg.AxisConfig()
	assert.Equal(t, 0.3, ac.StreakCap)
	assert.Equal(t, 0.1, ac.StreakStep)
	assert.Equal(t, 6.5, ac.Thresholds.StrongBanker)

	w, err := cfg.Weights()
	require.NoError(t, err)
	assert.Equal(t, -1.0, w[4])
	assert.Equal(t, 0.25, w[0])
	assert.Equal(t, count.DefaultWeights[5], w[5])

	assert.Equal(t, log.DebugLevel, cfg.LogLevel())
	assert.Equal(t, "shoeaxis.log", cfg.Log.File)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `engine {`},
		{"unknown block", `table "main" {}`},
		{"unknown attribute", `engine { jokers = 2 }`},
		{"duplicate block", "engine {}\nengine {}"},
		{"zero decks", `engine { decks = 0 }`},
		{"negative trials", `engine { trials = -1 }`},
		{"bad port", `server { port = 70000 }`},
		{"crossed thresholds", `axis { mild_banker = 4.0 }`},
		{"bad weight key", `count { weights = { "J" = 0.5 } }`},
		{"bad log level", `log { level = "loud" }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "test.hcl")
			assert.Error(t, err)
		})
	}
}

func TestNegativeTrialsWrapsSentinel(t *testing.T) {
	_, err := Parse([]byte(`engine { trials = -5 }`), "test.hcl")
	assert.ErrorIs(t, err, montecarlo.ErrInvalidTrials)
}

func TestServerAddress(t *testing.T) {
	cfg, err := Parse([]byte(`server {
  address = "0.0.0.0"
  port    = 9000
}`), "test.hcl")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.ServerAddress())
}
