package tui

import (
	"io"
	"os"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/shoeaxis/internal/montecarlo"
	"github.com/lox/shoeaxis/internal/session"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func newTestModel(t *testing.T) (*TUIModel, *session.Session) {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel}) // Quiet logger for tests
	sess := session.New("tui-test",
		session.WithSeed(42),
		session.WithClock(quartz.NewMock(t)),
		session.WithLogger(logger),
		session.WithEstimator(montecarlo.New(montecarlo.Config{Trials: 300, Workers: 2}, logger)),
	)
	m := NewTUIModel(sess, logger)
	settle(t, m, m.Init())
	return m, sess
}

// settle runs cmd and feeds its message back into the model.
func settle(t *testing.T, m *TUIModel, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	_, next := m.Update(cmd())
	require.Nil(t, next)
}

func press(t *testing.T, m *TUIModel, s string) tea.Cmd {
	t.Helper()
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	_, cmd := m.Update(msg)
	return cmd
}

func TestInitialSnapshot(t *testing.T) {
	m, _ := newTestModel(t)

	assert.True(t, m.hasSnapshot)
	assert.False(t, m.refreshing)

	view := m.View()
	assert.Contains(t, view, "AXIS")
	assert.Contains(t, view, "Round 0 · 416 cards left")
	assert.Contains(t, view, "No rounds yet")
}

func TestRecordKeys(t *testing.T) {
	m, sess := newTestModel(t)

	for _, k := range []string{"p", "b", "b", "t"} {
		settle(t, m, press(t, m, k))
	}

	assert.Equal(t, 4, sess.Len())
	assert.Equal(t, 4, m.snapshot.Round)
	assert.Equal(t, 416-24, m.snapshot.Remaining)

	view := m.View()
	assert.Contains(t, view, "Round 4 · 392 cards left")
	assert.Contains(t, view, "Round 4: tie")
}

func TestUndoKey(t *testing.T) {
	m, sess := newTestModel(t)
	settle(t, m, press(t, m, "b"))

	settle(t, m, press(t, m, "u"))
	assert.Equal(t, 0, sess.Len())
	assert.Equal(t, 0, m.snapshot.Round)

	cmd := press(t, m, "u")
	assert.Nil(t, cmd, "undo with no history does not refresh")
	assert.Contains(t, m.View(), "Nothing to undo")
}

func TestShuffleKey(t *testing.T) {
	m, sess := newTestModel(t)
	settle(t, m, press(t, m, "p"))
	settle(t, m, press(t, m, "p"))

	settle(t, m, press(t, m, "r"))
	assert.Equal(t, 0, sess.Len())
	assert.Equal(t, 416, m.snapshot.Remaining)
	assert.Contains(t, m.View(), "Shuffled a new shoe")
}

func TestStaleSnapshotDropped(t *testing.T) {
	m, _ := newTestModel(t)

	first := press(t, m, "p")
	second := press(t, m, "b")
	require.NotNil(t, first)
	require.NotNil(t, second)

	settle(t, m, second)
	assert.Equal(t, 2, m.snapshot.Round)

	settle(t, m, first)
	assert.Equal(t, 2, m.snapshot.Round, "older refresh must not overwrite a newer one")
}

func TestQuitKey(t *testing.T) {
	m, _ := newTestModel(t)

	cmd := press(t, m, "q")
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
	assert.Empty(t, m.View())
}

func TestHelpToggle(t *testing.T) {
	m, _ := newTestModel(t)
	assert.False(t, m.help.ShowAll)

	press(t, m, "?")
	assert.True(t, m.help.ShowAll)
	assert.Contains(t, m.View(), "new shoe")
}

func TestBeadRoadWindow(t *testing.T) {
	m, _ := newTestModel(t)
	_, _ = m.Update(tea.WindowSizeMsg{Width: 40, Height: 30})

	for range 30 {
		settle(t, m, press(t, m, "b"))
	}
	settle(t, m, press(t, m, "p"))

	road := m.renderBeadRoad(20)
	assert.Contains(t, road, "P")
	assert.NotEmpty(t, m.View())
}
