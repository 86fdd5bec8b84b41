package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/shoeaxis/internal/axis"
	"github.com/lox/shoeaxis/internal/baccarat"
	"github.com/lox/shoeaxis/internal/beadroad"
	"github.com/lox/shoeaxis/internal/session"
	"github.com/lox/shoeaxis/internal/shoe"
)

const (
	defaultWidth  = 80
	sidebarWidth  = 16
	activityLines = 5
	maxActivity   = 100
)

// TUIModel is the Bubble Tea model for a single session.
type TUIModel struct {
	session *session.Session
	logger  *log.Logger

	// UI components
	keys        keyMap
	help        help.Model
	logViewport viewport.Model

	// State
	snapshot    session.Snapshot
	hasSnapshot bool
	refreshing  bool
	seq         int // Latest refresh request; older results are dropped
	activity    []string
	err         error
	quitting    bool

	// Dimensions
	width  int
	height int
}

// snapshotMsg carries the result of a background refresh.
type snapshotMsg struct {
	seq  int
	snap session.Snapshot
	err  error
}

// NewTUIModel creates a model driving sess.
func NewTUIModel(sess *session.Session, logger *log.Logger) *TUIModel {
	vp := viewport.New(defaultWidth, activityLines)
	vp.SetContent("")

	return &TUIModel{
		session:     sess,
		logger:      logger.WithPrefix("tui"),
		keys:        defaultKeyMap(),
		help:        help.New(),
		logViewport: vp,
		width:       defaultWidth,
	}
}

// Run starts the interactive program and blocks until the user quits.
func Run(sess *session.Session, logger *log.Logger, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	_, err := tea.NewProgram(NewTUIModel(sess, logger), opts...).Run()
	return err
}

// Init initializes the TUI model
func (m *TUIModel) Init() tea.Cmd {
	return m.refresh()
}

// refresh recomputes the snapshot off the UI goroutine.
func (m *TUIModel) refresh() tea.Cmd {
	m.seq++
	m.refreshing = true
	seq, sess := m.seq, m.session
	return func() tea.Msg {
		snap, err := sess.Refresh(context.Background())
		return snapshotMsg{seq: seq, snap: snap, err: err}
	}
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.refreshing = false
		if msg.err != nil {
			m.err = msg.err
			m.addActivity("Refresh failed: " + msg.err.Error())
			return m, nil
		}
		m.err = nil
		m.snapshot = msg.snap
		m.hasSnapshot = true
		m.logger.Debug("Snapshot", "round", msg.snap.Round, "axis", msg.snap.Axis.Value, "elapsed", msg.snap.Elapsed)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.logViewport.Width = max(msg.Width-4, 10)
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *TUIModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Player):
		return m.record(baccarat.Player)
	case key.Matches(msg, m.keys.Banker):
		return m.record(baccarat.Banker)
	case key.Matches(msg, m.keys.Tie):
		return m.record(baccarat.Tie)

	case key.Matches(msg, m.keys.Undo):
		round, ok := m.session.Undo()
		if !ok {
			m.addActivity("Nothing to undo")
			return nil
		}
		m.addActivity(fmt.Sprintf("Undid round %d (%s)", round.Number, round.Outcome))
		return m.refresh()

	case key.Matches(msg, m.keys.Shuffle):
		m.session.Reset()
		m.session.Start()
		m.addActivity("Shuffled a new shoe")
		return m.refresh()
	}
	return nil
}

func (m *TUIModel) record(o baccarat.Outcome) tea.Cmd {
	round, err := m.session.Record(o)
	if err != nil {
		m.err = err
		m.addActivity("Record failed: " + err.Error())
		return nil
	}
	m.addActivity(fmt.Sprintf("Round %d: %s", round.Number, o))
	return m.refresh()
}

func (m *TUIModel) addActivity(entry string) {
	m.activity = append(m.activity, entry)
	if len(m.activity) > maxActivity {
		m.activity = m.activity[len(m.activity)-maxActivity:]
	}
	m.logViewport.SetContent(strings.Join(m.activity, "\n"))
	m.logViewport.GotoBottom()
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}

	header := HeaderStyle.Render("Shoe Axis")
	if !m.hasSnapshot {
		return lipgloss.JoinVertical(lipgloss.Left, header, InfoStyle.Render("Shuffling..."))
	}

	mainWidth := max(m.width-sidebarWidth-4, 30)
	left := lipgloss.JoinVertical(lipgloss.Left,
		m.renderAxis(mainWidth),
		m.renderMetrics(),
		m.renderRoundInfo(),
		m.renderBeadRoad(mainWidth),
	)
	top := lipgloss.JoinHorizontal(lipgloss.Top, left, m.renderComposition())

	parts := []string{header, top, PaneStyle.Render(m.logViewport.View())}
	if m.err != nil {
		parts = append(parts, ErrorStyle.Render(m.err.Error()))
	}
	parts = append(parts, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *TUIModel) renderAxis(width int) string {
	a := m.snapshot.Axis
	style := AxisBoxStyle.Width(width).Background(labelColor(a.Label))

	status := a.Label.String()
	if a.Streak.Length > 1 {
		status += fmt.Sprintf("  (%s streak x%d)", a.Streak.Outcome, a.Streak.Length)
	}
	if m.refreshing {
		status += "  ..."
	}
	return style.Render(fmt.Sprintf("AXIS %.1f / 10\n%s", a.Value, status))
}

func (m *TUIModel) renderMetrics() string {
	est := m.snapshot.Estimate
	metric := func(title, value string) string {
		return MetricStyle.Render(InfoStyle.Render(title) + "\n" + value)
	}
	source := fmt.Sprintf("%d trials", est.Trials)
	if est.Fallback {
		source = "baseline"
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		metric("Player", PlayerBeadStyle.Render(fmt.Sprintf("%.1f%%", est.Player*100))),
		metric("Banker", BankerBeadStyle.Render(fmt.Sprintf("%.1f%%", est.Banker*100))),
		metric("True count", fmt.Sprintf("%.2f", m.snapshot.TrueCount)),
		metric("Tie rate", TieBeadStyle.Render(fmt.Sprintf("%.1f%%", est.TieRate()*100))),
		metric("Source", source),
	)
}

func (m *TUIModel) renderRoundInfo() string {
	return RoundInfoStyle.Render(fmt.Sprintf("Round %d · %d cards left", m.snapshot.Round, m.snapshot.Remaining))
}

// renderBeadRoad draws the most recent columns that fit in width.
func (m *TUIModel) renderBeadRoad(width int) string {
	history := m.snapshot.History
	if len(history) == 0 {
		return PaneStyle.Render(InfoStyle.Render("No rounds yet"))
	}

	// Each column is one bead plus a separating space.
	fit := max((width-4)/2, 1)
	if cols := beadroad.NumColumns(len(history), beadroad.DefaultHeight); cols > fit {
		history = history[(cols-fit)*beadroad.DefaultHeight:]
	}
	return PaneStyle.Render(beadroad.Render(history, beadroad.DefaultHeight, 1, renderBead))
}

func (m *TUIModel) renderComposition() string {
	var b strings.Builder
	b.WriteString(InfoStyle.Render("Shoe"))
	counts := m.snapshot.Counts
	for r := range shoe.Rank(shoe.NumRanks) {
		fmt.Fprintf(&b, "\n%s %4d", r, counts[r])
	}
	fmt.Fprintf(&b, "\n\nRC %+.1f", m.snapshot.RunningCount)
	return PaneStyle.Width(sidebarWidth).Render(b.String())
}

func renderBead(o baccarat.Outcome) string {
	switch o {
	case baccarat.Player:
		return PlayerBeadStyle.Render(o.Symbol())
	case baccarat.Banker:
		return BankerBeadStyle.Render(o.Symbol())
	default:
		return TieBeadStyle.Render(o.Symbol())
	}
}

func labelColor(l axis.Label) lipgloss.Color {
	switch l.Side() {
	case baccarat.Player:
		return playerColor
	case baccarat.Banker:
		return bankerColor
	default:
		return neutralColor
	}
}
