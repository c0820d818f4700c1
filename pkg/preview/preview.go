// Package preview shows the cat full screen in a Bubble Tea program, without
// wrapping a command.
package preview

import (
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/Veraticus/keycat/pkg/activity"
	"github.com/Veraticus/keycat/pkg/frames"
	"github.com/Veraticus/keycat/pkg/types"
	"github.com/Veraticus/keycat/pkg/widget"
)

type tickMsg time.Time

const (
	// historySeconds is the width of the key rate graph.
	historySeconds = 30
	// graphInterval is the slowest tick; the graph needs one every second.
	graphInterval = time.Second
)

// namedKeyBase offsets positions for keys Bubble Tea reports by type rather
// than by rune. It sits above every rune and decoder position.
const namedKeyBase = 0x400000

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

var (
	infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
)

// frameSurface remembers the last level the widget rendered. The widget
// renders from the input goroutine while View runs on the program loop.
type frameSurface struct {
	mu      sync.Mutex
	level   activity.Level
	renders int
}

func (s *frameSurface) Render(level activity.Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level = level
	s.renders++
	return nil
}

func (s *frameSurface) snapshot() (activity.Level, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level, s.renders
}

// Model is the Bubble Tea model for preview mode.
type Model struct {
	widget  *widget.Widget
	frame   *frameSurface
	history *rateHistory
	decay   time.Duration
	keys    int
	width   int
	height  int
}

// New registers a frame surface with w and returns the model. A positive
// decay re-evaluates the level on a timer so the cat calms down on its own.
func New(w *widget.Widget, decay time.Duration) (*Model, error) {
	frame := &frameSurface{}
	if _, err := w.Register(frame); err != nil {
		return nil, fmt.Errorf("preview surface: %w", err)
	}
	return &Model{
		widget:  w,
		frame:   frame,
		history: newRateHistory(historySeconds),
		decay:   decay,
	}, nil
}

func (m *Model) Init() tea.Cmd {
	return tick(m.tickInterval())
}

// tickInterval is the decay interval when it is shorter than the graph's
// one second cadence.
func (m *Model) tickInterval() time.Duration {
	if m.decay > 0 && m.decay < graphInterval {
		return m.decay
	}
	return graphInterval
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		pos := keyPosition(msg)
		m.widget.HandleEvent(types.Press(pos))
		m.widget.HandleEvent(types.Release(pos))
		m.history.add(m.widget.Now())
		m.keys++
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tickMsg:
		now := m.widget.Now()
		if m.decay > 0 {
			m.widget.Refresh(now)
		}
		m.history.roll(now)
		return m, tick(m.tickInterval())
	}
	return m, nil
}

func (m *Model) View() string {
	level, _ := m.frame.snapshot()

	graph := asciigraph.Plot(m.history.values(),
		asciigraph.Height(4),
		asciigraph.Width(historySeconds),
		asciigraph.Caption("keys/s"),
	)

	body := lipgloss.JoinVertical(lipgloss.Center,
		frames.Panel(level),
		infoStyle.Render(fmt.Sprintf("%s  keys: %d", level, m.keys)),
		graph,
		helpStyle.Render("type to bongo, q to quit"),
	)

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
	}
	return body
}

// Level returns the level last rendered to the preview.
func (m *Model) Level() activity.Level {
	level, _ := m.frame.snapshot()
	return level
}

// keyPosition maps a Bubble Tea key to a position code.
func keyPosition(msg tea.KeyMsg) int {
	if msg.Type == tea.KeyRunes && len(msg.Runes) > 0 {
		return int(msg.Runes[0])
	}
	return namedKeyBase + int(msg.Type)
}

// Run starts the preview program on the alternate screen and blocks until
// the user quits.
func Run(w *widget.Widget, decay time.Duration) error {
	m, err := New(w, decay)
	if err != nil {
		return err
	}
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	return nil
}
