// ABOUTME: Terminal UI model and core state management
// ABOUTME: Bubble Tea model implementation monitoring a running algorithm

// Package tui provides an interactive terminal monitor for a running optimisation.
package tui

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Layout constants for UI dimensions
const (
	// UI chrome heights (elements that reduce available viewport space)
	titleHeight     = 2 // Title and problem line
	statsHeight     = 5 // Step, best, population and sparkline lines
	sectionHeight   = 2 // Best-solution heading and spacing
	statusBarHeight = 1 // Bottom status bar
	helpHeight      = 1 // Help text line
	totalUIChrome   = titleHeight + statsHeight + sectionHeight + statusBarHeight + helpHeight

	minViewportWidth  = 20
	minViewportHeight = 3

	maxHistory = 512 // Best-fitness samples kept for the sparkline
)

const statusMessageDuration = 5 * time.Second

// runDoneMsg signals that the algorithm goroutine has returned
type runDoneMsg struct{}

// model holds the TUI state
type model struct {
	ctrl     Controller
	updates  <-chan Update
	finished <-chan struct{}
	debugf   func(string, ...any)

	algorithm string
	problem   string
	maxSteps  int

	// Run state from the latest update
	step         int
	stepsPerSec  float64
	stats        Update
	history      []float64
	improvements int
	lastImprove  time.Time
	start        time.Time
	received     bool

	paused bool
	done   bool

	// UI state
	width        int
	height       int
	ready        bool
	quitting     bool
	viewport     viewport.Model
	statusMsg    string
	statusMsgAge time.Time
}

// Key bindings
type keyMap struct {
	Pause    key.Binding
	Stop     key.Binding
	Quit     key.Binding
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
}

var keys = keyMap{
	Pause: key.NewBinding(
		key.WithKeys("p", " "),
		key.WithHelp("p/space", "pause/resume"),
	),
	Stop: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "stop run"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "scroll"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "scroll"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdn", "page down"),
	),
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(14)

	valueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	sparkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10"))

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("15")).
			Padding(0, 1)

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// Run starts the monitor. updates carries progress from the algorithm
// goroutine; finished is closed once the algorithm has returned. Quitting
// stops a run that is still going.
func Run(ctrl Controller, updates <-chan Update, finished <-chan struct{}, opts Options) (Result, error) {
	m := initModel(ctrl, updates, finished, opts)

	p := tea.NewProgram(m, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		ctrl.Stop()
		return Result{}, fmt.Errorf("TUI error: %w", err)
	}

	fm, ok := finalModel.(model)
	if !ok {
		return Result{}, nil
	}
	return fm.result(), nil
}

// initModel creates the initial model
func initModel(ctrl Controller, updates <-chan Update, finished <-chan struct{}, opts Options) model {
	debugf := opts.Debugf
	if debugf == nil {
		debugf = func(string, ...any) {}
	}

	now := time.Now()
	return model{
		ctrl:        ctrl,
		updates:     updates,
		finished:    finished,
		debugf:      debugf,
		algorithm:   opts.Algorithm,
		problem:     opts.Problem,
		maxSteps:    opts.MaxSteps,
		start:       now,
		lastImprove: now,
		viewport:    viewport.New(0, 0), // Width and height set on first WindowSizeMsg
		stats:       Update{BestFitness: math.Inf(-1)},
	}
}

// Init starts listening for updates and for the end of the run
func (m model) Init() tea.Cmd {
	return tea.Batch(
		waitForUpdate(m.updates),
		waitForFinish(m.finished),
	)
}

// waitForUpdate returns a command that waits for the next progress update
func waitForUpdate(updates <-chan Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return nil
		}
		return u
	}
}

// waitForFinish returns a command that fires once the run has ended
func waitForFinish(finished <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-finished
		return runDoneMsg{}
	}
}

func (m model) result() Result {
	return Result{
		Step:        m.step,
		BestFitness: m.stats.BestFitness,
		Best:        m.stats.Best,
		Finished:    m.done,
	}
}

// setStatus shows a transient message in the status bar
func (m *model) setStatus(format string, args ...any) {
	m.statusMsg = fmt.Sprintf(format, args...)
	m.statusMsgAge = time.Now()
}

// ========== Helpers ==========

// truncate shortens a string to maxLen runes, adding "..." if truncated
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return string(r[:maxLen])
	}

	return string(r[:maxLen-3]) + "..."
}
