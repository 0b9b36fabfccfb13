// ABOUTME: Read-only viewer of a run's best-solution snapshot with live file watching
// ABOUTME: Monitors the snapshot file for changes and displays it with viewport scrolling

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"

	"popsearch/report"
)

// viewModel holds the state for the read-only snapshot viewer
type viewModel struct {
	snapshotPath string
	snapshot     report.Snapshot
	loaded       bool
	viewport     viewport.Model
	width        int
	height       int
	fileWatcher  *fsnotify.Watcher
	lastReload   time.Time
	reloads      int
	errorMsg     string
	ready        bool
}

// Key bindings for view mode
type viewKeyMap struct {
	Top    key.Binding
	Bottom key.Binding
	Reload key.Binding
	Quit   key.Binding
}

var viewKeys = viewKeyMap{
	Top: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "go to top"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "go to bottom"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Styles for view mode
var (
	viewTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	viewHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10"))

	viewStatusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("15")).
			Padding(0, 1)

	viewHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	viewErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	viewFinalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)
)

const (
	viewHeaderHeight = 2 // Title + header line
	viewFooterHeight = 2 // Status + help
)

// fileChangeMsg is sent when the snapshot file changes
type fileChangeMsg struct{}

// reloadCompleteMsg is sent after a snapshot reload completes
type reloadCompleteMsg struct {
	snapshot report.Snapshot
	err      error
}

// RunViewMode starts the view-only mode with file watching
func RunViewMode(snapshotPath string) error {
	snapshotPath = filepath.Clean(snapshotPath)

	// Snapshots are replaced by rename, so watch the directory rather than the file
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(snapshotPath)); err != nil {
		return fmt.Errorf("failed to watch snapshot directory: %w", err)
	}

	m := newViewModel(snapshotPath, watcher)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("view mode error: %w", err)
	}

	return nil
}

func newViewModel(snapshotPath string, watcher *fsnotify.Watcher) viewModel {
	return viewModel{
		snapshotPath: snapshotPath,
		fileWatcher:  watcher,
	}
}

// Init loads the current snapshot and starts watching
func (m viewModel) Init() tea.Cmd {
	return tea.Batch(
		reloadSnapshot(m.snapshotPath),
		waitForFileChange(m.fileWatcher, m.snapshotPath),
	)
}

// waitForFileChange returns a command that waits for the snapshot to be
// written or replaced
func waitForFileChange(watcher *fsnotify.Watcher, path string) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(event.Name) != path {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					// Debounce: wait a bit for writes to complete
					time.Sleep(100 * time.Millisecond)
					return fileChangeMsg{}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				// Log error but continue watching
				debugf("[WATCHER] Error: %v", err)
			}
		}
	}
}

// reloadSnapshot reads the snapshot in the background
func reloadSnapshot(path string) tea.Cmd {
	return func() tea.Msg {
		s, err := report.ReadSnapshot(path)
		return reloadCompleteMsg{snapshot: s, err: err}
	}
}

// Update handles messages for the viewer
//
//nolint:ireturn // Bubble Tea framework requires returning tea.Model interface
func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		height := max(msg.Height-viewHeaderHeight-viewFooterHeight, 1)
		if !m.ready {
			// Initialize viewport on first size message
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.viewport.SetContent(m.renderSnapshotContent())

		return m, nil

	case fileChangeMsg:
		return m, tea.Batch(
			reloadSnapshot(m.snapshotPath),
			waitForFileChange(m.fileWatcher, m.snapshotPath), // Continue watching
		)

	case reloadCompleteMsg:
		switch {
		case msg.err != nil && !m.loaded && errors.Is(msg.err, os.ErrNotExist):
			m.errorMsg = "Waiting for the first snapshot..."
		case msg.err != nil:
			m.errorMsg = fmt.Sprintf("Error reloading: %v", msg.err)
		default:
			m.snapshot = msg.snapshot
			m.loaded = true
			m.reloads++
			m.lastReload = time.Now()
			m.errorMsg = ""
		}
		if m.ready {
			m.viewport.SetContent(m.renderSnapshotContent())
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, viewKeys.Quit):
			return m, tea.Quit

		case key.Matches(msg, viewKeys.Reload):
			return m, reloadSnapshot(m.snapshotPath)

		case key.Matches(msg, viewKeys.Top):
			m.viewport.GotoTop()
			return m, nil

		case key.Matches(msg, viewKeys.Bottom):
			m.viewport.GotoBottom()
			return m, nil
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the view
func (m viewModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	title := viewTitleStyle.Render(fmt.Sprintf("Snapshot Viewer: %s", m.snapshotPath))
	header := viewHeaderStyle.Render(m.renderHeader())

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", title, header, m.viewport.View(), m.renderStatus(), m.renderHelp())
}

func (m viewModel) renderHeader() string {
	if !m.loaded {
		return "No snapshot yet"
	}
	state := "running"
	if m.snapshot.Final {
		state = viewFinalStyle.Render("final")
	}
	return fmt.Sprintf("%s | step %d | fitness %.10g | %s",
		m.snapshot.Algorithm, m.snapshot.Step, m.snapshot.Fitness, state)
}

// renderSnapshotContent renders the best solution for the viewport
func (m viewModel) renderSnapshotContent() string {
	if !m.loaded {
		return ""
	}

	content := m.snapshot.Solution
	if m.snapshot.Detail != "" {
		content += "\n\n" + m.snapshot.Detail
	}
	return wrapLines(content, max(m.width, 1))
}

// renderStatus renders the status bar
func (m viewModel) renderStatus() string {
	var statusText string
	switch {
	case m.errorMsg != "":
		statusText = viewErrorStyle.Render(m.errorMsg)
	case m.loaded:
		statusText = fmt.Sprintf("Written %s | Reloaded %s | %d reloads",
			m.snapshot.UpdatedAt.Format("15:04:05"),
			m.lastReload.Format("15:04:05"),
			m.reloads,
		)
	default:
		statusText = "Waiting for snapshot"
	}

	return viewStatusStyle.Width(m.width).Render(statusText)
}

// renderHelp renders the help text
func (m viewModel) renderHelp() string {
	return viewHelpStyle.Render("↑/↓/pgup/pgdn: scroll | g/G: top/bottom | r: reload | q: quit")
}

// wrapLines hard-wraps every line at width runes
func wrapLines(s string, width int) string {
	var out []rune
	col := 0
	for _, r := range s {
		if r == '\n' {
			out = append(out, r)
			col = 0
			continue
		}
		if col == width {
			out = append(out, '\n')
			col = 0
		}
		out = append(out, r)
		col++
	}
	return string(out)
}
