// ABOUTME: Unit tests for TUI model behavior
// ABOUTME: Tests key handling, progress updates, rendering helpers and run completion

package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"popsearch/solution"
)

// fakeController records the calls the monitor makes
type fakeController struct {
	paused  bool
	stopped bool
	stops   int
}

func (f *fakeController) Pause() bool {
	if f.paused || f.stopped {
		return false
	}
	f.paused = true
	return true
}

func (f *fakeController) Resume() bool {
	if !f.paused {
		return false
	}
	f.paused = false
	return true
}

func (f *fakeController) Stop() bool {
	if f.stopped {
		return false
	}
	f.stops++
	f.stopped = true
	f.paused = false
	return true
}

func (f *fakeController) IsPaused() bool   { return f.paused }
func (f *fakeController) HasStopped() bool { return f.stopped }

// createTestModel creates a sized model with a fake controller
func createTestModel() (model, *fakeController) {
	ctrl := &fakeController{}
	m := initModel(ctrl, make(chan Update), make(chan struct{}), Options{
		Algorithm: "elitist-ga",
		Problem:   "max-ones over 64 bits",
		MaxSteps:  100,
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	return next.(model), ctrl
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func press(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(model)
	if !ok {
		t.Fatalf("Update returned %T, want model", next)
	}
	return nm, cmd
}

func TestInitModel(t *testing.T) {
	m, _ := createTestModel()

	if !m.ready {
		t.Error("Expected model to be ready after WindowSizeMsg")
	}
	if m.viewport.Height != 40-totalUIChrome {
		t.Errorf("Expected viewport height %d, got %d", 40-totalUIChrome, m.viewport.Height)
	}
	if m.received {
		t.Error("Expected no updates received yet")
	}
	if m.Init() == nil {
		t.Error("Expected Init to return a command")
	}
}

func TestSmallWindowUsesMinimumViewport(t *testing.T) {
	m, _ := createTestModel()
	m, _ = press(t, m, tea.WindowSizeMsg{Width: 5, Height: 5})

	if m.viewport.Width != minViewportWidth {
		t.Errorf("Expected width %d, got %d", minViewportWidth, m.viewport.Width)
	}
	if m.viewport.Height != minViewportHeight {
		t.Errorf("Expected height %d, got %d", minViewportHeight, m.viewport.Height)
	}
}

func TestApplyUpdate(t *testing.T) {
	m, _ := createTestModel()

	m, cmd := press(t, m, Update{
		Step:        3,
		StepsPerSec: 12.5,
		Stats:       solution.Stats{Size: 50, Best: 0.8, Worst: 0.2, Mean: 0.5},
		BestFitness: 0.8,
		Best:        "1101",
		Improved:    true,
	})
	if cmd == nil {
		t.Error("Expected a command waiting for the next update")
	}
	m, _ = press(t, m, Update{Step: 4, BestFitness: 0.8, Best: "1101"})

	if m.step != 4 {
		t.Errorf("Expected step 4, got %d", m.step)
	}
	if m.improvements != 1 {
		t.Errorf("Expected 1 improvement, got %d", m.improvements)
	}
	if len(m.history) != 2 {
		t.Errorf("Expected 2 history samples, got %d", len(m.history))
	}
	if !strings.Contains(m.viewport.View(), "1101") {
		t.Errorf("Expected viewport to show best solution, got %q", m.viewport.View())
	}
}

func TestHistoryIsCapped(t *testing.T) {
	m, _ := createTestModel()
	for i := range maxHistory + 10 {
		m.applyUpdate(Update{Step: i + 1, BestFitness: float64(i)})
	}

	if len(m.history) != maxHistory {
		t.Fatalf("Expected %d samples, got %d", maxHistory, len(m.history))
	}
	if m.history[len(m.history)-1] != float64(maxHistory+9) {
		t.Errorf("Expected latest sample last, got %g", m.history[len(m.history)-1])
	}
}

func TestDetailPreferredOverBest(t *testing.T) {
	m, _ := createTestModel()
	m.applyUpdate(Update{Step: 1, Best: "[0 1 2]", Detail: "town 0\ntown 1\ntown 2"})

	if !strings.Contains(m.viewport.View(), "town 1") {
		t.Errorf("Expected detail in viewport, got %q", m.viewport.View())
	}
}

func TestPauseKeyToggles(t *testing.T) {
	m, ctrl := createTestModel()

	m, _ = press(t, m, keyPress('p'))
	if !ctrl.paused || !m.paused {
		t.Fatal("Expected run to be paused")
	}

	m, _ = press(t, m, keyPress(' '))
	if ctrl.paused || m.paused {
		t.Error("Expected run to be resumed")
	}
}

func TestStopKey(t *testing.T) {
	m, ctrl := createTestModel()

	m, _ = press(t, m, keyPress('s'))
	if !ctrl.stopped {
		t.Fatal("Expected run to be stopped")
	}

	// pausing after a stop only reports the state
	m, _ = press(t, m, keyPress('p'))
	if ctrl.paused || m.paused {
		t.Error("Expected pause to be ignored after stop")
	}
	if m.statusMsg != "Run has ended" {
		t.Errorf("Expected status 'Run has ended', got %q", m.statusMsg)
	}
}

func TestQuitStopsRunningAlgorithm(t *testing.T) {
	m, ctrl := createTestModel()

	m, cmd := press(t, m, keyPress('q'))
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
	if !m.quitting {
		t.Error("Expected quitting to be set")
	}
	if ctrl.stops != 1 {
		t.Errorf("Expected one Stop call, got %d", ctrl.stops)
	}
}

func TestQuitAfterFinishDoesNotStop(t *testing.T) {
	m, ctrl := createTestModel()

	m, _ = press(t, m, runDoneMsg{})
	if !m.done {
		t.Fatal("Expected done after runDoneMsg")
	}
	_, _ = press(t, m, keyPress('q'))

	if ctrl.stops != 0 {
		t.Errorf("Expected no Stop calls after finish, got %d", ctrl.stops)
	}
	if !m.result().Finished {
		t.Error("Expected result to report a finished run")
	}
}

func TestWaitForFinish(t *testing.T) {
	finished := make(chan struct{})
	close(finished)

	if _, ok := waitForFinish(finished)().(runDoneMsg); !ok {
		t.Error("Expected runDoneMsg once finished is closed")
	}
}

func TestWaitForUpdateClosedChannel(t *testing.T) {
	updates := make(chan Update)
	close(updates)

	if msg := waitForUpdate(updates)(); msg != nil {
		t.Errorf("Expected nil message from closed channel, got %v", msg)
	}
}

func TestViewContent(t *testing.T) {
	m, _ := createTestModel()
	m.applyUpdate(Update{Step: 7, BestFitness: 0.75, Best: "0110", Stats: solution.Stats{Size: 10}})

	view := m.View()
	for _, want := range []string{"elitist-ga", "max-ones over 64 bits", "7 / 100", "0.75", "0110", "RUNNING"} {
		if !strings.Contains(view, want) {
			t.Errorf("Expected view to contain %q", want)
		}
	}

	m.done = true
	if !strings.Contains(m.View(), "FINISHED") {
		t.Error("Expected FINISHED in status bar")
	}
}

func TestViewBeforeReady(t *testing.T) {
	m := initModel(&fakeController{}, nil, nil, Options{})
	if m.View() != "Loading..." {
		t.Errorf("Expected loading view, got %q", m.View())
	}
}

func TestSparkline(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		width  int
		want   string
	}{
		{"empty", nil, 10, ""},
		{"flat", []float64{1, 1, 1}, 10, "▁▁▁"},
		{"rising", []float64{0, 7}, 10, "▁█"},
		{"clipped to width", []float64{0, 1, 2, 3, 4, 5, 6, 7}, 2, "▁█"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sparkline(tt.values, tt.width); got != tt.want {
				t.Errorf("sparkline(%v, %d) = %q, want %q", tt.values, tt.width, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"ab", 2, "ab"},
		{"abcd", 3, "abc"},
		{"ünïcödé strïng", 8, "ünïcö..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}
