// ABOUTME: Event handling and state updates for the TUI
// ABOUTME: Implements the Bubble Tea Update() function and message handlers

package tui

import (
	"runtime/debug"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and updates the model
//
//nolint:ireturn // Bubble Tea framework requires returning tea.Model interface
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			m.debugf("[PANIC] Update panic: %v", r)
			m.debugf("[PANIC] Stack trace: %s", string(debug.Stack()))
			panic(r) // Re-panic so Bubble Tea can handle it
		}
	}()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		viewportHeight := max(msg.Height-totalUIChrome, minViewportHeight)
		viewportWidth := max(msg.Width, minViewportWidth)

		m.viewport.Width = viewportWidth
		m.viewport.Height = viewportHeight
		m.ready = true
		m.updateViewportContent()

		return m, nil

	case Update:
		m.applyUpdate(msg)
		return m, waitForUpdate(m.updates)

	case runDoneMsg:
		m.done = true
		m.paused = false
		m.debugf("[TUI] Run finished at step %d with best %.8g", m.step, m.stats.BestFitness)
		m.setStatus("Run finished at step %d - press q to quit", m.step)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m.handleQuitKey()

		case key.Matches(msg, keys.Pause):
			m.handlePauseKey()
			return m, nil

		case key.Matches(msg, keys.Stop):
			m.handleStopKey()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// applyUpdate folds a progress snapshot into the model
func (m *model) applyUpdate(u Update) {
	m.received = true
	m.step = u.Step
	m.stepsPerSec = u.StepsPerSec

	if u.Improved {
		m.improvements++
		m.lastImprove = time.Now()
		m.debugf("[TUI] Improvement at step %d: %.8g", u.Step, u.BestFitness)
	}

	m.history = append(m.history, u.BestFitness)
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}

	detailChanged := u.Detail != m.stats.Detail || u.Best != m.stats.Best
	m.stats = u
	if detailChanged {
		m.updateViewportContent()
	}
}

// handleQuitKey stops a run that is still going and exits
func (m *model) handleQuitKey() (model, tea.Cmd) {
	m.quitting = true
	if !m.done && !m.ctrl.HasStopped() {
		m.ctrl.Stop()
	}
	return *m, tea.Quit
}

// handlePauseKey toggles between paused and running
func (m *model) handlePauseKey() {
	if m.done || m.ctrl.HasStopped() {
		m.setStatus("Run has ended")
		return
	}

	if m.ctrl.IsPaused() {
		m.ctrl.Resume()
		m.setStatus("Resumed")
	} else {
		m.ctrl.Pause()
		m.setStatus("Pausing after the current step")
	}
	m.paused = m.ctrl.IsPaused()
}

// handleStopKey asks the run to stop after the current step
func (m *model) handleStopKey() {
	if m.done || m.ctrl.HasStopped() {
		m.setStatus("Run has ended")
		return
	}

	m.ctrl.Stop()
	m.paused = false
	m.setStatus("Stopping after the current step")
}
