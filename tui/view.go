// ABOUTME: Rendering and display functions for the TUI
// ABOUTME: Implements the Bubble Tea View() function and all render helpers

package tui

import (
	"fmt"
	"math"
	"runtime/debug"
	"strings"
	"time"
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// View renders the TUI
func (m model) View() string {
	defer func() {
		if r := recover(); r != nil {
			m.debugf("[PANIC] View panic: %v", r)
			m.debugf("[PANIC] Stack trace: %s", string(debug.Stack()))
			panic(r) // Re-panic so Bubble Tea can handle it
		}
	}()

	if m.quitting {
		return "Stopping and exiting...\n"
	}
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderTitle() + "\n")
	b.WriteString(m.renderStats() + "\n")
	b.WriteString(sectionStyle.Render("Best solution") + "\n")
	b.WriteString(m.viewport.View() + "\n")
	b.WriteString(m.renderStatus() + "\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

// renderTitle renders the algorithm name and problem line
func (m model) renderTitle() string {
	title := titleStyle.Render("popsearch · " + m.algorithm)
	return title + "\n" + helpStyle.Render(truncate(m.problem, max(m.width, minViewportWidth)))
}

// renderStats renders the numeric progress block and the sparkline
func (m model) renderStats() string {
	steps := fmt.Sprintf("%d", m.step)
	if m.maxSteps > 0 {
		steps = fmt.Sprintf("%d / %d", m.step, m.maxSteps)
	}

	best := "-"
	if m.received {
		best = formatFitness(m.stats.BestFitness)
	}

	pop := "-"
	if m.stats.Stats.Size > 0 {
		pop = fmt.Sprintf("%d  best %s  mean %s  worst %s",
			m.stats.Stats.Size,
			formatFitness(m.stats.Stats.Best),
			formatFitness(m.stats.Stats.Mean),
			formatFitness(m.stats.Stats.Worst))
	}

	lines := []string{
		labelStyle.Render("Step") + valueStyle.Render(steps) + helpStyle.Render(fmt.Sprintf("  (%.1f steps/s)", m.stepsPerSec)),
		labelStyle.Render("Best fitness") + valueStyle.Render(best) +
			helpStyle.Render(fmt.Sprintf("  %d improvements, last %s ago", m.improvements, time.Since(m.lastImprove).Round(time.Second))),
		labelStyle.Render("Population") + pop,
		labelStyle.Render("Progress") + sparkStyle.Render(sparkline(m.history, max(m.width-16, 10))),
	}
	return strings.Join(lines, "\n") + "\n"
}

// updateViewportContent sets the best-solution text
func (m *model) updateViewportContent() {
	content := m.stats.Best
	if m.stats.Detail != "" {
		content = m.stats.Detail
	}
	if content == "" {
		content = "(waiting for the first step)"
	}
	m.viewport.SetContent(wrap(content, max(m.viewport.Width, minViewportWidth)))
}

// renderStatus renders the status bar
func (m model) renderStatus() string {
	if m.statusMsg != "" && time.Since(m.statusMsgAge) < statusMessageDuration {
		return statusStyle.Width(m.width).Render(m.statusMsg)
	}

	var state string
	switch {
	case m.done:
		state = doneStyle.Render("FINISHED")
	case m.paused:
		state = pausedStyle.Render("PAUSED")
	default:
		state = "RUNNING"
	}

	status := fmt.Sprintf("%s | Step %d | Elapsed %s | Best %s",
		state,
		m.step,
		time.Since(m.start).Round(time.Second),
		formatFitness(m.stats.BestFitness),
	)
	return statusStyle.Width(m.width).Render(status)
}

// renderHelp renders the help text
func (m model) renderHelp() string {
	return helpStyle.Render(" p/space: pause/resume | s: stop | ↑/↓/pgup/pgdn: scroll solution | q: quit")
}

// sparkline draws the last width values scaled between their min and max
func sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			continue
		}
		lo = min(lo, v)
		hi = max(hi, v)
	}

	out := make([]rune, len(values))
	for i, v := range values {
		switch {
		case math.IsInf(v, 0) || math.IsNaN(v) || hi <= lo:
			out[i] = sparkBlocks[0]
		default:
			level := int((v - lo) / (hi - lo) * float64(len(sparkBlocks)-1))
			out[i] = sparkBlocks[level]
		}
	}
	return string(out)
}

// wrap breaks long lines at width runes
func wrap(s string, width int) string {
	var b strings.Builder
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		r := []rune(line)
		for len(r) > width {
			b.WriteString(string(r[:width]))
			b.WriteByte('\n')
			r = r[width:]
		}
		b.WriteString(string(r))
	}
	return b.String()
}

func formatFitness(f float64) string {
	if math.IsInf(f, -1) {
		return "-"
	}
	return fmt.Sprintf("%.8g", f)
}
