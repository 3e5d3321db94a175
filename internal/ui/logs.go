package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jobdeck/jobdeck/internal/logtail"
)

const logTailLines = 500

// logState holds the log view state.
type logState struct {
	lines    []string
	follow   bool
	minLevel string // "" shows every level
	err      error
}

// logLinesMsg carries the tail of the log file.
type logLinesMsg struct {
	lines []string
	err   error
}

// readLogsCmd reads the tail of jobdeck's own log file.
func (m Model) readLogsCmd() tea.Cmd {
	path := m.logFile
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logtail.Read(path, logTailLines)
		return logLinesMsg{lines: lines, err: err}
	}
}

func (m *Model) handleLogLines(msg logLinesMsg) {
	m.logState.err = msg.err
	if msg.err == nil {
		m.logState.lines = msg.lines
	}
	m.updateLogViewport()
}

// updateLogViewport sizes the viewport and re-renders its content.
func (m *Model) updateLogViewport() {
	width, height := max(m.width-2, 0), max(m.height-5, 0)
	if m.logViewport.Width == 0 && m.logViewport.Height == 0 {
		m.logViewport = viewport.New(width, height)
	}
	m.logViewport.Width, m.logViewport.Height = width, height
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
	m.logViewport.SetContent(m.renderLogContent())
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// renderLogs renders the log view.
func (m Model) renderLogs() string {
	title := ViewLogs.Title()
	if m.logState.minLevel != "" {
		title += " ≥" + m.logState.minLevel
	}
	if !m.logState.follow {
		title += " (paused)"
	}
	return m.renderTitledBox(title, m.logViewport.View(), m.width, m.height-3, true)
}

// renderLogContent colors each line by its level.
func (m Model) renderLogContent() string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles()
	width := m.logViewport.Width

	if m.logState.err != nil {
		return bg.FillLine(bg.Render(fmt.Sprintf("Cannot read %s: %v", m.logFile, m.logState.err), styles.DangerText), width)
	}
	lines := logtail.AtLeast(m.logState.lines, m.logState.minLevel)
	if len(lines) == 0 {
		return bg.FillLine(bg.Render("No log entries", styles.MutedText), width)
	}

	var b strings.Builder
	for i, line := range lines {
		levelStyle := m.levelStyle(logtail.Level(line), styles)
		content := bg.Render(fmt.Sprintf("%4d │ ", i+1), styles.FaintText) + bg.Render(line, levelStyle)
		b.WriteString(bg.FillLine(content, width))
		if i < len(lines)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// levelStyle returns the style for a log level.
func (m Model) levelStyle(level string, styles Styles) lipgloss.Style {
	switch level {
	case "WARN":
		return styles.WarningText
	case "ERROR":
		return styles.DangerText
	case "DEBUG":
		return styles.InfoText
	default:
		return styles.Text
	}
}

// handleLogsKey processes keyboard input for the log view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		if m.logState.follow {
			m.logViewport.GotoBottom()
		}
	case key.Matches(msg, m.keys.CycleLevel):
		m.logState.minLevel = nextLevel(m.logState.minLevel)
		m.updateLogViewport()
	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
		m.logState.follow = false
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		m.logState.follow = true
	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
		m.logState.follow = false
	case key.Matches(msg, m.keys.Up):
		m.logViewport.ScrollUp(1)
		m.logState.follow = false
	}
	return m, nil
}

// nextLevel cycles "" -> INFO -> WARN -> ERROR -> "".
func nextLevel(current string) string {
	switch current {
	case "":
		return "INFO"
	case "INFO":
		return "WARN"
	case "WARN":
		return "ERROR"
	}
	return ""
}
