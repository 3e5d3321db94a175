package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jobdeck/jobdeck/internal/jobboard"
)

// renderHeader renders the status bar: user, list counts and API health.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < 100

	parts := []string{bg.Render("jobdeck", styles.Logo)}

	if m.role == "" {
		parts = append(parts, bg.Render("not logged in", styles.WarningText))
	} else {
		roleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.StatusColor(string(m.role))))
		parts = append(parts, bg.Render(m.userName, styles.Text)+bg.Space()+bg.Render(string(m.role), roleStyle))
	}

	if m.board != nil {
		counts := []string{
			bg.Render("Jobs:", styles.MutedText) + bg.Space() + bg.Render(fmt.Sprint(len(m.board.Jobs.Items())), styles.Text),
		}
		switch m.role {
		case jobboard.RoleAdmin:
			counts = append(counts, bg.Render("Users:", styles.MutedText)+bg.Space()+bg.Render(fmt.Sprint(len(m.board.Users.Items())), styles.Text))
		case jobboard.RoleRecruiter:
			counts = append(counts, bg.Render("Posted:", styles.MutedText)+bg.Space()+bg.Render(fmt.Sprint(len(m.board.PostedJobs.Items())), styles.Text))
		case jobboard.RoleSeeker:
			counts = append(counts, bg.Render("Applied:", styles.MutedText)+bg.Space()+bg.Render(fmt.Sprint(len(m.board.Applications.Items())), styles.Text))
		}
		parts = append(parts, bg.Join(counts, "  "))

		health := m.board.Health.Snapshot()
		if ts := formatTimestamp(health.LastSuccess); ts != "" {
			parts = append(parts, bg.Render(ts, styles.MutedText))
		}
		switch {
		case health.IsOffline():
			parts = append(parts, bg.Render(classifyConnectionError(health.LastError), styles.DangerText)+bg.Space()+
				bg.Render("Retrying...", styles.WarningText.Bold(true)))
		case health.LastError != nil:
			maxErr := 80
			if compact {
				maxErr = 40
			}
			parts = append(parts, bg.Render("ERROR", styles.DangerText)+bg.Space()+
				bg.Render(truncate(describeError(health.LastError), maxErr), styles.DangerText))
		}
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// formatTimestamp formats t with a relative indicator.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	since := time.Since(t)
	out := t.Format("15:04:05")
	switch {
	case since < time.Minute:
		out += " (now)"
	case since < time.Hour:
		out += fmt.Sprintf(" (%dm ago)", int(since.Minutes()))
	case since < 24*time.Hour:
		out += fmt.Sprintf(" (%dh ago)", int(since.Hours()))
	}
	return out
}

// classifyConnectionError returns a short description of a refresh error.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	default:
		return "API ERROR"
	}
}

// renderCommandBar renders the key hints of the current view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd
	switch m.currentView {
	case ViewLogs:
		follow := "Pause"
		if !m.logState.follow {
			follow = "Follow"
		}
		level := m.logState.minLevel
		if level == "" {
			level = "all"
		}
		commands = []cmd{{"Space", follow}, {"v", "Level " + level}, {"j/k", "Scroll"}, {"esc", "Jobs"}}
	case ViewUsers:
		commands = []cmd{{"f", m.filterLabel()}, {"t", "Role"}, {"/", "Search"}, {"b", "Ban"}, {"u", "Unban"}}
	case ViewPosted:
		commands = []cmd{{"f", m.filterLabel()}, {"t", "Type"}, {"/", "Search"}, {"s", "Open/Close"}, {"d", "Delete"}}
	case ViewApplications:
		commands = []cmd{{"f", m.filterLabel()}, {"/", "Search"}}
	default:
		commands = []cmd{{"f", m.filterLabel()}, {"t", "Type"}, {"/", "Search"}}
		switch m.role {
		case jobboard.RoleAdmin:
			commands = append(commands, cmd{"s", "Open/Close"}, cmd{"d", "Delete"})
		case jobboard.RoleSeeker:
			commands = append(commands, cmd{"a", "Apply"})
		}
	}
	commands = append(commands, cmd{"Tab", "Views"}, cmd{"l", "Logs"}, cmd{"?", "More"})

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments, bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments, bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}

// renderStatusLine shows the search input, the latest notice or the short
// help.
func (m Model) renderStatusLine() string {
	styles := m.theme.Styles()
	switch {
	case m.searching:
		return m.search.View()
	case m.notice != "" && m.noticeIsErr:
		return styles.DangerText.Render(truncate(m.notice, m.width))
	case m.notice != "":
		return styles.MutedText.Render(truncate(m.notice, m.width))
	}
	return m.help.ShortHelpView(m.keys.ShortHelp())
}
