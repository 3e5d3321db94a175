package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jobdeck/jobdeck/internal/board"
	"github.com/jobdeck/jobdeck/internal/filter"
	"github.com/jobdeck/jobdeck/internal/jobboard"
	"github.com/jobdeck/jobdeck/internal/state"
)

// row is one rendered list entry.
type row struct {
	id      string
	title   string
	detail  string
	status  string
	pending bool
	failed  bool
}

// rows returns the filtered rows of the current list view.
func (m Model) rows() []row {
	if m.board == nil {
		return nil
	}
	switch m.currentView {
	case ViewJobs:
		jobs := filter.Collect(m.board.Jobs.Items(), m.prefs.Jobs.Criteria())
		return jobRows(jobs, m.board.Jobs, board.OpJobStatus, board.OpDeleteJob)
	case ViewPosted:
		jobs := filter.Collect(m.board.PostedJobs.Items(), m.prefs.Jobs.Criteria())
		return jobRows(jobs, m.board.PostedJobs, board.OpUpdatePosted, board.OpDeletePosted)
	case ViewUsers:
		users := filter.Collect(m.board.Users.Items(), m.prefs.Users.Criteria())
		out := make([]row, 0, len(users))
		for _, u := range users {
			rec := m.board.Users.Status(board.OpKey(board.OpBanUser, u.ID))
			out = append(out, row{
				id:      u.ID,
				title:   u.Name,
				detail:  fmt.Sprintf("%s · %s", u.Email, u.Role),
				status:  u.AccountStatus(),
				pending: rec.Status == state.StatusPending,
				failed:  rec.Status == state.StatusFailed,
			})
		}
		return out
	case ViewApplications:
		apps := filter.Collect(m.board.Applications.Items(), m.prefs.Applications.Criteria())
		out := make([]row, 0, len(apps))
		for _, a := range apps {
			title := a.FilterValue("title")
			if title == "" {
				title = "Job " + a.JobID()
			}
			rec := m.board.Applications.Status(board.OpKey(board.OpApplyToJob, a.JobID()))
			out = append(out, row{
				id:      a.ID,
				title:   title,
				detail:  a.FilterValue("company"),
				status:  string(a.Status),
				pending: board.IsTemporaryID(a.ID),
				failed:  rec.Status == state.StatusFailed,
			})
		}
		return out
	}
	return nil
}

func jobRows(jobs []jobboard.Job, s *state.Synchronizer[jobboard.Job], statusOp, deleteOp string) []row {
	out := make([]row, 0, len(jobs))
	for _, j := range jobs {
		st := s.Status(board.OpKey(statusOp, j.ID))
		del := s.Status(board.OpKey(deleteOp, j.ID))
		out = append(out, row{
			id:      j.ID,
			title:   j.Title,
			detail:  strings.Join(nonEmpty(j.CompanyName, j.Location, string(j.JobType)), " · "),
			status:  string(j.Status),
			pending: board.IsTemporaryID(j.ID) || st.Status == state.StatusPending || del.Status == state.StatusPending,
			failed:  st.Status == state.StatusFailed || del.Status == state.StatusFailed,
		})
	}
	return out
}

func nonEmpty(values ...string) []string {
	return slices.DeleteFunc(values, func(v string) bool { return strings.TrimSpace(v) == "" })
}

// selectedRow returns the row under the cursor.
func (m Model) selectedRow() (row, bool) {
	rows := m.rows()
	i := m.selected[m.currentView]
	if i < 0 || i >= len(rows) {
		return row{}, false
	}
	return rows[i], true
}

// clampSelection keeps the cursor inside the current list.
func (m *Model) clampSelection() {
	if m.currentView == ViewLogs {
		return
	}
	n := len(m.rows())
	i := m.selected[m.currentView]
	switch {
	case n == 0:
		i = 0
	case i >= n:
		i = n - 1
	case i < 0:
		i = 0
	}
	m.selected[m.currentView] = i
}

// handleListKey processes navigation, filter and operation keys of a list.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.rows())
	i := m.selected[m.currentView]

	switch {
	case key.Matches(msg, m.keys.Down):
		if i < n-1 {
			m.selected[m.currentView] = i + 1
		}
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if i > 0 {
			m.selected[m.currentView] = i - 1
		}
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.selected[m.currentView] = 0
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.selected[m.currentView] = max(n-1, 0)
		return m, nil
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(m.searchValue())
		m.search.CursorEnd()
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.CycleFilter):
		m.cycleStatusFilter()
		m.clampSelection()
		m.savePrefs()
		return m, nil
	case key.Matches(msg, m.keys.CycleType):
		m.cycleTypeFilter()
		m.clampSelection()
		m.savePrefs()
		return m, nil
	}
	return m.handleOperationKey(msg)
}

// handleSearchKey edits the search filter of the current view live.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		m.savePrefs()
		return m, nil
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.setSearchValue("")
		m.clampSelection()
		m.savePrefs()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.setSearchValue(m.search.Value())
	m.clampSelection()
	return m, cmd
}

func (m Model) searchValue() string {
	switch m.currentView {
	case ViewUsers:
		return m.prefs.Users.Search
	case ViewApplications:
		return m.prefs.Applications.Search
	default:
		return m.prefs.Jobs.Search
	}
}

func (m *Model) setSearchValue(v string) {
	switch m.currentView {
	case ViewUsers:
		m.prefs.Users.Search = v
	case ViewApplications:
		m.prefs.Applications.Search = v
	default:
		m.prefs.Jobs.Search = v
	}
}

var (
	jobStatusCycle     = []string{filter.All, string(jobboard.JobOpen), string(jobboard.JobClosed)}
	accountStatusCycle = []string{filter.All, "active", "banned"}
	roleCycle          = []string{filter.All, string(jobboard.RoleSeeker), string(jobboard.RoleRecruiter), string(jobboard.RoleAdmin)}
	appStatusCycle     = []string{
		filter.All,
		string(jobboard.ApplicationPending),
		string(jobboard.ApplicationReviewed),
		string(jobboard.ApplicationAccepted),
		string(jobboard.ApplicationRejected),
	}
)

func jobTypeCycle() []string {
	out := []string{filter.All}
	for _, t := range jobboard.JobTypes {
		out = append(out, string(t))
	}
	return out
}

// cycle returns the value after current in values. Unknown values restart
// the cycle.
func cycle(values []string, current string) string {
	if current == "" {
		current = filter.All
	}
	i := slices.Index(values, current)
	return values[(i+1)%len(values)]
}

func (m *Model) cycleStatusFilter() {
	switch m.currentView {
	case ViewUsers:
		m.prefs.Users.Status = cycle(accountStatusCycle, m.prefs.Users.Status)
	case ViewApplications:
		m.prefs.Applications.Status = cycle(appStatusCycle, m.prefs.Applications.Status)
	default:
		m.prefs.Jobs.Status = cycle(jobStatusCycle, m.prefs.Jobs.Status)
	}
}

func (m *Model) cycleTypeFilter() {
	switch m.currentView {
	case ViewUsers:
		m.prefs.Users.Role = cycle(roleCycle, m.prefs.Users.Role)
	case ViewJobs, ViewPosted:
		m.prefs.Jobs.JobType = cycle(jobTypeCycle(), m.prefs.Jobs.JobType)
	}
}

// filterLabel describes the active categorical filters of the view.
func (m Model) filterLabel() string {
	label := func(v string) string {
		if v == "" {
			return filter.All
		}
		return v
	}
	switch m.currentView {
	case ViewUsers:
		return label(m.prefs.Users.Status) + "/" + label(m.prefs.Users.Role)
	case ViewApplications:
		return label(m.prefs.Applications.Status)
	default:
		return label(m.prefs.Jobs.Status) + "/" + label(m.prefs.Jobs.JobType)
	}
}

// renderList renders the current list view in a titled box.
func (m Model) renderList() string {
	height := m.height - 3 // header, command bar, status line
	rows := m.rows()
	title := fmt.Sprintf("%s (%d)", m.currentView.Title(), len(rows))
	if m.searchValue() != "" {
		title += " /" + truncate(m.searchValue(), 18)
	}

	bgColor := m.theme.FocusBg
	width := m.width - 2
	if len(rows) == 0 {
		styles := m.theme.Styles()
		empty := lipgloss.NewStyle().Background(lipgloss.Color(bgColor)).Width(width).
			Render(styles.MutedText.Background(lipgloss.Color(bgColor)).Render("Nothing to show"))
		return m.renderTitledBox(title, empty, m.width, height, true)
	}

	// Scroll so the cursor stays visible.
	visible := max(height-2, 1)
	cursor := m.selected[m.currentView]
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := min(start+visible, len(rows))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		selected := i == cursor
		bg := bgColor
		if selected {
			bg = m.theme.SelectionBg
		}
		content := m.formatRow(rows[i], width, bg, selected)
		lines = append(lines, lipgloss.NewStyle().Background(lipgloss.Color(bg)).Width(width).Render(content))
	}
	return m.renderTitledBox(title, strings.Join(lines, "\n"), m.width, height, true)
}

// formatRow formats "title · detail  status" with inline colors.
func (m Model) formatRow(r row, width int, bgColor string, selected bool) string {
	bg := NewBgStyle(bgColor)
	styles := m.theme.Styles()

	marker := " "
	switch {
	case r.pending:
		marker = m.spinner.View()
	case r.failed:
		marker = "!"
	}

	status := r.status
	detailWidth := max(width-len(r.title)-len(status)-8, 0)

	titleStyle, detailStyle, markerStyle := styles.Text, styles.MutedText, styles.WarningText
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.StatusColor(status)))
	if r.failed {
		markerStyle = styles.DangerText
	}
	if selected {
		sel := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		titleStyle, detailStyle, statusStyle = sel, sel, sel
	}

	out := bg.Render(marker, markerStyle) + bg.Space() + bg.Render(truncate(r.title, width/2), titleStyle)
	if d := truncate(r.detail, detailWidth); d != "" {
		out += bg.Render(" · ", styles.FaintText) + bg.Render(d, detailStyle)
	}
	if status != "" {
		out += bg.Spaces(2) + bg.Render(status, statusStyle)
	}
	return out
}

// renderTitledBox renders content in a box with the title in the top border.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	borderColor, bgColor := m.theme.Border, m.theme.SurfaceAlt
	if focused {
		borderColor, bgColor = m.theme.BorderFocus, m.theme.FocusBg
	}
	bg := NewBgStyle(bgColor)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColor))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 0)
	title = truncate(title, max(innerWidth-4, 0))
	leftPad := max((innerWidth-len(title)-2)/2, 0)
	rightPad := max(innerWidth-len(title)-2-leftPad, 0)

	top := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)
	bottom := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).Background(lipgloss.Color(bgColor))
	contentLines := strings.Split(content, "\n")
	boxHeight := max(height-2, 0)
	lines := make([]string, 0, boxHeight)
	for i := range boxHeight {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		lines = append(lines, bg.Render("│", borderStyle)+contentStyle.Render(line)+bg.Render("│", borderStyle))
	}
	return top + "\n" + strings.Join(lines, "\n") + "\n" + bottom
}

// truncate truncates s to max runes with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
