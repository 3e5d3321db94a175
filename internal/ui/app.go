package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jobdeck/jobdeck/internal/board"
	"github.com/jobdeck/jobdeck/internal/jobboard"
	"github.com/jobdeck/jobdeck/internal/logging"
	"github.com/jobdeck/jobdeck/internal/prefs"
)

// View represents the current active view.
type View int

const (
	ViewJobs View = iota
	ViewPosted
	ViewUsers
	ViewApplications
	ViewLogs
)

// Title returns the pane title of v.
func (v View) Title() string {
	switch v {
	case ViewPosted:
		return "My Postings"
	case ViewUsers:
		return "Users"
	case ViewApplications:
		return "My Applications"
	case ViewLogs:
		return "jobdeck Log"
	default:
		return "Jobs"
	}
}

// viewsFor returns the list views available to role, in tab order.
func viewsFor(role jobboard.Role) []View {
	switch role {
	case jobboard.RoleAdmin:
		return []View{ViewJobs, ViewUsers, ViewLogs}
	case jobboard.RoleRecruiter:
		return []View{ViewJobs, ViewPosted, ViewLogs}
	case jobboard.RoleSeeker:
		return []View{ViewJobs, ViewApplications, ViewLogs}
	default:
		return []View{ViewJobs, ViewLogs}
	}
}

// Options configures the UI.
type Options struct {
	Board     *board.Board
	Actions   *board.Actions
	Role      jobboard.Role
	UserName  string
	Prefs     prefs.Prefs
	PrefsPath string
	LogFile   string
	PollTick  time.Duration
	// Refresh fetches every list immediately. Nil disables the refresh key.
	Refresh func(context.Context) error
	Log     logging.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	board     *board.Board
	actions   *board.Actions
	refresh   func(context.Context) error
	log       logging.Logger
	role      jobboard.Role
	userName  string
	prefs     prefs.Prefs
	prefsPath string
	logFile   string
	pollTick  time.Duration
	changes   *subscription

	keys    keyMap
	help    help.Model
	theme   Theme
	spinner spinner.Model

	views       []View
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool

	// selected is the cursor row per list view.
	selected map[View]int

	search    textinput.Model
	searching bool

	// confirmDelete holds the id awaiting a delete confirmation.
	confirmDelete string

	notice      string
	noticeIsErr bool
	lastUpdated time.Time

	logViewport viewport.Model
	logState    logState
}

// New creates a new Bubble Tea model.
func New(ctx context.Context, opts Options) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = time.Second
	}
	log := opts.Log
	if log == nil {
		log = logging.Nop()
	}
	p := opts.Prefs
	if p.Theme == "" {
		p.Theme = prefs.Default().Theme
	}

	search := textinput.New()
	search.Placeholder = "Search..."
	search.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	m := Model{
		ctx:         ctx,
		board:       opts.Board,
		actions:     opts.Actions,
		refresh:     opts.Refresh,
		log:         log,
		role:        opts.Role,
		userName:    opts.UserName,
		prefs:       p,
		prefsPath:   opts.PrefsPath,
		logFile:     opts.LogFile,
		pollTick:    pollTick,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		theme:       GetTheme(p.Theme),
		spinner:     sp,
		views:       viewsFor(opts.Role),
		currentView: ViewJobs,
		selected:    make(map[View]int),
		search:      search,
		logState:    logState{follow: true},
	}
	if opts.Board != nil {
		m.changes = subscribe(opts.Board)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick), m.spinner.Tick}
	if m.changes != nil {
		cmds = append(cmds, m.changes.wait(m.ctx))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		m.updateLogViewport()
		return m, nil

	case tickMsg:
		var cmds []tea.Cmd
		if m.currentView == ViewLogs {
			cmds = append(cmds, m.readLogsCmd())
		}
		cmds = append(cmds, tickCmd(m.pollTick))
		return m, tea.Batch(cmds...)

	case boardChangedMsg:
		m.lastUpdated = time.Now()
		m.clampSelection()
		return m, m.changes.wait(m.ctx)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case opDoneMsg:
		m.handleOpDone(msg)
		return m, nil

	case refreshDoneMsg:
		if msg.err != nil {
			m.setError("refresh", msg.err)
		} else {
			m.setNotice("refreshed")
		}
		return m, nil

	case logLinesMsg:
		m.handleLogLines(msg)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	if m.currentView == ViewLogs {
		b.WriteString(m.renderLogs())
	} else {
		b.WriteString(m.renderList())
	}
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())
	return b.String()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.searching {
		return m.handleSearchKey(msg)
	}
	if m.confirmDelete != "" {
		return m.handleConfirmKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.changes.close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		return m.switchView(m.nextView(1))

	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView(m.nextView(-1))

	case key.Matches(msg, m.keys.ViewLogs):
		return m.switchView(ViewLogs)

	case key.Matches(msg, m.keys.Escape):
		m.notice = ""
		return m.switchView(ViewJobs)

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCmd()
	}

	if m.currentView == ViewLogs {
		return m.handleLogsKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.currentView = v
	m.confirmDelete = ""
	if v == ViewLogs {
		return m, m.readLogsCmd()
	}
	m.clampSelection()
	return m, nil
}

func (m Model) nextView(step int) View {
	for i, v := range m.views {
		if v == m.currentView {
			n := len(m.views)
			return m.views[((i+step)%n+n)%n]
		}
	}
	return ViewJobs
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.log.Warn(m.ctx, "save preferences", "error", err)
	}
}

func (m *Model) setNotice(text string) {
	m.notice, m.noticeIsErr = text, false
}

func (m *Model) setError(what string, err error) {
	m.notice, m.noticeIsErr = what+": "+describeError(err), true
}

// Messages

type tickMsg time.Time

type refreshDoneMsg struct{ err error }

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) refreshCmd() tea.Cmd {
	if m.refresh == nil {
		return nil
	}
	ctx, refresh := m.ctx, m.refresh
	return func() tea.Msg {
		return refreshDoneMsg{err: refresh(ctx)}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, opts Options) error {
	m := New(ctx, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	m.changes.close()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
