package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jobdeck/jobdeck/internal/board"
	"github.com/jobdeck/jobdeck/internal/jobboard"
	"github.com/jobdeck/jobdeck/internal/jobboard/jobboardtest"
	"github.com/jobdeck/jobdeck/internal/prefs"
)

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T, role jobboard.Role, fake *jobboardtest.Fake) (Model, *board.Board) {
	t.Helper()
	b := board.New(nil)
	if err := b.Jobs.Reset(fake.Jobs); err != nil {
		t.Fatalf("Reset jobs: %v", err)
	}
	if err := b.Users.Reset(fake.Users); err != nil {
		t.Fatalf("Reset users: %v", err)
	}
	if err := b.PostedJobs.Reset(fake.PostedJobs); err != nil {
		t.Fatalf("Reset posted: %v", err)
	}
	m := New(context.Background(), Options{
		Board:     b,
		Actions:   board.NewActions(b, fake, "555-0100", nil),
		Role:      role,
		UserName:  "Ann",
		Prefs:     prefs.Default(),
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	})
	t.Cleanup(m.changes.close)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return next.(Model), b
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyPress(k))
		m = next.(Model)
	}
	return m, cmd
}

func rowIDs(m Model) []string {
	var ids []string
	for _, r := range m.rows() {
		ids = append(ids, r.id)
	}
	return ids
}

func sampleJobs() []jobboard.Job {
	return []jobboard.Job{
		{ID: "j1", Title: "Go Developer", CompanyName: "Acme", JobType: jobboard.FullTime, Status: jobboard.JobOpen},
		{ID: "j2", Title: "Rust Intern", CompanyName: "Initech", JobType: jobboard.Internship, Status: jobboard.JobClosed},
		{ID: "j3", Title: "SRE", CompanyName: "Go Corp", JobType: jobboard.FullTime, Status: jobboard.JobOpen},
	}
}

func TestViewsForRole(t *testing.T) {
	tests := []struct {
		role jobboard.Role
		want View
	}{
		{jobboard.RoleAdmin, ViewUsers},
		{jobboard.RoleRecruiter, ViewPosted},
		{jobboard.RoleSeeker, ViewApplications},
		{"", ViewLogs},
	}
	for _, tt := range tests {
		m, _ := newTestModel(t, tt.role, &jobboardtest.Fake{})
		m, _ = press(t, m, "tab")
		if m.currentView != tt.want {
			t.Errorf("role %q: tab went to %v, want %v", tt.role, m.currentView, tt.want)
		}
		m, _ = press(t, m, "esc")
		if m.currentView != ViewJobs {
			t.Errorf("role %q: esc went to %v, want jobs", tt.role, m.currentView)
		}
	}
}

func TestStatusFilterCyclesAndPersists(t *testing.T) {
	m, _ := newTestModel(t, jobboard.RoleAdmin, &jobboardtest.Fake{Jobs: sampleJobs()})

	if got := rowIDs(m); len(got) != 3 {
		t.Fatalf("rows = %v, want all jobs", got)
	}
	m, _ = press(t, m, "f")
	if got := strings.Join(rowIDs(m), ","); got != "j1,j3" {
		t.Fatalf("open rows = %s", got)
	}
	m, _ = press(t, m, "f")
	if got := strings.Join(rowIDs(m), ","); got != "j2" {
		t.Fatalf("closed rows = %s", got)
	}
	m, _ = press(t, m, "t", "t")
	if m.prefs.Jobs.JobType != string(jobboard.PartTime) {
		t.Fatalf("job type = %q", m.prefs.Jobs.JobType)
	}

	saved := prefs.Load(m.prefsPath)
	if saved.Jobs.Status != "closed" || saved.Jobs.JobType != "part-time" {
		t.Fatalf("saved filters = %+v", saved.Jobs)
	}
}

func TestSearchFiltersLive(t *testing.T) {
	m, _ := newTestModel(t, jobboard.RoleAdmin, &jobboardtest.Fake{Jobs: sampleJobs()})

	m, _ = press(t, m, "/", "g", "o")
	if !m.searching {
		t.Fatal("search input not active")
	}
	if got := strings.Join(rowIDs(m), ","); got != "j1,j3" {
		t.Fatalf("rows for %q = %s", m.prefs.Jobs.Search, got)
	}

	m, _ = press(t, m, "enter")
	if m.searching || m.prefs.Jobs.Search != "go" {
		t.Fatalf("after enter searching=%v search=%q", m.searching, m.prefs.Jobs.Search)
	}

	m, _ = press(t, m, "/", "esc")
	if m.prefs.Jobs.Search != "" || len(rowIDs(m)) != 3 {
		t.Fatalf("esc did not clear search: %q", m.prefs.Jobs.Search)
	}
}

func TestBanUser_ShowsOptimisticThenResult(t *testing.T) {
	fake := &jobboardtest.Fake{Users: []jobboard.User{{ID: "u1", Name: "Bob"}}}
	m, b := newTestModel(t, jobboard.RoleAdmin, fake)

	m, cmd := press(t, m, "tab", "b")
	if cmd == nil {
		t.Fatal("ban returned no command")
	}
	if !strings.Contains(m.notice, "ban Bob") {
		t.Fatalf("notice = %q", m.notice)
	}

	msg := cmd()
	next, _ := m.Update(msg)
	m = next.(Model)
	if u, _ := b.Users.Get("u1"); !u.Banned {
		t.Fatal("user not banned")
	}
	if m.noticeIsErr || !strings.HasSuffix(m.notice, "done") {
		t.Fatalf("notice = %q err=%v", m.notice, m.noticeIsErr)
	}
}

func TestBanUser_FailureRollsBackAndShowsError(t *testing.T) {
	fake := &jobboardtest.Fake{Users: []jobboard.User{{ID: "u1", Name: "Bob"}}}
	fake.SetError("BanUser", &jobboard.APIError{Status: 500, Message: "database down"})
	m, b := newTestModel(t, jobboard.RoleAdmin, fake)

	m, cmd := press(t, m, "tab", "b")
	next, _ := m.Update(cmd())
	m = next.(Model)

	if u, _ := b.Users.Get("u1"); u.Banned {
		t.Fatal("failed ban not rolled back")
	}
	if !m.noticeIsErr || !strings.Contains(m.notice, "database down") {
		t.Fatalf("notice = %q", m.notice)
	}
	if r, _ := m.selectedRow(); !r.failed {
		t.Fatalf("row = %+v, want failed marker", r)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	fake := &jobboardtest.Fake{Jobs: sampleJobs()}
	m, b := newTestModel(t, jobboard.RoleAdmin, fake)

	m, cmd := press(t, m, "d")
	if cmd != nil || m.confirmDelete != "j1" {
		t.Fatalf("confirmDelete = %q", m.confirmDelete)
	}
	m, _ = press(t, m, "n")
	if m.confirmDelete != "" || len(b.Jobs.Items()) != 3 {
		t.Fatal("cancel did not clear the confirmation")
	}

	m, cmd = press(t, m, "d", "y")
	if cmd == nil {
		t.Fatal("confirm returned no command")
	}
	next, _ := m.Update(cmd())
	m = next.(Model)
	if _, ok := b.Jobs.Get("j1"); ok {
		t.Fatal("j1 still present")
	}
	if m.noticeIsErr {
		t.Fatalf("notice = %q", m.notice)
	}
}

func TestApplyOnlyForSeekers(t *testing.T) {
	fake := &jobboardtest.Fake{Jobs: sampleJobs()}
	m, _ := newTestModel(t, jobboard.RoleRecruiter, fake)
	m, cmd := press(t, m, "a")
	if cmd != nil || !strings.Contains(m.notice, "only job seekers") {
		t.Fatalf("recruiter apply: cmd=%v notice=%q", cmd != nil, m.notice)
	}

	m, b := newTestModel(t, jobboard.RoleSeeker, fake)
	m, cmd = press(t, m, "a")
	if cmd == nil {
		t.Fatal("seeker apply returned no command")
	}
	next, _ := m.Update(cmd())
	m = next.(Model)
	apps := b.Applications.Items()
	if len(apps) != 1 || apps[0].JobID() != "j1" {
		t.Fatalf("applications = %+v", apps)
	}

	m, cmd = press(t, m, "a")
	next, _ = m.Update(cmd())
	m = next.(Model)
	if !m.noticeIsErr || !strings.Contains(m.notice, "already applied") {
		t.Fatalf("second apply notice = %q", m.notice)
	}
}

func TestThemeCycleSavesPrefs(t *testing.T) {
	m, _ := newTestModel(t, "", &jobboardtest.Fake{})
	if m.theme.Name != "Dracula" {
		t.Fatalf("initial theme = %q", m.theme.Name)
	}
	m, _ = press(t, m, "T")
	if m.theme.Name != "Slate" {
		t.Fatalf("theme = %q, want Slate", m.theme.Name)
	}
	if got := prefs.Load(m.prefsPath).Theme; got != "Slate" {
		t.Fatalf("saved theme = %q", got)
	}
}

func TestLogsView(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "jobdeck.log")
	content := "time=1 level=INFO msg=start\ntime=2 level=WARN msg=\"refresh failed\"\n"
	if err := os.WriteFile(logFile, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	m, _ := newTestModel(t, "", &jobboardtest.Fake{})
	m.logFile = logFile

	m, cmd := press(t, m, "l")
	if m.currentView != ViewLogs || cmd == nil {
		t.Fatalf("view = %v, cmd = %v", m.currentView, cmd != nil)
	}
	next, _ := m.Update(cmd())
	m = next.(Model)
	if len(m.logState.lines) != 2 {
		t.Fatalf("log lines = %v", m.logState.lines)
	}
	if !strings.Contains(m.View(), "refresh failed") {
		t.Fatal("log line not rendered")
	}

	m, _ = press(t, m, "v", "v")
	if m.logState.minLevel != "WARN" {
		t.Fatalf("minLevel = %q", m.logState.minLevel)
	}
	if out := m.View(); strings.Contains(out, "msg=start") || !strings.Contains(out, "refresh failed") {
		t.Fatal("level filter not applied")
	}

	m, _ = press(t, m, " ")
	if m.logState.follow {
		t.Fatal("space did not pause follow mode")
	}
}

func TestView_RendersHeaderAndRows(t *testing.T) {
	m, b := newTestModel(t, jobboard.RoleAdmin, &jobboardtest.Fake{Jobs: sampleJobs()})
	b.Health.Update(errors.New("dial tcp: connection refused"))
	b.Health.Update(errors.New("dial tcp: connection refused"))

	out := m.View()
	for _, want := range []string{"jobdeck", "Ann", "admin", "Go Developer", "OFFLINE"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&jobboard.APIError{Status: 401, Message: "jwt expired"}, "login required"},
		{&jobboard.APIError{Status: 400, Message: "You have already applied to this job"}, "already applied"},
		{&jobboard.APIError{Status: 500, Message: "boom"}, "boom"},
		{board.ErrNoPhone, board.ErrNoPhone.Error()},
	}
	for _, tt := range tests {
		if got := describeError(tt.err); got != tt.want {
			t.Errorf("describeError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
