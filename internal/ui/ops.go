package ui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jobdeck/jobdeck/internal/board"
	"github.com/jobdeck/jobdeck/internal/jobboard"
	"github.com/jobdeck/jobdeck/internal/state"
)

// opDoneMsg carries the outcome of one board operation.
type opDoneMsg struct {
	label string
	err   error
}

// handleOperationKey starts the operation bound to msg for the selected row.
func (m Model) handleOperationKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.actions == nil {
		return m, nil
	}
	r, ok := m.selectedRow()
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Ban) && m.currentView == ViewUsers:
		return m.start("ban "+r.title, func(ctx context.Context) error {
			_, err := m.actions.BanUser(ctx, r.id)
			return err
		})

	case key.Matches(msg, m.keys.Unban) && m.currentView == ViewUsers:
		return m.start("unban "+r.title, func(ctx context.Context) error {
			_, err := m.actions.UnbanUser(ctx, r.id)
			return err
		})

	case key.Matches(msg, m.keys.ToggleStatus):
		switch {
		case m.currentView == ViewJobs && m.role == jobboard.RoleAdmin:
			return m.start("toggle "+r.title, func(ctx context.Context) error {
				_, err := m.actions.ToggleJobStatus(ctx, r.id)
				return err
			})
		case m.currentView == ViewPosted:
			return m.start("toggle "+r.title, func(ctx context.Context) error {
				_, err := m.actions.TogglePostedJobStatus(ctx, r.id)
				return err
			})
		}

	case key.Matches(msg, m.keys.Delete):
		if (m.currentView == ViewJobs && m.role == jobboard.RoleAdmin) || m.currentView == ViewPosted {
			m.confirmDelete = r.id
			m.setNotice("delete " + r.title + "? press y to confirm")
		}
		return m, nil

	case key.Matches(msg, m.keys.Apply):
		if m.currentView != ViewJobs {
			return m, nil
		}
		if m.role != jobboard.RoleSeeker {
			m.setNotice("only job seekers can apply")
			return m, nil
		}
		return m.start("apply to "+r.title, func(ctx context.Context) error {
			_, err := m.actions.ApplyToJob(ctx, r.id)
			return err
		})
	}
	return m, nil
}

// handleConfirmKey answers a pending delete confirmation.
func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.confirmDelete
	m.confirmDelete = ""
	if !key.Matches(msg, m.keys.Confirm) {
		m.setNotice("delete cancelled")
		return m, nil
	}
	if m.currentView == ViewPosted {
		return m.start("delete posting", func(ctx context.Context) error {
			return m.actions.DeletePostedJob(ctx, id)
		})
	}
	return m.start("delete job", func(ctx context.Context) error {
		return m.actions.DeleteJob(ctx, id)
	})
}

// start runs op in the background. The optimistic change reaches the screen
// through the board subscription; the returned command reports the server's
// answer.
func (m Model) start(label string, op func(context.Context) error) (tea.Model, tea.Cmd) {
	done := make(chan error, 1)
	go func() { done <- op(m.ctx) }()
	m.setNotice(label + "...")
	return m, func() tea.Msg {
		return opDoneMsg{label: label, err: <-done}
	}
}

func (m *Model) handleOpDone(msg opDoneMsg) {
	if msg.err != nil {
		m.setError(msg.label, msg.err)
		m.log.Debug(m.ctx, "operation failed", "op", msg.label, "error", msg.err)
		return
	}
	m.setNotice(msg.label + " done")
}

// describeError turns operation errors into short status-line text.
func describeError(err error) string {
	switch {
	case state.IsInProgress(err):
		return "already in progress"
	case errors.Is(err, jobboard.ErrUnauthorized):
		return "login required"
	case errors.Is(err, jobboard.ErrAlreadyApplied):
		return "already applied"
	case errors.Is(err, board.ErrNoPhone):
		return board.ErrNoPhone.Error()
	case errors.Is(err, context.Canceled):
		return "cancelled"
	}
	return jobboard.Message(err)
}
