package ui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jobdeck/jobdeck/internal/board"
)

// boardChangedMsg reports that at least one board list changed.
type boardChangedMsg struct{}

// subscription listens to every board list. Notifications coalesce, so a
// burst of changes yields one redraw.
type subscription struct {
	jobs, posted, users, apps <-chan struct{}

	once   sync.Once
	cancel []func()
	done   chan struct{}
}

func subscribe(b *board.Board) *subscription {
	s := &subscription{done: make(chan struct{})}
	var unsub func()
	s.jobs, unsub = b.Jobs.Subscribe()
	s.cancel = append(s.cancel, unsub)
	s.posted, unsub = b.PostedJobs.Subscribe()
	s.cancel = append(s.cancel, unsub)
	s.users, unsub = b.Users.Subscribe()
	s.cancel = append(s.cancel, unsub)
	s.apps, unsub = b.Applications.Subscribe()
	s.cancel = append(s.cancel, unsub)
	return s
}

// wait blocks until a list changes. It returns nil once ctx ends or the
// subscription closes.
func (s *subscription) wait(ctx context.Context) tea.Cmd {
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-s.jobs:
		case <-s.posted:
		case <-s.users:
		case <-s.apps:
		case <-s.done:
			return nil
		case <-ctx.Done():
			return nil
		}
		return boardChangedMsg{}
	}
}

func (s *subscription) close() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		close(s.done)
		for _, c := range s.cancel {
			c()
		}
	})
}
