// Package board holds jobdeck's local mirror of the job board and the
// user-facing operations that change it.
//
// Every list lives in its own state.Synchronizer, so a slow ban never
// blocks a job deletion. Actions turns each operation into exactly one
// Synchronizer.Mutate call: the optimistic change is visible immediately and
// is confirmed or rolled back when the API answers.
package board

import (
	"github.com/jobdeck/jobdeck/internal/jobboard"
	"github.com/jobdeck/jobdeck/internal/logging"
	"github.com/jobdeck/jobdeck/internal/state"
)

// Board is the set of synchronized lists shown by the UI and CLI.
type Board struct {
	// Jobs is the browse list: all open jobs, or every job for admins.
	Jobs *state.Synchronizer[jobboard.Job]
	// PostedJobs is a recruiter's own postings.
	PostedJobs   *state.Synchronizer[jobboard.Job]
	Users        *state.Synchronizer[jobboard.User]
	Applications *state.Synchronizer[jobboard.Application]
	// Profile holds at most one entry: the logged-in user's own account.
	Profile *state.Synchronizer[jobboard.User]
	Health  *state.Health
}

// New builds an empty board.
func New(log logging.Logger) *Board {
	if log == nil {
		log = logging.Nop()
	}
	return &Board{
		Jobs:         newSync(func(id string) jobboard.Job { return jobboard.Job{ID: id} }, log.With("list", "jobs")),
		PostedJobs:   newSync(func(id string) jobboard.Job { return jobboard.Job{ID: id} }, log.With("list", "posted")),
		Users:        newSync(func(id string) jobboard.User { return jobboard.User{ID: id} }, log.With("list", "users")),
		Applications: newSync(func(id string) jobboard.Application { return jobboard.Application{ID: id} }, log.With("list", "applications")),
		Profile:      newSync(func(id string) jobboard.User { return jobboard.User{ID: id} }, log.With("list", "profile")),
		Health:       &state.Health{},
	}
}

func newSync[T state.Entity](blank func(string) T, log logging.Logger) *state.Synchronizer[T] {
	return state.NewSynchronizer(state.NewCollection(blank), &state.Tracker{}, log)
}
