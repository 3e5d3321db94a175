package app

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jobdeck/jobdeck/internal/board"
	"github.com/jobdeck/jobdeck/internal/jobboard"
	"github.com/jobdeck/jobdeck/internal/logging"
	"github.com/jobdeck/jobdeck/internal/state"
)

const (
	defaultPollInterval = 15 * time.Second
	maxBackoff          = 30 * time.Second
)

// Poller refreshes the board lists visible to the session's role.
type Poller struct {
	board    *board.Board
	api      jobboard.API
	role     jobboard.Role
	interval time.Duration
	log      logging.Logger
	onErr    func(context.Context, error)
}

// NewPoller builds a poller. An empty role refreshes only the public job
// list.
func NewPoller(b *board.Board, api jobboard.API, role jobboard.Role, interval time.Duration, log logging.Logger) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Poller{board: b, api: api, role: role, interval: interval, log: log}
}

// Interval returns the base refresh interval.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// OnError registers fn to receive every failed refresh other than a
// cancellation.
func (p *Poller) OnError(fn func(context.Context, error)) {
	p.onErr = fn
}

// Start launches the refresh loop in a goroutine. It returns immediately.
func (p *Poller) Start(ctx context.Context) {
	go p.Run(ctx)
}

// Run refreshes every interval until ctx is cancelled, backing off while
// refreshes fail. The first refresh happens one interval after the call;
// callers that need data up front call Refresh themselves.
func (p *Poller) Run(ctx context.Context) {
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		_ = p.Refresh(ctx)
		failures := p.board.Health.Snapshot().ConsecutiveFailures
		timer.Reset(calculateBackoff(failures, p.interval))
	}
}

// Refresh fetches every list for the role in parallel and installs the
// results with Synchronizer.Reset, so in-flight optimistic changes survive.
// Lists whose fetch succeeded are installed even when another fetch failed.
func (p *Poller) Refresh(ctx context.Context) error {
	var g errgroup.Group

	switch p.role {
	case jobboard.RoleAdmin:
		fetch(&g, ctx, p.board.Jobs, p.api.FetchAdminJobs)
		fetch(&g, ctx, p.board.Users, p.api.FetchUsers)
	case jobboard.RoleRecruiter:
		fetch(&g, ctx, p.board.Jobs, p.api.FetchJobs)
		fetch(&g, ctx, p.board.PostedJobs, p.api.FetchPostedJobs)
	case jobboard.RoleSeeker:
		fetch(&g, ctx, p.board.Jobs, p.api.FetchJobs)
		fetch(&g, ctx, p.board.Applications, p.api.FetchMyApplications)
	default:
		fetch(&g, ctx, p.board.Jobs, p.api.FetchJobs)
	}

	err := g.Wait()
	p.board.Health.Update(err)
	switch {
	case err == nil:
		p.log.Debug(ctx, "refresh complete", "role", p.role)
	case errors.Is(err, context.Canceled):
	case errors.Is(err, jobboard.ErrUnauthorized):
		p.log.Warn(ctx, "refresh unauthorized; login required", "error", err)
	default:
		p.log.Warn(ctx, "refresh failed", "error", err)
	}
	if err != nil && p.onErr != nil && !errors.Is(err, context.Canceled) {
		p.onErr(ctx, err)
	}
	return err
}

func fetch[T state.Entity](g *errgroup.Group, ctx context.Context, s *state.Synchronizer[T], list func(context.Context) ([]T, error)) {
	g.Go(func() error {
		items, err := list(ctx)
		if err != nil {
			return err
		}
		return s.Reset(items)
	})
}

// calculateBackoff doubles base per consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for range failures {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
