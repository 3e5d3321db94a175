package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jobdeck/jobdeck/internal/board"
	"github.com/jobdeck/jobdeck/internal/config"
	"github.com/jobdeck/jobdeck/internal/jobboard"
	"github.com/jobdeck/jobdeck/internal/logging"
	"github.com/jobdeck/jobdeck/internal/prefs"
	"github.com/jobdeck/jobdeck/internal/session"
	"github.com/jobdeck/jobdeck/internal/ui"
)

// Options configure the jobdeck application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses the config's prefs_file
	PollEvery  int    // seconds; zero uses the config's poll_seconds
	Verbose    bool

	// LogWriter receives log output. Nil appends to the config's log_file.
	LogWriter io.Writer
	// API replaces the HTTP client. Tests use it to inject a fake.
	API jobboard.API
}

// Env is the wired application: configuration, logger, session, API client
// and the synchronized board with its actions and poller.
type Env struct {
	Config   config.Config
	Log      logging.Logger
	Session  session.Session
	LoggedIn bool
	API      jobboard.API
	Board    *board.Board
	Actions  *board.Actions
	Poller   *Poller

	prefsPath string
	closer    io.Closer
}

// NewEnv loads configuration and session and wires the board. The caller must
// Close the returned Env.
func NewEnv(opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.PollEvery > 0 {
		cfg.PollInterval = time.Duration(opts.PollEvery) * time.Second
	}

	env := &Env{Config: cfg, prefsPath: opts.PrefsPath}
	if env.prefsPath == "" {
		env.prefsPath = cfg.PrefsFile
	}

	if opts.LogWriter != nil {
		env.Log = logging.New(opts.LogWriter, opts.Verbose)
	} else {
		log, closer, err := logging.Open(cfg.LogFile, opts.Verbose)
		if err != nil {
			return nil, err
		}
		env.Log, env.closer = log, closer
	}

	sess, err := session.Load(cfg.SessionFile)
	switch {
	case err == nil:
		env.Session, env.LoggedIn = sess, true
	case errors.Is(err, session.ErrNoSession):
	default:
		env.Log.Warn(context.Background(), "session unreadable; continuing logged out", "error", err)
	}

	env.API = opts.API
	if env.API == nil {
		client, err := jobboard.NewClient(cfg.APIURL, env.Session.Token, cfg.Timeout)
		if err != nil {
			_ = env.Close()
			return nil, fmt.Errorf("init api client: %w", err)
		}
		env.API = client
	}

	env.Board = board.New(env.Log)
	env.Actions = board.NewActions(env.Board, env.API, env.Session.User.MobileNumber, env.Log)
	env.Poller = NewPoller(env.Board, env.API, env.Role(), cfg.PollInterval, env.Log)
	env.Poller.OnError(func(ctx context.Context, err error) { _ = env.CheckAuth(ctx, err) })
	return env, nil
}

// Role returns the session's role, or "" when logged out.
func (e *Env) Role() jobboard.Role {
	if !e.LoggedIn {
		return ""
	}
	return e.Session.Role()
}

// PrefsPath returns the preferences file in use.
func (e *Env) PrefsPath() string {
	return e.prefsPath
}

// Login exchanges credentials for a token and persists the session.
func (e *Env) Login(ctx context.Context, email, password string) (session.Session, error) {
	auth, err := e.API.Login(ctx, email, password)
	if err != nil {
		return session.Session{}, fmt.Errorf("login: %w", err)
	}
	return e.adopt(ctx, auth, "logged in")
}

// Register creates an account and persists the session it returns.
func (e *Env) Register(ctx context.Context, r jobboard.Registration) (session.Session, error) {
	auth, err := e.API.Register(ctx, r)
	if err != nil {
		return session.Session{}, fmt.Errorf("register: %w", err)
	}
	return e.adopt(ctx, auth, "registered")
}

func (e *Env) adopt(ctx context.Context, auth jobboard.Auth, event string) (session.Session, error) {
	sess := session.FromAuth(auth)
	if err := session.Save(e.Config.SessionFile, sess); err != nil {
		return session.Session{}, err
	}
	e.Session, e.LoggedIn = sess, true
	e.Log.Info(ctx, event, "user", sess.User.Email, "role", sess.User.Role)
	return sess, nil
}

// RememberProfile copies the editable fields of u into the saved session so
// later commands see the new name, email and mobile number.
func (e *Env) RememberProfile(u jobboard.User) error {
	if !e.LoggedIn || u.ID != e.Session.User.ID {
		return nil
	}
	e.Session.User.Name = u.Name
	e.Session.User.Email = u.Email
	e.Session.User.MobileNumber = u.MobileNumber
	return session.Save(e.Config.SessionFile, e.Session)
}

// Logout removes the persisted session.
func (e *Env) Logout(ctx context.Context) error {
	if err := session.Clear(e.Config.SessionFile); err != nil {
		return err
	}
	if e.LoggedIn {
		e.Log.Info(ctx, "logged out", "user", e.Session.User.Email)
	}
	e.Session, e.LoggedIn = session.Session{}, false
	return nil
}

// CheckAuth clears a rejected session when err is an authorization failure
// and returns err unchanged.
func (e *Env) CheckAuth(ctx context.Context, err error) error {
	if err == nil || !errors.Is(err, jobboard.ErrUnauthorized) || !e.LoggedIn {
		return err
	}
	e.Log.Warn(ctx, "session rejected by the server; clearing it", "error", err)
	if clearErr := e.Logout(ctx); clearErr != nil {
		e.Log.Error(ctx, "clear session", "error", clearErr)
	}
	return err
}

// Close releases the log file, if any.
func (e *Env) Close() error {
	if e.closer == nil {
		return nil
	}
	return e.closer.Close()
}

// Run boots the jobdeck TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	env, err := NewEnv(opts)
	if err != nil {
		return err
	}
	defer func() { _ = env.Close() }()

	// Populate the board before the first frame; failures show in the header.
	_ = env.Poller.Refresh(ctx)
	env.Poller.Start(ctx)

	return ui.Run(ctx, ui.Options{
		Board:     env.Board,
		Actions:   env.Actions,
		Role:      env.Role(),
		UserName:  env.Session.User.Name,
		Prefs:     prefs.Load(env.prefsPath),
		PrefsPath: env.prefsPath,
		LogFile:   env.Config.LogFile,
		PollTick:  env.Poller.Interval(),
		Refresh:   env.Poller.Refresh,
		Log:       env.Log,
	})
}
