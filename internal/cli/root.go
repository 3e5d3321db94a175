// Package cli implements the jobdeck command line. Without a subcommand it
// starts the terminal UI; the subcommands run one operation against the API
// and print the result.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jobdeck/jobdeck/internal/app"
	"github.com/jobdeck/jobdeck/internal/jobboard"
)

// ErrLoginRequired is returned when a command needs a session the server
// accepts.
var ErrLoginRequired = errors.New("login required: run 'jobdeck login'")

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	PollEvery  int
	Verbose    bool

	// api replaces the HTTP client in tests.
	api jobboard.API
}

// NewRootCommand creates the jobdeck root command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobdeck",
		Short: "jobdeck - a terminal client for the job board",
		Long: `Browse, search and apply to jobs, manage your postings and moderate
users from the terminal. Run without a subcommand to open the interactive UI.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), opts.appOptions(nil))
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.config/jobdeck/config.toml)")
	cmd.PersistentFlags().IntVar(&opts.PollEvery, "poll", 0, "refresh interval in seconds (default from config)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(newLoginCommand(opts))
	cmd.AddCommand(newLogoutCommand(opts))
	cmd.AddCommand(newRegisterCommand(opts))
	cmd.AddCommand(newJobsCommand(opts))
	cmd.AddCommand(newUsersCommand(opts))
	cmd.AddCommand(newApplicationsCommand(opts))
	cmd.AddCommand(newProfileCommand(opts))

	return cmd
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (o *RootOptions) appOptions(logTo io.Writer) app.Options {
	return app.Options{
		ConfigPath: o.ConfigPath,
		PollEvery:  o.PollEvery,
		Verbose:    o.Verbose,
		LogWriter:  logTo,
		API:        o.api,
	}
}

// run opens an Env for one subcommand and maps authorization failures to
// ErrLoginRequired. Log output goes to stderr with --verbose and is dropped
// otherwise.
func (o *RootOptions) run(cmd *cobra.Command, fn func(ctx context.Context, env *app.Env) error) error {
	logTo := io.Discard
	if o.Verbose {
		logTo = cmd.ErrOrStderr()
	}
	env, err := app.NewEnv(o.appOptions(logTo))
	if err != nil {
		return err
	}
	defer func() { _ = env.Close() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	err = env.CheckAuth(ctx, fn(ctx, env))
	if errors.Is(err, jobboard.ErrUnauthorized) {
		return ErrLoginRequired
	}
	return err
}

// requireLogin fails without a stored session.
func requireLogin(env *app.Env) error {
	if !env.LoggedIn {
		return ErrLoginRequired
	}
	return nil
}

// requireRole fails unless the session has one of roles.
func requireRole(env *app.Env, roles ...jobboard.Role) error {
	if err := requireLogin(env); err != nil {
		return err
	}
	if !slices.Contains(roles, env.Role()) {
		names := make([]string, len(roles))
		for i, r := range roles {
			names[i] = string(r)
		}
		return fmt.Errorf("this command needs the %s role (logged in as %s)", strings.Join(names, " or "), env.Role())
	}
	return nil
}

// refresh loads the session's lists into the board.
func refresh(ctx context.Context, env *app.Env) error {
	if err := env.Poller.Refresh(ctx); err != nil {
		return fmt.Errorf("load lists: %w", err)
	}
	return nil
}
