package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jobdeck/jobdeck/internal/app"
	"github.com/jobdeck/jobdeck/internal/filter"
	"github.com/jobdeck/jobdeck/internal/jobboard"
)

func newUsersCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List and moderate users (admins)",
	}
	cmd.AddCommand(newUsersListCommand(rootOpts))
	cmd.AddCommand(newUsersBanCommand(rootOpts, true))
	cmd.AddCommand(newUsersBanCommand(rootOpts, false))
	return cmd
}

func newUsersListCommand(rootOpts *RootOptions) *cobra.Command {
	var filters jobboard.UserFilters

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, env *app.Env) error {
				if err := requireRole(env, jobboard.RoleAdmin); err != nil {
					return err
				}
				if err := refresh(ctx, env); err != nil {
					return err
				}
				users := filter.Collect(env.Board.Users.Items(), filters.Criteria())
				return printTable(cmd.OutOrStdout(), userHeaders, userRows(users))
			})
		},
	}

	cmd.Flags().StringVarP(&filters.Search, "search", "s", "", "text in name, email or mobile")
	cmd.Flags().StringVar(&filters.Role, "role", filter.All, "seeker, recruiter, admin or all")
	cmd.Flags().StringVar(&filters.Status, "status", filter.All, "active, banned or all")
	return cmd
}

func newUsersBanCommand(rootOpts *RootOptions, ban bool) *cobra.Command {
	use, short := "ban <user-id>", "Ban a user"
	if !ban {
		use, short = "unban <user-id>", "Lift a user's ban"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return rootOpts.run(cmd, func(ctx context.Context, env *app.Env) error {
				if err := requireRole(env, jobboard.RoleAdmin); err != nil {
					return err
				}
				if err := refresh(ctx, env); err != nil {
					return err
				}
				var (
					u   jobboard.User
					err error
				)
				if ban {
					u, err = env.Actions.BanUser(ctx, id)
				} else {
					u, err = env.Actions.UnbanUser(ctx, id)
				}
				if err != nil {
					return fmt.Errorf("%s %s: %w", cmd.Name(), id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", u.Name, u.AccountStatus())
				return nil
			})
		},
	}
}

func newApplicationsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "applications",
		Short: "Your job applications (job seekers)",
	}

	var filters jobboard.ApplicationFilters
	list := &cobra.Command{
		Use:   "list",
		Short: "List your applications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, env *app.Env) error {
				if err := requireRole(env, jobboard.RoleSeeker); err != nil {
					return err
				}
				if err := refresh(ctx, env); err != nil {
					return err
				}
				apps := filter.Collect(env.Board.Applications.Items(), filters.Criteria())
				return printTable(cmd.OutOrStdout(), applicationHeaders, applicationRows(apps))
			})
		},
	}
	list.Flags().StringVarP(&filters.Search, "search", "s", "", "text in job title or company")
	list.Flags().StringVar(&filters.Status, "status", filter.All, "pending, reviewed, accepted, rejected or all")
	cmd.AddCommand(list)
	return cmd
}
