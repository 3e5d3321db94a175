package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jobdeck/jobdeck/internal/app"
	"github.com/jobdeck/jobdeck/internal/filter"
	"github.com/jobdeck/jobdeck/internal/jobboard"
)

func newJobsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List, search, post and manage jobs",
	}
	cmd.AddCommand(newJobsListCommand(rootOpts))
	cmd.AddCommand(newJobsSearchCommand(rootOpts))
	cmd.AddCommand(newJobsPostCommand(rootOpts))
	cmd.AddCommand(newJobsDeleteCommand(rootOpts))
	cmd.AddCommand(newJobsToggleCommand(rootOpts))
	cmd.AddCommand(newJobsApplyCommand(rootOpts))
	return cmd
}

func newJobsListCommand(rootOpts *RootOptions) *cobra.Command {
	var filters jobboard.JobFilters
	var mine bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs (admins see closed jobs too)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, env *app.Env) error {
				if mine {
					if err := requireRole(env, jobboard.RoleRecruiter); err != nil {
						return err
					}
				}
				if err := refresh(ctx, env); err != nil {
					return err
				}
				items := env.Board.Jobs.Items()
				if mine {
					items = env.Board.PostedJobs.Items()
				}
				jobs := filter.Collect(items, filters.Criteria())
				return printTable(cmd.OutOrStdout(), jobHeaders, jobRows(jobs))
			})
		},
	}

	cmd.Flags().StringVarP(&filters.Search, "search", "s", "", "text in title, company, description or contact")
	cmd.Flags().StringVar(&filters.Status, "status", filter.All, "open, closed or all")
	cmd.Flags().StringVarP(&filters.JobType, "type", "t", filter.All, "job type or all")
	cmd.Flags().StringVarP(&filters.Location, "location", "l", filter.All, "location substring or all")
	cmd.Flags().BoolVar(&mine, "mine", false, "only your own postings (recruiters)")
	return cmd
}

func newJobsSearchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search jobs on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, env *app.Env) error {
				jobs, err := env.API.SearchJobs(ctx, args[0])
				if err != nil {
					return fmt.Errorf("search jobs: %w", err)
				}
				return printTable(cmd.OutOrStdout(), jobHeaders, jobRows(jobs))
			})
		},
	}
}

func newJobsPostCommand(rootOpts *RootOptions) *cobra.Command {
	var draft jobboard.JobDraft
	var jobType string

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a new job (recruiters)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			draft.JobType = jobboard.JobType(jobType)
			return rootOpts.run(cmd, func(ctx context.Context, env *app.Env) error {
				if err := requireRole(env, jobboard.RoleRecruiter); err != nil {
					return err
				}
				job, err := env.Actions.PostJob(ctx, draft)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "posted %s (%s)\n", job.Title, job.ID)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&draft.Title, "title", "", "job title")
	f.StringVar(&draft.CompanyName, "company", "", "company name")
	f.StringVar(&draft.Description, "description", "", "job description")
	f.StringVar(&draft.Location, "location", "", "location")
	f.StringVar(&draft.ContactName, "contact", "", "contact name")
	f.StringVar(&draft.MobileNumber, "mobile", "", "contact mobile number")
	f.StringVar(&draft.WhatsappNumber, "whatsapp", "", "WhatsApp number (defaults to mobile)")
	f.StringVar(&draft.Salary, "salary", "", "salary")
	f.StringVar(&draft.Tags, "tags", "", "comma-separated tags")
	f.StringVar(&jobType, "type", string(jobboard.FullTime), "job type")
	return cmd
}

func newJobsDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <job-id>",
		Short: "Delete a job (admins: any job, recruiters: own postings)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return rootOpts.run(cmd, func(ctx context.Context, env *app.Env) error {
				if err := requireRole(env, jobboard.RoleAdmin, jobboard.RoleRecruiter); err != nil {
					return err
				}
				if err := refresh(ctx, env); err != nil {
					return err
				}
				var err error
				if env.Role() == jobboard.RoleAdmin {
					err = env.Actions.DeleteJob(ctx, id)
				} else {
					err = env.Actions.DeletePostedJob(ctx, id)
				}
				if err != nil {
					return fmt.Errorf("delete job %s: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
				return nil
			})
		},
	}
}

func newJobsToggleCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <job-id>",
		Short: "Open a closed job or close an open one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return rootOpts.run(cmd, func(ctx context.Context, env *app.Env) error {
				if err := requireRole(env, jobboard.RoleAdmin, jobboard.RoleRecruiter); err != nil {
					return err
				}
				if err := refresh(ctx, env); err != nil {
					return err
				}
				var (
					job jobboard.Job
					err error
				)
				if env.Role() == jobboard.RoleAdmin {
					job, err = env.Actions.ToggleJobStatus(ctx, id)
				} else {
					job, err = env.Actions.TogglePostedJobStatus(ctx, id)
				}
				if err != nil {
					return fmt.Errorf("toggle job %s: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", job.Title, job.Status)
				return nil
			})
		},
	}
}

func newJobsApplyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <job-id>",
		Short: "Apply to a job (job seekers)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return rootOpts.run(cmd, func(ctx context.Context, env *app.Env) error {
				if err := requireRole(env, jobboard.RoleSeeker); err != nil {
					return err
				}
				if err := refresh(ctx, env); err != nil {
					return err
				}
				application, err := env.Actions.ApplyToJob(ctx, id)
				if err != nil {
					return fmt.Errorf("apply to %s: %w", id, err)
				}
				title := application.FilterValue("title")
				if title == "" {
					title = id
				}
				fmt.Fprintf(cmd.OutOrStdout(), "applied to %s (%s)\n", title, application.Status)
				return nil
			})
		},
	}
}
