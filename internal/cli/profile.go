package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jobdeck/jobdeck/internal/app"
	"github.com/jobdeck/jobdeck/internal/jobboard"
)

func newProfileCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show and edit your account",
	}
	cmd.AddCommand(newProfileShowCommand(rootOpts))
	cmd.AddCommand(newProfileUpdateCommand(rootOpts))
	cmd.AddCommand(newResumeCommand(rootOpts))
	return cmd
}

func newProfileShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your account and resumes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, env *app.Env) error {
				if err := requireLogin(env); err != nil {
					return err
				}
				u, err := env.Actions.LoadProfile(ctx)
				if err != nil {
					return err
				}
				return printTable(cmd.OutOrStdout(), profileHeaders, profileRows(u))
			})
		},
	}
}

func newProfileUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var name, email, mobile string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change your name, email or mobile number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var p jobboard.ProfileUpdate
			if cmd.Flags().Changed("name") {
				p.Name = &name
			}
			if cmd.Flags().Changed("email") {
				p.Email = &email
			}
			if cmd.Flags().Changed("mobile") {
				p.MobileNumber = &mobile
			}
			if p.Empty() {
				return errors.New("set at least one of --name, --email or --mobile")
			}
			return rootOpts.run(cmd, func(ctx context.Context, env *app.Env) error {
				if err := requireLogin(env); err != nil {
					return err
				}
				u, err := env.Actions.UpdateProfile(ctx, p)
				if err != nil {
					return fmt.Errorf("update profile: %w", err)
				}
				if err := env.RememberProfile(u); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "profile updated: %s <%s> %s\n", u.Name, u.Email, u.MobileNumber)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&mobile, "mobile", "", "mobile number, sent with job applications")
	return cmd
}

func newResumeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Upload or remove resumes (PDF or image)",
	}

	add := &cobra.Command{
		Use:   "add <file>",
		Short: "Upload a resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read resume: %w", err)
			}
			return rootOpts.run(cmd, func(ctx context.Context, env *app.Env) error {
				if err := requireLogin(env); err != nil {
					return err
				}
				u, err := env.Actions.UploadResume(ctx, args[0], data)
				if err != nil {
					return fmt.Errorf("upload resume: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s\n", jobboard.ResumeName(u.ResumeURLs[len(u.ResumeURLs)-1]))
				return nil
			})
		},
	}

	rm := &cobra.Command{
		Use:   "rm <url|name|number>",
		Short: "Remove a resume by URL, file name or its number in 'profile show'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, env *app.Env) error {
				if err := requireLogin(env); err != nil {
					return err
				}
				u, err := env.Actions.LoadProfile(ctx)
				if err != nil {
					return err
				}
				resumeURL, ok := findResume(u.ResumeURLs, args[0])
				if !ok {
					return fmt.Errorf("no resume matches %q", args[0])
				}
				if _, err := env.Actions.DeleteResume(ctx, resumeURL); err != nil {
					return fmt.Errorf("remove resume: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", jobboard.ResumeName(resumeURL))
				return nil
			})
		},
	}

	cmd.AddCommand(add, rm)
	return cmd
}

// findResume matches ref against a full URL, a file name, or a 1-based
// position.
func findResume(urls []string, ref string) (string, bool) {
	for _, u := range urls {
		if u == ref || jobboard.ResumeName(u) == ref {
			return u, true
		}
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(urls) {
		return urls[n-1], true
	}
	return "", false
}

var profileHeaders = []string{"FIELD", "VALUE"}

func profileRows(u jobboard.User) [][]string {
	rows := [][]string{
		{"id", u.ID},
		{"name", clip(u.Name)},
		{"email", clip(u.Email)},
		{"mobile", u.MobileNumber},
		{"role", string(u.Role)},
		{"status", u.AccountStatus()},
	}
	if len(u.ResumeURLs) == 0 {
		return append(rows, []string{"resumes", "none"})
	}
	for i, r := range u.ResumeURLs {
		rows = append(rows, []string{"resume " + strconv.Itoa(i+1), strings.TrimSpace(r)})
	}
	return rows
}
