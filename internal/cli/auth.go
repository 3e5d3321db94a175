package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jobdeck/jobdeck/internal/app"
	"github.com/jobdeck/jobdeck/internal/jobboard"
)

func newLoginCommand(rootOpts *RootOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Long: `Exchange email and password for a token. The session is saved to the
configured session_file and used by every later command.

Without --password the password is read from the terminal, or from the
first line of stdin when it is not a terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				return errors.New("--email is required")
			}
			return rootOpts.run(cmd, func(ctx context.Context, env *app.Env) error {
				if password == "" {
					pw, err := readPassword(cmd, "Password: ")
					if err != nil {
						return err
					}
					password = pw
				}
				sess, err := env.Login(ctx, email, password)
				if err != nil {
					if errors.Is(err, jobboard.ErrUnauthorized) {
						return fmt.Errorf("login failed: %s", jobboard.Message(err))
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (%s)\n", sess.User.Name, sess.User.Role)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when empty)")
	return cmd
}

func newLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rootOpts.run(cmd, func(ctx context.Context, env *app.Env) error {
				if err := env.Logout(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "logged out")
				return nil
			})
		},
	}
}

func newRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	var reg jobboard.Registration
	var role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg.Role = jobboard.Role(role)
			switch reg.Role {
			case jobboard.RoleSeeker, jobboard.RoleRecruiter:
			default:
				return fmt.Errorf("invalid role %q: must be seeker or recruiter", role)
			}
			if reg.Name == "" || reg.Email == "" {
				return errors.New("--name and --email are required")
			}
			return rootOpts.run(cmd, func(ctx context.Context, env *app.Env) error {
				if reg.Password == "" {
					pw, err := readPassword(cmd, "Choose a password: ")
					if err != nil {
						return err
					}
					reg.Password = pw
				}
				sess, err := env.Register(ctx, reg)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "registered and logged in as %s (%s)\n", sess.User.Name, sess.User.Role)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&reg.Name, "name", "", "full name")
	cmd.Flags().StringVarP(&reg.Email, "email", "e", "", "account email")
	cmd.Flags().StringVar(&reg.MobileNumber, "mobile", "", "mobile number (needed to apply to jobs)")
	cmd.Flags().StringVarP(&reg.Password, "password", "p", "", "account password (prompted when empty)")
	cmd.Flags().StringVar(&role, "role", string(jobboard.RoleSeeker), "account role (seeker|recruiter)")
	return cmd
}

// readPassword reads a password without echo from a terminal, or the first
// line of the command's input otherwise.
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	pw := strings.TrimRight(line, "\r\n")
	if pw == "" {
		return "", errors.New("empty password")
	}
	return pw, nil
}
