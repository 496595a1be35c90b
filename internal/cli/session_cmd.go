// internal/cli/session_cmd.go
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	authUsecase "admin-console/internal/service/auth"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the admin API and keep the session token",
		Example: `  # Prompt for the password
  console login --email ada@example.com

  # Non-interactive
  echo "$PASSWORD" | console login --email ada@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				p, err := readPassword(cmd)
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				password = p
			}

			console, done, err := opts.openConsole(cmd)
			if err != nil {
				return err
			}
			defer done()

			principal, err := console.Auth.Login(cmd.Context(), email, password)
			if errors.Is(err, authUsecase.ErrProfileUnavailable) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Signed in, but %v\n", err)
				return nil
			}
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), principal)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", principal.Name, principal.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Admin email")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			console, done, err := opts.openConsole(cmd)
			if err != nil {
				return err
			}
			defer done()

			console.Auth.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in admin and the screens they may open",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			console, done, err := opts.openConsole(cmd)
			if err != nil {
				return err
			}
			defer done()

			if err := ensureProfile(cmd.Context(), console); err != nil {
				return err
			}
			principal := console.Gate.Principal()
			kinds := console.Registry.Visible(console.Gate)

			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]any{"admin": principal, "screens": kinds})
			}
			printPrincipal(cmd.OutOrStdout(), principal, kinds)
			return nil
		},
	}
}

// readPassword reads without echo from a terminal, or one line otherwise.
func readPassword(cmd *cobra.Command) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		return string(b), err
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
