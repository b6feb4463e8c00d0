package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/spearfished/internal/app"
	"github.com/roach88/spearfished/internal/identity"
)

// AccountOptions holds flags shared by the account subcommands.
type AccountOptions struct {
	*RootOptions
	Email    string
	Password string
	Token    string
}

// NewAccountCommand creates the account command group.
func NewAccountCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage local accounts",
		Long: `Create accounts and mint session tokens.

Tokens stay valid across runs only when JWT_SECRET (or auth.jwt_secret) is
set; otherwise each run signs with a fresh key.`,
	}

	cmd.AddCommand(newCredentialCommand(rootOpts, "signup", "Create an account and print a session token",
		func(a *app.App, cmd *cobra.Command, opts *AccountOptions) (identity.Identity, error) {
			return a.Accounts.SignUp(commandContext(cmd), opts.Email, opts.Password)
		}))
	cmd.AddCommand(newCredentialCommand(rootOpts, "signin", "Sign in and print a session token",
		func(a *app.App, cmd *cobra.Command, opts *AccountOptions) (identity.Identity, error) {
			return a.Accounts.SignIn(commandContext(cmd), opts.Email, opts.Password)
		}))
	cmd.AddCommand(newWhoamiCommand(rootOpts))

	return cmd
}

type credentialFunc func(a *app.App, cmd *cobra.Command, opts *AccountOptions) (identity.Identity, error)

func newCredentialCommand(rootOpts *RootOptions, use, short string, fn credentialFunc) *cobra.Command {
	opts := &AccountOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)

			a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer closeApp(a)

			id, err := fn(a, cmd, opts)
			if err != nil {
				return formatter.Fail(use+" failed", err)
			}
			token, err := a.Accounts.Issue(id)
			if err != nil {
				return formatter.Fail(use+" failed", err)
			}

			s := session{UID: id.UID, Email: id.Email, Token: token}
			return formatter.Success(s, func(w io.Writer) error { return renderSession(w, s) })
		},
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "account email (required)")
	cmd.Flags().StringVar(&opts.Password, "password", "", "account password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newWhoamiCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AccountOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "whoami",
		Short:         "Show the account a session token belongs to",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)

			a, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer closeApp(a)

			id, err := a.Accounts.Resume(commandContext(cmd), opts.Token)
			if err != nil {
				return formatter.Fail("token rejected", err)
			}
			s := session{UID: id.UID, Email: id.Email}
			return formatter.Success(s, func(w io.Writer) error { return renderSession(w, s) })
		},
	}

	cmd.Flags().StringVar(&opts.Token, "token", "", "session token (required)")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

type session struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Token string `json:"token,omitempty"`
}

func renderSession(w io.Writer, s session) error {
	fmt.Fprintf(w, "✓ %s (%s)\n", s.Email, s.UID)
	if s.Token != "" {
		fmt.Fprintln(w, s.Token)
	}
	return nil
}
