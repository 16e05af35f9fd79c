package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/repository"
)

// LoginResult identifies the signed-in user.
type LoginResult struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

func (r LoginResult) Text() string {
	return fmt.Sprintf("Signed in as %s (user %d)\n", r.Username, r.UserID)
}

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login <username> <password>",
		Short: "Check a username and password",
		Long: `Check credentials against the stored users.

Exit codes:
  0 - Credentials accepted
  1 - Unknown user or wrong password
  2 - Command error

Example:
  storefront login user123 password123`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			sess, err := openSession(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer sess.Close()

			f := rootOpts.formatter(cmd)
			user, err := sess.repos.Auth.Login(ctx, args[0], args[1])
			if errors.Is(err, repository.ErrInvalidCredentials) {
				if rootOpts.Format == "json" {
					_ = f.Error(CodeLogin, repository.LoginFailedMessage, nil)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), repository.LoginFailedMessage)
				}
				return NewExitError(ExitFailure, repository.LoginFailedMessage)
			}
			if err != nil {
				return storeError(f, "login failed", err)
			}
			return f.Success(LoginResult{UserID: user.ID, Username: user.Username})
		},
	}
}
