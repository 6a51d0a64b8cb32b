// Package authcmder provides the auth command for signing in to the hosted
// backend.
package authcmder

import (
	"github.com/spf13/cobra"
)

const authLongDesc string = `Sign in to the hosted research backend.

The session is stored in credentials.toml in the .quire/ directory and
sent as the bearer token with every research, checkout and portal call.

Examples:
  quire auth login                          Prompt for email and password
  quire auth login --email ada@example.com  Prompt for the password only
  quire auth login --signup                 Create an account
  echo $TOKEN | quire auth login --token    Store an existing session token
  quire auth status                         Show the signed-in user
  quire auth logout                         Remove the stored session`

const authShortDesc string = "Sign in to the hosted research backend"

func NewAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: authShortDesc,
		Long:  authLongDesc,
	}

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}
