package authcmder

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/quire/cmd/quire/workspace"
	"github.com/papercomputeco/quire/pkg/auth"
	"github.com/papercomputeco/quire/pkg/cliui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := workspace.Load(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			user, _, err := ws.CurrentUser()
			if errors.Is(err, auth.ErrSignedOut) {
				fmt.Fprintf(out, "  %s Not signed in. Use 'quire auth login' to sign in.\n", cliui.DimStyle.Render("●"))
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "\n  %s  %s\n", cliui.KeyStyle.Render("User: "), cliui.ValueStyle.Render(displayName(user)))
			fmt.Fprintf(out, "  %s  %s\n", cliui.KeyStyle.Render("ID:   "), cliui.DimStyle.Render(user.ID))
			if !user.ExpiresAt.IsZero() {
				fmt.Fprintf(out, "  %s  %s\n", cliui.KeyStyle.Render("Until:"), cliui.DimStyle.Render(user.ExpiresAt.Local().Format("2006-01-02 15:04")))
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	return cmd
}
