package authcmder

import (
	"github.com/spf13/cobra"

	"github.com/papercomputeco/quire/cmd/quire/workspace"
	"github.com/papercomputeco/quire/pkg/cliui"
)

func newLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := workspace.Load(cmd)
			if err != nil {
				return err
			}

			if err := ws.Credentials.ClearSession(); err != nil {
				return err
			}

			cliui.Notice(cmd.OutOrStdout(), "Signed out", "", false)
			return nil
		},
	}

	return cmd
}
