package historycmder

import (
	"github.com/spf13/cobra"

	"github.com/papercomputeco/quire/cmd/quire/workspace"
	"github.com/papercomputeco/quire/pkg/auth"
	"github.com/papercomputeco/quire/pkg/cliui"
	"github.com/papercomputeco/quire/pkg/dotdir"
	"github.com/papercomputeco/quire/pkg/storage"
)

const (
	clearedTitle       = "History Cleared"
	clearedDescription = "Your research history has been cleared."
)

func newClearCmd() *cobra.Command {
	flags := &storageFlags{}

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete your research history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(ws *workspace.Workspace, user *auth.User, store storage.Driver) error {
				if err := store.Clear(cmd.Context(), user.ID); err != nil {
					return err
				}
				if err := dotdir.NewManager().ClearLastResearch(ws.ConfigDir); err != nil {
					ws.Logger.Debug("clearing last research failed", "error", err)
				}
				cliui.Notice(cmd.OutOrStdout(), clearedTitle, clearedDescription, false)
				return nil
			})
		},
	}
	flags.add(cmd)

	return cmd
}
