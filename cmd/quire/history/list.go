package historycmder

import (
	"github.com/spf13/cobra"

	"github.com/papercomputeco/quire/cmd/quire/workspace"
	"github.com/papercomputeco/quire/pkg/auth"
	"github.com/papercomputeco/quire/pkg/storage"
)

func newListCmd() *cobra.Command {
	flags := &storageFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent researches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd)
		},
	}
	flags.add(cmd)

	return cmd
}

func runList(cmd *cobra.Command) error {
	return withStore(cmd, func(_ *workspace.Workspace, user *auth.User, store storage.Driver) error {
		items, err := store.List(cmd.Context(), user.ID)
		if err != nil {
			return err
		}
		printItems(cmd.OutOrStdout(), items)
		return nil
	})
}
