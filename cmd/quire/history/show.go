package historycmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/quire/cmd/quire/workspace"
	"github.com/papercomputeco/quire/pkg/auth"
	"github.com/papercomputeco/quire/pkg/cliui"
	"github.com/papercomputeco/quire/pkg/config"
	"github.com/papercomputeco/quire/pkg/storage"
)

type showCommander struct {
	storageFlags
	raw   bool
	width uint
}

func newShowCmd() *cobra.Command {
	cmder := &showCommander{}

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a past research",
		Long:  "Show a past research rendered as markdown. Use --raw for the stored text.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args[0])
		},
	}
	cmder.add(cmd)
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the stored markdown")
	config.AddUintFlag(cmd, config.Registry, config.FlagWidth, &cmder.width)

	return cmd
}

func (c *showCommander) run(cmd *cobra.Command, id string) error {
	return withStore(cmd, func(ws *workspace.Workspace, user *auth.User, store storage.Driver) error {
		item, err := Resolve(cmd.Context(), store, user.ID, id)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if c.raw {
			fmt.Fprintln(out, item.Content)
			return nil
		}

		width := int(c.width)
		if !cmd.Flags().Changed("width") {
			width = ws.Width(out)
		}

		content := "# " + item.Topic + "\n\n" + item.Content
		rendered, err := cliui.RenderMarkdown(content, width)
		if err != nil {
			ws.Logger.Debug("markdown render failed", "error", err)
		}
		fmt.Fprint(out, rendered)
		return nil
	})
}
