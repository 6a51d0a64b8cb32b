// Package historycmder provides the history command and its list, show and
// clear subcommands.
package historycmder

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/quire/cmd/quire/workspace"
	"github.com/papercomputeco/quire/pkg/auth"
	"github.com/papercomputeco/quire/pkg/cliui"
	"github.com/papercomputeco/quire/pkg/config"
	"github.com/papercomputeco/quire/pkg/history"
	"github.com/papercomputeco/quire/pkg/storage"
	"github.com/papercomputeco/quire/pkg/utils"
)

const historyLongDesc string = `Browse your research history.

The most recent researches are kept per account, newest first.

Examples:
  quire history
  quire history show 0b9c1f9e-4a43-4b8e-9d6c-7f3d6c1c1a11
  quire history clear`

type storageFlags struct {
	sqlitePath  string
	postgresDSN string
}

func (f *storageFlags) add(cmd *cobra.Command) {
	config.AddStringFlag(cmd, config.Registry, config.FlagSQLite, &f.sqlitePath)
	config.AddStringFlag(cmd, config.Registry, config.FlagPostgres, &f.postgresDSN)
}

func NewHistoryCmd() *cobra.Command {
	flags := &storageFlags{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse research history",
		Long:  historyLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd)
		},
	}
	flags.add(cmd)

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newClearCmd())

	return cmd
}

// withStore loads the workspace, requires a user and opens storage for fn.
func withStore(cmd *cobra.Command, fn func(ws *workspace.Workspace, user *auth.User, store storage.Driver) error) error {
	ws, err := workspace.Load(cmd, config.FlagSQLite, config.FlagPostgres)
	if err != nil {
		return err
	}

	user, _, err := ws.RequireUser(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	driver, err := ws.OpenStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer driver.Close()

	return fn(ws, user, driver)
}

// Resolve parses id and loads the user's entry.
func Resolve(ctx context.Context, store history.Store, userID, id string) (*history.Item, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid history id %q", id)
	}
	return store.Get(ctx, userID, parsed)
}

func printItems(out io.Writer, items []*history.Item) {
	if len(items) == 0 {
		fmt.Fprintf(out, "\n  %s\n\n", cliui.DimStyle.Render("No research yet. Try: quire research renaissance art"))
		return
	}

	fmt.Fprintln(out)
	for _, item := range items {
		state := ""
		if item.Content == "" {
			state = " " + cliui.WarnStyle.Render("(empty)")
		}
		fmt.Fprintf(out, "  %s  %s  %s%s\n",
			cliui.DimStyle.Render(item.ID.String()),
			cliui.StepStyle.Render(item.CreatedAt.Local().Format("Jan 02 15:04")),
			cliui.ValueStyle.Render(utils.Truncate(item.Topic, 60)),
			state,
		)
	}
	fmt.Fprintln(out)
}
