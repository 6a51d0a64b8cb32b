// Package exportcmder provides the export command, which writes a past
// research to a markdown, HTML or text file.
package exportcmder

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	historycmder "github.com/papercomputeco/quire/cmd/quire/history"
	researchcmder "github.com/papercomputeco/quire/cmd/quire/research"
	"github.com/papercomputeco/quire/cmd/quire/workspace"
	"github.com/papercomputeco/quire/pkg/cliui"
	"github.com/papercomputeco/quire/pkg/config"
	"github.com/papercomputeco/quire/pkg/dotdir"
	"github.com/papercomputeco/quire/pkg/export"
)

// ErrNothingToExport is returned when no id is given and nothing has been
// researched yet.
var ErrNothingToExport = errors.New("nothing to export: run 'quire research <topic>' first or pass a history id")

type exportCommander struct {
	format      string
	outDir      string
	sqlitePath  string
	postgresDSN string
}

const exportLongDesc string = `Export a research to a file.

Without an id the most recent research from this directory is exported.
Files are named after the topic, for example space-exploration.md.

Examples:
  quire export
  quire export 0b9c1f9e-4a43-4b8e-9d6c-7f3d6c1c1a11 --format html
  quire export --format text --out ./reports`

func NewExportCmd() *cobra.Command {
	cmder := &exportCommander{}

	cmd := &cobra.Command{
		Use:   "export [id]",
		Short: "Export a research to a file",
		Long:  exportLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return cmder.run(cmd, id)
		},
	}

	cmd.Flags().StringVarP(&cmder.format, "format", "f", string(export.FormatMarkdown), "Export format (markdown, html, text)")
	cmd.Flags().StringVarP(&cmder.outDir, "out", "o", ".", "Directory to write the file to")
	config.AddStringFlag(cmd, config.Registry, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Registry, config.FlagPostgres, &cmder.postgresDSN)

	return cmd
}

func (c *exportCommander) run(cmd *cobra.Command, id string) error {
	format, err := export.ParseFormat(c.format)
	if err != nil {
		return err
	}

	ws, err := workspace.Load(cmd, config.FlagSQLite, config.FlagPostgres)
	if err != nil {
		return err
	}

	if id == "" {
		last, err := dotdir.NewManager().LoadLastResearch(ws.ConfigDir)
		if err != nil {
			return err
		}
		if last == nil {
			return ErrNothingToExport
		}
		id = last.HistoryID
	}

	out := cmd.OutOrStdout()

	user, _, err := ws.RequireUser(out)
	if err != nil {
		return err
	}

	driver, err := ws.OpenStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer driver.Close()

	item, err := historycmder.Resolve(cmd.Context(), driver, user.ID, id)
	if err != nil {
		return err
	}
	if item.Content == "" {
		return fmt.Errorf("research %q has no content to export", item.Topic)
	}

	path, err := researchcmder.WriteExport(c.outDir, item.Topic, item.Content, format)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "  %s Exported %s\n", cliui.SuccessMark, path)
	return nil
}
