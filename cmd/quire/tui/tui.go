// Package tuicmder provides the tui command: an interactive research
// screen with a topic input, live streaming, a section view and a history
// pane.
package tuicmder

import (
	"context"
	"errors"
	"fmt"

	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/quire/cmd/quire/workspace"
	"github.com/papercomputeco/quire/pkg/config"
	"github.com/papercomputeco/quire/pkg/logger"
	"github.com/papercomputeco/quire/pkg/research"
	"github.com/papercomputeco/quire/pkg/subscription"
)

type tuiCommander struct {
	sqlitePath  string
	postgresDSN string
	backendURL  string
	anonKey     string
	exportDir   string
	noWatch     bool
}

const tuiLongDesc string = `Open the interactive research screen.

Type a topic and press enter to research it. The answer streams in live and
is shown as sections when it finishes. Press tab to browse your history and
ctrl+s to export the current research as markdown.

Examples:
  quire tui
  quire tui --export-dir ./reports`

const tuiShortDesc string = "Interactive research screen"

func NewTUICmd() *cobra.Command {
	cmder := &tuiCommander{}

	cmd := &cobra.Command{
		Use:   "tui",
		Short: tuiShortDesc,
		Long:  tuiLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Registry, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Registry, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Registry, config.FlagBackendURL, &cmder.backendURL)
	config.AddStringFlag(cmd, config.Registry, config.FlagAnonKey, &cmder.anonKey)
	cmd.Flags().StringVar(&cmder.exportDir, "export-dir", ".", "Directory for ctrl+s exports")
	cmd.Flags().BoolVar(&cmder.noWatch, "no-watch", false, "Do not refresh the plan from the billing backend")

	return cmd
}

func (c *tuiCommander) run(cmd *cobra.Command) error {
	ws, err := workspace.Load(cmd, config.FlagSQLite, config.FlagPostgres, config.FlagBackendURL, config.FlagAnonKey)
	if err != nil {
		return err
	}

	user, token, err := ws.RequireUser(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	driver, err := ws.OpenStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer driver.Close()

	// lipgloss under-detects color support inside the alternate screen.
	// See: https://github.com/charmbracelet/lipgloss/issues/439
	lipgloss.DefaultRenderer().SetColorProfile(termenv.TrueColor)

	// Log lines would tear the alternate screen.
	log := logger.Nop()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	m := newModel(ctx, modelConfig{
		User: user,
		Runner: &research.Runner{
			Subscriptions: driver,
			History:       driver,
			Logger:        log,
		},
		Session:   research.NewSession(ws.ResearchClient(token)),
		History:   driver,
		ExportDir: c.exportDir,
	})

	program := bubbletea.NewProgram(m,
		bubbletea.WithContext(ctx),
		bubbletea.WithAltScreen(),
	)

	if !c.noWatch {
		watcher := &subscription.Watcher{
			Billing: ws.Billing(),
			Store:   driver,
			UserID:  user.ID,
			Token:   token,
			Logger:  log,
			OnRefresh: func(sub *subscription.Subscription) {
				program.Send(subscriptionMsg{sub: sub})
			},
		}
		go watcher.Run(ctx)
	}

	if _, err := program.Run(); err != nil && !errors.Is(err, bubbletea.ErrProgramKilled) {
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}
