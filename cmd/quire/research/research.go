// Package researchcmder provides the research command, which streams a
// topic through the hosted research function and renders the result.
package researchcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/quire/cmd/quire/workspace"
	"github.com/papercomputeco/quire/pkg/cliui"
	"github.com/papercomputeco/quire/pkg/config"
	"github.com/papercomputeco/quire/pkg/dotdir"
	"github.com/papercomputeco/quire/pkg/export"
	"github.com/papercomputeco/quire/pkg/render"
	"github.com/papercomputeco/quire/pkg/research"
	"github.com/papercomputeco/quire/pkg/sse"
	"github.com/papercomputeco/quire/pkg/subscription"
)

const (
	limitTitle       = "Limit reached"
	limitDescription = "You've reached your monthly research limit. Upgrade your plan for more."
)

// QuickTopics are suggested when no topic is given.
var QuickTopics = []string{
	"Quantum Computing",
	"Climate Change",
	"Renaissance Art",
	"Space Exploration",
	"Blockchain Technology",
}

type researchCommander struct {
	raw         bool
	recordPath  string
	exportFmt   string
	outDir      string
	width       uint
	sqlitePath  string
	postgresDSN string
	backendURL  string
	anonKey     string
}

const researchLongDesc string = `Research a topic with the hosted research function.

Fragments are printed as they arrive. When the stream ends the result is
rendered as sections with headings, lists and links. Each research counts
toward the monthly limit of your plan and is kept in your history.

Use --raw to print only the markdown, --record to keep the raw event stream,
and --export to write the result to a file.

Examples:
  quire research quantum computing
  quire research "Renaissance Art" --export html --out ./reports
  quire research climate change --raw > climate.md`

const researchShortDesc string = "Research a topic"

func NewResearchCmd() *cobra.Command {
	cmder := &researchCommander{}

	cmd := &cobra.Command{
		Use:   "research <topic...>",
		Short: researchShortDesc,
		Long:  researchLongDesc,
		Args: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(strings.Join(args, " ")) == "" {
				return fmt.Errorf("a topic is required, for example: %s", strings.Join(QuickTopics, ", "))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, strings.Join(args, " "))
		},
	}

	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the markdown only")
	cmd.Flags().StringVar(&cmder.recordPath, "record", "", "Write the raw event stream to a file")
	cmd.Flags().StringVarP(&cmder.exportFmt, "export", "e", "", "Also export the result (markdown, html, text)")
	cmd.Flags().StringVarP(&cmder.outDir, "out", "o", ".", "Directory for --export")
	config.AddUintFlag(cmd, config.Registry, config.FlagWidth, &cmder.width)
	config.AddStringFlag(cmd, config.Registry, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Registry, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Registry, config.FlagBackendURL, &cmder.backendURL)
	config.AddStringFlag(cmd, config.Registry, config.FlagAnonKey, &cmder.anonKey)

	return cmd
}

func (c *researchCommander) run(cmd *cobra.Command, topic string) error {
	topic = strings.TrimSpace(topic)

	var format export.Format
	if c.exportFmt != "" {
		var err error
		format, err = export.ParseFormat(c.exportFmt)
		if err != nil {
			return err
		}
	}

	ws, err := workspace.Load(cmd,
		config.FlagWidth,
		config.FlagSQLite,
		config.FlagPostgres,
		config.FlagBackendURL,
		config.FlagAnonKey,
	)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	user, token, err := ws.RequireUser(out)
	if err != nil {
		return err
	}

	driver, err := ws.OpenStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer driver.Close()

	runner := &research.Runner{
		Subscriptions: driver,
		History:       driver,
		Logger:        ws.Logger,
	}

	if _, err := runner.Check(cmd.Context(), user); err != nil {
		if errors.Is(err, subscription.ErrLimitReached) {
			cliui.Notice(out, limitTitle, limitDescription, true)
			return workspace.ErrReported
		}
		return err
	}

	var opts []research.SessionOption
	if c.recordPath != "" {
		f, err := os.Create(c.recordPath)
		if err != nil {
			return fmt.Errorf("creating record file: %w", err)
		}
		defer f.Close()
		opts = append(opts, research.WithRecorder(f))
	}
	sess := research.NewSession(ws.ResearchClient(token), opts...)

	// On a terminal --raw previews through glamour, so fragments are held
	// back behind a spinner.
	preview := c.raw && cliui.IsTerminal(out)

	var outcome *research.Outcome
	var streamErr error
	if preview {
		streamErr = cliui.Step(out, "Researching "+topic, func() error {
			var err error
			outcome, err = runner.Run(cmd.Context(), user, sess, topic, nil)
			return err
		})
	} else {
		if !c.raw {
			fmt.Fprintf(out, "\n  %s %s\n\n", cliui.DimStyle.Render("Researching"), cliui.TitleStyle.Render(topic))
		}
		outcome, streamErr = runner.Run(cmd.Context(), user, sess, topic, func(f sse.Fragment) {
			_, _ = io.WriteString(out, string(f))
		})
		fmt.Fprintln(out)
	}

	if outcome == nil {
		return streamErr
	}

	content := outcome.Item.Content
	width := ws.Width(out)

	switch {
	case preview:
		rendered, err := cliui.RenderMarkdown(content, width)
		if err != nil {
			ws.Logger.Debug("markdown preview failed", "error", err)
		}
		fmt.Fprint(out, rendered)
	case !c.raw && content != "":
		rule := cliui.DimStyle.Render(strings.Repeat("─", min(width, 60)))
		fmt.Fprintf(out, "\n%s\n\n%s\n", rule, render.NewTerminal(nil, width).Render(render.Sections(content)))
	}

	if streamErr != nil {
		if errors.Is(streamErr, context.Canceled) {
			return streamErr
		}
		return fmt.Errorf("research stream: %w", streamErr)
	}

	last := &dotdir.LastResearch{
		HistoryID:   outcome.Item.ID.String(),
		Topic:       topic,
		CompletedAt: time.Now().UTC(),
	}
	if err := dotdir.NewManager().SaveLastResearch(last, ws.ConfigDir); err != nil {
		ws.Logger.Debug("saving last research failed", "error", err)
	}

	if format != "" {
		path, err := WriteExport(c.outDir, topic, content, format)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "  %s Exported %s\n", cliui.SuccessMark, path)
	}

	if !c.raw {
		fmt.Fprintf(out, "\n  %s\n", cliui.DimStyle.Render(fmt.Sprintf("%d researches left this month", outcome.Subscription.Remaining())))
	}

	return nil
}

// WriteExport renders content in format f into dir and returns the path.
func WriteExport(dir, topic, content string, f export.Format) (string, error) {
	doc, err := export.Render(topic, content, f)
	if err != nil {
		return "", err
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	path := filepath.Join(dir, doc.Filename)
	if err := os.WriteFile(path, doc.Body, 0o644); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}
	return path, nil
}
