// Package workspace builds the configuration, logger, credentials and
// clients shared by quire commands.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/quire/cmd/quire/sqlitepath"
	"github.com/papercomputeco/quire/pkg/auth"
	"github.com/papercomputeco/quire/pkg/backend"
	"github.com/papercomputeco/quire/pkg/cliui"
	"github.com/papercomputeco/quire/pkg/config"
	"github.com/papercomputeco/quire/pkg/credentials"
	"github.com/papercomputeco/quire/pkg/logger"
	"github.com/papercomputeco/quire/pkg/research"
	"github.com/papercomputeco/quire/pkg/storage"
	"github.com/papercomputeco/quire/pkg/subscription"
)

// ErrReported is returned by commands that already printed a notice for
// the failure. main exits non-zero without printing it again.
var ErrReported = errors.New("reported")

const (
	signInTitle       = "Sign in required"
	signInDescription = "Please sign in to start researching."
)

// Workspace is the resolved environment of one command invocation.
type Workspace struct {
	ConfigDir   string
	Debug       bool
	Config      *config.Config
	Logger      *slog.Logger
	Backend     *backend.Client
	Credentials *credentials.Manager
	Verifier    *auth.Verifier
}

// Load reads the global --debug and --config-dir flags, binds the given
// registry flags into the config precedence chain, and builds the
// workspace.
func Load(cmd *cobra.Command, flags ...string) (*Workspace, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")
	debug, _ := cmd.Flags().GetBool("debug")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	config.BindRegisteredFlags(v, cmd, config.Registry, flags)
	cfg := config.FromViper(v)

	creds, err := credentials.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	return &Workspace{
		ConfigDir: configDir,
		Debug:     debug,
		Config:    cfg,
		Logger: logger.New(
			logger.WithDebug(debug),
			logger.WithPretty(true),
			logger.WithWriter(cmd.ErrOrStderr()),
		),
		Backend:     backend.New(cfg.Backend),
		Credentials: creds,
		Verifier:    auth.NewVerifier(cfg.API.JWTSecret),
	}, nil
}

// CurrentUser returns the signed-in user and their token.
func (w *Workspace) CurrentUser() (*auth.User, string, error) {
	return auth.Current(w.Credentials, w.Verifier)
}

// RequireUser returns the signed-in user, or prints the sign-in notice to
// out and returns ErrReported.
func (w *Workspace) RequireUser(out io.Writer) (*auth.User, string, error) {
	user, token, err := w.CurrentUser()
	if errors.Is(err, auth.ErrSignedOut) {
		cliui.Notice(out, signInTitle, signInDescription, true)
		return nil, "", ErrReported
	}
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// OpenStorage opens the configured store. Local commands default to
// <config-dir>/quire.db.
func (w *Workspace) OpenStorage(ctx context.Context) (storage.Driver, error) {
	opts := storage.Options{
		PostgresDSN: w.Config.Storage.PostgresDSN,
		Logger:      w.Logger,
	}

	if opts.PostgresDSN == "" {
		path, err := sqlitepath.ResolveSQLitePath(w.Config.Storage.SQLitePath, w.ConfigDir)
		if err != nil {
			return nil, err
		}
		opts.SQLitePath = path
	}

	return storage.Open(ctx, opts)
}

// ResearchClient returns a research client that authenticates with token.
func (w *Workspace) ResearchClient(token string) *research.Client {
	return research.NewClient(w.Backend, w.Config.Backend.ResearchPath, token)
}

// Billing returns the hosted billing client.
func (w *Workspace) Billing() *subscription.Billing {
	return subscription.NewBilling(w.Backend)
}

// Width is the wrap width for out: the terminal width when out is a
// terminal, else the configured render width.
func (w *Workspace) Width(out io.Writer) int {
	return cliui.Width(out, int(w.Config.Render.Width))
}
