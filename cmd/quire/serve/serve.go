// Package servecmder provides the serve command, which runs the quire HTTP
// API with its background worker pool and MCP endpoint.
package servecmder

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/quire/api"
	"github.com/papercomputeco/quire/api/mcp"
	"github.com/papercomputeco/quire/cmd/quire/workspace"
	"github.com/papercomputeco/quire/pkg/config"
	"github.com/papercomputeco/quire/pkg/eventstream"
	"github.com/papercomputeco/quire/pkg/eventstream/kafka"
	"github.com/papercomputeco/quire/pkg/eventstream/nop"
	"github.com/papercomputeco/quire/pkg/logger"
	"github.com/papercomputeco/quire/pkg/research"
	"github.com/papercomputeco/quire/pkg/worker"
)

type serveCommander struct {
	listen       string
	sqlitePath   string
	postgresDSN  string
	kafkaBrokers string
	kafkaTopic   string
	backendURL   string
	anonKey      string
	logFile      string
	workers      uint
	noMCP        bool
}

const serveLongDesc string = `Run the quire API server.

The server streams research to signed-in callers, tracks plan usage, keeps
research history and renders content into sections. Finished research is
stored by a background worker pool and, with --kafka-brokers, published as
a research.completed event. An MCP endpoint is served on /mcp.

Examples:
  quire serve
  quire serve --api-listen :9000 --postgres postgres://localhost/quire
  quire serve --kafka-brokers localhost:9092 --log-file ./quire.log`

const serveShortDesc string = "Run the quire API server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Registry, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Registry, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Registry, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Registry, config.FlagKafkaBrokers, &cmder.kafkaBrokers)
	config.AddStringFlag(cmd, config.Registry, config.FlagKafkaTopic, &cmder.kafkaTopic)
	config.AddStringFlag(cmd, config.Registry, config.FlagBackendURL, &cmder.backendURL)
	config.AddStringFlag(cmd, config.Registry, config.FlagAnonKey, &cmder.anonKey)
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")
	cmd.Flags().UintVar(&cmder.workers, "workers", 3, "Number of background storage workers")
	cmd.Flags().BoolVar(&cmder.noMCP, "no-mcp", false, "Do not serve the MCP endpoint")

	return cmd
}

func (c *serveCommander) run(cmd *cobra.Command) error {
	ws, err := workspace.Load(cmd,
		config.FlagAPIListen,
		config.FlagSQLite,
		config.FlagPostgres,
		config.FlagKafkaBrokers,
		config.FlagKafkaTopic,
		config.FlagBackendURL,
		config.FlagAnonKey,
	)
	if err != nil {
		return err
	}

	if c.logFile != "" {
		f, err := openLogFile(c.logFile)
		if err != nil {
			return err
		}
		defer f.Close()

		ws.Logger = logger.Tee(ws.Logger, f, ws.Debug)
	}

	driver, err := ws.OpenStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer driver.Close()

	publisher, err := newPublisher(ws.Config.Events, ws.Logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	pool, err := worker.NewPool(&worker.Config{
		History:    driver,
		Publisher:  publisher,
		NumWorkers: c.workers,
		Logger:     ws.Logger,
	})
	if err != nil {
		return fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Close()

	apiConfig := api.Config{
		ListenAddr: ws.Config.API.Listen,
		Verifier:   ws.Verifier,
		NewStreamer: func(token string) research.Streamer {
			return ws.ResearchClient(token)
		},
		Jobs: pool,
	}

	if !c.noMCP {
		mcpServer, err := mcp.NewServer(mcp.Config{Logger: ws.Logger})
		if err != nil {
			return fmt.Errorf("creating MCP server: %w", err)
		}
		apiConfig.MCPHandler = mcpServer.Handler()
	}

	server, err := api.NewServer(apiConfig, driver, ws.Logger)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	if ws.Config.API.JWTSecret == "" {
		ws.Logger.Warn("api.jwt_secret is not set, bearer token signatures are not verified")
	}

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		ws.Logger.Info("received signal, shutting down", "signal", sig.String())
	case <-cmd.Context().Done():
		ws.Logger.Info("context done, shutting down")
	}

	// The HTTP server stops before the pool drains so no job is enqueued
	// on a closed queue.
	if err := server.Shutdown(); err != nil {
		ws.Logger.Error("API server shutdown failed", "error", err)
	}
	return nil
}

// newPublisher returns a Kafka publisher when brokers are configured, and
// a no-op publisher otherwise.
func newPublisher(cfg config.EventsConfig, log *slog.Logger) (eventstream.Publisher, error) {
	brokers := kafka.ParseBrokers(cfg.Brokers)
	if len(brokers) == 0 {
		log.Debug("no kafka brokers configured, research events are not published")
		return nop.NewPublisher(), nil
	}

	publisher, err := kafka.NewPublisher(kafka.Config{
		Brokers: brokers,
		Topic:   cfg.Topic,
	})
	if err != nil {
		return nil, fmt.Errorf("creating kafka publisher: %w", err)
	}
	log.Info("publishing research events", "brokers", brokers, "topic", publisher.Topic())
	return publisher, nil
}

func openLogFile(path string) (*os.File, error) {
	if path == "" {
		return nil, errors.New("log file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}
