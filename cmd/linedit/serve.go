package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/helixml/linedit/infrastructure/api"
	apimiddleware "github.com/helixml/linedit/infrastructure/api/middleware"
	"github.com/helixml/linedit/internal/config"
	"github.com/helixml/linedit/internal/log"
)

func serveCmd() *cobra.Command {
	var (
		envFile string
		host    string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server with the REST API under /api/v1 and MCP at /mcp.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                    Server host to bind to (default: 0.0.0.0)
  PORT                    Server port to listen on (default: 8080)
  DATA_DIR                Data directory (default: ~/.linedit)
  DB_URL                  Journal database URL (default: sqlite:///{data_dir}/linedit.db)
  LOG_LEVEL               Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT              Log format: pretty, text, json (default: pretty)
  MAX_SELECTION_LINES     Largest selection a session may hold (default: 500)
  STRICT_SYNTAX           Discard changes that fail syntax validation (default: false)
  VALIDATORS_FILE         YAML file registering extra syntax validators
  ALLOWED_ROOT            Confine every edited path to this directory
  JOURNAL_ENABLED         Record confirmed changes (default: true)
  JOURNAL_RETENTION_DAYS  Prune journal entries older than this (default: 0, keep)
  API_KEYS                Comma-separated keys required for mutating endpoints
  CORS_ORIGINS            Comma-separated origins allowed for browser clients`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")

	return cmd
}

func runServe(ctx context.Context, envFile, host string, port int) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	cfg = applyServeOverrides(cfg, host, port)

	slogger := log.NewLogger(cfg).Slog()
	attrs := append([]slog.Attr{slog.String("version", version)}, cfg.LogAttrs()...)
	slogger.LogAttrs(context.Background(), slog.LevelInfo, "starting linedit", attrs...)

	client, err := newClient(cfg, slogger)
	if err != nil {
		return err
	}
	defer closeClient(client, slogger)

	apiServer := api.NewAPIServer(client, cfg.APIKeys(), api.WithVersion(version))
	router := apiServer.Router()

	// Middleware must be added before MountRoutes.
	router.Use(apimiddleware.CORS(cfg.CORSOrigins()))
	router.Use(apimiddleware.Logging(slogger))
	router.Use(apimiddleware.CorrelationID)

	apiServer.MountRoutes()

	router.Get("/health", apiServer.HealthHandler)
	router.Get("/healthz", apiServer.HealthHandler)
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"name":"linedit","version":"%s","docs":"/docs"}`, version)
	})
	router.Mount("/docs", apiServer.DocsRouter("/docs/openapi.json").Routes())

	server := api.NewServer(cfg.Addr(), slogger)
	server.Router().Mount("/", router)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})
	if client.Pruner != nil {
		g.Go(func() error {
			return client.Pruner.Run(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		slogger.Info("shutting down server")
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port int) config.AppConfig {
	var opts []config.AppConfigOption
	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}
	return cfg.Apply(opts...)
}
