package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/helixml/linedit/internal/log"
	"github.com/helixml/linedit/internal/mcp"
)

func stdioCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "stdio",
		Short: "Start MCP server on stdio",
		Long: `Start the MCP (Model Context Protocol) server on stdio.

Every tool call without a session_id shares one edit session. Logs go to
stderr so stdout carries only protocol messages. Configuration is loaded
from environment variables and .env file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdio(envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")

	return cmd
}

func runStdio(envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	slogger := log.NewLogger(cfg).Slog()
	slogger.Info("starting MCP server",
		slog.String("version", version),
		slog.String("data_dir", cfg.DataDir()),
		slog.String("allowed_root", cfg.AllowedRoot()),
	)

	client, err := newClient(cfg, slogger)
	if err != nil {
		return err
	}
	defer closeClient(client, slogger)

	mcpServer := mcp.NewServer(client.Sessions, client.Editor, client.Symbols, client.History, version, slogger)
	return mcpServer.ServeStdio()
}
