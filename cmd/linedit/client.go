package main

import (
	"fmt"
	"log/slog"

	"github.com/helixml/linedit"
	"github.com/helixml/linedit/internal/config"
)

// newClient builds a linedit Client from cfg. Callers close it.
func newClient(cfg config.AppConfig, logger *slog.Logger) (*linedit.Client, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	opts := append(linedit.FromAppConfig(cfg), linedit.WithLogger(logger))
	client, err := linedit.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create linedit client: %w", err)
	}
	return client, nil
}

func closeClient(client *linedit.Client, logger *slog.Logger) {
	if err := client.Close(); err != nil {
		logger.Error("failed to close linedit client", slog.Any("error", err))
	}
}
